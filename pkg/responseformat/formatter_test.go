package responseformat

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vmihailenco/msgpack/v5"
)

type sample struct {
	RunID   string `json:"run_id"`
	Reports int    `json:"reports"`
	Note    string `json:"note,omitempty"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in       string
		expected Format
		wantErr  bool
	}{
		{"", JSON, false},
		{"json", JSON, false},
		{"msgpack", MsgPack, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.expected {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(JSON)
	if err := f.Write(&buf, sample{RunID: "r1", Reports: 12}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	expected := map[string]any{"run_id": "r1", "reports": float64(12)}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("JSON mismatch (-expected +got):\n%s", diff)
	}
	if f.ContentType() != "application/json" {
		t.Errorf("content type %q", f.ContentType())
	}
}

func TestWriteMsgPackUsesJSONNames(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(MsgPack)
	if err := f.Write(&buf, sample{RunID: "r1", Reports: 12}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var got map[string]any
	if err := msgpack.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not msgpack: %v", err)
	}
	if got["run_id"] != "r1" {
		t.Errorf("run_id = %v, expected r1 (keys %v)", got["run_id"], got)
	}
	if _, ok := got["note"]; ok {
		t.Error("omitempty field was encoded")
	}
	if f.ContentType() != "application/x-msgpack" {
		t.Errorf("content type %q", f.ContentType())
	}
}
