// Package responseformat encodes run output as JSON or MessagePack.
package responseformat

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Format names an output encoding.
type Format string

const (
	JSON    Format = "json"
	MsgPack Format = "msgpack"
)

// ParseFormat validates a format name. The empty string selects JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", JSON:
		return JSON, nil
	case MsgPack:
		return MsgPack, nil
	}
	return "", fmt.Errorf("unknown output format %q (want json or msgpack)", s)
}

// Formatter handles encoding and writing output in JSON or MessagePack format
type Formatter struct {
	format Format
}

// NewFormatter creates a new formatter for the given format
func NewFormatter(format Format) *Formatter {
	return &Formatter{format: format}
}

// ContentType returns the MIME type of the formatter's output.
func (f *Formatter) ContentType() string {
	if f.format == MsgPack {
		return "application/x-msgpack"
	}
	return "application/json"
}

// Write encodes data to w. Struct fields are named by their json tags in
// both formats.
func (f *Formatter) Write(w io.Writer, data any) error {
	if f.format == MsgPack {
		return f.writeMsgPack(w, data)
	}
	return f.writeJSON(w, data)
}

func (f *Formatter) writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (f *Formatter) writeMsgPack(w io.Writer, data any) error {
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json") // Use json tags for MessagePack
	return encoder.Encode(data)
}
