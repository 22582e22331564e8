package report

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newReport(uid string, day int, hour, lat, lon float64) *Report {
	return &Report{
		ID:    "SHIPA",
		UID:   uid,
		Year:  2003,
		Month: 6,
		Day:   day,
		Hour:  Float(hour),
		Lat:   Float(lat),
		Lon:   Float(lon),
	}
}

func TestReportTime(t *testing.T) {
	tests := []struct {
		name    string
		report  *Report
		wantErr bool
	}{
		{"valid", newReport("a", 1, 12.5, 0, 0), false},
		{"missing hour", &Report{Year: 2003, Month: 1, Day: 1}, true},
		{"bad month", &Report{Year: 2003, Month: 13, Day: 1, Hour: Float(0)}, true},
		{"bad day", &Report{Year: 2003, Month: 2, Day: 29, Hour: Float(0)}, true},
		{"leap day", &Report{Year: 2004, Month: 2, Day: 29, Hour: Float(0)}, false},
		{"hour too large", &Report{Year: 2003, Month: 1, Day: 1, Hour: Float(24)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.report.Time()
			if (err != nil) != tt.wantErr {
				t.Errorf("Time() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	got, _ := newReport("a", 1, 12.5, 0, 0).Time()
	if got.Hour() != 12 || got.Minute() != 30 {
		t.Errorf("fractional hour converted to %s", got)
	}
}

func TestReportPosition(t *testing.T) {
	r := newReport("a", 1, 0, 10, 350)
	lat, lon, err := r.Position()
	if err != nil {
		t.Fatalf("Position: %v", err)
	}
	if lat != 10 || math.Abs(lon-(-10)) > 1e-9 {
		t.Errorf("Position = (%v, %v), expected (10, -10)", lat, lon)
	}

	r.Lat = Float(91)
	if _, _, err := r.Position(); err == nil {
		t.Error("expected error for latitude 91")
	}

	r.Lat.Valid = false
	if _, _, err := r.Position(); err == nil {
		t.Error("expected error for missing latitude")
	}
}

func TestIsGenericID(t *testing.T) {
	for _, id := range []string{"SHIP", "ship", " PLAT ", "0102", ""} {
		if !IsGenericID(id) {
			t.Errorf("IsGenericID(%q) = false", id)
		}
	}
	for _, id := range []string{"WDC1234", "SHIPS", "62001"} {
		if IsGenericID(id) {
			t.Errorf("IsGenericID(%q) = true", id)
		}
	}
}

func TestFlags(t *testing.T) {
	var f Flags
	if f.Get(BadTrack) != Untested || f.Get(BadTrack).Code() != 9 {
		t.Fatalf("zero Flags should be untested")
	}

	f.Set(BadTrack, Fail)
	f.Set(Spike, Pass)
	if !f.Failed(BadTrack) || f.Failed(Spike) {
		t.Errorf("unexpected flags %v", f)
	}
	if f.Get(Spike).Code() != 0 || f.Get(BadTrack).Code() != 1 {
		t.Errorf("unexpected codes")
	}
	if f.Get(Aground) != Untested {
		t.Errorf("setting one check touched another")
	}

	if BadTrack.String() != "POS/trk" || TailEnd.String() != "SST/drf_tail2" {
		t.Errorf("unexpected check names %s %s", BadTrack, TailEnd)
	}
}

func TestLookupCheck(t *testing.T) {
	for _, c := range Checks() {
		got, ok := LookupCheck(c.Domain(), c.Name())
		if !ok || got != c {
			t.Errorf("LookupCheck(%s, %s) = %v, %v", c.Domain(), c.Name(), got, ok)
		}
	}
	if _, ok := LookupCheck(DomainSST, "trk"); ok {
		t.Error("trk is a position check, not an SST check")
	}

	for _, f := range []Flag{Untested, Pass, Fail} {
		if got := FlagFromCode(f.Code()); got != f {
			t.Errorf("FlagFromCode(%d) = %v, expected %v", f.Code(), got, f)
		}
	}
}

func TestSortBreaksTiesOnUID(t *testing.T) {
	v := NewVoyage(
		newReport("c", 2, 0, 0, 0),
		newReport("b", 1, 6, 0, 0),
		newReport("a", 1, 6, 0, 0),
		newReport("d", 1, 0, 0, 0),
	)
	if err := v.Sort(); err != nil {
		t.Fatalf("Sort: %v", err)
	}

	var got []string
	for _, r := range v.Reports {
		got = append(got, r.UID)
	}
	if diff := cmp.Diff([]string{"d", "a", "b", "c"}, got); diff != "" {
		t.Errorf("sort order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortRejectsMissingTime(t *testing.T) {
	bad := newReport("x", 1, 0, 0, 0)
	bad.Hour.Valid = false
	v := NewVoyage(newReport("a", 1, 0, 0, 0), bad)

	err := v.Sort()
	if !errors.Is(err, ErrData) {
		t.Fatalf("expected ErrData, got %v", err)
	}
	var de *DataError
	if !errors.As(err, &de) || de.UID != "x" {
		t.Errorf("expected DataError naming uid x, got %v", err)
	}
}

func TestDerive(t *testing.T) {
	// One degree of longitude per hour along the equator.
	v := NewVoyage(
		newReport("a", 1, 0, 0, 0),
		newReport("b", 1, 1, 0, 1),
		newReport("c", 1, 2, 0, 2),
		newReport("d", 1, 2, 0, 3),
	)

	k, err := Derive(v)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}

	degKm := math.Pi / 180 * 6371.0088
	if k.Step[0].Valid {
		t.Errorf("first step should be invalid")
	}
	if s := k.Step[1]; math.Abs(s.Speed-degKm) > 1e-6 || math.Abs(s.Course-90) > 1e-9 || s.TimeDiff != 1 {
		t.Errorf("step 1 = %+v", s)
	}
	if s := k.Step[3]; s.TimeDiff != 0 || math.Abs(s.Speed-s.Distance) > 1e-12 {
		t.Errorf("same-instant step should report distance as speed, got %+v", s)
	}
	if k.Alt[0].Valid || k.Alt[3].Valid {
		t.Errorf("alternate steps at the ends should be invalid")
	}
	if s := k.Alt[1]; math.Abs(s.Distance-2*degKm) > 1e-6 || s.TimeDiff != 2 {
		t.Errorf("alt step 1 = %+v", s)
	}
	if k.Hours[2] != 2 {
		t.Errorf("elapsed hours = %v", k.Hours)
	}
}

func TestDeriveRejectsDescendingTime(t *testing.T) {
	v := NewVoyage(
		newReport("a", 2, 0, 0, 0),
		newReport("b", 1, 0, 0, 1),
	)
	if _, err := Derive(v); !errors.Is(err, ErrData) {
		t.Fatalf("expected ErrData, got %v", err)
	}
}

func TestSubsetSharesReports(t *testing.T) {
	v := NewVoyage(
		newReport("a", 1, 0, 0, 0),
		newReport("b", 1, 1, 0, 1),
		newReport("c", 1, 2, 0, 2),
	)
	sub, index := v.Subset(func(i int, _ *Report) bool { return i != 1 })
	if diff := cmp.Diff([]int{0, 2}, index); diff != "" {
		t.Fatalf("index mismatch (-want +got):\n%s", diff)
	}

	sub.Reports[1].Flags.Set(BadTrack, Fail)
	if !v.Reports[2].Flags.Failed(BadTrack) {
		t.Errorf("flag set through subset not visible on original voyage")
	}
}

func TestOutcome(t *testing.T) {
	o := Evaluated(Spike, []Flag{Pass, Fail, Fail, Pass})
	if o.Failed != 2 || o.Reports != 4 || !o.Evaluated {
		t.Errorf("unexpected outcome %+v", o)
	}

	s := Skipped(Aground, 3, "only %d reports", 3)
	if s.Evaluated || s.Note != "only 3 reports" {
		t.Errorf("unexpected outcome %+v", s)
	}
}
