package peel

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/chrissnell/marineqc/internal/report"
	"github.com/google/go-cmp/cmp"
)

// pairs builds a symmetric predicate from an explicit list of violating pairs.
func pairs(edges ...[2]int) Violates {
	set := map[[2]int]bool{}
	for _, e := range edges {
		set[e] = true
		set[[2]int{e[1], e[0]}] = true
	}
	return func(i, j int) bool { return set[[2]int{i, j}] }
}

func TestPeel(t *testing.T) {
	tests := []struct {
		name     string
		n, k     int
		violates Violates
		expected []bool
	}{
		{
			name:     "no violations",
			n:        4,
			k:        2,
			violates: pairs(),
			expected: []bool{false, false, false, false},
		},
		{
			name:     "single outlier against all neighbours",
			n:        5,
			k:        2,
			violates: pairs([2]int{2, 0}, [2]int{2, 1}, [2]int{2, 3}, [2]int{2, 4}),
			expected: []bool{false, false, true, false, false},
		},
		{
			name:     "tie goes to the earliest report",
			n:        3,
			k:        1,
			violates: pairs([2]int{0, 1}),
			expected: []bool{true, false, false},
		},
		{
			name:     "violations outside the window are ignored",
			n:        5,
			k:        1,
			violates: pairs([2]int{0, 4}),
			expected: []bool{false, false, false, false, false},
		},
		{
			name:     "two separate outliers",
			n:        7,
			k:        1,
			violates: pairs([2]int{0, 1}, [2]int{1, 2}, [2]int{4, 5}, [2]int{5, 6}),
			expected: []bool{false, true, false, false, false, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Peel(tt.n, tt.k, tt.violates)
			if diff := cmp.Diff(tt.expected, res.Failed); diff != "" {
				t.Errorf("failed mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPeelProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(30)
		edges := map[[2]int]bool{}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if rng.Float64() < 0.15 {
					edges[[2]int{i, j}] = true
					edges[[2]int{j, i}] = true
				}
			}
		}
		violates := func(i, j int) bool { return edges[[2]int{i, j}] }

		// A window spanning the whole voyage makes survivors directly comparable.
		res := Peel(n, n, violates)
		if res.Rounds > n {
			t.Fatalf("trial %d: %d rounds for %d reports", trial, res.Rounds, n)
		}

		flagged := 0
		var survivors []int
		for i, f := range res.Failed {
			if f {
				flagged++
			} else {
				survivors = append(survivors, i)
			}
		}
		if flagged != res.Rounds {
			t.Fatalf("trial %d: %d flagged but %d rounds", trial, flagged, res.Rounds)
		}

		again := Peel(len(survivors), len(survivors), func(a, b int) bool {
			return violates(survivors[a], survivors[b])
		})
		if again.Violations != 0 || again.Rounds != 0 {
			t.Errorf("trial %d: rerun on survivors found %d violations", trial, again.Violations)
		}
	}
}

func shipVoyage(id string, lons []float64, sst []float64) *report.Voyage {
	v := &report.Voyage{}
	for i, lon := range lons {
		r := &report.Report{
			ID:    id,
			UID:   string(rune('a' + i)),
			Year:  2010,
			Month: 1,
			Day:   1 + i/24,
			Hour:  report.Float(float64(i % 24)),
			Lat:   report.Float(0),
			Lon:   report.Float(lon),
		}
		if sst != nil && !isNaN(sst[i]) {
			r.Vars.SST = report.Float(sst[i])
		}
		v.Add(r)
	}
	return v
}

func isNaN(f float64) bool { return f != f }

func flagsOf(v *report.Voyage, c report.Check) []report.Flag {
	out := make([]report.Flag, v.Len())
	for i, r := range v.Reports {
		out[i] = r.Flags.Get(c)
	}
	return out
}

func TestIQuamCheck(t *testing.T) {
	// Hourly reports 0.1 degree apart (about 11 km/h); report 3 jumps 5 degrees east.
	lons := []float64{0, 0.1, 0.2, 5.3, 0.4, 0.5, 0.6}
	v := shipVoyage("WDC1234", lons, nil)

	o, err := IQuamCheck(v, DefaultIQuamParams())
	if err != nil {
		t.Fatalf("IQuamCheck: %v", err)
	}

	P, F := report.Pass, report.Fail
	expected := []report.Flag{P, P, P, F, P, P, P}
	if diff := cmp.Diff(expected, flagsOf(v, report.IQuamTrack)); diff != "" {
		t.Errorf("flags mismatch (-want +got):\n%s", diff)
	}
	if o.Failed != 1 || !o.Evaluated {
		t.Errorf("unexpected outcome %v", o)
	}
}

func TestIQuamCheckGenericID(t *testing.T) {
	v := shipVoyage("SHIP", []float64{0, 50, 0, 50}, nil)
	o, err := IQuamCheck(v, DefaultIQuamParams())
	if err != nil {
		t.Fatalf("IQuamCheck: %v", err)
	}
	if o.Evaluated || v.Count(report.IQuamTrack, report.Pass) != 4 {
		t.Errorf("generic id should pass unchecked, got %v", o)
	}
}

func TestIQuamCheckBuoyLimit(t *testing.T) {
	// 0.2 degrees per hour is about 22 km/h: fine for a ship, too fast for a buoy.
	lons := []float64{0, 0.2, 0.4, 0.6}
	ship := shipVoyage("WDC1234", lons, nil)
	if _, err := IQuamCheck(ship, DefaultIQuamParams()); err != nil {
		t.Fatal(err)
	}
	if n := ship.Count(report.IQuamTrack, report.Fail); n != 0 {
		t.Errorf("ship: %d failures, expected none", n)
	}

	buoy := shipVoyage("62001", lons, nil)
	for _, r := range buoy.Reports {
		r.PlatformType = report.DriftingBuoy
	}
	if _, err := IQuamCheck(buoy, DefaultIQuamParams()); err != nil {
		t.Fatal(err)
	}
	if n := buoy.Count(report.IQuamTrack, report.Fail); n == 0 {
		t.Errorf("buoy: expected failures at 22 km/h")
	}
}

func TestIQuamCheckConfigError(t *testing.T) {
	p := DefaultIQuamParams()
	p.Neighbours = 0
	_, err := IQuamCheck(shipVoyage("WDC1234", []float64{0, 1}, nil), p)
	if !errors.Is(err, report.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestIQuamCheckDataErrorLeavesNoFlags(t *testing.T) {
	v := shipVoyage("WDC1234", []float64{0, 0.1, 0.2}, nil)
	v.Reports[1].Lat.Valid = false

	_, err := IQuamCheck(v, DefaultIQuamParams())
	if !errors.Is(err, report.ErrData) {
		t.Fatalf("expected ErrData, got %v", err)
	}
	if n := v.Count(report.IQuamTrack, report.Untested); n != 3 {
		t.Errorf("expected all reports untested after a data error, got %d", n)
	}
}

func TestSpikeCheck(t *testing.T) {
	nan := 0.0 / zero
	lons := []float64{0, 0.01, 0.02, 0.03, 0.04, 0.05, 0.06}
	sst := []float64{15.0, 15.1, 15.0, 25.0, 15.2, nan, 15.1}
	v := shipVoyage("WDC1234", lons, sst)

	if _, err := SpikeCheck(v, DefaultSpikeParams()); err != nil {
		t.Fatalf("SpikeCheck: %v", err)
	}

	P, F := report.Pass, report.Fail
	expected := []report.Flag{P, P, P, F, P, P, P}
	if diff := cmp.Diff(expected, flagsOf(v, report.Spike)); diff != "" {
		t.Errorf("flags mismatch (-want +got):\n%s", diff)
	}
}

func TestSpikeCheckGradientAllowance(t *testing.T) {
	// A steady warming of 0.9 K/hour stays within the 1 K/hour time gradient.
	lons := []float64{0, 0.01, 0.02, 0.03, 0.04}
	sst := []float64{10, 10.9, 11.8, 12.7, 13.6}
	v := shipVoyage("WDC1234", lons, sst)

	if _, err := SpikeCheck(v, DefaultSpikeParams()); err != nil {
		t.Fatalf("SpikeCheck: %v", err)
	}
	if n := v.Count(report.Spike, report.Fail); n != 0 {
		t.Errorf("%d failures for a smooth gradient", n)
	}
}

var zero = 0.0
