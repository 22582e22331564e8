package trackcheck

import (
	"math"

	"github.com/chrissnell/marineqc/internal/report"
)

// KmToNm converts kilometres to nautical miles (and km/h to knots).
const KmToNm = 0.539957

// Modal speed histogram: 3-knot bins from 0 to 39 knots. Speeds outside the
// histogram do not vote.
const (
	speedBinWidthKnots = 3.0
	speedBins          = 13
	modalFloorKnots    = 8.5
)

// Params configures the track check. Speeds are in knots and distances in
// nautical miles, matching how ship observers report them.
type Params struct {
	MaxDirectionChange     float64 `yaml:"max_direction_change"`     // degrees
	MaxSpeedChange         float64 `yaml:"max_speed_change"`         // knots
	MaxAbsoluteSpeed       float64 `yaml:"max_absolute_speed"`       // knots
	MaxMidpointDiscrepancy float64 `yaml:"max_midpoint_discrepancy"` // nautical miles
	MaxIterations          int     `yaml:"max_iterations"`

	// Reports from ExemptDeck dated before ExemptBeforeYear are not flagged as
	// too few observations.
	ExemptDeck       int `yaml:"exempt_deck"`
	ExemptBeforeYear int `yaml:"exempt_before_year"`
}

// DefaultParams returns the reference track check parameters.
func DefaultParams() Params {
	return Params{
		MaxDirectionChange:     60.0,
		MaxSpeedChange:         10.0,
		MaxAbsoluteSpeed:       40.0,
		MaxMidpointDiscrepancy: 150.0,
		MaxIterations:          4,
		ExemptDeck:             720,
		ExemptBeforeYear:       1891,
	}
}

// Validate reports a configuration error for out-of-range parameters.
func (p Params) Validate() error {
	switch {
	case p.MaxDirectionChange <= 0 || p.MaxDirectionChange >= 180:
		return report.ConfigErrorf("track_check.max_direction_change", "must be in (0, 180), got %v", p.MaxDirectionChange)
	case p.MaxSpeedChange <= 0:
		return report.ConfigErrorf("track_check.max_speed_change", "must be positive, got %v", p.MaxSpeedChange)
	case p.MaxAbsoluteSpeed <= 0:
		return report.ConfigErrorf("track_check.max_absolute_speed", "must be positive, got %v", p.MaxAbsoluteSpeed)
	case p.MaxMidpointDiscrepancy <= 0:
		return report.ConfigErrorf("track_check.max_midpoint_discrepancy", "must be positive, got %v", p.MaxMidpointDiscrepancy)
	case p.MaxIterations < 0:
		return report.ConfigErrorf("track_check.max_iterations", "must not be negative, got %d", p.MaxIterations)
	}
	return nil
}

// ModalSpeed returns the centre of the most populated 3-knot speed bin in
// km/h, floored at 8.5 knots. Ties go to the slower bin.
func ModalSpeed(speeds []float64) float64 {
	var counts [speedBins]int
	for _, s := range speeds {
		knots := s * KmToNm
		if knots < 0 {
			continue
		}
		bin := int(knots / speedBinWidthKnots)
		if bin >= speedBins {
			continue
		}
		counts[bin]++
	}

	best := 0
	for i := 1; i < speedBins; i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}

	mode := float64(best)*speedBinWidthKnots + speedBinWidthKnots/2
	if counts[best] == 0 || mode < modalFloorKnots {
		mode = modalFloorKnots
	}
	return mode / KmToNm
}

// Limits are the plausible ship speeds (km/h) derived from the modal speed.
type Limits struct {
	Mode        float64
	MaxSpeed    float64
	MaxMaxSpeed float64
	MinSpeed    float64
}

// SpeedLimits derives the speed thresholds from the modal speed (km/h).
func SpeedLimits(modeKmh float64) Limits {
	if modeKmh*KmToNm <= 8.51 {
		return Limits{Mode: modeKmh, MaxSpeed: 15.0 / KmToNm, MaxMaxSpeed: 20.0 / KmToNm}
	}
	return Limits{
		Mode:        modeKmh,
		MaxSpeed:    math.Max(modeKmh*1.25, 15.0/KmToNm),
		MaxMaxSpeed: 30.0 / KmToNm,
		MinSpeed:    modeKmh * 0.75,
	}
}
