package peel

import (
	"fmt"
	"math"

	"github.com/chrissnell/marineqc/internal/report"
)

// IQuamParams configures the neighbourhood position check.
type IQuamParams struct {
	Neighbours     int     `yaml:"neighbours"`
	ShipSpeedLimit float64 `yaml:"ship_speed_limit"` // km/h
	BuoySpeedLimit float64 `yaml:"buoy_speed_limit"` // km/h
	DeltaD         float64 `yaml:"delta_d"`          // km of positional slack
	DeltaT         float64 `yaml:"delta_t"`          // hours of timing slack
}

// DefaultIQuamParams returns the reference iQuam parameters.
func DefaultIQuamParams() IQuamParams {
	return IQuamParams{
		Neighbours:     5,
		ShipSpeedLimit: 60.0,
		BuoySpeedLimit: 15.0,
		DeltaD:         1.11,
		DeltaT:         0.01,
	}
}

// Validate reports a configuration error for out-of-range parameters.
func (p IQuamParams) Validate() error {
	switch {
	case p.Neighbours < 1:
		return report.ConfigErrorf("iquam.neighbours", "must be at least 1, got %d", p.Neighbours)
	case p.ShipSpeedLimit <= 0:
		return report.ConfigErrorf("iquam.ship_speed_limit", "must be positive, got %v", p.ShipSpeedLimit)
	case p.BuoySpeedLimit <= 0:
		return report.ConfigErrorf("iquam.buoy_speed_limit", "must be positive, got %v", p.BuoySpeedLimit)
	case p.DeltaD < 0:
		return report.ConfigErrorf("iquam.delta_d", "must not be negative, got %v", p.DeltaD)
	case p.DeltaT <= 0:
		return report.ConfigErrorf("iquam.delta_t", "must be positive, got %v", p.DeltaT)
	}
	return nil
}

// SpeedLimit returns the limit for a platform type.
func (p IQuamParams) SpeedLimit(platformType int) float64 {
	if platformType == report.MooredBuoy || platformType == report.DriftingBuoy {
		return p.BuoySpeedLimit
	}
	return p.ShipSpeedLimit
}

// PositionViolations returns the predicate used by the iQuam check: the
// apparent speed between two reports, after allowing DeltaD of positional
// and DeltaT of timing slack, exceeds speedLimit.
func PositionViolations(k *report.Kinematics, p IQuamParams, speedLimit float64) Violates {
	return func(i, j int) bool {
		dist := k.DistanceBetween(i, j)
		speed := math.Max(dist-p.DeltaD, 0) / (k.HoursBetween(i, j) + p.DeltaT)
		return speed > speedLimit
	}
}

// IQuamFailures runs the position check on a sorted voyage and returns the
// failing reports without writing any flags. The speed limit is chosen from
// the platform type, or forced to the ship limit when asShip is set.
func IQuamFailures(v *report.Voyage, p IQuamParams, asShip bool) ([]bool, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if report.IsGenericID(v.PlatformID()) {
		return make([]bool, v.Len()), nil
	}

	k, err := report.Derive(v)
	if err != nil {
		return nil, err
	}

	limit := p.SpeedLimit(v.PlatformType())
	if asShip {
		limit = p.ShipSpeedLimit
	}
	return Peel(v.Len(), p.Neighbours, PositionViolations(k, p, limit)).Failed, nil
}

// IQuamCheck flags reports whose positions are inconsistent with their
// neighbours under the platform's speed limit.
func IQuamCheck(v *report.Voyage, p IQuamParams) (report.Outcome, error) {
	if err := p.Validate(); err != nil {
		return report.Outcome{}, fmt.Errorf("iquam check: %w", err)
	}
	if v.Len() == 0 {
		return report.Skipped(report.IQuamTrack, 0, "no reports"), nil
	}
	if report.IsGenericID(v.PlatformID()) {
		v.SetAll(report.IQuamTrack, report.Pass)
		return report.Skipped(report.IQuamTrack, v.Len(), "generic platform id %q", v.PlatformID()), nil
	}

	failed, err := IQuamFailures(v, p, false)
	if err != nil {
		return report.Outcome{}, fmt.Errorf("iquam check: %w", err)
	}

	flags := toFlags(failed)
	v.Apply(report.IQuamTrack, flags)
	return report.Evaluated(report.IQuamTrack, flags), nil
}

func toFlags(failed []bool) []report.Flag {
	flags := make([]report.Flag, len(failed))
	for i, f := range failed {
		flags[i] = report.FailIf(f)
	}
	return flags
}
