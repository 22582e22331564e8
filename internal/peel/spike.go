package peel

import (
	"fmt"
	"math"

	"github.com/chrissnell/marineqc/internal/report"
)

// SpikeParams configures the SST spike check.
type SpikeParams struct {
	Neighbours       int     `yaml:"neighbours"`
	MaxGradientSpace float64 `yaml:"max_gradient_space"` // K/km
	MaxGradientTime  float64 `yaml:"max_gradient_time"`  // K/hour
	ShipDelta        float64 `yaml:"ship_delta"`         // K
	BuoyDelta        float64 `yaml:"buoy_delta"`         // K
}

// DefaultSpikeParams returns the reference spike check parameters.
func DefaultSpikeParams() SpikeParams {
	return SpikeParams{
		Neighbours:       5,
		MaxGradientSpace: 0.5,
		MaxGradientTime:  1.0,
		ShipDelta:        2.0,
		BuoyDelta:        1.0,
	}
}

// Validate reports a configuration error for out-of-range parameters.
func (p SpikeParams) Validate() error {
	switch {
	case p.Neighbours < 1:
		return report.ConfigErrorf("spike.neighbours", "must be at least 1, got %d", p.Neighbours)
	case p.MaxGradientSpace < 0:
		return report.ConfigErrorf("spike.max_gradient_space", "must not be negative, got %v", p.MaxGradientSpace)
	case p.MaxGradientTime < 0:
		return report.ConfigErrorf("spike.max_gradient_time", "must not be negative, got %v", p.MaxGradientTime)
	case p.ShipDelta <= 0:
		return report.ConfigErrorf("spike.ship_delta", "must be positive, got %v", p.ShipDelta)
	case p.BuoyDelta <= 0:
		return report.ConfigErrorf("spike.buoy_delta", "must be positive, got %v", p.BuoyDelta)
	}
	return nil
}

// GradientViolations returns the spike predicate over values: the difference
// between two present values exceeds the larger of the fixed delta and the
// spatial and temporal gradient allowances.
func GradientViolations(k *report.Kinematics, values []float64, present []bool, p SpikeParams, delta float64) Violates {
	return func(i, j int) bool {
		if !present[i] || !present[j] {
			return false
		}
		allowed := math.Max(delta, math.Max(
			p.MaxGradientSpace*k.DistanceBetween(i, j),
			p.MaxGradientTime*k.HoursBetween(i, j),
		))
		return math.Abs(values[i]-values[j]) > allowed
	}
}

// SpikeCheck flags SST values that jump relative to their neighbours by more
// than the allowed gradients. Reports without an SST take part in no
// comparisons and pass.
func SpikeCheck(v *report.Voyage, p SpikeParams) (report.Outcome, error) {
	if err := p.Validate(); err != nil {
		return report.Outcome{}, fmt.Errorf("spike check: %w", err)
	}
	if v.Len() == 0 {
		return report.Skipped(report.Spike, 0, "no reports"), nil
	}
	if report.IsGenericID(v.PlatformID()) {
		v.SetAll(report.Spike, report.Pass)
		return report.Skipped(report.Spike, v.Len(), "generic platform id %q", v.PlatformID()), nil
	}

	k, err := report.Derive(v)
	if err != nil {
		return report.Outcome{}, fmt.Errorf("spike check: %w", err)
	}

	values := make([]float64, v.Len())
	present := make([]bool, v.Len())
	for i, r := range v.Reports {
		values[i], present[i] = r.Vars.SST.Float64, r.Vars.SST.Valid
	}

	delta := p.ShipDelta
	if v.Reports[0].IsBuoy() {
		delta = p.BuoyDelta
	}

	res := Peel(v.Len(), p.Neighbours, GradientViolations(k, values, present, p, delta))
	flags := toFlags(res.Failed)
	v.Apply(report.Spike, flags)
	return report.Evaluated(report.Spike, flags), nil
}
