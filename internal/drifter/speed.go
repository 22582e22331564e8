package drifter

import (
	"fmt"

	"github.com/chrissnell/marineqc/internal/peel"
	"github.com/chrissnell/marineqc/internal/report"
)

// SpeedCheck flags a drifter that moves faster than SpeedLimit over any
// window of MinWindowPeriod to MaxWindowPeriod days, which usually means it
// has been picked up by a ship. Each anchor is compared with the farthest
// report no more than MaxWindowPeriod later, and windows shorter than
// MinWindowPeriod are skipped. Every report inside an offending window fails.
func SpeedCheck(v *report.Voyage, p SpeedParams) (report.Outcome, error) {
	if err := p.Validate(); err != nil {
		return report.Outcome{}, fmt.Errorf("speed check: %w", err)
	}

	n := v.Len()
	if n == 0 {
		return report.Skipped(report.PickedUp, 0, "no reports"), nil
	}
	k, err := report.Derive(v)
	if err != nil {
		return report.Outcome{}, fmt.Errorf("speed check: %w", err)
	}
	if err := strictlyAscending(v, k); err != nil {
		return report.Outcome{}, fmt.Errorf("speed check: %w", err)
	}
	if n == 1 {
		v.SetAll(report.PickedUp, report.Pass)
		return report.Skipped(report.PickedUp, n, "single report"), nil
	}

	minHours := p.MinWindowPeriod * 24
	maxHours := p.MaxWindowPeriod * 24

	failed := make([]bool, n)
	for i := 0; i < n-1; i++ {
		end := i
		for j := i + 1; j < n && k.Hours[j]-k.Hours[i] <= maxHours; j++ {
			end = j
		}
		dt := k.Hours[end] - k.Hours[i]
		if dt < minHours || dt <= 0 {
			continue
		}
		if metresPerSecond(k.DistanceBetween(i, end), dt) > p.SpeedLimit {
			for l := i; l <= end; l++ {
				failed[l] = true
			}
		}
	}

	flags := make([]report.Flag, n)
	for i, f := range failed {
		flags[i] = report.FailIf(f)
	}
	v.Apply(report.PickedUp, flags)
	return report.Evaluated(report.PickedUp, flags), nil
}

// NewSpeedCheck is a refinement of SpeedCheck. Positions are first screened
// with the iQuam check at ship speed limits; reports it rejects fail outright
// and take no part in the speed windows. Each remaining report is compared
// with the first remaining report at least MinWindowPeriod days later.
func NewSpeedCheck(v *report.Voyage, p NewSpeedParams, iq peel.IQuamParams) (report.Outcome, error) {
	if err := p.Validate(); err != nil {
		return report.Outcome{}, fmt.Errorf("new speed check: %w", err)
	}

	n := v.Len()
	if n == 0 {
		return report.Skipped(report.PickedUpNew, 0, "no reports"), nil
	}
	bad, err := peel.IQuamFailures(v, iq, true)
	if err != nil {
		return report.Outcome{}, fmt.Errorf("new speed check: %w", err)
	}
	k, err := report.Derive(v)
	if err != nil {
		return report.Outcome{}, fmt.Errorf("new speed check: %w", err)
	}
	if n == 1 {
		v.SetAll(report.PickedUpNew, report.Pass)
		return report.Skipped(report.PickedUpNew, n, "single report"), nil
	}

	minHours := p.MinWindowPeriod * 24

	failed := append([]bool(nil), bad...)
	for i := 0; i < n; i++ {
		if bad[i] {
			continue
		}
		for j := i + 1; j < n; j++ {
			dt := k.Hours[j] - k.Hours[i]
			if bad[j] || dt < minHours || dt <= 0 {
				continue
			}
			if metresPerSecond(k.DistanceBetween(i, j), dt) > p.SpeedLimit {
				for l := i; l <= j; l++ {
					failed[l] = true
				}
			}
			break
		}
	}

	flags := make([]report.Flag, n)
	for i, f := range failed {
		flags[i] = report.FailIf(f)
	}
	v.Apply(report.PickedUpNew, flags)
	return report.Evaluated(report.PickedUpNew, flags), nil
}

func metresPerSecond(km, hours float64) float64 {
	return km * 1000 / (hours * 3600)
}
