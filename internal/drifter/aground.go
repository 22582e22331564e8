// Package drifter holds the QC checks specific to drifting buoys: aground
// and picked-up detection from positions, and the SST tail and
// biased/noisy checks against a background field.
package drifter

import (
	"fmt"
	"time"

	"github.com/chrissnell/marineqc/internal/report"
	"github.com/chrissnell/marineqc/pkg/geo"
)

// agroundTolerance is the largest smoothed displacement, in km, that still
// counts as not moving: the diagonal of a 0.01 degree box at the equator.
var agroundTolerance = geo.SphereDistance(0, 0, 0.01, 0.01)

// AgroundCheck flags a drifter that stops moving for the rest of its record.
// Positions are smoothed with a running median, then compared across windows
// of MinWindowPeriod to MaxWindowPeriod days. Once the smoothed displacement
// stays within tolerance until the end of the record, every report from the
// first stationary window onward fails.
func AgroundCheck(v *report.Voyage, p AgroundParams) (report.Outcome, error) {
	if err := p.Validate(); err != nil {
		return report.Outcome{}, fmt.Errorf("aground check: %w", err)
	}

	n := v.Len()
	if n == 0 {
		return report.Skipped(report.Aground, 0, "no reports"), nil
	}
	k, err := report.Derive(v)
	if err != nil {
		return report.Outcome{}, fmt.Errorf("aground check: %w", err)
	}
	if err := strictlyAscending(v, k); err != nil {
		return report.Outcome{}, fmt.Errorf("aground check: %w", err)
	}
	if n < p.SmoothWindow {
		v.SetAll(report.Aground, report.Pass)
		return report.Skipped(report.Aground, n, "%d reports is fewer than the %d-report smoothing window",
			n, p.SmoothWindow), nil
	}

	from, aground := groundedFrom(k, p)
	flags := make([]report.Flag, n)
	for i := range flags {
		flags[i] = report.FailIf(aground && i >= from)
	}
	v.Apply(report.Aground, flags)
	return report.Evaluated(report.Aground, flags), nil
}

// groundedFrom returns the first report of the final stationary stretch, if
// the record ends in one.
func groundedFrom(k *report.Kinematics, p AgroundParams) (int, bool) {
	n := k.Len()
	half := p.SmoothWindow / 2

	lats := runningMedian(k.Lat, p.SmoothWindow)
	lons := runningMedian(unwrapLongitudes(k.Lon), p.SmoothWindow)
	hours := k.Hours[half : n-half]
	m := len(lats)

	minHours := p.MinWindowPeriod * 24
	maxHours := p.MaxWindowPeriod * 24

	aground := false
	anchor := 0
	for i := 0; i < m; i++ {
		if hours[m-1]-hours[i] < minHours {
			break
		}

		end := m - 1
		if !p.AnchorToEnd {
			end = i
			for j := i + 1; j < m && hours[j]-hours[i] <= maxHours; j++ {
				end = j
			}
			if hours[end]-hours[i] < minHours {
				// gap in reporting; the window says nothing either way
				continue
			}
		}

		if geo.SphereDistance(lats[i], lons[i], lats[end], lons[end]) <= agroundTolerance {
			if !aground {
				aground = true
				anchor = i
			}
		} else {
			aground = false
		}
	}

	if !aground {
		return 0, false
	}
	if anchor == 0 {
		// stationary from the first smoothed point: the whole record is aground
		return 0, true
	}
	return anchor + half, true
}

// unwrapLongitudes removes 360 degree jumps so a median over a track that
// crosses the dateline stays on the track.
func unwrapLongitudes(lons []float64) []float64 {
	out := make([]float64, len(lons))
	for i, lon := range lons {
		if i == 0 {
			out[i] = lon
			continue
		}
		out[i] = out[i-1] + geo.NormalizeLongitude(lon-lons[i-1])
	}
	return out
}

// strictlyAscending rejects repeated timestamps, which leave a window with no
// elapsed time. Derive has already rejected decreasing ones.
func strictlyAscending(v *report.Voyage, k *report.Kinematics) error {
	for i := 1; i < k.Len(); i++ {
		if k.Step[i].TimeDiff == 0 {
			return report.DataErrorf(v, i, "timestamp %s repeats the previous report",
				k.Times[i].Format(time.RFC3339))
		}
	}
	return nil
}
