package drifter

import (
	"math"
	"time"

	"github.com/chrissnell/marineqc/internal/report"
	"github.com/chrissnell/marineqc/pkg/solar"
)

// matched holds the reports of a voyage that have a usable night-time
// background match, as parallel arrays.
type matched struct {
	index    []int     // position in the voyage
	anomaly  []float64 // SST minus background, K
	variance []float64 // background error variance, K^2
}

func (m *matched) Len() int { return len(m.index) }

// matchBackground keeps night-time reports with a background value and no
// significant sea ice. Any kept report must carry an SST and a background
// match inside the physically valid range, and the voyage must be sorted.
func matchBackground(v *report.Voyage, p FilterParams) (*matched, error) {
	m := &matched{}
	var prev time.Time
	for i, r := range v.Reports {
		t, err := r.Time()
		if err != nil {
			return nil, report.DataErrorf(v, i, "%v", err)
		}
		if i > 0 && t.Before(prev) {
			return nil, report.DataErrorf(v, i, "timestamp %s precedes previous report", t.Format(time.RFC3339))
		}
		prev = t
		lat, lon, err := r.Position()
		if err != nil {
			return nil, report.DataErrorf(v, i, "%v", err)
		}

		bg := r.Background
		switch {
		case solar.IsDaytime(t, lat, lon, p.DayElevationLimit):
			continue
		case !bg.Value.Valid:
			continue
		case bg.IceFraction.Valid && bg.IceFraction.Float64 > p.IceLimit:
			continue
		}

		if math.IsNaN(bg.Value.Float64) || bg.Value.Float64 < p.MinBackgroundValue || bg.Value.Float64 > p.MaxBackgroundValue {
			return nil, report.DataErrorf(v, i, "background value %v outside [%v, %v]",
				bg.Value.Float64, p.MinBackgroundValue, p.MaxBackgroundValue)
		}
		if !bg.ErrorVariance.Valid {
			return nil, report.DataErrorf(v, i, "background error variance missing")
		}
		if math.IsNaN(bg.ErrorVariance.Float64) || bg.ErrorVariance.Float64 < 0 {
			return nil, report.DataErrorf(v, i, "background error variance %v is negative", bg.ErrorVariance.Float64)
		}
		if !r.Vars.SST.Valid || math.IsNaN(r.Vars.SST.Float64) {
			return nil, report.DataErrorf(v, i, "missing SST")
		}

		m.index = append(m.index, i)
		m.anomaly = append(m.anomaly, r.Vars.SST.Float64-bg.Value.Float64)
		m.variance = append(m.variance, bg.ErrorVariance.Float64)
	}
	return m, nil
}

func anyAbove(x []float64, limit float64) bool {
	for _, v := range x {
		if v > limit {
			return true
		}
	}
	return false
}
