package report

import (
	"time"

	"github.com/chrissnell/marineqc/pkg/geo"
)

// Step describes the motion between two reports.
type Step struct {
	Distance float64 // km
	TimeDiff float64 // hours
	Speed    float64 // km/h
	Course   float64 // degrees, initial bearing
	Valid    bool
}

// Kinematics is the struct-of-arrays view of a sorted voyage: positions,
// elapsed time and the motion between neighbouring reports. It is derived
// from the voyage and must be recomputed whenever the voyage changes.
type Kinematics struct {
	Lat   []float64
	Lon   []float64
	Times []time.Time
	Hours []float64 // elapsed since the first report

	// Step[i] is the motion from report i-1 to report i. Step[0] is invalid.
	Step []Step
	// Alt[i] is the motion from report i-1 to report i+1, skipping i.
	// The first and last entries are invalid.
	Alt []Step
}

// Len returns the number of reports covered.
func (k *Kinematics) Len() int { return len(k.Lat) }

// Derive computes kinematics for a sorted voyage. Every report must carry a
// valid position and timestamp, and timestamps must not decrease.
func Derive(v *Voyage) (*Kinematics, error) {
	n := v.Len()
	k := &Kinematics{
		Lat:   make([]float64, n),
		Lon:   make([]float64, n),
		Times: make([]time.Time, n),
		Hours: make([]float64, n),
		Step:  make([]Step, n),
		Alt:   make([]Step, n),
	}

	for i, r := range v.Reports {
		lat, lon, err := r.Position()
		if err != nil {
			return nil, DataErrorf(v, i, "%v", err)
		}
		t, err := r.Time()
		if err != nil {
			return nil, DataErrorf(v, i, "%v", err)
		}
		k.Lat[i], k.Lon[i], k.Times[i] = lat, lon, t
		if i > 0 {
			k.Hours[i] = t.Sub(k.Times[0]).Hours()
		}
	}

	for i := 1; i < n; i++ {
		k.Step[i] = k.between(i-1, i)
		if k.Step[i].TimeDiff < 0 {
			return nil, DataErrorf(v, i, "timestamp %s precedes previous report", k.Times[i].Format(time.RFC3339))
		}
	}
	for i := 1; i < n-1; i++ {
		k.Alt[i] = k.between(i-1, i+1)
	}

	return k, nil
}

// between computes the step from report a to report b.
func (k *Kinematics) between(a, b int) Step {
	s := Step{
		Distance: geo.SphereDistance(k.Lat[a], k.Lon[a], k.Lat[b], k.Lon[b]),
		TimeDiff: k.Times[b].Sub(k.Times[a]).Hours(),
		Course:   geo.CourseBetweenPoints(k.Lat[a], k.Lon[a], k.Lat[b], k.Lon[b]),
		Valid:    true,
	}
	if s.TimeDiff == 0 {
		// Same-instant reports: report the distance itself rather than divide by zero.
		s.Speed = s.Distance
	} else {
		s.Speed = s.Distance / s.TimeDiff
	}
	return s
}

// HoursBetween returns the absolute time separation of reports a and b.
func (k *Kinematics) HoursBetween(a, b int) float64 {
	d := k.Hours[b] - k.Hours[a]
	if d < 0 {
		return -d
	}
	return d
}

// DistanceBetween returns the great-circle distance between reports a and b in km.
func (k *Kinematics) DistanceBetween(a, b int) float64 {
	return geo.SphereDistance(k.Lat[a], k.Lon[a], k.Lat[b], k.Lon[b])
}
