package trackcheck

import (
	"database/sql"
	"math"

	"github.com/chrissnell/marineqc/internal/report"
	"github.com/chrissnell/marineqc/pkg/geo"
)

// increment dead-reckons half of a step of timeDiff hours at speed (km/h) on
// the given course and returns the change in latitude and longitude.
func increment(lat, lon, speed, course, timeDiff float64) (float64, float64) {
	lat2, lon2 := geo.LatLonFromCourseAndDistance(lat, lon, course, speed*timeDiff/2)
	return lat2 - lat, geo.NormalizeLongitude(lon2 - lon)
}

// reported returns the observer-reported speed (km/h) and heading of report i.
func reported(v *report.Voyage, i int) (speed, heading float64, ok bool) {
	vars := v.Reports[i].Vars
	if !vars.ShipSpeed.Valid || !vars.ShipHeading.Valid {
		return 0, 0, false
	}
	return vars.ShipSpeed.Float64 / KmToNm, vars.ShipHeading.Float64, true
}

// forwardDiscrepancy estimates each report's position by dead reckoning from
// the previous report, using the reported speeds and headings at both ends
// of the step, and returns the distance (km) from the actual position.
func forwardDiscrepancy(v *report.Voyage, k *report.Kinematics) []sql.NullFloat64 {
	out := make([]sql.NullFloat64, k.Len())
	for i := 1; i < k.Len(); i++ {
		s0, h0, ok0 := reported(v, i-1)
		s1, h1, ok1 := reported(v, i)
		if !ok0 || !ok1 || !k.Step[i].Valid {
			continue
		}
		dt := k.Step[i].TimeDiff
		dlat1, dlon1 := increment(k.Lat[i-1], k.Lon[i-1], s0, h0, dt)
		dlat2, dlon2 := increment(k.Lat[i], k.Lon[i], s1, h1, dt)

		lat := clampLat(k.Lat[i-1] + dlat1 + dlat2)
		lon := geo.NormalizeLongitude(k.Lon[i-1] + dlon1 + dlon2)
		out[i] = report.Float(geo.SphereDistance(k.Lat[i], k.Lon[i], lat, lon))
	}
	return out
}

// backwardDiscrepancy is the mirror of forwardDiscrepancy: each report's
// position is estimated by reckoning back from the following report.
func backwardDiscrepancy(v *report.Voyage, k *report.Kinematics) []sql.NullFloat64 {
	out := make([]sql.NullFloat64, k.Len())
	for i := k.Len() - 1; i > 0; i-- {
		s0, h0, ok0 := reported(v, i-1)
		s1, h1, ok1 := reported(v, i)
		if !ok0 || !ok1 || !k.Step[i].Valid {
			continue
		}
		dt := k.Step[i].TimeDiff
		dlat1, dlon1 := increment(k.Lat[i], k.Lon[i], s1, h1, dt)
		dlat2, dlon2 := increment(k.Lat[i], k.Lon[i], s0, h0, dt)

		lat := clampLat(k.Lat[i] - dlat1 - dlat2)
		lon := geo.NormalizeLongitude(k.Lon[i] - dlon1 - dlon2)
		out[i-1] = report.Float(geo.SphereDistance(k.Lat[i-1], k.Lon[i-1], lat, lon))
	}
	return out
}

// midpointDiscrepancy interpolates between each report's neighbours by the
// fraction of elapsed time and returns the distance (km) from the actual
// position. The first and last entries are invalid.
func midpointDiscrepancy(k *report.Kinematics) []sql.NullFloat64 {
	out := make([]sql.NullFloat64, k.Len())
	for i := 1; i < k.Len()-1; i++ {
		t0, t1 := k.Step[i].TimeDiff, k.Step[i+1].TimeDiff
		fraction := 0.0
		if t0+t1 != 0 {
			fraction = t0 / (t0 + t1)
		}
		lat, lon := geo.IntermediatePoint(k.Lat[i-1], k.Lon[i-1], k.Lat[i+1], k.Lon[i+1], fraction)
		out[i] = report.Float(geo.SphereDistance(k.Lat[i], k.Lon[i], lat, lon))
	}
	return out
}

// Reckoning past a pole comes back as a latitude beyond 90; fold it back.
func clampLat(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}

// headingDifference returns the smallest angle between two headings.
func headingDifference(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
