// Package geo provides great-circle helpers for positions given in degrees.
//
// Latitudes are expected in [-90, 90]. Callers validate positions before
// handing them to this package; nothing here clamps an out-of-range latitude.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for all distances.
const EarthRadiusKm = 6371.0088

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

// NormalizeLongitude maps lon into (-180, 180].
func NormalizeLongitude(lon float64) float64 {
	lon = math.Mod(lon, 360.0)
	if lon <= -180.0 {
		lon += 360.0
	} else if lon > 180.0 {
		lon -= 360.0
	}
	return lon
}

// ValidLatitude reports whether lat lies in [-90, 90].
func ValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && lat >= -90.0 && lat <= 90.0
}

// AngularDistance returns the great-circle angle between two points in radians.
// It uses the haversine form, which stays well conditioned for small separations.
func AngularDistance(lat1, lon1, lat2, lon2 float64) float64 {
	if samePoint(lat1, lon1, lat2, lon2) {
		return 0
	}

	phi1 := degToRad(lat1)
	phi2 := degToRad(lat2)
	dPhi := degToRad(lat2 - lat1)
	dLambda := degToRad(lon2 - lon1)

	sinLat := math.Sin(dPhi / 2)
	sinLon := math.Sin(dLambda / 2)
	h := sinLat*sinLat + math.Cos(phi1)*math.Cos(phi2)*sinLon*sinLon

	// rounding can push h a hair past 1 for antipodal points
	if h > 1 {
		h = 1
	}
	return 2 * math.Asin(math.Sqrt(h))
}

// samePoint reports whether two coordinates name the same place: longitudes
// are compared after normalization, and at a pole longitude is ignored.
func samePoint(lat1, lon1, lat2, lon2 float64) bool {
	if lat1 != lat2 {
		return false
	}
	if math.Abs(lat1) == 90 {
		return true
	}
	return NormalizeLongitude(lon1) == NormalizeLongitude(lon2)
}

// SphereDistance returns the great-circle distance between two points in km.
func SphereDistance(lat1, lon1, lat2, lon2 float64) float64 {
	return AngularDistance(lat1, lon1, lat2, lon2) * EarthRadiusKm
}

// CourseBetweenPoints returns the initial bearing from the first point to the
// second, in degrees in [0, 360). Coincident points give 0.
func CourseBetweenPoints(lat1, lon1, lat2, lon2 float64) float64 {
	if AngularDistance(lat1, lon1, lat2, lon2) == 0 {
		return 0
	}

	phi1 := degToRad(lat1)
	phi2 := degToRad(lat2)
	dLambda := degToRad(lon2 - lon1)

	var course float64
	if math.Cos(phi1) < 1e-7 {
		// Starting at a pole every direction is south or north.
		if phi1 > 0 {
			course = math.Pi
		}
	} else {
		y := math.Sin(dLambda) * math.Cos(phi2)
		x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
		course = math.Atan2(y, x)
	}

	course = math.Mod(radToDeg(course), 360.0)
	if course < 0 {
		course += 360.0
	}
	if course >= 360.0 {
		course = 0
	}
	return course
}

// LatLonFromCourseAndDistance dead-reckons from a start point along the given
// initial course (degrees) for distanceKm. The returned longitude is
// normalized to (-180, 180].
func LatLonFromCourseAndDistance(lat1, lon1, course, distanceKm float64) (float64, float64) {
	phi1 := degToRad(lat1)
	theta := degToRad(course)
	delta := distanceKm / EarthRadiusKm

	sinPhi2 := math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta)
	sinPhi2 = math.Max(-1, math.Min(1, sinPhi2))
	phi2 := math.Asin(sinPhi2)

	dLambda := math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*sinPhi2,
	)

	return radToDeg(phi2), NormalizeLongitude(lon1 + radToDeg(dLambda))
}

// IntermediatePoint returns the point a given fraction of the way along the
// great circle from the first point to the second. The fraction is clamped to
// [0, 1]; coincident endpoints return the first point.
func IntermediatePoint(lat1, lon1, lat2, lon2, fraction float64) (float64, float64) {
	fraction = math.Max(0, math.Min(1, fraction))

	d := AngularDistance(lat1, lon1, lat2, lon2)
	if d == 0 {
		return lat1, lon1
	}

	sinD := math.Sin(d)
	if math.Abs(sinD) < 1e-12 {
		// Antipodal endpoints do not define a unique great circle; walk the
		// numerically computed initial course instead.
		course := CourseBetweenPoints(lat1, lon1, lat2, lon2)
		return LatLonFromCourseAndDistance(lat1, lon1, course, fraction*d*EarthRadiusKm)
	}

	phi1, lambda1 := degToRad(lat1), degToRad(lon1)
	phi2, lambda2 := degToRad(lat2), degToRad(lon2)

	a := math.Sin((1-fraction)*d) / sinD
	b := math.Sin(fraction*d) / sinD

	x := a*math.Cos(phi1)*math.Cos(lambda1) + b*math.Cos(phi2)*math.Cos(lambda2)
	y := a*math.Cos(phi1)*math.Sin(lambda1) + b*math.Cos(phi2)*math.Sin(lambda2)
	z := a*math.Sin(phi1) + b*math.Sin(phi2)

	lat := math.Atan2(z, math.Sqrt(x*x+y*y))
	lon := math.Atan2(y, x)
	return radToDeg(lat), NormalizeLongitude(radToDeg(lon))
}
