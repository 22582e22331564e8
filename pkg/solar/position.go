// Package solar computes the apparent position of the sun for a point on the
// Earth's surface. It is used to separate daytime from night-time reports.
package solar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// DefaultDayElevationLimit is the solar elevation (degrees) above which a
// report is considered to be taken in daylight.
const DefaultDayElevationLimit = -2.5

// Position describes the sun as seen from a point on the surface.
type Position struct {
	DeclinationDeg float64
	EqOfTimeMin    float64
	HourAngleDeg   float64
	ElevationDeg   float64
	AzimuthDeg     float64
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }
func fixAngle(a float64) float64   { return a - 360.0*math.Floor(a/360.0) }

// SunPosition returns the sun's declination, hour angle, elevation and azimuth
// at time t (UTC) for the given latitude and longitude in degrees.
func SunPosition(t time.Time, lat, lon float64) Position {
	t = t.UTC()
	jd := julian.TimeToJD(t)
	T := (jd - 2451545.0) / 36525.0

	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032))
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)
	C := math.Sin(degToRad(M))*(1.914602-T*(0.004817+T*0.000014)) +
		math.Sin(degToRad(2*M))*(0.019993-T*0.000101) +
		math.Sin(degToRad(3*M))*0.000289
	sunLong := L0 + C
	omega := 125.04 - 1934.136*T
	lambda := sunLong - 0.00569 - 0.00478*math.Sin(degToRad(omega))
	eps0 := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60
	eps := eps0 + 0.00256*math.Cos(degToRad(omega))
	declRad := math.Asin(math.Sin(degToRad(eps)) * math.Sin(degToRad(lambda)))

	y := math.Tan(degToRad(eps)/2) * math.Tan(degToRad(eps)/2)
	eqTimeMin := radToDeg(y*math.Sin(degToRad(2*L0))-
		2*e*math.Sin(degToRad(M))+
		4*e*y*math.Sin(degToRad(M))*math.Cos(degToRad(2*L0))-
		0.5*y*y*math.Sin(degToRad(4*L0))-
		1.25*e*e*math.Sin(degToRad(2*M))) * 4

	utcMin := float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60.0 + float64(t.Nanosecond())/6e10
	trueSolarMin := utcMin + 4*lon + eqTimeMin
	ha := trueSolarMin/4 - 180
	if ha < -180 {
		ha += 360
	}
	haRad := degToRad(ha)

	latRad := degToRad(lat)
	cosZen := math.Sin(latRad)*math.Sin(declRad) + math.Cos(latRad)*math.Cos(declRad)*math.Cos(haRad)
	cosZen = math.Max(-1, math.Min(1, cosZen))
	zenRad := math.Acos(cosZen)

	var azDeg float64
	if den := math.Cos(latRad) * math.Sin(zenRad); math.Abs(den) > 1e-12 {
		azCos := (math.Sin(declRad) - math.Sin(latRad)*cosZen) / den
		azDeg = radToDeg(math.Acos(math.Max(-1, math.Min(1, azCos))))
		if ha > 0 {
			azDeg = 360 - azDeg
		}
	}

	return Position{
		DeclinationDeg: radToDeg(declRad),
		EqOfTimeMin:    eqTimeMin,
		HourAngleDeg:   ha,
		ElevationDeg:   90 - radToDeg(zenRad),
		AzimuthDeg:     azDeg,
	}
}

// Elevation returns the solar elevation in degrees.
func Elevation(t time.Time, lat, lon float64) float64 {
	return SunPosition(t, lat, lon).ElevationDeg
}

// IsDaytime reports whether the sun is above limitDeg at time t.
func IsDaytime(t time.Time, lat, lon, limitDeg float64) bool {
	return Elevation(t, lat, lon) > limitDeg
}
