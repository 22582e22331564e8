package geo

import (
	"math"
	"testing"
)

func TestIdenticalPointsHaveZeroDistance(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{90, 0},
		{-90, 45},
		{51.5, -0.12},
		{-33.9, 180},
		{12.3, -179.9},
	}

	for _, p := range points {
		if d := AngularDistance(p[0], p[1], p[0], p[1]); d != 0 {
			t.Errorf("AngularDistance(%v, %v) = %v, expected 0", p, p, d)
		}
		if d := SphereDistance(p[0], p[1], p[0], p[1]); d != 0 {
			t.Errorf("SphereDistance(%v, %v) = %v, expected 0", p, p, d)
		}
	}
}

func TestEquivalentCoordinatesHaveZeroDistance(t *testing.T) {
	pairs := [][4]float64{
		{0, 180, 0, -180},
		{-45, 360, -45, 0},
		{12.5, -190, 12.5, 170},
		{90, 0, 90, 120},
		{-90, -45, -90, 179},
	}

	for _, p := range pairs {
		if d := AngularDistance(p[0], p[1], p[2], p[3]); d != 0 {
			t.Errorf("AngularDistance(%v, %v, %v, %v) = %v, expected 0", p[0], p[1], p[2], p[3], d)
		}
		if d := SphereDistance(p[0], p[1], p[2], p[3]); d != 0 {
			t.Errorf("SphereDistance(%v, %v, %v, %v) = %v, expected 0", p[0], p[1], p[2], p[3], d)
		}
	}
}

func TestSphereDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		expected               float64
		epsilon                float64
	}{
		{
			name: "pole to pole",
			lat1: 90, lon1: 0, lat2: -90, lon2: 0,
			expected: math.Pi * EarthRadiusKm,
			epsilon:  1e-6,
		},
		{
			name: "antipodal on equator",
			lat1: 0, lon1: 0, lat2: 0, lon2: 180,
			expected: math.Pi * EarthRadiusKm,
			epsilon:  1e-6,
		},
		{
			name: "one degree of longitude at the equator",
			lat1: 0, lon1: 0, lat2: 0, lon2: 1,
			expected: math.Pi / 180 * EarthRadiusKm,
			epsilon:  1e-6,
		},
		{
			name: "across the dateline",
			lat1: 0, lon1: 179.5, lat2: 0, lon2: -179.5,
			expected: math.Pi / 180 * EarthRadiusKm,
			epsilon:  1e-6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SphereDistance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.IsNaN(got) {
				t.Fatalf("SphereDistance returned NaN")
			}
			if math.Abs(got-tt.expected) > tt.epsilon {
				t.Errorf("SphereDistance = %.9f, expected %.9f", got, tt.expected)
			}
		})
	}
}

func TestCourseBetweenPoints(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		expected               float64
	}{
		{"north", 0, 0, 1, 0, 0},
		{"east", 0, 0, 0, 1, 90},
		{"south", 0, 0, -1, 0, 180},
		{"west", 0, 0, 0, -1, 270},
		{"east across dateline", 0, 179.5, 0, -179.5, 90},
		{"from north pole", 90, 0, 10, 30, 180},
		{"from south pole", -90, 0, 10, 30, 0},
		{"coincident", 10, 10, 10, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CourseBetweenPoints(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if got < 0 || got >= 360 {
				t.Fatalf("course %v outside [0, 360)", got)
			}
			if math.Abs(got-tt.expected) > 1e-6 {
				t.Errorf("CourseBetweenPoints = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestDeadReckoningRoundTrip(t *testing.T) {
	pairs := [][4]float64{
		{0, 0, 10, 10},
		{45, -30, 47, -25},
		{-60, 170, -58, -175},
		{10, 179, 12, -178},
		{-5, 20, 30, 100},
		{70, 0, 70, 90},
	}

	for _, p := range pairs {
		course := CourseBetweenPoints(p[0], p[1], p[2], p[3])
		dist := SphereDistance(p[0], p[1], p[2], p[3])
		lat, lon := LatLonFromCourseAndDistance(p[0], p[1], course, dist)

		if miss := SphereDistance(lat, lon, p[2], p[3]); miss > 1e-6 {
			t.Errorf("round trip from (%v, %v) to (%v, %v) missed by %v km (got %v, %v)",
				p[0], p[1], p[2], p[3], miss, lat, lon)
		}
	}
}

func TestLatLonFromCourseAndDistanceNormalizesLongitude(t *testing.T) {
	_, lon := LatLonFromCourseAndDistance(0, 179.9, 90, 100)
	if lon <= -180 || lon > 180 {
		t.Fatalf("longitude %v outside (-180, 180]", lon)
	}
	if lon > 0 {
		t.Errorf("expected to cross the dateline, got longitude %v", lon)
	}
}

func TestIntermediatePoint(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		fraction               float64
		expLat, expLon         float64
	}{
		{"start", 0, 0, 0, 10, 0, 0, 0},
		{"end", 0, 0, 0, 10, 1, 0, 10},
		{"halfway on equator", 0, 0, 0, 10, 0.5, 0, 5},
		{"fraction clamped low", 0, 0, 0, 10, -3, 0, 0},
		{"fraction clamped high", 0, 0, 0, 10, 4, 0, 10},
		{"halfway across dateline", 0, 179, 0, -179, 0.5, 0, 180},
		{"coincident", 12, 34, 12, 34, 0.7, 12, 34},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon := IntermediatePoint(tt.lat1, tt.lon1, tt.lat2, tt.lon2, tt.fraction)
			if miss := SphereDistance(lat, lon, tt.expLat, tt.expLon); miss > 1e-6 {
				t.Errorf("IntermediatePoint = (%v, %v), expected (%v, %v)", lat, lon, tt.expLat, tt.expLon)
			}
		})
	}
}

func TestIntermediatePointAntipodal(t *testing.T) {
	lat, lon := IntermediatePoint(0, 0, 0, 180, 0.5)
	if math.IsNaN(lat) || math.IsNaN(lon) {
		t.Fatalf("IntermediatePoint returned NaN for antipodal endpoints")
	}
	d := SphereDistance(0, 0, lat, lon)
	if math.Abs(d-math.Pi/2*EarthRadiusKm) > 1e-3 {
		t.Errorf("halfway point is %v km from start, expected a quarter circumference", d)
	}
}

func TestNormalizeLongitude(t *testing.T) {
	tests := []struct {
		in, expected float64
	}{
		{0, 0},
		{180, 180},
		{-180, 180},
		{190, -170},
		{-190, 170},
		{540, 180},
		{359, -1},
	}

	for _, tt := range tests {
		if got := NormalizeLongitude(tt.in); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("NormalizeLongitude(%v) = %v, expected %v", tt.in, got, tt.expected)
		}
	}
}
