package telemetry

import (
	"math"
	"testing"
)

func TestHaversine_same_point_is_zero(t *testing.T) {
	if d := Haversine(19.4326, -99.1332, 19.4326, -99.1332); d != 0 {
		t.Errorf("distance(p, p) = %v, want 0", d)
	}
}

func TestHaversine_symmetric(t *testing.T) {
	d1 := Haversine(19.4326, -99.1332, 40.4168, -3.7038)
	d2 := Haversine(40.4168, -3.7038, 19.4326, -99.1332)
	if math.Abs(d1-d2) > 1e-6 {
		t.Errorf("asymmetric: %v vs %v", d1, d2)
	}
}

func TestHaversine_known_pair(t *testing.T) {
	// Two points in Mexico City roughly 440 m apart.
	d := Haversine(19.4326, -99.1332, 19.4300, -99.1300)
	if d < 400 || d > 500 {
		t.Errorf("distance = %v m, want roughly 440 m", d)
	}
}

func TestHaversine_quarter_meridian(t *testing.T) {
	// Equator to pole along a meridian: pi/2 * R.
	want := math.Pi / 2 * earthRadiusMeters
	d := Haversine(0, 0, 90, 0)
	if math.Abs(d-want) > 1 {
		t.Errorf("distance = %v, want %v", d, want)
	}
}
