package geo

import (
	"math"
	"testing"
)

func TestDistanceIdentity(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{-6.2088, 106.8456},
		{51.5074, -0.1278},
		{-90, 180},
	}
	for _, p := range points {
		if d := Distance(p[0], p[1], p[0], p[1]); d != 0 {
			t.Errorf("Distance(p, p) = %v for %v, want 0", d, p)
		}
	}
}

func TestDistanceSymmetryAndNonNegative(t *testing.T) {
	pairs := [][4]float64{
		{-6.2088, 106.8456, -6.1751, 106.8650},
		{51.5074, -0.1278, 48.8566, 2.3522},
		{0, 0, 0, 180},
		{10, -20, -30, 40},
	}
	for _, p := range pairs {
		ab := Distance(p[0], p[1], p[2], p[3])
		ba := Distance(p[2], p[3], p[0], p[1])
		if ab < 0 {
			t.Errorf("Distance = %v, want non-negative", ab)
		}
		if math.Abs(ab-ba) > 1e-6 {
			t.Errorf("Distance not symmetric: %v vs %v", ab, ba)
		}
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// Central Jakarta to Monas is roughly 1.1 km; one degree of latitude
	// at the equator is roughly 111.19 km.
	d := Distance(0, 0, 1, 0)
	if d < 111000 || d > 111500 {
		t.Errorf("Distance over 1 degree latitude = %v m, want ~111190 m", d)
	}
}

func TestIsWithin(t *testing.T) {
	boundary := Circle{Latitude: -6.2088, Longitude: 106.8456, RadiusMeters: 100}

	within, dist := IsWithin(-6.2088, 106.8456, boundary)
	if !within || dist != 0 {
		t.Errorf("IsWithin(center) = (%v, %d), want (true, 0)", within, dist)
	}

	// ~0.01 degrees of latitude is ~1.1 km, well outside a 100 m radius.
	within, dist = IsWithin(-6.2188, 106.8456, boundary)
	if within {
		t.Errorf("IsWithin(1.1km away) = true, want false (distance %d)", dist)
	}
	if dist < 1000 || dist > 1200 {
		t.Errorf("reported distance = %d, want ~1112 m", dist)
	}
}

func TestIsWithinToleranceAtEdge(t *testing.T) {
	// A point ~111 m north of center: inside a 110 m radius only because
	// of the 2 m tolerance, outside a 100 m radius regardless.
	center := Circle{Latitude: 0, Longitude: 0, RadiusMeters: 110}
	lat := 0.001 // ~111.19 m

	within, dist := IsWithin(lat, 0, center)
	if !within {
		t.Errorf("IsWithin inside radius+tolerance = false (distance %d)", dist)
	}

	center.RadiusMeters = 100
	within, _ = IsWithin(lat, 0, center)
	if within {
		t.Errorf("IsWithin beyond radius+tolerance = true")
	}
}

func TestIsWithinMonotonicInRadius(t *testing.T) {
	boundary := Circle{Latitude: 37.7749, Longitude: -122.4194}
	lat, lon := 37.7793, -122.4193

	wasWithin := false
	for radius := 0.0; radius <= 2000; radius += 50 {
		boundary.RadiusMeters = radius
		within, _ := IsWithin(lat, lon, boundary)
		if wasWithin && !within {
			t.Fatalf("increasing radius to %v turned within=true back to false", radius)
		}
		wasWithin = within
	}
	if !wasWithin {
		t.Errorf("point never within boundary even at 2000 m radius")
	}
}
