package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/uzazi-health/chwplan/core/model"
)

func TestDistanceIdenticalPoints(t *testing.T) {
	p := model.Coordinates{Lat: -1.2921, Lng: 36.8219}
	d, err := Distance(p, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 0 {
		t.Fatalf("distance to self = %v, want 0", d)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := model.Coordinates{Lat: -1.2921, Lng: 36.8219}
	b := model.Coordinates{Lat: -4.0435, Lng: 39.6682}
	d1, err := Distance(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d2, err := Distance(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d1 != d2 {
		t.Fatalf("asymmetric distance: %v vs %v", d1, d2)
	}
	if d1 <= 0 {
		t.Fatalf("distance between distinct points = %v, want > 0", d1)
	}
}

func TestDistanceKnownValues(t *testing.T) {
	// One degree of latitude along a meridian is R*pi/180 km.
	d, err := Distance(model.Coordinates{Lat: 0, Lng: 0}, model.Coordinates{Lat: 1, Lng: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(d-111.1949) > 0.001 {
		t.Errorf("one degree latitude = %v km, want ~111.1949", d)
	}

	// Antipodal along the equator is half the circumference.
	d, err = Distance(model.Coordinates{Lat: 0, Lng: 0}, model.Coordinates{Lat: 0, Lng: 180})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(d-EarthRadiusKm*math.Pi) > 0.001 {
		t.Errorf("antipodal distance = %v km, want %v", d, EarthRadiusKm*math.Pi)
	}
}

func TestDistanceInvalidInput(t *testing.T) {
	ok := model.Coordinates{Lat: 0, Lng: 0}
	cases := []struct {
		name string
		c    model.Coordinates
	}{
		{"lat out of range", model.Coordinates{Lat: 90.5, Lng: 0}},
		{"lng out of range", model.Coordinates{Lat: 0, Lng: -180.5}},
		{"nan", model.Coordinates{Lat: math.NaN(), Lng: 0}},
		{"inf", model.Coordinates{Lat: 0, Lng: math.Inf(-1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Distance(ok, tc.c); !errors.Is(err, ErrInvalidCoordinate) {
				t.Fatalf("Distance(ok, %v) error = %v, want ErrInvalidCoordinate", tc.c, err)
			}
			if _, err := Distance(tc.c, ok); !errors.Is(err, ErrInvalidCoordinate) {
				t.Fatalf("Distance(%v, ok) error = %v, want ErrInvalidCoordinate", tc.c, err)
			}
		})
	}
}
