// Package geo provides the great-circle distance used by the scheduler.
// Geodesic kilometers stand in for travel cost; road-network routing is
// out of scope.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/uzazi-health/chwplan/core/model"
)

// EarthRadiusKm is the mean Earth radius of the reference sphere.
const EarthRadiusKm = 6371.0

// ErrInvalidCoordinate reports a non-finite component or a coordinate
// outside the WGS84 bounds.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Distance returns the great-circle distance between two points in
// kilometers. It fails on the first invalid input rather than producing
// a silent garbage distance.
func Distance(a, b model.Coordinates) (float64, error) {
	if !a.Valid() {
		return 0, fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidCoordinate, a.Lat, a.Lng)
	}
	if !b.Valid() {
		return 0, fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidCoordinate, b.Lat, b.Lng)
	}

	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c, nil
}
