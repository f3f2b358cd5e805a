package models

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinates is returned when a latitude or longitude is out of range or not a number.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Coordinates represents a geographical point defined by its latitude and longitude.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`  // Latitude of the geographical point.
	Longitude float64 `json:"longitude"` // Longitude of the geographical point.
}

// Validate reports whether the point lies within the WGS84 ranges.
func (c Coordinates) Validate() error {
	const maxLat, maxLon = 90, 180
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		math.Abs(c.Latitude) > maxLat || math.Abs(c.Longitude) > maxLon {
		return fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidCoordinates, c.Latitude, c.Longitude)
	}

	return nil
}
