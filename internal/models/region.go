package models

import (
	"errors"
	"fmt"
)

// ErrInvalidRegion is returned when a region has a non-positive extent or an invalid center.
var ErrInvalidRegion = errors.New("invalid region")

// Region is the visible extent of the map: its center plus the latitude/longitude span.
type Region struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	LatitudeDelta  float64 `json:"latitudeDelta"`
	LongitudeDelta float64 `json:"longitudeDelta"`
}

// NewRegion builds a validated region around center.
func NewRegion(center Coordinates, latDelta, lonDelta float64) (Region, error) {
	region := Region{
		Latitude:       center.Latitude,
		Longitude:      center.Longitude,
		LatitudeDelta:  latDelta,
		LongitudeDelta: lonDelta,
	}
	if err := region.Validate(); err != nil {
		return Region{}, err
	}

	return region, nil
}

// Validate checks that both deltas are strictly positive and the center is a valid point.
func (r Region) Validate() error {
	if !(r.LatitudeDelta > 0) || !(r.LongitudeDelta > 0) {
		return fmt.Errorf("%w: deltas must be positive, got %v/%v", ErrInvalidRegion, r.LatitudeDelta, r.LongitudeDelta)
	}
	if err := r.Center().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRegion, err)
	}

	return nil
}

// Center returns the coordinates the region is centered on.
func (r Region) Center() Coordinates {
	return Coordinates{Latitude: r.Latitude, Longitude: r.Longitude}
}

// Recenter returns a copy of the region moved to center, keeping its extent.
func (r Region) Recenter(center Coordinates) Region {
	r.Latitude = center.Latitude
	r.Longitude = center.Longitude
	return r
}
