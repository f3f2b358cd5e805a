package models

import "strings"

// Place is the structured result of a reverse-geocoding lookup.
type Place struct {
	Name    string // Name is the street address or point of interest.
	City    string
	Country string
}

// Format renders the place as "name, city, country", skipping empty parts.
func (p Place) Format() string {
	const placeParts = 3
	parts := make([]string, 0, placeParts)
	for _, part := range []string{p.Name, p.City, p.Country} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}

	return strings.Join(parts, ", ")
}

// ResolutionRequest is one reverse-geocoding request issued by the resolver.
type ResolutionRequest struct {
	ID          uint64
	Coordinates Coordinates
}

// ResolvedAddress carries the display text together with the id of the request that produced it.
type ResolvedAddress struct {
	Text      string
	RequestID uint64
}

// Selection is the one-time payload handed back by the external address search.
type Selection struct {
	Latitude  float64 `json:"selectedLatitude"`
	Longitude float64 `json:"selectedLongitude"`
	Address   string  `json:"selectedAddress"`
}

// Coordinates returns the selected point.
func (s Selection) Coordinates() Coordinates {
	return Coordinates{Latitude: s.Latitude, Longitude: s.Longitude}
}

// ConfirmedLocation is the value handed to the next booking step.
type ConfirmedLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}
