package models

import "time"

// SavedLocation is a confirmed location as stored for the recent addresses list.
type SavedLocation struct {
	ID          int64     `json:"id"`
	Address     string    `json:"address"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}
