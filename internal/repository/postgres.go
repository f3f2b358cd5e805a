package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/pinpoint/internal/models"
)

const (
	// DefaultRecentLimit is used when a non-positive limit is requested.
	DefaultRecentLimit = 10
	// MaxRecentLimit caps how many rows a single call returns.
	MaxRecentLimit = 100
)

// EnsureSchema creates the locations table when it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS locations (
			id BIGSERIAL PRIMARY KEY,
			address TEXT NOT NULL UNIQUE,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			confirmed_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create locations table: %w", err)
	}

	return nil
}

// SaveLocation stores a confirmed location. Confirming an address that is
// already stored moves it to the top of the recent list with the new coordinates.
func (r *Repository) SaveLocation(
	ctx context.Context,
	location models.ConfirmedLocation,
) (models.SavedLocation, error) {
	query := `
		INSERT INTO locations (address, latitude, longitude, confirmed_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (address) DO UPDATE
		SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			confirmed_at = now()
		RETURNING id, confirmed_at;
	`

	saved := models.SavedLocation{
		Address:   location.Address,
		Latitude:  location.Latitude,
		Longitude: location.Longitude,
	}
	err := r.db.QueryRow(ctx, query, location.Address, location.Latitude, location.Longitude).
		Scan(&saved.ID, &saved.ConfirmedAt)
	if err != nil {
		return models.SavedLocation{}, fmt.Errorf("failed to save confirmed location: %w", err)
	}

	r.log.DebugContext(ctx, "Confirmed location saved", "ID", saved.ID, "Address", saved.Address)

	return saved, nil
}

// RecentLocations returns up to limit confirmed locations, most recent first.
func (r *Repository) RecentLocations(ctx context.Context, limit int) ([]models.SavedLocation, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	limit = min(limit, MaxRecentLimit)

	query := `
		SELECT id, address, latitude, longitude, confirmed_at
		FROM locations
		ORDER BY confirmed_at DESC
		LIMIT $1;
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent locations: %w", err)
	}
	defer rows.Close()

	locations := []models.SavedLocation{}
	for rows.Next() {
		var loc models.SavedLocation
		if errScan := rows.Scan(&loc.ID, &loc.Address, &loc.Latitude, &loc.Longitude, &loc.ConfirmedAt); errScan != nil {
			return nil, fmt.Errorf("failed to scan recent location: %w", errScan)
		}
		locations = append(locations, loc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return locations, nil
}
