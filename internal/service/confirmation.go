package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/pinpoint/internal/metrics"
	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/UnknownOlympus/pinpoint/internal/repository"
)

// ErrNoAddress is returned when confirming before any address is known.
var ErrNoAddress = errors.New("no address to confirm")

// LocationSource supplies the location the user is confirming.
type LocationSource interface {
	ConfirmLocation() models.ConfirmedLocation
}

// Publisher hands a confirmed location to the next booking step.
type Publisher interface {
	Publish(ctx context.Context, location models.ConfirmedLocation) error
}

// ConfirmationService finishes the location step: the confirmed location is
// stored for the recent addresses list and handed off to the booking flow.
type ConfirmationService struct {
	log       *slog.Logger         // Logger for logging service activities
	repo      repository.Interface // Store of confirmed locations
	publisher Publisher            // Handoff to the next step, nil disables it
	metrics   *metrics.Metrics
}

// NewConfirmationService creates a new instance of ConfirmationService.
// publisher may be nil when no handoff transport is configured.
func NewConfirmationService(
	log *slog.Logger,
	repo repository.Interface,
	publisher Publisher,
	metrics *metrics.Metrics,
) *ConfirmationService {
	return &ConfirmationService{
		log:       log,
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
	}
}

// Confirm takes the current location from source, stores it and publishes it.
func (cs *ConfirmationService) Confirm(ctx context.Context, source LocationSource) (models.SavedLocation, error) {
	location := source.ConfirmLocation()
	if location.Address == "" {
		return models.SavedLocation{}, ErrNoAddress
	}

	saved, err := cs.repo.SaveLocation(ctx, location)
	if err != nil {
		cs.log.ErrorContext(ctx, "Failed to store confirmed location", "address", location.Address, "error", err)
		return models.SavedLocation{}, fmt.Errorf("failed to confirm location: %w", err)
	}

	if cs.publisher != nil {
		if err = cs.publisher.Publish(ctx, location); err != nil {
			cs.log.ErrorContext(ctx, "Failed to hand off confirmed location", "address", location.Address, "error", err)
			return saved, fmt.Errorf("failed to confirm location: %w", err)
		}
	} else {
		cs.log.DebugContext(ctx, "Handoff disabled, location stored only", "address", location.Address)
	}

	cs.metrics.Confirmations.Inc()
	cs.log.InfoContext(ctx, "Location confirmed", "ID", saved.ID, "address", saved.Address)

	return saved, nil
}

// Recent returns the most recently confirmed locations.
func (cs *ConfirmationService) Recent(ctx context.Context, limit int) ([]models.SavedLocation, error) {
	locations, err := cs.repo.RecentLocations(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent locations: %w", err)
	}

	return locations, nil
}
