package permission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// Status is the outcome of a permission request.
type Status int

const (
	StatusDenied Status = iota
	StatusGranted
)

func (s Status) String() string {
	if s == StatusGranted {
		return "granted"
	}
	return "denied"
}

// Both conditions are recoverable and shown to the user as a notice.
var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
)

// LocationService is the device's location API.
type LocationService interface {
	RequestForegroundPermission(ctx context.Context) (bool, error)
	CurrentPosition(ctx context.Context) (models.Coordinates, error)
}

// Gate wraps the device location API so that every failure becomes one of
// the two recoverable conditions above.
type Gate struct {
	svc     LocationService
	timeout time.Duration
	log     *slog.Logger
}

// NewGate creates a gate. A positive timeout bounds each position fix.
func NewGate(svc LocationService, timeout time.Duration, log *slog.Logger) *Gate {
	return &Gate{svc: svc, timeout: timeout, log: log}
}

// RequestPermission asks for foreground location access.
// Errors from the device are treated as a denial.
func (g *Gate) RequestPermission(ctx context.Context) Status {
	granted, err := g.svc.RequestForegroundPermission(ctx)
	if err != nil {
		g.log.WarnContext(ctx, "Permission request failed, treating as denied", "error", err)
		return StatusDenied
	}
	if !granted {
		return StatusDenied
	}

	return StatusGranted
}

// CurrentPosition returns the device fix or an error wrapping ErrPositionUnavailable.
func (g *Gate) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	coords, err := g.svc.CurrentPosition(ctx)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: %w", ErrPositionUnavailable, err)
	}
	if err = coords.Validate(); err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: %w", ErrPositionUnavailable, err)
	}

	return coords, nil
}
