package device

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// ErrNoFix is returned when no position has been reported yet.
var ErrNoFix = errors.New("no position fix")

// StaticLocator is a location service fed from configuration or by the client
// reporting its own fix. It satisfies permission.LocationService.
type StaticLocator struct {
	mu      sync.RWMutex
	log     *slog.Logger
	granted bool
	fix     *models.Coordinates
}

// NewStaticLocator creates a locator. fix may be nil when the position is not known up front.
func NewStaticLocator(granted bool, fix *models.Coordinates, log *slog.Logger) *StaticLocator {
	return &StaticLocator{log: log, granted: granted, fix: fix}
}

// RequestForegroundPermission reports the configured permission answer.
func (s *StaticLocator) RequestForegroundPermission(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	s.log.DebugContext(ctx, "Foreground location permission requested", "granted", s.granted)

	return s.granted, nil
}

// CurrentPosition returns the last reported fix.
func (s *StaticLocator) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fix == nil {
		return models.Coordinates{}, ErrNoFix
	}

	return *s.fix, nil
}

// Report replaces the current fix.
func (s *StaticLocator) Report(ctx context.Context, coords models.Coordinates) error {
	if err := coords.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.fix = &coords
	s.mu.Unlock()
	s.log.DebugContext(ctx, "Device position reported", "lat", coords.Latitude, "lon", coords.Longitude)

	return nil
}

// SetPermission changes the answer given to permission requests.
func (s *StaticLocator) SetPermission(granted bool) {
	s.mu.Lock()
	s.granted = granted
	s.mu.Unlock()
}
