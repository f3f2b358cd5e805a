package navigation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// ParamsBridge holds the one-time payload returned by the address search
// screen until the location screen consumes it.
type ParamsBridge struct {
	mu      sync.Mutex
	pending *models.Selection
	log     *slog.Logger
}

// NewParamsBridge creates an empty bridge.
func NewParamsBridge(log *slog.Logger) *ParamsBridge {
	return &ParamsBridge{log: log}
}

// Deliver stores a selection, replacing any unconsumed one.
func (b *ParamsBridge) Deliver(ctx context.Context, sel models.Selection) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending != nil {
		b.log.DebugContext(ctx, "Replacing unconsumed selection", "address", b.pending.Address)
	}
	b.pending = &sel
}

// PendingSelection returns the stored selection, if any, without consuming it.
func (b *ParamsBridge) PendingSelection() (models.Selection, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return models.Selection{}, false
	}
	return *b.pending, true
}

// ClearConsumedParams drops the stored selection so it cannot be applied twice.
func (b *ParamsBridge) ClearConsumedParams() {
	b.mu.Lock()
	b.pending = nil
	b.mu.Unlock()
}
