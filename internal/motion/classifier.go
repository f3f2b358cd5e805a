package motion

import (
	"sync"

	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// Classifier tags settled viewport changes as programmatic or user driven.
// It holds a single one-shot flag: it is set right before code moves the map
// and consumed by the next settle, however many intermediate notifications
// the animation produced.
type Classifier struct {
	mu      sync.Mutex
	pending bool
}

// NewClassifier returns a classifier with no pending programmatic move.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// MarkPendingProgrammaticMove arms the flag for the next settle.
func (c *Classifier) MarkPendingProgrammaticMove() {
	c.mu.Lock()
	c.pending = true
	c.mu.Unlock()
}

// Classify reads and resets the flag, tagging region accordingly.
func (c *Classifier) Classify(region models.Region) models.ViewportChangeEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	origin := models.OriginUserGesture
	if c.pending {
		origin = models.OriginProgrammatic
		c.pending = false
	}

	return models.ViewportChangeEvent{Region: region, Origin: origin}
}
