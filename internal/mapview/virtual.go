package mapview

import (
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// Listener receives the widget's viewport callbacks.
type Listener interface {
	OnRegionChange(region models.Region)
	OnRegionChangeComplete(region models.Region)
}

// VirtualMap is a headless map widget. AnimateToRegion plays an animation in
// the background: a series of OnRegionChange frames followed by exactly one
// OnRegionChangeComplete. Starting a new animation or a pan interrupts the
// running one, which then reports nothing further.
type VirtualMap struct {
	emitMu sync.Mutex // serializes callbacks with interruption
	mu     sync.Mutex
	log    *slog.Logger

	listener Listener
	current  models.Region
	frame    time.Duration
	stop     chan struct{}
	running  sync.WaitGroup
}

// New creates a map showing initial. frame is the interval between animation frames.
func New(initial models.Region, frame time.Duration, log *slog.Logger) *VirtualMap {
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}
	return &VirtualMap{current: initial, frame: frame, log: log}
}

// SetListener registers the receiver of viewport callbacks.
func (m *VirtualMap) SetListener(l Listener) {
	m.mu.Lock()
	m.listener = l
	m.mu.Unlock()
}

// Region returns the region currently shown.
func (m *VirtualMap) Region() models.Region {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// AnimateToRegion moves the map to target over duration.
func (m *VirtualMap) AnimateToRegion(target models.Region, duration time.Duration) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	m.mu.Lock()
	m.interruptLocked()
	stop := make(chan struct{})
	m.stop = stop
	from := m.current
	m.mu.Unlock()

	steps := int(duration / m.frame)
	if steps < 1 {
		steps = 1
	}

	m.log.Debug("Animating map", "lat", target.Latitude, "lon", target.Longitude, "frames", steps)

	m.running.Add(1)
	go m.play(from, target, steps, stop)
}

// Pan replays a user drag through the given regions, interrupting any animation.
func (m *VirtualMap) Pan(path ...models.Region) {
	if len(path) == 0 {
		return
	}

	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	m.mu.Lock()
	m.interruptLocked()
	m.current = path[len(path)-1]
	listener := m.listener
	m.mu.Unlock()

	if listener == nil {
		return
	}
	for _, r := range path {
		listener.OnRegionChange(r)
	}
	listener.OnRegionChangeComplete(path[len(path)-1])
}

// Wait blocks until background animations have finished or been interrupted.
func (m *VirtualMap) Wait() {
	m.running.Wait()
}

// Close interrupts any running animation.
func (m *VirtualMap) Close() {
	m.mu.Lock()
	m.interruptLocked()
	m.mu.Unlock()
}

func (m *VirtualMap) play(from, target models.Region, steps int, stop chan struct{}) {
	defer m.running.Done()

	ticker := time.NewTicker(m.frame)
	defer ticker.Stop()

	for i := 1; i <= steps; i++ {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		frame := target
		if i < steps {
			frame = interpolate(from, target, float64(i)/float64(steps))
		}
		if !m.emit(stop, frame, i == steps) {
			return
		}
	}
}

// emit delivers one frame unless the animation was interrupted meanwhile.
func (m *VirtualMap) emit(stop chan struct{}, region models.Region, final bool) bool {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	select {
	case <-stop:
		return false
	default:
	}

	m.mu.Lock()
	m.current = region
	listener := m.listener
	if final && m.stop == stop {
		m.stop = nil
	}
	m.mu.Unlock()

	if listener == nil {
		return true
	}
	if final {
		listener.OnRegionChangeComplete(region)
	} else {
		listener.OnRegionChange(region)
	}
	return true
}

func (m *VirtualMap) interruptLocked() {
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
}

func interpolate(from, to models.Region, t float64) models.Region {
	lerp := func(a, b float64) float64 { return a + (b-a)*t }
	return models.Region{
		Latitude:       lerp(from.Latitude, to.Latitude),
		Longitude:      lerp(from.Longitude, to.Longitude),
		LatitudeDelta:  lerp(from.LatitudeDelta, to.LatitudeDelta),
		LongitudeDelta: lerp(from.LongitudeDelta, to.LongitudeDelta),
	}
}
