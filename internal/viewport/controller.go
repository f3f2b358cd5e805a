package viewport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/metrics"
	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/UnknownOlympus/pinpoint/internal/motion"
	"github.com/UnknownOlympus/pinpoint/internal/permission"
	"github.com/UnknownOlympus/pinpoint/internal/resolver"
)

// Notices shown to the user when centering cannot proceed.
const (
	NoticePermissionDenied    = "Permission denied"
	NoticePositionUnavailable = "Current position is unavailable"
)

// ErrClosed is returned by operations on a controller that has been torn down.
var ErrClosed = errors.New("viewport controller closed")

// MapWidget is the imperative side of the map.
type MapWidget interface {
	AnimateToRegion(region models.Region, duration time.Duration)
}

// NavigationBridge hands over the result of the external address search.
type NavigationBridge interface {
	PendingSelection() (models.Selection, bool)
	ClearConsumedParams()
}

// Notifier shows non-fatal notices to the user.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Options tune the controller. Zero values fall back to DefaultOptions.
type Options struct {
	DefaultRegion     models.Region // shown until the first move
	CenterDelta       float64       // zoom used when centering on the device
	AnimationDuration time.Duration // duration of programmatic moves
	QuietWindow       time.Duration // debouncer fallback; zero relies on the widget's completion signal
}

// DefaultRegion is the region shown at mount for a screen with the given width/height ratio.
func DefaultRegion(aspectRatio float64) models.Region {
	const latitudeDelta = 0.0922
	if aspectRatio <= 0 {
		aspectRatio = 0.5
	}
	return models.Region{
		Latitude:       37.78825,
		Longitude:      -122.4324,
		LatitudeDelta:  latitudeDelta,
		LongitudeDelta: latitudeDelta * aspectRatio,
	}
}

// DefaultOptions returns the options used for zero fields.
func DefaultOptions() Options {
	return Options{
		DefaultRegion:     DefaultRegion(0),
		CenterDelta:       0.01,
		AnimationDuration: time.Second,
	}
}

// Controller keeps the map region and the displayed address in sync.
//
// It is the only writer of region and address. Lookups run in their own
// goroutines and their results pass two checks before being applied: the
// controller must still be active, and the result must belong to the most
// recently issued request.
type Controller struct {
	log        *slog.Logger
	gate       *permission.Gate
	resolver   *resolver.Resolver
	classifier *motion.Classifier
	debouncer  *motion.Debouncer
	mapWidget  MapWidget
	nav        NavigationBridge
	notifier   Notifier
	metrics    *metrics.Metrics
	opts       Options

	lookupCtx context.Context
	cancel    context.CancelFunc
	lookups   sync.WaitGroup

	mu        sync.Mutex
	active    bool
	region    models.Region
	address   string
	phase     Phase
	pendingID uint64 // id of the outstanding lookup, zero when none
}

// New wires a controller. The caller must route the map widget's callbacks
// to OnRegionChange and OnRegionChangeComplete.
func New(
	log *slog.Logger,
	gate *permission.Gate,
	res *resolver.Resolver,
	mapWidget MapWidget,
	nav NavigationBridge,
	notifier Notifier,
	metrics *metrics.Metrics,
	opts Options,
) *Controller {
	defaults := DefaultOptions()
	if opts.DefaultRegion.Validate() != nil {
		opts.DefaultRegion = defaults.DefaultRegion
	}
	if opts.CenterDelta <= 0 {
		opts.CenterDelta = defaults.CenterDelta
	}
	if opts.AnimationDuration <= 0 {
		opts.AnimationDuration = defaults.AnimationDuration
	}

	ctx, cancel := context.WithCancel(context.Background())
	ctrl := &Controller{
		log:        log,
		gate:       gate,
		resolver:   res,
		classifier: motion.NewClassifier(),
		mapWidget:  mapWidget,
		nav:        nav,
		notifier:   notifier,
		metrics:    metrics,
		opts:       opts,
		lookupCtx:  ctx,
		cancel:     cancel,
		active:     true,
		region:     opts.DefaultRegion,
	}
	ctrl.debouncer = motion.NewDebouncer(opts.QuietWindow, ctrl.handleSettle)

	return ctrl
}

// Mount runs the bootstrap sequence: a selection waiting on the navigation
// bridge wins, otherwise the map is centered on the device.
func (c *Controller) Mount(ctx context.Context) error {
	applied, err := c.ConsumeSelection(ctx)
	if applied || err != nil {
		return err
	}

	return c.CenterOnDevice(ctx)
}

// ConsumeSelection applies the selection waiting on the navigation bridge,
// if there is one. It reports whether a selection was found. An invalid
// selection is still consumed so that it is not retried on every render.
func (c *Controller) ConsumeSelection(ctx context.Context) (bool, error) {
	sel, ok := c.nav.PendingSelection()
	if !ok {
		return false, nil
	}

	c.log.InfoContext(ctx, "Consuming pending search selection", "address", sel.Address)
	if err := c.ApplyExternalSelection(ctx, sel); err != nil {
		if !errors.Is(err, ErrClosed) {
			c.nav.ClearConsumedParams()
		}
		return true, err
	}

	return true, nil
}

// CenterOnDevice moves the map to the device position and resolves its address.
// Denied permission and a missing fix leave region and address untouched; the
// user is notified and the cause is returned for information.
func (c *Controller) CenterOnDevice(ctx context.Context) error {
	if !c.isActive() {
		return ErrClosed
	}

	if c.gate.RequestPermission(ctx) != permission.StatusGranted {
		return c.abortCentering(ctx, NoticePermissionDenied, permission.ErrPermissionDenied)
	}
	if !c.isActive() {
		return ErrClosed
	}

	coords, err := c.gate.CurrentPosition(ctx)
	if err != nil {
		return c.abortCentering(ctx, NoticePositionUnavailable, err)
	}

	region, err := models.NewRegion(coords, c.opts.CenterDelta, c.opts.CenterDelta)
	if err != nil {
		return c.abortCentering(ctx, NoticePositionUnavailable, fmt.Errorf("%w: %w", permission.ErrPositionUnavailable, err))
	}

	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return ErrClosed
	}
	c.classifier.MarkPendingProgrammaticMove()
	c.region = region
	req := c.issueLocked(coords)
	c.mu.Unlock()

	c.log.InfoContext(ctx, "Centering map on device", "lat", coords.Latitude, "lon", coords.Longitude, "request", req.ID)

	c.mapWidget.AnimateToRegion(region, c.opts.AnimationDuration)
	c.startLookup(req)

	return nil
}

// ApplyExternalSelection shows a place picked in the address search. The
// payload already carries the address, so no lookup is issued and any
// outstanding one is superseded.
func (c *Controller) ApplyExternalSelection(ctx context.Context, sel models.Selection) error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return ErrClosed
	}

	region := c.region.Recenter(sel.Coordinates())
	if err := region.Validate(); err != nil {
		c.mu.Unlock()
		c.log.WarnContext(ctx, "Ignoring invalid search selection", "error", err)
		return err
	}

	c.classifier.MarkPendingProgrammaticMove()
	c.region = region
	c.address = sel.Address
	c.resolver.Supersede()
	c.pendingID = 0
	c.phase = PhaseIdle
	c.mu.Unlock()

	c.log.InfoContext(ctx, "Applied search selection", "address", sel.Address,
		"lat", sel.Latitude, "lon", sel.Longitude)

	c.mapWidget.AnimateToRegion(region, c.opts.AnimationDuration)
	c.nav.ClearConsumedParams()

	return nil
}

// OnUserPanSettled handles a classified settle. User gestures always resolve;
// a programmatic settle resolves only when no address is known or pending.
func (c *Controller) OnUserPanSettled(event models.ViewportChangeEvent) {
	if err := event.Region.Validate(); err != nil {
		c.log.Warn("Ignoring settle with invalid region", "error", err)
		return
	}

	c.metrics.SettledGestures.WithLabelValues(event.Origin.String()).Inc()

	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}

	c.region = event.Region
	if event.Origin == models.OriginProgrammatic && (c.address != "" || c.outstandingLocked()) {
		if c.outstandingLocked() {
			c.phase = PhaseResolving
		} else {
			c.phase = PhaseIdle
		}
		c.mu.Unlock()
		c.log.Debug("Skipping lookup after programmatic move, address already supplied")
		return
	}

	req := c.issueLocked(event.Region.Center())
	c.mu.Unlock()

	c.log.Debug("Resolving settled region", "origin", event.Origin.String(), "request", req.ID)
	c.startLookup(req)
}

// ConfirmLocation returns the current center and address for the next booking step.
func (c *Controller) ConfirmLocation() models.ConfirmedLocation {
	c.mu.Lock()
	defer c.mu.Unlock()

	return models.ConfirmedLocation{
		Latitude:  c.region.Latitude,
		Longitude: c.region.Longitude,
		Address:   c.address,
	}
}

// OnRegionChange is the map widget's in-motion callback.
func (c *Controller) OnRegionChange(region models.Region) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.phase = PhaseInMotion
	c.mu.Unlock()

	c.debouncer.Motion(region)
}

// OnRegionChangeComplete is the map widget's motion-complete callback.
func (c *Controller) OnRegionChangeComplete(region models.Region) {
	if !c.isActive() {
		return
	}
	c.debouncer.Complete(region)
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		Region:  c.region,
		Address: c.address,
		Phase:   c.phase,
		Moving:  c.debouncer.Moving(),
	}
}

// Close tears the controller down. Results arriving afterwards are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	c.active = false
	c.mu.Unlock()

	c.debouncer.Stop()
	c.cancel()
	c.lookups.Wait()
}

func (c *Controller) handleSettle(region models.Region) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.phase = PhaseClassifying
	c.mu.Unlock()

	c.OnUserPanSettled(c.classifier.Classify(region))
}

// issueLocked reserves a request id for coords and registers its lookup
// with c.lookups. c.mu must be held and c.active checked, so that issuing
// never interleaves with the recency check or with Close. Every call must be
// followed by startLookup.
func (c *Controller) issueLocked(coords models.Coordinates) models.ResolutionRequest {
	req := c.resolver.Next(coords)
	c.pendingID = req.ID
	c.phase = PhaseResolving
	c.lookups.Add(1)
	return req
}

func (c *Controller) outstandingLocked() bool {
	return c.pendingID != 0 && c.pendingID == c.resolver.Latest()
}

// startLookup runs the lookup registered by issueLocked.
func (c *Controller) startLookup(req models.ResolutionRequest) {
	go func() {
		defer c.lookups.Done()
		c.apply(c.resolver.Lookup(c.lookupCtx, req))
	}()
}

func (c *Controller) apply(result models.ResolvedAddress) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		c.log.Debug("Dropping lookup result after teardown", "request", result.RequestID)
		return
	}
	if !c.resolver.IsCurrent(result.RequestID) {
		c.log.Debug("Dropping stale lookup result", "request", result.RequestID, "latest", c.resolver.Latest())
		return
	}

	c.address = result.Text
	c.pendingID = 0
	if c.phase == PhaseResolving {
		c.phase = PhaseIdle
	}
}

func (c *Controller) abortCentering(ctx context.Context, notice string, cause error) error {
	if !c.isActive() {
		return ErrClosed
	}

	c.log.InfoContext(ctx, "Centering on device aborted", "reason", cause)
	c.metrics.CenterFailures.Inc()
	c.notifier.Notify(ctx, notice)

	return cause
}

func (c *Controller) isActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}
