package resolver

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/geocoding"
	"github.com/UnknownOlympus/pinpoint/internal/metrics"
	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// UnknownAddress is the text shown when a lookup fails or finds nothing.
const UnknownAddress = "Unknown Address"

// Resolver turns coordinates into display addresses and tracks which request is current.
//
// Every call to Resolve gets a strictly increasing id before the lookup starts.
// Callers must apply a result only while IsCurrent reports true for its id;
// anything else is a stale answer overtaken by a newer request. Superseded
// lookups are not cancelled, their results are simply ignored.
type Resolver struct {
	log          *slog.Logger
	provider     geocoding.Provider
	providerName string
	metrics      *metrics.Metrics
	latest       atomic.Uint64
}

// New creates a resolver backed by provider. providerName labels the latency metric.
func New(log *slog.Logger, provider geocoding.Provider, providerName string, metrics *metrics.Metrics) *Resolver {
	return &Resolver{
		log:          log,
		provider:     provider,
		providerName: providerName,
		metrics:      metrics,
	}
}

// Next reserves a new request id for coords without starting the lookup.
func (r *Resolver) Next(coords models.Coordinates) models.ResolutionRequest {
	r.metrics.ResolveRequests.Inc()
	return models.ResolutionRequest{ID: r.latest.Add(1), Coordinates: coords}
}

// Resolve issues a new request for coords and waits for its lookup.
func (r *Resolver) Resolve(ctx context.Context, coords models.Coordinates) models.ResolvedAddress {
	return r.Lookup(ctx, r.Next(coords))
}

// Lookup performs the lookup for an already issued request. It never fails:
// provider errors and empty places resolve to UnknownAddress.
func (r *Resolver) Lookup(ctx context.Context, req models.ResolutionRequest) models.ResolvedAddress {
	r.metrics.InflightLookups.Inc()
	defer r.metrics.InflightLookups.Dec()

	startTime := time.Now()
	place, err := r.provider.Reverse(ctx, req.Coordinates)
	r.metrics.RequestSeconds.WithLabelValues(r.providerName).Observe(time.Since(startTime).Seconds())

	if err != nil {
		r.log.WarnContext(ctx, "Failed to reverse geocode", "request", req.ID, "error", err)
		r.metrics.ResolveResults.WithLabelValues("failure").Inc()
		return models.ResolvedAddress{Text: UnknownAddress, RequestID: req.ID}
	}

	text := ""
	if place != nil {
		text = place.Format()
	}
	if text == "" {
		r.log.DebugContext(ctx, "Provider returned an empty place", "request", req.ID)
		r.metrics.ResolveResults.WithLabelValues("empty").Inc()
		return models.ResolvedAddress{Text: UnknownAddress, RequestID: req.ID}
	}

	r.metrics.ResolveResults.WithLabelValues("success").Inc()
	return models.ResolvedAddress{Text: text, RequestID: req.ID}
}

// Supersede advances the counter without a lookup, so every outstanding
// request becomes stale. Used when an address arrives from elsewhere.
func (r *Resolver) Supersede() uint64 {
	return r.latest.Add(1)
}

// Latest returns the highest id issued so far.
func (r *Resolver) Latest() uint64 {
	return r.latest.Load()
}

// IsCurrent reports whether id is still the most recently issued request.
func (r *Resolver) IsCurrent(id uint64) bool {
	current := id == r.latest.Load()
	if !current {
		r.metrics.StaleResults.Inc()
	}
	return current
}
