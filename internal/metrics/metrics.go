package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ResolveRequests prometheus.Counter
	ResolveResults  *prometheus.CounterVec
	StaleResults    prometheus.Counter
	RequestSeconds  *prometheus.HistogramVec
	InflightLookups prometheus.Gauge
	SettledGestures *prometheus.CounterVec
	CenterFailures  prometheus.Counter
	Confirmations   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		ResolveRequests: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pinpoint_resolve_requests_total",
			Help: "Total number of reverse geocoding requests issued.",
		}),
		ResolveResults: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pinpoint_resolve_results_total",
			Help: "Total number of reverse geocoding results by status.",
		}, []string{"status"}),
		StaleResults: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pinpoint_stale_results_total",
			Help: "Total number of results discarded because a newer request was issued.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pinpoint_provider_request_duration_seconds",
			Help:    "Duration of requests to the reverse geocoding provider.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		InflightLookups: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "pinpoint_inflight_lookups",
			Help: "Current number of reverse geocoding lookups in flight.",
		}),
		SettledGestures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pinpoint_settled_viewport_changes_total",
			Help: "Total number of settled viewport changes by origin.",
		}, []string{"origin"}),
		CenterFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pinpoint_center_failures_total",
			Help: "Total number of centering attempts that ended without a device position.",
		}),
		Confirmations: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pinpoint_confirmed_locations_total",
			Help: "Total number of confirmed locations handed to the booking flow.",
		}),
	}
}
