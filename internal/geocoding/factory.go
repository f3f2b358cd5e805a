package geocoding

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"googlemaps.github.io/maps"
)

// ProviderType names a reverse geocoding backend.
type ProviderType string

const (
	ProviderTypeGoogle    ProviderType = "google"    // Google Maps Geocoding API
	ProviderTypeNominatim ProviderType = "nominatim" // OpenStreetMap Nominatim, no key
	ProviderTypeVisicom   ProviderType = "visicom"   // Visicom Data API
)

// visicomDefaultRateLimit is applied when no rate limit is configured for Visicom.
const visicomDefaultRateLimit = 5

var (
	ErrMissingAPIKey       = errors.New("API key is required")
	ErrUnsupportedProvider = errors.New("unsupported provider type")
)

// ProviderConfig describes the provider to build and the optional cache in front of it.
type ProviderConfig struct {
	Type      ProviderType
	APIKey    string // required by google and visicom
	RateLimit int    // requests per second, zero means the backend default
	Logger    *slog.Logger

	Cache    CacheClient // nil disables caching
	CacheTTL time.Duration
}

type providerBuilder func(config ProviderConfig) (Provider, error)

var builders = map[ProviderType]providerBuilder{
	ProviderTypeGoogle:    buildGoogle,
	ProviderTypeNominatim: buildNominatim,
	ProviderTypeVisicom:   buildVisicom,
}

// NewProvider builds the configured reverse geocoding provider. When a cache
// client and a positive TTL are set, the provider is wrapped in CachedProvider.
func NewProvider(config ProviderConfig) (Provider, error) {
	build, ok := builders[config.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, config.Type)
	}

	provider, err := build(config)
	if err != nil {
		return nil, err
	}

	if config.Cache != nil && config.CacheTTL > 0 {
		return NewCachedProvider(provider, config.Cache, config.CacheTTL, config.Logger), nil
	}

	return provider, nil
}

func buildGoogle(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w for %s provider", ErrMissingAPIKey, config.Type)
	}

	opts := []maps.ClientOption{maps.WithAPIKey(config.APIKey)}
	if config.RateLimit > 0 {
		opts = append(opts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Logger), nil
}

func buildNominatim(config ProviderConfig) (Provider, error) {
	return NewNominatimProvider(config.RateLimit, config.Logger), nil
}

func buildVisicom(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w for %s provider", ErrMissingAPIKey, config.Type)
	}

	if config.RateLimit <= 0 {
		config.RateLimit = visicomDefaultRateLimit
		config.Logger.Warn("Rate limit for Visicom API not set, using default", "value", config.RateLimit)
	}

	return NewVisicomProvider(config.APIKey, config.RateLimit, config.Logger), nil
}
