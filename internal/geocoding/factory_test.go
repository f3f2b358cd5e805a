package geocoding_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	logger := slog.Default()

	tests := []struct {
		name    string
		config  geocoding.ProviderConfig
		wantErr error
		check   func(t *testing.T, provider geocoding.Provider)
	}{
		{
			name:   "google with key and rate limit",
			config: geocoding.ProviderConfig{Type: geocoding.ProviderTypeGoogle, APIKey: "test-api-key", RateLimit: 10},
			check: func(t *testing.T, provider geocoding.Provider) {
				assert.IsType(t, &geocoding.GoogleProvider{}, provider)
			},
		},
		{
			name:   "google without rate limit",
			config: geocoding.ProviderConfig{Type: geocoding.ProviderTypeGoogle, APIKey: "test-api-key"},
			check: func(t *testing.T, provider geocoding.Provider) {
				assert.IsType(t, &geocoding.GoogleProvider{}, provider)
			},
		},
		{
			name:    "google without key",
			config:  geocoding.ProviderConfig{Type: geocoding.ProviderTypeGoogle},
			wantErr: geocoding.ErrMissingAPIKey,
		},
		{
			name:   "nominatim needs no key",
			config: geocoding.ProviderConfig{Type: geocoding.ProviderTypeNominatim},
			check: func(t *testing.T, provider geocoding.Provider) {
				assert.IsType(t, &geocoding.NominatimProvider{}, provider)
			},
		},
		{
			name:   "visicom with default rate limit",
			config: geocoding.ProviderConfig{Type: geocoding.ProviderTypeVisicom, APIKey: "test-api-key"},
			check: func(t *testing.T, provider geocoding.Provider) {
				assert.IsType(t, &geocoding.VisicomProvider{}, provider)
			},
		},
		{
			name:    "visicom without key",
			config:  geocoding.ProviderConfig{Type: geocoding.ProviderTypeVisicom},
			wantErr: geocoding.ErrMissingAPIKey,
		},
		{
			name:    "unsupported type",
			config:  geocoding.ProviderConfig{Type: "unsupported"},
			wantErr: geocoding.ErrUnsupportedProvider,
		},
		{
			name: "cache wraps the provider",
			config: geocoding.ProviderConfig{
				Type:     geocoding.ProviderTypeNominatim,
				Cache:    newFakeCache(),
				CacheTTL: time.Hour,
			},
			check: func(t *testing.T, provider geocoding.Provider) {
				assert.IsType(t, &geocoding.CachedProvider{}, provider)
			},
		},
		{
			name: "zero ttl disables the cache",
			config: geocoding.ProviderConfig{
				Type:  geocoding.ProviderTypeNominatim,
				Cache: newFakeCache(),
			},
			check: func(t *testing.T, provider geocoding.Provider) {
				assert.IsType(t, &geocoding.NominatimProvider{}, provider)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Logger = logger

			provider, err := geocoding.NewProvider(tt.config)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, provider)
				return
			}
			require.NoError(t, err)
			tt.check(t, provider)
		})
	}
}
