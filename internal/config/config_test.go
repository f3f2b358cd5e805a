package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/pinpoint/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MustLoadDefaults(t *testing.T) {
	cfg := config.MustLoad()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "nominatim", cfg.Provider.Type)
	assert.Equal(t, 1, cfg.Provider.RateLimit)
	assert.Equal(t, 24*time.Hour, cfg.Geocode.CacheTTL)
	assert.Zero(t, cfg.Debounce.QuietWindow)
	assert.Equal(t, 10*time.Second, cfg.Position.Timeout)
	assert.InDelta(t, 0.5, cfg.Map.AspectRatio, 0)
	assert.True(t, cfg.Device.Permission)
	assert.False(t, cfg.Device.Located)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.NATS.URL)
	assert.Equal(t, "booking.location.confirmed", cfg.NATS.Subject)
	assert.Equal(t, "5432", cfg.Database.Port)
}

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("PINPOINT_ENV", "local")
	t.Setenv("PINPOINT_PORT", "9090")
	t.Setenv("PINPOINT_PROVIDER_TYPE", "google")
	t.Setenv("PINPOINT_PROVIDER_API_KEY", "testAPIKey")
	t.Setenv("PINPOINT_DEBOUNCE_QUIET_WINDOW", "200ms")
	t.Setenv("PINPOINT_DEVICE_LATITUDE", "50.45")
	t.Setenv("PINPOINT_DEVICE_LONGITUDE", "30.52")
	t.Setenv("PINPOINT_REDIS_ADDR", "localhost:6379")
	t.Setenv("PINPOINT_NATS_URL", "nats://localhost:4222")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_PORT", "12345")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("PINPOINT_POSTGRES_NAME", "testName")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "google", cfg.Provider.Type)
	assert.Equal(t, "testAPIKey", cfg.Provider.APIKey)
	assert.Equal(t, 200*time.Millisecond, cfg.Debounce.QuietWindow)
	assert.True(t, cfg.Device.Located)
	assert.InDelta(t, 50.45, cfg.Device.Latitude, 1e-9)
	assert.InDelta(t, 30.52, cfg.Device.Longitude, 1e-9)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, "testHost", cfg.Database.Host)
	assert.Equal(t, "12345", cfg.Database.Port)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "adminpass", cfg.Database.Password)
	assert.Equal(t, "testName", cfg.Database.Name)
}

func Test_MustLoadFromFile(t *testing.T) {
	defer filet.CleanUp(t)

	dir := filet.TmpDir(t, "")
	path := filepath.Join(dir, "pinpoint.yaml")
	filet.File(t, path, `
env: development
port: 7070
provider:
  type: visicom
  api_key: fileKey
  rate_limit: 5
map:
  aspect_ratio: 0.75
device:
  permission: false
postgres:
  host: fileHost
`)
	t.Setenv("PINPOINT_CONFIG_FILE", path)
	t.Setenv("PINPOINT_PORT", "6060")

	cfg := config.MustLoad()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 6060, cfg.Port, "environment overrides the file")
	assert.Equal(t, "visicom", cfg.Provider.Type)
	assert.Equal(t, "fileKey", cfg.Provider.APIKey)
	assert.Equal(t, 5, cfg.Provider.RateLimit)
	assert.InDelta(t, 0.75, cfg.Map.AspectRatio, 0)
	assert.False(t, cfg.Device.Permission)
	assert.Equal(t, "fileHost", cfg.Database.Host)
}

func TestMustLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		msg   string
	}{
		{
			name:  "port",
			key:   "PINPOINT_PORT",
			value: "error_value",
			msg:   "failed to parse port for http server from configuration",
		},
		{
			name:  "rate limit",
			key:   "PINPOINT_PROVIDER_RATE_LIMIT",
			value: "fast",
			msg:   "failed to parse provider rate limit from configuration, must be an integer",
		},
		{
			name:  "quiet window",
			key:   "PINPOINT_DEBOUNCE_QUIET_WINDOW",
			value: "soon",
			msg:   "failed to parse debounce quiet window from configuration",
		},
		{
			name:  "position timeout",
			key:   "PINPOINT_POSITION_TIMEOUT",
			value: "10",
			msg:   "failed to parse position timeout from configuration",
		},
		{
			name:  "aspect ratio",
			key:   "PINPOINT_MAP_ASPECT_RATIO",
			value: "wide",
			msg:   "failed to parse map aspect ratio from configuration",
		},
		{
			name:  "permission",
			key:   "PINPOINT_DEVICE_PERMISSION",
			value: "maybe",
			msg:   "failed to parse device permission from configuration",
		},
		{
			name:  "config file",
			key:   "PINPOINT_CONFIG_FILE",
			value: "/nonexistent/pinpoint.yaml",
			msg:   "failed to read configuration file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			assert.PanicsWithValue(t, tt.msg, func() {
				config.MustLoad()
			})
		})
	}
}

func TestMustLoad_PartialDeviceFix(t *testing.T) {
	t.Setenv("PINPOINT_DEVICE_LATITUDE", "50.45")

	cfg := config.MustLoad()

	require.False(t, cfg.Device.Located)
	assert.Zero(t, cfg.Device.Latitude)
}
