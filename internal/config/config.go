package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by MustLoad.
const EnvPrefix = "PINPOINT"

// Config holds the configuration settings for the position resolver.
//
// Values come from, in order of precedence: environment variables
// (PINPOINT_<SECTION>_<KEY>), an optional YAML file named by
// PINPOINT_CONFIG_FILE, and built-in defaults. A .env file in the working
// directory is loaded into the environment first.
type Config struct {
	Env      string         // Env is the current environment: local, development, production.
	Port     int            // Port is the HTTP server port.
	Provider ProviderConfig // Provider selects the reverse geocoding backend.
	Geocode  GeocodeConfig
	Debounce DebounceConfig
	Position PositionConfig
	Map      MapConfig
	Device   DeviceConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Database PostgresConfig // Database holds the postgres database configuration
}

// ProviderConfig selects and authenticates the reverse geocoding provider.
type ProviderConfig struct {
	Type      string // google, nominatim or visicom
	APIKey    string // required for google and visicom
	RateLimit int    // requests per second
}

type GeocodeConfig struct {
	CacheTTL time.Duration // lifetime of cached lookups; zero disables the cache
}

type DebounceConfig struct {
	QuietWindow time.Duration // fallback for widgets without a completion signal; zero disables it
}

type PositionConfig struct {
	Timeout time.Duration
}

type MapConfig struct {
	AspectRatio float64 // screen width / height, scales the default longitude span
}

// DeviceConfig describes the location service used when no real device is attached.
type DeviceConfig struct {
	Permission bool
	Located    bool // Latitude and Longitude were both configured
	Latitude   float64
	Longitude  float64
}

type RedisConfig struct {
	Addr     string // empty disables caching
	Password string
	DB       int
}

type NATSConfig struct {
	URL     string // empty disables the handoff
	Subject string
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// MustLoad loads the configuration and panics when a value cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	vpr := viper.New()
	vpr.SetEnvPrefix(EnvPrefix)
	vpr.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vpr.AutomaticEnv()
	setDefaults(vpr)
	bindLegacyEnv(vpr)

	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		vpr.SetConfigFile(path)
		if err := vpr.ReadInConfig(); err != nil {
			panic("failed to read configuration file")
		}
	}

	cfg := &Config{
		Env:  vpr.GetString("env"),
		Port: mustInt(vpr, "port", "failed to parse port for http server from configuration"),
		Provider: ProviderConfig{
			Type:   vpr.GetString("provider.type"),
			APIKey: vpr.GetString("provider.api_key"),
			RateLimit: mustInt(vpr, "provider.rate_limit",
				"failed to parse provider rate limit from configuration, must be an integer"),
		},
		Geocode: GeocodeConfig{
			CacheTTL: mustDuration(vpr, "geocode.cache_ttl", "failed to parse geocode cache ttl from configuration"),
		},
		Debounce: DebounceConfig{
			QuietWindow: mustDuration(vpr, "debounce.quiet_window",
				"failed to parse debounce quiet window from configuration"),
		},
		Position: PositionConfig{
			Timeout: mustDuration(vpr, "position.timeout", "failed to parse position timeout from configuration"),
		},
		Map: MapConfig{
			AspectRatio: mustFloat(vpr, "map.aspect_ratio", "failed to parse map aspect ratio from configuration"),
		},
		Device: DeviceConfig{
			Permission: mustBool(vpr, "device.permission", "failed to parse device permission from configuration"),
		},
		Redis: RedisConfig{
			Addr:     vpr.GetString("redis.addr"),
			Password: vpr.GetString("redis.password"),
			DB:       mustInt(vpr, "redis.db", "failed to parse redis db from configuration, must be an integer"),
		},
		NATS: NATSConfig{
			URL:     vpr.GetString("nats.url"),
			Subject: vpr.GetString("nats.subject"),
		},
		Database: PostgresConfig{
			Host:     vpr.GetString("postgres.host"),
			Port:     vpr.GetString("postgres.port"),
			User:     vpr.GetString("postgres.user"),
			Password: vpr.GetString("postgres.password"),
			Name:     vpr.GetString("postgres.name"),
		},
	}

	if vpr.IsSet("device.latitude") && vpr.IsSet("device.longitude") {
		cfg.Device.Located = true
		cfg.Device.Latitude = mustFloat(vpr, "device.latitude", "failed to parse device latitude from configuration")
		cfg.Device.Longitude = mustFloat(vpr, "device.longitude", "failed to parse device longitude from configuration")
	}

	return cfg
}

func setDefaults(vpr *viper.Viper) {
	vpr.SetDefault("env", "production")
	vpr.SetDefault("port", "8080")
	vpr.SetDefault("provider.type", "nominatim")
	vpr.SetDefault("provider.rate_limit", "1")
	vpr.SetDefault("geocode.cache_ttl", "24h")
	vpr.SetDefault("debounce.quiet_window", "0s")
	vpr.SetDefault("position.timeout", "10s")
	vpr.SetDefault("map.aspect_ratio", "0.5")
	vpr.SetDefault("device.permission", "true")
	vpr.SetDefault("redis.db", "0")
	vpr.SetDefault("nats.subject", "booking.location.confirmed")
	vpr.SetDefault("postgres.port", "5432")
}

// bindLegacyEnv keeps the unprefixed database variables working.
func bindLegacyEnv(vpr *viper.Viper) {
	legacy := map[string]string{
		"postgres.host":     "DB_HOST",
		"postgres.port":     "DB_PORT",
		"postgres.user":     "DB_USERNAME",
		"postgres.password": "DB_PASSWORD",
		"postgres.name":     "DB_NAME",
	}
	for key, name := range legacy {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = vpr.BindEnv(key, prefixed, name)
	}
}

func mustInt(vpr *viper.Viper, key, msg string) int {
	value, err := strconv.Atoi(strings.TrimSpace(vpr.GetString(key)))
	if err != nil {
		panic(msg)
	}
	return value
}

func mustFloat(vpr *viper.Viper, key, msg string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(vpr.GetString(key)), 64)
	if err != nil {
		panic(msg)
	}
	return value
}

func mustBool(vpr *viper.Viper, key, msg string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(vpr.GetString(key)))
	if err != nil {
		panic(msg)
	}
	return value
}

func mustDuration(vpr *viper.Viper, key, msg string) time.Duration {
	value, err := time.ParseDuration(strings.TrimSpace(vpr.GetString(key)))
	if err != nil {
		panic(msg)
	}
	return value
}
