package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"harvestlog/internal/adapters/out/osrm"
	"harvestlog/internal/adapters/out/postgres"
)

type Config struct {
	HTTPPort string
	LogLevel string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	RoutingBaseURL string
	RoutingTimeout time.Duration
	RouteThrottle  time.Duration

	TrackingStepSchedule   string
	TrackingStepDegrees    float64
	TrackingArrivalDegrees float64
	GeolocationEnabled     bool
	GeolocationTimeout     time.Duration
	GeolocationMaxAge      time.Duration
	FallbackLat            float64
	FallbackLng            float64
	WSAllowedOrigins       []string

	DemoDispatch      bool
	ChatFloodInterval time.Duration
}

// JournalEnabled reports whether a Postgres journal is configured.
func (c Config) JournalEnabled() bool {
	return c.DBHost != ""
}

// LocationCacheEnabled reports whether a Redis location cache is configured.
func (c Config) LocationCacheEnabled() bool {
	return c.RedisAddr != ""
}

func (c Config) Postgres() postgres.Config {
	return postgres.Config{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSslMode,
	}
}

// LoadConfig reads the configuration through getenv, applying defaults for
// unset keys. Every malformed value is reported.
func LoadConfig(getenv func(string) string) (Config, error) {
	r := envReader{getenv: getenv}

	cfg := Config{
		HTTPPort: r.str("HTTP_PORT", "8080"),
		LogLevel: r.str("LOG_LEVEL", "info"),

		DBHost:     r.str("DB_HOST", ""),
		DBPort:     r.str("DB_PORT", "5432"),
		DBUser:     r.str("DB_USER", "postgres"),
		DBPassword: r.str("DB_PASSWORD", ""),
		DBName:     r.str("DB_NAME", "harvestlog"),
		DBSslMode:  r.str("DB_SSLMODE", "disable"),

		RedisAddr:     r.str("REDIS_ADDR", ""),
		RedisPassword: r.str("REDIS_PASSWORD", ""),
		RedisDB:       r.integer("REDIS_DB", 0),
		RedisTTL:      r.duration("REDIS_LOCATION_TTL", 5*time.Minute),

		RoutingBaseURL: r.str("ROUTING_BASE_URL", osrm.DefaultBaseURL),
		RoutingTimeout: r.duration("ROUTING_TIMEOUT", 5*time.Second),
		RouteThrottle:  r.duration("ROUTE_THROTTLE", 10*time.Second),

		TrackingStepSchedule:   r.str("TRACKING_STEP_SCHEDULE", "@every 3s"),
		TrackingStepDegrees:    r.float("TRACKING_STEP_DEGREES", 0.002),
		TrackingArrivalDegrees: r.float("TRACKING_ARRIVAL_DEGREES", 0.005),
		GeolocationEnabled:     r.boolean("GEOLOCATION_ENABLED", true),
		GeolocationTimeout:     r.duration("GEOLOCATION_TIMEOUT", 15*time.Second),
		GeolocationMaxAge:      r.duration("GEOLOCATION_MAX_AGE", 5*time.Second),
		FallbackLat:            r.float("FALLBACK_LAT", 28.6139),
		FallbackLng:            r.float("FALLBACK_LNG", 77.2090),
		WSAllowedOrigins:       r.list("WS_ALLOWED_ORIGINS"),

		DemoDispatch:      r.boolean("DEMO_DISPATCH", true),
		ChatFloodInterval: r.duration("CHAT_FLOOD_INTERVAL", 500*time.Millisecond),
	}

	if err := errors.Join(r.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type envReader struct {
	getenv func(string) string
	errs   []error
}

func (r *envReader) str(key, fallback string) string {
	if v := r.getenv(key); v != "" {
		return v
	}
	return fallback
}

// list splits a comma separated value, dropping blank entries.
func (r *envReader) list(key string) []string {
	var out []string
	for _, part := range strings.Split(r.getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	v := r.getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func (r *envReader) float(key string, fallback float64) float64 {
	v := r.getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return f
}

func (r *envReader) integer(key string, fallback int) int {
	v := r.getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (r *envReader) boolean(key string, fallback bool) bool {
	v := r.getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}
