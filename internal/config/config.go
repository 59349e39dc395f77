package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries every tunable of the service. Values come from the
// environment; main loads a .env file first for local runs.
type Config struct {
	HTTPAddr     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	DatabaseURL string

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GeocodeBaseURL     string
	GeocodeCountry     string
	GeocodeUserAgent   string
	GeocodeMinInterval time.Duration
	GeocodeTimeout     time.Duration

	// Route time heuristic: minutes = floor(km / AvgSpeedKmh * 60) plus
	// PerStopMinutes per waypoint.
	AvgSpeedKmh    float64
	PerStopMinutes int

	StrictCompanyCheck bool
	AllowMissingDriver bool
	PlannerConcurrency int

	RebuildOnStart bool
	SeedPath       string
}

// Load reads the configuration from the environment. Only DATABASE_URL is
// required; everything else has defaults matching production behavior.
func Load() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	cfg := &Config{
		HTTPAddr:     Get("HTTP_ADDR", ":8080"),
		ReadTimeout:  getDurationEnv("READ_TIMEOUT", 10*time.Second),
		WriteTimeout: getDurationEnv("WRITE_TIMEOUT", 120*time.Second),

		DatabaseURL: databaseURL,

		RedisEnabled:  getBoolEnv("REDIS_ENABLED", true),
		RedisAddr:     Get("REDIS_ADDR", "localhost:6379"),
		RedisPassword: Get("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		GeocodeBaseURL:     Get("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocodeCountry:     Get("GEOCODE_COUNTRY", "Tunisia"),
		GeocodeUserAgent:   Get("GEOCODE_USER_AGENT", "LogistiCo/1.0"),
		GeocodeMinInterval: getDurationEnv("GEOCODE_MIN_INTERVAL", time.Second),
		GeocodeTimeout:     getDurationEnv("GEOCODE_TIMEOUT", 10*time.Second),

		AvgSpeedKmh:    getFloatEnv("AVG_SPEED_KMH", 96),
		PerStopMinutes: getIntEnv("PER_STOP_MINUTES", 10),

		StrictCompanyCheck: getBoolEnv("STRICT_COMPANY_CHECK", false),
		AllowMissingDriver: getBoolEnv("ALLOW_MISSING_DRIVER", true),
		PlannerConcurrency: getIntEnv("PLANNER_CONCURRENCY", 5),

		RebuildOnStart: getBoolEnv("REBUILD_ON_START", true),
		SeedPath:       Get("SEED_PATH", "data/seeds/logistics.json"),
	}

	if cfg.AvgSpeedKmh <= 0 {
		return nil, fmt.Errorf("AVG_SPEED_KMH must be positive, got %v", cfg.AvgSpeedKmh)
	}
	if cfg.PlannerConcurrency < 1 {
		return nil, fmt.Errorf("PLANNER_CONCURRENCY must be at least 1, got %d", cfg.PlannerConcurrency)
	}

	return cfg, nil
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getFloatEnv(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getBoolEnv(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
