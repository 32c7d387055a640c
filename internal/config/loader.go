// Package config loads application settings from an optional config.yml,
// environment overrides and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const defaultPath = "config.yml"

// Default returns the settings used when nothing is configured
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{Port: 8080},
		Upstream: UpstreamConfig{
			ErailURL:        "https://erail.in/rail/getTrains.aspx",
			ErailRouteURL:   "https://erail.in/data.aspx",
			BackendURL:      "https://easy-rail.onrender.com",
			PNRURL:          "https://irctc-indian-railway-pnr-status.p.rapidapi.com/getPNRStatus",
			PNRAPIHost:      "irctc-indian-railway-pnr-status.p.rapidapi.com",
			AvailabilityURL: "https://cttrainsapi.confirmtkt.com/api/v1/trains/search",
			TimeoutMS:       10000,
			RatePerSecond:   5,
			Burst:           10,
		},
		Cache: CacheConfig{
			LocalSize:              512,
			LocalTTLSeconds:        30,
			SearchTTLSeconds:       600,
			TrainTTLSeconds:        3600,
			RouteTTLSeconds:        3600,
			StationTTLSeconds:      120,
			LiveTTLSeconds:         60,
			AvailabilityTTLSeconds: 300,
		},
		LiveStatus: LiveStatusConfig{
			RefreshSeconds: 60,
			MaxWatches:     100,
		},
		RateLimit: RateLimitConfig{
			PerSecond: 10,
			PerDay:    10000,
		},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path means EASYRAIL_CONFIG or
// config.yml; a missing default file is not an error.
func Load(path string) (*AppConfig, error) {
	explicit := path != ""
	if !explicit {
		path = getEnv("EASYRAIL_CONFIG", defaultPath)
		explicit = path != defaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		log.Printf("Loaded configuration from %s", path)
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		log.Printf("No %s found, using defaults", path)
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	applyEnv(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section of cfg
func Validate(cfg *AppConfig) error {
	v := validator.New()
	sections := []interface{}{cfg.Server, cfg.Upstream, cfg.Cache, cfg.LiveStatus, cfg.RateLimit}
	for _, s := range sections {
		if err := v.Struct(s); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return nil
}

// applyEnv overrides file values with environment variables
func applyEnv(cfg *AppConfig) {
	setInt(&cfg.Server.Port, "API_PORT")

	setString(&cfg.Upstream.BackendURL, "EASYRAIL_BACKEND_URL")
	setString(&cfg.Upstream.PNRAPIKey, "RAPIDAPI_KEY")
	setString(&cfg.Upstream.PNRAPIHost, "RAPIDAPI_HOST")
	setInt(&cfg.Upstream.TimeoutMS, "UPSTREAM_TIMEOUT_MS")

	setInt(&cfg.LiveStatus.RefreshSeconds, "LIVE_REFRESH_SECONDS")

	setInt(&cfg.RateLimit.PerSecond, "RATE_LIMIT_PER_SECOND")
	setInt(&cfg.RateLimit.PerDay, "RATE_LIMIT_PER_DAY")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: ignoring %s=%q: %v", key, v, err)
		return
	}
	*dst = n
}

// getEnv retrieves an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
