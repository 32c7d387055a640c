package config

import "time"

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0,lte=65535"`
}

// UpstreamConfig contains the endpoints of the services the API fronts
type UpstreamConfig struct {
	ErailURL        string  `yaml:"erailURL" validate:"required,url"`
	ErailRouteURL   string  `yaml:"erailRouteURL" validate:"required,url"`
	BackendURL      string  `yaml:"backendURL" validate:"required,url"`
	PNRURL          string  `yaml:"pnrURL" validate:"required,url"`
	PNRAPIKey       string  `yaml:"pnrAPIKey"`
	PNRAPIHost      string  `yaml:"pnrAPIHost" validate:"omitempty,hostname"`
	AvailabilityURL string  `yaml:"availabilityURL" validate:"required,url"`
	TimeoutMS       int     `yaml:"timeoutMS" validate:"gte=0"`
	RatePerSecond   float64 `yaml:"ratePerSecond" validate:"gte=0"`
	Burst           int     `yaml:"burst" validate:"gte=0"`
}

// CacheConfig contains per-feed cache lifetimes. Feed lifetimes must be
// positive, a zero would store feeds without expiry.
type CacheConfig struct {
	LocalSize              int `yaml:"localSize" validate:"gte=0"`
	LocalTTLSeconds        int `yaml:"localTTLSeconds" validate:"gte=0"`
	SearchTTLSeconds       int `yaml:"searchTTLSeconds" validate:"gt=0"`
	TrainTTLSeconds        int `yaml:"trainTTLSeconds" validate:"gt=0"`
	RouteTTLSeconds        int `yaml:"routeTTLSeconds" validate:"gt=0"`
	StationTTLSeconds      int `yaml:"stationTTLSeconds" validate:"gt=0"`
	LiveTTLSeconds         int `yaml:"liveTTLSeconds" validate:"gt=0"`
	AvailabilityTTLSeconds int `yaml:"availabilityTTLSeconds" validate:"gt=0"`
}

// LiveStatusConfig controls background refresh of watched trains
type LiveStatusConfig struct {
	RefreshSeconds int `yaml:"refreshSeconds" validate:"gte=0"`
	MaxWatches     int `yaml:"maxWatches" validate:"gte=0"`
}

// RateLimitConfig contains per client IP limits
type RateLimitConfig struct {
	PerSecond int `yaml:"perSecond" validate:"gte=0"`
	PerDay    int `yaml:"perDay" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Cache      CacheConfig      `yaml:"cache"`
	LiveStatus LiveStatusConfig `yaml:"liveStatus"`
	RateLimit  RateLimitConfig  `yaml:"rateLimit"`
}

// Timeout is the per request upstream timeout
func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutMS) * time.Millisecond
}

// RefreshInterval is the live-status refresh period
func (l LiveStatusConfig) RefreshInterval() time.Duration {
	return time.Duration(l.RefreshSeconds) * time.Second
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func (c CacheConfig) LocalTTL() time.Duration        { return seconds(c.LocalTTLSeconds) }
func (c CacheConfig) SearchTTL() time.Duration       { return seconds(c.SearchTTLSeconds) }
func (c CacheConfig) TrainTTL() time.Duration        { return seconds(c.TrainTTLSeconds) }
func (c CacheConfig) RouteTTL() time.Duration        { return seconds(c.RouteTTLSeconds) }
func (c CacheConfig) StationTTL() time.Duration      { return seconds(c.StationTTLSeconds) }
func (c CacheConfig) LiveTTL() time.Duration         { return seconds(c.LiveTTLSeconds) }
func (c CacheConfig) AvailabilityTTL() time.Duration { return seconds(c.AvailabilityTTLSeconds) }
