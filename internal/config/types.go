// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

// AppConfig is the fully resolved runtime configuration.
type AppConfig struct {
	Version string `yaml:"-"`

	LogLevel   string `yaml:"logLevel" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	LogService string `yaml:"logService"`

	APIListenAddr     string `yaml:"listenAddr" validate:"required,hostname_port"`
	MetricsListenAddr string `yaml:"metricsListenAddr" validate:"omitempty,hostname_port"`

	SpaceTrack SpaceTrackConfig    `yaml:"spacetrack"`
	CORS       CORSConfig          `yaml:"cors"`
	RateLimit  RateLimitConfig     `yaml:"rateLimit"`
	Tracing    TracingConfig       `yaml:"tracing"`
	Server     ServerRuntimeConfig `yaml:"server"`
}

// SpaceTrackConfig describes the upstream provider and its credentials.
type SpaceTrackConfig struct {
	BaseURL  string        `yaml:"baseURL" validate:"required,http_url"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`

	// RateLimitRPM paces upstream calls when > 0. Zero disables pacing.
	RateLimitRPM int `yaml:"rateLimitRPM" validate:"gte=0"`
}

// HasCredentials reports whether both credential values are set.
func (c SpaceTrackConfig) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// RateLimitConfig controls the ingress rate limiter.
type RateLimitConfig struct {
	Enabled           bool     `yaml:"enabled"`
	RequestsPerMinute int      `yaml:"requestsPerMinute" validate:"gte=0"`
	Whitelist         []string `yaml:"whitelist" validate:"dive,ip|cidr"`
}

// TracingConfig controls the OpenTelemetry tracer provider.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Exporter    string  `yaml:"exporter" validate:"omitempty,oneof=grpc http"`
	Endpoint    string  `yaml:"endpoint"`
	SampleRate  float64 `yaml:"sampleRate" validate:"gte=0,lte=1"`
	Environment string  `yaml:"environment"`
}

// ServerRuntimeConfig holds the HTTP server timeouts.
type ServerRuntimeConfig struct {
	ReadTimeout     time.Duration `yaml:"readTimeout" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" validate:"gte=0"`
	IdleTimeout     time.Duration `yaml:"idleTimeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" validate:"gte=0"`
	MaxHeaderBytes  int           `yaml:"maxHeaderBytes" validate:"gte=0"`
}

// FileConfig is the on-disk YAML shape. Pointer fields distinguish
// "not set" from zero values so the file only overrides what it names.
type FileConfig struct {
	LogLevel          string `yaml:"logLevel"`
	LogService        string `yaml:"logService"`
	ListenAddr        string `yaml:"listenAddr"`
	MetricsListenAddr string `yaml:"metricsListenAddr"`

	SpaceTrack *SpaceTrackFileConfig `yaml:"spacetrack"`
	CORS       *CORSConfig           `yaml:"cors"`
	RateLimit  *RateLimitFileConfig  `yaml:"rateLimit"`
	Tracing    *TracingFileConfig    `yaml:"tracing"`
	Server     *ServerRuntimeConfig  `yaml:"server"`
}

// SpaceTrackFileConfig is the YAML shape of the spacetrack section.
type SpaceTrackFileConfig struct {
	BaseURL      string        `yaml:"baseURL"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	Timeout      time.Duration `yaml:"timeout"`
	RateLimitRPM *int          `yaml:"rateLimitRPM"`
}

// RateLimitFileConfig is the YAML shape of the rateLimit section.
type RateLimitFileConfig struct {
	Enabled           *bool    `yaml:"enabled"`
	RequestsPerMinute int      `yaml:"requestsPerMinute"`
	Whitelist         []string `yaml:"whitelist"`
}

// TracingFileConfig is the YAML shape of the tracing section.
type TracingFileConfig struct {
	Enabled     *bool    `yaml:"enabled"`
	Exporter    string   `yaml:"exporter"`
	Endpoint    string   `yaml:"endpoint"`
	SampleRate  *float64 `yaml:"sampleRate"`
	Environment string   `yaml:"environment"`
}
