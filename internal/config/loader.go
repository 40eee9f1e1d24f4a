// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultSpaceTrackBaseURL is the public Space-Track endpoint.
	DefaultSpaceTrackBaseURL = "https://www.space-track.org"
	// DefaultSpaceTrackTimeout bounds every upstream request.
	DefaultSpaceTrackTimeout = 30 * time.Second

	defaultListenAddr = ":8000"
	defaultLogLevel   = "info"
	defaultLogService = "eosvc"
)

// Environment variable names. The credential names match the ones used by
// existing deployments of the service.
const (
	EnvSpaceTrackUser      = "SPACETRACK_USER"
	EnvSpaceTrackPass      = "SPACETRACK_PASS"
	EnvSpaceTrackBaseURL   = "SPACETRACK_BASE_URL"
	EnvSpaceTrackTimeout   = "SPACETRACK_TIMEOUT"
	EnvSpaceTrackRateLimit = "SPACETRACK_RATE_LIMIT_RPM"

	EnvListen        = "EOSVC_LISTEN"
	EnvMetricsListen = "EOSVC_METRICS_LISTEN"
	EnvLogLevel      = "EOSVC_LOG_LEVEL"
	EnvLogService    = "EOSVC_LOG_SERVICE"
	EnvCORSOrigins   = "EOSVC_CORS_ORIGINS"

	EnvRateLimitEnabled   = "EOSVC_RATELIMIT_ENABLED"
	EnvRateLimitRPM       = "EOSVC_RATELIMIT_RPM"
	EnvRateLimitWhitelist = "EOSVC_RATELIMIT_WHITELIST"

	EnvTracingEnabled     = "EOSVC_TRACING_ENABLED"
	EnvTracingExporter    = "EOSVC_TRACING_EXPORTER"
	EnvTracingEndpoint    = "EOSVC_TRACING_ENDPOINT"
	EnvTracingSampleRate  = "EOSVC_TRACING_SAMPLE_RATE"
	EnvTracingEnvironment = "EOSVC_TRACING_ENVIRONMENT"

	EnvServerReadTimeout     = "EOSVC_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "EOSVC_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout     = "EOSVC_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout = "EOSVC_SERVER_SHUTDOWN_TIMEOUT"
	EnvServerMaxHeaderBytes  = "EOSVC_SERVER_MAX_HEADER_BYTES"
)

// Loader handles configuration loading with precedence ENV > File > Defaults.
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty configPath means
// environment and defaults only.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the configuration file path, if any.
func (l *Loader) Path() string {
	return l.configPath
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseStringList(key, defaultVal)
}

// Load resolves the configuration: defaults, then the YAML file (strict),
// then environment overrides, then validation.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeFileConfig(&cfg, fileCfg)
	}

	l.mergeEnvConfig(&cfg)
	cfg.SpaceTrack.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.SpaceTrack.BaseURL), "/")
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel:      defaultLogLevel,
		LogService:    defaultLogService,
		APIListenAddr: defaultListenAddr,
		SpaceTrack: SpaceTrackConfig{
			BaseURL: DefaultSpaceTrackBaseURL,
			Timeout: DefaultSpaceTrackTimeout,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerMinute: 600,
		},
		Tracing: TracingConfig{
			Exporter:    "grpc",
			Endpoint:    "localhost:4317",
			SampleRate:  1.0,
			Environment: "production",
		},
		Server: ServerRuntimeConfig{
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			MaxHeaderBytes:  defaultMaxHeaderBytes,
		},
	}
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields cause an error to prevent silent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

// LoadFileConfig loads a YAML config file without applying defaults or env overrides.
func LoadFileConfig(path string) (*FileConfig, error) {
	return NewLoader(path, "").loadFile(path)
}

func mergeFileConfig(dst *AppConfig, src *FileConfig) {
	if src == nil {
		return
	}
	setString(&dst.LogLevel, src.LogLevel)
	setString(&dst.LogService, src.LogService)
	setString(&dst.APIListenAddr, src.ListenAddr)
	setString(&dst.MetricsListenAddr, src.MetricsListenAddr)

	if st := src.SpaceTrack; st != nil {
		setString(&dst.SpaceTrack.BaseURL, st.BaseURL)
		setString(&dst.SpaceTrack.Username, st.Username)
		setString(&dst.SpaceTrack.Password, st.Password)
		if st.Timeout > 0 {
			dst.SpaceTrack.Timeout = st.Timeout
		}
		if st.RateLimitRPM != nil {
			dst.SpaceTrack.RateLimitRPM = *st.RateLimitRPM
		}
	}

	if c := src.CORS; c != nil && c.AllowedOrigins != nil {
		dst.CORS.AllowedOrigins = append([]string(nil), c.AllowedOrigins...)
	}

	if rl := src.RateLimit; rl != nil {
		if rl.Enabled != nil {
			dst.RateLimit.Enabled = *rl.Enabled
		}
		if rl.RequestsPerMinute > 0 {
			dst.RateLimit.RequestsPerMinute = rl.RequestsPerMinute
		}
		if rl.Whitelist != nil {
			dst.RateLimit.Whitelist = append([]string(nil), rl.Whitelist...)
		}
	}

	if tr := src.Tracing; tr != nil {
		if tr.Enabled != nil {
			dst.Tracing.Enabled = *tr.Enabled
		}
		setString(&dst.Tracing.Exporter, tr.Exporter)
		setString(&dst.Tracing.Endpoint, tr.Endpoint)
		setString(&dst.Tracing.Environment, tr.Environment)
		if tr.SampleRate != nil {
			dst.Tracing.SampleRate = *tr.SampleRate
		}
	}

	if s := src.Server; s != nil {
		if s.ReadTimeout > 0 {
			dst.Server.ReadTimeout = s.ReadTimeout
		}
		if s.WriteTimeout > 0 {
			dst.Server.WriteTimeout = s.WriteTimeout
		}
		if s.IdleTimeout > 0 {
			dst.Server.IdleTimeout = s.IdleTimeout
		}
		if s.ShutdownTimeout > 0 {
			dst.Server.ShutdownTimeout = s.ShutdownTimeout
		}
		if s.MaxHeaderBytes > 0 {
			dst.Server.MaxHeaderBytes = s.MaxHeaderBytes
		}
	}
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.LogService = l.envString(EnvLogService, cfg.LogService)
	cfg.APIListenAddr = l.envString(EnvListen, cfg.APIListenAddr)
	cfg.MetricsListenAddr = l.envString(EnvMetricsListen, cfg.MetricsListenAddr)

	cfg.SpaceTrack.Username = l.envString(EnvSpaceTrackUser, cfg.SpaceTrack.Username)
	cfg.SpaceTrack.Password = l.envString(EnvSpaceTrackPass, cfg.SpaceTrack.Password)
	cfg.SpaceTrack.BaseURL = l.envString(EnvSpaceTrackBaseURL, cfg.SpaceTrack.BaseURL)
	cfg.SpaceTrack.Timeout = l.envDuration(EnvSpaceTrackTimeout, cfg.SpaceTrack.Timeout)
	cfg.SpaceTrack.RateLimitRPM = l.envInt(EnvSpaceTrackRateLimit, cfg.SpaceTrack.RateLimitRPM)

	cfg.CORS.AllowedOrigins = l.envList(EnvCORSOrigins, cfg.CORS.AllowedOrigins)

	cfg.RateLimit.Enabled = l.envBool(EnvRateLimitEnabled, cfg.RateLimit.Enabled)
	cfg.RateLimit.RequestsPerMinute = l.envInt(EnvRateLimitRPM, cfg.RateLimit.RequestsPerMinute)
	cfg.RateLimit.Whitelist = l.envList(EnvRateLimitWhitelist, cfg.RateLimit.Whitelist)

	cfg.Tracing.Enabled = l.envBool(EnvTracingEnabled, cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = l.envString(EnvTracingExporter, cfg.Tracing.Exporter)
	cfg.Tracing.Endpoint = l.envString(EnvTracingEndpoint, cfg.Tracing.Endpoint)
	cfg.Tracing.SampleRate = l.envFloat(EnvTracingSampleRate, cfg.Tracing.SampleRate)
	cfg.Tracing.Environment = l.envString(EnvTracingEnvironment, cfg.Tracing.Environment)

	cfg.Server.ReadTimeout = l.envDuration(EnvServerReadTimeout, cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = l.envDuration(EnvServerWriteTimeout, cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = l.envDuration(EnvServerIdleTimeout, cfg.Server.IdleTimeout)
	cfg.Server.ShutdownTimeout = l.envDuration(EnvServerShutdownTimeout, cfg.Server.ShutdownTimeout)
	cfg.Server.MaxHeaderBytes = l.envInt(EnvServerMaxHeaderBytes, cfg.Server.MaxHeaderBytes)
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}
