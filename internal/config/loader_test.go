// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allEnvKeys = []string{
	EnvSpaceTrackUser, EnvSpaceTrackPass, EnvSpaceTrackBaseURL, EnvSpaceTrackTimeout, EnvSpaceTrackRateLimit,
	EnvListen, EnvMetricsListen, EnvLogLevel, EnvLogService, EnvCORSOrigins,
	EnvRateLimitEnabled, EnvRateLimitRPM, EnvRateLimitWhitelist,
	EnvTracingEnabled, EnvTracingExporter, EnvTracingEndpoint, EnvTracingSampleRate, EnvTracingEnvironment,
	EnvServerReadTimeout, EnvServerWriteTimeout, EnvServerIdleTimeout, EnvServerShutdownTimeout, EnvServerMaxHeaderBytes,
}

// clearEnv neutralises any ambient configuration; empty values fall back to defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allEnvKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	want := Defaults()
	want.Version = "v1.2.3"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, cfg.SpaceTrack.HasCredentials())
	assert.Equal(t, 30*time.Second, cfg.SpaceTrack.Timeout)
	assert.Equal(t, "https://www.space-track.org", cfg.SpaceTrack.BaseURL)
}

func TestLoadPrecedenceEnvOverFileOverDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
listenAddr: ":9000"
logLevel: debug
spacetrack:
  baseURL: https://st.example.test/
  username: file-user
  password: file-pass
  timeout: 10s
  rateLimitRPM: 20
cors:
  allowedOrigins: ["https://app.example.test"]
rateLimit:
  enabled: true
  requestsPerMinute: 30
`)
	t.Setenv(EnvSpaceTrackPass, "env-pass")
	t.Setenv(EnvListen, ":9100")

	cfg, err := NewLoader(path, "test").Load()
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.APIListenAddr, "env wins over file")
	assert.Equal(t, "debug", cfg.LogLevel, "file wins over default")
	assert.Equal(t, "https://st.example.test", cfg.SpaceTrack.BaseURL, "trailing slash trimmed")
	assert.Equal(t, "file-user", cfg.SpaceTrack.Username)
	assert.Equal(t, "env-pass", cfg.SpaceTrack.Password)
	assert.Equal(t, 10*time.Second, cfg.SpaceTrack.Timeout)
	assert.Equal(t, 20, cfg.SpaceTrack.RateLimitRPM)
	assert.Equal(t, []string{"https://app.example.test"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
	assert.True(t, cfg.SpaceTrack.HasCredentials())
}

func TestHasCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  SpaceTrackConfig
		want bool
	}{
		{name: "both set", cfg: SpaceTrackConfig{Username: "alice", Password: "pw"}, want: true},
		{name: "whitespace username counts as set", cfg: SpaceTrackConfig{Username: "  ", Password: "pw"}, want: true},
		{name: "missing username", cfg: SpaceTrackConfig{Password: "pw"}, want: false},
		{name: "missing password", cfg: SpaceTrackConfig{Username: "alice"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.HasCredentials())
		})
	}

	clearEnv(t)
	t.Setenv(EnvSpaceTrackUser, " ")
	t.Setenv(EnvSpaceTrackPass, "pw")
	cfg, err := NewLoader("", "test").Load()
	require.NoError(t, err)
	assert.Equal(t, " ", cfg.SpaceTrack.Username)
	assert.True(t, cfg.SpaceTrack.HasCredentials())
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "spacetrack:\n  user: legacy\n")

	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict config parse error")
}

func TestLoadRejectsMultipleDocuments(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "logLevel: info\n---\nlogLevel: debug\n")

	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple documents")
}

func TestLoadRejectsNonYAMLExtension(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "")

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.APIListenAddr)
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "bad base url",
			env:     map[string]string{EnvSpaceTrackBaseURL: "not a url"},
			wantErr: "SpaceTrack.BaseURL",
		},
		{
			name:    "bad log level",
			env:     map[string]string{EnvLogLevel: "loud"},
			wantErr: "LogLevel",
		},
		{
			name:    "bad listen addr",
			env:     map[string]string{EnvListen: "8000"},
			wantErr: "APIListenAddr",
		},
		{
			name:    "sample rate out of range",
			env:     map[string]string{EnvTracingSampleRate: "1.5"},
			wantErr: "Tracing.SampleRate",
		},
		{
			name:    "unsupported exporter",
			env:     map[string]string{EnvTracingExporter: "zipkin"},
			wantErr: "Tracing.Exporter",
		},
		{
			name:    "metrics on api port",
			env:     map[string]string{EnvListen: ":8000", EnvMetricsListen: ":8000"},
			wantErr: "metricsListenAddr",
		},
		{
			name:    "bad whitelist entry",
			env:     map[string]string{EnvRateLimitWhitelist: "10.0.0.1,nope"},
			wantErr: "RateLimit.Whitelist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := NewLoader("", "").Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseServerConfigForApp(t *testing.T) {
	cfg := Defaults()
	cfg.Server.ShutdownTimeout = time.Second

	sc := ParseServerConfigForApp(cfg)
	assert.Equal(t, ":8000", sc.ListenAddr)
	assert.Equal(t, minShutdownTimeout, sc.ShutdownTimeout, "shutdown timeout is floored")
	assert.Greater(t, sc.WriteTimeout, DefaultSpaceTrackTimeout)
	assert.Equal(t, defaultMaxHeaderBytes, sc.MaxHeaderBytes)
}
