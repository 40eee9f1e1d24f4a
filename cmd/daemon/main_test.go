// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ManuGH/eosvc/internal/config"
	"github.com/ManuGH/eosvc/internal/spacetrack"
	"github.com/ManuGH/eosvc/internal/version"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// isolateEnv blanks every variable the loader reads; empty values fall back to defaults.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		envConfigPath,
		config.EnvSpaceTrackUser, config.EnvSpaceTrackPass, config.EnvSpaceTrackBaseURL,
		config.EnvSpaceTrackTimeout, config.EnvSpaceTrackRateLimit,
		config.EnvListen, config.EnvMetricsListen, config.EnvLogLevel, config.EnvLogService,
		config.EnvCORSOrigins, config.EnvRateLimitEnabled, config.EnvRateLimitRPM, config.EnvRateLimitWhitelist,
		config.EnvTracingEnabled, config.EnvTracingExporter, config.EnvTracingEndpoint,
		config.EnvTracingSampleRate, config.EnvTracingEnvironment,
	} {
		t.Setenv(k, "")
	}
	t.Setenv(config.EnvLogLevel, "error")
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireExitCode(t *testing.T, err error, want int) {
	t.Helper()
	var ee *exitError
	require.True(t, errors.As(err, &ee), "want exitError, got %v", err)
	assert.Equal(t, want, ee.code)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version.String()+"\n", out)
}

func TestConfigDumpMasksSecrets(t *testing.T) {
	isolateEnv(t)
	t.Setenv(config.EnvSpaceTrackUser, "alice")
	t.Setenv(config.EnvSpaceTrackPass, "hunter2")

	out, _, err := run(t, "config")
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "alice")

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	st, ok := doc["spacetrack"].(map[string]any)
	require.True(t, ok, "spacetrack section missing:\n%s", out)
	assert.Equal(t, "***", st["password"])
	assert.Equal(t, "https://www.space-track.org", st["baseURL"])
}

func TestConfigDumpJSONFromFile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "eosvc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listenAddr: \":9000\"\nspacetrack:\n  password: s3cret\n"), 0o600))

	out, _, err := run(t, "--config", path, "config", "dump", "--format", "json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, ":9000", doc["listenAddr"])
	assert.NotContains(t, out, "s3cret")
}

func TestConfigValidate(t *testing.T) {
	isolateEnv(t)

	out, _, err := run(t, "config", "validate")
	require.NoError(t, err)
	assert.Equal(t, "environment is valid\n", out)

	t.Setenv(config.EnvSpaceTrackBaseURL, "not a url")
	_, _, err = run(t, "config", "validate")
	require.Error(t, err)
	requireExitCode(t, err, exitConfig)
}

func TestConfigPathFromEnvironment(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "eosvc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listenAddr: \":9100\"\n"), 0o600))
	t.Setenv(envConfigPath, path)

	out, _, err := run(t, "config", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `":9100"`)
}

func TestFetchCommand(t *testing.T) {
	isolateEnv(t)
	mock := spacetrack.NewMockServer("alice", "hunter2")
	defer mock.Close()

	t.Setenv(config.EnvSpaceTrackBaseURL, mock.URL)
	t.Setenv(config.EnvSpaceTrackUser, "alice")
	t.Setenv(config.EnvSpaceTrackPass, "hunter2")

	out, _, err := run(t, "fetch", "25544", "--limit", "5")
	require.NoError(t, err)

	var got spacetrack.History
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 25544, got.NoradID)
	assert.Equal(t, 5, got.Count)
	assert.Equal(t, spacetrack.MockTLE(25544, 5), got.TLE)

	out, _, err = run(t, "fetch", "25544", "-l", "2", "--raw")
	require.NoError(t, err)
	assert.Equal(t, spacetrack.MockTLE(25544, 2), out)
	assert.Equal(t, 2, mock.LoginCalls())
}

func TestFetchCommandErrors(t *testing.T) {
	isolateEnv(t)
	mock := spacetrack.NewMockServer("alice", "hunter2")
	defer mock.Close()
	t.Setenv(config.EnvSpaceTrackBaseURL, mock.URL)

	tests := []struct {
		name     string
		user     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{name: "non-numeric id", user: "alice", args: []string{"fetch", "iss"}, wantCode: exitConfig, wantErr: "invalid norad_id"},
		{name: "limit out of range", user: "alice", args: []string{"fetch", "25544", "--limit", "0"}, wantCode: exitConfig, wantErr: "limit must be between 1 and 9999"},
		{name: "missing credentials", user: "", args: []string{"fetch", "25544"}, wantCode: exitConfig, wantErr: "not configured"},
		{name: "rejected login", user: "mallory", args: []string{"fetch", "25544"}, wantCode: exitUpstream, wantErr: "login failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(config.EnvSpaceTrackUser, tt.user)
			t.Setenv(config.EnvSpaceTrackPass, "hunter2")

			out, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Empty(t, out)
			assert.Contains(t, err.Error(), tt.wantErr)
			requireExitCode(t, err, tt.wantCode)
		})
	}
	assert.Zero(t, mock.QueryCalls())
}

func TestHealthcheckCommand(t *testing.T) {
	isolateEnv(t)
	var ready atomic.Bool
	ready.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/healthz":
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/readyz" && ready.Load():
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	out, _, err := run(t, "healthcheck", "--url", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Healthcheck successful (ready)\n", out)

	ready.Store(false)
	_, _, err = run(t, "healthcheck", "--url", srv.URL+"/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	out, _, err = run(t, "healthcheck", "--url", srv.URL, "--mode", "live")
	require.NoError(t, err)
	assert.Equal(t, "Healthcheck successful (live)\n", out)

	_, _, err = run(t, "healthcheck", "--url", srv.URL, "--mode", "deep")
	require.Error(t, err)
	requireExitCode(t, err, exitConfig)
}

func TestHealthcheckDerivesURLFromConfig(t *testing.T) {
	isolateEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv(config.EnvListen, strings.TrimPrefix(srv.URL, "http://"))
	_, _, err := run(t, "healthcheck")
	require.NoError(t, err)
}

func TestLocalBaseURL(t *testing.T) {
	tests := map[string]string{
		":8000":          "http://127.0.0.1:8000",
		"0.0.0.0:8080":   "http://127.0.0.1:8080",
		"[::]:9000":      "http://127.0.0.1:9000",
		"10.0.0.5:8000":  "http://10.0.0.5:8000",
		"[::1]:8000":     "http://[::1]:8000",
		"missing-a-port": "http://127.0.0.1:8000",
	}
	for in, want := range tests {
		assert.Equal(t, want, localBaseURL(in), in)
	}
}

func TestLogLevelReloader(t *testing.T) {
	reload := logLevelReloader("info")

	cfg := config.Defaults()
	cfg.LogLevel = "info"
	reload(cfg)

	cfg.LogLevel = "error"
	reload(cfg)
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())

	cfg.LogLevel = "info"
	reload(cfg)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
