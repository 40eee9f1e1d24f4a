// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ManuGH/eosvc/internal/config"
	"github.com/ManuGH/eosvc/internal/log"
)

// PerformStartupChecks validates runtime-critical settings before the
// servers start. Missing credentials only warn.
func PerformStartupChecks(_ context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Str("event", "startup.checks_begin").Msg("running pre-flight startup checks")

	if err := checkListenAddr("API", cfg.APIListenAddr); err != nil {
		return err
	}
	if cfg.MetricsListenAddr != "" {
		if err := checkListenAddr("metrics", cfg.MetricsListenAddr); err != nil {
			return err
		}
	}
	if err := checkBaseURL(logger, cfg.SpaceTrack.BaseURL); err != nil {
		return err
	}

	if !cfg.SpaceTrack.HasCredentials() {
		logger.Warn().
			Str("event", "startup.credentials_missing").
			Msg("Space-Track credentials not configured; TLE lookups will fail until they are set")
	}

	logger.Info().Str("event", "startup.checks_passed").Msg("all startup checks passed")
	return nil
}

func checkListenAddr(name, addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid %s listen address %q: %w", name, addr, err)
	}
	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 0 || portNum > 65535 {
		return fmt.Errorf("invalid %s listen port %q in %q", name, port, addr)
	}
	return nil
}

func checkBaseURL(logger zerolog.Logger, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", config.EnvSpaceTrackBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %q", config.EnvSpaceTrackBaseURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host", config.EnvSpaceTrackBaseURL)
	}
	if u.Scheme == "http" {
		logger.Warn().
			Str("event", "startup.plaintext_upstream").
			Str("url", config.MaskURL(raw)).
			Msg("upstream base URL is not https; credentials are sent in clear text")
	}
	return nil
}
