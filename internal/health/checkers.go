// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"time"

	"github.com/ManuGH/eosvc/internal/config"
	"github.com/ManuGH/eosvc/internal/spacetrack"
)

// CredentialsChecker reports whether upstream credentials are configured.
// Missing credentials degrade the service without making it unready.
type CredentialsChecker struct {
	settings spacetrack.Settings
}

// NewCredentialsChecker creates a checker reading live settings.
func NewCredentialsChecker(settings spacetrack.Settings) *CredentialsChecker {
	return &CredentialsChecker{settings: settings}
}

func (c *CredentialsChecker) Name() string {
	return "spacetrack_credentials"
}

func (c *CredentialsChecker) Check(_ context.Context) CheckResult {
	cfg := c.settings.SpaceTrack()
	if !cfg.HasCredentials() {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "credentials not configured (set " + config.EnvSpaceTrackUser + " and " + config.EnvSpaceTrackPass + ")",
		}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: "credentials configured",
	}
}

// UpstreamChecker reports the outcome of the most recent upstream lookup.
// It reports at worst degraded.
type UpstreamChecker struct {
	lastLookup func() spacetrack.LookupStatus
	staleAfter time.Duration
}

// NewUpstreamChecker creates a checker over a lookup status source.
// Failures older than staleAfter are no longer reported.
func NewUpstreamChecker(lastLookup func() spacetrack.LookupStatus, staleAfter time.Duration) *UpstreamChecker {
	return &UpstreamChecker{lastLookup: lastLookup, staleAfter: staleAfter}
}

func (c *UpstreamChecker) Name() string {
	return "spacetrack_upstream"
}

func (c *UpstreamChecker) Check(_ context.Context) CheckResult {
	st := c.lastLookup()

	switch {
	case st.LastSuccess.IsZero() && st.LastFailure.IsZero():
		return CheckResult{Status: StatusHealthy, Message: "no lookups yet"}
	case st.LastFailure.After(st.LastSuccess) && time.Since(st.LastFailure) < c.staleAfter:
		return CheckResult{
			Status:  StatusDegraded,
			Message: "last upstream lookup failed",
			Error:   st.LastError,
		}
	default:
		return CheckResult{Status: StatusHealthy, Message: "no recent upstream failures"}
	}
}
