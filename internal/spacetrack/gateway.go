// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package spacetrack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/eosvc/internal/config"
	xglog "github.com/ManuGH/eosvc/internal/log"
	"github.com/ManuGH/eosvc/internal/ratelimit"
	"github.com/ManuGH/eosvc/internal/telemetry"
)

const (
	loginPath = "/ajaxauth/login"
	queryPath = "/basicspacedata/query/class/tle/NORAD_CAT_ID/%d/orderby/EPOCH%%20asc/limit/%d/format/tle"

	// The login endpoint answers 200 even for bad credentials; a body
	// containing this marker means the login was rejected.
	loginFailureMarker = "Failed"

	maxLoginBodyBytes = 1 << 20
	maxQueryBodyBytes = 32 << 20

	tracerName = "github.com/ManuGH/eosvc/internal/spacetrack"
)

var errBodyTooLarge = errors.New("response body exceeds limit")

// Settings supplies the upstream configuration. It is read on every call
// so reloaded credentials apply without a restart.
type Settings interface {
	SpaceTrack() config.SpaceTrackConfig
}

// StaticSettings is a fixed Settings value.
type StaticSettings config.SpaceTrackConfig

// SpaceTrack implements Settings.
func (s StaticSettings) SpaceTrack() config.SpaceTrackConfig {
	return config.SpaceTrackConfig(s)
}

// History is the relayed TLE text for one satellite.
type History struct {
	TLE     string `json:"tle"`
	NoradID int    `json:"norad_id"`
	Count   int    `json:"count"`
}

// Option customises a Gateway.
type Option func(*Gateway)

// WithPacer shares an upstream pacer instead of building one from settings.
func WithPacer(p *ratelimit.Pacer) Option {
	return func(g *Gateway) {
		g.pacer = p
	}
}

// Gateway owns the process-wide upstream session and relays history
// lookups through it.
type Gateway struct {
	settings Settings
	pacer    *ratelimit.Pacer
	logger   zerolog.Logger

	mu      sync.Mutex
	session *Session

	statusMu    sync.Mutex
	lastSuccess time.Time
	lastFailure time.Time
	lastError   string
}

// LookupStatus summarises the most recent upstream lookups.
type LookupStatus struct {
	LastSuccess time.Time
	LastFailure time.Time
	LastError   string
}

// LastLookup reports the outcome of recent lookups that reached the
// upstream. Lookups rejected before any upstream call are not recorded.
func (g *Gateway) LastLookup() LookupStatus {
	g.statusMu.Lock()
	defer g.statusMu.Unlock()
	return LookupStatus{
		LastSuccess: g.lastSuccess,
		LastFailure: g.lastFailure,
		LastError:   g.lastError,
	}
}

func (g *Gateway) recordOutcome(err error) {
	g.statusMu.Lock()
	defer g.statusMu.Unlock()
	if err == nil {
		g.lastSuccess = time.Now()
		return
	}
	g.lastFailure = time.Now()
	g.lastError = err.Error()
}

// NewGateway creates a gateway. No upstream traffic happens until the
// first lookup.
func NewGateway(settings Settings, opts ...Option) *Gateway {
	g := &Gateway{
		settings: settings,
		logger:   xglog.WithComponent("spacetrack"),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.pacer == nil {
		g.pacer = ratelimit.NewPacer(settings.SpaceTrack().RateLimitRPM)
	}
	return g
}

// Session returns the open session, creating a new one on first use,
// after the previous one was closed, or when a reload changed the
// configured timeout. The lock is never held across I/O.
func (g *Gateway) Session() *Session {
	timeout := g.settings.SpaceTrack().Timeout
	if timeout <= 0 {
		timeout = config.DefaultSpaceTrackTimeout
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session != nil && !g.session.Closed() {
		if g.session.Timeout() == timeout {
			return g.session
		}
		// In-flight requests keep their client; only idle conns are dropped.
		g.session.Close()
	}

	g.session = newSession(timeout)
	sessionsCreatedTotal.Inc()
	g.logger.Debug().
		Str(xglog.FieldEvent, "spacetrack.session_created").
		Dur("timeout", timeout).
		Msg("created upstream session")
	return g.session
}

// Close closes the current session, if any.
func (g *Gateway) Close() error {
	g.mu.Lock()
	s := g.session
	g.mu.Unlock()
	if s != nil {
		s.Close()
	}
	return nil
}

// Authenticate logs the session in with the configured credentials.
func (g *Gateway) Authenticate(ctx context.Context, s *Session) error {
	cfg := g.settings.SpaceTrack()
	if !cfg.HasCredentials() {
		return ErrNotConfigured
	}
	return g.login(ctx, s, cfg)
}

// FetchHistory returns up to limit TLE records for noradID, oldest epoch
// first. Every call logs in before querying.
func (g *Gateway) FetchHistory(ctx context.Context, noradID, limit int) (History, error) {
	q := Query{NoradID: noradID, Limit: limit}
	if err := q.Validate(); err != nil {
		return History{}, err
	}

	cfg := g.settings.SpaceTrack()
	logger := xglog.WithComponentFromContext(ctx, "spacetrack").With().
		Int(xglog.FieldNoradID, noradID).
		Int(xglog.FieldLimit, limit).
		Logger()

	if !cfg.HasCredentials() {
		logger.Warn().
			Str(xglog.FieldEvent, "spacetrack.not_configured").
			Msg("upstream credentials are not configured")
		return History{}, ErrNotConfigured
	}
	if g.pacer.Rate() != cfg.RateLimitRPM {
		g.pacer.SetRate(cfg.RateLimitRPM)
	}

	ctx, span := telemetry.Tracer(tracerName).Start(ctx, "spacetrack.FetchHistory",
		trace.WithAttributes(telemetry.QueryAttributes(strconv.Itoa(noradID), limit)...))
	defer span.End()

	s := g.Session()
	if err := g.login(ctx, s, cfg); err != nil {
		g.recordOutcome(err)
		recordSpanError(span, err, OpLogin, "login_failed")
		logger.Warn().Err(err).
			Str(xglog.FieldEvent, "spacetrack.login_failed").
			Int(xglog.FieldUpstreamStatus, UpstreamStatus(err)).
			Msg("upstream login failed")
		return History{}, err
	}

	body, err := g.query(ctx, s, cfg, q)
	g.recordOutcome(err)
	if err != nil {
		recordSpanError(span, err, OpQuery, "query_failed")
		logger.Warn().Err(err).
			Str(xglog.FieldEvent, "spacetrack.query_failed").
			Int(xglog.FieldUpstreamStatus, UpstreamStatus(err)).
			Msg("upstream query failed")
		return History{}, err
	}

	h := History{
		TLE:     body,
		NoradID: noradID,
		Count:   CountRecords(body),
	}
	historyRecords.Observe(float64(h.Count))
	span.SetAttributes(attribute.Int(telemetry.CountKey, h.Count))
	logger.Info().
		Str(xglog.FieldEvent, "spacetrack.history_fetched").
		Int(xglog.FieldCount, h.Count).
		Msg("relayed TLE history")
	return h, nil
}

// CountRecords counts two-line element sets in a TLE body. A trailing
// partial record is not counted.
func CountRecords(body string) int {
	return strings.Count(body, "\n") / 2
}

func (g *Gateway) login(ctx context.Context, s *Session, cfg config.SpaceTrackConfig) error {
	form := url.Values{
		"identity": {cfg.Username},
		"password": {cfg.Password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+loginPath, strings.NewReader(form.Encode()))
	if err != nil {
		return &Error{Sentinel: ErrLoginFailed, Operation: OpLogin, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, body, err := g.do(s, req, OpLogin, maxLoginBodyBytes)
	switch {
	case err != nil:
		return &Error{Sentinel: ErrLoginFailed, Operation: OpLogin, Status: status, Err: err}
	case status != http.StatusOK:
		upstreamRequestsTotal.WithLabelValues(OpLogin, resultHTTPError).Inc()
		return &Error{Sentinel: ErrLoginFailed, Operation: OpLogin, Status: status}
	case strings.Contains(body, loginFailureMarker):
		upstreamRequestsTotal.WithLabelValues(OpLogin, resultRejected).Inc()
		return &Error{Sentinel: ErrLoginFailed, Operation: OpLogin, Status: status, Err: errors.New("credentials rejected")}
	}
	upstreamRequestsTotal.WithLabelValues(OpLogin, resultSuccess).Inc()
	return nil
}

func (g *Gateway) query(ctx context.Context, s *Session, cfg config.SpaceTrackConfig, q Query) (string, error) {
	target := cfg.BaseURL + fmt.Sprintf(queryPath, q.NoradID, q.Limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", &Error{Sentinel: ErrQueryFailed, Operation: OpQuery, Err: err}
	}

	status, body, err := g.do(s, req, OpQuery, maxQueryBodyBytes)
	if err != nil {
		return "", &Error{Sentinel: ErrQueryFailed, Operation: OpQuery, Status: status, Err: err}
	}
	if status != http.StatusOK {
		upstreamRequestsTotal.WithLabelValues(OpQuery, resultHTTPError).Inc()
		return "", &Error{Sentinel: ErrQueryFailed, Operation: OpQuery, Status: status}
	}
	upstreamRequestsTotal.WithLabelValues(OpQuery, resultSuccess).Inc()
	return body, nil
}

// do paces, sends and fully reads one upstream request. A non-nil error
// means no usable response; status is still set when headers arrived.
func (g *Gateway) do(s *Session, req *http.Request, op string, maxBody int64) (int, string, error) {
	if err := g.pacer.Wait(req.Context(), op); err != nil {
		upstreamRequestsTotal.WithLabelValues(op, resultTransportError).Inc()
		return 0, "", err
	}

	start := time.Now()
	defer func() {
		upstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	resp, err := s.Client().Do(req)
	if err != nil {
		upstreamRequestsTotal.WithLabelValues(op, resultTransportError).Inc()
		return 0, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err == nil && int64(len(raw)) > maxBody {
		err = errBodyTooLarge
	}
	if err != nil {
		upstreamRequestsTotal.WithLabelValues(op, resultTransportError).Inc()
		return resp.StatusCode, "", fmt.Errorf("read %s response: %w", op, err)
	}
	return resp.StatusCode, string(raw), nil
}

func recordSpanError(span trace.Span, err error, op, errorType string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, errorType)
	span.SetAttributes(telemetry.ErrorAttributes(errorType)...)
	span.SetAttributes(telemetry.UpstreamAttributes(op, UpstreamStatus(err))...)
}
