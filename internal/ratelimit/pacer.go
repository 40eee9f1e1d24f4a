// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package ratelimit paces outbound calls to the upstream provider.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var (
	pacerWaitSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eosvc",
		Name:      "ratelimit_upstream_wait_seconds",
		Help:      "Time spent waiting for an upstream request token",
		Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"operation"})

	pacerRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eosvc",
		Name:      "ratelimit_upstream_rejected_total",
		Help:      "Upstream requests abandoned while waiting for a token",
	}, []string{"operation"})
)

// Pacer is a token bucket shared by every upstream call of one process.
// A zero rate disables pacing; Wait then returns immediately.
type Pacer struct {
	mu      sync.Mutex
	rpm     int
	limiter *rate.Limiter
}

// NewPacer returns a pacer allowing requestsPerMinute upstream calls, with a
// burst of the same size. requestsPerMinute <= 0 disables pacing.
func NewPacer(requestsPerMinute int) *Pacer {
	p := &Pacer{}
	p.limiter = newLimiter(requestsPerMinute)
	if requestsPerMinute > 0 {
		p.rpm = requestsPerMinute
	}
	return p
}

func newLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute)
}

// SetRate swaps in a full bucket at the new rate. Calls already waiting
// finish against the old bucket.
func (p *Pacer) SetRate(requestsPerMinute int) {
	if requestsPerMinute < 0 {
		requestsPerMinute = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if requestsPerMinute == p.rpm {
		return
	}
	p.rpm = requestsPerMinute
	p.limiter = newLimiter(requestsPerMinute)
}

// Rate returns the configured requests per minute (0 when disabled).
func (p *Pacer) Rate() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rpm
}

// Wait blocks until the upstream operation may proceed or ctx ends.
// A nil Pacer never blocks.
func (p *Pacer) Wait(ctx context.Context, operation string) error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	limiter := p.limiter
	p.mu.Unlock()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		pacerRejected.WithLabelValues(operation).Inc()
		return fmt.Errorf("upstream pacing (%s): %w", operation, err)
	}
	pacerWaitSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	return nil
}
