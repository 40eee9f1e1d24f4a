// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package spacetrack

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eosvc_spacetrack_requests_total",
		Help: "Upstream calls by operation and result",
	}, []string{
		"operation", // login|query
		"result",    // success|rejected|http_error|transport_error
	})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eosvc_spacetrack_request_duration_seconds",
		Help:    "Upstream call latency by operation",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"operation"})

	sessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eosvc_spacetrack_sessions_created_total",
		Help: "Upstream sessions created (first use or after close)",
	})

	historyRecords = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eosvc_spacetrack_history_records",
		Help:    "TLE records returned per history lookup",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
)

const (
	resultSuccess        = "success"
	resultRejected       = "rejected"
	resultHTTPError      = "http_error"
	resultTransportError = "transport_error"
)
