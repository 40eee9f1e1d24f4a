// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by spans across the service.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"

	UpstreamOperationKey = "spacetrack.operation"
	UpstreamStatusKey    = "spacetrack.status_code"
	NoradIDKey           = "spacetrack.norad_id"
	LimitKey             = "spacetrack.limit"
	CountKey             = "spacetrack.tle_count"
	SessionReusedKey     = "spacetrack.session_reused"

	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// QueryAttributes describes a TLE history lookup.
func QueryAttributes(noradID string, limit int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(NoradIDKey, noradID),
		attribute.Int(LimitKey, limit),
	}
}

// UpstreamAttributes describes one call to the upstream provider.
// A zero status is omitted (transport failure).
func UpstreamAttributes(operation string, status int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(UpstreamOperationKey, operation)}
	if status != 0 {
		attrs = append(attrs, attribute.Int(UpstreamStatusKey, status))
	}
	return attrs
}

// ErrorAttributes tags a span with a stable error class.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ErrorTypeKey, errorType),
	}
}
