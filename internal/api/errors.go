// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ManuGH/eosvc/internal/api/problem"
	"github.com/ManuGH/eosvc/internal/log"
	"github.com/ManuGH/eosvc/internal/spacetrack"
)

// APIError is a stable error shape mapped to a problem response.
type APIError struct {
	Status int
	Type   string
	Title  string
	Code   string
}

var (
	ErrInvalidParameter = &APIError{Status: http.StatusUnprocessableEntity, Type: "request/invalid_parameter", Title: "Unprocessable Entity", Code: "INVALID_PARAMETER"}
	ErrNotConfigured    = &APIError{Status: http.StatusInternalServerError, Type: "spacetrack/not_configured", Title: "Internal Server Error", Code: "UPSTREAM_NOT_CONFIGURED"}
	ErrLoginFailed      = &APIError{Status: http.StatusBadGateway, Type: "spacetrack/login_failed", Title: "Bad Gateway", Code: "UPSTREAM_LOGIN_FAILED"}
	ErrQueryFailed      = &APIError{Status: http.StatusBadGateway, Type: "spacetrack/query_failed", Title: "Bad Gateway", Code: "UPSTREAM_QUERY_FAILED"}
	ErrInternal         = &APIError{Status: http.StatusInternalServerError, Type: "system/internal", Title: "Internal Server Error", Code: "INTERNAL_ERROR"}
	ErrNotFound         = &APIError{Status: http.StatusNotFound, Type: "system/not_found", Title: "Not Found", Code: "NOT_FOUND"}
	ErrMethodNotAllowed = &APIError{Status: http.StatusMethodNotAllowed, Type: "system/method_not_allowed", Title: "Method Not Allowed", Code: "METHOD_NOT_ALLOWED"}
)

// Short messages carried in the problem detail.
const (
	detailNotConfigured = "Space-Track credentials not configured"
	detailLoginFailed   = "Space-Track login failed"
	detailQueryFailed   = "Space-Track request failed"
)

func writeError(w http.ResponseWriter, r *http.Request, e *APIError, detail string) {
	problem.Write(w, r, e.Status, e.Type, e.Title, e.Code, detail)
}

// writeUpstreamError maps gateway errors onto problem responses.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, spacetrack.ErrInvalidQuery):
		writeError(w, r, ErrInvalidParameter, invalidQueryDetail(err))
	case errors.Is(err, spacetrack.ErrNotConfigured):
		writeError(w, r, ErrNotConfigured, detailNotConfigured)
	case errors.Is(err, spacetrack.ErrLoginFailed):
		writeError(w, r, ErrLoginFailed, detailLoginFailed)
	case errors.Is(err, spacetrack.ErrQueryFailed):
		detail := detailQueryFailed
		if status := spacetrack.UpstreamStatus(err); status != 0 {
			detail = fmt.Sprintf("Space-Track returned %d", status)
		}
		writeError(w, r, ErrQueryFailed, detail)
	default:
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "api.unmapped_error").
			Msg("unexpected gateway error")
		writeError(w, r, ErrInternal, "")
	}
}

// invalidQueryDetail strips the package prefix from a query validation error.
func invalidQueryDetail(err error) string {
	return strings.TrimPrefix(err.Error(), spacetrack.ErrInvalidQuery.Error()+": ")
}
