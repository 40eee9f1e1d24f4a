// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/eosvc/internal/log"
	"github.com/ManuGH/eosvc/internal/spacetrack"
)

type healthResponse struct {
	Status string `json:"status"`
}

// handleHealth answers unconditionally; it does not touch the upstream.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
}

// handleTLEHistory relays GET /api/spacetrack/tle/{norad_id}?limit=N.
func (s *Server) handleTLEHistory(w http.ResponseWriter, r *http.Request) {
	noradID, err := strconv.Atoi(chi.URLParam(r, "norad_id"))
	if err != nil {
		writeError(w, r, ErrInvalidParameter, "norad_id must be an integer")
		return
	}

	limit := spacetrack.DefaultLimit
	if values, ok := r.URL.Query()["limit"]; ok {
		limit, err = strconv.Atoi(values[0])
		if err != nil {
			writeError(w, r, ErrInvalidParameter, "limit must be an integer")
			return
		}
	}

	if err := (spacetrack.Query{NoradID: noradID, Limit: limit}).Validate(); err != nil {
		writeError(w, r, ErrInvalidParameter, invalidQueryDetail(err))
		return
	}

	history, err := s.gateway.FetchHistory(r.Context(), noradID, limit)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, history)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).Error().
			Err(err).
			Str(log.FieldEvent, "api.encode_failed").
			Msg("failed to encode response")
	}
}
