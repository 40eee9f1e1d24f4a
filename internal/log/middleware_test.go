// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLogsHandledRequest(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(ContextWithRequestID(req.Context(), "rid-1")))
		})
	})
	r.Use(Middleware())
	r.Get("/api/spacetrack/tle/{norad_id}", func(w http.ResponseWriter, req *http.Request) {
		FromContext(req.Context()).Info().Str(FieldEvent, "inner").Msg("inside handler")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("nope"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/spacetrack/tle/25544", nil))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var entries []map[string]any
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var e map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 2)

	inner := entries[0]
	assert.Equal(t, "inner", inner[FieldEvent])
	assert.Equal(t, "rid-1", inner[FieldRequestID])

	handled := entries[1]
	assert.Equal(t, "request.handled", handled[FieldEvent])
	assert.Equal(t, "error", handled["level"])
	assert.Equal(t, "/api/spacetrack/tle/{norad_id}", handled[FieldRoute])
	assert.Equal(t, "/api/spacetrack/tle/25544", handled[FieldPath])
	assert.EqualValues(t, http.StatusBadGateway, handled[FieldStatus])
	assert.EqualValues(t, 4, handled[FieldBytes])
	assert.Equal(t, "rid-1", handled[FieldRequestID])
}
