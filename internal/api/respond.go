// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package api

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/observatus/observatus/internal/dao"
	"github.com/observatus/observatus/internal/logging"
)

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// writeJSON encodes payload as the response body. Encoding failures are
// logged; the status line has already been written at that point so the
// client sees a truncated body.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps a data-layer error onto its HTTP status. Internal errors
// are logged with the request path but reported to the client without
// detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, dao.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Status:  http.StatusNotFound,
			Message: "resource not found",
		})
	case errors.Is(err, dao.ErrBadRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	default:
		logging.Error().Err(err).
			Str("path", r.URL.Path).
			Str("query", r.URL.RawQuery).
			Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Status:  http.StatusInternalServerError,
			Message: "internal server error",
		})
	}
}
