// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/observatus/observatus/internal/models"
	"github.com/observatus/observatus/internal/params"
)

// DatasetProvider is the dataset surface the handlers need.
// *repository.DatasetRepository implements it.
type DatasetProvider interface {
	GetAll(ctx context.Context, p params.Parameters) ([]*models.DatasetOutput, error)
	GetOne(ctx context.Context, rawID string, p params.Parameters) (*models.DatasetOutput, error)
	GetCount(ctx context.Context, p params.Parameters) (int64, error)
	GetData(ctx context.Context, rawID string, p params.Parameters) (*models.DataCollection, error)
	GetStations(ctx context.Context, p params.Parameters) ([]*models.StationOutput, error)
}

// ParameterProvider is the family surface the handlers need.
// *repository.ParameterRepository implements it.
type ParameterProvider interface {
	GetAll(ctx context.Context, p params.Parameters) ([]*models.ParameterOutput, error)
	GetOne(ctx context.Context, rawID string, p params.Parameters) (*models.ParameterOutput, error)
	GetCount(ctx context.Context, p params.Parameters) (int64, error)
}

// CountProvider aggregates per-family counts.
// *repository.CountRepository implements it.
type CountProvider interface {
	GetCounts(ctx context.Context, p params.Parameters) map[string]int64
}

// Pinger reports data-store liveness for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the repositories behind the HTTP surface.
type Handler struct {
	datasets  DatasetProvider
	families  map[string]ParameterProvider // route segment -> provider
	counts    CountProvider
	store     Pinger
	startTime time.Time
}

// NewHandler builds a handler. families maps route segments such as
// "procedures" to their repositories.
func NewHandler(datasets DatasetProvider, families map[string]ParameterProvider, counts CountProvider, store Pinger) *Handler {
	return &Handler{
		datasets:  datasets,
		families:  families,
		counts:    counts,
		store:     store,
		startTime: time.Now(),
	}
}

func requestParams(r *http.Request) params.Parameters {
	return params.FromURLValues(r.URL.Query())
}

// Datasets lists the visible datasets.
func (h *Handler) Datasets(w http.ResponseWriter, r *http.Request) {
	out, err := h.datasets.GetAll(r.Context(), requestParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Dataset returns one dataset by id or, with matchDomainIds, by domain id.
func (h *Handler) Dataset(w http.ResponseWriter, r *http.Request) {
	out, err := h.datasets.GetOne(r.Context(), chi.URLParam(r, "id"), requestParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// DatasetCount counts the visible datasets.
func (h *Handler) DatasetCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.datasets.GetCount(r.Context(), requestParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// DatasetData returns the assembled data window of one dataset.
func (h *Handler) DatasetData(w http.ResponseWriter, r *http.Request) {
	out, err := h.datasets.GetData(r.Context(), chi.URLParam(r, "id"), requestParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Stations lists the platform-centric station view of the visible datasets.
func (h *Handler) Stations(w http.ResponseWriter, r *http.Request) {
	out, err := h.datasets.GetStations(r.Context(), requestParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Family lists one describable family. The family is picked by route
// segment when the router is set up.
func (h *Handler) Family(family string) http.HandlerFunc {
	provider := h.families[family]
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := provider.GetAll(r.Context(), requestParams(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// FamilyInstance returns one family member.
func (h *Handler) FamilyInstance(family string) http.HandlerFunc {
	provider := h.families[family]
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := provider.GetOne(r.Context(), chi.URLParam(r, "id"), requestParams(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// FamilyCount counts one family.
func (h *Handler) FamilyCount(family string) http.HandlerFunc {
	provider := h.families[family]
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := provider.GetCount(r.Context(), requestParams(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"count": n})
	}
}

// Counts returns the per-family entity counts in one document.
func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.counts.GetCounts(r.Context(), requestParams(r)))
}

// Health reports process liveness and store readiness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"uptime": time.Since(h.startTime).Truncate(time.Second).String(),
	})
}
