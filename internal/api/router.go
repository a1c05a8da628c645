// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the reference REST surface.
//
//	GET /health
//	GET /metrics
//	GET /api/v1/count
//	GET /api/v1/stations
//	GET /api/v1/datasets[/count|/{id}|/{id}/data]
//	GET /api/v1/<family>[/count|/{id}]     for every registered family
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(instrument)

		r.Get("/count", h.Counts)
		r.Get("/stations", h.Stations)

		r.Route("/datasets", func(r chi.Router) {
			r.Get("/", h.Datasets)
			r.Get("/count", h.DatasetCount)
			r.Get("/{id}", h.Dataset)
			r.Get("/{id}/data", h.DatasetData)
		})

		for family := range h.families {
			r.Route("/"+family, func(r chi.Router) {
				r.Get("/", h.Family(family))
				r.Get("/count", h.FamilyCount(family))
				r.Get("/{id}", h.FamilyInstance(family))
			})
		}
	})

	return r
}
