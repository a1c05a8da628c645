// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

// Package main is the entry point for the Observatus server.
//
// The server initializes components in the following order:
//
//  1. Configuration: layered loading via Koanf v2 (defaults, YAML file,
//     OBSERVATUS_ environment variables)
//  2. Logging: process-global zerolog logger
//  3. Database: embedded DuckDB with the spatial and icu extensions
//  4. Data access: per-entity DAOs over the shared connection pool
//  5. Assembly: value assemblers with the service-wide no-data markers
//  6. Repositories: output conversion with a shared worker pool size
//  7. HTTP server: Chi-routed reference surface with Prometheus metrics
//
// Shutdown is graceful on SIGINT and SIGTERM: the listener stops accepting,
// in-flight requests get the configured timeout to finish, then the database
// closes.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/observatus/observatus/internal/api"
	"github.com/observatus/observatus/internal/assembler"
	"github.com/observatus/observatus/internal/config"
	"github.com/observatus/observatus/internal/dao"
	"github.com/observatus/observatus/internal/database"
	"github.com/observatus/observatus/internal/logging"
	"github.com/observatus/observatus/internal/params"
	"github.com/observatus/observatus/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Str("path", cfg.Database.Path).Msg("Starting Observatus")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close database")
		}
	}()

	handler := buildHandler(db, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
	case err := <-errCh:
		logging.Error().Err(err).Msg("HTTP server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
		_ = server.Close()
		os.Exit(1)
	}
	logging.Info().Msg("Server stopped")
}

// buildHandler wires the data access, assembly and repository layers into
// the HTTP handler.
func buildHandler(db *database.DB, cfg *config.Config) *api.Handler {
	// Unknown filter constructs widen observation queries and narrow
	// dataset queries, so an unresolvable filter never hides data windows
	// but never inflates entity listings either.
	datasetDAO := dao.NewDatasetDAO(db, false)
	dataDAO := dao.NewDataDAO(db, true)
	resolver := dao.NewResolver(db)

	workers := cfg.Service.AssemblyWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	values := assembler.New(dataDAO, datasetDAO, cfg.Service.NoDataValues)
	datasets := repository.NewDatasetRepository(datasetDAO, resolver, values, workers)

	families := make(map[string]api.ParameterProvider, len(dao.AllFamilies))
	counts := map[string]repository.CountSource{
		params.KeyDatasets: datasetDAO,
	}
	for _, desc := range dao.AllFamilies {
		entityDAO := dao.NewEntityDAO(db, desc, false)
		families[desc.ParamKey] = repository.NewParameterRepository(entityDAO, workers)
		counts[desc.ParamKey] = entityDAO
	}

	return api.NewHandler(datasets, families, repository.NewCountRepository(counts), db)
}
