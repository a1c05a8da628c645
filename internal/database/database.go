// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package database

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"github.com/observatus/observatus/internal/config"
	"github.com/observatus/observatus/internal/logging"
)

// DB wraps the DuckDB connection pool together with the availability flags
// of the optional extensions.
type DB struct {
	conn *sql.DB

	// StorageSRID is the SRID all stored geometries are expressed in.
	StorageSRID int

	spatialAvailable bool
	icuAvailable     bool
}

// New opens (or creates) the DuckDB database at cfg.Path, applies pragmas,
// loads extensions and initializes the schema. Path ":memory:" opens an
// in-memory store.
func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	conn, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %q: %w", cfg.Path, err)
	}

	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)

	db := &DB{conn: conn, StorageSRID: cfg.StorageSRID}

	if err := db.applyPragmas(ctx, cfg); err != nil {
		_ = conn.Close()
		return nil, err
	}
	db.loadExtensions(ctx)
	if err := db.initSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("spatial", db.spatialAvailable).
		Bool("icu", db.icuAvailable).
		Msg("Database ready")
	return db, nil
}

func (db *DB) applyPragmas(ctx context.Context, cfg config.DatabaseConfig) error {
	pragmas := []string{}
	if cfg.MaxMemory != "" {
		pragmas = append(pragmas, fmt.Sprintf("SET memory_limit='%s';", cfg.MaxMemory))
	}
	if cfg.Threads > 0 {
		pragmas = append(pragmas, fmt.Sprintf("SET threads=%d;", cfg.Threads))
	}
	for _, pragma := range pragmas {
		if _, err := db.conn.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}
	return nil
}

// loadExtensions installs and loads the optional DuckDB extensions. Both are
// optional: without spatial, spatial filters degrade per the caller's
// unsupported-filter policy; without icu, timezone handling falls back to the
// process timezone database.
func (db *DB) loadExtensions(ctx context.Context) {
	db.spatialAvailable = db.loadExtension(ctx, "spatial", "SELECT ST_Point(0, 0)")
	db.icuAvailable = db.loadExtension(ctx, "icu", "")
}

func (db *DB) loadExtension(ctx context.Context, name, verifyQuery string) bool {
	installCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := db.conn.ExecContext(installCtx, fmt.Sprintf("INSTALL %s;", name)); err != nil {
		// INSTALL fails when offline; LOAD may still succeed on a local copy.
		logging.Debug().Str("extension", name).Err(err).Msg("Extension install failed, trying load")
	}
	if _, err := db.conn.ExecContext(installCtx, fmt.Sprintf("LOAD %s;", name)); err != nil {
		logging.Warn().Str("extension", name).Err(err).Msg("Extension unavailable")
		return false
	}
	if verifyQuery != "" {
		if _, err := db.conn.ExecContext(installCtx, verifyQuery); err != nil {
			logging.Warn().Str("extension", name).Err(err).Msg("Extension loaded but not functional")
			return false
		}
	}
	return true
}

// HasSpatial reports whether the spatial extension loaded successfully.
func (db *DB) HasSpatial() bool { return db.spatialAvailable }

// HasICU reports whether the icu extension loaded successfully.
func (db *DB) HasICU() bool { return db.icuAvailable }

// Conn exposes the underlying pool for the data-access layer.
func (db *DB) Conn() *sql.DB { return db.conn }

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close releases the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// TableExists probes information_schema for a table. Optional entity tables
// use this to short-circuit to empty results instead of failing the query.
func (db *DB) TableExists(ctx context.Context, table string) (bool, error) {
	const q = "SELECT count(*) FROM information_schema.tables WHERE table_name = ?"
	var n int
	if err := db.conn.QueryRowContext(ctx, q, table).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to probe table %q: %w", table, err)
	}
	return n > 0, nil
}
