// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

// Package database owns the embedded DuckDB store: connection bootstrap,
// extension loading, schema DDL and row-scanning helpers. The spatial
// extension is optional; when it is unavailable the flag on DB lets callers
// route spatial filters through their unsupported-filter policy instead of
// failing queries.
package database
