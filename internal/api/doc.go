// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

// Package api provides the HTTP reference surface over the repositories.
//
// Routing uses the Chi router. All data endpoints decode the URL query into
// a params.Parameters object and hand it to a repository; handlers never
// touch SQL. Errors from the data layer map onto HTTP status codes through
// the dao sentinel taxonomy: ErrNotFound -> 404, ErrBadRequest -> 400,
// everything else -> 500.
package api
