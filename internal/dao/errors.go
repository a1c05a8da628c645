// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package dao

import "errors"

// Sentinel errors of the data-access layer. Wrapped with %w where context
// is added; matched with errors.Is at the API boundary.
var (
	// ErrNotFound marks a lookup for an entity that does not exist or is
	// filtered out by the request criteria.
	ErrNotFound = errors.New("entity not found")

	// ErrBadRequest marks malformed request input, e.g. an unparsable
	// entity identifier or timespan.
	ErrBadRequest = errors.New("bad request")

	// ErrDataAccess marks a failure while talking to the store or while
	// preparing a query (CRS transform failures included).
	ErrDataAccess = errors.New("data access failure")
)
