// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

// Package dao implements the per-entity data-access objects: dataset and
// observation queries, the describable entity families, default criteria
// composition from request parameters, hierarchy resolution and counting.
//
// All DAOs share the error taxonomy of this package. Callers classify
// failures with errors.Is against ErrNotFound, ErrBadRequest and
// ErrDataAccess.
package dao
