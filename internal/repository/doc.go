// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

// Package repository renders DAO entities into output documents: condensed
// and expanded dataset views, hierarchical parameter collections, data
// windows with out-of-window metadata, and aggregated counts.
//
// Bulk conversions fan out over a fixed-size worker pool; a conversion
// failure drops that entity with a warning instead of failing the batch.
package repository
