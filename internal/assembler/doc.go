// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

// Package assembler turns raw observation rows into typed output values:
// no-data substitution, half-up rounding of quantities, metadata enrichment,
// first/last value resolution, reference-series boundary expansion and
// profile composition.
//
// A nil observation always assembles to a nil value, never an error.
package assembler
