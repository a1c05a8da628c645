// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package assembler

import "math"

// roundEpsilon compensates for binary representation error so that values
// sitting exactly on the .5 boundary in decimal round upward, e.g. 1.005
// at scale 2 rounds to 1.01 even though it is stored slightly below.
const roundEpsilon = 1e-9

// RoundHalfUp rounds v to n decimal places, halves away from zero. A nil
// scale leaves the value unchanged.
func RoundHalfUp(v float64, n *int) float64 {
	if n == nil {
		return v
	}
	factor := math.Pow(10, float64(*n))
	if v < 0 {
		return -math.Floor(-v*factor+0.5+roundEpsilon) / factor
	}
	return math.Floor(v*factor+0.5+roundEpsilon) / factor
}
