// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package assembler

import (
	"strconv"
	"strings"
)

// noDataMatcher decides whether a raw value counts as "no measurement".
// Markers come from the service configuration plus the per-dataset list;
// matching is case-insensitive, and numeric markers also match numerically
// so "-9999" covers "-9999.0".
type noDataMatcher struct {
	literals map[string]struct{}
	numbers  []float64
}

func newNoDataMatcher(markerSets ...[]string) noDataMatcher {
	m := noDataMatcher{literals: make(map[string]struct{})}
	for _, set := range markerSets {
		for _, marker := range set {
			marker = strings.TrimSpace(marker)
			if marker == "" {
				continue
			}
			m.literals[strings.ToLower(marker)] = struct{}{}
			if f, err := strconv.ParseFloat(marker, 64); err == nil {
				m.numbers = append(m.numbers, f)
			}
		}
	}
	return m
}

func (m noDataMatcher) matchesString(v string) bool {
	_, ok := m.literals[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

func (m noDataMatcher) matchesFloat(v float64) bool {
	for _, n := range m.numbers {
		if v == n {
			return true
		}
	}
	return m.matchesString(strconv.FormatFloat(v, 'f', -1, 64))
}

func (m noDataMatcher) matchesInt(v int64) bool {
	if m.matchesString(strconv.FormatInt(v, 10)) {
		return true
	}
	return m.matchesFloat(float64(v))
}
