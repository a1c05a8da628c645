// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package assembler

import (
	"sync"
	"time"

	"github.com/observatus/observatus/internal/logging"
)

// locationCache memoizes IANA timezone lookups process-wide; datasets of one
// provider typically share a handful of origin timezones.
var locationCache sync.Map // name -> *time.Location

// LocationFor resolves an IANA timezone name, falling back to UTC for empty
// or unknown names.
func LocationFor(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	if cached, ok := locationCache.Load(name); ok {
		return cached.(*time.Location)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logging.Warn().Str("timezone", name).Err(err).Msg("Unknown origin timezone, using UTC")
		loc = time.UTC
	}
	locationCache.Store(name, loc)
	return loc
}
