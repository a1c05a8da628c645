// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package params

import (
	"fmt"
	"strings"
	"time"
)

// Interval is a closed time span [Start, End].
type Interval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies inside the interval, boundaries included.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && !t.After(i.End)
}

// ParseInterval parses an ISO-8601 interval of the form "start/end". Both
// sides accept full timestamps (RFC 3339) or plain dates; a plain end date
// covers the whole day. Plain dates are anchored in UTC.
func ParseInterval(raw string) (Interval, error) {
	return ParseIntervalIn(raw, time.UTC)
}

// ParseIntervalIn parses an interval with plain-date boundaries anchored in
// loc. Datasets recorded in a non-UTC origin timezone use this so a date
// covers the local day.
func ParseIntervalIn(raw string, loc *time.Location) (Interval, error) {
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) != 2 {
		return Interval{}, fmt.Errorf("invalid timespan %q: expected start/end", raw)
	}

	start, err := parseInstantIn(parts[0], false, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid timespan start: %w", err)
	}
	end, err := parseInstantIn(parts[1], true, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid timespan end: %w", err)
	}
	if end.Before(start) {
		return Interval{}, fmt.Errorf("invalid timespan %q: end before start", raw)
	}
	return Interval{Start: start, End: end}, nil
}

func parseInstant(raw string, endOfDay bool) (time.Time, error) {
	return parseInstantIn(raw, endOfDay, time.UTC)
}

func parseInstantIn(raw string, endOfDay bool, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		if endOfDay {
			return t.Add(24*time.Hour - time.Nanosecond).UTC(), nil
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("cannot parse instant %q", raw)
}

// Timespan returns the parsed timespan parameter. The second return is false
// when the parameter is absent. A present but malformed timespan surfaces as
// an error from TimespanChecked; Timespan itself treats it as absent.
func (p Parameters) Timespan() (Interval, bool) {
	iv, err := p.TimespanChecked()
	if err != nil {
		return Interval{}, false
	}
	return iv, !iv.Start.IsZero() || !iv.End.IsZero()
}

// TimespanIn returns the timespan with plain-date boundaries anchored in
// loc. Absent or malformed timespans report false.
func (p Parameters) TimespanIn(loc *time.Location) (Interval, bool) {
	raw, ok := p.values[KeyTimespan]
	if !ok || raw == "" {
		return Interval{}, false
	}
	iv, err := ParseIntervalIn(raw, loc)
	if err != nil {
		return Interval{}, false
	}
	return iv, true
}

// TimespanChecked returns the parsed timespan parameter, a zero Interval if
// absent, or an error if present but malformed.
func (p Parameters) TimespanChecked() (Interval, error) {
	raw, ok := p.values[KeyTimespan]
	if !ok || raw == "" {
		return Interval{}, nil
	}
	return ParseInterval(raw)
}

// ResultTimes returns the parsed result-time restriction instants.
// Malformed entries are skipped.
func (p Parameters) ResultTimes() []time.Time {
	raws := p.listOf(KeyResultTimes)
	out := make([]time.Time, 0, len(raws))
	for _, raw := range raws {
		if t, err := parseInstant(raw, false); err == nil {
			out = append(out, t)
		}
	}
	return out
}

// LastValueMatches returns the time window a dataset's last observation must
// fall into. The second return is false when absent or malformed.
func (p Parameters) LastValueMatches() (Interval, bool) {
	raw, ok := p.values[KeyLastValueMatches]
	if !ok || raw == "" {
		return Interval{}, false
	}
	iv, err := ParseInterval(raw)
	if err != nil {
		return Interval{}, false
	}
	return iv, true
}
