// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// NullString returns the string value or "".
func NullString(v sql.NullString) string {
	if v.Valid {
		return v.String
	}
	return ""
}

// StringPtr returns a pointer to the string value, or nil for NULL.
func StringPtr(v sql.NullString) *string {
	if v.Valid {
		s := v.String
		return &s
	}
	return nil
}

// Int64Ptr returns a pointer to the int64 value, or nil for NULL.
func Int64Ptr(v sql.NullInt64) *int64 {
	if v.Valid {
		n := v.Int64
		return &n
	}
	return nil
}

// IntPtr returns a pointer to the value as int, or nil for NULL.
func IntPtr(v sql.NullInt64) *int {
	if v.Valid {
		n := int(v.Int64)
		return &n
	}
	return nil
}

// Float64Ptr returns a pointer to the float64 value, or nil for NULL.
func Float64Ptr(v sql.NullFloat64) *float64 {
	if v.Valid {
		f := v.Float64
		return &f
	}
	return nil
}

// BoolPtr returns a pointer to the bool value, or nil for NULL.
func BoolPtr(v sql.NullBool) *bool {
	if v.Valid {
		b := v.Bool
		return &b
	}
	return nil
}

// TimePtr returns a pointer to the UTC time value, or nil for NULL.
func TimePtr(v sql.NullTime) *time.Time {
	if v.Valid {
		t := v.Time.UTC()
		return &t
	}
	return nil
}

// Geometry decodes a WKT column into an orb geometry. NULL and empty columns
// decode to nil; a malformed value also decodes to nil rather than failing
// the row.
func Geometry(v sql.NullString) orb.Geometry {
	if !v.Valid || v.String == "" {
		return nil
	}
	geom, err := wkt.Unmarshal(v.String)
	if err != nil {
		return nil
	}
	return geom
}

// SplitList splits a comma-separated list column, trimming blanks. Used for
// the per-dataset no-data value list.
func SplitList(v sql.NullString) []string {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	parts := strings.Split(v.String, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinList renders a list for storage in a comma-separated column.
func JoinList(values []string) string {
	return strings.Join(values, ",")
}
