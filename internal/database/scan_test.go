// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package database

import (
	"database/sql"
	"reflect"
	"testing"

	"github.com/paulmach/orb"
)

func TestNullPointerHelpers(t *testing.T) {
	if StringPtr(sql.NullString{}) != nil {
		t.Error("NULL string should map to nil")
	}
	if got := StringPtr(sql.NullString{String: "x", Valid: true}); got == nil || *got != "x" {
		t.Errorf("unexpected %v", got)
	}
	if IntPtr(sql.NullInt64{}) != nil {
		t.Error("NULL int should map to nil")
	}
	if got := IntPtr(sql.NullInt64{Int64: 3, Valid: true}); got == nil || *got != 3 {
		t.Errorf("unexpected %v", got)
	}
	if Float64Ptr(sql.NullFloat64{}) != nil {
		t.Error("NULL float should map to nil")
	}
	if BoolPtr(sql.NullBool{}) != nil {
		t.Error("NULL bool should map to nil")
	}
	if TimePtr(sql.NullTime{}) != nil {
		t.Error("NULL time should map to nil")
	}
}

func TestGeometryDecode(t *testing.T) {
	if Geometry(sql.NullString{}) != nil {
		t.Error("NULL geometry should decode to nil")
	}
	if Geometry(sql.NullString{String: "not wkt", Valid: true}) != nil {
		t.Error("malformed geometry should decode to nil")
	}

	geom := Geometry(sql.NullString{String: "POINT(7.6 51.9)", Valid: true})
	pt, ok := geom.(orb.Point)
	if !ok {
		t.Fatalf("expected point, got %T", geom)
	}
	if pt.Lon() != 7.6 || pt.Lat() != 51.9 {
		t.Errorf("unexpected point %v", pt)
	}
}

func TestSplitList(t *testing.T) {
	if SplitList(sql.NullString{}) != nil {
		t.Error("NULL list should split to nil")
	}
	got := SplitList(sql.NullString{String: " -9999, NA ,,n/a", Valid: true})
	want := []string{"-9999", "NA", "n/a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
