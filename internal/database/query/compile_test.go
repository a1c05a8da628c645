// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package query

import (
	"reflect"
	"testing"
)

func TestCompileAlwaysTrueFalse(t *testing.T) {
	sql, args := Compile(AlwaysTrue{})
	if sql != "1=1" || len(args) != 0 {
		t.Errorf("AlwaysTrue compiled to %q %v", sql, args)
	}

	sql, args = Compile(AlwaysFalse{})
	if sql != "1=0" || len(args) != 0 {
		t.Errorf("AlwaysFalse compiled to %q %v", sql, args)
	}
}

func TestCompileCmp(t *testing.T) {
	sql, args := Compile(Cmp{Column: "published", Op: OpEq, Value: true})
	if sql != "published = ?" {
		t.Errorf("unexpected sql %q", sql)
	}
	if !reflect.DeepEqual(args, []interface{}{true}) {
		t.Errorf("unexpected args %v", args)
	}
}

func TestCompileLikeIsCaseInsensitive(t *testing.T) {
	sql, args := Compile(Like{Column: "domain_id", Pattern: "%Rhine%"})
	if sql != "lower(domain_id) LIKE lower(?)" {
		t.Errorf("unexpected sql %q", sql)
	}
	if len(args) != 1 || args[0] != "%Rhine%" {
		t.Errorf("unexpected args %v", args)
	}
}

func TestCompileInEmptyMatchesNothing(t *testing.T) {
	sql, args := Compile(In{Column: "id"})
	if sql != "1=0" || len(args) != 0 {
		t.Errorf("empty IN compiled to %q %v", sql, args)
	}
}

func TestCompileIn(t *testing.T) {
	sql, args := Compile(InInt64s("dataset_id", []int64{1, 2, 3}))
	if sql != "dataset_id IN (?, ?, ?)" {
		t.Errorf("unexpected sql %q", sql)
	}
	if !reflect.DeepEqual(args, []interface{}{int64(1), int64(2), int64(3)}) {
		t.Errorf("unexpected args %v", args)
	}
}

func TestCompileBetween(t *testing.T) {
	sql, args := Compile(Between{Column: "sampling_time_end", Lower: 1, Upper: 2})
	if sql != "sampling_time_end BETWEEN ? AND ?" {
		t.Errorf("unexpected sql %q", sql)
	}
	if len(args) != 2 {
		t.Errorf("unexpected args %v", args)
	}
}

func TestCompileJunctions(t *testing.T) {
	p := Conj(
		Cmp{Column: "published", Op: OpEq, Value: true},
		Disj(
			Cmp{Column: "deleted", Op: OpEq, Value: false},
			IsNull{Column: "deleted"},
		),
	)

	sql, args := Compile(p)
	want := "(published = ?) AND (((deleted = ?)) OR ((deleted IS NULL)))"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
	if len(args) != 2 {
		t.Errorf("unexpected args %v", args)
	}
}

func TestConjFlattensTrivialCases(t *testing.T) {
	if _, ok := Conj().(AlwaysTrue); !ok {
		t.Error("empty Conj should be AlwaysTrue")
	}
	if _, ok := Disj().(AlwaysFalse); !ok {
		t.Error("empty Disj should be AlwaysFalse")
	}
	single := Cmp{Column: "a", Op: OpEq, Value: 1}
	if got := Conj(single, nil); !reflect.DeepEqual(got, single) {
		t.Errorf("single-element Conj should collapse, got %#v", got)
	}
}

func TestCompileNot(t *testing.T) {
	sql, args := Compile(Not{Sub: Cmp{Column: "deleted", Op: OpEq, Value: true}})
	if sql != "NOT (deleted = ?)" {
		t.Errorf("unexpected sql %q", sql)
	}
	if len(args) != 1 {
		t.Errorf("unexpected args %v", args)
	}
}

func TestCompileSpatial(t *testing.T) {
	sql, args := Compile(Spatial{
		Relation: SpatialWithin,
		Column:   "geometry",
		WKT:      "POLYGON((0 0,1 0,1 1,0 1,0 0))",
	})
	want := "geometry IS NOT NULL AND ST_Within(ST_GeomFromText(geometry), ST_GeomFromText(?))"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
	if len(args) != 1 {
		t.Errorf("unexpected args %v", args)
	}
}

func TestCompileSubqueryIn(t *testing.T) {
	p := SubqueryIn{
		Column:    "datasets.procedure_id",
		Table:     "procedures",
		KeyColumn: "id",
		Filter:    Like{Column: "name", Pattern: "%temp%"},
	}

	sql, args := Compile(p)
	want := "datasets.procedure_id IN (SELECT id FROM procedures WHERE lower(name) LIKE lower(?))"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
	if len(args) != 1 || args[0] != "%temp%" {
		t.Errorf("unexpected args %v", args)
	}
}

func TestCompileWherePrefix(t *testing.T) {
	where, args := CompileWhere(AlwaysTrue{})
	if where != "" || len(args) != 0 {
		t.Errorf("match-all should compile to empty WHERE, got %q", where)
	}

	where, _ = CompileWhere(Cmp{Column: "id", Op: OpEq, Value: 1})
	if where != "WHERE id = ?" {
		t.Errorf("unexpected where %q", where)
	}
}

func TestArgOrderMatchesPlaceholderOrder(t *testing.T) {
	p := Conj(
		Cmp{Column: "a", Op: OpGe, Value: 10},
		Cmp{Column: "b", Op: OpLe, Value: 20},
		InStrings("c", []string{"x", "y"}),
	)

	_, args := Compile(p)
	want := []interface{}{10, 20, "x", "y"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args out of order: got %v, want %v", args, want)
	}
}
