// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

// Package query provides a persistence-agnostic predicate tree and its SQL
// compiler. DAOs and criterion generators build trees; only the compiler
// knows how a node renders against the backing store.
package query

// CmpOp is a relational comparison operator.
type CmpOp string

// Comparison operators.
const (
	OpEq  CmpOp = "="
	OpNe  CmpOp = "<>"
	OpGt  CmpOp = ">"
	OpGe  CmpOp = ">="
	OpLt  CmpOp = "<"
	OpLe  CmpOp = "<="
)

// SpatialRelation names a supported spatial predicate.
type SpatialRelation string

// Supported spatial relations.
const (
	SpatialBBox       SpatialRelation = "bbox"
	SpatialContains   SpatialRelation = "contains"
	SpatialCrosses    SpatialRelation = "crosses"
	SpatialDisjoint   SpatialRelation = "disjoint"
	SpatialEquals     SpatialRelation = "equals"
	SpatialIntersects SpatialRelation = "intersects"
	SpatialOverlaps   SpatialRelation = "overlaps"
	SpatialTouches    SpatialRelation = "touches"
	SpatialWithin     SpatialRelation = "within"
)

// Predicate is one node of the filter tree. Implementations are closed:
// the compiler switches over the concrete node types.
type Predicate interface {
	isPredicate()
}

// AlwaysTrue matches every row. Compiles to "1=1".
type AlwaysTrue struct{}

// AlwaysFalse matches no row. Compiles to "1=0".
type AlwaysFalse struct{}

// Cmp compares a column against a literal value.
type Cmp struct {
	Column string
	Op     CmpOp
	Value  interface{}
}

// Like is a case-insensitive pattern match on a column.
type Like struct {
	Column  string
	Pattern string
}

// IsNull matches rows with a NULL column.
type IsNull struct {
	Column string
}

// In matches a column against a value set. An empty set matches nothing.
type In struct {
	Column string
	Values []interface{}
}

// Between matches a column inside a closed range.
type Between struct {
	Column string
	Lower  interface{}
	Upper  interface{}
}

// And is the conjunction of its sub-predicates. Empty And matches all rows.
type And struct {
	Subs []Predicate
}

// Or is the disjunction of its sub-predicates. Empty Or matches no rows.
type Or struct {
	Subs []Predicate
}

// Not negates its sub-predicate.
type Not struct {
	Sub Predicate
}

// Spatial applies a spatial relation between a geometry column and a WKT
// literal. The geometry column stores WKT in the configured storage SRID.
type Spatial struct {
	Relation SpatialRelation
	Column   string
	WKT      string
}

// SubqueryIn constrains a column to the keys projected by a filtered
// subquery: Column IN (SELECT KeyColumn FROM Table WHERE Filter).
type SubqueryIn struct {
	Column    string
	Table     string
	KeyColumn string
	Filter    Predicate
}

func (AlwaysTrue) isPredicate()  {}
func (AlwaysFalse) isPredicate() {}
func (Cmp) isPredicate()         {}
func (Like) isPredicate()        {}
func (IsNull) isPredicate()      {}
func (In) isPredicate()          {}
func (Between) isPredicate()     {}
func (And) isPredicate()         {}
func (Or) isPredicate()          {}
func (Not) isPredicate()         {}
func (Spatial) isPredicate()     {}
func (SubqueryIn) isPredicate()  {}

// Conj folds predicates into a conjunction, flattening the trivial cases.
func Conj(subs ...Predicate) Predicate {
	kept := compact(subs)
	switch len(kept) {
	case 0:
		return AlwaysTrue{}
	case 1:
		return kept[0]
	default:
		return And{Subs: kept}
	}
}

// Disj folds predicates into a disjunction, flattening the trivial cases.
func Disj(subs ...Predicate) Predicate {
	kept := compact(subs)
	switch len(kept) {
	case 0:
		return AlwaysFalse{}
	case 1:
		return kept[0]
	default:
		return Or{Subs: kept}
	}
}

func compact(subs []Predicate) []Predicate {
	kept := make([]Predicate, 0, len(subs))
	for _, s := range subs {
		if s == nil {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

// InStrings builds an In node from a string set.
func InStrings(column string, values []string) Predicate {
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return In{Column: column, Values: vals}
}

// InInt64s builds an In node from an int64 set.
func InInt64s(column string, values []int64) Predicate {
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return In{Column: column, Values: vals}
}
