// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

// Package filter models structured filter expressions (comparison, logical,
// spatial, temporal) and translates them into predicate trees.
//
// Translation never hard-fails: an expression the generator cannot express
// against the schema degrades to an always-true or always-false restriction,
// selected by the caller's unsupported-filter policy, with a warning log.
package filter

import (
	"time"

	"github.com/paulmach/orb"
)

// CompOp names a comparison operator of the filter grammar.
type CompOp string

// Comparison operators.
const (
	CompEq   CompOp = "eq"
	CompNe   CompOp = "ne"
	CompGt   CompOp = "gt"
	CompGe   CompOp = "ge"
	CompLt   CompOp = "lt"
	CompLe   CompOp = "le"
	CompLike CompOp = "like"
)

// LogicOp names a logical connective.
type LogicOp string

// Logical connectives.
const (
	LogicAnd LogicOp = "and"
	LogicOr  LogicOp = "or"
	LogicNot LogicOp = "not"
)

// TemporalOp names one of the interval-algebra temporal operators.
type TemporalOp string

// Temporal operators.
const (
	TmAfter        TemporalOp = "after"
	TmBefore       TemporalOp = "before"
	TmBegins       TemporalOp = "begins"
	TmBegunBy      TemporalOp = "begunby"
	TmContains     TemporalOp = "contains"
	TmDuring       TemporalOp = "during"
	TmEnds         TemporalOp = "ends"
	TmEndedBy      TemporalOp = "endedby"
	TmEquals       TemporalOp = "equals"
	TmMeets        TemporalOp = "meets"
	TmMetBy        TemporalOp = "metby"
	TmOverlaps     TemporalOp = "overlaps"
	TmOverlappedBy TemporalOp = "overlappedby"
)

// SpatialOp names a spatial relation of the filter grammar.
type SpatialOp string

// Spatial relations. Beyond and DWithin are recognized by the grammar but
// unsupported by the generator.
const (
	SpBBox       SpatialOp = "bbox"
	SpContains   SpatialOp = "contains"
	SpCrosses    SpatialOp = "crosses"
	SpDisjoint   SpatialOp = "disjoint"
	SpEquals     SpatialOp = "equals"
	SpIntersects SpatialOp = "intersects"
	SpOverlaps   SpatialOp = "overlaps"
	SpTouches    SpatialOp = "touches"
	SpWithin     SpatialOp = "within"
	SpBeyond     SpatialOp = "beyond"
	SpDWithin    SpatialOp = "dwithin"
)

// Expr is a node of the filter expression tree.
type Expr interface {
	isExpr()
}

// Comparison compares a value reference against a literal. A nil Value with
// CompEq/CompNe expresses an IS (NOT) NULL test.
type Comparison struct {
	Ref   string
	Op    CompOp
	Value interface{}
}

// BetweenExpr is a closed-range test. It is rewritten to ge AND le before
// translation.
type BetweenExpr struct {
	Ref   string
	Lower interface{}
	Upper interface{}
}

// Logical connects sub-expressions. LogicNot carries exactly one sub.
type Logical struct {
	Op   LogicOp
	Subs []Expr
}

// SpatialExpr relates the target geometry to a literal geometry.
type SpatialExpr struct {
	Op       SpatialOp
	Geometry orb.Geometry

	// Distance is only meaningful for Beyond/DWithin, which the generator
	// routes through the unsupported-filter policy.
	Distance float64
}

// TemporalExpr relates the target's sampling time to an instant or period.
// An instant is modeled as the degenerate period Begin == End.
type TemporalExpr struct {
	Op    TemporalOp
	Begin time.Time
	End   time.Time
}

// Instant reports whether the operand is a single instant.
func (t TemporalExpr) Instant() bool {
	return t.Begin.Equal(t.End)
}

func (Comparison) isExpr()   {}
func (BetweenExpr) isExpr()  {}
func (Logical) isExpr()      {}
func (SpatialExpr) isExpr()  {}
func (TemporalExpr) isExpr() {}
