// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package query

import (
	"fmt"
	"strings"
)

// Compile renders a predicate tree into a parameterized SQL fragment with
// `?` placeholders. The fragment never contains literal user input; all
// values travel through the args slice.
func Compile(p Predicate) (string, []interface{}) {
	c := &compiler{args: make([]interface{}, 0, 8)}
	sql := c.compile(p)
	return sql, c.args
}

// CompileWhere renders a predicate tree with a "WHERE " prefix, or "" for a
// tree that matches everything.
func CompileWhere(p Predicate) (string, []interface{}) {
	sql, args := Compile(p)
	if sql == "1=1" {
		return "", args
	}
	return "WHERE " + sql, args
}

type compiler struct {
	args []interface{}
}

//nolint:gocyclo // one case per node type; splitting would obscure the tree
func (c *compiler) compile(p Predicate) string {
	switch node := p.(type) {
	case nil:
		return "1=1"
	case AlwaysTrue:
		return "1=1"
	case AlwaysFalse:
		return "1=0"
	case Cmp:
		c.args = append(c.args, node.Value)
		return fmt.Sprintf("%s %s ?", node.Column, node.Op)
	case Like:
		c.args = append(c.args, node.Pattern)
		return fmt.Sprintf("lower(%s) LIKE lower(?)", node.Column)
	case IsNull:
		return fmt.Sprintf("%s IS NULL", node.Column)
	case In:
		if len(node.Values) == 0 {
			return "1=0"
		}
		placeholders := make([]string, len(node.Values))
		for i, v := range node.Values {
			placeholders[i] = "?"
			c.args = append(c.args, v)
		}
		return fmt.Sprintf("%s IN (%s)", node.Column, strings.Join(placeholders, ", "))
	case Between:
		c.args = append(c.args, node.Lower, node.Upper)
		return fmt.Sprintf("%s BETWEEN ? AND ?", node.Column)
	case And:
		return c.compileJunction(node.Subs, " AND ", "1=1")
	case Or:
		return c.compileJunction(node.Subs, " OR ", "1=0")
	case Not:
		return fmt.Sprintf("NOT (%s)", c.compile(node.Sub))
	case Spatial:
		return c.compileSpatial(node)
	case SubqueryIn:
		inner := c.compile(node.Filter)
		return fmt.Sprintf("%s IN (SELECT %s FROM %s WHERE %s)",
			node.Column, node.KeyColumn, node.Table, inner)
	default:
		// Unknown node types cannot occur for the closed Predicate set;
		// compile defensively to a non-matching clause.
		return "1=0"
	}
}

func (c *compiler) compileJunction(subs []Predicate, sep, empty string) string {
	if len(subs) == 0 {
		return empty
	}
	parts := make([]string, len(subs))
	for i, sub := range subs {
		parts[i] = "(" + c.compile(sub) + ")"
	}
	return strings.Join(parts, sep)
}

// compileSpatial renders a spatial relation using DuckDB spatial functions
// over WKT geometry columns. BBOX compiles to an intersection test with the
// envelope polygon.
func (c *compiler) compileSpatial(node Spatial) string {
	fn, ok := spatialFunctions[node.Relation]
	if !ok {
		return "1=0"
	}
	c.args = append(c.args, node.WKT)
	return fmt.Sprintf("%s IS NOT NULL AND %s(ST_GeomFromText(%s), ST_GeomFromText(?))",
		node.Column, fn, node.Column)
}

var spatialFunctions = map[SpatialRelation]string{
	SpatialBBox:       "ST_Intersects",
	SpatialContains:   "ST_Contains",
	SpatialCrosses:    "ST_Crosses",
	SpatialDisjoint:   "ST_Disjoint",
	SpatialEquals:     "ST_Equals",
	SpatialIntersects: "ST_Intersects",
	SpatialOverlaps:   "ST_Overlaps",
	SpatialTouches:    "ST_Touches",
	SpatialWithin:     "ST_Within",
}
