// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package filter

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/observatus/observatus/internal/database/query"
	"github.com/observatus/observatus/internal/logging"
	"github.com/observatus/observatus/internal/metrics"
)

// Target describes the table a filter expression is generated against.
type Target struct {
	// TimeStartColumn/TimeEndColumn back the temporal operators.
	TimeStartColumn string
	TimeEndColumn   string

	// GeometryColumn backs the spatial operators. Empty disables them.
	GeometryColumn string

	// DatasetKeyColumn is the column holding the dataset key on this
	// target: "dataset_id" for observations, "id" for datasets.
	DatasetKeyColumn string

	// ValueRefs maps plain value references (e.g. "value") to columns.
	ValueRefs map[string]string
}

// ObservationTarget returns the generation target for the observation table.
// valueColumn is the typed value column of the queried datasets.
func ObservationTarget(valueColumn string) Target {
	return Target{
		TimeStartColumn:  "sampling_time_start",
		TimeEndColumn:    "sampling_time_end",
		GeometryColumn:   "geometry",
		DatasetKeyColumn: "dataset_id",
		ValueRefs: map[string]string{
			"value":      valueColumn,
			"resultTime": "result_time",
		},
	}
}

// DatasetTarget returns the generation target for the dataset table.
func DatasetTarget() Target {
	return Target{
		TimeStartColumn:  "first_value_at",
		TimeEndColumn:    "last_value_at",
		DatasetKeyColumn: "id",
		ValueRefs: map[string]string{
			"domainId": "domain_id",
			"label":    "label",
		},
	}
}

// relatedEntityTables maps related-entity references to their tables and the
// dataset foreign key pointing at them.
var relatedEntityTables = map[string]struct {
	table     string
	datasetFK string
}{
	"procedure":  {"procedures", "procedure_id"},
	"feature":    {"features", "feature_id"},
	"offering":   {"offerings", "offering_id"},
	"phenomenon": {"phenomena", "phenomenon_id"},
}

// Generator translates filter expressions into predicate trees.
type Generator struct {
	Target Target

	// UnsupportedIsTrue selects the fallback restriction for expressions
	// that cannot be translated: true keeps all rows, false drops them.
	UnsupportedIsTrue bool
}

// Generate translates an expression tree. Untranslatable sub-expressions
// degrade per the unsupported-filter policy and never raise an error.
func (g Generator) Generate(expr Expr) query.Predicate {
	switch node := expr.(type) {
	case Comparison:
		return g.generateComparison(node)
	case BetweenExpr:
		// Simplification pass: a between is the conjunction of ge and le.
		return g.Generate(Logical{Op: LogicAnd, Subs: []Expr{
			Comparison{Ref: node.Ref, Op: CompGe, Value: node.Lower},
			Comparison{Ref: node.Ref, Op: CompLe, Value: node.Upper},
		}})
	case Logical:
		return g.generateLogical(node)
	case SpatialExpr:
		return g.generateSpatial(node)
	case TemporalExpr:
		return g.generateTemporal(node)
	case nil:
		return g.unsupported("nil expression")
	default:
		return g.unsupported(fmt.Sprintf("unknown expression %T", expr))
	}
}

// GenerateString parses and translates a textual filter expression. A parse
// failure counts as an unsupported filter.
func (g Generator) GenerateString(raw string) query.Predicate {
	if strings.TrimSpace(raw) == "" {
		return query.AlwaysTrue{}
	}
	expr, err := Parse(raw)
	if err != nil {
		return g.unsupported(fmt.Sprintf("parse error: %v", err))
	}
	return g.Generate(expr)
}

func (g Generator) generateComparison(node Comparison) query.Predicate {
	// Related-entity references resolve into a correlated subquery over the
	// entity table, keyed back through the dataset foreign key.
	if entity, path, ok := splitEntityRef(node.Ref); ok {
		return g.generateEntityComparison(entity, path, node)
	}

	column, ok := g.Target.ValueRefs[node.Ref]
	if !ok {
		return g.unsupported(fmt.Sprintf("unknown value reference %q", node.Ref))
	}
	return g.columnComparison(column, node)
}

func (g Generator) columnComparison(column string, node Comparison) query.Predicate {
	if node.Value == nil {
		switch node.Op {
		case CompEq:
			return query.IsNull{Column: column}
		case CompNe:
			return query.Not{Sub: query.IsNull{Column: column}}
		default:
			return g.unsupported(fmt.Sprintf("operator %q with null literal", node.Op))
		}
	}

	switch node.Op {
	case CompEq:
		return query.Cmp{Column: column, Op: query.OpEq, Value: node.Value}
	case CompNe:
		return query.Cmp{Column: column, Op: query.OpNe, Value: node.Value}
	case CompGt:
		return query.Cmp{Column: column, Op: query.OpGt, Value: node.Value}
	case CompGe:
		return query.Cmp{Column: column, Op: query.OpGe, Value: node.Value}
	case CompLt:
		return query.Cmp{Column: column, Op: query.OpLt, Value: node.Value}
	case CompLe:
		return query.Cmp{Column: column, Op: query.OpLe, Value: node.Value}
	case CompLike:
		pattern, ok := node.Value.(string)
		if !ok {
			return g.unsupported("like with non-string literal")
		}
		return query.Like{Column: column, Pattern: pattern}
	default:
		return g.unsupported(fmt.Sprintf("unknown comparison operator %q", node.Op))
	}
}

// splitEntityRef splits "procedure/name" into ("procedure", "name"). A bare
// entity name defaults to its domain identifier.
func splitEntityRef(ref string) (entity, path string, ok bool) {
	parts := strings.SplitN(ref, "/", 2)
	if _, known := relatedEntityTables[parts[0]]; !known {
		return "", "", false
	}
	if len(parts) == 1 {
		return parts[0], "domainId", true
	}
	return parts[0], parts[1], true
}

var entityPathColumns = map[string]string{
	"domainId": "domain_id",
	"name":     "name",
	"label":    "name",
}

func (g Generator) generateEntityComparison(entity, path string, node Comparison) query.Predicate {
	column, ok := entityPathColumns[path]
	if !ok {
		return g.unsupported(fmt.Sprintf("unknown path %q on %q", path, entity))
	}

	rel := relatedEntityTables[entity]
	inner := g.columnComparison(column, Comparison{Ref: node.Ref, Op: node.Op, Value: node.Value})
	if isPolicyFallback(inner) {
		return inner
	}

	datasetFilter := query.SubqueryIn{
		Column:    rel.datasetFK,
		Table:     rel.table,
		KeyColumn: "id",
		Filter:    inner,
	}
	if g.Target.DatasetKeyColumn == "id" {
		// Dataset target: the foreign key lives on the dataset row itself.
		return datasetFilter
	}
	return query.SubqueryIn{
		Column:    g.Target.DatasetKeyColumn,
		Table:     "datasets",
		KeyColumn: "id",
		Filter:    datasetFilter,
	}
}

func (g Generator) generateLogical(node Logical) query.Predicate {
	switch node.Op {
	case LogicNot:
		if len(node.Subs) != 1 {
			return g.unsupported("not with more than one operand")
		}
		return query.Not{Sub: g.Generate(node.Subs[0])}
	case LogicAnd:
		subs := make([]query.Predicate, len(node.Subs))
		for i, sub := range node.Subs {
			subs[i] = g.Generate(sub)
		}
		return query.Conj(subs...)
	case LogicOr:
		subs := make([]query.Predicate, len(node.Subs))
		for i, sub := range node.Subs {
			subs[i] = g.Generate(sub)
		}
		return query.Disj(subs...)
	default:
		return g.unsupported(fmt.Sprintf("unknown logical operator %q", node.Op))
	}
}

var spatialRelations = map[SpatialOp]query.SpatialRelation{
	SpBBox:       query.SpatialBBox,
	SpContains:   query.SpatialContains,
	SpCrosses:    query.SpatialCrosses,
	SpDisjoint:   query.SpatialDisjoint,
	SpEquals:     query.SpatialEquals,
	SpIntersects: query.SpatialIntersects,
	SpOverlaps:   query.SpatialOverlaps,
	SpTouches:    query.SpatialTouches,
	SpWithin:     query.SpatialWithin,
}

func (g Generator) generateSpatial(node SpatialExpr) query.Predicate {
	if g.Target.GeometryColumn == "" {
		return g.unsupported("spatial filter on a target without geometry")
	}
	relation, ok := spatialRelations[node.Op]
	if !ok {
		return g.unsupported(fmt.Sprintf("unsupported spatial relation %q", node.Op))
	}
	if node.Geometry == nil || isEmptyGeometry(node.Geometry) {
		return g.unsupported("empty filter geometry")
	}
	return query.Spatial{
		Relation: relation,
		Column:   g.Target.GeometryColumn,
		WKT:      wkt.MarshalString(node.Geometry),
	}
}

func isEmptyGeometry(g orb.Geometry) bool {
	switch geom := g.(type) {
	case orb.LineString:
		return len(geom) == 0
	case orb.Polygon:
		return len(geom) == 0
	case orb.MultiPoint:
		return len(geom) == 0
	case orb.MultiLineString:
		return len(geom) == 0
	case orb.MultiPolygon:
		return len(geom) == 0
	case orb.Collection:
		return len(geom) == 0
	}
	return false
}

// unsupported applies the unsupported-filter policy: the query never
// hard-fails on a filter this layer does not understand.
func (g Generator) unsupported(detail string) query.Predicate {
	metrics.UnsupportedFilters.Inc()
	logging.Warn().
		Str("detail", detail).
		Bool("fallback_matches_all", g.UnsupportedIsTrue).
		Msg("Unsupported filter expression degraded to constant restriction")
	if g.UnsupportedIsTrue {
		return query.AlwaysTrue{}
	}
	return query.AlwaysFalse{}
}

func isPolicyFallback(p query.Predicate) bool {
	switch p.(type) {
	case query.AlwaysTrue, query.AlwaysFalse:
		return true
	}
	return false
}
