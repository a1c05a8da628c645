// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package dao

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb/encoding/wkt"

	"github.com/observatus/observatus/internal/database/query"
	"github.com/observatus/observatus/internal/filter"
	"github.com/observatus/observatus/internal/logging"
	"github.com/observatus/observatus/internal/metrics"
	"github.com/observatus/observatus/internal/models"
	"github.com/observatus/observatus/internal/params"
)

// CriteriaBuilder composes the default query criteria from a parameter bag.
// The composition order is fixed: visibility, last-value window, platform
// restrictions, type filters, per-family id filters, free-form filter,
// spatial filter.
type CriteriaBuilder struct {
	StorageSRID       int
	SpatialAvailable  bool
	UnsupportedIsTrue bool

	// ExpandHierarchy maps a set of primary keys to its descendant closure
	// for hierarchical families. Nil leaves id sets unexpanded.
	ExpandHierarchy func(desc EntityDescriptor, ids []int64) []int64

	// TableAvailable probes for optional linkage tables. Nil assumes every
	// table is present.
	TableAvailable func(table string) bool
}

// DatasetCriteria builds the predicate restricting the datasets table.
func (b CriteriaBuilder) DatasetCriteria(p params.Parameters) (query.Predicate, error) {
	subs := []query.Predicate{
		query.Cmp{Column: "published", Op: query.OpEq, Value: true},
		query.Cmp{Column: "deleted", Op: query.OpEq, Value: false},
	}

	if window, ok := p.LastValueMatches(); ok {
		subs = append(subs, query.Between{
			Column: "last_value_at",
			Lower:  window.Start.UTC(),
			Upper:  window.End.UTC(),
		})
	}

	// Mobile/insitu restrict only when the request filters them explicitly.
	if mobile, restricted := p.Mobile(); restricted {
		subs = append(subs, query.Cmp{Column: "mobile", Op: query.OpEq, Value: mobile})
	}
	if insitu, restricted := p.Insitu(); restricted {
		subs = append(subs, query.Cmp{Column: "insitu", Op: query.OpEq, Value: insitu})
	}

	subs = append(subs, typeCriteria("dataset_type", p.DatasetTypes()))
	subs = append(subs, typeCriteria("observation_type", p.ObservationTypes()))
	subs = append(subs, typeCriteria("value_type", p.ValueTypes()))

	idFilters, err := b.familyIDCriteria(p)
	if err != nil {
		return nil, err
	}
	subs = append(subs, idFilters...)

	if raw := p.ODataFilter(); raw != "" {
		gen := filter.Generator{
			Target:            filter.DatasetTarget(),
			UnsupportedIsTrue: b.UnsupportedIsTrue,
		}
		subs = append(subs, gen.GenerateString(raw))
	}

	spatial, err := b.spatialCriteria(p)
	if err != nil {
		return nil, err
	}
	subs = append(subs, spatial)

	return query.Conj(subs...), nil
}

// typeCriteria builds a type-tag restriction. A filter containing "all"
// requests every type and restricts nothing.
func typeCriteria(column string, types []string) query.Predicate {
	if len(types) == 0 || params.AllTypesRequested(types) {
		return nil
	}
	return query.InStrings(column, types)
}

// familyIDCriteria builds one restriction per describable family that has
// ids in the request. Numeric ids match the foreign key (expanded to the
// descendant closure for hierarchical families); matchDomainIds routes the
// match through the family table on the stable domain identifier.
func (b CriteriaBuilder) familyIDCriteria(p params.Parameters) ([]query.Predicate, error) {
	var out []query.Predicate

	if ids := p.Datasets(); len(ids) > 0 {
		pred, err := b.identityCriteria("id", "", EntityDescriptor{}, ids, p.MatchDomainIDs())
		if err != nil {
			return nil, err
		}
		out = append(out, pred)
	}

	for _, desc := range AllFamilies {
		ids := p.ListOf(desc.ParamKey)
		if len(ids) == 0 {
			continue
		}
		var (
			pred query.Predicate
			err  error
		)
		if desc.DatasetFK != "" {
			pred, err = b.identityCriteria(desc.DatasetFK, desc.Table, desc, ids, p.MatchDomainIDs())
		} else {
			pred, err = b.joinCriteria(desc, ids, p.MatchDomainIDs())
		}
		if err != nil {
			return nil, err
		}
		out = append(out, pred)
	}
	return out, nil
}

// joinCriteria matches datasets through a many-to-many linkage table.
// Stores without the optional linkage table degrade per the
// unsupported-filter policy.
func (b CriteriaBuilder) joinCriteria(desc EntityDescriptor, raw []string, matchDomainIDs bool) (query.Predicate, error) {
	if b.TableAvailable != nil && !b.TableAvailable(desc.JoinTable) {
		metrics.UnsupportedFilters.Inc()
		logging.Warn().
			Str("family", desc.Name).
			Str("table", desc.JoinTable).
			Bool("fallback_matches_all", b.UnsupportedIsTrue).
			Msg("Id filter on a family whose linkage table is absent")
		if b.UnsupportedIsTrue {
			return query.AlwaysTrue{}, nil
		}
		return query.AlwaysFalse{}, nil
	}

	var match query.Predicate
	if matchDomainIDs {
		likes := make([]query.Predicate, len(raw))
		for i, v := range raw {
			likes[i] = query.Like{Column: "domain_id", Pattern: v}
		}
		match = query.SubqueryIn{
			Column:    desc.JoinFK,
			Table:     desc.Table,
			KeyColumn: "id",
			Filter:    query.Disj(likes...),
		}
	} else {
		ids, err := ParseIDs(raw)
		if err != nil {
			return nil, err
		}
		match = query.InInt64s(desc.JoinFK, ids)
	}
	return query.SubqueryIn{
		Column:    "id",
		Table:     desc.JoinTable,
		KeyColumn: "dataset_id",
		Filter:    match,
	}, nil
}

// identityCriteria matches a key column against raw request ids. table is
// the family table for domain-id matching, empty for the datasets table
// itself (matched on its own domain_id column).
func (b CriteriaBuilder) identityCriteria(column, table string, desc EntityDescriptor, raw []string, matchDomainIDs bool) (query.Predicate, error) {
	if matchDomainIDs {
		likes := make([]query.Predicate, len(raw))
		for i, v := range raw {
			likes[i] = query.Like{Column: "domain_id", Pattern: v}
		}
		match := query.Disj(likes...)
		if table == "" {
			return match, nil
		}
		return query.SubqueryIn{Column: column, Table: table, KeyColumn: "id", Filter: match}, nil
	}

	ids, err := ParseIDs(raw)
	if err != nil {
		return nil, err
	}
	if desc.Hierarchical && b.ExpandHierarchy != nil {
		ids = b.ExpandHierarchy(desc, ids)
	}
	return query.InInt64s(column, ids), nil
}

// spatialCriteria restricts datasets by their feature geometry. When the
// spatial extension is unavailable the filter degrades per the
// unsupported-filter policy.
func (b CriteriaBuilder) spatialCriteria(p params.Parameters) (query.Predicate, error) {
	bound, err := p.SpatialFilter(b.StorageSRID)
	if err != nil {
		return nil, fmt.Errorf("%w: spatial filter: %v", ErrDataAccess, err)
	}
	if bound == nil {
		return nil, nil
	}
	if !b.SpatialAvailable {
		metrics.UnsupportedFilters.Inc()
		logging.Warn().
			Bool("fallback_matches_all", b.UnsupportedIsTrue).
			Msg("Spatial filter requested but spatial extension is unavailable")
		if b.UnsupportedIsTrue {
			return query.AlwaysTrue{}, nil
		}
		return query.AlwaysFalse{}, nil
	}
	return query.SubqueryIn{
		Column:    "feature_id",
		Table:     "features",
		KeyColumn: "id",
		Filter: query.Spatial{
			Relation: query.SpatialBBox,
			Column:   "geometry",
			WKT:      wkt.MarshalString(bound.ToPolygon()),
		},
	}, nil
}

// ObservationCriteria builds the predicate for an observation window query
// over one dataset: non-deleted leaf rows overlapping the timespan, plus
// result-time and free-form filters.
func (b CriteriaBuilder) ObservationCriteria(ds *models.DatasetEntity, p params.Parameters) query.Predicate {
	subs := []query.Predicate{
		query.Cmp{Column: "dataset_id", Op: query.OpEq, Value: ds.ID},
		query.Cmp{Column: "deleted", Op: query.OpEq, Value: false},
	}

	// Profile observations are queried through their parent rows; scalar
	// series exclude composite parents.
	if ds.ValueType == models.ValueTypeProfile {
		subs = append(subs, query.Cmp{Column: "is_parent", Op: query.OpEq, Value: true})
	} else {
		subs = append(subs, query.Cmp{Column: "is_parent", Op: query.OpEq, Value: false})
	}

	if span, ok := p.Timespan(); ok {
		subs = append(subs,
			query.Cmp{Column: "sampling_time_end", Op: query.OpGe, Value: span.Start.UTC()},
			query.Cmp{Column: "sampling_time_start", Op: query.OpLe, Value: span.End.UTC()},
		)
	}

	if times := p.ResultTimes(); len(times) > 0 {
		vals := make([]interface{}, len(times))
		for i, t := range times {
			vals[i] = t.UTC()
		}
		subs = append(subs, query.In{Column: "result_time", Values: vals})
	}

	if raw := p.ODataFilter(); raw != "" {
		gen := filter.Generator{
			Target:            filter.ObservationTarget(ValueColumn(ds.ValueType)),
			UnsupportedIsTrue: b.UnsupportedIsTrue,
		}
		subs = append(subs, gen.GenerateString(raw))
	}

	return query.Conj(subs...)
}

// ValueColumn maps a value type to the observation column carrying it.
// Record and profile values are composite and have no single column; their
// free-form value filters fall back to the quantity column, which routes
// unknown refs through the unsupported policy at generation time.
func ValueColumn(vt models.ValueType) string {
	switch vt {
	case models.ValueTypeCount:
		return "count_value"
	case models.ValueTypeCategory:
		return "category_value"
	case models.ValueTypeBoolean:
		return "boolean_value"
	case models.ValueTypeText:
		return "text_value"
	default:
		return "quantity_value"
	}
}

// ParseIDs parses raw id strings into primary keys. A malformed id is a
// client error.
func ParseIDs(raw []string) ([]int64, error) {
	ids := make([]int64, len(raw))
	for i, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid id %q", ErrBadRequest, v)
		}
		ids[i] = n
	}
	return ids, nil
}
