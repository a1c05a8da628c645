// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/observatus/observatus/internal/database"
	"github.com/observatus/observatus/internal/database/query"
	"github.com/observatus/observatus/internal/models"
	"github.com/observatus/observatus/internal/params"
)

// EntityDAO serves one describable entity family, selected by descriptor.
// A single implementation covers procedures, phenomena, offerings,
// categories, features, platforms, samplings and measuring programs.
type EntityDAO struct {
	db                *database.DB
	desc              EntityDescriptor
	unsupportedIsTrue bool
}

// NewEntityDAO builds the DAO for one family.
func NewEntityDAO(db *database.DB, desc EntityDescriptor, unsupportedIsTrue bool) *EntityDAO {
	return &EntityDAO{db: db, desc: desc, unsupportedIsTrue: unsupportedIsTrue}
}

// Descriptor returns the family this DAO serves.
func (d *EntityDAO) Descriptor() EntityDescriptor { return d.desc }

func (d *EntityDAO) columns() string {
	cols := "id, domain_id, name, description, parent_id"
	if d.desc.HasGeometry {
		cols += ", geometry"
	}
	return cols
}

// available probes the backing table for optional families.
func (d *EntityDAO) available(ctx context.Context) (bool, error) {
	if !d.desc.Optional {
		return true, nil
	}
	ok, err := d.db.TableExists(ctx, d.desc.Table)
	if err != nil {
		return false, fmt.Errorf("%w: table probe: %v", ErrDataAccess, err)
	}
	return ok, nil
}

// criteria builds the family predicate: the family's own id filter plus the
// requirement that at least one dataset matching the request references the
// entity.
func (d *EntityDAO) criteria(ctx context.Context, p params.Parameters) (query.Predicate, error) {
	var subs []query.Predicate

	if ids := p.ListOf(d.desc.ParamKey); len(ids) > 0 {
		if p.MatchDomainIDs() {
			likes := make([]query.Predicate, len(ids))
			for i, v := range ids {
				likes[i] = query.Like{Column: "domain_id", Pattern: v}
			}
			subs = append(subs, query.Disj(likes...))
		} else {
			parsed, err := ParseIDs(ids)
			if err != nil {
				return nil, err
			}
			if d.desc.Hierarchical {
				expanded, err := ExpandChildren(ctx, parsed, -1, TableChildFetcher(d.db, d.desc))
				if err == nil {
					parsed = expanded
				}
			}
			subs = append(subs, query.InInt64s("id", parsed))
		}
	}

	if d.desc.DatasetFK != "" {
		builder := CriteriaBuilder{
			StorageSRID:       d.db.StorageSRID,
			SpatialAvailable:  d.db.HasSpatial(),
			UnsupportedIsTrue: d.unsupportedIsTrue,
			TableAvailable: func(table string) bool {
				ok, err := d.db.TableExists(ctx, table)
				return err == nil && ok
			},
		}
		// The family's own id filter is already applied above; strip it from
		// the dataset restriction to avoid double-filtering with unexpanded
		// ids.
		datasetPred, err := builder.DatasetCriteria(p.RemoveAllOf(d.desc.ParamKey))
		if err != nil {
			return nil, err
		}
		subs = append(subs, query.SubqueryIn{
			Column:    "id",
			Table:     "datasets",
			KeyColumn: d.desc.DatasetFK,
			Filter:    datasetPred,
		})
	}

	return query.Conj(subs...), nil
}

// GetAllInstances returns the family members visible under the request,
// ordered by primary key.
func (d *EntityDAO) GetAllInstances(ctx context.Context, p params.Parameters) ([]*models.DescribableEntity, error) {
	defer observe(d.desc.Name, time.Now())

	ok, err := d.available(ctx)
	if err != nil {
		return nil, countError(d.desc.Name, err)
	}
	if !ok {
		return nil, nil
	}

	pred, err := d.criteria(ctx, p)
	if err != nil {
		return nil, countError(d.desc.Name, err)
	}
	where, args := query.CompileWhere(pred)

	sqlText := fmt.Sprintf("SELECT %s FROM %s %s ORDER BY id", d.columns(), d.desc.Table, where)
	if limit, ok := p.Limit(); ok {
		sqlText += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, p.Offset())
	}

	rows, err := d.db.Conn().QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, countError(d.desc.Name, fmt.Errorf("%w: %s query: %v", ErrDataAccess, d.desc.Name, err))
	}
	defer func() { _ = rows.Close() }()

	var out []*models.DescribableEntity
	for rows.Next() {
		e, err := d.scanEntity(rows)
		if err != nil {
			return nil, countError(d.desc.Name, fmt.Errorf("%w: %s scan: %v", ErrDataAccess, d.desc.Name, err))
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetInstance returns one family member by id under the request criteria.
func (d *EntityDAO) GetInstance(ctx context.Context, rawID string, p params.Parameters) (*models.DescribableEntity, error) {
	defer observe(d.desc.Name, time.Now())

	ok, err := d.available(ctx)
	if err != nil {
		return nil, countError(d.desc.Name, err)
	}
	if !ok {
		return nil, countError(d.desc.Name, fmt.Errorf("%w: %s %q", ErrNotFound, d.desc.Name, rawID))
	}

	idPred, err := instanceIDCriteria(rawID, p.MatchDomainIDs())
	if err != nil {
		return nil, countError(d.desc.Name, err)
	}
	pred, err := d.criteria(ctx, p.RemoveAllOf(d.desc.ParamKey))
	if err != nil {
		return nil, countError(d.desc.Name, err)
	}
	where, args := query.CompileWhere(query.Conj(idPred, pred))

	row := d.db.Conn().QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s %s", d.columns(), d.desc.Table, where), args...)
	e, err := d.scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, countError(d.desc.Name, fmt.Errorf("%w: %s %q", ErrNotFound, d.desc.Name, rawID))
	}
	if err != nil {
		return nil, countError(d.desc.Name, fmt.Errorf("%w: %s scan: %v", ErrDataAccess, d.desc.Name, err))
	}
	return e, nil
}

// GetCount counts the family members visible under the request. Optional
// families with no backing table count zero.
func (d *EntityDAO) GetCount(ctx context.Context, p params.Parameters) (int64, error) {
	defer observe(d.desc.Name, time.Now())

	ok, err := d.available(ctx)
	if err != nil {
		return 0, countError(d.desc.Name, err)
	}
	if !ok {
		return 0, nil
	}

	pred, err := d.criteria(ctx, p)
	if err != nil {
		return 0, countError(d.desc.Name, err)
	}
	where, args := query.CompileWhere(pred)

	var n int64
	err = d.db.Conn().QueryRowContext(ctx,
		fmt.Sprintf("SELECT count(*) FROM %s %s", d.desc.Table, where), args...).Scan(&n)
	if err != nil {
		return 0, countError(d.desc.Name, fmt.Errorf("%w: %s count: %v", ErrDataAccess, d.desc.Name, err))
	}
	return n, nil
}

// ParentChainOf reconstructs the ancestry of one entity for hierarchical
// output, root first. Flat families return just the entity itself.
func (d *EntityDAO) ParentChainOf(ctx context.Context, id int64) ([]int64, error) {
	if !d.desc.Hierarchical {
		return []int64{id}, nil
	}
	chain, err := ParentChain(ctx, id, TableParentFetcher(d.db, d.desc))
	if err != nil {
		return nil, fmt.Errorf("%w: parent chain: %v", ErrDataAccess, err)
	}
	return chain, nil
}

func (d *EntityDAO) scanEntity(row rowScanner) (*models.DescribableEntity, error) {
	return scanDescribable(d.desc, row)
}

func scanDescribable(desc EntityDescriptor, row rowScanner) (*models.DescribableEntity, error) {
	var (
		e           models.DescribableEntity
		name        sql.NullString
		description sql.NullString
		parentID    sql.NullInt64
		geometry    sql.NullString
	)

	dest := []interface{}{&e.ID, &e.DomainID, &name, &description, &parentID}
	if desc.HasGeometry {
		dest = append(dest, &geometry)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	e.Label = database.NullString(name)
	e.Description = database.NullString(description)
	e.ParentID = database.Int64Ptr(parentID)
	e.Geometry = database.Geometry(geometry)
	return &e, nil
}
