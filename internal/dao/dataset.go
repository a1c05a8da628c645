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
	"strconv"
	"time"

	"github.com/observatus/observatus/internal/database"
	"github.com/observatus/observatus/internal/database/query"
	"github.com/observatus/observatus/internal/logging"
	"github.com/observatus/observatus/internal/metrics"
	"github.com/observatus/observatus/internal/models"
	"github.com/observatus/observatus/internal/params"
)

// DatasetDAO queries the datasets table with the default criteria applied.
type DatasetDAO struct {
	db                *database.DB
	unsupportedIsTrue bool
}

// NewDatasetDAO builds a dataset DAO. unsupportedIsTrue selects the
// unsupported-filter fallback for this DAO's queries.
func NewDatasetDAO(db *database.DB, unsupportedIsTrue bool) *DatasetDAO {
	return &DatasetDAO{db: db, unsupportedIsTrue: unsupportedIsTrue}
}

func (d *DatasetDAO) builder(ctx context.Context) CriteriaBuilder {
	return CriteriaBuilder{
		StorageSRID:       d.db.StorageSRID,
		SpatialAvailable:  d.db.HasSpatial(),
		UnsupportedIsTrue: d.unsupportedIsTrue,
		ExpandHierarchy: func(desc EntityDescriptor, ids []int64) []int64 {
			expanded, err := ExpandChildren(ctx, ids, -1, TableChildFetcher(d.db, desc))
			if err != nil {
				logging.Warn().Err(err).Str("family", desc.Name).
					Msg("Hierarchy expansion failed, using unexpanded id filter")
				return ids
			}
			return expanded
		},
		TableAvailable: func(table string) bool {
			ok, err := d.db.TableExists(ctx, table)
			if err != nil {
				logging.Warn().Err(err).Str("table", table).
					Msg("Table probe failed, treating table as absent")
				return false
			}
			return ok
		},
	}
}

const datasetColumns = `id, domain_id, label, value_type, dataset_type,
	observation_type, published, deleted, mobile, insitu,
	first_value_at, last_value_at, first_quantity_value, last_quantity_value,
	number_of_decimals, origin_timezone, unit, no_data_values,
	procedure_id, phenomenon_id, offering_id, category_id, feature_id,
	platform_id, vertical_metadata_id`

// GetAllInstances returns the datasets matching the request criteria,
// ordered by primary key, paginated by offset/limit.
func (d *DatasetDAO) GetAllInstances(ctx context.Context, p params.Parameters) ([]*models.DatasetEntity, error) {
	defer observe("dataset", time.Now())

	pred, err := d.builder(ctx).DatasetCriteria(p)
	if err != nil {
		return nil, countError("dataset", err)
	}
	where, args := query.CompileWhere(pred)

	sqlText := fmt.Sprintf("SELECT %s FROM datasets %s ORDER BY id", datasetColumns, where)
	if limit, ok := p.Limit(); ok {
		sqlText += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, p.Offset())
	} else if off := p.Offset(); off > 0 {
		sqlText += fmt.Sprintf(" OFFSET %d", off)
	}

	rows, err := d.db.Conn().QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, countError("dataset", fmt.Errorf("%w: dataset query: %v", ErrDataAccess, err))
	}
	defer func() { _ = rows.Close() }()

	var out []*models.DatasetEntity
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, countError("dataset", fmt.Errorf("%w: dataset scan: %v", ErrDataAccess, err))
		}
		out = append(out, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, countError("dataset", fmt.Errorf("%w: dataset rows: %v", ErrDataAccess, err))
	}

	if err := d.loadReferenceIDs(ctx, out); err != nil {
		return nil, countError("dataset", err)
	}
	return out, nil
}

// GetInstance returns one dataset by id, with the request criteria still
// applied: an existing but unpublished dataset is not found.
func (d *DatasetDAO) GetInstance(ctx context.Context, rawID string, p params.Parameters) (*models.DatasetEntity, error) {
	defer observe("dataset", time.Now())

	idPred, err := instanceIDCriteria(rawID, p.MatchDomainIDs())
	if err != nil {
		return nil, countError("dataset", err)
	}
	pred, err := d.builder(ctx).DatasetCriteria(p)
	if err != nil {
		return nil, countError("dataset", err)
	}
	where, args := query.CompileWhere(query.Conj(idPred, pred))

	row := d.db.Conn().QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM datasets %s", datasetColumns, where), args...)
	ds, err := scanDataset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, countError("dataset", fmt.Errorf("%w: dataset %q", ErrNotFound, rawID))
	}
	if err != nil {
		return nil, countError("dataset", fmt.Errorf("%w: dataset scan: %v", ErrDataAccess, err))
	}

	if err := d.loadReferenceIDs(ctx, []*models.DatasetEntity{ds}); err != nil {
		return nil, countError("dataset", err)
	}
	return ds, nil
}

// GetCount counts the datasets matching the request criteria.
func (d *DatasetDAO) GetCount(ctx context.Context, p params.Parameters) (int64, error) {
	defer observe("dataset", time.Now())

	pred, err := d.builder(ctx).DatasetCriteria(p)
	if err != nil {
		return 0, countError("dataset", err)
	}
	where, args := query.CompileWhere(pred)

	var n int64
	err = d.db.Conn().QueryRowContext(ctx,
		fmt.Sprintf("SELECT count(*) FROM datasets %s", where), args...).Scan(&n)
	if err != nil {
		return 0, countError("dataset", fmt.Errorf("%w: dataset count: %v", ErrDataAccess, err))
	}
	return n, nil
}

// GetReferenceDatasets returns the reference series attached to a dataset,
// restricted to published, non-deleted series of the same value type.
func (d *DatasetDAO) GetReferenceDatasets(ctx context.Context, ds *models.DatasetEntity) ([]*models.DatasetEntity, error) {
	if len(ds.ReferenceDatasetIDs) == 0 {
		return nil, nil
	}

	pred := query.Conj(
		query.InInt64s("id", ds.ReferenceDatasetIDs),
		query.Cmp{Column: "published", Op: query.OpEq, Value: true},
		query.Cmp{Column: "deleted", Op: query.OpEq, Value: false},
		query.Cmp{Column: "value_type", Op: query.OpEq, Value: string(ds.ValueType)},
	)
	where, args := query.CompileWhere(pred)

	rows, err := d.db.Conn().QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM datasets %s ORDER BY id", datasetColumns, where), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: reference datasets: %v", ErrDataAccess, err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.DatasetEntity
	for rows.Next() {
		ref, err := scanDataset(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: reference dataset scan: %v", ErrDataAccess, err)
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

// instanceIDCriteria matches one dataset id: primary key, or a
// case-insensitive domain-id match when matchDomainIds is set.
func instanceIDCriteria(rawID string, matchDomainIDs bool) (query.Predicate, error) {
	if matchDomainIDs {
		return query.Like{Column: "domain_id", Pattern: rawID}, nil
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id %q", ErrBadRequest, rawID)
	}
	return query.Cmp{Column: "id", Op: query.OpEq, Value: id}, nil
}

// loadReferenceIDs attaches the reference dataset ids to the scanned
// datasets in one pass.
func (d *DatasetDAO) loadReferenceIDs(ctx context.Context, datasets []*models.DatasetEntity) error {
	if len(datasets) == 0 {
		return nil
	}
	byID := make(map[int64]*models.DatasetEntity, len(datasets))
	ids := make([]int64, len(datasets))
	for i, ds := range datasets {
		byID[ds.ID] = ds
		ids[i] = ds.ID
	}

	where, args := query.CompileWhere(query.InInt64s("dataset_id", ids))
	rows, err := d.db.Conn().QueryContext(ctx,
		"SELECT dataset_id, reference_dataset_id FROM dataset_reference_values "+where, args...)
	if err != nil {
		return fmt.Errorf("%w: reference ids: %v", ErrDataAccess, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var owner, ref int64
		if err := rows.Scan(&owner, &ref); err != nil {
			return fmt.Errorf("%w: reference id scan: %v", ErrDataAccess, err)
		}
		if ds, ok := byID[owner]; ok {
			ds.ReferenceDatasetIDs = append(ds.ReferenceDatasetIDs, ref)
		}
	}
	return rows.Err()
}

// rowScanner abstracts sql.Row and sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDataset(row rowScanner) (*models.DatasetEntity, error) {
	var (
		ds              models.DatasetEntity
		label           sql.NullString
		observationType sql.NullString
		firstAt, lastAt sql.NullTime
		firstVal        sql.NullFloat64
		lastVal         sql.NullFloat64
		decimals        sql.NullInt64
		timezone        sql.NullString
		unit            sql.NullString
		noData          sql.NullString
		procedureID     sql.NullInt64
		phenomenonID    sql.NullInt64
		offeringID      sql.NullInt64
		categoryID      sql.NullInt64
		featureID       sql.NullInt64
		platformID      sql.NullInt64
		verticalID      sql.NullInt64
		valueType       string
		datasetType     string
	)

	err := row.Scan(
		&ds.ID, &ds.DomainID, &label, &valueType, &datasetType,
		&observationType, &ds.Published, &ds.Deleted, &ds.Mobile, &ds.Insitu,
		&firstAt, &lastAt, &firstVal, &lastVal,
		&decimals, &timezone, &unit, &noData,
		&procedureID, &phenomenonID, &offeringID, &categoryID, &featureID,
		&platformID, &verticalID,
	)
	if err != nil {
		return nil, err
	}

	ds.Label = database.NullString(label)
	ds.ValueType = models.ValueType(valueType)
	ds.DatasetType = models.DatasetType(datasetType)
	ds.ObservationType = database.NullString(observationType)
	ds.FirstValueAt = database.TimePtr(firstAt)
	ds.LastValueAt = database.TimePtr(lastAt)
	ds.FirstQuantityValue = database.Float64Ptr(firstVal)
	ds.LastQuantityValue = database.Float64Ptr(lastVal)
	ds.NumberOfDecimals = database.IntPtr(decimals)
	ds.OriginTimezone = database.NullString(timezone)
	ds.Unit = database.NullString(unit)
	ds.NoDataValues = database.SplitList(noData)
	ds.ProcedureID = nullID(procedureID)
	ds.PhenomenonID = nullID(phenomenonID)
	ds.OfferingID = nullID(offeringID)
	ds.CategoryID = nullID(categoryID)
	ds.FeatureID = nullID(featureID)
	ds.PlatformID = nullID(platformID)
	ds.VerticalMetadataID = database.Int64Ptr(verticalID)
	return &ds, nil
}

func nullID(v sql.NullInt64) int64 {
	if v.Valid {
		return v.Int64
	}
	return 0
}

// observe records the query duration for an entity family.
func observe(entity string, start time.Time) {
	metrics.QueryDuration.WithLabelValues(entity).Observe(time.Since(start).Seconds())
}

// countError classifies an error for the query-error counter and passes it
// through unchanged.
func countError(entity string, err error) error {
	kind := "data_access"
	switch {
	case errors.Is(err, ErrNotFound):
		kind = "not_found"
	case errors.Is(err, ErrBadRequest):
		kind = "bad_request"
	}
	metrics.QueryErrors.WithLabelValues(entity, kind).Inc()
	return err
}
