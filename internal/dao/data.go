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

	json "github.com/goccy/go-json"

	"github.com/observatus/observatus/internal/database"
	"github.com/observatus/observatus/internal/database/query"
	"github.com/observatus/observatus/internal/models"
	"github.com/observatus/observatus/internal/params"
)

// DataDAO queries observation rows for one dataset at a time.
type DataDAO struct {
	db                *database.DB
	unsupportedIsTrue bool
}

// NewDataDAO builds an observation DAO.
func NewDataDAO(db *database.DB, unsupportedIsTrue bool) *DataDAO {
	return &DataDAO{db: db, unsupportedIsTrue: unsupportedIsTrue}
}

func (d *DataDAO) builder() CriteriaBuilder {
	return CriteriaBuilder{
		StorageSRID:       d.db.StorageSRID,
		SpatialAvailable:  d.db.HasSpatial(),
		UnsupportedIsTrue: d.unsupportedIsTrue,
	}
}

const observationColumns = `id, dataset_id, sampling_time_start, sampling_time_end,
	result_time, valid_time_start, valid_time_end, deleted, is_parent, parent_id,
	quantity_value, count_value, category_value, boolean_value, text_value,
	geometry, detection_limit_flag, detection_limit, vertical_from, vertical_to`

// GetAllInstancesFor returns the observation window of one dataset, ordered
// by sampling end time. Expanded requests also load the per-observation
// parameter sets; profile datasets load child rows per parent.
func (d *DataDAO) GetAllInstancesFor(ctx context.Context, ds *models.DatasetEntity, p params.Parameters) ([]*models.DataEntity, error) {
	defer observe("data", time.Now())

	pred := d.builder().ObservationCriteria(ds, p)
	where, args := query.CompileWhere(pred)

	rows, err := d.db.Conn().QueryContext(ctx, fmt.Sprintf(
		"SELECT %s FROM observations %s ORDER BY sampling_time_end", observationColumns, where), args...)
	if err != nil {
		return nil, countError("data", fmt.Errorf("%w: observation query: %v", ErrDataAccess, err))
	}
	defer func() { _ = rows.Close() }()

	var out []*models.DataEntity
	for rows.Next() {
		obs, err := scanObservation(rows)
		if err != nil {
			return nil, countError("data", fmt.Errorf("%w: observation scan: %v", ErrDataAccess, err))
		}
		out = append(out, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, countError("data", fmt.Errorf("%w: observation rows: %v", ErrDataAccess, err))
	}

	if p.Expanded() {
		if err := d.loadParameters(ctx, out); err != nil {
			return nil, countError("data", err)
		}
	}
	return out, nil
}

// GetCountFor counts the observations of one dataset under the request
// criteria.
func (d *DataDAO) GetCountFor(ctx context.Context, ds *models.DatasetEntity, p params.Parameters) (int64, error) {
	defer observe("data", time.Now())

	where, args := query.CompileWhere(d.builder().ObservationCriteria(ds, p))
	var n int64
	err := d.db.Conn().QueryRowContext(ctx,
		"SELECT count(*) FROM observations "+where, args...).Scan(&n)
	if err != nil {
		return 0, countError("data", fmt.Errorf("%w: observation count: %v", ErrDataAccess, err))
	}
	return n, nil
}

// GetClosestValueBefore returns the newest observation strictly before t,
// or nil when the dataset has none.
func (d *DataDAO) GetClosestValueBefore(ctx context.Context, ds *models.DatasetEntity, t time.Time) (*models.DataEntity, error) {
	pred := query.Conj(
		d.baseCriteria(ds),
		query.Cmp{Column: "sampling_time_end", Op: query.OpLt, Value: t.UTC()},
	)
	return d.queryOne(ctx, pred, "ORDER BY sampling_time_end DESC")
}

// GetClosestValueAfter returns the oldest observation strictly after t,
// or nil when the dataset has none.
func (d *DataDAO) GetClosestValueAfter(ctx context.Context, ds *models.DatasetEntity, t time.Time) (*models.DataEntity, error) {
	pred := query.Conj(
		d.baseCriteria(ds),
		query.Cmp{Column: "sampling_time_start", Op: query.OpGt, Value: t.UTC()},
	)
	return d.queryOne(ctx, pred, "ORDER BY sampling_time_start ASC")
}

// GetFirstObservation returns the oldest observation of the dataset, or nil
// for an empty series.
func (d *DataDAO) GetFirstObservation(ctx context.Context, ds *models.DatasetEntity) (*models.DataEntity, error) {
	return d.queryOne(ctx, d.baseCriteria(ds), "ORDER BY sampling_time_start ASC")
}

// GetLastObservation returns the newest observation of the dataset, or nil
// for an empty series.
func (d *DataDAO) GetLastObservation(ctx context.Context, ds *models.DatasetEntity) (*models.DataEntity, error) {
	return d.queryOne(ctx, d.baseCriteria(ds), "ORDER BY sampling_time_end DESC")
}

// GetChildren returns the child rows of a composite (profile) observation,
// ordered by vertical extent.
func (d *DataDAO) GetChildren(ctx context.Context, parentID int64) ([]*models.DataEntity, error) {
	pred := query.Conj(
		query.Cmp{Column: "parent_id", Op: query.OpEq, Value: parentID},
		query.Cmp{Column: "deleted", Op: query.OpEq, Value: false},
	)
	where, args := query.CompileWhere(pred)

	rows, err := d.db.Conn().QueryContext(ctx, fmt.Sprintf(
		"SELECT %s FROM observations %s ORDER BY vertical_from", observationColumns, where), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: child observations: %v", ErrDataAccess, err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.DataEntity
	for rows.Next() {
		obs, err := scanObservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: child observation scan: %v", ErrDataAccess, err)
		}
		out = append(out, obs)
	}
	return out, rows.Err()
}

// GetVerticalMetadata loads the vertical axis description of a profile
// dataset. Nil when the dataset carries none.
func (d *DataDAO) GetVerticalMetadata(ctx context.Context, ds *models.DatasetEntity) (*models.VerticalMetadata, error) {
	if ds.VerticalMetadataID == nil {
		return nil, nil
	}
	var (
		vm     models.VerticalMetadata
		unit   sql.NullString
		origin sql.NullString
	)
	err := d.db.Conn().QueryRowContext(ctx,
		"SELECT id, unit, origin_name, orientation_up FROM vertical_metadata WHERE id = ?",
		*ds.VerticalMetadataID,
	).Scan(&vm.ID, &unit, &origin, &vm.OrientationUp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: vertical metadata: %v", ErrDataAccess, err)
	}
	vm.Unit = database.NullString(unit)
	vm.OriginName = database.NullString(origin)
	return &vm, nil
}

func (d *DataDAO) baseCriteria(ds *models.DatasetEntity) query.Predicate {
	isParent := ds.ValueType == models.ValueTypeProfile
	return query.Conj(
		query.Cmp{Column: "dataset_id", Op: query.OpEq, Value: ds.ID},
		query.Cmp{Column: "deleted", Op: query.OpEq, Value: false},
		query.Cmp{Column: "is_parent", Op: query.OpEq, Value: isParent},
	)
}

func (d *DataDAO) queryOne(ctx context.Context, pred query.Predicate, order string) (*models.DataEntity, error) {
	where, args := query.CompileWhere(pred)
	row := d.db.Conn().QueryRowContext(ctx, fmt.Sprintf(
		"SELECT %s FROM observations %s %s LIMIT 1", observationColumns, where, order), args...)

	obs, err := scanObservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: observation scan: %v", ErrDataAccess, err)
	}
	return obs, nil
}

// loadParameters attaches the name/value parameter sets to the observations
// in one batch. Values are stored as JSON and decode to their natural types;
// undecodable values stay raw strings.
func (d *DataDAO) loadParameters(ctx context.Context, observations []*models.DataEntity) error {
	if len(observations) == 0 {
		return nil
	}
	byID := make(map[int64]*models.DataEntity, len(observations))
	ids := make([]int64, len(observations))
	for i, obs := range observations {
		byID[obs.ID] = obs
		ids[i] = obs.ID
	}

	where, args := query.CompileWhere(query.InInt64s("observation_id", ids))
	rows, err := d.db.Conn().QueryContext(ctx,
		"SELECT observation_id, name, value FROM observation_parameters "+where, args...)
	if err != nil {
		return fmt.Errorf("%w: observation parameters: %v", ErrDataAccess, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			owner int64
			name  string
			raw   sql.NullString
		)
		if err := rows.Scan(&owner, &name, &raw); err != nil {
			return fmt.Errorf("%w: parameter scan: %v", ErrDataAccess, err)
		}
		obs, ok := byID[owner]
		if !ok {
			continue
		}
		if obs.Parameters == nil {
			obs.Parameters = make(map[string]interface{})
		}
		obs.Parameters[name] = decodeParameterValue(raw)
	}
	return rows.Err()
}

func decodeParameterValue(raw sql.NullString) interface{} {
	if !raw.Valid {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal([]byte(raw.String), &v); err != nil {
		return raw.String
	}
	return v
}

func scanObservation(row rowScanner) (*models.DataEntity, error) {
	var (
		obs            models.DataEntity
		resultTime     sql.NullTime
		validStart     sql.NullTime
		validEnd       sql.NullTime
		parentID       sql.NullInt64
		quantity       sql.NullFloat64
		count          sql.NullInt64
		category       sql.NullString
		boolean        sql.NullBool
		text           sql.NullString
		geometry       sql.NullString
		detectionFlag  sql.NullInt64
		detectionLimit sql.NullFloat64
		verticalFrom   sql.NullFloat64
		verticalTo     sql.NullFloat64
	)

	err := row.Scan(
		&obs.ID, &obs.DatasetID, &obs.SamplingTimeStart, &obs.SamplingTimeEnd,
		&resultTime, &validStart, &validEnd, &obs.Deleted, &obs.IsParent, &parentID,
		&quantity, &count, &category, &boolean, &text,
		&geometry, &detectionFlag, &detectionLimit, &verticalFrom, &verticalTo,
	)
	if err != nil {
		return nil, err
	}

	obs.SamplingTimeStart = obs.SamplingTimeStart.UTC()
	obs.SamplingTimeEnd = obs.SamplingTimeEnd.UTC()
	obs.ResultTime = database.TimePtr(resultTime)
	obs.ValidTimeStart = database.TimePtr(validStart)
	obs.ValidTimeEnd = database.TimePtr(validEnd)
	obs.ParentID = database.Int64Ptr(parentID)
	obs.QuantityValue = database.Float64Ptr(quantity)
	obs.CountValue = database.Int64Ptr(count)
	obs.CategoryValue = database.StringPtr(category)
	obs.BooleanValue = database.BoolPtr(boolean)
	obs.TextValue = database.StringPtr(text)
	obs.Geometry = database.Geometry(geometry)
	obs.VerticalFrom = database.Float64Ptr(verticalFrom)
	obs.VerticalTo = database.Float64Ptr(verticalTo)

	if detectionFlag.Valid && detectionLimit.Valid {
		obs.DetectionLimit = &models.DetectionLimit{
			Flag:  int(detectionFlag.Int64),
			Limit: detectionLimit.Float64,
		}
	}
	return &obs, nil
}
