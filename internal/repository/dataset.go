// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package repository

import (
	"context"
	"strconv"

	"github.com/paulmach/orb/geojson"

	"github.com/observatus/observatus/internal/assembler"
	"github.com/observatus/observatus/internal/dao"
	"github.com/observatus/observatus/internal/logging"
	"github.com/observatus/observatus/internal/models"
	"github.com/observatus/observatus/internal/params"
)

// DatasetStore is the dataset access the repository needs. *dao.DatasetDAO
// implements it.
type DatasetStore interface {
	GetAllInstances(ctx context.Context, p params.Parameters) ([]*models.DatasetEntity, error)
	GetInstance(ctx context.Context, rawID string, p params.Parameters) (*models.DatasetEntity, error)
	GetCount(ctx context.Context, p params.Parameters) (int64, error)
}

// EntityResolver resolves the related entities of a dataset by primary key.
// *dao.Resolver implements it.
type EntityResolver interface {
	ResolveEntity(ctx context.Context, desc dao.EntityDescriptor, id int64) (*models.DescribableEntity, error)
}

// ValueAssembler is the assembly surface the repository needs.
// *assembler.Assembler implements it.
type ValueAssembler interface {
	AssembleDataValues(ctx context.Context, ds *models.DatasetEntity, p params.Parameters) ([]models.SeriesValue, error)
	FirstValue(ctx context.Context, ds *models.DatasetEntity, p params.Parameters) (models.SeriesValue, error)
	LastValue(ctx context.Context, ds *models.DatasetEntity, p params.Parameters) (models.SeriesValue, error)
	ClosestValueBeforeStart(ctx context.Context, ds *models.DatasetEntity, window params.Interval, p params.Parameters) (models.SeriesValue, error)
	ClosestValueAfterEnd(ctx context.Context, ds *models.DatasetEntity, window params.Interval, p params.Parameters) (models.SeriesValue, error)
	AssembleReferenceSeries(ctx context.Context, ds *models.DatasetEntity, p params.Parameters) (map[string][]models.SeriesValue, error)
}

// DatasetRepository renders datasets and their data windows.
type DatasetRepository struct {
	store    DatasetStore
	resolver EntityResolver
	values   ValueAssembler
	workers  int
}

// NewDatasetRepository builds a dataset repository.
func NewDatasetRepository(store DatasetStore, resolver EntityResolver, values ValueAssembler, workers int) *DatasetRepository {
	return &DatasetRepository{store: store, resolver: resolver, values: values, workers: workers}
}

// GetAll returns the visible datasets as outputs, condensed or expanded per
// the request. Conversion fans out over the worker pool; a dataset that
// fails to convert is logged and skipped.
func (r *DatasetRepository) GetAll(ctx context.Context, p params.Parameters) ([]*models.DatasetOutput, error) {
	datasets, err := r.store.GetAllInstances(ctx, p)
	if err != nil {
		return nil, err
	}

	return convertAll(ctx, r.workers, datasets,
		func(ctx context.Context, ds *models.DatasetEntity) (*models.DatasetOutput, error) {
			return r.toOutput(ctx, ds, p)
		},
		func(ds *models.DatasetEntity, err error) {
			logging.Warn().Err(err).Int64("dataset", ds.ID).
				Msg("Skipping dataset that failed to convert")
		}), nil
}

// GetOne returns one dataset output.
func (r *DatasetRepository) GetOne(ctx context.Context, rawID string, p params.Parameters) (*models.DatasetOutput, error) {
	ds, err := r.store.GetInstance(ctx, rawID, p)
	if err != nil {
		return nil, err
	}
	return r.toOutput(ctx, ds, p)
}

// GetCount counts the visible datasets.
func (r *DatasetRepository) GetCount(ctx context.Context, p params.Parameters) (int64, error) {
	return r.store.GetCount(ctx, p)
}

// GetData returns the assembled data window of one dataset. Expanded
// requests add the out-of-window metadata: closest values around the window
// and the reference series. Plain-date window boundaries are anchored in the
// dataset's origin timezone.
func (r *DatasetRepository) GetData(ctx context.Context, rawID string, p params.Parameters) (*models.DataCollection, error) {
	ds, err := r.store.GetInstance(ctx, rawID, p)
	if err != nil {
		return nil, err
	}

	loc := assembler.LocationFor(ds.OriginTimezone)
	window, hasWindow := p.TimespanIn(loc)
	if hasWindow {
		p = p.ReplaceWith(params.KeyTimespan,
			window.Start.Format("2006-01-02T15:04:05.000Z07:00")+"/"+
				window.End.Format("2006-01-02T15:04:05.000Z07:00"))
	}

	values, err := r.values.AssembleDataValues(ctx, ds, p)
	if err != nil {
		return nil, err
	}
	collection := &models.DataCollection{Values: values}

	if !p.Expanded() {
		return collection, nil
	}

	meta := &models.DatasetMetadata{}
	if hasWindow {
		if meta.ValueBeforeTimespan, err = r.values.ClosestValueBeforeStart(ctx, ds, window, p); err != nil {
			return nil, err
		}
		if meta.ValueAfterTimespan, err = r.values.ClosestValueAfterEnd(ctx, ds, window, p); err != nil {
			return nil, err
		}
	}
	if meta.ReferenceValues, err = r.values.AssembleReferenceSeries(ctx, ds, p); err != nil {
		return nil, err
	}
	collection.Metadata = meta
	return collection, nil
}

// GetStations renders the platform-centric view: one station per platform
// referenced by a visible dataset, carrying the platform geometry and the
// dataset id -> label map of its series. A platform that fails to resolve is
// logged and skipped.
func (r *DatasetRepository) GetStations(ctx context.Context, p params.Parameters) ([]*models.StationOutput, error) {
	datasets, err := r.store.GetAllInstances(ctx, p)
	if err != nil {
		return nil, err
	}

	stations := make(map[int64]*models.StationOutput)
	var order []int64
	for _, ds := range datasets {
		if ds.PlatformID == 0 {
			continue
		}
		station, ok := stations[ds.PlatformID]
		if !ok {
			platform, err := r.resolver.ResolveEntity(ctx, dao.Platforms, ds.PlatformID)
			if err != nil {
				logging.Warn().Err(err).Int64("platform", ds.PlatformID).
					Msg("Skipping station whose platform failed to resolve")
				continue
			}
			station = &models.StationOutput{
				ID:         strconv.FormatInt(platform.ID, 10),
				Label:      platform.Label,
				Timeseries: make(map[string]string),
			}
			if platform.Geometry != nil {
				station.Geometry = geojson.NewGeometry(platform.Geometry)
			}
			stations[ds.PlatformID] = station
			order = append(order, ds.PlatformID)
		}
		station.Timeseries[strconv.FormatInt(ds.ID, 10)] = ds.Label
	}

	out := make([]*models.StationOutput, 0, len(order))
	for _, id := range order {
		out = append(out, stations[id])
	}
	return out, nil
}

// toOutput renders one dataset. The condensed form carries identity and type
// tags; the expanded form adds the related entities and first/last values.
func (r *DatasetRepository) toOutput(ctx context.Context, ds *models.DatasetEntity, p params.Parameters) (*models.DatasetOutput, error) {
	out := &models.DatasetOutput{
		ID:          strconv.FormatInt(ds.ID, 10),
		Label:       ds.Label,
		ValueType:   ds.ValueType,
		DatasetType: ds.DatasetType,
		Mobile:      ds.Mobile,
		Insitu:      ds.Insitu,
	}
	if !p.Expanded() {
		return out, nil
	}

	out.DomainID = ds.DomainID
	out.UOM = ds.Unit

	related := []struct {
		desc   dao.EntityDescriptor
		id     int64
		target **models.ParameterOutput
	}{
		{dao.Procedures, ds.ProcedureID, &out.Procedure},
		{dao.Phenomena, ds.PhenomenonID, &out.Phenomenon},
		{dao.Features, ds.FeatureID, &out.Feature},
		{dao.Offerings, ds.OfferingID, &out.Offering},
		{dao.Platforms, ds.PlatformID, &out.Platform},
		{dao.Categories, ds.CategoryID, &out.Category},
	}
	for _, rel := range related {
		if rel.id == 0 {
			continue
		}
		e, err := r.resolver.ResolveEntity(ctx, rel.desc, rel.id)
		if err != nil {
			return nil, err
		}
		*rel.target = toParameterOutput(e, true)
	}

	first, err := r.values.FirstValue(ctx, ds, p)
	if err != nil {
		return nil, err
	}
	if qv, ok := first.(models.QuantityValue); ok {
		out.FirstValue = &qv
	}
	last, err := r.values.LastValue(ctx, ds, p)
	if err != nil {
		return nil, err
	}
	if qv, ok := last.(models.QuantityValue); ok {
		out.LastValue = &qv
	}
	return out, nil
}
