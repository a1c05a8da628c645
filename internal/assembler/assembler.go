// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package assembler

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"github.com/paulmach/orb/geojson"

	"github.com/observatus/observatus/internal/metrics"
	"github.com/observatus/observatus/internal/models"
	"github.com/observatus/observatus/internal/params"
)

// DataStore is the observation access the assembler depends on. *dao.DataDAO
// implements it.
type DataStore interface {
	GetAllInstancesFor(ctx context.Context, ds *models.DatasetEntity, p params.Parameters) ([]*models.DataEntity, error)
	GetFirstObservation(ctx context.Context, ds *models.DatasetEntity) (*models.DataEntity, error)
	GetLastObservation(ctx context.Context, ds *models.DatasetEntity) (*models.DataEntity, error)
	GetClosestValueBefore(ctx context.Context, ds *models.DatasetEntity, t time.Time) (*models.DataEntity, error)
	GetClosestValueAfter(ctx context.Context, ds *models.DatasetEntity, t time.Time) (*models.DataEntity, error)
	GetChildren(ctx context.Context, parentID int64) ([]*models.DataEntity, error)
	GetVerticalMetadata(ctx context.Context, ds *models.DatasetEntity) (*models.VerticalMetadata, error)
}

// DatasetStore is the dataset access the assembler depends on.
// *dao.DatasetDAO implements it.
type DatasetStore interface {
	GetReferenceDatasets(ctx context.Context, ds *models.DatasetEntity) ([]*models.DatasetEntity, error)
}

// Assembler builds typed output values from observation rows.
type Assembler struct {
	data     DataStore
	datasets DatasetStore

	// serviceNoData are the service-wide no-data markers, merged with each
	// dataset's own list.
	serviceNoData []string
}

// New builds an assembler.
func New(data DataStore, datasets DatasetStore, serviceNoData []string) *Assembler {
	return &Assembler{data: data, datasets: datasets, serviceNoData: serviceNoData}
}

// AssembleDataValue turns one observation into its typed output value.
// A nil observation yields a nil value and no error.
func (a *Assembler) AssembleDataValue(ctx context.Context, ds *models.DatasetEntity, obs *models.DataEntity, p params.Parameters) (models.SeriesValue, error) {
	if obs == nil {
		return nil, nil
	}

	meta := a.enrich(ds, obs, p)
	noData := newNoDataMatcher(a.serviceNoData, ds.NoDataValues)

	switch ds.ValueType {
	case models.ValueTypeQuantity:
		return QuantityFrom(meta, obs.QuantityValue, ds.NumberOfDecimals, noData), nil
	case models.ValueTypeCount:
		return countFrom(meta, obs.CountValue, noData), nil
	case models.ValueTypeCategory:
		return categoryFrom(meta, obs.CategoryValue, noData), nil
	case models.ValueTypeBoolean:
		return booleanFrom(meta, obs.BooleanValue), nil
	case models.ValueTypeText:
		return textFrom(meta, obs.TextValue, noData), nil
	case models.ValueTypeRecord:
		return recordFrom(meta, obs.TextValue, noData), nil
	case models.ValueTypeProfile:
		return a.assembleProfile(ctx, ds, obs, meta, noData)
	default:
		// Unknown value types assemble like text so data is never silently
		// dropped.
		return textFrom(meta, obs.TextValue, noData), nil
	}
}

// AssembleDataValues assembles the observation window of one dataset in
// sampling order. Nil values from nil observations are filtered out.
func (a *Assembler) AssembleDataValues(ctx context.Context, ds *models.DatasetEntity, p params.Parameters) ([]models.SeriesValue, error) {
	observations, err := a.data.GetAllInstancesFor(ctx, ds, p)
	if err != nil {
		return nil, err
	}

	out := make([]models.SeriesValue, 0, len(observations))
	for _, obs := range observations {
		value, err := a.AssembleDataValue(ctx, ds, obs, p)
		if err != nil {
			return nil, err
		}
		if value != nil {
			out = append(out, value)
		}
	}
	metrics.ValuesAssembled.WithLabelValues(string(ds.ValueType)).Add(float64(len(out)))
	return out, nil
}

// enrich builds the shared time/geometry metadata of an output value.
func (a *Assembler) enrich(ds *models.DatasetEntity, obs *models.DataEntity, p params.Parameters) models.TimedValue {
	meta := models.TimedValue{Timestamp: epochMillis(obs.SamplingTimeEnd)}

	if p.ShowTimeIntervals() && !obs.SamplingTimeStart.Equal(obs.SamplingTimeEnd) {
		start := epochMillis(obs.SamplingTimeStart)
		meta.TimeStart = &start
	}
	// Result time and valid time are expanded-only output, like geometry on
	// stationary datasets.
	if p.Expanded() {
		if obs.ResultTime != nil && !obs.ResultTime.Equal(obs.SamplingTimeEnd) {
			rt := epochMillis(*obs.ResultTime)
			meta.ResultTime = &rt
		}
		if obs.ValidTimeStart != nil {
			from := epochMillis(*obs.ValidTimeStart)
			meta.ValidFrom = &from
		}
		if obs.ValidTimeEnd != nil {
			until := epochMillis(*obs.ValidTimeEnd)
			meta.ValidUntil = &until
		}
	}
	if obs.Geometry != nil && (ds.Mobile || p.Expanded()) {
		meta.Geometry = geojson.NewGeometry(obs.Geometry)
	}
	if len(obs.Parameters) > 0 {
		meta.Parameters = obs.Parameters
	}
	meta.DetectionLimit = detectionLimitOutput(obs.DetectionLimit)
	return meta
}

// QuantityFrom builds a quantity output value: no-data markers substitute a
// nil value, everything else is rounded half-up to the dataset scale.
func QuantityFrom(meta models.TimedValue, raw *float64, decimals *int, noData noDataMatcher) models.QuantityValue {
	out := models.QuantityValue{TimedValue: meta}
	if raw == nil || noData.matchesFloat(*raw) {
		return out
	}
	rounded := RoundHalfUp(*raw, decimals)
	out.Value = &rounded
	return out
}

func countFrom(meta models.TimedValue, raw *int64, noData noDataMatcher) models.CountValue {
	out := models.CountValue{TimedValue: meta}
	if raw == nil || noData.matchesInt(*raw) {
		return out
	}
	v := *raw
	out.Value = &v
	return out
}

func categoryFrom(meta models.TimedValue, raw *string, noData noDataMatcher) models.CategoryValue {
	out := models.CategoryValue{TimedValue: meta}
	if raw == nil || noData.matchesString(*raw) {
		return out
	}
	v := *raw
	out.Value = &v
	return out
}

func booleanFrom(meta models.TimedValue, raw *bool) models.BooleanValue {
	out := models.BooleanValue{TimedValue: meta}
	if raw == nil {
		return out
	}
	v := *raw
	out.Value = &v
	return out
}

func textFrom(meta models.TimedValue, raw *string, noData noDataMatcher) models.TextValue {
	out := models.TextValue{TimedValue: meta}
	if raw == nil || noData.matchesString(*raw) {
		return out
	}
	v := *raw
	out.Value = &v
	return out
}

// recordFrom decodes a structured observation stored as JSON text. A raw
// value that is a no-data marker or undecodable yields a nil map.
func recordFrom(meta models.TimedValue, raw *string, noData noDataMatcher) models.RecordValue {
	out := models.RecordValue{TimedValue: meta}
	if raw == nil || noData.matchesString(*raw) {
		return out
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(*raw), &decoded); err != nil {
		return out
	}
	out.Value = decoded
	return out
}

func detectionLimitOutput(dl *models.DetectionLimit) *models.DetectionLimitOutput {
	if dl == nil {
		return nil
	}
	flag := "<"
	if dl.Flag > 0 {
		flag = ">"
	}
	return &models.DetectionLimitOutput{Flag: flag, Limit: dl.Limit}
}

func epochMillis(t time.Time) int64 {
	return t.UnixMilli()
}
