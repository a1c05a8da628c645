// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package assembler

import (
	"context"
	"time"

	"github.com/observatus/observatus/internal/models"
	"github.com/observatus/observatus/internal/params"
)

// FirstValue resolves the first value of a dataset. Quantity datasets with a
// populated first-value cache answer from the denormalized columns; anything
// else falls back to the oldest live observation. Empty series yield nil.
func (a *Assembler) FirstValue(ctx context.Context, ds *models.DatasetEntity, p params.Parameters) (models.SeriesValue, error) {
	if ds.ValueType == models.ValueTypeQuantity && ds.HasCachedFirstValue() {
		return a.cachedQuantity(ds, *ds.FirstValueAt, *ds.FirstQuantityValue), nil
	}
	obs, err := a.data.GetFirstObservation(ctx, ds)
	if err != nil {
		return nil, err
	}
	return a.AssembleDataValue(ctx, ds, obs, p)
}

// LastValue resolves the last value of a dataset, cache-first like
// FirstValue.
func (a *Assembler) LastValue(ctx context.Context, ds *models.DatasetEntity, p params.Parameters) (models.SeriesValue, error) {
	if ds.ValueType == models.ValueTypeQuantity && ds.HasCachedLastValue() {
		return a.cachedQuantity(ds, *ds.LastValueAt, *ds.LastQuantityValue), nil
	}
	obs, err := a.data.GetLastObservation(ctx, ds)
	if err != nil {
		return nil, err
	}
	return a.AssembleDataValue(ctx, ds, obs, p)
}

// cachedQuantity renders a denormalized first/last value. The cached raw
// value passes through the same no-data and rounding rules as live rows.
func (a *Assembler) cachedQuantity(ds *models.DatasetEntity, at time.Time, raw float64) models.SeriesValue {
	meta := models.TimedValue{Timestamp: epochMillis(at)}
	noData := newNoDataMatcher(a.serviceNoData, ds.NoDataValues)
	return QuantityFrom(meta, &raw, ds.NumberOfDecimals, noData)
}

// ClosestValueBeforeStart assembles the newest value before the window
// start, nil when the series has none.
func (a *Assembler) ClosestValueBeforeStart(ctx context.Context, ds *models.DatasetEntity, window params.Interval, p params.Parameters) (models.SeriesValue, error) {
	obs, err := a.data.GetClosestValueBefore(ctx, ds, window.Start)
	if err != nil {
		return nil, err
	}
	return a.AssembleDataValue(ctx, ds, obs, p)
}

// ClosestValueAfterEnd assembles the oldest value after the window end, nil
// when the series has none.
func (a *Assembler) ClosestValueAfterEnd(ctx context.Context, ds *models.DatasetEntity, window params.Interval, p params.Parameters) (models.SeriesValue, error) {
	obs, err := a.data.GetClosestValueAfter(ctx, ds, window.End)
	if err != nil {
		return nil, err
	}
	return a.AssembleDataValue(ctx, ds, obs, p)
}
