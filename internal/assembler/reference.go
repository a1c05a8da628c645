// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package assembler

import (
	"context"

	"github.com/observatus/observatus/internal/metrics"
	"github.com/observatus/observatus/internal/models"
	"github.com/observatus/observatus/internal/params"
)

// AssembleReferenceSeries assembles the reference series attached to a
// dataset over the requested window, keyed by reference-dataset domain id.
// Sparse series are expanded to the window boundaries so a flat threshold
// line spans the whole chart.
func (a *Assembler) AssembleReferenceSeries(ctx context.Context, ds *models.DatasetEntity, p params.Parameters) (map[string][]models.SeriesValue, error) {
	refs, err := a.datasets.GetReferenceDatasets(ctx, ds)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, nil
	}

	window, hasWindow := p.Timespan()
	out := make(map[string][]models.SeriesValue, len(refs))
	for _, ref := range refs {
		values, err := a.AssembleDataValues(ctx, ref, p)
		if err != nil {
			return nil, err
		}
		if hasWindow {
			values = expandToInterval(window, values, ref)
		}
		out[ref.DomainID] = values
	}
	return out, nil
}

// expandToInterval pads a sparse reference series to the window boundaries.
//
// Zero points: the series is flat over the window at the dataset's cached
// last value; without a cached value there is nothing to draw. One point:
// the single value spans the window, its own timestamp is discarded. Two or
// more points pass through unchanged.
func expandToInterval(window params.Interval, values []models.SeriesValue, ref *models.DatasetEntity) []models.SeriesValue {
	if len(values) >= 2 {
		return values
	}

	startMillis := epochMillis(window.Start)
	endMillis := epochMillis(window.End)

	if len(values) == 0 {
		if !ref.HasCachedLastValue() {
			return values
		}
		metrics.ReferenceExpansions.Inc()
		v := *ref.LastQuantityValue
		base := models.QuantityValue{
			TimedValue: models.TimedValue{Timestamp: startMillis},
			Value:      &v,
		}
		return []models.SeriesValue{base, base.CopyWithTime(endMillis)}
	}

	metrics.ReferenceExpansions.Inc()
	single := values[0]
	return []models.SeriesValue{
		single.CopyWithTime(startMillis),
		single.CopyWithTime(endMillis),
	}
}
