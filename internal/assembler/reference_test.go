// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package assembler

import (
	"context"
	"testing"
	"time"

	"github.com/observatus/observatus/internal/models"
	"github.com/observatus/observatus/internal/params"
)

func referenceDataset() *models.DatasetEntity {
	lastAt := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)
	return &models.DatasetEntity{
		ID:                2,
		DomainID:          "alert-level",
		ValueType:         models.ValueTypeQuantity,
		LastValueAt:       &lastAt,
		LastQuantityValue: float64Ptr(7.5),
	}
}

func testWindow() params.Interval {
	return params.Interval{
		Start: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestExpandEmptySeriesUsesLastKnownValue(t *testing.T) {
	window := testWindow()
	got := expandToInterval(window, nil, referenceDataset())

	if len(got) != 2 {
		t.Fatalf("expected 2 boundary points, got %d", len(got))
	}
	if got[0].Time() != window.Start.UnixMilli() || got[1].Time() != window.End.UnixMilli() {
		t.Errorf("boundary timestamps wrong: %d, %d", got[0].Time(), got[1].Time())
	}
	for _, v := range got {
		q := v.(models.QuantityValue)
		if q.Value == nil || *q.Value != 7.5 {
			t.Errorf("boundary point should carry the last known value, got %v", q.Value)
		}
	}
}

func TestExpandEmptySeriesWithoutCacheStaysEmpty(t *testing.T) {
	ref := referenceDataset()
	ref.LastQuantityValue = nil

	got := expandToInterval(testWindow(), nil, ref)
	if len(got) != 0 {
		t.Errorf("no last known value means nothing to draw, got %d points", len(got))
	}
}

func TestExpandSingletonDiscardsOwnTimestamp(t *testing.T) {
	window := testWindow()
	inWindow := models.QuantityValue{
		TimedValue: models.TimedValue{Timestamp: time.Date(2020, 1, 4, 0, 0, 0, 0, time.UTC).UnixMilli()},
		Value:      float64Ptr(3),
	}

	got := expandToInterval(window, []models.SeriesValue{inWindow}, referenceDataset())
	if len(got) != 2 {
		t.Fatalf("expected 2 boundary points, got %d", len(got))
	}
	if got[0].Time() != window.Start.UnixMilli() || got[1].Time() != window.End.UnixMilli() {
		t.Error("the singleton's own timestamp should be replaced by the boundaries")
	}
	for _, v := range got {
		if q := v.(models.QuantityValue); q.Value == nil || *q.Value != 3 {
			t.Errorf("boundary point should carry the singleton value, got %#v", q.Value)
		}
	}
}

func TestExpandLeavesDenseSeriesAlone(t *testing.T) {
	values := []models.SeriesValue{
		models.QuantityValue{TimedValue: models.TimedValue{Timestamp: 1}, Value: float64Ptr(1)},
		models.QuantityValue{TimedValue: models.TimedValue{Timestamp: 2}, Value: float64Ptr(2)},
	}
	got := expandToInterval(testWindow(), values, referenceDataset())
	if len(got) != 2 || got[0].Time() != 1 || got[1].Time() != 2 {
		t.Errorf("series with two or more points should pass through, got %#v", got)
	}
}

func TestAssembleReferenceSeriesKeysByDomainID(t *testing.T) {
	ref := referenceDataset()
	data := &fakeData{} // reference series has no rows in the window
	a := New(data, &fakeDatasets{refs: []*models.DatasetEntity{ref}}, nil)

	p := params.New(map[string]string{
		params.KeyTimespan: "2020-01-01T00:00:00Z/2020-01-10T00:00:00Z",
	})
	got, err := a.AssembleReferenceSeries(context.Background(), quantityDataset(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	series, ok := got["alert-level"]
	if !ok {
		t.Fatalf("series should be keyed by domain id, got %v", got)
	}
	if len(series) != 2 {
		t.Errorf("sparse reference series should expand to the window, got %d points", len(series))
	}
}
