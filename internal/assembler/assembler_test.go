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

type fakeData struct {
	observations []*models.DataEntity
	first        *models.DataEntity
	last         *models.DataEntity
	before       *models.DataEntity
	after        *models.DataEntity
	children     map[int64][]*models.DataEntity
	vertical     *models.VerticalMetadata

	beforeArg time.Time
	afterArg  time.Time
}

func (f *fakeData) GetAllInstancesFor(_ context.Context, _ *models.DatasetEntity, _ params.Parameters) ([]*models.DataEntity, error) {
	return f.observations, nil
}

func (f *fakeData) GetFirstObservation(_ context.Context, _ *models.DatasetEntity) (*models.DataEntity, error) {
	return f.first, nil
}

func (f *fakeData) GetLastObservation(_ context.Context, _ *models.DatasetEntity) (*models.DataEntity, error) {
	return f.last, nil
}

func (f *fakeData) GetClosestValueBefore(_ context.Context, _ *models.DatasetEntity, t time.Time) (*models.DataEntity, error) {
	f.beforeArg = t
	return f.before, nil
}

func (f *fakeData) GetClosestValueAfter(_ context.Context, _ *models.DatasetEntity, t time.Time) (*models.DataEntity, error) {
	f.afterArg = t
	return f.after, nil
}

func (f *fakeData) GetChildren(_ context.Context, parentID int64) ([]*models.DataEntity, error) {
	return f.children[parentID], nil
}

func (f *fakeData) GetVerticalMetadata(_ context.Context, _ *models.DatasetEntity) (*models.VerticalMetadata, error) {
	return f.vertical, nil
}

type fakeDatasets struct {
	refs []*models.DatasetEntity
}

func (f *fakeDatasets) GetReferenceDatasets(_ context.Context, _ *models.DatasetEntity) ([]*models.DatasetEntity, error) {
	return f.refs, nil
}

func float64Ptr(v float64) *float64 { return &v }
func stringPtr(v string) *string    { return &v }

func quantityDataset() *models.DatasetEntity {
	return &models.DatasetEntity{
		ID:               1,
		DomainID:         "water-temp",
		ValueType:        models.ValueTypeQuantity,
		NumberOfDecimals: intPtr(2),
		NoDataValues:     []string{"-9999"},
	}
}

func obsAt(end time.Time, value float64) *models.DataEntity {
	return &models.DataEntity{
		ID:                1,
		DatasetID:         1,
		SamplingTimeStart: end,
		SamplingTimeEnd:   end,
		QuantityValue:     &value,
	}
}

func TestAssembleDataValueNilObservation(t *testing.T) {
	a := New(&fakeData{}, &fakeDatasets{}, nil)
	v, err := a.AssembleDataValue(context.Background(), quantityDataset(), nil, params.New(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != nil {
		t.Errorf("nil observation should assemble to nil, got %#v", v)
	}
}

func TestAssembleQuantityRoundsHalfUp(t *testing.T) {
	a := New(&fakeData{}, &fakeDatasets{}, nil)
	end := time.Date(2020, 1, 5, 12, 0, 0, 0, time.UTC)

	v, err := a.AssembleDataValue(context.Background(), quantityDataset(), obsAt(end, 1.005), params.New(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q, ok := v.(models.QuantityValue)
	if !ok {
		t.Fatalf("expected QuantityValue, got %T", v)
	}
	if q.Value == nil || *q.Value != 1.01 {
		t.Errorf("1.005 at scale 2 should round to 1.01, got %v", q.Value)
	}
	if q.Timestamp != end.UnixMilli() {
		t.Errorf("timestamp should be the sampling end, got %d", q.Timestamp)
	}
}

func TestAssembleQuantityNoData(t *testing.T) {
	a := New(&fakeData{}, &fakeDatasets{}, []string{"NA"})

	v, err := a.AssembleDataValue(context.Background(), quantityDataset(),
		obsAt(time.Unix(0, 0), -9999), params.New(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := v.(models.QuantityValue)
	if q.Value != nil {
		t.Errorf("no-data marker should yield a nil value, got %v", *q.Value)
	}
}

func TestAssembleTimeIntervals(t *testing.T) {
	a := New(&fakeData{}, &fakeDatasets{}, nil)
	start := time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	obs := &models.DataEntity{SamplingTimeStart: start, SamplingTimeEnd: end, QuantityValue: float64Ptr(4)}

	p := params.New(map[string]string{params.KeyShowTimeIntervals: "true"})
	v, err := a.AssembleDataValue(context.Background(), quantityDataset(), obs, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := v.(models.QuantityValue)
	if q.TimeStart == nil || *q.TimeStart != start.UnixMilli() {
		t.Errorf("interval display should carry the sampling start, got %v", q.TimeStart)
	}

	// Without the flag the start is omitted.
	v, _ = a.AssembleDataValue(context.Background(), quantityDataset(), obs, params.New(nil))
	if v.(models.QuantityValue).TimeStart != nil {
		t.Error("sampling start should be omitted by default")
	}
}

func TestAssembleResultAndValidTimesExpandedOnly(t *testing.T) {
	a := New(&fakeData{}, &fakeDatasets{}, nil)
	end := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	resultTime := end.Add(time.Hour)
	validFrom := end.Add(-2 * time.Hour)
	validUntil := end.Add(48 * time.Hour)
	obs := &models.DataEntity{
		SamplingTimeStart: end,
		SamplingTimeEnd:   end,
		ResultTime:        &resultTime,
		ValidTimeStart:    &validFrom,
		ValidTimeEnd:      &validUntil,
		QuantityValue:     float64Ptr(4),
	}

	v, err := a.AssembleDataValue(context.Background(), quantityDataset(), obs, params.New(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := v.(models.QuantityValue)
	if q.ResultTime != nil || q.ValidFrom != nil || q.ValidUntil != nil {
		t.Errorf("condensed output must not carry result/valid times, got %v %v %v",
			q.ResultTime, q.ValidFrom, q.ValidUntil)
	}

	p := params.New(map[string]string{params.KeyExpanded: "true"})
	v, err = a.AssembleDataValue(context.Background(), quantityDataset(), obs, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q = v.(models.QuantityValue)
	if q.ResultTime == nil || *q.ResultTime != resultTime.UnixMilli() {
		t.Errorf("expanded output should carry the result time, got %v", q.ResultTime)
	}
	if q.ValidFrom == nil || *q.ValidFrom != validFrom.UnixMilli() {
		t.Errorf("expanded output should carry the valid-from time, got %v", q.ValidFrom)
	}
	if q.ValidUntil == nil || *q.ValidUntil != validUntil.UnixMilli() {
		t.Errorf("expanded output should carry the valid-until time, got %v", q.ValidUntil)
	}
}

func TestAssembleDetectionLimit(t *testing.T) {
	a := New(&fakeData{}, &fakeDatasets{}, nil)
	obs := obsAt(time.Unix(10, 0), 0.01)
	obs.DetectionLimit = &models.DetectionLimit{Flag: -1, Limit: 0.05}

	v, _ := a.AssembleDataValue(context.Background(), quantityDataset(), obs, params.New(nil))
	dl := v.(models.QuantityValue).DetectionLimit
	if dl == nil || dl.Flag != "<" || dl.Limit != 0.05 {
		t.Errorf("unexpected detection limit %#v", dl)
	}
}

func TestAssembleRecordDecodesJSON(t *testing.T) {
	a := New(&fakeData{}, &fakeDatasets{}, nil)
	ds := &models.DatasetEntity{ID: 2, ValueType: models.ValueTypeRecord}
	obs := &models.DataEntity{
		SamplingTimeEnd: time.Unix(10, 0),
		TextValue:       stringPtr(`{"ph":7.4,"flag":"ok"}`),
	}

	v, err := a.AssembleDataValue(context.Background(), ds, obs, params.New(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := v.(models.RecordValue)
	if r.Value["ph"] != 7.4 || r.Value["flag"] != "ok" {
		t.Errorf("unexpected record %#v", r.Value)
	}
}

func TestAssembleProfile(t *testing.T) {
	children := []*models.DataEntity{
		{QuantityValue: float64Ptr(4.123), VerticalFrom: float64Ptr(2), VerticalTo: float64Ptr(2)},
		{QuantityValue: float64Ptr(3.997), VerticalFrom: float64Ptr(2), VerticalTo: float64Ptr(5)},
	}
	data := &fakeData{
		children: map[int64][]*models.DataEntity{42: children},
		vertical: &models.VerticalMetadata{Unit: "m", OrientationUp: false},
	}
	a := New(data, &fakeDatasets{}, nil)

	ds := &models.DatasetEntity{ID: 3, ValueType: models.ValueTypeProfile, NumberOfDecimals: intPtr(2)}
	parent := &models.DataEntity{ID: 42, IsParent: true, SamplingTimeEnd: time.Unix(100, 0)}

	v, err := a.AssembleDataValue(context.Background(), ds, parent, params.New(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	profile := v.(models.ProfileValue)
	if profile.VerticalUnit != "m" {
		t.Errorf("unexpected vertical unit %q", profile.VerticalUnit)
	}
	if len(profile.Value) != 2 {
		t.Fatalf("expected 2 items, got %d", len(profile.Value))
	}
	if profile.Value[0].Vertical == nil || *profile.Value[0].Vertical != 2 {
		t.Errorf("point extent should collapse to a single vertical, got %#v", profile.Value[0])
	}
	if profile.Value[1].VerticalFrom == nil || profile.Value[1].VerticalTo == nil {
		t.Errorf("range extent should keep from/to, got %#v", profile.Value[1])
	}
	if profile.Value[0].Value != 4.12 {
		t.Errorf("profile values should round like scalars, got %v", profile.Value[0].Value)
	}
}

func TestFirstValueCacheFirst(t *testing.T) {
	data := &fakeData{first: obsAt(time.Unix(999, 0), 123)}
	a := New(data, &fakeDatasets{}, nil)

	at := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	ds := quantityDataset()
	ds.FirstValueAt = &at
	ds.FirstQuantityValue = float64Ptr(3.456)

	v, err := a.FirstValue(context.Background(), ds, params.New(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := v.(models.QuantityValue)
	if q.Timestamp != at.UnixMilli() {
		t.Error("cached first value should not hit the live store")
	}
	if q.Value == nil || *q.Value != 3.46 {
		t.Errorf("cached value should round to the dataset scale, got %v", q.Value)
	}
}

func TestFirstValueLiveFallback(t *testing.T) {
	end := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	data := &fakeData{first: obsAt(end, 5)}
	a := New(data, &fakeDatasets{}, nil)

	v, err := a.FirstValue(context.Background(), quantityDataset(), params.New(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(models.QuantityValue).Timestamp != end.UnixMilli() {
		t.Error("uncached dataset should fall back to the live first observation")
	}
}

func TestFirstValueEmptySeries(t *testing.T) {
	a := New(&fakeData{}, &fakeDatasets{}, nil)
	v, err := a.FirstValue(context.Background(), quantityDataset(), params.New(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != nil {
		t.Errorf("empty series should yield nil, got %#v", v)
	}
}

func TestClosestValuesUseWindowBoundaries(t *testing.T) {
	data := &fakeData{}
	a := New(data, &fakeDatasets{}, nil)
	window := params.Interval{
		Start: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC),
	}

	if _, err := a.ClosestValueBeforeStart(context.Background(), quantityDataset(), window, params.New(nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !data.beforeArg.Equal(window.Start) {
		t.Errorf("before-window lookup should use the window start, got %v", data.beforeArg)
	}

	if _, err := a.ClosestValueAfterEnd(context.Background(), quantityDataset(), window, params.New(nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !data.afterArg.Equal(window.End) {
		t.Errorf("after-window lookup should use the window end, got %v", data.afterArg)
	}
}
