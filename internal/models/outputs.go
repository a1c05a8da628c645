// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package models

import (
	"github.com/paulmach/orb/geojson"
)

// TimedValue carries the metadata shared by all typed output values.
// Timestamps are epoch milliseconds.
type TimedValue struct {
	// Timestamp is the sampling time end.
	Timestamp int64 `json:"timestamp"`

	// TimeStart is populated when interval display is requested and the
	// observation covers a sampling period.
	TimeStart *int64 `json:"timestart,omitempty"`

	ResultTime *int64 `json:"resultTime,omitempty"`
	ValidFrom  *int64 `json:"validFrom,omitempty"`
	ValidUntil *int64 `json:"validUntil,omitempty"`

	Geometry *geojson.Geometry `json:"geometry,omitempty"`

	Parameters map[string]interface{} `json:"parameters,omitempty"`

	DetectionLimit *DetectionLimitOutput `json:"detectionLimit,omitempty"`
}

// Time returns the sampling time end in epoch milliseconds.
func (t TimedValue) Time() int64 { return t.Timestamp }

// DetectionLimitOutput renders a detection limit on an output value.
type DetectionLimitOutput struct {
	Flag  string  `json:"flag"` // "<" or ">"
	Limit float64 `json:"limit"`
}

// SeriesValue is implemented by all typed output values. CopyWithTime
// supports boundary-value synthesis for sparse reference series: it clones
// the value onto a synthetic instant where sampling start equals sampling
// end.
type SeriesValue interface {
	Time() int64
	CopyWithTime(ts int64) SeriesValue
}

// QuantityValue is a numeric measurement, rounded to the dataset's scale.
// A nil Value means the raw value matched a no-data marker.
type QuantityValue struct {
	TimedValue
	Value *float64 `json:"value"`
}

// CopyWithTime implements SeriesValue.
func (v QuantityValue) CopyWithTime(ts int64) SeriesValue {
	return QuantityValue{TimedValue: syntheticInstant(ts, v.TimedValue), Value: v.Value}
}

// CountValue is an integer measurement.
type CountValue struct {
	TimedValue
	Value *int64 `json:"value"`
}

// CopyWithTime implements SeriesValue.
func (v CountValue) CopyWithTime(ts int64) SeriesValue {
	return CountValue{TimedValue: syntheticInstant(ts, v.TimedValue), Value: v.Value}
}

// CategoryValue is a categorical observation.
type CategoryValue struct {
	TimedValue
	Value *string `json:"value"`
}

// CopyWithTime implements SeriesValue.
func (v CategoryValue) CopyWithTime(ts int64) SeriesValue {
	return CategoryValue{TimedValue: syntheticInstant(ts, v.TimedValue), Value: v.Value}
}

// BooleanValue is a truth-valued observation.
type BooleanValue struct {
	TimedValue
	Value *bool `json:"value"`
}

// CopyWithTime implements SeriesValue.
func (v BooleanValue) CopyWithTime(ts int64) SeriesValue {
	return BooleanValue{TimedValue: syntheticInstant(ts, v.TimedValue), Value: v.Value}
}

// TextValue is a free-text observation.
type TextValue struct {
	TimedValue
	Value *string `json:"value"`
}

// CopyWithTime implements SeriesValue.
func (v TextValue) CopyWithTime(ts int64) SeriesValue {
	return TextValue{TimedValue: syntheticInstant(ts, v.TimedValue), Value: v.Value}
}

// RecordValue is a structured (name/value) observation.
type RecordValue struct {
	TimedValue
	Value map[string]interface{} `json:"value"`
}

// CopyWithTime implements SeriesValue.
func (v RecordValue) CopyWithTime(ts int64) SeriesValue {
	return RecordValue{TimedValue: syntheticInstant(ts, v.TimedValue), Value: v.Value}
}

// ProfileValue is a composite observation distributed over a vertical axis.
type ProfileValue struct {
	TimedValue
	VerticalUnit string            `json:"verticalUnit,omitempty"`
	Value        []ProfileDataItem `json:"value"`
}

// CopyWithTime implements SeriesValue.
func (v ProfileValue) CopyWithTime(ts int64) SeriesValue {
	return ProfileValue{TimedValue: syntheticInstant(ts, v.TimedValue), VerticalUnit: v.VerticalUnit, Value: v.Value}
}

// ProfileDataItem is one vertical slice of a profile observation.
type ProfileDataItem struct {
	Vertical       *float64              `json:"vertical,omitempty"`
	VerticalFrom   *float64              `json:"verticalFrom,omitempty"`
	VerticalTo     *float64              `json:"verticalTo,omitempty"`
	Value          interface{}           `json:"value"`
	DetectionLimit *DetectionLimitOutput `json:"detectionLimit,omitempty"`
}

// syntheticInstant collapses a value's time metadata onto one instant where
// sampling start equals sampling end. Enrichment metadata is dropped: a
// synthesized boundary point never carries geometry or parameters.
func syntheticInstant(ts int64, src TimedValue) TimedValue {
	meta := TimedValue{Timestamp: ts}
	if src.TimeStart != nil {
		start := ts
		meta.TimeStart = &start
	}
	return meta
}

// DatasetMetadata accompanies a data window with out-of-window context.
type DatasetMetadata struct {
	ValueBeforeTimespan SeriesValue `json:"valueBeforeTimespan,omitempty"`
	ValueAfterTimespan  SeriesValue `json:"valueAfterTimespan,omitempty"`

	// ReferenceValues maps reference-dataset domain IDs to their series
	// over the requested window.
	ReferenceValues map[string][]SeriesValue `json:"referenceValues,omitempty"`
}

// DataCollection is the assembled data window for one dataset.
type DataCollection struct {
	Values   []SeriesValue    `json:"values"`
	Metadata *DatasetMetadata `json:"extra,omitempty"`
}

// ParameterOutput is the condensed (id + label) rendering of a describable
// entity; the expanded form adds the domain ID, description and, where
// present, hierarchy children.
type ParameterOutput struct {
	ID       string            `json:"id"`
	Label    string            `json:"label"`
	DomainID string            `json:"domainId,omitempty"`
	Extras   map[string]string `json:"extras,omitempty"`

	Children []*ParameterOutput `json:"children,omitempty"`
}

// DatasetOutput is the dataset rendering; condensed form carries id, label
// and value type, expanded form the full parameter set and first/last values.
type DatasetOutput struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	DomainID    string      `json:"domainId,omitempty"`
	UOM         string      `json:"uom,omitempty"`
	ValueType   ValueType   `json:"valueType"`
	DatasetType DatasetType `json:"datasetType"`
	Mobile      bool        `json:"mobile"`
	Insitu      bool        `json:"insitu"`

	Procedure  *ParameterOutput `json:"procedure,omitempty"`
	Phenomenon *ParameterOutput `json:"phenomenon,omitempty"`
	Feature    *ParameterOutput `json:"feature,omitempty"`
	Offering   *ParameterOutput `json:"offering,omitempty"`
	Platform   *ParameterOutput `json:"platform,omitempty"`
	Category   *ParameterOutput `json:"category,omitempty"`

	FirstValue *QuantityValue `json:"firstValue,omitempty"`
	LastValue  *QuantityValue `json:"lastValue,omitempty"`

	ReferenceValues []*DatasetOutput `json:"referenceValues,omitempty"`
}

// StationOutput is the platform-centric rendering used by station queries.
type StationOutput struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Geometry   *geojson.Geometry `json:"geometry,omitempty"`
	Timeseries map[string]string `json:"timeseries,omitempty"` // dataset id -> label
}
