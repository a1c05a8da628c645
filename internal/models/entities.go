// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

// Package models defines the entity structs materialized by the data-access
// layer and the typed output values assembled from them.
//
// Entities returned by the database layer are fully materialized plain
// structs; no lazy placeholders escape the repository boundary.
package models

import (
	"time"

	"github.com/paulmach/orb"
)

// DatasetEntity identifies one logical time series: the combination of a
// procedure, phenomenon, feature, offering, platform and category.
type DatasetEntity struct {
	ID       int64
	DomainID string
	Label    string

	ValueType       ValueType
	DatasetType     DatasetType
	ObservationType string

	Published bool
	Deleted   bool
	Mobile    bool
	Insitu    bool

	// Denormalized first/last observation cache. A published, non-deleted
	// dataset with data has non-nil FirstValueAt/LastValueAt.
	FirstValueAt       *time.Time
	LastValueAt        *time.Time
	FirstQuantityValue *float64
	LastQuantityValue  *float64

	// NumberOfDecimals is the rounding scale for quantity/count output.
	// Nil means values are passed through unrounded.
	NumberOfDecimals *int

	// OriginTimezone is the IANA timezone the series was recorded in.
	OriginTimezone string

	Unit string

	// NoDataValues are raw values treated as "no measurement" for this
	// dataset, in addition to the service-wide markers.
	NoDataValues []string

	ProcedureID  int64
	FeatureID    int64
	PhenomenonID int64
	OfferingID   int64
	PlatformID   int64
	CategoryID   int64

	// ReferenceDatasetIDs lists attached reference series (thresholds etc.).
	ReferenceDatasetIDs []int64

	// VerticalMetadataID links profile datasets to their vertical axis
	// description. Nil for non-profile datasets.
	VerticalMetadataID *int64
}

// HasCachedFirstValue reports whether the denormalized first-value cache is
// usable for this dataset.
func (d *DatasetEntity) HasCachedFirstValue() bool {
	return d.FirstValueAt != nil && d.FirstQuantityValue != nil
}

// HasCachedLastValue reports whether the denormalized last-value cache is
// usable for this dataset.
func (d *DatasetEntity) HasCachedLastValue() bool {
	return d.LastValueAt != nil && d.LastQuantityValue != nil
}

// DataEntity is one observation row belonging to exactly one dataset.
//
// Exactly one of the typed value fields is set, matching the owning
// dataset's value type. Profile observations are composite: a parent row
// owns child rows carrying vertical extents.
type DataEntity struct {
	ID        int64
	DatasetID int64

	SamplingTimeStart time.Time
	SamplingTimeEnd   time.Time
	ResultTime        *time.Time
	ValidTimeStart    *time.Time
	ValidTimeEnd      *time.Time

	Deleted  bool
	IsParent bool
	ParentID *int64

	QuantityValue *float64
	CountValue    *int64
	CategoryValue *string
	BooleanValue  *bool
	TextValue     *string

	Geometry orb.Geometry

	DetectionLimit *DetectionLimit

	// VerticalFrom/VerticalTo carry the vertical extent of profile child
	// observations. VerticalFrom equals VerticalTo for point measurements.
	VerticalFrom *float64
	VerticalTo   *float64

	// Parameters is the optional name/value parameter set attached to the
	// observation, populated only for expanded queries.
	Parameters map[string]interface{}
}

// DetectionLimit marks a value at or beyond the measurable range.
type DetectionLimit struct {
	// Flag is >0 for "above upper limit", <0 for "below lower limit".
	Flag  int
	Limit float64
}

// VerticalMetadata describes the vertical axis of a profile dataset.
type VerticalMetadata struct {
	ID         int64
	Unit       string
	OriginName string

	// OrientationUp is true when vertical values grow upwards (height)
	// and false when they grow downwards (depth).
	OrientationUp bool
}

// DescribableEntity is the shared identity of procedures, features,
// offerings, phenomena, platforms, categories, samplings and measuring
// programs: a primary key, a stable domain identifier and a label.
type DescribableEntity struct {
	ID          int64
	DomainID    string
	Label       string
	Description string

	// ParentID is set on rows participating in a parent/child hierarchy
	// (procedures, features, offerings). Nil for roots and flat entities.
	ParentID *int64

	// Geometry is set for features and platforms.
	Geometry orb.Geometry
}
