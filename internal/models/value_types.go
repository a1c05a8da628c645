// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package models

import "strings"

// ValueType tags the kind of value a dataset's observations carry.
type ValueType string

// Supported value types.
const (
	ValueTypeQuantity ValueType = "quantity"
	ValueTypeCount    ValueType = "count"
	ValueTypeCategory ValueType = "category"
	ValueTypeBoolean  ValueType = "boolean"
	ValueTypeText     ValueType = "text"
	ValueTypeRecord   ValueType = "record"
	ValueTypeProfile  ValueType = "profile"
)

// DatasetType tags the structural shape of a dataset.
type DatasetType string

// Supported dataset types.
const (
	DatasetTypeTimeseries            DatasetType = "timeseries"
	DatasetTypeTrajectory            DatasetType = "trajectory"
	DatasetTypeProfile               DatasetType = "profile"
	DatasetTypeIndividualObservation DatasetType = "individual_observation"
)

// FilterAll is the wildcard accepted in type-filter parameters. A request
// carrying it places no type restriction on the query.
const FilterAll = "all"

// ParseValueType normalizes a value-type parameter. The second return is
// false for unknown tags.
func ParseValueType(s string) (ValueType, bool) {
	switch ValueType(strings.ToLower(strings.TrimSpace(s))) {
	case ValueTypeQuantity:
		return ValueTypeQuantity, true
	case ValueTypeCount:
		return ValueTypeCount, true
	case ValueTypeCategory:
		return ValueTypeCategory, true
	case ValueTypeBoolean:
		return ValueTypeBoolean, true
	case ValueTypeText:
		return ValueTypeText, true
	case ValueTypeRecord:
		return ValueTypeRecord, true
	case ValueTypeProfile:
		return ValueTypeProfile, true
	}
	return "", false
}

// ParseDatasetType normalizes a dataset-type parameter. The second return is
// false for unknown tags.
func ParseDatasetType(s string) (DatasetType, bool) {
	switch DatasetType(strings.ToLower(strings.TrimSpace(s))) {
	case DatasetTypeTimeseries:
		return DatasetTypeTimeseries, true
	case DatasetTypeTrajectory:
		return DatasetTypeTrajectory, true
	case DatasetTypeProfile:
		return DatasetTypeProfile, true
	case DatasetTypeIndividualObservation:
		return DatasetTypeIndividualObservation, true
	}
	return "", false
}
