// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

// Package params provides the request-scoped parameter bag that drives all
// data-access queries.
//
// A Parameters value is immutable: the structural transforms ReplaceWith,
// RemoveAllOf and ExtendWith return new instances, so a parent query can be
// narrowed for nested sub-queries (e.g. a reference-series lookup) without
// mutating the original.
package params

import (
	"net/url"
	"strconv"
	"strings"
)

// Recognized parameter keys.
const (
	KeyTimespan          = "timespan"
	KeyBBox              = "bbox"
	KeyNear              = "near"
	KeySRID              = "srid"
	KeyOffset            = "offset"
	KeyLimit             = "limit"
	KeyLocale            = "locale"
	KeyExpanded          = "expanded"
	KeyMatchDomainIDs    = "matchDomainIds"
	KeyShowTimeIntervals = "showTimeIntervals"
	KeyFormat            = "format"
	KeyLevel             = "level"
	KeyMobile            = "mobile"
	KeyInsitu            = "insitu"
	KeyODataFilter       = "odataFilter"
	KeyResultTimes       = "resultTimes"
	KeyLastValueMatches  = "lastValueMatches"

	KeyProcedures        = "procedures"
	KeyFeatures          = "features"
	KeyOfferings         = "offerings"
	KeyPhenomena         = "phenomena"
	KeyPlatforms         = "platforms"
	KeyCategories        = "categories"
	KeyDatasets          = "datasets"
	KeySamplings         = "samplings"
	KeyMeasuringPrograms = "measuringPrograms"

	KeyDatasetTypes     = "datasetTypes"
	KeyObservationTypes = "observationTypes"
	KeyValueTypes       = "valueTypes"
)

// Parameters wraps raw key/value filter parameters. Multi-valued parameters
// are stored comma-joined, matching their wire form.
type Parameters struct {
	values map[string]string
}

// New creates a Parameters instance from a plain map. The map is copied.
func New(values map[string]string) Parameters {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Parameters{values: copied}
}

// FromURLValues creates a Parameters instance from decoded URL query values.
// Repeated keys are comma-joined.
func FromURLValues(values url.Values) Parameters {
	m := make(map[string]string, len(values))
	for k, vs := range values {
		m[k] = strings.Join(vs, ",")
	}
	return Parameters{values: m}
}

// ReplaceWith returns a copy with key set to the given values, replacing any
// previous value. Applying the same replacement twice yields an equal bag.
func (p Parameters) ReplaceWith(key string, values ...string) Parameters {
	next := p.clone()
	next.values[key] = strings.Join(values, ",")
	return next
}

// RemoveAllOf returns a copy without the given key.
func (p Parameters) RemoveAllOf(key string) Parameters {
	next := p.clone()
	delete(next.values, key)
	return next
}

// ExtendWith returns a copy with the given values appended to the key's
// existing values.
func (p Parameters) ExtendWith(key string, values ...string) Parameters {
	existing := p.listOf(key)
	return p.ReplaceWith(key, append(existing, values...)...)
}

func (p Parameters) clone() Parameters {
	return New(p.values)
}

// Contains reports whether the key is present.
func (p Parameters) Contains(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Get returns the raw value for a key.
func (p Parameters) Get(key string) string {
	return p.values[key]
}

// Equal reports whether two bags carry the same observable filter state.
func (p Parameters) Equal(other Parameters) bool {
	if len(p.values) != len(other.values) {
		return false
	}
	for k, v := range p.values {
		if ov, ok := other.values[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func (p Parameters) listOf(key string) []string {
	raw, ok := p.values[key]
	if !ok || raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ListOf returns the comma-separated list behind an arbitrary key. Entity
// DAOs use this to read id filters through their family descriptor.
func (p Parameters) ListOf(key string) []string {
	return p.listOf(key)
}

func (p Parameters) boolOf(key string) bool {
	v, err := strconv.ParseBool(p.values[key])
	return err == nil && v
}

// Offset returns the pagination offset, 0 if absent or malformed.
func (p Parameters) Offset() int {
	n, err := strconv.Atoi(p.values[KeyOffset])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Limit returns the pagination limit and whether one was given.
func (p Parameters) Limit() (int, bool) {
	n, err := strconv.Atoi(p.values[KeyLimit])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Locale returns the requested locale tag, "" if absent. Label localization
// itself happens outside this layer; the tag is only carried through.
func (p Parameters) Locale() string {
	return p.values[KeyLocale]
}

// Expanded reports whether full metadata enrichment was requested.
func (p Parameters) Expanded() bool {
	return p.boolOf(KeyExpanded)
}

// MatchDomainIDs reports whether id filters match by case-insensitive domain
// identifier instead of numeric primary key.
func (p Parameters) MatchDomainIDs() bool {
	return p.boolOf(KeyMatchDomainIDs)
}

// ShowTimeIntervals reports whether output values carry sampling start times.
func (p Parameters) ShowTimeIntervals() bool {
	return p.boolOf(KeyShowTimeIntervals)
}

// Format returns the rendering hint, "" if absent. The format influences
// whether observation parameter sets are eagerly fetched.
func (p Parameters) Format() string {
	return p.values[KeyFormat]
}

// Level returns the hierarchy traversal depth. The second return is false
// when traversal is unbounded (parameter absent or malformed).
func (p Parameters) Level() (int, bool) {
	n, err := strconv.Atoi(p.values[KeyLevel])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Mobile returns the mobile flag and whether the caller restricted it.
func (p Parameters) Mobile() (bool, bool) {
	if !p.Contains(KeyMobile) {
		return false, false
	}
	return p.boolOf(KeyMobile), true
}

// Insitu returns the insitu flag and whether the caller restricted it.
func (p Parameters) Insitu() (bool, bool) {
	if !p.Contains(KeyInsitu) {
		return false, false
	}
	return p.boolOf(KeyInsitu), true
}

// ODataFilter returns the raw filter-expression string, "" if absent.
func (p Parameters) ODataFilter() string {
	return p.values[KeyODataFilter]
}

// Procedures returns the procedure id filter set.
func (p Parameters) Procedures() []string { return p.listOf(KeyProcedures) }

// Features returns the feature id filter set.
func (p Parameters) Features() []string { return p.listOf(KeyFeatures) }

// Offerings returns the offering id filter set.
func (p Parameters) Offerings() []string { return p.listOf(KeyOfferings) }

// Phenomena returns the phenomenon id filter set.
func (p Parameters) Phenomena() []string { return p.listOf(KeyPhenomena) }

// Platforms returns the platform id filter set.
func (p Parameters) Platforms() []string { return p.listOf(KeyPlatforms) }

// Categories returns the category id filter set.
func (p Parameters) Categories() []string { return p.listOf(KeyCategories) }

// Datasets returns the dataset id filter set.
func (p Parameters) Datasets() []string { return p.listOf(KeyDatasets) }

// Samplings returns the sampling id filter set.
func (p Parameters) Samplings() []string { return p.listOf(KeySamplings) }

// MeasuringPrograms returns the measuring-program id filter set.
func (p Parameters) MeasuringPrograms() []string { return p.listOf(KeyMeasuringPrograms) }

// DatasetTypes returns the dataset-type filter set.
func (p Parameters) DatasetTypes() []string { return p.listOf(KeyDatasetTypes) }

// ObservationTypes returns the observation-type filter set.
func (p Parameters) ObservationTypes() []string { return p.listOf(KeyObservationTypes) }

// ValueTypes returns the value-type filter set.
func (p Parameters) ValueTypes() []string { return p.listOf(KeyValueTypes) }

// AllTypesRequested reports whether the given type set names the "all"
// wildcard, which disables the corresponding type restriction.
func AllTypesRequested(types []string) bool {
	for _, t := range types {
		if strings.EqualFold(t, "all") {
			return true
		}
	}
	return false
}
