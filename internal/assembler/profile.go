// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package assembler

import (
	"context"
	"fmt"

	"github.com/observatus/observatus/internal/models"
)

// assembleProfile composes a profile value from a parent observation and its
// child rows. Children arrive ordered by vertical extent; a child whose
// vertical-from equals vertical-to renders a single vertical coordinate.
func (a *Assembler) assembleProfile(ctx context.Context, ds *models.DatasetEntity, parent *models.DataEntity, meta models.TimedValue, noData noDataMatcher) (models.SeriesValue, error) {
	children, err := a.data.GetChildren(ctx, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("profile children of observation %d: %w", parent.ID, err)
	}

	out := models.ProfileValue{TimedValue: meta}

	vm, err := a.data.GetVerticalMetadata(ctx, ds)
	if err != nil {
		return nil, err
	}
	if vm != nil {
		out.VerticalUnit = vm.Unit
	}

	items := make([]models.ProfileDataItem, 0, len(children))
	for _, child := range children {
		items = append(items, profileItem(child, ds.NumberOfDecimals, noData))
	}
	out.Value = items
	return out, nil
}

func profileItem(child *models.DataEntity, decimals *int, noData noDataMatcher) models.ProfileDataItem {
	item := models.ProfileDataItem{
		Value:          profileItemValue(child, decimals, noData),
		DetectionLimit: detectionLimitOutput(child.DetectionLimit),
	}

	switch {
	case child.VerticalFrom != nil && child.VerticalTo != nil && *child.VerticalFrom == *child.VerticalTo:
		item.Vertical = child.VerticalFrom
	default:
		item.VerticalFrom = child.VerticalFrom
		item.VerticalTo = child.VerticalTo
	}
	return item
}

// profileItemValue extracts the child's typed value, applying the same
// no-data and rounding rules as scalar series.
func profileItemValue(child *models.DataEntity, decimals *int, noData noDataMatcher) interface{} {
	switch {
	case child.QuantityValue != nil:
		if noData.matchesFloat(*child.QuantityValue) {
			return nil
		}
		return RoundHalfUp(*child.QuantityValue, decimals)
	case child.CountValue != nil:
		if noData.matchesInt(*child.CountValue) {
			return nil
		}
		return *child.CountValue
	case child.CategoryValue != nil:
		if noData.matchesString(*child.CategoryValue) {
			return nil
		}
		return *child.CategoryValue
	case child.BooleanValue != nil:
		return *child.BooleanValue
	case child.TextValue != nil:
		if noData.matchesString(*child.TextValue) {
			return nil
		}
		return *child.TextValue
	}
	return nil
}
