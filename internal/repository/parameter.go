// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package repository

import (
	"context"
	"strconv"

	"github.com/observatus/observatus/internal/dao"
	"github.com/observatus/observatus/internal/logging"
	"github.com/observatus/observatus/internal/models"
	"github.com/observatus/observatus/internal/params"
)

// EntityStore is the family access a parameter repository needs.
// *dao.EntityDAO implements it.
type EntityStore interface {
	Descriptor() dao.EntityDescriptor
	GetAllInstances(ctx context.Context, p params.Parameters) ([]*models.DescribableEntity, error)
	GetInstance(ctx context.Context, rawID string, p params.Parameters) (*models.DescribableEntity, error)
	GetCount(ctx context.Context, p params.Parameters) (int64, error)
}

// ParameterRepository renders one describable family as output documents.
type ParameterRepository struct {
	store   EntityStore
	workers int
}

// NewParameterRepository builds a repository over one family store.
func NewParameterRepository(store EntityStore, workers int) *ParameterRepository {
	return &ParameterRepository{store: store, workers: workers}
}

// GetAll returns the family members as outputs. Condensed outputs carry id
// and label; expanded outputs add domain id and description, and for
// hierarchical families the parent/child tree is reconstructed from the
// fetched set with roots at the top level.
func (r *ParameterRepository) GetAll(ctx context.Context, p params.Parameters) ([]*models.ParameterOutput, error) {
	entities, err := r.store.GetAllInstances(ctx, p)
	if err != nil {
		return nil, err
	}

	expanded := p.Expanded()
	outputs := convertAll(ctx, r.workers, entities,
		func(_ context.Context, e *models.DescribableEntity) (*models.ParameterOutput, error) {
			return toParameterOutput(e, expanded), nil
		},
		r.logSkip)

	if expanded && r.store.Descriptor().Hierarchical {
		return buildTree(entities, outputs), nil
	}
	return outputs, nil
}

// GetOne returns one family member.
func (r *ParameterRepository) GetOne(ctx context.Context, rawID string, p params.Parameters) (*models.ParameterOutput, error) {
	e, err := r.store.GetInstance(ctx, rawID, p)
	if err != nil {
		return nil, err
	}
	return toParameterOutput(e, p.Expanded()), nil
}

// GetCount counts the visible family members.
func (r *ParameterRepository) GetCount(ctx context.Context, p params.Parameters) (int64, error) {
	return r.store.GetCount(ctx, p)
}

func (r *ParameterRepository) logSkip(e *models.DescribableEntity, err error) {
	logging.Warn().
		Err(err).
		Str("family", r.store.Descriptor().Name).
		Int64("id", e.ID).
		Msg("Skipping entity that failed to convert")
}

func toParameterOutput(e *models.DescribableEntity, expanded bool) *models.ParameterOutput {
	out := &models.ParameterOutput{
		ID:    strconv.FormatInt(e.ID, 10),
		Label: e.Label,
	}
	if expanded {
		out.DomainID = e.DomainID
		if e.Description != "" {
			out.Extras = map[string]string{"description": e.Description}
		}
	}
	return out
}

// buildTree reconstructs the parent/child hierarchy from a flat result set.
// Members whose parent is outside the set surface as roots. Output order is
// unspecified, matching the pooled conversion.
func buildTree(entities []*models.DescribableEntity, outputs []*models.ParameterOutput) []*models.ParameterOutput {
	byID := make(map[string]*models.ParameterOutput, len(outputs))
	for _, out := range outputs {
		byID[out.ID] = out
	}
	parentOf := make(map[string]string, len(entities))
	for _, e := range entities {
		if e.ParentID != nil {
			parentOf[strconv.FormatInt(e.ID, 10)] = strconv.FormatInt(*e.ParentID, 10)
		}
	}

	var roots []*models.ParameterOutput
	for _, out := range outputs {
		parent, hasParent := parentOf[out.ID]
		if hasParent {
			if parentOut, inSet := byID[parent]; inSet {
				parentOut.Children = append(parentOut.Children, out)
				continue
			}
		}
		roots = append(roots, out)
	}
	return roots
}
