// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/observatus/observatus/internal/database"
	"github.com/observatus/observatus/internal/models"
)

// Resolver looks up describable entities by primary key, bypassing request
// criteria. Output assembly uses it to render the related entities of a
// dataset that already passed the criteria itself.
type Resolver struct {
	db *database.DB
}

// NewResolver builds a resolver.
func NewResolver(db *database.DB) *Resolver {
	return &Resolver{db: db}
}

// ResolveEntity fetches one family member by primary key.
func (r *Resolver) ResolveEntity(ctx context.Context, desc EntityDescriptor, id int64) (*models.DescribableEntity, error) {
	cols := "id, domain_id, name, description, parent_id"
	if desc.HasGeometry {
		cols += ", geometry"
	}
	row := r.db.Conn().QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", cols, desc.Table), id)

	e, err := scanDescribable(desc, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %d", ErrNotFound, desc.Name, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s lookup: %v", ErrDataAccess, desc.Name, err)
	}
	return e, nil
}
