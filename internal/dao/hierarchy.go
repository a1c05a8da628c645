// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package dao

import (
	"context"
	"fmt"
	"sort"

	"github.com/observatus/observatus/internal/database"
	"github.com/observatus/observatus/internal/database/query"
)

// ChildFetcher returns the direct children of a set of entity ids.
type ChildFetcher func(ctx context.Context, ids []int64) ([]int64, error)

// ParentFetcher returns the parent id of an entity, nil for roots.
type ParentFetcher func(ctx context.Context, id int64) (*int64, error)

// ExpandChildren computes the descendant closure of the root set by
// breadth-first traversal. level bounds the traversal depth: 0 returns the
// roots unchanged, n descends n generations, a negative level is unbounded.
// A visited set guarantees termination on cyclic parent links. The result
// is sorted and includes the roots.
func ExpandChildren(ctx context.Context, roots []int64, level int, fetch ChildFetcher) ([]int64, error) {
	visited := make(map[int64]struct{}, len(roots))
	for _, id := range roots {
		visited[id] = struct{}{}
	}

	frontier := append([]int64(nil), roots...)
	for depth := 0; len(frontier) > 0 && (level < 0 || depth < level); depth++ {
		children, err := fetch(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("failed to expand hierarchy: %w", err)
		}
		frontier = frontier[:0]
		for _, child := range children {
			if _, seen := visited[child]; seen {
				continue
			}
			visited[child] = struct{}{}
			frontier = append(frontier, child)
		}
	}

	out := make([]int64, 0, len(visited))
	for id := range visited {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ParentChain reconstructs the ancestry of an entity bottom-up: the result
// starts at the root and ends at the entity itself. Cyclic parent links
// terminate at the first repeated id.
func ParentChain(ctx context.Context, id int64, fetch ParentFetcher) ([]int64, error) {
	chain := []int64{id}
	seen := map[int64]struct{}{id: {}}

	current := id
	for {
		parent, err := fetch(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve parent of %d: %w", current, err)
		}
		if parent == nil {
			break
		}
		if _, cycle := seen[*parent]; cycle {
			break
		}
		seen[*parent] = struct{}{}
		chain = append(chain, *parent)
		current = *parent
	}

	// Reverse to root-first order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// TableChildFetcher builds a ChildFetcher reading parent links from a
// describable entity table.
func TableChildFetcher(db *database.DB, desc EntityDescriptor) ChildFetcher {
	return func(ctx context.Context, ids []int64) ([]int64, error) {
		if len(ids) == 0 {
			return nil, nil
		}
		where, args := query.CompileWhere(query.InInt64s("parent_id", ids))
		rows, err := db.Conn().QueryContext(ctx,
			fmt.Sprintf("SELECT id FROM %s %s", desc.Table, where), args...)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rows.Close() }()

		var out []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return nil, err
			}
			out = append(out, id)
		}
		return out, rows.Err()
	}
}

// TableParentFetcher builds a ParentFetcher reading the parent link from a
// describable entity table.
func TableParentFetcher(db *database.DB, desc EntityDescriptor) ParentFetcher {
	return func(ctx context.Context, id int64) (*int64, error) {
		var parent *int64
		err := db.Conn().QueryRowContext(ctx,
			fmt.Sprintf("SELECT parent_id FROM %s WHERE id = ?", desc.Table), id,
		).Scan(&parent)
		if err != nil {
			return nil, err
		}
		return parent, nil
	}
}
