// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package repository

import (
	"context"
	"sync"

	"github.com/observatus/observatus/internal/logging"
	"github.com/observatus/observatus/internal/params"
)

// CountSource counts one entity family under request criteria.
type CountSource interface {
	GetCount(ctx context.Context, p params.Parameters) (int64, error)
}

// CountRepository aggregates the per-family counts of the service. Families
// are counted concurrently; a family that fails to count is reported as -1
// and logged rather than failing the whole aggregate.
type CountRepository struct {
	sources map[string]CountSource
}

// NewCountRepository builds a count repository over named sources, e.g.
// "datasets", "procedures".
func NewCountRepository(sources map[string]CountSource) *CountRepository {
	return &CountRepository{sources: sources}
}

// GetCounts counts every family under the request criteria.
func (r *CountRepository) GetCounts(ctx context.Context, p params.Parameters) map[string]int64 {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out = make(map[string]int64, len(r.sources))
	)

	for name, source := range r.sources {
		wg.Add(1)
		go func(name string, source CountSource) {
			defer wg.Done()
			n, err := source.GetCount(ctx, p)
			if err != nil {
				logging.Warn().Err(err).Str("family", name).Msg("Count failed")
				n = -1
			}
			mu.Lock()
			out[name] = n
			mu.Unlock()
		}(name, source)
	}
	wg.Wait()
	return out
}
