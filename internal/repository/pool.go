// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package repository

import (
	"context"
	"sync"
)

// defaultWorkers bounds conversion fan-out when no pool size is configured.
const defaultWorkers = 4

// convertAll runs convert over all inputs on a fixed-size worker pool and
// collects the successes. Failures are reported through onError and skipped;
// output order is unspecified.
func convertAll[In any, Out any](ctx context.Context, workers int, inputs []In,
	convert func(context.Context, In) (Out, error), onError func(In, error)) []Out {

	if workers <= 0 {
		workers = defaultWorkers
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		out     = make([]Out, 0, len(inputs))
		jobs    = make(chan In)
		consume = func() {
			defer wg.Done()
			for in := range jobs {
				converted, err := convert(ctx, in)
				if err != nil {
					onError(in, err)
					continue
				}
				mu.Lock()
				out = append(out, converted)
				mu.Unlock()
			}
		}
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go consume()
	}
	for _, in := range inputs {
		jobs <- in
	}
	close(jobs)
	wg.Wait()
	return out
}
