// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package dao

import (
	"context"
	"reflect"
	"testing"
)

// fakeChildren builds a ChildFetcher over an in-memory parent → children map.
func fakeChildren(tree map[int64][]int64) ChildFetcher {
	return func(_ context.Context, ids []int64) ([]int64, error) {
		var out []int64
		for _, id := range ids {
			out = append(out, tree[id]...)
		}
		return out, nil
	}
}

func TestExpandChildrenLevelZeroReturnsRoots(t *testing.T) {
	tree := map[int64][]int64{1: {2, 3}}
	got, err := ExpandChildren(context.Background(), []int64{1}, 0, fakeChildren(tree))
	if err != nil {
		t.Fatalf("ExpandChildren failed: %v", err)
	}
	if !reflect.DeepEqual(got, []int64{1}) {
		t.Errorf("level 0 should return roots only, got %v", got)
	}
}

func TestExpandChildrenBoundedLevel(t *testing.T) {
	tree := map[int64][]int64{1: {2}, 2: {3}, 3: {4}}
	got, err := ExpandChildren(context.Background(), []int64{1}, 2, fakeChildren(tree))
	if err != nil {
		t.Fatalf("ExpandChildren failed: %v", err)
	}
	if !reflect.DeepEqual(got, []int64{1, 2, 3}) {
		t.Errorf("level 2 should descend two generations, got %v", got)
	}
}

func TestExpandChildrenUnbounded(t *testing.T) {
	tree := map[int64][]int64{1: {2, 3}, 2: {4}, 3: {5}}
	got, err := ExpandChildren(context.Background(), []int64{1}, -1, fakeChildren(tree))
	if err != nil {
		t.Fatalf("ExpandChildren failed: %v", err)
	}
	if !reflect.DeepEqual(got, []int64{1, 2, 3, 4, 5}) {
		t.Errorf("unexpected closure %v", got)
	}
}

func TestExpandChildrenTerminatesOnCycle(t *testing.T) {
	tree := map[int64][]int64{1: {2}, 2: {3}, 3: {1}}
	got, err := ExpandChildren(context.Background(), []int64{1}, -1, fakeChildren(tree))
	if err != nil {
		t.Fatalf("ExpandChildren failed: %v", err)
	}
	if !reflect.DeepEqual(got, []int64{1, 2, 3}) {
		t.Errorf("cyclic tree should terminate with the closure, got %v", got)
	}
}

func TestExpandChildrenMultipleRoots(t *testing.T) {
	tree := map[int64][]int64{1: {3}, 2: {3}}
	got, err := ExpandChildren(context.Background(), []int64{1, 2}, -1, fakeChildren(tree))
	if err != nil {
		t.Fatalf("ExpandChildren failed: %v", err)
	}
	if !reflect.DeepEqual(got, []int64{1, 2, 3}) {
		t.Errorf("shared child should appear once, got %v", got)
	}
}

func TestParentChain(t *testing.T) {
	parents := map[int64]int64{3: 2, 2: 1}
	fetch := func(_ context.Context, id int64) (*int64, error) {
		if p, ok := parents[id]; ok {
			return &p, nil
		}
		return nil, nil
	}

	got, err := ParentChain(context.Background(), 3, fetch)
	if err != nil {
		t.Fatalf("ParentChain failed: %v", err)
	}
	if !reflect.DeepEqual(got, []int64{1, 2, 3}) {
		t.Errorf("chain should be root-first, got %v", got)
	}
}

func TestParentChainCycleSafe(t *testing.T) {
	parents := map[int64]int64{1: 2, 2: 1}
	fetch := func(_ context.Context, id int64) (*int64, error) {
		p := parents[id]
		return &p, nil
	}

	got, err := ParentChain(context.Background(), 1, fetch)
	if err != nil {
		t.Fatalf("ParentChain failed: %v", err)
	}
	if !reflect.DeepEqual(got, []int64{2, 1}) {
		t.Errorf("cyclic chain should stop at the first repeat, got %v", got)
	}
}
