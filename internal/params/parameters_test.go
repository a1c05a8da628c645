// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package params

import (
	"net/url"
	"testing"
	"time"
)

func TestReplaceWithIsIdempotent(t *testing.T) {
	p := New(map[string]string{KeyDatasets: "1,2,3", KeyLimit: "10"})

	once := p.ReplaceWith(KeyDatasets, "42")
	twice := once.ReplaceWith(KeyDatasets, "42")

	if !once.Equal(twice) {
		t.Errorf("repeated ReplaceWith changed observable state: %v vs %v", once, twice)
	}
	if got := once.Datasets(); len(got) != 1 || got[0] != "42" {
		t.Errorf("expected dataset filter [42], got %v", got)
	}
}

func TestTransformsDoNotMutateOriginal(t *testing.T) {
	p := New(map[string]string{KeyDatasets: "1,2"})

	_ = p.ReplaceWith(KeyDatasets, "9")
	_ = p.RemoveAllOf(KeyDatasets)
	_ = p.ExtendWith(KeyDatasets, "3")

	if got := p.Datasets(); len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Errorf("original parameters mutated: %v", got)
	}
}

func TestExtendWith(t *testing.T) {
	p := New(map[string]string{KeyProcedures: "a"})
	extended := p.ExtendWith(KeyProcedures, "b", "c")

	got := extended.Procedures()
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("expected [a b c], got %v", got)
	}
}

func TestRemoveAllOf(t *testing.T) {
	p := New(map[string]string{KeyFeatures: "f1", KeyLimit: "5"})
	removed := p.RemoveAllOf(KeyFeatures)

	if removed.Contains(KeyFeatures) {
		t.Error("feature filter should be gone")
	}
	if _, ok := removed.Limit(); !ok {
		t.Error("unrelated parameter removed")
	}
}

func TestFromURLValuesJoinsRepeatedKeys(t *testing.T) {
	p := FromURLValues(url.Values{"phenomena": []string{"1", "2"}})
	got := p.Phenomena()
	if len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Errorf("expected [1 2], got %v", got)
	}
}

func TestTimespanParsing(t *testing.T) {
	p := New(map[string]string{KeyTimespan: "2021-01-01T00:00:00Z/2021-01-03T00:00:00Z"})

	iv, ok := p.Timespan()
	if !ok {
		t.Fatal("expected timespan to parse")
	}
	wantStart := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC)
	if !iv.Start.Equal(wantStart) || !iv.End.Equal(wantEnd) {
		t.Errorf("got [%v, %v], want [%v, %v]", iv.Start, iv.End, wantStart, wantEnd)
	}
}

func TestTimespanPlainDates(t *testing.T) {
	p := New(map[string]string{KeyTimespan: "2021-01-01/2021-01-02"})

	iv, ok := p.Timespan()
	if !ok {
		t.Fatal("expected timespan to parse")
	}
	if !iv.Start.Equal(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", iv.Start)
	}
	// A plain end date covers the whole day.
	if !iv.Contains(time.Date(2021, 1, 2, 23, 59, 0, 0, time.UTC)) {
		t.Errorf("end-of-day instant not contained, end=%v", iv.End)
	}
}

func TestTimespanCheckedErrors(t *testing.T) {
	tests := []string{
		"not-a-timespan",
		"2021-01-01",                       // missing end
		"2021-01-05/2021-01-01",            // end before start
		"2021-13-01/2021-14-01",            // bogus dates
		"2021-01-01T00:00:00Z/not-a-value", // bad end
	}
	for _, raw := range tests {
		p := New(map[string]string{KeyTimespan: raw})
		if _, err := p.TimespanChecked(); err == nil {
			t.Errorf("expected error for timespan %q", raw)
		}
	}
}

func TestSpatialFilterBBox(t *testing.T) {
	p := New(map[string]string{KeyBBox: "5.0,50.0,10.0,55.0"})

	bound, err := p.SpatialFilter(4326)
	if err != nil {
		t.Fatalf("SpatialFilter failed: %v", err)
	}
	if bound == nil {
		t.Fatal("expected an envelope")
	}
	if bound.Min[0] != 5.0 || bound.Min[1] != 50.0 || bound.Max[0] != 10.0 || bound.Max[1] != 55.0 {
		t.Errorf("unexpected envelope %v", bound)
	}
}

func TestSpatialFilterNear(t *testing.T) {
	p := New(map[string]string{KeyNear: "8.0,52.0,1000"})

	bound, err := p.SpatialFilter(4326)
	if err != nil {
		t.Fatalf("SpatialFilter failed: %v", err)
	}
	if bound == nil {
		t.Fatal("expected an envelope")
	}
	if !(bound.Min[0] < 8.0 && 8.0 < bound.Max[0]) || !(bound.Min[1] < 52.0 && 52.0 < bound.Max[1]) {
		t.Errorf("envelope %v does not surround the near point", bound)
	}
}

func TestSpatialFilterTransformErrorSurfaces(t *testing.T) {
	// Requesting a foreign SRID with only the identity transform installed
	// must error, not silently return nil.
	p := New(map[string]string{KeyBBox: "1,2,3,4", KeySRID: "25832"})

	if _, err := p.SpatialFilter(4326); err == nil {
		t.Error("expected transform error for SRID mismatch")
	}
}

func TestSpatialFilterAbsent(t *testing.T) {
	bound, err := New(nil).SpatialFilter(4326)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bound != nil {
		t.Errorf("expected nil envelope, got %v", bound)
	}
}

func TestFlagAccessors(t *testing.T) {
	p := New(map[string]string{
		KeyExpanded:       "true",
		KeyMatchDomainIDs: "true",
		KeyMobile:         "false",
	})

	if !p.Expanded() {
		t.Error("expected expanded")
	}
	if !p.MatchDomainIDs() {
		t.Error("expected matchDomainIds")
	}
	mobile, filtered := p.Mobile()
	if !filtered || mobile {
		t.Errorf("expected mobile restricted to false, got %v/%v", mobile, filtered)
	}
	if _, filtered := p.Insitu(); filtered {
		t.Error("insitu should be unrestricted when absent")
	}
}

func TestLevelAccessor(t *testing.T) {
	if _, bounded := New(nil).Level(); bounded {
		t.Error("absent level must mean unbounded traversal")
	}
	p := New(map[string]string{KeyLevel: "0"})
	level, bounded := p.Level()
	if !bounded || level != 0 {
		t.Errorf("expected bounded level 0, got %d/%v", level, bounded)
	}
}

func TestAllTypesRequested(t *testing.T) {
	if !AllTypesRequested([]string{"quantity", "All"}) {
		t.Error("expected wildcard detection to be case-insensitive")
	}
	if AllTypesRequested([]string{"quantity"}) {
		t.Error("no wildcard present")
	}
}
