// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package params

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// CRSTransform converts an envelope between spatial reference systems.
// Coordinate transformation internals are an external service; the default
// implementation only accepts the identity case.
type CRSTransform interface {
	Transform(bound orb.Bound, fromSRID, toSRID int) (orb.Bound, error)
}

// identityTransform rejects any actual reprojection.
type identityTransform struct{}

func (identityTransform) Transform(bound orb.Bound, fromSRID, toSRID int) (orb.Bound, error) {
	if fromSRID != toSRID {
		return orb.Bound{}, fmt.Errorf("no transform registered for SRID %d -> %d", fromSRID, toSRID)
	}
	return bound, nil
}

// crsTransform is the process-wide transform service. Replaceable via
// SetCRSTransform at wiring time.
var crsTransform CRSTransform = identityTransform{}

// SetCRSTransform installs a coordinate transform service.
func SetCRSTransform(t CRSTransform) {
	if t != nil {
		crsTransform = t
	}
}

// SRID returns the spatial reference system of the request geometry
// parameters, defaulting to WGS 84.
func (p Parameters) SRID() int {
	n, err := strconv.Atoi(p.values[KeySRID])
	if err != nil || n <= 0 {
		return 4326
	}
	return n
}

// SpatialFilter derives the query envelope from the bbox or near parameter,
// transformed into the storage SRID. Returns nil when no spatial parameter
// is present. A malformed parameter or a failing coordinate transform is an
// error; callers surface it as a data-access failure rather than silently
// dropping the filter.
func (p Parameters) SpatialFilter(storageSRID int) (*orb.Bound, error) {
	var bound *orb.Bound

	if raw, ok := p.values[KeyBBox]; ok && raw != "" {
		b, err := parseBBox(raw)
		if err != nil {
			return nil, err
		}
		bound = &b
	} else if raw, ok := p.values[KeyNear]; ok && raw != "" {
		b, err := parseNear(raw)
		if err != nil {
			return nil, err
		}
		bound = &b
	}

	if bound == nil {
		return nil, nil
	}

	transformed, err := crsTransform.Transform(*bound, p.SRID(), storageSRID)
	if err != nil {
		return nil, fmt.Errorf("spatial filter transform failed: %w", err)
	}
	return &transformed, nil
}

// parseBBox parses "minLon,minLat,maxLon,maxLat".
func parseBBox(raw string) (orb.Bound, error) {
	coords, err := parseFloats(raw, 4)
	if err != nil {
		return orb.Bound{}, fmt.Errorf("invalid bbox %q: %w", raw, err)
	}
	if coords[0] > coords[2] || coords[1] > coords[3] {
		return orb.Bound{}, fmt.Errorf("invalid bbox %q: min exceeds max", raw)
	}
	return orb.Bound{
		Min: orb.Point{coords[0], coords[1]},
		Max: orb.Point{coords[2], coords[3]},
	}, nil
}

// parseNear parses "lon,lat,radiusMeters" into a surrounding envelope.
func parseNear(raw string) (orb.Bound, error) {
	coords, err := parseFloats(raw, 3)
	if err != nil {
		return orb.Bound{}, fmt.Errorf("invalid near filter %q: %w", raw, err)
	}
	lon, lat, radius := coords[0], coords[1], coords[2]
	if radius <= 0 {
		return orb.Bound{}, fmt.Errorf("invalid near filter %q: radius must be positive", raw)
	}

	// Approximate degrees-per-meter envelope; good enough for a bounding
	// box pre-filter, exact distance checks stay in the database.
	latDelta := radius / 111320.0
	lonDelta := latDelta
	if cosLat := math.Cos(lat * math.Pi / 180); cosLat > 0.01 {
		lonDelta = latDelta / cosLat
	}
	return orb.Bound{
		Min: orb.Point{lon - lonDelta, lat - latDelta},
		Max: orb.Point{lon + lonDelta, lat + latDelta},
	}, nil
}

func parseFloats(raw string, want int) ([]float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("expected %d comma-separated values, got %d", want, len(parts))
	}
	out := make([]float64, want)
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}
