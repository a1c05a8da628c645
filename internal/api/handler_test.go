// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/observatus/observatus/internal/dao"
	"github.com/observatus/observatus/internal/models"
	"github.com/observatus/observatus/internal/params"
)

type stubDatasets struct {
	outputs  []*models.DatasetOutput
	data     *models.DataCollection
	stations []*models.StationOutput
	err      error
}

func (s *stubDatasets) GetAll(_ context.Context, _ params.Parameters) ([]*models.DatasetOutput, error) {
	return s.outputs, s.err
}

func (s *stubDatasets) GetOne(_ context.Context, rawID string, _ params.Parameters) (*models.DatasetOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, out := range s.outputs {
		if out.ID == rawID {
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: dataset %s", dao.ErrNotFound, rawID)
}

func (s *stubDatasets) GetCount(_ context.Context, _ params.Parameters) (int64, error) {
	return int64(len(s.outputs)), s.err
}

func (s *stubDatasets) GetData(_ context.Context, _ string, _ params.Parameters) (*models.DataCollection, error) {
	return s.data, s.err
}

func (s *stubDatasets) GetStations(_ context.Context, _ params.Parameters) ([]*models.StationOutput, error) {
	return s.stations, s.err
}

type stubFamily struct {
	outputs []*models.ParameterOutput
	err     error
}

func (s *stubFamily) GetAll(_ context.Context, _ params.Parameters) ([]*models.ParameterOutput, error) {
	return s.outputs, s.err
}

func (s *stubFamily) GetOne(_ context.Context, _ string, _ params.Parameters) (*models.ParameterOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.outputs[0], nil
}

func (s *stubFamily) GetCount(_ context.Context, _ params.Parameters) (int64, error) {
	return int64(len(s.outputs)), s.err
}

type stubCounts map[string]int64

func (s stubCounts) GetCounts(_ context.Context, _ params.Parameters) map[string]int64 {
	return s
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(_ context.Context) error { return s.err }

func testServer(t *testing.T, datasets *stubDatasets, family *stubFamily, pinger Pinger) *httptest.Server {
	t.Helper()
	h := NewHandler(datasets,
		map[string]ParameterProvider{"procedures": family},
		stubCounts{"datasets": 2, "procedures": 1},
		pinger)
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body failed: %v", err)
	}
	return resp, body
}

func TestDatasetsEndpoint(t *testing.T) {
	datasets := &stubDatasets{outputs: []*models.DatasetOutput{
		{ID: "1", Label: "Water temperature"},
		{ID: "2", Label: "Air pressure"},
	}}
	srv := testServer(t, datasets, &stubFamily{}, stubPinger{})

	resp, body := get(t, srv.URL+"/api/v1/datasets/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out []models.DatasetOutput
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("response not decodable: %v", err)
	}
	if len(out) != 2 || out[0].Label != "Water temperature" {
		t.Errorf("unexpected body %s", body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("request id header missing")
	}
}

func TestDatasetNotFound(t *testing.T) {
	srv := testServer(t, &stubDatasets{}, &stubFamily{}, stubPinger{})

	resp, body := get(t, srv.URL+"/api/v1/datasets/99")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", resp.StatusCode, body)
	}
}

func TestBadRequestMapping(t *testing.T) {
	datasets := &stubDatasets{err: fmt.Errorf("%w: malformed id", dao.ErrBadRequest)}
	srv := testServer(t, datasets, &stubFamily{}, stubPinger{})

	resp, body := get(t, srv.URL+"/api/v1/datasets/")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var e errorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("error body not decodable: %v", err)
	}
	if e.Status != http.StatusBadRequest {
		t.Errorf("unexpected error body %s", body)
	}
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	datasets := &stubDatasets{err: errors.New("duckdb exploded")}
	srv := testServer(t, datasets, &stubFamily{}, stubPinger{})

	resp, body := get(t, srv.URL+"/api/v1/datasets/")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	var e errorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("error body not decodable: %v", err)
	}
	if e.Message != "internal server error" {
		t.Errorf("internal detail leaked: %s", body)
	}
}

func TestFamilyRoutes(t *testing.T) {
	family := &stubFamily{outputs: []*models.ParameterOutput{{ID: "7", Label: "Thermometer"}}}
	srv := testServer(t, &stubDatasets{}, family, stubPinger{})

	resp, body := get(t, srv.URL+"/api/v1/procedures/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out []models.ParameterOutput
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("response not decodable: %v", err)
	}
	if len(out) != 1 || out[0].ID != "7" {
		t.Errorf("unexpected body %s", body)
	}

	resp, body = get(t, srv.URL+"/api/v1/procedures/count")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("count: expected 200, got %d", resp.StatusCode)
	}
	var count map[string]int64
	if err := json.Unmarshal(body, &count); err != nil {
		t.Fatalf("count body not decodable: %v", err)
	}
	if count["count"] != 1 {
		t.Errorf("unexpected count body %s", body)
	}
}

func TestAggregateCounts(t *testing.T) {
	srv := testServer(t, &stubDatasets{}, &stubFamily{}, stubPinger{})

	resp, body := get(t, srv.URL+"/api/v1/count")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var counts map[string]int64
	if err := json.Unmarshal(body, &counts); err != nil {
		t.Fatalf("counts not decodable: %v", err)
	}
	if counts["datasets"] != 2 || counts["procedures"] != 1 {
		t.Errorf("unexpected counts %s", body)
	}
}

func TestStationsEndpoint(t *testing.T) {
	datasets := &stubDatasets{stations: []*models.StationOutput{
		{ID: "5", Label: "Buoy North", Timeseries: map[string]string{"1": "Water temperature"}},
	}}
	srv := testServer(t, datasets, &stubFamily{}, stubPinger{})

	resp, body := get(t, srv.URL+"/api/v1/stations")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out []models.StationOutput
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("stations not decodable: %v", err)
	}
	if len(out) != 1 || out[0].Timeseries["1"] != "Water temperature" {
		t.Errorf("unexpected stations body %s", body)
	}
}

func TestHealthDegradedWhenStoreDown(t *testing.T) {
	srv := testServer(t, &stubDatasets{}, &stubFamily{}, stubPinger{err: errors.New("down")})

	resp, body := get(t, srv.URL+"/health")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", resp.StatusCode, body)
	}
}

func TestDatasetDataEndpoint(t *testing.T) {
	v := 4.2
	datasets := &stubDatasets{data: &models.DataCollection{Values: []models.SeriesValue{
		models.QuantityValue{TimedValue: models.TimedValue{Timestamp: 1000}, Value: &v},
	}}}
	srv := testServer(t, datasets, &stubFamily{}, stubPinger{})

	resp, body := get(t, srv.URL+"/api/v1/datasets/1/data?timespan=2020-01-01/2020-01-02")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out struct {
		Values []struct {
			Timestamp int64    `json:"timestamp"`
			Value     *float64 `json:"value"`
		} `json:"values"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("data body not decodable: %v", err)
	}
	if len(out.Values) != 1 || out.Values[0].Timestamp != 1000 || *out.Values[0].Value != 4.2 {
		t.Errorf("unexpected data body %s", body)
	}
}
