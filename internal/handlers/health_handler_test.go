package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"csacademy/interview/internal/config"
	"csacademy/interview/internal/messages"
)

func TestHealthzHandler(t *testing.T) {
	handler := NewHealthHandler(nil, nil, nil)
	rec := httptest.NewRecorder()

	handler.HealthzHandler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["service"] != "interview" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestReadyzHandler(t *testing.T) {
	catalog, err := messages.NewCatalog()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	cases := []struct {
		name    string
		handler *HealthHandler
		status  int
		failing string
	}{
		{"ready", NewHealthHandler(catalog, &config.Config{}, map[string]Pinger{"history_db": ok}), http.StatusOK, ""},
		{"no catalog", NewHealthHandler(nil, &config.Config{}, nil), http.StatusServiceUnavailable, "messages"},
		{"no config", NewHealthHandler(catalog, nil, nil), http.StatusServiceUnavailable, "configuration"},
		{"redis down", NewHealthHandler(catalog, &config.Config{}, map[string]Pinger{"redis": down}), http.StatusServiceUnavailable, "redis"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		tc.handler.ReadyzHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		if rec.Code != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.name, tc.status, rec.Code)
		}
		var resp ReadinessResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: invalid json: %v", tc.name, err)
		}
		if tc.failing != "" && resp.Checks[tc.failing].Status != "failed" {
			t.Fatalf("%s: expected %s check to fail, got %+v", tc.name, tc.failing, resp.Checks)
		}
	}
}
