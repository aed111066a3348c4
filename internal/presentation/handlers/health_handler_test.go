package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chainscan/explorer/internal/testutil"
)

func TestHealthHandler_Health_AllHealthy(t *testing.T) {
	handler := NewHealthHandler(testutil.NewMockHealthChecker(true), testutil.NewMockHealthChecker(true))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != "healthy" {
		t.Errorf("expected status healthy, got %s", response.Status)
	}
	if response.Services["database"] != "healthy" {
		t.Errorf("expected database healthy, got %s", response.Services["database"])
	}
	if response.Services["cache"] != "healthy" {
		t.Errorf("expected cache healthy, got %s", response.Services["cache"])
	}
}

func TestHealthHandler_Health_DatabaseDown(t *testing.T) {
	handler := NewHealthHandler(testutil.NewMockHealthChecker(false), testutil.NewMockHealthChecker(true))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.Health(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}

	var response HealthResponse
	json.NewDecoder(rec.Body).Decode(&response)
	if response.Status != "unhealthy" {
		t.Errorf("expected status unhealthy, got %s", response.Status)
	}
}

func TestHealthHandler_Health_CacheDownIsDegraded(t *testing.T) {
	handler := NewHealthHandler(testutil.NewMockHealthChecker(true), testutil.NewMockHealthChecker(false))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 for degraded service, got %d", rec.Code)
	}

	var response HealthResponse
	json.NewDecoder(rec.Body).Decode(&response)
	if response.Status != "degraded" {
		t.Errorf("expected status degraded, got %s", response.Status)
	}
}

func TestHealthHandler_Health_NoDatabase(t *testing.T) {
	// Faucet deployments run without a database
	handler := NewHealthHandler(nil, testutil.NewMockHealthChecker(true))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	handler := NewHealthHandler(testutil.NewMockHealthChecker(true), nil)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	handler.Ready(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Ready_DatabaseDown(t *testing.T) {
	handler := NewHealthHandler(testutil.NewMockHealthChecker(false), nil)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	handler.Ready(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}
}

func TestHealthHandler_Live(t *testing.T) {
	handler := NewHealthHandler(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rec := httptest.NewRecorder()
	handler.Live(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}
