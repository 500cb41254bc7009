package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthCheckBasic(t *testing.T) {
	t.Parallel()

	// Basic mode touches neither the database nor the queue
	h := NewHealthChecker(nil, nil)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	h.HealthCheck(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", body.Status)
	}
	if body.Checks != nil {
		t.Errorf("Checks = %v, want nil in basic mode", body.Checks)
	}
	if body.Timestamp == "" {
		t.Error("expected timestamp to be set")
	}
}
