package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/soloflow/crm-api/internal/middleware"
	"github.com/soloflow/crm-api/internal/models"
	"github.com/soloflow/crm-api/internal/priority"
	"go.uber.org/zap"
)

// mockPriorityService is a mock implementation of PriorityService
type mockPriorityService struct {
	recalculateUserFunc func(ctx context.Context, userID uuid.UUID) (*priority.UserResult, error)
	recalculateAllFunc  func(ctx context.Context) (*priority.BatchResult, error)
	topItemsFunc        func(ctx context.Context, userID uuid.UUID, limit int) ([]priority.RankedItem, error)

	topItemsLimit int
}

func (m *mockPriorityService) RecalculateUser(ctx context.Context, userID uuid.UUID) (*priority.UserResult, error) {
	if m.recalculateUserFunc != nil {
		return m.recalculateUserFunc(ctx, userID)
	}
	return &priority.UserResult{}, nil
}

func (m *mockPriorityService) RecalculateAll(ctx context.Context) (*priority.BatchResult, error) {
	if m.recalculateAllFunc != nil {
		return m.recalculateAllFunc(ctx)
	}
	return &priority.BatchResult{}, nil
}

func (m *mockPriorityService) TopItems(ctx context.Context, userID uuid.UUID, limit int) ([]priority.RankedItem, error) {
	m.topItemsLimit = limit
	if m.topItemsFunc != nil {
		return m.topItemsFunc(ctx, userID, limit)
	}
	if limit < 1 || limit > priority.MaxTopItems {
		return nil, priority.ErrInvalidLimit
	}
	return []priority.RankedItem{}, nil
}

func withTestUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(middleware.SetUserInContext(r.Context(), user))
}

func TestRecalculate(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Email: "test@example.com"}

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		service := &mockPriorityService{
			recalculateUserFunc: func(ctx context.Context, userID uuid.UUID) (*priority.UserResult, error) {
				if userID != user.ID {
					t.Errorf("userID = %v, want %v", userID, user.ID)
				}
				return &priority.UserResult{TasksUpdated: 4, ProjectsUpdated: 2}, nil
			},
		}
		h := NewPriorityHandler(service, "", zap.NewNop())

		req := withTestUser(newTestRequest("POST", "/recalculate", nil), user)
		w := httptest.NewRecorder()
		h.Recalculate(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}

		var body struct {
			Data priority.UserResult `json:"data"`
		}
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Data.TasksUpdated != 4 || body.Data.ProjectsUpdated != 2 {
			t.Errorf("unexpected result: %+v", body.Data)
		}
	})

	t.Run("no user in context", func(t *testing.T) {
		t.Parallel()

		h := NewPriorityHandler(&mockPriorityService{}, "", zap.NewNop())

		req := newTestRequest("POST", "/recalculate", nil)
		w := httptest.NewRecorder()
		h.Recalculate(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("engine failure", func(t *testing.T) {
		t.Parallel()

		service := &mockPriorityService{
			recalculateUserFunc: func(ctx context.Context, userID uuid.UUID) (*priority.UserResult, error) {
				return nil, errors.New("db down")
			},
		}
		h := NewPriorityHandler(service, "", zap.NewNop())

		req := withTestUser(newTestRequest("POST", "/recalculate", nil), user)
		w := httptest.NewRecorder()
		h.Recalculate(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", w.Code)
		}
	})
}

func TestTopItemsHandler(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}

	t.Run("default limit", func(t *testing.T) {
		t.Parallel()

		service := &mockPriorityService{}
		h := NewPriorityHandler(service, "", zap.NewNop())

		req := withTestUser(newTestRequest("GET", "/top", nil), user)
		w := httptest.NewRecorder()
		h.TopItems(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if service.topItemsLimit != priority.DefaultTopItems {
			t.Errorf("limit = %d, want default %d", service.topItemsLimit, priority.DefaultTopItems)
		}
	})

	t.Run("explicit limit", func(t *testing.T) {
		t.Parallel()

		service := &mockPriorityService{
			topItemsFunc: func(ctx context.Context, userID uuid.UUID, limit int) ([]priority.RankedItem, error) {
				return []priority.RankedItem{
					{ID: uuid.New(), Kind: priority.ItemKindTask, Title: "a", Score: 90, Label: models.PriorityHigh},
				}, nil
			},
		}
		h := NewPriorityHandler(service, "", zap.NewNop())

		req := withTestUser(newTestRequest("GET", "/top?limit=25", nil), user)
		w := httptest.NewRecorder()
		h.TopItems(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if service.topItemsLimit != 25 {
			t.Errorf("limit = %d, want 25", service.topItemsLimit)
		}
	})

	t.Run("invalid limits", func(t *testing.T) {
		t.Parallel()

		for _, q := range []string{"limit=0", "limit=51", "limit=-3", "limit=abc"} {
			h := NewPriorityHandler(&mockPriorityService{}, "", zap.NewNop())

			req := withTestUser(newTestRequest("GET", "/top?"+q, nil), user)
			w := httptest.NewRecorder()
			h.TopItems(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("%s: status = %d, want 400", q, w.Code)
			}
		}
	})

	t.Run("no user in context", func(t *testing.T) {
		t.Parallel()

		h := NewPriorityHandler(&mockPriorityService{}, "", zap.NewNop())

		req := newTestRequest("GET", "/top", nil)
		w := httptest.NewRecorder()
		h.TopItems(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})
}

func TestRecalculateAllHandler(t *testing.T) {
	t.Parallel()

	t.Run("valid secret", func(t *testing.T) {
		t.Parallel()

		service := &mockPriorityService{
			recalculateAllFunc: func(ctx context.Context) (*priority.BatchResult, error) {
				return &priority.BatchResult{TotalUsers: 3, SuccessfulUsers: 3}, nil
			},
		}
		h := NewPriorityHandler(service, "s3cret", zap.NewNop())

		req := newTestRequest("POST", "/recalculate-all", nil)
		req.Header.Set("X-Cron-Secret", "s3cret")
		w := httptest.NewRecorder()
		h.RecalculateAll(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}

		var body struct {
			Data priority.BatchResult `json:"data"`
		}
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Data.TotalUsers != 3 {
			t.Errorf("TotalUsers = %d, want 3", body.Data.TotalUsers)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()

		h := NewPriorityHandler(&mockPriorityService{}, "s3cret", zap.NewNop())

		req := newTestRequest("POST", "/recalculate-all", nil)
		req.Header.Set("X-Cron-Secret", "wrong")
		w := httptest.NewRecorder()
		h.RecalculateAll(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("missing secret header", func(t *testing.T) {
		t.Parallel()

		h := NewPriorityHandler(&mockPriorityService{}, "s3cret", zap.NewNop())

		req := newTestRequest("POST", "/recalculate-all", nil)
		w := httptest.NewRecorder()
		h.RecalculateAll(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("secret not configured", func(t *testing.T) {
		t.Parallel()

		h := NewPriorityHandler(&mockPriorityService{}, "", zap.NewNop())

		req := newTestRequest("POST", "/recalculate-all", nil)
		req.Header.Set("X-Cron-Secret", "")
		w := httptest.NewRecorder()
		h.RecalculateAll(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}

func TestPriorityRoutes(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	service := &mockPriorityService{}
	h := NewPriorityHandler(service, "s3cret", zap.NewNop())

	r := mux.NewRouter()
	sub := r.PathPrefix("/priority").Subrouter()
	sub.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, withTestUser(req, user))
		})
	})
	h.RegisterRoutes(sub)
	h.RegisterCronRoutes(sub)

	tests := []struct {
		method string
		path   string
		header map[string]string
		want   int
	}{
		{"POST", "/priority/recalculate", nil, http.StatusOK},
		{"GET", "/priority/top", nil, http.StatusOK},
		{"POST", "/priority/recalculate-all", map[string]string{"X-Cron-Secret": "s3cret"}, http.StatusOK},
		{"GET", "/priority/recalculate", nil, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		req := newTestRequest(tt.method, tt.path, nil)
		for k, v := range tt.header {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tt.want {
			t.Errorf("%s %s: status = %d, want %d", tt.method, tt.path, w.Code, tt.want)
		}
	}
}
