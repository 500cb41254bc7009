package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/soloflow/crm-api/internal/middleware"
	"github.com/soloflow/crm-api/internal/priority"
	"go.uber.org/zap"
)

// PriorityService is the slice of the recalculation engine the handler uses
type PriorityService interface {
	RecalculateUser(ctx context.Context, userID uuid.UUID) (*priority.UserResult, error)
	RecalculateAll(ctx context.Context) (*priority.BatchResult, error)
	TopItems(ctx context.Context, userID uuid.UUID, limit int) ([]priority.RankedItem, error)
}

// PriorityHandler handles priority recalculation and ranking requests
type PriorityHandler struct {
	service    PriorityService
	cronSecret string
	logger     *zap.Logger
}

// NewPriorityHandler creates a new priority handler. cronSecret guards the
// all-users trigger; empty disables that route.
func NewPriorityHandler(service PriorityService, cronSecret string, logger *zap.Logger) *PriorityHandler {
	return &PriorityHandler{service: service, cronSecret: cronSecret, logger: logger}
}

// RegisterRoutes registers priority routes on the given router
// The router should already have the /priority prefix
func (h *PriorityHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/recalculate", h.Recalculate).Methods("POST")
	r.HandleFunc("/top", h.TopItems).Methods("GET")
}

// RegisterCronRoutes registers the scheduled-trigger routes, which use the
// shared-secret header instead of user auth.
func (h *PriorityHandler) RegisterCronRoutes(r *mux.Router) {
	r.HandleFunc("/recalculate-all", h.RecalculateAll).Methods("POST")
}

// Recalculate runs a synchronous recalculation for the authenticated user
func (h *PriorityHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	result, err := h.service.RecalculateUser(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("manual_recalculation_failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to recalculate priorities")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// TopItems returns the highest-priority tasks and projects for the
// authenticated user, merged into one ranked list.
func (h *PriorityHandler) TopItems(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	limit := priority.DefaultTopItems
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "limit must be an integer")
			return
		}
		limit = parsed
	}

	items, err := h.service.TopItems(r.Context(), user.ID, limit)
	if err != nil {
		if errors.Is(err, priority.ErrInvalidLimit) {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		h.logger.Error("top_items_failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve top items")
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// RecalculateAll runs the all-users batch. It is meant to be called by an
// external scheduler and is guarded by the X-Cron-Secret header.
func (h *PriorityHandler) RecalculateAll(w http.ResponseWriter, r *http.Request) {
	if h.cronSecret == "" {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Scheduled trigger is not configured")
		return
	}

	secret := r.Header.Get("X-Cron-Secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.cronSecret)) != 1 {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid cron secret")
		return
	}

	batch, err := h.service.RecalculateAll(r.Context())
	if err != nil {
		h.logger.Error("scheduled_recalculation_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to recalculate priorities")
		return
	}

	respondJSON(w, http.StatusOK, batch)
}
