package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/soloflow/crm-api/internal/auth"
	"github.com/soloflow/crm-api/internal/database"
	"github.com/soloflow/crm-api/internal/models"
	"go.uber.org/zap"
)

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext extracts the user from the request context
func UserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(userContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// Auth creates authentication middleware that validates JWT tokens against
// the configured identity provider and provisions unknown users on first sight.
func Auth(users *database.UserRepository, verifier *auth.Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Missing Authorization header", logger)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "Invalid Authorization header format", logger)
				return
			}

			ctx := r.Context()
			claims, err := verifier.Verify(ctx, parts[1])
			if err != nil {
				logger.Warn("token_verification_failed", zap.Error(err))
				respondError(w, http.StatusUnauthorized, "Invalid or expired token", logger)
				return
			}

			user, err := users.GetByProviderID(ctx, claims.Sub)
			if err != nil {
				// The repository wraps sql.ErrNoRows, so errors.Is will unwrap and check
				if errors.Is(err, sql.ErrNoRows) {
					user = &models.User{
						ID:         uuid.New(),
						Email:      claims.Email,
						ProviderID: &claims.Sub,
					}
					if claims.Name != "" {
						name := claims.Name
						user.Name = &name
					}
					if err := users.Create(ctx, user); err != nil {
						respondError(w, http.StatusInternalServerError, "Failed to create user", logger)
						return
					}
				} else {
					logger.Error("auth_user_lookup_failed", zap.Error(err))
					respondError(w, http.StatusInternalServerError, "Database error", logger)
					return
				}
			}

			ctx = context.WithValue(ctx, userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed_to_encode_error_response", zap.Error(err))
	}
}
