package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account in the CRM. Users are provisioned on first
// authenticated request from the identity provider's subject claim.
type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	ProviderID *string   `json:"provider_id,omitempty"`
	Name       *string   `json:"name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
