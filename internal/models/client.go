package models

import (
	"time"

	"github.com/google/uuid"
)

// Client represents a CRM client. Client CRUD is owned by the main CRM
// surface; this service only reads clients for ownership checks and the VIP
// flag consumed by priority scoring.
type Client struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsVIP     bool      `json:"is_vip"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
