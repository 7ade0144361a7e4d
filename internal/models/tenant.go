package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is the isolation unit for all planner data: one wedding account.
type Tenant struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CoupleNames  string     `json:"couple_names"`
	WeddingDate  *time.Time `json:"wedding_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}
