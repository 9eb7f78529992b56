package models

import (
	"time"

	"github.com/google/uuid"
)

// JSONB is a free-form payload stored in a jsonb column.
type JSONB map[string]interface{}

// AuditLog records who did what. Writes are best-effort: an audit failure
// must never fail or roll back the business operation it describes.
type AuditLog struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	UserEmail string    `json:"user_email" db:"user_email"`
	UserName  string    `json:"user_name" db:"user_name"`
	Action    string    `json:"action" db:"action"`
	Entity    string    `json:"entity" db:"entity"`
	EntityID  *string   `json:"entity_id" db:"entity_id"`
	Details   JSONB     `json:"details" db:"details"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AuditLogFilters represents filters for querying audit logs
type AuditLogFilters struct {
	Entity    *string    `json:"entity"`
	EntityID  *string    `json:"entity_id"`
	Action    *string    `json:"action"`
	UserID    *uuid.UUID `json:"user_id"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}
