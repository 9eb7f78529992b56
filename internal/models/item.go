package models

import (
	"time"

	"github.com/google/uuid"
)

// Item condition values
const (
	ConditionNew     = "new"
	ConditionGood    = "good"
	ConditionFair    = "fair"
	ConditionPoor    = "poor"
	ConditionDamaged = "damaged"
)

// ItemSearchFilter holds search and filter criteria for item queries
type ItemSearchFilter struct {
	Query       string     `json:"query,omitempty"`        // Full-text search across name, brand, model, barcode
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`  // Filter by category
	Barcode     *string    `json:"barcode,omitempty"`      // Exact barcode match
	MinQuantity *int       `json:"min_quantity,omitempty"` // Minimum stock quantity
	MaxQuantity *int       `json:"max_quantity,omitempty"` // Maximum stock quantity
	LowStock    bool       `json:"low_stock,omitempty"`    // Only items at or below their minimum
	ActiveOnly  bool       `json:"active_only,omitempty"`  // Exclude deactivated items
	SortBy      string     `json:"sort_by,omitempty"`      // Sort field: name, quantity, created_at
	SortOrder   string     `json:"sort_order,omitempty"`   // Sort order: asc, desc
	Limit       int        `json:"limit,omitempty"`        // Page size (default: 50)
	Offset      int        `json:"offset,omitempty"`       // Page offset
}

type Item struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Brand        string     `json:"brand" db:"brand"`
	Model        string     `json:"model" db:"model"`
	SerialNumber *string    `json:"serial_number" db:"serial_number"`
	Quantity     int        `json:"quantity" db:"quantity"`
	MinQuantity  int        `json:"min_quantity" db:"min_quantity"`
	Location     string     `json:"location" db:"location"`
	Barcode      string     `json:"barcode" db:"barcode"`
	CategoryID   *uuid.UUID `json:"category_id" db:"category_id"`
	Active       bool       `json:"active" db:"active"`
	Condition    *string    `json:"condition" db:"condition"`
	PhotoURL     *string    `json:"photo_url" db:"photo_url"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// BelowMinimum reports whether the item's stock is at or under its threshold.
func (i *Item) BelowMinimum() bool {
	return i.Quantity <= i.MinQuantity
}

// ValidCondition reports whether condition is one of the known item conditions.
func ValidCondition(condition string) bool {
	switch condition {
	case ConditionNew, ConditionGood, ConditionFair, ConditionPoor, ConditionDamaged:
		return true
	}
	return false
}
