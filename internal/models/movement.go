package models

import (
	"time"

	"github.com/google/uuid"
)

// Movement types
const (
	MovementEntry = "ENTRY"
	MovementExit  = "EXIT"
)

// Movement is a single recorded stock change against one item. Rows are
// append-only: there is no update or delete path anywhere in the codebase.
type Movement struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Type      string    `json:"type" db:"type"`
	Quantity  int       `json:"quantity" db:"quantity"`
	ItemID    uuid.UUID `json:"item_id" db:"item_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Note      *string   `json:"note" db:"note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MovementWithRefs carries the denormalized item and user display fields the
// movement list screens need. Read-side convenience only; storage keeps ids.
type MovementWithRefs struct {
	Movement
	ItemName    string `json:"item_name" db:"item_name"`
	ItemBarcode string `json:"item_barcode" db:"item_barcode"`
	ItemBrand   string `json:"item_brand" db:"item_brand"`
	ItemModel   string `json:"item_model" db:"item_model"`
	UserName    string `json:"user_name" db:"user_name"`
	UserEmail   string `json:"user_email" db:"user_email"`
}

// MovementFilter restricts the aggregation window. ItemID takes precedence
// over CategoryID when both are set.
type MovementFilter struct {
	ItemID     *uuid.UUID `json:"item_id,omitempty"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}

// MovementAggregate is one per-day bucket of the filtered movement window.
// Saldo is cumulative within the window, starting from zero: it is a trend
// indicator relative to the filter, not the item's absolute stock level.
type MovementAggregate struct {
	Date     string `json:"data"`    // YYYY-MM-DD
	Label    string `json:"label"`   // DD/MM display label
	Entradas int    `json:"entradas"`
	Saidas   int    `json:"saidas"`
	Saldo    int    `json:"saldo"`
}
