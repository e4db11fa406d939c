package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents an inventory item. SKU is unique across all products;
// quantity and price are never negative.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Type        string    `json:"type" db:"type"`
	SKU         string    `json:"sku" db:"sku"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	Description string    `json:"description" db:"description"`
	Quantity    int       `json:"quantity" db:"quantity"`
	Price       float64   `json:"price" db:"price"`
	AddedBy     uuid.UUID `json:"added_by" db:"added_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
