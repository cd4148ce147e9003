package domain

import (
	"context"
	"time"
)

type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Price        float64   `json:"price"`        // current selling price
	RegularPrice float64   `json:"regularPrice"` // strike-through price
	Stock        int       `json:"stock"`
	Images       []string  `json:"images"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*Product, error)

	// AdjustStock applies a relative stock delta as a single conditional
	// update (stock never read-modify-written) and records an inventory log
	// entry. A negative delta that would drive stock below zero affects no
	// rows and returns a StateConflict error naming the product.
	AdjustStock(ctx context.Context, productID string, delta int, reason, referenceID string) error
}
