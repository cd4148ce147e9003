package domain

import (
	"context"
	"time"
)

type ContextKey string

const UserContextKey ContextKey = "user"

type User struct {
	ID        string    `json:"id"` // UUID
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

type Address struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Label  string `json:"label"` // "Home", "Office"

	// Recipient
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`

	// Location
	AddressLine string `json:"addressLine"`
	City        string `json:"city"`
	District    string `json:"district"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	Landmark    string `json:"landmark"`

	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot flattens the address into the denormalized form stored on each
// order. Orders keep this copy immutable after creation.
func (a *Address) Snapshot() JSONB {
	return JSONB{
		"label":       a.Label,
		"firstName":   a.FirstName,
		"lastName":    a.LastName,
		"phone":       a.Phone,
		"addressLine": a.AddressLine,
		"city":        a.City,
		"district":    a.District,
		"state":       a.State,
		"postalCode":  a.PostalCode,
		"landmark":    a.Landmark,
	}
}

// AddressRepository is the read-only view of the address book the settlement
// engine snapshots from at order creation.
type AddressRepository interface {
	GetByID(ctx context.Context, userID, addressID string) (*Address, error)
}
