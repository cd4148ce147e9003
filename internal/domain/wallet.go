package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Wallet is a cached projection over its transaction log: balance always
// equals sum(credits) - sum(debits) and never goes negative.
type Wallet struct {
	ID           uuid.UUID `json:"id"`
	UserID       string    `json:"userId"`
	Balance      float64   `json:"balance"`
	RefundAmount float64   `json:"refundAmount"` // cumulative refund credits
	TotalDebited float64   `json:"totalDebited"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type WalletTransaction struct {
	ID          uuid.UUID `json:"id"`
	WalletID    uuid.UUID `json:"walletId"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"` // credit, debit
	Purpose     string    `json:"purpose"`
	ReferenceID string    `json:"referenceId"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

type WalletRepository interface {
	// GetOrCreate returns the user's wallet, creating a zero-balance record
	// on first access.
	GetOrCreate(ctx context.Context, userID string) (*Wallet, error)

	// Credit appends a credit transaction and bumps the balance. Refund
	// purposes also bump the cumulative refund amount. Amount must be > 0.
	Credit(ctx context.Context, userID string, amount float64, purpose, referenceID string) (*Wallet, error)

	// Debit appends a debit transaction guarded by a conditional balance
	// update; it fails with a StateConflict when balance < amount and never
	// drives the balance negative.
	Debit(ctx context.Context, userID string, amount float64, purpose, referenceID string) (*Wallet, error)

	Transactions(ctx context.Context, userID string, limit, offset int) ([]WalletTransaction, error)
}
