package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Coupon struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"` // stored uppercase, matched case-insensitively
	Type        string    `json:"type"` // percentage, fixed, shipping, bogo
	Value       float64   `json:"value"`
	MinOrder    float64   `json:"minOrder"`
	MaxDiscount *float64  `json:"maxDiscount"` // nil = uncapped
	ExpiresAt   time.Time `json:"expiresAt"`
	UsageLimit  int       `json:"usageLimit"`
	UsedCount   int       `json:"usedCount"`
	IsPremium   bool      `json:"isPremium"`
	Listed      bool      `json:"listed"`

	// UsedBy tracks redemption; PremiumAllowList gates premium coupons.
	// Kept as two separate sets: conflating them makes a premium coupon
	// usable only by people who already used it.
	UsedBy           []string `json:"usedBy"`
	PremiumAllowList []string `json:"premiumAllowList"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Expired reports whether the coupon is past its expiry at the given time.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}

// HasUsed reports whether the user already redeemed this coupon.
func (c *Coupon) HasUsed(userID string) bool {
	for _, id := range c.UsedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// AllowedFor reports premium eligibility. Non-premium coupons are open to all.
func (c *Coupon) AllowedFor(userID string) bool {
	if !c.IsPremium {
		return true
	}
	for _, id := range c.PremiumAllowList {
		if id == userID {
			return true
		}
	}
	return false
}

// ActiveCoupon is the coupon a user has applied to their cart but not yet
// settled with.
type ActiveCoupon struct {
	UserID    string    `json:"userId"`
	CouponID  uuid.UUID `json:"couponId"`
	Code      string    `json:"code"`
	AppliedAt time.Time `json:"appliedAt"`
}

type CouponRepository interface {
	Create(ctx context.Context, coupon *Coupon) error
	GetByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	// GetByCode matches case-insensitively among listed coupons.
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	// GetByCodeAny matches case-insensitively regardless of listing; code
	// uniqueness checks go through it so a soft-deleted coupon still
	// reserves its code.
	GetByCodeAny(ctx context.Context, code string) (*Coupon, error)
	List(ctx context.Context, limit, offset int) ([]Coupon, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, coupon *Coupon) error
	SetListed(ctx context.Context, id uuid.UUID, listed bool) error

	// MarkUsed atomically increments used_count and appends the user to the
	// consumed-by set, guarded by the usage limit in the same statement.
	// Returns (false, nil) when the user was already recorded (idempotent
	// no-op) and a StateConflict error when the limit is exhausted.
	MarkUsed(ctx context.Context, id uuid.UUID, userID string) (bool, error)

	SetActive(ctx context.Context, active *ActiveCoupon) error
	GetActive(ctx context.Context, userID string) (*ActiveCoupon, error)
	ClearActive(ctx context.Context, userID string) error
}
