package usecase

import (
	"context"
	"strings"
	"time"

	"litmart-backend/internal/domain"
	"litmart-backend/internal/pricing"
	"litmart-backend/pkg/cache"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const couponCacheTTL = 5 * time.Minute

// CouponUsecase owns the coupon ledger: storefront apply/remove plus the
// admin CRUD surface.
type CouponUsecase struct {
	couponRepo domain.CouponRepository
	orderRepo  domain.OrderRepository
	cache      cache.CacheService
}

func NewCouponUsecase(couponRepo domain.CouponRepository, orderRepo domain.OrderRepository, cache cache.CacheService) *CouponUsecase {
	return &CouponUsecase{
		couponRepo: couponRepo,
		orderRepo:  orderRepo,
		cache:      cache,
	}
}

// Validate resolves a coupon code for a user against a cart subtotal. The
// result is advisory: settlement re-checks and consumes usage atomically.
func (uc *CouponUsecase) Validate(ctx context.Context, code, userID string, subtotal float64) (*domain.Coupon, error) {
	coupon, err := uc.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if coupon.Expired(time.Now()) {
		return nil, domain.Validationf("coupon has expired")
	}
	if coupon.UsedCount >= coupon.UsageLimit {
		return nil, domain.StateConflictf("coupon usage limit reached")
	}
	if coupon.HasUsed(userID) {
		return nil, domain.StateConflictf("coupon already used")
	}
	if !coupon.AllowedFor(userID) {
		return nil, domain.Validationf("coupon is not available for this account")
	}
	if subtotal < coupon.MinOrder {
		return nil, domain.Validationf("order total below coupon minimum of %.2f", coupon.MinOrder)
	}
	return coupon, nil
}

func (uc *CouponUsecase) lookup(ctx context.Context, code string) (*domain.Coupon, error) {
	key := "coupon:code:" + strings.ToUpper(code)
	if val, found := uc.cache.Get(key); found {
		c := val.(domain.Coupon)
		return &c, nil
	}

	coupon, err := uc.couponRepo.GetByCode(ctx, code)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, domain.Validationf("invalid coupon code")
		}
		return nil, err
	}
	uc.cache.Set(key, *coupon, couponCacheTTL)
	return coupon, nil
}

// ApplyCouponResp is the storefront view of an applied coupon.
type ApplyCouponResp struct {
	Code           string  `json:"code"`
	Type           string  `json:"type"`
	DiscountAmount float64 `json:"discountAmount"`
	NewTotal       float64 `json:"newTotal"`
}

// Apply validates the code against the live cart and pins it as the user's
// active coupon for checkout.
func (uc *CouponUsecase) Apply(ctx context.Context, userID, code string, deliveryCharge float64) (*ApplyCouponResp, error) {
	cart, err := uc.orderRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, domain.Validationf("cart is empty")
	}

	items := make([]pricing.LineItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		items = append(items, pricing.LineItem{
			ProductID: ci.ProductID,
			Name:      ci.Product.Name,
			UnitPrice: decimal.NewFromFloat(ci.Product.Price),
			Quantity:  ci.Quantity,
		})
	}
	subtotal := pricing.Subtotal(items)

	coupon, err := uc.Validate(ctx, code, userID, subtotal.InexactFloat64())
	if err != nil {
		return nil, err
	}

	quote, err := pricing.Price(items, toPricingCoupon(coupon), decimal.NewFromFloat(deliveryCharge))
	if err != nil {
		if err == pricing.ErrCouponRequiresMultipleItems {
			return nil, domain.Validationf("this coupon needs at least two items in the cart")
		}
		return nil, domain.Validationf("%v", err)
	}

	if err := uc.couponRepo.SetActive(ctx, &domain.ActiveCoupon{
		UserID:    userID,
		CouponID:  coupon.ID,
		Code:      coupon.Code,
		AppliedAt: time.Now(),
	}); err != nil {
		return nil, err
	}

	return &ApplyCouponResp{
		Code:           coupon.Code,
		Type:           coupon.Type,
		DiscountAmount: quote.Discount.InexactFloat64(),
		NewTotal:       quote.FinalAmount.InexactFloat64(),
	}, nil
}

func (uc *CouponUsecase) Remove(ctx context.Context, userID string) error {
	return uc.couponRepo.ClearActive(ctx, userID)
}

// --- Admin CRUD ---

type CouponReq struct {
	Code             string   `json:"code"`
	Type             string   `json:"type"`
	Value            float64  `json:"value"`
	MinOrder         float64  `json:"minOrder"`
	MaxDiscount      *float64 `json:"maxDiscount"`
	ExpiresAt        string   `json:"expiresAt"` // RFC3339
	UsageLimit       int      `json:"usageLimit"`
	IsPremium        bool     `json:"isPremium"`
	PremiumAllowList []string `json:"premiumAllowList"`
}

func (uc *CouponUsecase) validateReq(ctx context.Context, req *CouponReq, excludeID uuid.UUID) (*domain.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, domain.Validationf("coupon code is required")
	}

	valid := false
	for _, t := range domain.CouponTypes {
		if req.Type == t {
			valid = true
			break
		}
	}
	if !valid {
		return nil, domain.Validationf("coupon type must be one of %v", domain.CouponTypes)
	}

	if req.Type != domain.CouponTypeShipping && req.Type != domain.CouponTypeBOGO {
		if req.Value <= 0 {
			return nil, domain.Validationf("coupon value must be greater than 0")
		}
	}
	if req.Type == domain.CouponTypePercentage {
		if req.Value > 100 {
			return nil, domain.Validationf("percentage discount cannot exceed 100")
		}
		// A full-discount coupon must cap at exactly the minimum order value,
		// otherwise it zeroes arbitrarily large carts.
		if req.Value == 100 {
			if req.MaxDiscount == nil || *req.MaxDiscount != req.MinOrder {
				return nil, domain.Validationf("a 100%% coupon must cap its discount at the minimum order value")
			}
		}
	}
	if req.Type == domain.CouponTypeFixed && req.MaxDiscount != nil && *req.MaxDiscount < req.Value {
		return nil, domain.Validationf("maximum discount cannot be below the coupon value")
	}

	expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
	if err != nil {
		return nil, domain.Validationf("expiresAt must be RFC3339")
	}
	if !expiresAt.After(time.Now()) {
		return nil, domain.Validationf("expiry must be in the future")
	}

	if req.UsageLimit < 1 {
		return nil, domain.Validationf("usage limit must be at least 1")
	}

	// Unlisted coupons still hold their code: redeemed history references it.
	if existing, err := uc.couponRepo.GetByCodeAny(ctx, code); err == nil && existing.ID != excludeID {
		return nil, domain.Validationf("coupon code %s already exists", code)
	}

	allowList := req.PremiumAllowList
	if allowList == nil {
		allowList = []string{}
	}

	return &domain.Coupon{
		Code:             code,
		Type:             req.Type,
		Value:            req.Value,
		MinOrder:         req.MinOrder,
		MaxDiscount:      req.MaxDiscount,
		ExpiresAt:        expiresAt,
		UsageLimit:       req.UsageLimit,
		IsPremium:        req.IsPremium,
		PremiumAllowList: allowList,
	}, nil
}

func (uc *CouponUsecase) Create(ctx context.Context, req CouponReq) (*domain.Coupon, error) {
	coupon, err := uc.validateReq(ctx, &req, uuid.Nil)
	if err != nil {
		return nil, err
	}
	coupon.ID = uuid.New()
	coupon.Listed = true
	coupon.UsedBy = []string{}

	if err := uc.couponRepo.Create(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (uc *CouponUsecase) Get(ctx context.Context, id string) (*domain.Coupon, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.Validationf("invalid coupon id")
	}
	return uc.couponRepo.GetByID(ctx, uid)
}

func (uc *CouponUsecase) List(ctx context.Context, limit, offset int) ([]domain.Coupon, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	coupons, err := uc.couponRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.couponRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}

func (uc *CouponUsecase) Update(ctx context.Context, id string, req CouponReq) (*domain.Coupon, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.Validationf("invalid coupon id")
	}
	existing, err := uc.couponRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	coupon, err := uc.validateReq(ctx, &req, uid)
	if err != nil {
		return nil, err
	}
	if coupon.UsageLimit < existing.UsedCount {
		return nil, domain.Validationf("usage limit cannot be below the %d redemptions already recorded", existing.UsedCount)
	}
	coupon.ID = uid

	if err := uc.couponRepo.Update(ctx, coupon); err != nil {
		return nil, err
	}
	uc.invalidate(existing.Code, coupon.Code)
	return uc.couponRepo.GetByID(ctx, uid)
}

// Toggle flips listing, hiding or re-surfacing the coupon for customers.
func (uc *CouponUsecase) Toggle(ctx context.Context, id string) (*domain.Coupon, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.Validationf("invalid coupon id")
	}
	coupon, err := uc.couponRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := uc.couponRepo.SetListed(ctx, uid, !coupon.Listed); err != nil {
		return nil, err
	}
	uc.invalidate(coupon.Code)
	coupon.Listed = !coupon.Listed
	return coupon, nil
}

// Delete is a soft delete: redeemed history must survive, so the coupon is
// unlisted rather than removed.
func (uc *CouponUsecase) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.Validationf("invalid coupon id")
	}
	coupon, err := uc.couponRepo.GetByID(ctx, uid)
	if err != nil {
		return err
	}
	if err := uc.couponRepo.SetListed(ctx, uid, false); err != nil {
		return err
	}
	uc.invalidate(coupon.Code)
	return nil
}

func (uc *CouponUsecase) invalidate(codes ...string) {
	for _, code := range codes {
		uc.cache.Delete("coupon:code:" + strings.ToUpper(code))
	}
}
