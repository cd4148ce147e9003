package usecase

import (
	"context"
	"testing"
	"time"

	"litmart-backend/internal/domain"

	"github.com/google/uuid"
)

func newCouponEnv() (*CouponUsecase, *fakeCouponRepo, *fakeOrderRepo, *fakeProductRepo) {
	products := newFakeProductRepo()
	products.products["p1"] = &domain.Product{
		ID: "p1", Name: "Keyboard", Price: 500, Stock: 10, IsActive: true,
	}
	orders := newFakeOrderRepo(products)
	coupons := newFakeCouponRepo()
	uc := NewCouponUsecase(coupons, orders, newFakeCache())
	return uc, coupons, orders, products
}

func validReq() CouponReq {
	return CouponReq{
		Code:       "save10",
		Type:       domain.CouponTypePercentage,
		Value:      10,
		MinOrder:   100,
		ExpiresAt:  time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		UsageLimit: 5,
	}
}

func TestCreateCouponNormalizesCode(t *testing.T) {
	uc, _, _, _ := newCouponEnv()

	coupon, err := uc.Create(context.Background(), validReq())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if coupon.Code != "SAVE10" {
		t.Errorf("code = %q, want SAVE10", coupon.Code)
	}
	if !coupon.Listed {
		t.Error("new coupons must be listed")
	}
}

func TestCreateCouponValidation(t *testing.T) {
	uc, _, _, _ := newCouponEnv()
	ctx := context.Background()

	cap150 := 150.0
	cap50 := 50.0

	cases := []struct {
		name   string
		mutate func(*CouponReq)
	}{
		{"empty code", func(r *CouponReq) { r.Code = "  " }},
		{"unknown type", func(r *CouponReq) { r.Type = "loyalty" }},
		{"zero value", func(r *CouponReq) { r.Value = 0 }},
		{"negative value", func(r *CouponReq) { r.Value = -5 }},
		{"percentage above 100", func(r *CouponReq) { r.Value = 120 }},
		{"full discount without cap", func(r *CouponReq) { r.Value = 100; r.MaxDiscount = nil }},
		{"full discount cap not at min order", func(r *CouponReq) { r.Value = 100; r.MaxDiscount = &cap150 }},
		{"fixed cap below value", func(r *CouponReq) {
			r.Type = domain.CouponTypeFixed
			r.Value = 100
			r.MaxDiscount = &cap50
		}},
		{"past expiry", func(r *CouponReq) { r.ExpiresAt = time.Now().Add(-time.Hour).Format(time.RFC3339) }},
		{"bad expiry format", func(r *CouponReq) { r.ExpiresAt = "tomorrow" }},
		{"zero usage limit", func(r *CouponReq) { r.UsageLimit = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validReq()
			tc.mutate(&req)
			if _, err := uc.Create(ctx, req); domain.KindOf(err) != domain.KindValidation {
				t.Errorf("error = %v, want validation", err)
			}
		})
	}
}

func TestCreateCouponRejectsDuplicateCode(t *testing.T) {
	uc, _, _, _ := newCouponEnv()
	ctx := context.Background()

	if _, err := uc.Create(ctx, validReq()); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := uc.Create(ctx, validReq()); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("duplicate create = %v, want validation", err)
	}
}

func TestCreateCouponRejectsSoftDeletedCode(t *testing.T) {
	uc, _, _, _ := newCouponEnv()
	ctx := context.Background()

	coupon, err := uc.Create(ctx, validReq())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := uc.Delete(ctx, coupon.ID.String()); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// The unlisted record still owns the code; reusing it must fail as a
	// validation error, not bubble up a unique-constraint violation.
	if _, err := uc.Create(ctx, validReq()); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("create over soft-deleted code = %v, want validation", err)
	}
}

func TestUpdateCouponCannotShrinkUsageLimitBelowRedemptions(t *testing.T) {
	uc, coupons, _, _ := newCouponEnv()
	ctx := context.Background()

	coupon, err := uc.Create(ctx, validReq())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := coupons.MarkUsed(ctx, coupon.ID, "u1"); err != nil {
		t.Fatalf("MarkUsed u1: %v", err)
	}
	if _, err := coupons.MarkUsed(ctx, coupon.ID, "u2"); err != nil {
		t.Fatalf("MarkUsed u2: %v", err)
	}

	req := validReq()
	req.UsageLimit = 1
	if _, err := uc.Update(ctx, coupon.ID.String(), req); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("limit below redemptions = %v, want validation", err)
	}

	req.UsageLimit = 2
	if _, err := uc.Update(ctx, coupon.ID.String(), req); err != nil {
		t.Fatalf("limit at redemptions: %v", err)
	}
}

func TestUpdateCouponKeepsOwnCode(t *testing.T) {
	uc, _, _, _ := newCouponEnv()
	ctx := context.Background()

	coupon, err := uc.Create(ctx, validReq())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := validReq()
	req.Value = 15
	updated, err := uc.Update(ctx, coupon.ID.String(), req)
	if err != nil {
		t.Fatalf("Update with unchanged code: %v", err)
	}
	if updated.Value != 15 {
		t.Errorf("value = %.0f, want 15", updated.Value)
	}
}

func TestApplyCouponPinsActiveCoupon(t *testing.T) {
	uc, coupons, orders, _ := newCouponEnv()
	ctx := context.Background()

	cart := &domain.Cart{ID: "c1", UserID: "u1"}
	orders.CreateCart(ctx, cart)
	orders.UpsertCartItem(ctx, "c1", "p1", 2) // subtotal 1000

	if _, err := uc.Create(ctx, validReq()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	resp, err := uc.Apply(ctx, "u1", "save10", 50)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if resp.DiscountAmount != 100 {
		t.Errorf("discount = %.2f, want 100", resp.DiscountAmount)
	}
	if resp.NewTotal != 950 { // 1000 - 100 + 50 delivery
		t.Errorf("new total = %.2f, want 950", resp.NewTotal)
	}

	active, _ := coupons.GetActive(ctx, "u1")
	if active == nil || active.Code != "SAVE10" {
		t.Fatalf("active coupon = %+v, want SAVE10", active)
	}

	if err := uc.Remove(ctx, "u1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if active, _ := coupons.GetActive(ctx, "u1"); active != nil {
		t.Error("active coupon not cleared")
	}
}

func TestValidateRejectsUsedAndIneligible(t *testing.T) {
	uc, coupons, _, _ := newCouponEnv()
	ctx := context.Background()

	used := &domain.Coupon{
		ID: uuid.New(), Code: "ONCE", Type: domain.CouponTypeFixed, Value: 50,
		ExpiresAt: time.Now().Add(time.Hour), UsageLimit: 5, Listed: true,
		UsedBy: []string{"u1"}, UsedCount: 1,
	}
	coupons.Create(ctx, used)
	if _, err := uc.Validate(ctx, "ONCE", "u1", 500); domain.KindOf(err) != domain.KindStateConflict {
		t.Errorf("used coupon = %v, want state conflict", err)
	}
	if _, err := uc.Validate(ctx, "ONCE", "u2", 500); err != nil {
		t.Errorf("unused user rejected: %v", err)
	}

	exhausted := &domain.Coupon{
		ID: uuid.New(), Code: "FULL", Type: domain.CouponTypeFixed, Value: 50,
		ExpiresAt: time.Now().Add(time.Hour), UsageLimit: 1, UsedCount: 1, Listed: true,
		UsedBy: []string{"someone-else"},
	}
	coupons.Create(ctx, exhausted)
	if _, err := uc.Validate(ctx, "FULL", "u1", 500); domain.KindOf(err) != domain.KindStateConflict {
		t.Errorf("exhausted coupon = %v, want state conflict", err)
	}

	premium := &domain.Coupon{
		ID: uuid.New(), Code: "VIP", Type: domain.CouponTypeFixed, Value: 50,
		ExpiresAt: time.Now().Add(time.Hour), UsageLimit: 5, Listed: true,
		IsPremium: true, PremiumAllowList: []string{"u9"},
	}
	coupons.Create(ctx, premium)
	if _, err := uc.Validate(ctx, "VIP", "u1", 500); domain.KindOf(err) != domain.KindValidation {
		t.Errorf("premium coupon for outsider = %v, want validation", err)
	}
	if _, err := uc.Validate(ctx, "VIP", "u9", 500); err != nil {
		t.Errorf("allow-listed user rejected: %v", err)
	}

	minOrder := &domain.Coupon{
		ID: uuid.New(), Code: "BIG", Type: domain.CouponTypeFixed, Value: 50, MinOrder: 1000,
		ExpiresAt: time.Now().Add(time.Hour), UsageLimit: 5, Listed: true,
	}
	coupons.Create(ctx, minOrder)
	if _, err := uc.Validate(ctx, "BIG", "u1", 500); domain.KindOf(err) != domain.KindValidation {
		t.Errorf("below minimum = %v, want validation", err)
	}
}

func TestToggleAndSoftDelete(t *testing.T) {
	uc, coupons, _, _ := newCouponEnv()
	ctx := context.Background()

	coupon, err := uc.Create(ctx, validReq())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	toggled, err := uc.Toggle(ctx, coupon.ID.String())
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if toggled.Listed {
		t.Error("toggle should unlist a listed coupon")
	}
	if _, err := uc.Validate(ctx, "SAVE10", "u1", 500); domain.KindOf(err) != domain.KindValidation {
		t.Errorf("unlisted coupon should not resolve, got %v", err)
	}

	if _, err := uc.Toggle(ctx, coupon.ID.String()); err != nil {
		t.Fatalf("Toggle back: %v", err)
	}
	if err := uc.Delete(ctx, coupon.ID.String()); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// Soft delete: the record survives, unlisted.
	stored, err := coupons.GetByID(ctx, coupon.ID)
	if err != nil {
		t.Fatalf("deleted coupon gone from store: %v", err)
	}
	if stored.Listed {
		t.Error("deleted coupon still listed")
	}
}
