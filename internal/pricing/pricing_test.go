package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func line(price string, qty int) LineItem {
	return LineItem{UnitPrice: d(price), Quantity: qty}
}

func TestSubtotal(t *testing.T) {
	items := []LineItem{line("500", 2), line("300", 1)}
	if got := Subtotal(items); !got.Equal(d("1300")) {
		t.Errorf("Subtotal = %s, want 1300", got)
	}
	if got := Subtotal(nil); !got.IsZero() {
		t.Errorf("Subtotal(nil) = %s, want 0", got)
	}
}

func TestDiscount(t *testing.T) {
	items := []LineItem{line("500", 2), line("300", 1)}
	subtotal := d("1300")
	shipping := d("50")
	max200 := d("200")
	max50 := d("50")

	tests := []struct {
		name         string
		coupon       *Coupon
		wantDiscount string
		wantShipping string
		wantErr      error
	}{
		{"nil coupon", nil, "0", "50", nil},
		{"percentage under cap", &Coupon{Type: TypePercentage, Value: d("10"), MaxDiscount: &max200}, "130", "50", nil},
		{"percentage hits cap", &Coupon{Type: TypePercentage, Value: d("50"), MaxDiscount: &max200}, "200", "50", nil},
		{"percentage uncapped", &Coupon{Type: TypePercentage, Value: d("50")}, "650", "50", nil},
		{"fixed", &Coupon{Type: TypeFixed, Value: d("100")}, "100", "50", nil},
		{"fixed capped", &Coupon{Type: TypeFixed, Value: d("100"), MaxDiscount: &max50}, "50", "50", nil},
		{"shipping", &Coupon{Type: TypeShipping}, "50", "0", nil},
		{"bogo cheapest line", &Coupon{Type: TypeBOGO}, "300", "50", nil},
		{"min order not met", &Coupon{Type: TypeFixed, Value: d("100"), MinOrder: d("2000")}, "0", "50", ErrCouponIneligible},
		{"unknown type", &Coupon{Type: "mystery"}, "0", "50", ErrUnknownCouponType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			discount, adjShipping, err := Discount(tt.coupon, subtotal, items, shipping)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !discount.Equal(d(tt.wantDiscount)) {
				t.Errorf("discount = %s, want %s", discount, tt.wantDiscount)
			}
			if !adjShipping.Equal(d(tt.wantShipping)) {
				t.Errorf("shipping = %s, want %s", adjShipping, tt.wantShipping)
			}
		})
	}
}

func TestDiscountBOGOSingleItem(t *testing.T) {
	items := []LineItem{line("500", 2)}
	_, _, err := Discount(&Coupon{Type: TypeBOGO}, d("1000"), items, d("50"))
	if !errors.Is(err, ErrCouponRequiresMultipleItems) {
		t.Fatalf("err = %v, want ErrCouponRequiresMultipleItems", err)
	}
}

func TestDiscountNeverExceedsSubtotal(t *testing.T) {
	items := []LineItem{line("10", 1), line("20", 1)}
	discount, _, err := Discount(&Coupon{Type: TypeFixed, Value: d("500")}, d("30"), items, d("50"))
	if err != nil {
		t.Fatal(err)
	}
	if !discount.Equal(d("30")) {
		t.Errorf("discount = %s, want clamp to subtotal 30", discount)
	}
}

func TestFinalAmount(t *testing.T) {
	if got := FinalAmount(d("1300"), d("130"), d("50")); !got.Equal(d("1220")) {
		t.Errorf("FinalAmount = %s, want 1220", got)
	}
	// Clamped at zero, never negative money.
	if got := FinalAmount(d("100"), d("200"), d("0")); !got.IsZero() {
		t.Errorf("FinalAmount = %s, want 0", got)
	}
}

func TestDistributeDiscountProportional(t *testing.T) {
	items := []LineItem{line("500", 2), line("300", 1)}
	shares := DistributeDiscount(items, d("130"))
	if len(shares) != 2 {
		t.Fatalf("len(shares) = %d, want 2", len(shares))
	}
	if !shares[0].Equal(d("100")) {
		t.Errorf("shares[0] = %s, want 100", shares[0])
	}
	if !shares[1].Equal(d("30")) {
		t.Errorf("shares[1] = %s, want 30", shares[1])
	}
}

func TestDistributeDiscountSumsExactly(t *testing.T) {
	// 3-way split of 100 over equal lines cannot round cleanly; the
	// remainder must land on the last line so the sum is exact.
	items := []LineItem{line("10", 1), line("10", 1), line("10", 1)}
	total := d("100")
	shares := DistributeDiscount(items, total)

	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s)
	}
	if !sum.Equal(total) {
		t.Errorf("sum of shares = %s, want %s", sum, total)
	}
}

func TestDistributeDiscountManySmallLinesStaysNonNegative(t *testing.T) {
	// 200 equal lines splitting 1.00: each exact share is 0.005, so rounding
	// shares up line by line would drive the final share below zero.
	items := make([]LineItem, 200)
	for i := range items {
		items[i] = line("0.10", 1)
	}
	total := d("1.00")
	shares := DistributeDiscount(items, total)

	sum := decimal.Zero
	for i, s := range shares {
		if s.IsNegative() {
			t.Errorf("shares[%d] = %s, want >= 0", i, s)
		}
		sum = sum.Add(s)
	}
	if !sum.Equal(total) {
		t.Errorf("sum of shares = %s, want %s", sum, total)
	}
}

func TestDistributeDiscountEdges(t *testing.T) {
	if shares := DistributeDiscount(nil, d("10")); len(shares) != 0 {
		t.Errorf("expected no shares for empty items")
	}
	shares := DistributeDiscount([]LineItem{line("10", 1)}, decimal.Zero)
	if !shares[0].IsZero() {
		t.Errorf("zero discount should yield zero shares")
	}
}

func TestPriceEndToEnd(t *testing.T) {
	// Reference scenario: cart [{500 x2},{300 x1}], 10% coupon capped at
	// 200, shipping 50 => subtotal 1300, discount 130, final 1220,
	// line shares 100 and 30.
	items := []LineItem{line("500", 2), line("300", 1)}
	max := d("200")
	q, err := Price(items, &Coupon{Type: TypePercentage, Value: d("10"), MaxDiscount: &max}, d("50"))
	if err != nil {
		t.Fatal(err)
	}
	if !q.Subtotal.Equal(d("1300")) || !q.Discount.Equal(d("130")) || !q.FinalAmount.Equal(d("1220")) {
		t.Errorf("quote = %s/%s/%s, want 1300/130/1220", q.Subtotal, q.Discount, q.FinalAmount)
	}
	if !q.LineDiscounts[0].Equal(d("100")) || !q.LineDiscounts[1].Equal(d("30")) {
		t.Errorf("line discounts = %s/%s, want 100/30", q.LineDiscounts[0], q.LineDiscounts[1])
	}

	// Invariant: final = subtotal - discount + delivery.
	if !q.FinalAmount.Equal(q.Subtotal.Sub(q.Discount).Add(q.DeliveryCharge)) {
		t.Error("final amount identity violated")
	}
}

func TestMinorUnits(t *testing.T) {
	if got := MinorUnits(d("1220")); got != 122000 {
		t.Errorf("MinorUnits(1220) = %d, want 122000", got)
	}
	if got := MinorUnits(d("10.55")); got != 1055 {
		t.Errorf("MinorUnits(10.55) = %d, want 1055", got)
	}
}
