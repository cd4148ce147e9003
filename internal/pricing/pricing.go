// Package pricing computes order money: subtotals, coupon discounts,
// shipping, and the proportional discount split across cart lines. It is
// pure: no I/O, deterministic for a given input.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Coupon types understood by the engine. Values mirror the persisted coupon
// records.
const (
	TypePercentage = "percentage"
	TypeFixed      = "fixed"
	TypeShipping   = "shipping"
	TypeBOGO       = "bogo"
)

var (
	ErrCouponIneligible            = errors.New("order subtotal below coupon minimum")
	ErrCouponRequiresMultipleItems = errors.New("coupon requires at least two items in the cart")
	ErrUnknownCouponType           = errors.New("unknown coupon type")
)

// LineItem is one cart line at checkout time.
type LineItem struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Total returns unit price x quantity.
func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Coupon is the resolved coupon view the engine prices with.
type Coupon struct {
	Type        string
	Value       decimal.Decimal
	MinOrder    decimal.Decimal
	MaxDiscount *decimal.Decimal // nil = uncapped
}

// Quote is the priced outcome of a cart + optional coupon + shipping charge.
type Quote struct {
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	DeliveryCharge decimal.Decimal
	FinalAmount    decimal.Decimal
	// LineDiscounts apportions Discount across the input lines,
	// proportionally to each line's share of the subtotal. Shares sum to
	// Discount exactly.
	LineDiscounts []decimal.Decimal
}

// Subtotal sums unit price x quantity over all lines.
func Subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Total())
	}
	return total
}

// Discount computes the coupon discount for the given subtotal and returns
// the (possibly zeroed) shipping charge alongside it.
func Discount(c *Coupon, subtotal decimal.Decimal, items []LineItem, shipping decimal.Decimal) (discount, adjustedShipping decimal.Decimal, err error) {
	if c == nil {
		return decimal.Zero, shipping, nil
	}
	if subtotal.LessThan(c.MinOrder) {
		return decimal.Zero, shipping, ErrCouponIneligible
	}

	switch c.Type {
	case TypePercentage:
		discount = subtotal.Mul(c.Value).Div(decimal.NewFromInt(100)).Round(2)
		discount = capDiscount(discount, c.MaxDiscount)
	case TypeFixed:
		discount = capDiscount(c.Value, c.MaxDiscount)
	case TypeShipping:
		discount = shipping
		shipping = decimal.Zero
	case TypeBOGO:
		if len(items) < 2 {
			return decimal.Zero, shipping, ErrCouponRequiresMultipleItems
		}
		discount = cheapestLine(items)
	default:
		return decimal.Zero, shipping, ErrUnknownCouponType
	}

	// A discount exceeding the subtotal would mint money on the fan-out.
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount, shipping, nil
}

// FinalAmount computes subtotal - discount + shipping, clamped at zero: no
// scenario produces a negative charge.
func FinalAmount(subtotal, discount, shipping decimal.Decimal) decimal.Decimal {
	final := subtotal.Sub(discount).Add(shipping)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}

// DistributeDiscount apportions total across lines proportionally to each
// line's share of the subtotal. Each non-final share is truncated to 2
// decimals, so the remainder landing on the last line is never negative and
// the shares sum to total exactly.
func DistributeDiscount(items []LineItem, total decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(items))
	if len(items) == 0 || total.IsZero() {
		return shares
	}

	subtotal := Subtotal(items)
	if subtotal.IsZero() {
		return shares
	}

	assigned := decimal.Zero
	for i, it := range items {
		if i == len(items)-1 {
			shares[i] = total.Sub(assigned)
			break
		}
		shares[i] = it.Total().Mul(total).Div(subtotal).Truncate(2)
		assigned = assigned.Add(shares[i])
	}
	return shares
}

// Price runs the full pipeline for a checkout: subtotal, discount, shipping
// adjustment, final amount, and per-line discount shares.
func Price(items []LineItem, c *Coupon, shipping decimal.Decimal) (*Quote, error) {
	subtotal := Subtotal(items)
	discount, shipping, err := Discount(c, subtotal, items, shipping)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Subtotal:       subtotal,
		Discount:       discount,
		DeliveryCharge: shipping,
		FinalAmount:    FinalAmount(subtotal, discount, shipping),
		LineDiscounts:  DistributeDiscount(items, discount),
	}, nil
}

// MinorUnits converts a decimal currency amount to gateway minor units
// (x100), rounding to the nearest unit.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func capDiscount(d decimal.Decimal, max *decimal.Decimal) decimal.Decimal {
	if max != nil && d.GreaterThan(*max) {
		return *max
	}
	return d
}

func cheapestLine(items []LineItem) decimal.Decimal {
	min := items[0].Total()
	for _, it := range items[1:] {
		if t := it.Total(); t.LessThan(min) {
			min = t
		}
	}
	return min
}
