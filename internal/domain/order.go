package domain

import (
	"context"
	"time"
)

type OrderFilter struct {
	Page          int
	Limit         int
	Status        string
	PaymentStatus string
	PaymentMethod string
	Search        string
}

// --- Cart Entities ---

// Cart is the live cart checkout snapshots from. It is never settled
// directly: checkout reads it, prices it, and fans it out into orders.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type CartItem struct {
	ID        string  `json:"id"`
	CartID    string  `json:"cartId"`
	ProductID string  `json:"productId"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
}

// --- Order Entities ---

// OrderLine is the single product line an order carries, snapshotted at
// settlement time so later catalog edits cannot change historical orders.
type OrderLine struct {
	ProductID    string   `json:"productId"`
	Name         string   `json:"name"`
	Images       []string `json:"images"`
	Quantity     int      `json:"quantity"`
	UnitPrice    float64  `json:"unitPrice"`
	RegularPrice float64  `json:"regularPrice"`
}

// Order is one product line of a checkout. A multi-line cart fans out into
// several orders sharing a GroupID; the invariant
// FinalAmount = TotalPrice - Discount + DeliveryCharge holds per order.
type Order struct {
	ID      string `json:"id"`      // UUID
	OrderNo string `json:"orderNo"` // human-readable, unique
	GroupID string `json:"groupId"` // correlation key for one checkout
	UserID  string `json:"userId"`

	Item           OrderLine `json:"item"`
	TotalPrice     float64   `json:"totalPrice"` // unit price x quantity
	Discount       float64   `json:"discount"`   // this line's share
	DeliveryCharge float64   `json:"deliveryCharge"`
	FinalAmount    float64   `json:"finalAmount"`

	ShippingAddress JSONB  `json:"shippingAddress"`
	PaymentMethod   string `json:"paymentMethod"`
	PaymentStatus   string `json:"paymentStatus"`
	Status          string `json:"status"`
	RequestStatus   string `json:"requestStatus,omitempty"`

	CouponApplied bool   `json:"couponApplied"`
	CouponCode    string `json:"couponCode,omitempty"`

	GatewayOrderID   string `json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string `json:"gatewayPaymentId,omitempty"`

	CancelReason      string `json:"cancelReason,omitempty"`
	ReturnReason      string `json:"returnReason,omitempty"`
	ReturnDescription string `json:"returnDescription,omitempty"`
	RejectCategory    string `json:"rejectCategory,omitempty"`
	RejectMessage     string `json:"rejectMessage,omitempty"`

	RefundStatus string     `json:"refundStatus,omitempty"`
	RefundAmount float64    `json:"refundAmount,omitempty"`
	RefundDate   *time.Time `json:"refundDate,omitempty"`

	DeliveredOn *time.Time `json:"deliveredOn,omitempty"`
	CancelledOn *time.Time `json:"cancelledOn,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// OrderRepository persists orders and applies state transitions. Every
// transition method is a conditional update guarded by the expected current
// state; a concurrent conflicting transition affects zero rows and surfaces
// as a StateConflict error, never a silent overwrite.
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByGroupID(ctx context.Context, groupID string) ([]Order, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) ([]Order, error)
	GetByUserID(ctx context.Context, userID string) ([]Order, error)
	GetAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)

	// UpdateStatus moves an order to status when its current status is in
	// fromStatuses.
	UpdateStatus(ctx context.Context, id, status string, fromStatuses []string) error
	// MarkDelivered sets delivered status, delivered_on, and closes out the
	// payment (COD collects on delivery).
	MarkDelivered(ctx context.Context, id string, fromStatuses []string) error
	MarkCancelled(ctx context.Context, id, reason string, fromStatuses []string) error
	MarkReturnRequested(ctx context.Context, id, reason, description string) error
	// MarkReturnDecision records the admin decision on a pending return:
	// approved moves to returning, rejected reverts to delivered.
	MarkReturnDecision(ctx context.Context, id string, approved bool, category, message string) error
	MarkReturned(ctx context.Context, id string, refundAmount float64) error

	SetGatewayOrder(ctx context.Context, groupID, gatewayOrderID string) error
	// SetGroupPayment updates payment status (and captured payment id) for
	// every order in a checkout group.
	SetGroupPayment(ctx context.Context, groupID, paymentStatus, gatewayPaymentID string) error
	SetPaymentRefunded(ctx context.Context, id string, refundAmount float64) error

	// Cart
	GetCartByUserID(ctx context.Context, userID string) (*Cart, error)
	CreateCart(ctx context.Context, cart *Cart) error
	UpsertCartItem(ctx context.Context, cartID, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, userID, productID string) error
	ClearCart(ctx context.Context, cartID string) error
}
