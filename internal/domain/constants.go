package domain

// Order Statuses
const (
	OrderStatusPending         = "pending"
	OrderStatusConfirmed       = "confirmed"
	OrderStatusShipped         = "shipped"
	OrderStatusDelivered       = "delivered"
	OrderStatusCancelled       = "cancelled"
	OrderStatusReturnRequested = "return_requested"
	OrderStatusReturning       = "returning"
	OrderStatusReturned        = "returned"
)

// Return Request Statuses
const (
	RequestStatusNone     = ""
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// Payment Statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Payment Methods
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
	PaymentMethodWallet = "wallet"
)

// Refund Statuses
const (
	RefundStatusNone      = ""
	RefundStatusPending   = "pending"
	RefundStatusCompleted = "completed"
)

// Coupon Types
const (
	CouponTypePercentage = "percentage"
	CouponTypeFixed      = "fixed"
	CouponTypeShipping   = "shipping"
	CouponTypeBOGO       = "bogo"
)

// Wallet Transaction Types
const (
	TxnTypeCredit = "credit"
	TxnTypeDebit  = "debit"
)

// Wallet Transaction Purposes
const (
	PurposeOrderPayment     = "order_payment"
	PurposeOrderRefund      = "order_refund"
	PurposeWalletTopup      = "wallet_topup"
	PurposeWalletWithdrawal = "wallet_withdrawal"
)

// Wallet Transaction Statuses
const (
	TxnStatusCompleted = "completed"
)

// List Exports for API
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturnRequested,
	OrderStatusReturning,
	OrderStatusReturned,
}

// AdminAssignableStatuses are the forward lifecycle values an admin may set
// directly via the status endpoint. Monotonic progression is deliberately not
// enforced; cancellation and the return sub-flow move through their own
// endpoints.
var AdminAssignableStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
}

var PaymentMethods = []string{
	PaymentMethodCOD,
	PaymentMethodOnline,
	PaymentMethodWallet,
}

var PaymentStatuses = []string{
	PaymentStatusPending,
	PaymentStatusCompleted,
	PaymentStatusFailed,
	PaymentStatusRefunded,
}

var CouponTypes = []string{
	CouponTypePercentage,
	CouponTypeFixed,
	CouponTypeShipping,
	CouponTypeBOGO,
}

// cancellableStatuses is the set of order states a cancel may start from.
// Delivered and all return states are final with respect to cancellation.
var cancellableStatuses = map[string]bool{
	OrderStatusPending:   true,
	OrderStatusConfirmed: true,
	OrderStatusShipped:   true,
}

// CanCancel reports whether an order in the given status may be cancelled.
func CanCancel(status string) bool {
	return cancellableStatuses[status]
}

// CanAdminAssign reports whether the given status is a valid admin target.
func CanAdminAssign(status string) bool {
	for _, s := range AdminAssignableStatuses {
		if s == status {
			return true
		}
	}
	return false
}
