package domain

import "context"

// PaymentIntent is a payment order created at the external gateway. Amounts
// cross this boundary in minor units (paise) per gateway convention.
type PaymentIntent struct {
	OrderID  string `json:"orderId"` // gateway-side order id
	Amount   int64  `json:"amount"`  // minor units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// PaymentInfo is the gateway's view of a captured payment.
type PaymentInfo struct {
	ID      string `json:"id"`
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	Amount  int64  `json:"amount"` // minor units
}

// PaymentGateway is the external collaborator boundary for online payments.
// Implementations are injected once at process start; the settlement engine
// never reaches for a global client.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*PaymentIntent, error)
	FetchPayment(ctx context.Context, paymentID string) (*PaymentInfo, error)

	// VerifySignature checks the HMAC-SHA256 callback signature over
	// "orderID|paymentID" in constant time.
	VerifySignature(orderID, paymentID, signature string) bool
}
