package usecase

import (
	"context"
	"log/slog"
	"time"

	"litmart-backend/internal/domain"
	"litmart-backend/internal/pricing"
	"litmart-backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// WalletUsecase owns the wallet ledger and its gateway-backed top-up flow.
type WalletUsecase struct {
	walletRepo domain.WalletRepository
	gateway    domain.PaymentGateway
	currency   string
}

func NewWalletUsecase(walletRepo domain.WalletRepository, gateway domain.PaymentGateway, currency string) *WalletUsecase {
	return &WalletUsecase{
		walletRepo: walletRepo,
		gateway:    gateway,
		currency:   currency,
	}
}

func (u *WalletUsecase) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	return u.walletRepo.GetOrCreate(ctx, userID)
}

func (u *WalletUsecase) Transactions(ctx context.Context, userID string, limit, offset int) ([]domain.WalletTransaction, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return u.walletRepo.Transactions(ctx, userID, limit, offset)
}

// CreateTopupOrder opens a gateway order for a wallet top-up. Nothing is
// credited until the payment verifies.
func (u *WalletUsecase) CreateTopupOrder(ctx context.Context, userID string, amount float64) (*domain.PaymentIntent, error) {
	if amount <= 0 {
		return nil, domain.Validationf("top-up amount must be positive")
	}

	receipt := utils.GenerateReceipt("wtu", time.Now())
	return u.gateway.CreateOrder(ctx, pricing.MinorUnits(decimal.NewFromFloat(amount)), u.currency, receipt,
		map[string]string{"userId": userID, "purpose": domain.PurposeWalletTopup})
}

// VerifyTopup checks the callback signature, cross-checks the captured
// payment at the gateway, and credits the wallet with the captured amount.
func (u *WalletUsecase) VerifyTopup(ctx context.Context, userID, gatewayOrderID, paymentID, signature string) (*domain.Wallet, error) {
	if !u.gateway.VerifySignature(gatewayOrderID, paymentID, signature) {
		slog.Warn("wallet top-up signature rejected", "user_id", userID, "gateway_order_id", gatewayOrderID)
		return nil, domain.Externalf("payment verification failed")
	}

	payment, err := u.gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.OrderID != gatewayOrderID {
		return nil, domain.Externalf("payment does not belong to this order")
	}

	amount := decimal.NewFromInt(payment.Amount).Div(decimal.NewFromInt(100)).InexactFloat64()
	wallet, err := u.walletRepo.Credit(ctx, userID, amount, domain.PurposeWalletTopup, paymentID)
	if err != nil {
		return nil, err
	}

	slog.Info("wallet topped up", "user_id", userID, "amount", amount, "payment_id", paymentID)
	return wallet, nil
}

// Withdraw debits the wallet; the conditional update rejects overdrafts.
func (u *WalletUsecase) Withdraw(ctx context.Context, userID string, amount float64) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, domain.Validationf("withdrawal amount must be positive")
	}
	return u.walletRepo.Debit(ctx, userID, amount, domain.PurposeWalletWithdrawal, utils.GenerateReceipt("wdr", time.Now()))
}
