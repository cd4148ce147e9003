package usecase

import (
	"context"
	"testing"

	"litmart-backend/internal/domain"
)

func newWalletEnv() (*WalletUsecase, *fakeWalletRepo, *fakeGateway) {
	wallets := newFakeWalletRepo()
	gateway := &fakeGateway{validSig: "good-sig"}
	return NewWalletUsecase(wallets, gateway, "INR"), wallets, gateway
}

func TestGetWalletLazilyCreates(t *testing.T) {
	uc, _, _ := newWalletEnv()

	w, err := uc.GetWallet(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetWallet: %v", err)
	}
	if w.Balance != 0 || w.UserID != "u1" {
		t.Errorf("fresh wallet = %+v", w)
	}
}

func TestWithdrawInsufficientBalanceLeavesWalletUnchanged(t *testing.T) {
	uc, wallets, _ := newWalletEnv()
	ctx := context.Background()
	wallets.Credit(ctx, "u1", 40, domain.PurposeWalletTopup, "seed")

	_, err := uc.Withdraw(ctx, "u1", 50)
	if domain.KindOf(err) != domain.KindStateConflict {
		t.Fatalf("error = %v, want state conflict", err)
	}

	w, _ := wallets.GetOrCreate(ctx, "u1")
	if w.Balance != 40 {
		t.Errorf("balance = %.2f, want 40 untouched", w.Balance)
	}
}

func TestWithdrawDebitsWallet(t *testing.T) {
	uc, wallets, _ := newWalletEnv()
	ctx := context.Background()
	wallets.Credit(ctx, "u1", 500, domain.PurposeWalletTopup, "seed")

	w, err := uc.Withdraw(ctx, "u1", 200)
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if w.Balance != 300 || w.TotalDebited != 200 {
		t.Errorf("wallet = %+v, want balance 300 / debited 200", w)
	}

	if _, err := uc.Withdraw(ctx, "u1", 0); domain.KindOf(err) != domain.KindValidation {
		t.Errorf("zero withdrawal = %v, want validation", err)
	}
}

func TestCreateTopupOrderUsesMinorUnits(t *testing.T) {
	uc, _, gateway := newWalletEnv()
	gateway.nextOrderID = "order_topup"

	intent, err := uc.CreateTopupOrder(context.Background(), "u1", 250.50)
	if err != nil {
		t.Fatalf("CreateTopupOrder: %v", err)
	}
	if intent.Amount != 25050 {
		t.Errorf("amount = %d, want 25050", intent.Amount)
	}
	if intent.Currency != "INR" {
		t.Errorf("currency = %q", intent.Currency)
	}

	if _, err := uc.CreateTopupOrder(context.Background(), "u1", -5); domain.KindOf(err) != domain.KindValidation {
		t.Errorf("negative top-up = %v, want validation", err)
	}
}

func TestVerifyTopupCreditsCapturedAmount(t *testing.T) {
	uc, wallets, gateway := newWalletEnv()
	ctx := context.Background()
	gateway.payment = &domain.PaymentInfo{
		ID: "pay_1", OrderID: "order_topup", Status: "captured", Amount: 50000,
	}

	w, err := uc.VerifyTopup(ctx, "u1", "order_topup", "pay_1", "good-sig")
	if err != nil {
		t.Fatalf("VerifyTopup: %v", err)
	}
	if w.Balance != 500 {
		t.Errorf("balance = %.2f, want 500", w.Balance)
	}

	txns, _ := wallets.Transactions(ctx, "u1", 10, 0)
	if len(txns) != 1 || txns[0].Purpose != domain.PurposeWalletTopup {
		t.Errorf("transactions = %+v", txns)
	}
}

func TestVerifyTopupRejectsBadSignature(t *testing.T) {
	uc, wallets, _ := newWalletEnv()
	ctx := context.Background()

	_, err := uc.VerifyTopup(ctx, "u1", "order_topup", "pay_1", "forged")
	if domain.KindOf(err) != domain.KindExternal {
		t.Fatalf("error = %v, want external", err)
	}
	w, _ := wallets.GetOrCreate(ctx, "u1")
	if w.Balance != 0 {
		t.Errorf("balance = %.2f after rejected top-up", w.Balance)
	}
}

func TestVerifyTopupRejectsMismatchedOrder(t *testing.T) {
	uc, _, gateway := newWalletEnv()
	gateway.payment = &domain.PaymentInfo{
		ID: "pay_1", OrderID: "order_other", Status: "captured", Amount: 50000,
	}

	_, err := uc.VerifyTopup(context.Background(), "u1", "order_topup", "pay_1", "good-sig")
	if domain.KindOf(err) != domain.KindExternal {
		t.Fatalf("error = %v, want external", err)
	}
}
