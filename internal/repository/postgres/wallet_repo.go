package pgrepo

import (
	"context"

	"litmart-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type walletRepository struct {
	db *pgxpool.Pool
}

func NewWalletRepository(db *pgxpool.Pool) domain.WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) GetOrCreate(ctx context.Context, userID string) (*domain.Wallet, error) {
	q := executor(ctx, r.db)

	// DO UPDATE so the RETURNING clause fires on conflict as well.
	var w domain.Wallet
	err := q.QueryRow(ctx, `
		INSERT INTO wallets (id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, balance, refund_amount, total_debited, created_at, updated_at`,
		uuid.NewString(), userID).
		Scan(&w.ID, &w.UserID, &w.Balance, &w.RefundAmount, &w.TotalDebited, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Credit adds to the balance and records the ledger entry in one
// transaction: the balance never moves without its wallet_transactions row.
func (r *walletRepository) Credit(ctx context.Context, userID string, amount float64, purpose, referenceID string) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, domain.Validationf("credit amount must be positive")
	}

	var refundBump float64
	if purpose == domain.PurposeOrderRefund {
		refundBump = amount
	}

	var w domain.Wallet
	err := withTx(ctx, r.db, func(ctx context.Context) error {
		q := executor(ctx, r.db)

		wallet, err := r.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}

		err = q.QueryRow(ctx, `
			UPDATE wallets
			SET balance = balance + $2, refund_amount = refund_amount + $3, updated_at = now()
			WHERE id = $1
			RETURNING id, user_id, balance, refund_amount, total_debited, created_at, updated_at`,
			wallet.ID, amount, refundBump).
			Scan(&w.ID, &w.UserID, &w.Balance, &w.RefundAmount, &w.TotalDebited, &w.CreatedAt, &w.UpdatedAt)
		if err != nil {
			return err
		}

		return r.insertTxn(ctx, w.ID, amount, domain.TxnTypeCredit, purpose, referenceID)
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Debit withdraws from the balance and records the ledger entry in one
// transaction.
func (r *walletRepository) Debit(ctx context.Context, userID string, amount float64, purpose, referenceID string) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, domain.Validationf("debit amount must be positive")
	}

	var w domain.Wallet
	err := withTx(ctx, r.db, func(ctx context.Context) error {
		q := executor(ctx, r.db)

		wallet, err := r.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}

		// The balance guard lives in the statement itself: a concurrent debit
		// that would overdraw affects zero rows instead of racing a
		// read-then-write.
		tag, err := q.Exec(ctx, `
			UPDATE wallets
			SET balance = balance - $2, total_debited = total_debited + $2, updated_at = now()
			WHERE id = $1 AND balance >= $2`, wallet.ID, amount)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.StateConflictf("insufficient wallet balance")
		}

		if err := r.insertTxn(ctx, wallet.ID, amount, domain.TxnTypeDebit, purpose, referenceID); err != nil {
			return err
		}

		return q.QueryRow(ctx, `
			SELECT id, user_id, balance, refund_amount, total_debited, created_at, updated_at
			FROM wallets WHERE id = $1`, wallet.ID).
			Scan(&w.ID, &w.UserID, &w.Balance, &w.RefundAmount, &w.TotalDebited, &w.CreatedAt, &w.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *walletRepository) insertTxn(ctx context.Context, walletID uuid.UUID, amount float64, txnType, purpose, referenceID string) error {
	q := executor(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO wallet_transactions (id, wallet_id, amount, type, purpose, reference_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.NewString(), walletID, amount, txnType, purpose, referenceID, domain.TxnStatusCompleted)
	return err
}

func (r *walletRepository) Transactions(ctx context.Context, userID string, limit, offset int) ([]domain.WalletTransaction, error) {
	q := executor(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT t.id, t.wallet_id, t.amount, t.type, t.purpose, t.reference_id, t.status, t.created_at
		FROM wallet_transactions t
		JOIN wallets w ON w.id = t.wallet_id
		WHERE w.user_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := []domain.WalletTransaction{}
	for rows.Next() {
		var t domain.WalletTransaction
		if err := rows.Scan(&t.ID, &t.WalletID, &t.Amount, &t.Type, &t.Purpose, &t.ReferenceID, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}
