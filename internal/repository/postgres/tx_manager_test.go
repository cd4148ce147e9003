package pgrepo

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

type stubTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *stubTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *stubTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

type stubBeginner struct {
	begun int
	tx    *stubTx
}

func (b *stubBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	b.begun++
	b.tx = &stubTx{}
	return b.tx, nil
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	db := &stubBeginner{}

	err := withTx(context.Background(), db, func(ctx context.Context) error {
		if _, ok := ctx.Value(txKey{}).(pgx.Tx); !ok {
			t.Error("fn context does not carry the opened transaction")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if db.begun != 1 {
		t.Errorf("begun = %d, want 1", db.begun)
	}
	if !db.tx.committed || db.tx.rolledBack {
		t.Errorf("committed=%v rolledBack=%v, want committed only", db.tx.committed, db.tx.rolledBack)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := &stubBeginner{}
	boom := errors.New("boom")

	err := withTx(context.Background(), db, func(ctx context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if !db.tx.rolledBack || db.tx.committed {
		t.Errorf("committed=%v rolledBack=%v, want rolled back only", db.tx.committed, db.tx.rolledBack)
	}
}

func TestWithTxJoinsBoundTransaction(t *testing.T) {
	db := &stubBeginner{}
	outer := &stubTx{}
	ctx := context.WithValue(context.Background(), txKey{}, pgx.Tx(outer))

	err := withTx(ctx, db, func(ctx context.Context) error {
		if got, _ := ctx.Value(txKey{}).(pgx.Tx); got != pgx.Tx(outer) {
			t.Error("fn context lost the caller's transaction")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	// The caller owns the outer transaction: no begin, no commit, no rollback.
	if db.begun != 0 {
		t.Errorf("begun = %d, want 0", db.begun)
	}
	if outer.committed || outer.rolledBack {
		t.Errorf("committed=%v rolledBack=%v, want neither", outer.committed, outer.rolledBack)
	}
}
