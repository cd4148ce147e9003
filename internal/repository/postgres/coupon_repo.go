package pgrepo

import (
	"context"
	"errors"

	"litmart-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type couponRepository struct {
	db *pgxpool.Pool
}

func NewCouponRepository(db *pgxpool.Pool) domain.CouponRepository {
	return &couponRepository{db: db}
}

const couponColumns = `id, code, type, value, min_order, max_discount, expires_at,
	usage_limit, used_count, is_premium, listed, used_by, premium_allow_list,
	created_at, updated_at`

func scanCoupon(row pgx.Row) (*domain.Coupon, error) {
	var c domain.Coupon
	err := row.Scan(&c.ID, &c.Code, &c.Type, &c.Value, &c.MinOrder, &c.MaxDiscount, &c.ExpiresAt,
		&c.UsageLimit, &c.UsedCount, &c.IsPremium, &c.Listed, &c.UsedBy, &c.PremiumAllowList,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("coupon not found")
		}
		return nil, err
	}
	return &c, nil
}

func (r *couponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	q := executor(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO coupons (id, code, type, value, min_order, max_discount, expires_at,
			usage_limit, is_premium, listed, used_by, premium_allow_list)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		coupon.ID, coupon.Code, coupon.Type, coupon.Value, coupon.MinOrder, coupon.MaxDiscount,
		coupon.ExpiresAt, coupon.UsageLimit, coupon.IsPremium, coupon.Listed,
		coupon.UsedBy, coupon.PremiumAllowList)
	return err
}

func (r *couponRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Coupon, error) {
	q := executor(ctx, r.db)
	return scanCoupon(q.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id))
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	q := executor(ctx, r.db)
	return scanCoupon(q.QueryRow(ctx, `
		SELECT `+couponColumns+` FROM coupons
		WHERE upper(code) = upper($1) AND listed = true`, code))
}

func (r *couponRepository) GetByCodeAny(ctx context.Context, code string) (*domain.Coupon, error) {
	q := executor(ctx, r.db)
	return scanCoupon(q.QueryRow(ctx, `
		SELECT `+couponColumns+` FROM coupons
		WHERE upper(code) = upper($1)`, code))
}

func (r *couponRepository) List(ctx context.Context, limit, offset int) ([]domain.Coupon, error) {
	q := executor(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT `+couponColumns+` FROM coupons
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coupons := []domain.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

func (r *couponRepository) Count(ctx context.Context) (int64, error) {
	q := executor(ctx, r.db)
	var count int64
	err := q.QueryRow(ctx, `SELECT count(*) FROM coupons`).Scan(&count)
	return count, err
}

func (r *couponRepository) Update(ctx context.Context, coupon *domain.Coupon) error {
	q := executor(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE coupons SET code = $2, type = $3, value = $4, min_order = $5,
			max_discount = $6, expires_at = $7, usage_limit = $8, is_premium = $9,
			premium_allow_list = $10, updated_at = now()
		WHERE id = $1`,
		coupon.ID, coupon.Code, coupon.Type, coupon.Value, coupon.MinOrder,
		coupon.MaxDiscount, coupon.ExpiresAt, coupon.UsageLimit, coupon.IsPremium,
		coupon.PremiumAllowList)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("coupon not found")
	}
	return nil
}

func (r *couponRepository) SetListed(ctx context.Context, id uuid.UUID, listed bool) error {
	q := executor(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE coupons SET listed = $2, updated_at = now() WHERE id = $1`, id, listed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("coupon not found")
	}
	return nil
}

// MarkUsed consumes one redemption for the user in a single guarded statement,
// so two concurrent settlements cannot both take the last slot.
func (r *couponRepository) MarkUsed(ctx context.Context, id uuid.UUID, userID string) (bool, error) {
	q := executor(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE coupons
		SET used_count = used_count + 1,
		    used_by = array_append(used_by, $2),
		    updated_at = now()
		WHERE id = $1
		  AND used_count < usage_limit
		  AND NOT ($2 = ANY(used_by))`, id, userID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	// Zero rows: figure out which guard failed.
	var alreadyUsed, limitOpen bool
	err = q.QueryRow(ctx, `
		SELECT $2 = ANY(used_by), used_count < usage_limit
		FROM coupons WHERE id = $1`, id, userID).Scan(&alreadyUsed, &limitOpen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.NotFoundf("coupon not found")
		}
		return false, err
	}
	if alreadyUsed {
		return false, nil
	}
	if !limitOpen {
		return false, domain.StateConflictf("coupon usage limit reached")
	}
	return false, domain.Internalf("coupon redemption failed")
}

func (r *couponRepository) SetActive(ctx context.Context, active *domain.ActiveCoupon) error {
	q := executor(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO user_active_coupons (user_id, coupon_id, code, applied_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET coupon_id = EXCLUDED.coupon_id, code = EXCLUDED.code, applied_at = EXCLUDED.applied_at`,
		active.UserID, active.CouponID, active.Code, active.AppliedAt)
	return err
}

func (r *couponRepository) GetActive(ctx context.Context, userID string) (*domain.ActiveCoupon, error) {
	q := executor(ctx, r.db)
	var a domain.ActiveCoupon
	err := q.QueryRow(ctx, `
		SELECT user_id, coupon_id, code, applied_at
		FROM user_active_coupons WHERE user_id = $1`, userID).
		Scan(&a.UserID, &a.CouponID, &a.Code, &a.AppliedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *couponRepository) ClearActive(ctx context.Context, userID string) error {
	q := executor(ctx, r.db)
	_, err := q.Exec(ctx, `DELETE FROM user_active_coupons WHERE user_id = $1`, userID)
	return err
}
