package usecase

import (
	"context"
	"fmt"
	"time"

	"litmart-backend/internal/domain"
	"litmart-backend/pkg/cache"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StatsUsecase reads the admin sales reports straight off the orders table.
// Reports are read-heavy and tolerate staleness, so results are cached.
type StatsUsecase struct {
	db    *pgxpool.Pool
	cache cache.CacheService
}

func NewStatsUsecase(db *pgxpool.Pool, cache cache.CacheService) *StatsUsecase {
	return &StatsUsecase{db: db, cache: cache}
}

type DailySalesRow struct {
	Date    time.Time `json:"date"`
	Orders  int64     `json:"orders"`
	Revenue float64   `json:"revenue"`
	Refunds float64   `json:"refunds"`
}

type RevenueKPIs struct {
	Revenue        float64 `json:"revenue"`
	OrderCount     int64   `json:"orderCount"`
	AvgOrderValue  float64 `json:"avgOrderValue"`
	RefundTotal    float64 `json:"refundTotal"`
	CancelledCount int64   `json:"cancelledCount"`
}

func validateRange(start, end time.Time) error {
	if end.Before(start) {
		return domain.Validationf("end date must be after start date")
	}
	if end.Sub(start) > 365*24*time.Hour {
		return domain.Validationf("date range cannot exceed 1 year")
	}
	return nil
}

// DailySales returns the per-day order count, captured revenue, and refund
// totals for the range.
func (uc *StatsUsecase) DailySales(ctx context.Context, start, end time.Time) ([]DailySalesRow, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("stats:daily_sales:%s:%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	if val, found := uc.cache.Get(cacheKey); found {
		return val.([]DailySalesRow), nil
	}

	rows, err := uc.db.Query(ctx, `
		SELECT date_trunc('day', created_at) AS day,
		       count(*),
		       coalesce(sum(final_amount) FILTER (WHERE payment_status = $3), 0),
		       coalesce(sum(refund_amount) FILTER (WHERE payment_status = $4), 0)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY day
		ORDER BY day`,
		start, end, domain.PaymentStatusCompleted, domain.PaymentStatusRefunded)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := []DailySalesRow{}
	for rows.Next() {
		var r DailySalesRow
		if err := rows.Scan(&r.Date, &r.Orders, &r.Revenue, &r.Refunds); err != nil {
			return nil, err
		}
		series = append(series, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	uc.cache.Set(cacheKey, series, 30*time.Minute)
	return series, nil
}

// KPIs returns aggregate revenue numbers for the range.
func (uc *StatsUsecase) KPIs(ctx context.Context, start, end time.Time) (*RevenueKPIs, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("stats:kpis:%s:%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	if val, found := uc.cache.Get(cacheKey); found {
		kpis := val.(RevenueKPIs)
		return &kpis, nil
	}

	var kpis RevenueKPIs
	err := uc.db.QueryRow(ctx, `
		SELECT coalesce(sum(final_amount) FILTER (WHERE payment_status = $3), 0),
		       count(*) FILTER (WHERE status <> $5),
		       coalesce(avg(final_amount) FILTER (WHERE payment_status = $3), 0),
		       coalesce(sum(refund_amount) FILTER (WHERE payment_status = $4), 0),
		       count(*) FILTER (WHERE status = $5)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2`,
		start, end, domain.PaymentStatusCompleted, domain.PaymentStatusRefunded, domain.OrderStatusCancelled).
		Scan(&kpis.Revenue, &kpis.OrderCount, &kpis.AvgOrderValue, &kpis.RefundTotal, &kpis.CancelledCount)
	if err != nil {
		return nil, err
	}

	uc.cache.Set(cacheKey, kpis, 30*time.Minute)
	return &kpis, nil
}
