package pgrepo

import (
	"context"
	"errors"

	"litmart-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) domain.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := executor(ctx, r.db)

	var p domain.Product
	err := q.QueryRow(ctx, `
		SELECT id, name, slug, price, regular_price, stock, images, is_active, created_at, updated_at
		FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Slug, &p.Price, &p.RegularPrice, &p.Stock, &p.Images, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("product not found")
		}
		return nil, err
	}
	return &p, nil
}

// AdjustStock is always a relative, conditional update: the WHERE clause
// rejects any delta that would drive stock negative, so concurrent checkouts
// racing for the last units cannot both win.
func (r *productRepository) AdjustStock(ctx context.Context, productID string, delta int, reason, referenceID string) error {
	q := executor(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = now()
		WHERE id = $1 AND stock + $2 >= 0`, productID, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var name string
		if err := q.QueryRow(ctx, `SELECT name FROM products WHERE id = $1`, productID).Scan(&name); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NotFoundf("product not found")
			}
			return err
		}
		return domain.StateConflictf("insufficient stock for %s", name)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO inventory_logs (id, product_id, delta, reason, reference_id)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), productID, delta, reason, referenceID)
	return err
}
