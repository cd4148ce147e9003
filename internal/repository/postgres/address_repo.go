package pgrepo

import (
	"context"
	"errors"

	"litmart-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type addressRepository struct {
	db *pgxpool.Pool
}

func NewAddressRepository(db *pgxpool.Pool) domain.AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) GetByID(ctx context.Context, userID, addressID string) (*domain.Address, error) {
	q := executor(ctx, r.db)

	var a domain.Address
	err := q.QueryRow(ctx, `
		SELECT id, user_id, label, first_name, last_name, phone,
		       address_line, city, district, state, postal_code, landmark,
		       is_default, created_at
		FROM addresses WHERE id = $1 AND user_id = $2`, addressID, userID).
		Scan(&a.ID, &a.UserID, &a.Label, &a.FirstName, &a.LastName, &a.Phone,
			&a.AddressLine, &a.City, &a.District, &a.State, &a.PostalCode, &a.Landmark,
			&a.IsDefault, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("address not found")
		}
		return nil, err
	}
	return &a, nil
}
