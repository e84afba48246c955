package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/salonware/loyalty/internal/apperrors"
	"github.com/salonware/loyalty/internal/models"
)

type CustomerRepo struct {
	DB DBTX
}

const createCustomer = `-- name: CreateCustomer
INSERT INTO customers (name)
VALUES ($1)
RETURNING id, created_at, name, points_balance
`

func (r *CustomerRepo) CreateCustomer(ctx context.Context, name string) (models.Customer, error) {
	rows, _ := r.DB.Query(ctx, createCustomer, name)
	customer, err := pgx.CollectOneRow(rows, rowToCustomer)
	if err != nil {
		return customer, fmt.Errorf("db error: %w", err)
	}

	return customer, nil
}

const getCustomer = `-- name: GetCustomer
SELECT id, created_at, name, points_balance FROM customers
WHERE id = $1
`

func (r *CustomerRepo) GetCustomer(ctx context.Context, id uuid.UUID) (models.Customer, error) {
	rows, _ := r.DB.Query(ctx, getCustomer, id)
	return collectCustomer(rows)
}

const getCustomerForUpdate = `-- name: GetCustomerForUpdate
SELECT id, created_at, name, points_balance FROM customers
WHERE id = $1
FOR UPDATE
`

func (r *CustomerRepo) GetCustomerForUpdate(ctx context.Context, id uuid.UUID) (models.Customer, error) {
	rows, _ := r.DB.Query(ctx, getCustomerForUpdate, id)
	return collectCustomer(rows)
}

const updateBalance = `-- name: UpdateBalance
UPDATE customers
SET points_balance = $2
WHERE id = $1
`

func (r *CustomerRepo) UpdateBalance(ctx context.Context, id uuid.UUID, balance int64) error {
	tag, err := r.DB.Exec(ctx, updateBalance, id, balance)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
			// Backstop only: the ledger rejects negative balances before writing
			return apperrors.ErrBalanceInsufficient
		}

		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrCustomerNotFound
	}

	return nil
}

func collectCustomer(rows pgx.Rows) (models.Customer, error) {
	customer, err := pgx.CollectOneRow(rows, rowToCustomer)

	switch {
	case err == nil:
		return customer, nil
	case errors.Is(err, pgx.ErrNoRows):
		return customer, apperrors.ErrCustomerNotFound
	default:
		return customer, fmt.Errorf("db error: %w", err)
	}
}

func rowToCustomer(row pgx.CollectableRow) (models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.CreatedAt, &c.Name, &c.PointsBalance)
	return c, err
}
