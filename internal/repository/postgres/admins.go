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
	"github.com/salonware/loyalty/internal/repository"
)

type AdminRepo struct {
	DB DBTX
}

const createAdmin = `-- name: CreateAdmin
INSERT INTO admins (username, password_hash, role)
VALUES ($1, $2, $3)
RETURNING id, created_at, username, password_hash, role
`

func (r *AdminRepo) CreateAdmin(ctx context.Context, arg repository.CreateAdminParams) (models.Admin, error) {
	rows, _ := r.DB.Query(ctx, createAdmin, arg.Username, arg.PasswordHash, arg.Role)
	admin, err := pgx.CollectOneRow(rows, rowToAdmin)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return admin, apperrors.ErrAdminAlreadyExists
		}

		return admin, fmt.Errorf("db error: %w", err)
	}

	return admin, nil
}

const getAdmin = `-- name: GetAdmin
SELECT id, created_at, username, password_hash, role FROM admins
WHERE id = $1
`

func (r *AdminRepo) GetAdmin(ctx context.Context, id uuid.UUID) (models.Admin, error) {
	rows, _ := r.DB.Query(ctx, getAdmin, id)
	return collectAdmin(rows)
}

const getAdminByUsername = `-- name: GetAdminByUsername
SELECT id, created_at, username, password_hash, role FROM admins
WHERE username = $1
`

func (r *AdminRepo) GetAdminByUsername(ctx context.Context, username string) (models.Admin, error) {
	rows, _ := r.DB.Query(ctx, getAdminByUsername, username)
	return collectAdmin(rows)
}

func collectAdmin(rows pgx.Rows) (models.Admin, error) {
	admin, err := pgx.CollectOneRow(rows, rowToAdmin)

	switch {
	case err == nil:
		return admin, nil
	case errors.Is(err, pgx.ErrNoRows):
		return admin, apperrors.ErrAdminNotFound
	default:
		return admin, fmt.Errorf("db error: %w", err)
	}
}

func rowToAdmin(row pgx.CollectableRow) (models.Admin, error) {
	var a models.Admin
	err := row.Scan(&a.ID, &a.CreatedAt, &a.Username, &a.PasswordHash, &a.Role)
	return a, err
}
