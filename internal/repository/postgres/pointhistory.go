package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/salonware/loyalty/internal/apperrors"
	"github.com/salonware/loyalty/internal/models"
)

type PointHistoryRepo struct {
	DB DBTX
}

const historyColumns = `id, customer_id, created_at, updated_at, type, amount, description,
related_service, reservation_id, balance_snapshot, expires_at, source_history_id, is_expired`

const insertEntry = `-- name: InsertEntry
INSERT INTO point_history
	(customer_id, type, amount, description, related_service, reservation_id, balance_snapshot, expires_at, source_history_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + historyColumns

func (r *PointHistoryRepo) InsertEntry(ctx context.Context, tx models.PointTransaction, balanceSnapshot int64) (models.PointHistoryEntry, error) {
	rows, _ := r.DB.Query(ctx, insertEntry,
		tx.CustomerID,
		tx.Type,
		tx.Amount,
		tx.Description,
		tx.RelatedService,
		tx.ReservationID,
		balanceSnapshot,
		tx.ExpiresAt,
		tx.SourceHistoryID,
	)
	entry, err := pgx.CollectOneRow(rows, rowToEntry)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			// Unique index on source_history_id: the referenced earned
			// entry was already consumed by another expired entry
			return entry, apperrors.ErrDuplicateSourceHistory
		}

		return entry, fmt.Errorf("db error: %w", err)
	}

	return entry, nil
}

const getEntry = `-- name: GetEntry
SELECT ` + historyColumns + ` FROM point_history
WHERE id = $1
`

func (r *PointHistoryRepo) GetEntry(ctx context.Context, id uuid.UUID) (models.PointHistoryEntry, error) {
	rows, _ := r.DB.Query(ctx, getEntry, id)
	entry, err := pgx.CollectOneRow(rows, rowToEntry)

	switch {
	case err == nil:
		return entry, nil
	case errors.Is(err, pgx.ErrNoRows):
		return entry, apperrors.ErrHistoryEntryNotFound
	default:
		return entry, fmt.Errorf("db error: %w", err)
	}
}

const listByCustomer = `-- name: ListByCustomer
SELECT ` + historyColumns + ` FROM point_history
WHERE customer_id = $1
ORDER BY created_at DESC, id
`

func (r *PointHistoryRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.PointHistoryEntry, error) {
	rows, _ := r.DB.Query(ctx, listByCustomer, customerID)
	entries, err := pgx.CollectRows(rows, rowToEntry)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entries, nil
}

const listExpirable = `-- name: ListExpirable
SELECT ` + historyColumns + ` FROM point_history
WHERE type = 'earned' AND NOT is_expired AND expires_at <= $1
ORDER BY expires_at, id
`

func (r *PointHistoryRepo) ListExpirable(ctx context.Context, now time.Time) ([]models.PointHistoryEntry, error) {
	rows, _ := r.DB.Query(ctx, listExpirable, now)
	entries, err := pgx.CollectRows(rows, rowToEntry)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entries, nil
}

const markExpired = `-- name: MarkExpired
UPDATE point_history
SET is_expired = true, updated_at = now()
WHERE id = $1 AND type = 'earned'
`

func (r *PointHistoryRepo) MarkExpired(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, markExpired, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrHistoryEntryNotFound
	}

	return nil
}

func rowToEntry(row pgx.CollectableRow) (models.PointHistoryEntry, error) {
	var e models.PointHistoryEntry
	err := row.Scan(
		&e.ID,
		&e.CustomerID,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.Type,
		&e.Amount,
		&e.Description,
		&e.RelatedService,
		&e.ReservationID,
		&e.BalanceSnapshot,
		&e.ExpiresAt,
		&e.SourceHistoryID,
		&e.IsExpired,
	)
	return e, err
}
