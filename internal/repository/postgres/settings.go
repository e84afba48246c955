package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/salonware/loyalty/internal/models"
)

type SettingsRepo struct {
	DB DBTX
}

const getStoreSettings = `-- name: GetStoreSettings
SELECT point_earn_rate, point_expiration_months, point_min_usage, updated_at
FROM store_settings
WHERE id = 1
`

func (r *SettingsRepo) GetStoreSettings(ctx context.Context) (*models.StoreSettings, error) {
	rows, _ := r.DB.Query(ctx, getStoreSettings)
	settings, err := pgx.CollectOneRow(rows, rowToSettings)

	switch {
	case err == nil:
		return &settings, nil
	case errors.Is(err, pgx.ErrNoRows):
		// Operator never saved settings, caller resolves defaults
		return nil, nil
	default:
		return nil, fmt.Errorf("db error: %w", err)
	}
}

const saveStoreSettings = `-- name: SaveStoreSettings
INSERT INTO store_settings (id, point_earn_rate, point_expiration_months, point_min_usage, updated_at)
VALUES (1, $1, $2, $3, now())
ON CONFLICT (id) DO UPDATE
SET point_earn_rate = EXCLUDED.point_earn_rate,
	point_expiration_months = EXCLUDED.point_expiration_months,
	point_min_usage = EXCLUDED.point_min_usage,
	updated_at = now()
RETURNING point_earn_rate, point_expiration_months, point_min_usage, updated_at
`

func (r *SettingsRepo) SaveStoreSettings(ctx context.Context, settings models.StoreSettings) (models.StoreSettings, error) {
	rows, _ := r.DB.Query(ctx, saveStoreSettings,
		settings.PointEarnRate,
		settings.PointExpirationMonths,
		settings.PointMinUsage,
	)
	saved, err := pgx.CollectOneRow(rows, rowToSettings)
	if err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}

	return saved, nil
}

func rowToSettings(row pgx.CollectableRow) (models.StoreSettings, error) {
	var s models.StoreSettings
	err := row.Scan(&s.PointEarnRate, &s.PointExpirationMonths, &s.PointMinUsage, &s.UpdatedAt)
	return s, err
}
