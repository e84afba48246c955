package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/salonware/loyalty/internal/apperrors"
	"github.com/salonware/loyalty/internal/models"
	"github.com/salonware/loyalty/internal/repository"
	"github.com/salonware/loyalty/internal/testutil"
)

func ptr[T any](v T) *T {
	return &v
}

func TestSettingsRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withTx := func(t *testing.T, fn func(storage repository.Storage)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			fn(NewStorage(tx))
		})
	}

	t.Run("absent settings are nil not error", func(t *testing.T) {
		withTx(t, func(storage repository.Storage) {
			settings, err := storage.Settings().GetStoreSettings(t.Context())

			require.NoError(t, err)
			require.Nil(t, settings, "operator never saved settings")
		})
	})

	t.Run("save and read back", func(t *testing.T) {
		withTx(t, func(storage repository.Storage) {
			saved, err := storage.Settings().SaveStoreSettings(t.Context(), models.StoreSettings{
				PointEarnRate:         ptr(2.5),
				PointExpirationMonths: ptr(6),
				PointMinUsage:         ptr(200),
			})

			require.NoError(t, err)
			require.Equal(t, 2.5, *saved.PointEarnRate)
			require.Equal(t, 6, *saved.PointExpirationMonths)
			require.Equal(t, 200, *saved.PointMinUsage)
			require.NotZero(t, saved.UpdatedAt)

			settings, err := storage.Settings().GetStoreSettings(t.Context())
			require.NoError(t, err)
			require.NotNil(t, settings)
			require.Equal(t, saved, *settings)
		})
	})

	t.Run("save overwrites previous values", func(t *testing.T) {
		withTx(t, func(storage repository.Storage) {
			_, err := storage.Settings().SaveStoreSettings(t.Context(), models.StoreSettings{
				PointEarnRate: ptr(2.5),
				PointMinUsage: ptr(200),
			})
			require.NoError(t, err)

			saved, err := storage.Settings().SaveStoreSettings(t.Context(), models.StoreSettings{
				PointEarnRate: ptr(1.0),
			})

			require.NoError(t, err)
			require.Equal(t, 1.0, *saved.PointEarnRate)
			require.Nil(t, saved.PointMinUsage, "unset fields should be cleared, not kept")
		})
	})
}

func TestAdminRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	arg := repository.CreateAdminParams{
		Username:     "owner",
		PasswordHash: "hash",
		Role:         models.RoleAdmin,
	}

	t.Run("create and get", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := NewStorage(tx)

			created, err := storage.Admin().CreateAdmin(t.Context(), arg)
			require.NoError(t, err)
			require.Equal(t, "owner", created.Username)
			require.Equal(t, models.RoleAdmin, created.Role)

			byID, err := storage.Admin().GetAdmin(t.Context(), created.ID)
			require.NoError(t, err)
			require.Equal(t, created, byID)

			byUsername, err := storage.Admin().GetAdminByUsername(t.Context(), "owner")
			require.NoError(t, err)
			require.Equal(t, created, byUsername)
		})
	})

	t.Run("duplicate username", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := NewStorage(tx)

			_, err := storage.Admin().CreateAdmin(t.Context(), arg)
			require.NoError(t, err)

			inner, err := tx.Begin(t.Context())
			require.NoError(t, err)

			_, err = NewStorage(inner).Admin().CreateAdmin(t.Context(), arg)
			require.ErrorIs(t, err, apperrors.ErrAdminAlreadyExists)

			require.NoError(t, inner.Rollback(t.Context()))
		})
	})
}
