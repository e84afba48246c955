package customer

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/salonware/loyalty/internal/apperrors"
	"github.com/salonware/loyalty/internal/models"
	"github.com/salonware/loyalty/internal/repository"
	"github.com/salonware/loyalty/internal/repository/postgres"
	"github.com/salonware/loyalty/internal/service/point"
	"github.com/salonware/loyalty/internal/testutil"
)

func ptr[T any](v T) *T {
	return &v
}

func TestCustomerService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withTx := func(t *testing.T, fn func(storage repository.Storage, s *CustomerService, customer models.Customer)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			s := NewService(storage, point.NewLedger(storage))

			customer, err := s.CreateCustomer(t.Context(), "Hanako")
			require.NoError(t, err, "creating customer should not fail")

			fn(storage, s, customer)
		})
	}

	t.Run("EarnFromPayment", func(t *testing.T) {
		t.Run("default config", func(t *testing.T) {
			withTx(t, func(storage repository.Storage, s *CustomerService, customer models.Customer) {
				now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
				s.now = func() time.Time { return now }

				entry, err := s.EarnFromPayment(t.Context(), EarnParams{
					CustomerID:  customer.ID,
					Amount:      10000,
					Description: "Cut and color",
				})

				require.NoError(t, err)
				require.Equal(t, int64(100), entry.Amount, "1 percent of 10000 should be earned by default")
				require.Equal(t, int64(100), entry.BalanceSnapshot)
				require.NotNil(t, entry.ExpiresAt)
				require.Equal(t, now.AddDate(0, 12, 0), entry.ExpiresAt.UTC(), "expiry should be 12 months out by default")
			})
		})

		t.Run("store settings applied", func(t *testing.T) {
			withTx(t, func(storage repository.Storage, s *CustomerService, customer models.Customer) {
				_, err := storage.Settings().SaveStoreSettings(t.Context(), models.StoreSettings{
					PointEarnRate:         ptr(2.5),
					PointExpirationMonths: ptr(6),
				})
				require.NoError(t, err)

				entry, err := s.EarnFromPayment(t.Context(), EarnParams{
					CustomerID:  customer.ID,
					Amount:      10000,
					Description: "Cut and color",
				})

				require.NoError(t, err)
				require.Equal(t, int64(250), entry.Amount, "2.5 percent of 10000 should be earned")
			})
		})

		t.Run("amount too small books nothing", func(t *testing.T) {
			withTx(t, func(storage repository.Storage, s *CustomerService, customer models.Customer) {
				entry, err := s.EarnFromPayment(t.Context(), EarnParams{
					CustomerID:  customer.ID,
					Amount:      50,
					Description: "Sample",
				})

				require.NoError(t, err)
				require.Zero(t, entry.ID, "no entry should be booked for zero points")

				history, err := s.ListHistory(t.Context(), customer.ID)
				require.NoError(t, err)
				require.Empty(t, history)
			})
		})

		t.Run("unknown customer", func(t *testing.T) {
			withTx(t, func(storage repository.Storage, s *CustomerService, customer models.Customer) {
				_, err := s.EarnFromPayment(t.Context(), EarnParams{
					CustomerID:  uuid.New(),
					Amount:      10000,
					Description: "Cut and color",
				})

				require.ErrorIs(t, err, apperrors.ErrCustomerNotFound)
			})
		})
	})

	t.Run("UsePoints", func(t *testing.T) {
		withTx(t, func(storage repository.Storage, s *CustomerService, customer models.Customer) {
			_, err := s.EarnFromPayment(t.Context(), EarnParams{
				CustomerID:  customer.ID,
				Amount:      30000, // earns 300 at the default 1%
				Description: "Cut and color",
			})
			require.NoError(t, err)

			t.Run("below minimum usage", func(t *testing.T) {
				_, err := s.UsePoints(t.Context(), UseParams{
					CustomerID:  customer.ID,
					Points:      99,
					Description: "Discount",
				})

				require.ErrorIs(t, err, apperrors.ErrBelowMinimumUsage)
			})

			t.Run("redeems ok", func(t *testing.T) {
				entry, err := s.UsePoints(t.Context(), UseParams{
					CustomerID:  customer.ID,
					Points:      100,
					Description: "Discount",
				})

				require.NoError(t, err)
				require.Equal(t, int64(-100), entry.Amount)
				require.Equal(t, int64(200), entry.BalanceSnapshot)
			})

			t.Run("insufficient balance", func(t *testing.T) {
				_, err := s.UsePoints(t.Context(), UseParams{
					CustomerID:  customer.ID,
					Points:      100000,
					Description: "Discount",
				})

				require.ErrorIs(t, err, apperrors.ErrBalanceInsufficient)
			})
		})
	})

	t.Run("AdjustPoints", func(t *testing.T) {
		withTx(t, func(storage repository.Storage, s *CustomerService, customer models.Customer) {
			entry, err := s.AdjustPoints(t.Context(), customer.ID, 1000, "Migration from old system")

			require.NoError(t, err)
			require.Equal(t, models.PointTypeAdjusted, entry.Type)
			require.Equal(t, int64(1000), entry.BalanceSnapshot)

			entry, err = s.AdjustPoints(t.Context(), customer.ID, -400, "Correction")

			require.NoError(t, err)
			require.Equal(t, int64(600), entry.BalanceSnapshot)
		})
	})

	t.Run("ListHistory unknown customer", func(t *testing.T) {
		withTx(t, func(storage repository.Storage, s *CustomerService, customer models.Customer) {
			_, err := s.ListHistory(t.Context(), uuid.New())

			require.ErrorIs(t, err, apperrors.ErrCustomerNotFound)
		})
	})
}
