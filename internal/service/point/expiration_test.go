package point

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/salonware/loyalty/internal/apperrors"
	"github.com/salonware/loyalty/internal/models"
	"github.com/salonware/loyalty/internal/repository/postgres"
	"github.com/salonware/loyalty/internal/testutil"
)

// Expiration tests run against committed data on the pool: the job opens
// its own transactions, and the concurrency test needs independent
// connections. Every subtest books its own customer so they don't interfere.
func TestExpiration(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	storage := postgres.NewStorage(pg.Pool)
	ledger := NewLedger(storage)
	expiration := NewExpiration(storage, ledger, nil)

	newCustomer := func(t *testing.T) models.Customer {
		customer, err := storage.Customer().CreateCustomer(t.Context(), "Hanako")
		require.NoError(t, err, "creating customer should not fail")
		return customer
	}

	earn := func(t *testing.T, customer models.Customer, amount int64, expiresAt time.Time) models.PointHistoryEntry {
		lot, err := ledger.Add(t.Context(), models.PointTransaction{
			CustomerID:  customer.ID,
			Type:        models.PointTypeEarned,
			Amount:      amount,
			Description: "Visit reward",
			ExpiresAt:   &expiresAt,
		})
		require.NoError(t, err, "earning points should not fail")
		return lot
	}

	t.Run("expires eligible lot exactly once", func(t *testing.T) {
		customer := newCustomer(t)
		lot := earn(t, customer, 500, time.Now().Add(-time.Hour))

		result, err := expiration.RunExpiration(t.Context(), time.Now())

		require.NoError(t, err)
		require.Equal(t, 1, result.ProcessedCount)
		require.Equal(t, 0, result.ErrorCount)
		require.Empty(t, result.Errors)

		stored, err := storage.Customer().GetCustomer(t.Context(), customer.ID)
		require.NoError(t, err)
		require.Equal(t, int64(0), stored.PointsBalance, "expired points should be deducted")

		source, err := storage.PointHistory().GetEntry(t.Context(), lot.ID)
		require.NoError(t, err)
		require.True(t, source.IsExpired, "source lot should be flagged")

		history, err := storage.PointHistory().ListByCustomer(t.Context(), customer.ID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		expired := history[0]
		require.Equal(t, models.PointTypeExpired, expired.Type)
		require.Equal(t, int64(-500), expired.Amount)
		require.NotNil(t, expired.SourceHistoryID)
		require.Equal(t, lot.ID, *expired.SourceHistoryID)

		t.Run("second run is a no-op", func(t *testing.T) {
			result, err := expiration.RunExpiration(t.Context(), time.Now())

			require.NoError(t, err)
			require.Equal(t, 0, result.ProcessedCount, "already expired lot should not be processed again")
			require.Equal(t, 0, result.ErrorCount)

			stored, err := storage.Customer().GetCustomer(t.Context(), customer.ID)
			require.NoError(t, err)
			require.Equal(t, int64(0), stored.PointsBalance, "balance should be identical after rerun")
		})
	})

	t.Run("future lots stay active", func(t *testing.T) {
		customer := newCustomer(t)
		earn(t, customer, 500, time.Now().Add(time.Hour))

		result, err := expiration.RunExpiration(t.Context(), time.Now())

		require.NoError(t, err)
		require.Equal(t, 0, result.ProcessedCount)

		stored, err := storage.Customer().GetCustomer(t.Context(), customer.ID)
		require.NoError(t, err)
		require.Equal(t, int64(500), stored.PointsBalance)
	})

	t.Run("lot failure does not abort the sweep", func(t *testing.T) {
		// First customer already spent the expiring points: deducting
		// them again would drive the balance negative
		broke := newCustomer(t)
		earn(t, broke, 500, time.Now().Add(-time.Hour))
		_, err := ledger.Add(t.Context(), models.PointTransaction{
			CustomerID:  broke.ID,
			Type:        models.PointTypeUsed,
			Amount:      -500,
			Description: "Discount",
		})
		require.NoError(t, err)

		healthy := newCustomer(t)
		healthyLot := earn(t, healthy, 300, time.Now().Add(-time.Hour))

		result, err := expiration.RunExpiration(t.Context(), time.Now())

		require.NoError(t, err)
		require.Equal(t, 1, result.ProcessedCount, "healthy lot should still be processed")
		require.Equal(t, 1, result.ErrorCount)
		require.Len(t, result.Errors, 1)
		require.Equal(t, broke.ID, result.Errors[0].CustomerID)
		require.Contains(t, result.Errors[0].Reason, apperrors.ErrBalanceInsufficient.Error())

		source, err := storage.PointHistory().GetEntry(t.Context(), healthyLot.ID)
		require.NoError(t, err)
		require.True(t, source.IsExpired)

		// The failed lot stays eligible by design; take it out of the way
		// so the following subtests sweep a clean slate
		lots, err := storage.PointHistory().ListExpirable(t.Context(), time.Now())
		require.NoError(t, err)
		for _, l := range lots {
			require.NoError(t, storage.PointHistory().MarkExpired(t.Context(), l.ID))
		}
	})

	t.Run("concurrent runs expire a lot once", func(t *testing.T) {
		customer := newCustomer(t)
		lot := earn(t, customer, 500, time.Now().Add(-time.Hour))

		now := time.Now()
		results := make([]models.ExpirationResult, 2)
		errs := make([]error, 2)

		var wg sync.WaitGroup
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], errs[i] = expiration.RunExpiration(t.Context(), now)
			}()
		}
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])
		require.Equal(t, 1, results[0].ProcessedCount+results[1].ProcessedCount, "exactly one run should win the lot")
		require.Equal(t, 0, results[0].ErrorCount+results[1].ErrorCount, "the loser should see a no-op, not an error")

		stored, err := storage.Customer().GetCustomer(t.Context(), customer.ID)
		require.NoError(t, err)
		require.Equal(t, int64(0), stored.PointsBalance, "points should be deducted exactly once")

		history, err := storage.PointHistory().ListByCustomer(t.Context(), customer.ID)
		require.NoError(t, err)

		var expiredRows int
		for _, h := range history {
			if h.Type == models.PointTypeExpired && h.SourceHistoryID != nil && *h.SourceHistoryID == lot.ID {
				expiredRows++
			}
		}
		require.Equal(t, 1, expiredRows, "exactly one expired row should reference the lot")
	})
}

// Full scenario across earn, failed redemption and expiry.
func TestPointLifecycleScenario(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	storage := postgres.NewStorage(pg.Pool)
	ledger := NewLedger(storage)
	expiration := NewExpiration(storage, ledger, nil)

	customer, err := storage.Customer().CreateCustomer(t.Context(), "Taro")
	require.NoError(t, err)

	// Opening balance of 1000 through a manual adjustment
	_, err = ledger.Add(t.Context(), models.PointTransaction{
		CustomerID:  customer.ID,
		Type:        models.PointTypeAdjusted,
		Amount:      1000,
		Description: "Opening balance",
	})
	require.NoError(t, err)

	// Earn 500 expiring at T
	expiresAt := time.Now().Add(-time.Minute)
	lot, err := ledger.Add(t.Context(), models.PointTransaction{
		CustomerID:  customer.ID,
		Type:        models.PointTypeEarned,
		Amount:      500,
		Description: "Visit reward",
		ExpiresAt:   &expiresAt,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1500), lot.BalanceSnapshot)

	// Overdrawing redemption fails and leaves nothing behind
	_, err = ledger.Add(t.Context(), models.PointTransaction{
		CustomerID:  customer.ID,
		Type:        models.PointTypeUsed,
		Amount:      -2000,
		Description: "Discount",
	})
	require.ErrorIs(t, err, apperrors.ErrBalanceInsufficient)

	stored, err := storage.Customer().GetCustomer(t.Context(), customer.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1500), stored.PointsBalance)

	// Expiration brings the balance back to 1000
	result, err := expiration.RunExpiration(t.Context(), time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, result.ProcessedCount)

	stored, err = storage.Customer().GetCustomer(t.Context(), customer.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1000), stored.PointsBalance)

	history, err := storage.PointHistory().ListByCustomer(t.Context(), customer.ID)
	require.NoError(t, err)
	require.Len(t, history, 3, "failed redemption should not appear in history")

	expired := history[0]
	require.Equal(t, models.PointTypeExpired, expired.Type)
	require.Equal(t, int64(-500), expired.Amount)
	require.Equal(t, lot.ID, *expired.SourceHistoryID)

	source, err := storage.PointHistory().GetEntry(t.Context(), lot.ID)
	require.NoError(t, err)
	require.True(t, source.IsExpired)
}
