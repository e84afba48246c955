package point

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/salonware/loyalty/internal/apperrors"
	"github.com/salonware/loyalty/internal/logger"
	"github.com/salonware/loyalty/internal/models"
	"github.com/salonware/loyalty/internal/repository"
)

const expiredDescription = "Points expired"

// ExpirationService sweeps earned lots past their validity window and
// expires each exactly once. Safe to retry and to run concurrently with
// itself: the unique index on source_history_id decides the winner, not
// any in-process lock.
type ExpirationService struct {
	storage repository.Storage
	ledger  *LedgerService
	logger  logger.Logger
}

func NewExpiration(storage repository.Storage, ledger *LedgerService, l logger.Logger) *ExpirationService {
	if l == nil {
		l = logger.NewNoOp()
	}

	return &ExpirationService{
		storage: storage,
		ledger:  ledger,
		logger:  l,
	}
}

// RunExpiration expires every eligible earned lot in its own transaction.
// A single lot failure never aborts the sweep; the returned result is the
// best-effort summary. An error is returned only when the eligibility
// query itself failed, in which case no lots were touched.
func (s *ExpirationService) RunExpiration(ctx context.Context, now time.Time) (models.ExpirationResult, error) {
	var result models.ExpirationResult

	lots, err := s.storage.PointHistory().ListExpirable(ctx, now)
	if err != nil {
		return result, fmt.Errorf("can't list expirable lots. Err: %w", err)
	}

	for _, lot := range lots {
		err := s.expireLot(ctx, lot)

		switch {
		case err == nil:
			result.ProcessedCount++
		case errors.Is(err, apperrors.ErrDuplicateSourceHistory):
			// Another run already expired this exact lot, not an error
			s.logger.Warn("Lot already expired by concurrent run",
				"customerID", lot.CustomerID,
				"lotID", lot.ID,
			)
		default:
			s.logger.Error("Failed to expire lot",
				"customerID", lot.CustomerID,
				"lotID", lot.ID,
				"error", err,
			)
			result.Errors = append(result.Errors, models.ExpirationError{
				CustomerID: lot.CustomerID,
				Reason:     err.Error(),
			})
			result.ErrorCount++
		}
	}

	return result, nil
}

// expireLot books the negative 'expired' entry and flips the source lot's
// flag inside one transaction
func (s *ExpirationService) expireLot(ctx context.Context, lot models.PointHistoryEntry) error {
	return s.storage.InTx(ctx, func(store repository.Storage) error {
		_, err := s.ledger.AddPointTransaction(ctx, store, models.PointTransaction{
			CustomerID:      lot.CustomerID,
			Type:            models.PointTypeExpired,
			Amount:          -lot.Amount,
			Description:     expiredDescription,
			RelatedService:  lot.RelatedService,
			SourceHistoryID: &lot.ID,
		})
		if err != nil {
			return err
		}

		return store.PointHistory().MarkExpired(ctx, lot.ID)
	})
}
