package point

import (
	"context"
	"fmt"

	"github.com/salonware/loyalty/internal/apperrors"
	"github.com/salonware/loyalty/internal/models"
	"github.com/salonware/loyalty/internal/repository"
)

// LedgerService is the single primitive for any point movement: it appends
// one history entry and moves the customer balance together, or does
// nothing at all.
type LedgerService struct {
	storage repository.Storage
}

func NewLedger(storage repository.Storage) *LedgerService {
	return &LedgerService{storage: storage}
}

// AddPointTransaction applies one point movement using the caller's unit of
// work. Pass a transaction scoped Storage when the movement has to commit
// together with the caller's own writes; otherwise use Add.
//
// Returns apperrors.ErrCustomerNotFound, apperrors.ErrBalanceInsufficient or
// apperrors.ErrDuplicateSourceHistory; in every failure case nothing is written.
func (s *LedgerService) AddPointTransaction(ctx context.Context, store repository.Storage, tx models.PointTransaction) (models.PointHistoryEntry, error) {
	var entry models.PointHistoryEntry

	if err := validateTransaction(tx); err != nil {
		return entry, err
	}

	// FOR UPDATE lock linearizes balance movements per customer
	customer, err := store.Customer().GetCustomerForUpdate(ctx, tx.CustomerID)
	if err != nil {
		return entry, err
	}

	newBalance := customer.PointsBalance + tx.Amount
	if newBalance < 0 {
		return entry, apperrors.ErrBalanceInsufficient
	}

	entry, err = store.PointHistory().InsertEntry(ctx, tx, newBalance)
	if err != nil {
		return entry, err
	}

	if err := store.Customer().UpdateBalance(ctx, tx.CustomerID, newBalance); err != nil {
		return entry, err
	}

	return entry, nil
}

// Add runs AddPointTransaction inside its own transaction.
func (s *LedgerService) Add(ctx context.Context, tx models.PointTransaction) (models.PointHistoryEntry, error) {
	var entry models.PointHistoryEntry

	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		var err error
		entry, err = s.AddPointTransaction(ctx, store, tx)
		return err
	})

	return entry, err
}

// validateTransaction checks the sign conventions for every movement type
func validateTransaction(tx models.PointTransaction) error {
	switch tx.Type {
	case models.PointTypeEarned:
		if tx.Amount <= 0 {
			return fmt.Errorf("%w: earned amount must be positive", apperrors.ErrTransactionInvalid)
		}
	case models.PointTypeUsed, models.PointTypeExpired:
		if tx.Amount >= 0 {
			return fmt.Errorf("%w: %s amount must be negative", apperrors.ErrTransactionInvalid, tx.Type)
		}
	case models.PointTypeAdjusted:
		if tx.Amount == 0 {
			return fmt.Errorf("%w: adjustment amount must not be zero", apperrors.ErrTransactionInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", apperrors.ErrTransactionInvalid, tx.Type)
	}

	return nil
}
