package customer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/salonware/loyalty/internal/apperrors"
	"github.com/salonware/loyalty/internal/models"
	"github.com/salonware/loyalty/internal/pointcfg"
	"github.com/salonware/loyalty/internal/repository"
	"github.com/salonware/loyalty/internal/service/point"
)

// EarnParams describes a completed paid service for which points are credited.
type EarnParams struct {
	CustomerID     uuid.UUID
	Amount         float64 // paid amount in the store currency
	Description    string
	RelatedService *string
	ReservationID  *uuid.UUID
}

// UseParams describes a point redemption request.
type UseParams struct {
	CustomerID     uuid.UUID
	Points         int64
	Description    string
	RelatedService *string
	ReservationID  *uuid.UUID
}

// CustomerService is the boundary the booking and admin flows call into.
// Every point movement goes through the ledger; this service only decides
// the amounts and the expiry from the resolved store configuration.
type CustomerService struct {
	storage repository.Storage
	ledger  *point.LedgerService

	// Current time dependency, replaceable in tests
	now func() time.Time
}

func NewService(storage repository.Storage, ledger *point.LedgerService) *CustomerService {
	return &CustomerService{
		storage: storage,
		ledger:  ledger,
		now:     time.Now,
	}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, name string) (models.Customer, error) {
	return s.storage.Customer().CreateCustomer(ctx, name)
}

func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (models.Customer, error) {
	return s.storage.Customer().GetCustomer(ctx, id)
}

// ListHistory returns the customer's point history, newest first.
// Returns apperrors.ErrCustomerNotFound for an unknown customer.
func (s *CustomerService) ListHistory(ctx context.Context, customerID uuid.UUID) ([]models.PointHistoryEntry, error) {
	if _, err := s.storage.Customer().GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	return s.storage.PointHistory().ListByCustomer(ctx, customerID)
}

// EarnFromPayment credits points for a paid amount at the resolved earn
// rate and stamps the expiry date. When the computed points come to zero
// nothing is booked and a zero-value entry is returned.
func (s *CustomerService) EarnFromPayment(ctx context.Context, arg EarnParams) (models.PointHistoryEntry, error) {
	cfg, err := s.resolveConfig(ctx)
	if err != nil {
		return models.PointHistoryEntry{}, err
	}

	points := pointcfg.CalculateEarnedPoints(arg.Amount, cfg)
	if points == 0 {
		return models.PointHistoryEntry{}, nil
	}

	expiresAt := pointcfg.CalculateExpiryDate(cfg, s.now())

	return s.ledger.Add(ctx, models.PointTransaction{
		CustomerID:     arg.CustomerID,
		Type:           models.PointTypeEarned,
		Amount:         points,
		Description:    arg.Description,
		RelatedService: arg.RelatedService,
		ReservationID:  arg.ReservationID,
		ExpiresAt:      &expiresAt,
	})
}

// UsePoints redeems points against the customer balance.
// Returns apperrors.ErrBelowMinimumUsage when fewer points than the
// configured minimum are requested, apperrors.ErrBalanceInsufficient when
// the balance doesn't cover the request.
func (s *CustomerService) UsePoints(ctx context.Context, arg UseParams) (models.PointHistoryEntry, error) {
	cfg, err := s.resolveConfig(ctx)
	if err != nil {
		return models.PointHistoryEntry{}, err
	}

	if arg.Points < cfg.MinPointsToUse {
		return models.PointHistoryEntry{}, apperrors.ErrBelowMinimumUsage
	}

	return s.ledger.Add(ctx, models.PointTransaction{
		CustomerID:     arg.CustomerID,
		Type:           models.PointTypeUsed,
		Amount:         -arg.Points,
		Description:    arg.Description,
		RelatedService: arg.RelatedService,
		ReservationID:  arg.ReservationID,
	})
}

// AdjustPoints books a manual adjustment, positive or negative.
func (s *CustomerService) AdjustPoints(ctx context.Context, customerID uuid.UUID, delta int64, description string) (models.PointHistoryEntry, error) {
	return s.ledger.Add(ctx, models.PointTransaction{
		CustomerID:  customerID,
		Type:        models.PointTypeAdjusted,
		Amount:      delta,
		Description: description,
	})
}

func (s *CustomerService) resolveConfig(ctx context.Context) (pointcfg.Config, error) {
	settings, err := s.storage.Settings().GetStoreSettings(ctx)
	if err != nil {
		return pointcfg.Config{}, err
	}

	return pointcfg.Resolve(settings), nil
}
