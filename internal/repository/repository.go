package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/salonware/loyalty/internal/models"
)

// Customer repository interface
type CustomerRepo interface {
	CreateCustomer(ctx context.Context, name string) (models.Customer, error)

	// Get customer by id
	// If customer not found must return apperrors.ErrCustomerNotFound
	GetCustomer(ctx context.Context, id uuid.UUID) (models.Customer, error)

	// Same as GetCustomer but locks the customer row until the
	// surrounding transaction ends (SELECT ... FOR UPDATE)
	GetCustomerForUpdate(ctx context.Context, id uuid.UUID) (models.Customer, error)

	// Set the customer balance to the given value
	// Must be called only by the ledger inside a unit of work
	UpdateBalance(ctx context.Context, id uuid.UUID, balance int64) error
}

// Point history repository interface
// The history is append-only: no update methods exist except MarkExpired
type PointHistoryRepo interface {
	// Insert new history entry
	// If tx.SourceHistoryID is already referenced by another entry must
	// return apperrors.ErrDuplicateSourceHistory
	InsertEntry(ctx context.Context, tx models.PointTransaction, balanceSnapshot int64) (models.PointHistoryEntry, error)

	GetEntry(ctx context.Context, id uuid.UUID) (models.PointHistoryEntry, error)

	// All entries for customer, newest first
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.PointHistoryEntry, error)

	// Earned entries with is_expired = false and expires_at <= now
	ListExpirable(ctx context.Context, now time.Time) ([]models.PointHistoryEntry, error)

	// Flip is_expired on an earned entry
	// If no such entry exists must return apperrors.ErrHistoryEntryNotFound
	MarkExpired(ctx context.Context, id uuid.UUID) error
}

// Store settings repository interface
type SettingsRepo interface {
	// Returns nil settings (not an error) when the operator never saved any
	GetStoreSettings(ctx context.Context) (*models.StoreSettings, error)

	SaveStoreSettings(ctx context.Context, settings models.StoreSettings) (models.StoreSettings, error)
}

type CreateAdminParams struct {
	Username     string
	PasswordHash string
	Role         string
}

// Admin repository interface
type AdminRepo interface {
	// If admin with the username exists must return apperrors.ErrAdminAlreadyExists
	CreateAdmin(ctx context.Context, arg CreateAdminParams) (models.Admin, error)

	// If admin not found must return apperrors.ErrAdminNotFound
	GetAdmin(ctx context.Context, id uuid.UUID) (models.Admin, error)
	GetAdminByUsername(ctx context.Context, username string) (models.Admin, error)
}

// Storage is the facade over all repositories plus the unit of work boundary.
type Storage interface {
	Customer() CustomerRepo
	PointHistory() PointHistoryRepo
	Settings() SettingsRepo
	Admin() AdminRepo

	// InTx runs fn against a transaction scoped Storage. Everything fn
	// writes commits or rolls back together.
	InTx(ctx context.Context, fn func(Storage) error) error
}
