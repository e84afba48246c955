package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PointTypeEarned   = "earned"
	PointTypeUsed     = "used"
	PointTypeExpired  = "expired"
	PointTypeAdjusted = "adjusted"
)

// PointHistoryEntry is one row of the append-only point ledger.
// Rows are never deleted and never mutated after insert, except the
// IsExpired flag on an 'earned' row which flips to true exactly once.
type PointHistoryEntry struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Type        string
	Amount      int64
	Description string

	RelatedService *string
	ReservationID  *uuid.UUID

	// Customer balance immediately after this entry was applied
	BalanceSnapshot int64

	// Set on 'earned' entries subject to expiry
	ExpiresAt *time.Time

	// Back-reference from an 'expired' entry to the 'earned' entry it
	// consumes. Unique across all rows: the constraint is what makes
	// expiration idempotent under concurrent runs.
	SourceHistoryID *uuid.UUID
	IsExpired       bool
}

// PointTransaction describes a single point movement to apply through the ledger.
type PointTransaction struct {
	CustomerID      uuid.UUID
	Type            string
	Amount          int64
	Description     string
	RelatedService  *string
	ReservationID   *uuid.UUID
	ExpiresAt       *time.Time
	SourceHistoryID *uuid.UUID
}

type ExpirationError struct {
	CustomerID uuid.UUID `json:"customerId"`
	Reason     string    `json:"reason"`
}

// ExpirationResult is the best-effort summary of one expiration sweep.
type ExpirationResult struct {
	ProcessedCount int               `json:"processedCount"`
	ErrorCount     int               `json:"errorCount"`
	Errors         []ExpirationError `json:"errors,omitempty"`
}
