package models

import (
	"time"
)

// StoreSettings is the raw operator input for the loyalty program.
// All fields are optional; missing values fall back to defaults when
// resolved into a point configuration.
//
// PointEarnRate is stored as a percentage: a stored value of 1 means
// 1% of the paid amount is credited as points.
type StoreSettings struct {
	PointEarnRate         *float64
	PointExpirationMonths *int
	PointMinUsage         *int
	UpdatedAt             time.Time
}
