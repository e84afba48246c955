package pointcfg

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/salonware/loyalty/internal/models"
)

const (
	// Stored as a percentage: 1 means 1% of the paid amount
	defaultEarnRatePercent = float64(1)

	defaultExpirationMonths = 12
	defaultMinPointsToUse   = 100
)

var percent = decimal.NewFromInt(100)

// Config is an always-valid loyalty program configuration.
type Config struct {
	// Fraction of the paid amount credited as points (0.01 means 1%)
	EarnRate decimal.Decimal

	ExpirationMonths int
	MinPointsToUse   int64
}

func Default() Config {
	return Config{
		EarnRate:         decimal.NewFromFloat(defaultEarnRatePercent).Div(percent),
		ExpirationMonths: defaultExpirationMonths,
		MinPointsToUse:   defaultMinPointsToUse,
	}
}

// Resolve turns possibly partial store settings into a valid configuration.
// Missing or non-finite values fall back to defaults; out-of-range values
// are clamped to their minimums. Never fails.
func Resolve(settings *models.StoreSettings) Config {
	cfg := Default()
	if settings == nil {
		return cfg
	}

	if rate := settings.PointEarnRate; rate != nil && isFinite(*rate) {
		cfg.EarnRate = decimal.NewFromFloat(*rate).Div(percent)
	}

	if months := settings.PointExpirationMonths; months != nil {
		cfg.ExpirationMonths = max(*months, 1)
	}

	if minUsage := settings.PointMinUsage; minUsage != nil {
		cfg.MinPointsToUse = int64(max(*minUsage, 0))
	}

	return cfg
}

// CalculateEarnedPoints returns the points credited for a paid amount,
// rounded down so the customer is never over-credited. Non-positive and
// non-finite amounts earn nothing.
func CalculateEarnedPoints(amount float64, cfg Config) int64 {
	if !isFinite(amount) || amount <= 0 {
		return 0
	}

	return decimal.NewFromFloat(amount).Mul(cfg.EarnRate).Floor().IntPart()
}

// CalculateExpiryDate advances from by the configured number of calendar months.
func CalculateExpiryDate(cfg Config, from time.Time) time.Time {
	return from.AddDate(0, cfg.ExpirationMonths, 0)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
