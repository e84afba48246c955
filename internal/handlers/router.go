package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/salonware/loyalty/internal/handlers/middleware"
	"github.com/salonware/loyalty/internal/logger"
	"github.com/salonware/loyalty/internal/models"
	"github.com/salonware/loyalty/internal/service/customer"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	customerService customerService,
	expirationService expirationService,
	settingsService settingsService,
	cronSecret string,
	logger logger.Logger,
) http.Handler {
	withSession := middleware.SessionAuth(authService)
	withAdminRole := func(h http.Handler) http.Handler {
		return withSession(middleware.RequireRole(models.RoleAdmin)(h))
	}
	withCronOrAdmin := middleware.CronOrAdmin(authService, cronSecret)

	api := http.NewServeMux()

	api.Handle("POST /admin/login", handleAdminLogin(authService, logger))
	api.Handle("POST /admin/admins", withAdminRole(handleCreateAdmin(authService, logger)))
	api.Handle("GET /admin/settings", withSession(handleGetSettings(settingsService, logger)))
	api.Handle("PUT /admin/settings", withAdminRole(handleSaveSettings(settingsService, logger)))

	// Reachable by overlapping cron triggers and operators both; the job
	// itself is idempotent so double invocation is harmless
	api.Handle("POST /admin/points/expire", withCronOrAdmin(handleRunExpiration(expirationService, logger)))

	api.Handle("POST /customers", withSession(handleCreateCustomer(customerService, logger)))
	api.Handle("GET /customers/{id}", withSession(handleGetCustomer(customerService, logger)))
	api.Handle("GET /customers/{id}/balance", withSession(handleCustomerBalance(customerService, settingsService, logger)))
	api.Handle("GET /customers/{id}/points", withSession(handleListHistory(customerService, logger)))
	api.Handle("POST /customers/{id}/points/earn", withSession(handleEarnPoints(customerService, logger)))
	api.Handle("POST /customers/{id}/points/use", withSession(handleUsePoints(customerService, logger)))
	api.Handle("POST /customers/{id}/points/adjust", withAdminRole(handleAdjustPoints(customerService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	return chain(root,
		middleware.LoggerMiddleware(logger),
	)
}

type authService interface {
	// Check credentials and return a signed session token
	// Has to return apperrors.ErrCredentialsInvalid on unknown username or wrong password
	Login(ctx context.Context, username string, password string) (string, models.Admin, error)

	// Register a new admin account
	// Has to return apperrors.ErrAdminAlreadyExists if username is taken
	CreateAdmin(ctx context.Context, username string, password string, role string) (models.Admin, error)

	// Attach session token to the response
	SetSessionCookie(w http.ResponseWriter, token string)

	// Authenticate request by session cookie
	AdminFromRequest(ctx context.Context, r *http.Request) (models.Admin, error)
}

type customerService interface {
	CreateCustomer(ctx context.Context, name string) (models.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (models.Customer, error)
	ListHistory(ctx context.Context, customerID uuid.UUID) ([]models.PointHistoryEntry, error)
	EarnFromPayment(ctx context.Context, arg customer.EarnParams) (models.PointHistoryEntry, error)
	UsePoints(ctx context.Context, arg customer.UseParams) (models.PointHistoryEntry, error)
	AdjustPoints(ctx context.Context, customerID uuid.UUID, delta int64, description string) (models.PointHistoryEntry, error)
}

type expirationService interface {
	RunExpiration(ctx context.Context, now time.Time) (models.ExpirationResult, error)
}

type settingsService interface {
	GetStoreSettings(ctx context.Context) (*models.StoreSettings, error)
	SaveStoreSettings(ctx context.Context, settings models.StoreSettings) (models.StoreSettings, error)
}
