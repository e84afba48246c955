package adminctx

import (
	"context"

	"github.com/salonware/loyalty/internal/models"
)

type ctxKey string

const adminKey ctxKey = "admin"

// Create a new context with the admin
func New(ctx context.Context, a models.Admin) context.Context {
	return context.WithValue(ctx, adminKey, a)
}

// Extract the admin from the context
// Not ok also for cron invocations that passed the gate with the shared secret
func FromContext(ctx context.Context) (models.Admin, bool) {
	a, ok := ctx.Value(adminKey).(models.Admin)
	return a, ok
}
