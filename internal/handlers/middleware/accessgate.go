package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/salonware/loyalty/internal/handlers/adminctx"
	"github.com/salonware/loyalty/internal/handlers/render"
	"github.com/salonware/loyalty/internal/models"
)

type sessionService interface {
	AdminFromRequest(ctx context.Context, r *http.Request) (models.Admin, error)
}

// SessionAuth admits any authenticated admin session and puts the admin
// into the request context.
func SessionAuth(sessions sessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, err := sessions.AdminFromRequest(r.Context(), r)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := adminctx.New(r.Context(), admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole narrows an already authenticated request to one role.
// Chain it after SessionAuth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, ok := adminctx.FromContext(r.Context())
			if !ok || admin.Role != role {
				render.ServiceError(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CronOrAdmin gates unattended triggers: it admits either a bearer token
// exactly matching the shared cron secret, or a session of an admin-role
// account. Credentials of any kind missing or invalid give 401; a valid
// session without the admin role gives 403.
func CronOrAdmin(sessions sessionService, cronSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok && cronSecret != "" &&
				subtle.ConstantTimeCompare([]byte(token), []byte(cronSecret)) == 1 {
				next.ServeHTTP(w, r)
				return
			}

			admin, err := sessions.AdminFromRequest(r.Context(), r)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if admin.Role != models.RoleAdmin {
				render.ServiceError(w, "Forbidden", http.StatusForbidden)
				return
			}

			ctx := adminctx.New(r.Context(), admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}

	return token, true
}
