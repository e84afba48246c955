package handlers

import (
	"net/http"
	"time"

	"github.com/salonware/loyalty/internal/handlers/render"
	"github.com/salonware/loyalty/internal/logger"
)

// handleRunExpiration triggers the expiration sweep. Always answers 200
// with the best-effort summary; per-lot failures show up only inside the
// errors array. 500 means the eligibility query itself failed and no lots
// were processed.
func handleRunExpiration(expirationService expirationService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, err := expirationService.RunExpiration(r.Context(), time.Now())
		if err != nil {
			l.Error("Expiration batch failed to start", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		l.Info("Expiration batch finished",
			"processed", result.ProcessedCount,
			"errors", result.ErrorCount,
		)
		render.JSON(w, result)
	})
}
