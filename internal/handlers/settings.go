package handlers

import (
	"net/http"

	"github.com/salonware/loyalty/internal/handlers/render"
	"github.com/salonware/loyalty/internal/logger"
	"github.com/salonware/loyalty/internal/models"
	"github.com/salonware/loyalty/internal/pointcfg"
)

type settingsBody struct {
	PointEarnRate         *float64 `json:"pointEarnRate"`
	PointExpirationMonths *int     `json:"pointExpirationMonths"`
	PointMinUsage         *int     `json:"pointMinUsage"`

	// Effective values after defaults are applied
	Resolved resolvedBody `json:"resolved"`
}

type resolvedBody struct {
	EarnRate         float64 `json:"earnRate"`
	ExpirationMonths int     `json:"expirationMonths"`
	MinPointsToUse   int64   `json:"minPointsToUse"`
}

func settingsResponse(settings *models.StoreSettings) settingsBody {
	cfg := pointcfg.Resolve(settings)

	body := settingsBody{
		Resolved: resolvedBody{
			EarnRate:         cfg.EarnRate.InexactFloat64(),
			ExpirationMonths: cfg.ExpirationMonths,
			MinPointsToUse:   cfg.MinPointsToUse,
		},
	}
	if settings != nil {
		body.PointEarnRate = settings.PointEarnRate
		body.PointExpirationMonths = settings.PointExpirationMonths
		body.PointMinUsage = settings.PointMinUsage
	}

	return body
}

func handleGetSettings(settingsService settingsService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		settings, err := settingsService.GetStoreSettings(r.Context())
		if err != nil {
			l.Error("Failed to get store settings", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, settingsResponse(settings))
	})
}

func handleSaveSettings(settingsService settingsService, l logger.Logger) http.Handler {
	type request struct {
		PointEarnRate         *float64 `json:"pointEarnRate" validate:"omitempty,gte=0"`
		PointExpirationMonths *int     `json:"pointExpirationMonths" validate:"omitempty,gte=1"`
		PointMinUsage         *int     `json:"pointMinUsage" validate:"omitempty,gte=0"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		saved, err := settingsService.SaveStoreSettings(r.Context(), models.StoreSettings{
			PointEarnRate:         req.PointEarnRate,
			PointExpirationMonths: req.PointExpirationMonths,
			PointMinUsage:         req.PointMinUsage,
		})
		if err != nil {
			l.Error("Failed to save store settings", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, settingsResponse(&saved))
	})
}
