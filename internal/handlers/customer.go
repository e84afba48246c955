package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/salonware/loyalty/internal/apperrors"
	"github.com/salonware/loyalty/internal/handlers/render"
	"github.com/salonware/loyalty/internal/logger"
	"github.com/salonware/loyalty/internal/models"
	"github.com/salonware/loyalty/internal/pointcfg"
)

// customerID parses the {id} path segment, rendering 404 on garbage.
// A malformed id can't reference any customer, so it is the same case
// as an unknown one.
func customerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Customer not found", http.StatusNotFound)
		return uuid.Nil, false
	}

	return id, true
}

func handleCreateCustomer(customerService customerService, l logger.Logger) http.Handler {
	type request struct {
		Name string `json:"name" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		created, err := customerService.CreateCustomer(r.Context(), req.Name)
		if err != nil {
			l.Error("Failed to create customer", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSONWithStatus(w, customerResponse(created), http.StatusCreated)
	})
}

func handleGetCustomer(customerService customerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := customerID(w, r)
		if !ok {
			return
		}

		found, err := customerService.GetCustomer(r.Context(), id)

		switch {
		case err == nil:
			render.JSON(w, customerResponse(found))
		case errors.Is(err, apperrors.ErrCustomerNotFound):
			render.ServiceError(w, "Customer not found", http.StatusNotFound)
		default:
			l.Error("Failed to get customer", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleCustomerBalance(customerService customerService, settingsService settingsService, l logger.Logger) http.Handler {
	type response struct {
		PointsBalance  int64 `json:"pointsBalance"`
		MinPointsToUse int64 `json:"minPointsToUse"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := customerID(w, r)
		if !ok {
			return
		}

		found, err := customerService.GetCustomer(r.Context(), id)

		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrCustomerNotFound):
			render.ServiceError(w, "Customer not found", http.StatusNotFound)
			return
		default:
			l.Error("Failed to get customer balance", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		settings, err := settingsService.GetStoreSettings(r.Context())
		if err != nil {
			l.Error("Failed to get store settings", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		cfg := pointcfg.Resolve(settings)
		render.JSON(w, response{
			PointsBalance:  found.PointsBalance,
			MinPointsToUse: cfg.MinPointsToUse,
		})
	})
}

func handleListHistory(customerService customerService, l logger.Logger) http.Handler {
	type entry struct {
		ID              uuid.UUID  `json:"id"`
		Type            string     `json:"type"`
		Amount          int64      `json:"amount"`
		Description     string     `json:"description"`
		RelatedService  *string    `json:"relatedService,omitempty"`
		ReservationID   *uuid.UUID `json:"reservationId,omitempty"`
		BalanceSnapshot int64      `json:"balanceSnapshot"`
		ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
		IsExpired       bool       `json:"isExpired"`
		CreatedAt       time.Time  `json:"createdAt"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := customerID(w, r)
		if !ok {
			return
		}

		history, err := customerService.ListHistory(r.Context(), id)

		switch {
		case err == nil:
			entries := make([]entry, 0, len(history))
			for _, h := range history {
				entries = append(entries, entry{
					ID:              h.ID,
					Type:            h.Type,
					Amount:          h.Amount,
					Description:     h.Description,
					RelatedService:  h.RelatedService,
					ReservationID:   h.ReservationID,
					BalanceSnapshot: h.BalanceSnapshot,
					ExpiresAt:       h.ExpiresAt,
					IsExpired:       h.IsExpired,
					CreatedAt:       h.CreatedAt,
				})
			}
			render.JSON(w, entries)
		case errors.Is(err, apperrors.ErrCustomerNotFound):
			render.ServiceError(w, "Customer not found", http.StatusNotFound)
		default:
			l.Error("Failed to list point history", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

type customerBody struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	PointsBalance int64     `json:"pointsBalance"`
	CreatedAt     time.Time `json:"createdAt"`
}

func customerResponse(c models.Customer) customerBody {
	return customerBody{
		ID:            c.ID,
		Name:          c.Name,
		PointsBalance: c.PointsBalance,
		CreatedAt:     c.CreatedAt,
	}
}
