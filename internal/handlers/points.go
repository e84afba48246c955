package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/salonware/loyalty/internal/apperrors"
	"github.com/salonware/loyalty/internal/handlers/render"
	"github.com/salonware/loyalty/internal/logger"
	"github.com/salonware/loyalty/internal/service/customer"
)

func handleEarnPoints(customerService customerService, l logger.Logger) http.Handler {
	type request struct {
		Amount         float64    `json:"amount" validate:"required,gt=0"`
		Description    string     `json:"description" validate:"required"`
		RelatedService *string    `json:"relatedService,omitempty"`
		ReservationID  *uuid.UUID `json:"reservationId,omitempty"`
	}

	type response struct {
		EarnedPoints   int64  `json:"earnedPoints"`
		PointsBalance  int64  `json:"pointsBalance"`
		HistoryEntryID string `json:"historyEntryId,omitempty"`
		ExpiresAt      string `json:"expiresAt,omitempty"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := customerID(w, r)
		if !ok {
			return
		}

		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		entry, err := customerService.EarnFromPayment(r.Context(), customer.EarnParams{
			CustomerID:     id,
			Amount:         req.Amount,
			Description:    req.Description,
			RelatedService: req.RelatedService,
			ReservationID:  req.ReservationID,
		})

		switch {
		case err == nil && entry.ID == uuid.Nil:
			// Amount too small to earn anything, nothing was booked
			render.JSON(w, response{EarnedPoints: 0})
		case err == nil:
			resp := response{
				EarnedPoints:   entry.Amount,
				PointsBalance:  entry.BalanceSnapshot,
				HistoryEntryID: entry.ID.String(),
			}
			if entry.ExpiresAt != nil {
				resp.ExpiresAt = entry.ExpiresAt.Format("2006-01-02")
			}
			render.JSON(w, resp)
		case errors.Is(err, apperrors.ErrCustomerNotFound):
			render.ServiceError(w, "Customer not found", http.StatusNotFound)
		default:
			l.Error("Failed to earn points", "customerID", id, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleUsePoints(customerService customerService, l logger.Logger) http.Handler {
	type request struct {
		Points         int64      `json:"points" validate:"required,gt=0"`
		Description    string     `json:"description" validate:"required"`
		RelatedService *string    `json:"relatedService,omitempty"`
		ReservationID  *uuid.UUID `json:"reservationId,omitempty"`
	}

	type response struct {
		UsedPoints    int64 `json:"usedPoints"`
		PointsBalance int64 `json:"pointsBalance"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := customerID(w, r)
		if !ok {
			return
		}

		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		entry, err := customerService.UsePoints(r.Context(), customer.UseParams{
			CustomerID:     id,
			Points:         req.Points,
			Description:    req.Description,
			RelatedService: req.RelatedService,
			ReservationID:  req.ReservationID,
		})

		switch {
		case err == nil:
			render.JSON(w, response{UsedPoints: req.Points, PointsBalance: entry.BalanceSnapshot})
		case errors.Is(err, apperrors.ErrCustomerNotFound):
			render.ServiceError(w, "Customer not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrBalanceInsufficient):
			render.ServiceError(w, "Insufficient point balance", http.StatusPaymentRequired)
		case errors.Is(err, apperrors.ErrBelowMinimumUsage):
			render.ServiceError(w, "Points below minimum usage", http.StatusUnprocessableEntity)
		default:
			l.Error("Failed to use points", "customerID", id, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleAdjustPoints(customerService customerService, l logger.Logger) http.Handler {
	type request struct {
		Delta       int64  `json:"delta" validate:"required"`
		Description string `json:"description" validate:"required"`
	}

	type response struct {
		Delta         int64 `json:"delta"`
		PointsBalance int64 `json:"pointsBalance"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := customerID(w, r)
		if !ok {
			return
		}

		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		entry, err := customerService.AdjustPoints(r.Context(), id, req.Delta, req.Description)

		switch {
		case err == nil:
			render.JSON(w, response{Delta: entry.Amount, PointsBalance: entry.BalanceSnapshot})
		case errors.Is(err, apperrors.ErrCustomerNotFound):
			render.ServiceError(w, "Customer not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrBalanceInsufficient):
			render.ServiceError(w, "Insufficient point balance", http.StatusPaymentRequired)
		default:
			l.Error("Failed to adjust points", "customerID", id, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
