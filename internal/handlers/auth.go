package handlers

import (
	"errors"
	"net/http"

	"github.com/salonware/loyalty/internal/apperrors"
	"github.com/salonware/loyalty/internal/handlers/render"
	"github.com/salonware/loyalty/internal/logger"
)

func handleAdminLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	type response struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		token, admin, err := authService.Login(r.Context(), req.Username, req.Password)

		switch {
		case err == nil:
			authService.SetSessionCookie(w, token)
			render.JSON(w, response{Username: admin.Username, Role: admin.Role})
		case errors.Is(err, apperrors.ErrCredentialsInvalid):
			render.ServiceError(w, "Invalid username or password", http.StatusUnauthorized)
		default:
			l.Error("Failed to login admin", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleCreateAdmin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required,min=3"`
		Password string `json:"password" validate:"required,min=8"`
		Role     string `json:"role" validate:"required,oneof=admin staff"`
	}

	type response struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		admin, err := authService.CreateAdmin(r.Context(), req.Username, req.Password, req.Role)

		switch {
		case err == nil:
			render.JSONWithStatus(w, response{ID: admin.ID.String(), Username: admin.Username, Role: admin.Role}, http.StatusCreated)
		case errors.Is(err, apperrors.ErrAdminAlreadyExists):
			render.ServiceError(w, "Username already taken", http.StatusConflict)
		default:
			l.Error("Failed to create admin", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
