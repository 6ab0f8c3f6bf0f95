package http

import (
	"errors"
	"net/http"

	"github.com/crewdeskhq/crewdesk/internal/auth/domain"
	"github.com/crewdeskhq/crewdesk/internal/auth/service"
	"github.com/crewdeskhq/crewdesk/internal/auth/store"
	"github.com/crewdeskhq/crewdesk/pkg/httpx"
	"github.com/crewdeskhq/crewdesk/pkg/slogx"
)

type RegisterHandler struct {
	AuthService *service.AuthService
}

type registerRequest struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	JobTitle  *string `json:"jobTitle"`
}

type registerResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	User    domain.PublicUser `json:"user"`
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, httpx.BadRequest("Invalid request body"))
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" ||
		req.FirstName == "" || req.LastName == "" {
		httpx.WriteError(w, httpx.BadRequest("Please provide all required fields"))
		return
	}

	user, err := h.AuthService.Register(ctx, service.RegisterParams{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		JobTitle:  req.JobTitle,
	}, requestMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, httpx.BadRequest("Email already in use"))
		case errors.Is(err, service.ErrUsernameTaken):
			httpx.WriteError(w, httpx.BadRequest("Username already in use"))
		case errors.Is(err, store.ErrAlreadyExists):
			httpx.WriteError(w, httpx.BadRequest("Duplicate field value entered"))
		default:
			slogx.FromContext(ctx).Error("registration failed", "error", err)
			httpx.WriteError(w, httpx.ServerError("Server Error"))
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, registerResponse{
		Success: true,
		Message: "User registered successfully. You can now log in.",
		User:    user,
	})
}
