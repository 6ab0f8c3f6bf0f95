package http

import (
	"errors"
	"net/http"

	"github.com/crewdeskhq/crewdesk/internal/auth/service"
	"github.com/crewdeskhq/crewdesk/pkg/httpx"
	"github.com/crewdeskhq/crewdesk/pkg/slogx"
)

type ForgotPasswordHandler struct {
	PasswordResetService *service.PasswordResetService
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *ForgotPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req forgotPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, httpx.BadRequest("Invalid request body"))
		return
	}

	if req.Email == "" {
		httpx.WriteError(w, httpx.BadRequest("Please provide an email"))
		return
	}

	err := h.PasswordResetService.ForgotPassword(ctx, req.Email, requestMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoUserWithEmail):
			httpx.WriteError(w, httpx.NotFound("There is no user with that email"))
		case errors.Is(err, service.ErrEmailSendFailed):
			httpx.WriteError(w, httpx.ServerError("Email could not be sent"))
		default:
			slogx.FromContext(ctx).Error("forgot password failed", "error", err)
			httpx.WriteError(w, httpx.ServerError("Server Error"))
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Password reset email sent",
	})
}
