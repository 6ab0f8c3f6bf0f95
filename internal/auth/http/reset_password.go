package http

import (
	"errors"
	"net/http"

	"github.com/crewdeskhq/crewdesk/internal/auth/service"
	"github.com/crewdeskhq/crewdesk/pkg/httpx"
	"github.com/crewdeskhq/crewdesk/pkg/slogx"
)

type ResetPasswordHandler struct {
	PasswordResetService *service.PasswordResetService
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rawToken := r.PathValue("token")
	if rawToken == "" {
		httpx.WriteError(w, httpx.BadRequest("Invalid or expired token"))
		return
	}

	var req resetPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, httpx.BadRequest("Invalid request body"))
		return
	}

	if req.Password == "" {
		httpx.WriteError(w, httpx.BadRequest("Please provide a new password"))
		return
	}

	err := h.PasswordResetService.ResetPassword(ctx, rawToken, req.Password, requestMeta(r))
	if err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			httpx.WriteError(w, httpx.BadRequest("Invalid or expired token"))
			return
		}
		slogx.FromContext(ctx).Error("reset password failed", "error", err)
		httpx.WriteError(w, httpx.ServerError("Server Error"))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Password reset successful",
	})
}
