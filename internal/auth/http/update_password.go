package http

import (
	"errors"
	"net/http"

	"github.com/crewdeskhq/crewdesk/internal/auth/service"
	"github.com/crewdeskhq/crewdesk/pkg/httpx"
	"github.com/crewdeskhq/crewdesk/pkg/slogx"
)

type UpdatePasswordHandler struct {
	AccountService *service.AccountService
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *UpdatePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(w, httpx.Unauthorized("Not authorized to access this route"))
		return
	}

	var req updatePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, httpx.BadRequest("Invalid request body"))
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		httpx.WriteError(w, httpx.BadRequest("Please provide current and new password"))
		return
	}

	err := h.AccountService.UpdatePassword(ctx, identity.ID, req.CurrentPassword, req.NewPassword, requestMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, httpx.NotFound("User not found"))
		case errors.Is(err, service.ErrWrongCurrentPassword):
			httpx.WriteError(w, httpx.Unauthorized("Current password is incorrect"))
		default:
			slogx.FromContext(ctx).Error("failed to update password", "user_id", identity.ID, "error", err)
			httpx.WriteError(w, httpx.ServerError("Server Error"))
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Password updated successfully",
	})
}
