package http

import (
	"errors"
	"net/http"

	"github.com/crewdeskhq/crewdesk/internal/auth/service"
	"github.com/crewdeskhq/crewdesk/pkg/httpx"
	"github.com/crewdeskhq/crewdesk/pkg/slogx"
)

type SetupTwoFactorHandler struct {
	TwoFactorService *service.TwoFactorService
}

type setupTwoFactorResponse struct {
	Success bool   `json:"success"`
	Secret  string `json:"secret"`
	QRCode  string `json:"qrCode"`
}

func (h *SetupTwoFactorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(w, httpx.Unauthorized("Not authorized to access this route"))
		return
	}

	enrollment, err := h.TwoFactorService.Setup(ctx, identity.ID, identity.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, httpx.NotFound("User not found"))
			return
		}
		slogx.FromContext(ctx).Error("2FA setup failed", "user_id", identity.ID, "error", err)
		httpx.WriteError(w, httpx.ServerError("Server Error"))
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, setupTwoFactorResponse{
		Success: true,
		Secret:  enrollment.Secret,
		QRCode:  enrollment.QRCode,
	})
}

type EnableTwoFactorHandler struct {
	TwoFactorService *service.TwoFactorService
}

type enableTwoFactorRequest struct {
	Token string `json:"token"`
}

func (h *EnableTwoFactorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(w, httpx.Unauthorized("Not authorized to access this route"))
		return
	}

	var req enableTwoFactorRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, httpx.BadRequest("Invalid request body"))
		return
	}

	err := h.TwoFactorService.Enable(ctx, identity.ID, req.Token, requestMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSetupNotInitiated):
			httpx.WriteError(w, httpx.BadRequest("2FA setup not initiated"))
		case errors.Is(err, service.ErrInvalidVerificationCode):
			httpx.WriteError(w, httpx.BadRequest("Invalid verification code"))
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, httpx.NotFound("User not found"))
		default:
			slogx.FromContext(ctx).Error("2FA enable failed", "user_id", identity.ID, "error", err)
			httpx.WriteError(w, httpx.ServerError("Server Error"))
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "2FA has been enabled successfully",
	})
}

type DisableTwoFactorHandler struct {
	TwoFactorService *service.TwoFactorService
}

type disableTwoFactorRequest struct {
	Password string `json:"password"`
	Token    string `json:"token"`
}

func (h *DisableTwoFactorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(w, httpx.Unauthorized("Not authorized to access this route"))
		return
	}

	var req disableTwoFactorRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, httpx.BadRequest("Invalid request body"))
		return
	}

	err := h.TwoFactorService.Disable(ctx, identity.ID, req.Password, req.Token, requestMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, httpx.NotFound("User not found"))
		case errors.Is(err, service.ErrInvalidPassword):
			httpx.WriteError(w, httpx.Unauthorized("Invalid password"))
		case errors.Is(err, service.ErrInvalidTwoFactorCode):
			httpx.WriteError(w, httpx.Unauthorized("Invalid 2FA code"))
		default:
			slogx.FromContext(ctx).Error("2FA disable failed", "user_id", identity.ID, "error", err)
			httpx.WriteError(w, httpx.ServerError("Server Error"))
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "2FA has been disabled successfully",
	})
}
