package http

import (
	"errors"
	"net/http"

	"github.com/crewdeskhq/crewdesk/internal/auth/service"
	"github.com/crewdeskhq/crewdesk/pkg/httpx"
	"github.com/crewdeskhq/crewdesk/pkg/jwtx"
	"github.com/crewdeskhq/crewdesk/pkg/slogx"
)

type VerifyTwoFactorHandler struct {
	AuthService  *service.AuthService
	Tokens       *jwtx.Codec
	CookieSecure bool
}

type verifyTwoFactorRequest struct {
	TempToken     string `json:"tempToken"`
	TwoFactorCode string `json:"twoFactorCode"`
}

func (h *VerifyTwoFactorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req verifyTwoFactorRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, httpx.BadRequest("Invalid request body"))
		return
	}

	if req.TempToken == "" || req.TwoFactorCode == "" {
		httpx.WriteError(w, httpx.BadRequest("Please provide temporary token and 2FA code"))
		return
	}

	result, err := h.AuthService.VerifyTwoFactor(ctx, req.TempToken, req.TwoFactorCode, requestMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPendingToken):
			httpx.WriteError(w, httpx.Unauthorized("Invalid token"))
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, httpx.NotFound("User not found"))
		case errors.Is(err, service.ErrInvalidTwoFactorCode):
			httpx.WriteError(w, httpx.Unauthorized("Invalid 2FA code"))
		default:
			slogx.FromContext(ctx).Error("2FA verification failed", "error", err)
			httpx.WriteError(w, httpx.ServerError("Server Error"))
		}
		return
	}

	setSessionCookie(w, result.Token, h.Tokens.SessionTTL(), h.CookieSecure)
	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		Success: true,
		Token:   result.Token,
		User:    result.User,
	})
}
