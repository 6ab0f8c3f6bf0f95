package http

import (
	"errors"
	"net/http"

	"github.com/crewdeskhq/crewdesk/internal/auth/domain"
	"github.com/crewdeskhq/crewdesk/internal/auth/service"
	"github.com/crewdeskhq/crewdesk/pkg/httpx"
	"github.com/crewdeskhq/crewdesk/pkg/jwtx"
	"github.com/crewdeskhq/crewdesk/pkg/slogx"
)

type LoginHandler struct {
	AuthService  *service.AuthService
	Tokens       *jwtx.Codec
	CookieSecure bool
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Success bool              `json:"success"`
	Token   string            `json:"token"`
	User    domain.PublicUser `json:"user"`
}

type twoFactorChallengeResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	TwoFactorRequired bool   `json:"twoFactorRequired"`
	TempToken         string `json:"tempToken"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, httpx.BadRequest("Invalid request body"))
		return
	}

	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, httpx.BadRequest("Please provide email and password"))
		return
	}

	result, challenge, err := h.AuthService.Login(ctx, req.Email, req.Password, requestMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, httpx.Unauthorized("Invalid credentials"))
		case errors.Is(err, service.ErrAccountDeactivated):
			httpx.WriteError(w, httpx.Unauthorized("Your account has been deactivated. Please contact support."))
		default:
			slogx.FromContext(ctx).Error("login failed", "error", err)
			httpx.WriteError(w, httpx.ServerError("Server Error"))
		}
		return
	}

	if challenge != nil {
		httpx.WriteJSON(w, http.StatusOK, twoFactorChallengeResponse{
			Success:           true,
			Message:           "Please enter your 2FA code",
			TwoFactorRequired: true,
			TempToken:         challenge.TempToken,
		})
		return
	}

	setSessionCookie(w, result.Token, h.Tokens.SessionTTL(), h.CookieSecure)
	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		Success: true,
		Token:   result.Token,
		User:    result.User,
	})
}
