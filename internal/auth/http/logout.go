package http

import (
	"net/http"

	"github.com/crewdeskhq/crewdesk/internal/auth/service"
	"github.com/crewdeskhq/crewdesk/pkg/httpx"
	"github.com/crewdeskhq/crewdesk/pkg/slogx"
)

type LogoutHandler struct {
	AuthService  *service.AuthService
	CookieSecure bool
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(w, httpx.Unauthorized("Not authorized to access this route"))
		return
	}

	// The audit entry is best effort; the cookie is cleared regardless.
	if err := h.AuthService.Logout(ctx, identity.ID, requestMeta(r)); err != nil {
		slogx.FromContext(ctx).Error("failed to record logout", "user_id", identity.ID, "error", err)
	}

	clearSessionCookie(w, h.CookieSecure)
	httpx.WriteJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Logged out successfully",
	})
}
