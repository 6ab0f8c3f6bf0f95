package http

import (
	"errors"
	"net/http"

	"github.com/crewdeskhq/crewdesk/internal/auth/domain"
	"github.com/crewdeskhq/crewdesk/internal/auth/service"
	"github.com/crewdeskhq/crewdesk/pkg/httpx"
	"github.com/crewdeskhq/crewdesk/pkg/slogx"
)

type MeHandler struct {
	AccountService *service.AccountService
}

type userDataResponse struct {
	Success bool              `json:"success"`
	Data    domain.PublicUser `json:"data"`
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(w, httpx.Unauthorized("Not authorized to access this route"))
		return
	}

	user, err := h.AccountService.Me(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, httpx.NotFound("User not found"))
			return
		}
		slogx.FromContext(ctx).Error("failed to load profile", "user_id", identity.ID, "error", err)
		httpx.WriteError(w, httpx.ServerError("Server Error"))
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, userDataResponse{Success: true, Data: user})
}
