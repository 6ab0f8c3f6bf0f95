package http

import (
	"errors"
	"net/http"

	"github.com/crewdeskhq/crewdesk/internal/auth/service"
	"github.com/crewdeskhq/crewdesk/pkg/httpx"
	"github.com/crewdeskhq/crewdesk/pkg/slogx"
)

type UpdateDetailsHandler struct {
	AccountService *service.AccountService
}

type updateDetailsRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	JobTitle  *string `json:"jobTitle"`
	Phone     *string `json:"phone"`
}

func (h *UpdateDetailsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(w, httpx.Unauthorized("Not authorized to access this route"))
		return
	}

	var req updateDetailsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, httpx.BadRequest("Invalid request body"))
		return
	}

	if req.FirstName == "" || req.LastName == "" {
		httpx.WriteError(w, httpx.BadRequest("Please provide first name and last name"))
		return
	}

	user, err := h.AccountService.UpdateDetails(ctx, identity.ID, req.FirstName, req.LastName, req.JobTitle, req.Phone, requestMeta(r))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, httpx.NotFound("User not found"))
			return
		}
		slogx.FromContext(ctx).Error("failed to update details", "user_id", identity.ID, "error", err)
		httpx.WriteError(w, httpx.ServerError("Server Error"))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userDataResponse{Success: true, Data: user})
}
