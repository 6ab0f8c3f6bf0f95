package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crewdeskhq/crewdesk/internal/auth/domain"
)

// okHandler records whether the guarded handler was reached.
type okHandler struct {
	called bool
}

func (h *okHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	w.WriteHeader(http.StatusNoContent)
}

func requestWithIdentity(id domain.Identity) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	ctx := context.WithValue(req.Context(), identityCtxKey{}, id)
	return req.WithContext(ctx)
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	identity := domain.Identity{
		ID:    "u1",
		Roles:  []string{"user"},
	}

	t.Run("allowed", func(t *testing.T) {
		next := &okHandler{}
		rec := httptest.NewRecorder()
		RequireRole("admin", "user")(next).ServeHTTP(rec, requestWithIdentity(identity))

		require.True(t, next.called)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("forbidden", func(t *testing.T) {
		next := &okHandler{}
		rec := httptest.NewRecorder()
		RequireRole("admin")(next).ServeHTTP(rec, requestWithIdentity(identity))

		require.False(t, next.called)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "User role user is not authorized to access this route", decodeBody(t, rec)["error"])
	})

	t.Run("no identity", func(t *testing.T) {
		next := &okHandler{}
		rec := httptest.NewRecorder()
		RequireRole("admin")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/guarded", nil))

		require.False(t, next.called)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "User information not found", decodeBody(t, rec)["error"])
	})
}

func TestRequirePermission(t *testing.T) {
	t.Parallel()

	identity := domain.Identity{
		ID:          "u1",
		Roles:       []string{"user"},
		Permissions: []string{"projects:read", "tasks:read", "tasks:write"},
	}

	t.Run("allowed", func(t *testing.T) {
		next := &okHandler{}
		rec := httptest.NewRecorder()
		RequirePermission("tasks:read", "tasks:write")(next).ServeHTTP(rec, requestWithIdentity(identity))

		require.True(t, next.called)
	})

	t.Run("missing one of several", func(t *testing.T) {
		next := &okHandler{}
		rec := httptest.NewRecorder()
		RequirePermission("tasks:read", "users:manage")(next).ServeHTTP(rec, requestWithIdentity(identity))

		require.False(t, next.called)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "You do not have permission to perform this action", decodeBody(t, rec)["error"])
	})

	t.Run("no identity", func(t *testing.T) {
		next := &okHandler{}
		rec := httptest.NewRecorder()
		RequirePermission("tasks:read")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/guarded", nil))

		require.False(t, next.called)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestSessionTokenExtraction(t *testing.T) {
	t.Parallel()

	t.Run("bearer wins over cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "cookie-token"})

		require.Equal(t, "header-token", sessionToken(req))
	})

	t.Run("cookie fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "cookie-token"})

		require.Equal(t, "cookie-token", sessionToken(req))
	})

	t.Run("non-bearer scheme ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		require.Empty(t, sessionToken(req))
	})
}
