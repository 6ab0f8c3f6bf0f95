package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/crewdeskhq/crewdesk/internal/auth/domain"
	"github.com/crewdeskhq/crewdesk/internal/auth/service"
	"github.com/crewdeskhq/crewdesk/pkg/httpx"
	"github.com/crewdeskhq/crewdesk/pkg/jwtx"
	"github.com/crewdeskhq/crewdesk/pkg/slogx"
)

type identityCtxKey struct{}

// IdentityFromContext returns the identity attached by AuthnMiddleware.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(domain.Identity)
	return id, ok
}

// sessionToken pulls the raw token from the Authorization header, falling
// back to the session cookie.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// AuthnMiddleware verifies the session token and resolves the caller's
// identity. Pending 2FA tokens are not sessions and are rejected here.
func AuthnMiddleware(tokens *jwtx.Codec, identities *service.IdentityService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := sessionToken(r)
			if raw == "" {
				httpx.WriteError(w, httpx.Unauthorized("Not authorized to access this route"))
				return
			}

			claims, err := tokens.VerifySession(raw)
			if err != nil {
				httpx.WriteError(w, httpx.Unauthorized("Not authorized to access this route"))
				return
			}

			identity, err := identities.ResolveIdentity(r.Context(), claims.Subject)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrUserNotFound):
					httpx.WriteError(w, httpx.Unauthorized("User no longer exists"))
				case errors.Is(err, service.ErrAccountDeactivated):
					httpx.WriteError(w, httpx.Unauthorized("User account is deactivated"))
				default:
					slogx.FromContext(r.Context()).Error("failed to resolve identity", "error", err)
					httpx.WriteError(w, httpx.Unauthorized("Not authorized to access this route"))
				}
				return
			}

			ctx := context.WithValue(r.Context(), identityCtxKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows the request through when the identity holds any of the
// given roles.
func RequireRole(roles ...string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, httpx.ServerError("User information not found"))
				return
			}

			if !identity.HasRole(roles...) {
				httpx.WriteError(w, httpx.Forbidden(
					"User role "+strings.Join(identity.Roles, ", ")+" is not authorized to access this route"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission allows the request through only when the identity holds
// every one of the given permissions.
func RequirePermission(permissions ...string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, httpx.ServerError("User information not found"))
				return
			}

			if !identity.HasPermissions(permissions...) {
				httpx.WriteError(w, httpx.Forbidden("You do not have permission to perform this action"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requestMeta collects the transport facts the audit log records.
func requestMeta(r *http.Request) domain.RequestMeta {
	return domain.RequestMeta{
		IP:        httpx.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}
