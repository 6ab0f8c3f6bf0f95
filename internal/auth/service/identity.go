package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crewdeskhq/crewdesk/internal/auth/domain"
	"github.com/crewdeskhq/crewdesk/internal/auth/store"
)

// IdentityService turns a verified session subject into the request
// identity the access middleware attaches: the user must still exist and be
// active, and role and permission names are loaded fresh on every request
// so revocations take effect immediately.
type IdentityService struct {
	Store  store.Store
	Logger *slog.Logger
}

func (s *IdentityService) ResolveIdentity(ctx context.Context, userID string) (domain.Identity, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Identity{}, ErrUserNotFound
		}
		return domain.Identity{}, fmt.Errorf("lookup user: %w", err)
	}

	if !user.IsActive {
		return domain.Identity{}, ErrAccountDeactivated
	}

	roles, err := s.Store.Roles().ListUserRoles(ctx, userID)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("list roles: %w", err)
	}

	permissions, err := s.Store.Roles().ListUserPermissions(ctx, userID)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("list permissions: %w", err)
	}

	// Best effort; a failed timestamp update must not fail the request.
	if err := s.Store.Users().TouchLastLogin(ctx, userID); err != nil {
		s.logger().WarnContext(ctx, "failed to touch last_login", "user_id", userID, "error", err)
	}

	return domain.Identity{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Roles:       roles,
		Permissions: permissions,
	}, nil
}

func (s *IdentityService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
