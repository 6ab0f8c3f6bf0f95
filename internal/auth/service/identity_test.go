package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crewdeskhq/crewdesk/internal/auth/store/storetest"
)

func TestResolveIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("loads roles and permissions", func(t *testing.T) {
		st := storetest.New()
		svc := &IdentityService{Store: st}
		user := seedActiveUser(t, st, "u1", "u1@example.com", "password1")
		require.NoError(t, st.Roles().AssignRole(ctx, user.ID, "role-user"))

		identity, err := svc.ResolveIdentity(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, user.ID, identity.ID)
		require.Equal(t, user.Username, identity.Username)
		require.Equal(t, []string{"user"}, identity.Roles)
		require.Equal(t, []string{"projects:read", "tasks:read", "tasks:write"}, identity.Permissions)

		// Each resolved request bumps last_login.
		stored, _ := st.User(user.ID)
		require.NotNil(t, stored.LastLoginAt)
	})

	t.Run("permissions are deduplicated across roles", func(t *testing.T) {
		st := storetest.New()
		svc := &IdentityService{Store: st}
		user := seedActiveUser(t, st, "u1", "u1@example.com", "password1")
		require.NoError(t, st.Roles().AssignRole(ctx, user.ID, "role-user"))
		require.NoError(t, st.Roles().AssignRole(ctx, user.ID, "role-manager"))

		identity, err := svc.ResolveIdentity(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, []string{
			"projects:read", "projects:write", "reports:view",
			"tasks:read", "tasks:write", "teams:manage",
		}, identity.Permissions)
	})

	t.Run("unknown user", func(t *testing.T) {
		st := storetest.New()
		svc := &IdentityService{Store: st}

		_, err := svc.ResolveIdentity(ctx, "missing")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("deactivated user", func(t *testing.T) {
		st := storetest.New()
		svc := &IdentityService{Store: st}
		user := seedActiveUser(t, st, "u1", "u1@example.com", "password1")
		user.IsActive = false
		st.SeedUser(user)

		_, err := svc.ResolveIdentity(ctx, user.ID)
		require.ErrorIs(t, err, ErrAccountDeactivated)
	})
}
