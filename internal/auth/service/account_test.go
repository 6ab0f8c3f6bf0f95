package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crewdeskhq/crewdesk/internal/auth/domain"
	"github.com/crewdeskhq/crewdesk/internal/auth/store/storetest"
	"github.com/crewdeskhq/crewdesk/pkg/cryptox"
)

func TestMe(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := storetest.New()
	svc := &AccountService{Store: st}
	user := seedActiveUser(t, st, "u1", "u1@example.com", "password1")
	require.NoError(t, st.Roles().AssignRole(ctx, user.ID, "role-user"))
	require.NoError(t, st.Roles().AssignRole(ctx, user.ID, "role-manager"))

	profile, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, profile.ID)
	require.Equal(t, []string{"manager", "user"}, profile.Roles)

	_, err = svc.Me(ctx, "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateDetails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := storetest.New()
	svc := &AccountService{Store: st}
	user := seedActiveUser(t, st, "u1", "u1@example.com", "password1")

	title := "Engineer"
	phone := "+61 400 000 000"
	updated, err := svc.UpdateDetails(ctx, user.ID, "Janet", "Doherty", &title, &phone, domain.RequestMeta{IP: "10.0.0.1"})
	require.NoError(t, err)
	require.Equal(t, "Janet", updated.FirstName)
	require.Equal(t, "Doherty", updated.LastName)
	require.Equal(t, "Engineer", *updated.JobTitle)
	require.Equal(t, "+61 400 000 000", *updated.PhoneNumber)

	t.Run("omitted optional fields clear the columns", func(t *testing.T) {
		updated, err := svc.UpdateDetails(ctx, user.ID, "Janet", "Doherty", nil, nil, domain.RequestMeta{})
		require.NoError(t, err)
		require.Nil(t, updated.JobTitle)
		require.Nil(t, updated.PhoneNumber)
	})

	t.Run("audit entry per update", func(t *testing.T) {
		entries := st.AuditEntries()
		require.Len(t, entries, 2)
		require.Equal(t, domain.ActionUpdateProfile, entries[0].Action)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.UpdateDetails(ctx, "missing", "A", "B", nil, nil, domain.RequestMeta{})
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUpdatePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := storetest.New()
	svc := &AccountService{Store: st}
	user := seedActiveUser(t, st, "u1", "u1@example.com", "oldpassword")

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.UpdatePassword(ctx, user.ID, "nope", "newpassword1", domain.RequestMeta{})
		require.ErrorIs(t, err, ErrWrongCurrentPassword)

		stored, _ := st.User(user.ID)
		require.NoError(t, cryptox.VerifyPassword("oldpassword", stored.PasswordHash))
	})

	t.Run("success", func(t *testing.T) {
		err := svc.UpdatePassword(ctx, user.ID, "oldpassword", "newpassword1", domain.RequestMeta{IP: "10.0.0.1"})
		require.NoError(t, err)

		stored, _ := st.User(user.ID)
		require.NoError(t, cryptox.VerifyPassword("newpassword1", stored.PasswordHash))
		require.Error(t, cryptox.VerifyPassword("oldpassword", stored.PasswordHash))

		entries := st.AuditEntries()
		require.Len(t, entries, 1)
		require.Equal(t, domain.ActionUpdatePassword, entries[0].Action)
	})
}
