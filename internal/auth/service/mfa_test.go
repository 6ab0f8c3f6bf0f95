package service

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/crewdeskhq/crewdesk/internal/auth/domain"
	"github.com/crewdeskhq/crewdesk/internal/auth/store"
	"github.com/crewdeskhq/crewdesk/internal/auth/store/storetest"
)

func TestTwoFactorSetup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := storetest.New()
	svc := &TwoFactorService{Store: st, Issuer: "CrewDesk"}
	user := seedActiveUser(t, st, "u1", "u1@example.com", "password1")

	enrollment, err := svc.Setup(ctx, user.ID, user.Email)
	require.NoError(t, err)
	require.NotEmpty(t, enrollment.Secret)
	require.Contains(t, enrollment.QRCode, "data:image/png;base64,")

	// The secret is staged, not live.
	stored, ok := st.User(user.ID)
	require.True(t, ok)
	require.False(t, stored.TwoFactorEnabled)
	require.Nil(t, stored.TwoFactorSecret)
	require.NotNil(t, stored.PendingTwoFactorSecret)
	require.Equal(t, enrollment.Secret, *stored.PendingTwoFactorSecret)

	t.Run("repeat setup replaces the staged secret", func(t *testing.T) {
		second, err := svc.Setup(ctx, user.ID, user.Email)
		require.NoError(t, err)
		require.NotEqual(t, enrollment.Secret, second.Secret)

		stored, _ := st.User(user.ID)
		require.Equal(t, second.Secret, *stored.PendingTwoFactorSecret)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Setup(ctx, "missing", "missing@example.com")
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestTwoFactorEnable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("valid code promotes the staged secret", func(t *testing.T) {
		st := storetest.New()
		svc := &TwoFactorService{Store: st, Issuer: "CrewDesk"}
		user := seedActiveUser(t, st, "u1", "u1@example.com", "password1")

		enrollment, err := svc.Setup(ctx, user.ID, user.Email)
		require.NoError(t, err)

		code, err := totp.GenerateCode(enrollment.Secret, time.Now())
		require.NoError(t, err)

		err = svc.Enable(ctx, user.ID, code, domain.RequestMeta{IP: "10.0.0.1"})
		require.NoError(t, err)

		stored, _ := st.User(user.ID)
		require.True(t, stored.TwoFactorEnabled)
		require.NotNil(t, stored.TwoFactorSecret)
		require.Equal(t, enrollment.Secret, *stored.TwoFactorSecret)
		require.Nil(t, stored.PendingTwoFactorSecret)

		entries := st.AuditEntries()
		require.Len(t, entries, 1)
		require.Equal(t, "enable_2fa", entries[0].Action)
	})

	t.Run("without setup", func(t *testing.T) {
		st := storetest.New()
		svc := &TwoFactorService{Store: st, Issuer: "CrewDesk"}
		user := seedActiveUser(t, st, "u1", "u1@example.com", "password1")

		err := svc.Enable(ctx, user.ID, "123456", domain.RequestMeta{})
		require.ErrorIs(t, err, ErrSetupNotInitiated)
	})

	t.Run("wrong code leaves 2FA off", func(t *testing.T) {
		st := storetest.New()
		svc := &TwoFactorService{Store: st, Issuer: "CrewDesk"}
		user := seedActiveUser(t, st, "u1", "u1@example.com", "password1")

		_, err := svc.Setup(ctx, user.ID, user.Email)
		require.NoError(t, err)

		err = svc.Enable(ctx, user.ID, "000000", domain.RequestMeta{})
		require.ErrorIs(t, err, ErrInvalidVerificationCode)

		stored, _ := st.User(user.ID)
		require.False(t, stored.TwoFactorEnabled)
		require.NotNil(t, stored.PendingTwoFactorSecret)
	})

	t.Run("secret cleared mid-flight", func(t *testing.T) {
		st := storetest.New()
		wrapped := &clearPendingStore{Store: st, userID: "u1"}
		svc := &TwoFactorService{Store: wrapped, Issuer: "CrewDesk"}
		user := seedActiveUser(t, st, "u1", "u1@example.com", "password1")

		enrollment, err := svc.Setup(ctx, user.ID, user.Email)
		require.NoError(t, err)

		code, err := totp.GenerateCode(enrollment.Secret, time.Now())
		require.NoError(t, err)

		err = svc.Enable(ctx, user.ID, code, domain.RequestMeta{})
		require.ErrorIs(t, err, ErrSetupNotInitiated)

		stored, _ := st.User(user.ID)
		require.False(t, stored.TwoFactorEnabled)
	})
}

// clearPendingStore drops the staged secret just before the enable
// transaction runs, standing in for a concurrent disable.
type clearPendingStore struct {
	*storetest.Store
	userID string
}

func (s *clearPendingStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	u, ok := s.User(s.userID)
	if ok {
		u.PendingTwoFactorSecret = nil
		s.SeedUser(u)
	}
	return s.Store.WithTx(ctx, fn)
}

func TestTwoFactorDisable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	secret := "JBSWY3DPEHPK3PXP"

	setup := func(t *testing.T) (*TwoFactorService, *storetest.Store, domain.User) {
		st := storetest.New()
		svc := &TwoFactorService{Store: st, Issuer: "CrewDesk"}
		user := seedActiveUser(t, st, "u1", "u1@example.com", "password1")
		user.TwoFactorEnabled = true
		user.TwoFactorSecret = &secret
		st.SeedUser(user)
		return svc, st, user
	}

	t.Run("password plus code turns 2FA off", func(t *testing.T) {
		svc, st, user := setup(t)

		code, err := totp.GenerateCode(secret, time.Now())
		require.NoError(t, err)

		err = svc.Disable(ctx, user.ID, "password1", code, domain.RequestMeta{})
		require.NoError(t, err)

		stored, _ := st.User(user.ID)
		require.False(t, stored.TwoFactorEnabled)
		require.Nil(t, stored.TwoFactorSecret)

		entries := st.AuditEntries()
		require.Len(t, entries, 1)
		require.Equal(t, "disable_2fa", entries[0].Action)
	})

	t.Run("wrong password leaves 2FA on", func(t *testing.T) {
		svc, st, user := setup(t)

		code, err := totp.GenerateCode(secret, time.Now())
		require.NoError(t, err)

		err = svc.Disable(ctx, user.ID, "wrong", code, domain.RequestMeta{})
		require.ErrorIs(t, err, ErrInvalidPassword)

		stored, _ := st.User(user.ID)
		require.True(t, stored.TwoFactorEnabled)
	})

	t.Run("wrong code leaves 2FA on", func(t *testing.T) {
		svc, st, user := setup(t)

		err := svc.Disable(ctx, user.ID, "password1", "000000", domain.RequestMeta{})
		require.ErrorIs(t, err, ErrInvalidTwoFactorCode)

		stored, _ := st.User(user.ID)
		require.True(t, stored.TwoFactorEnabled)
		require.NotNil(t, stored.TwoFactorSecret)
	})
}
