package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/crewdeskhq/crewdesk/internal/auth/domain"
	"github.com/crewdeskhq/crewdesk/internal/auth/store/storetest"
	"github.com/crewdeskhq/crewdesk/pkg/cryptox"
	"github.com/crewdeskhq/crewdesk/pkg/jwtx"
)

func newTestCodec(t *testing.T) *jwtx.Codec {
	t.Helper()
	return jwtx.NewCodec("test-secret", "test-issuer", time.Hour)
}

func seedActiveUser(t *testing.T, st *storetest.Store, id, email, password string) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	user := domain.User{
		ID:           id,
		Username:     "user-" + id,
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	st.SeedUser(user)
	return user
}

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newService := func() (*AuthService, *storetest.Store) {
		st := storetest.New()
		return &AuthService{Store: st, Tokens: newTestCodec(t)}, st
	}

	params := RegisterParams{
		Username:  "jdoe",
		Email:     "jdoe@example.com",
		Password:  "s3cretpass",
		FirstName: "Jane",
		LastName:  "Doe",
	}

	t.Run("creates user with default role and audit entry", func(t *testing.T) {
		svc, st := newService()

		user, err := svc.Register(ctx, params, domain.RequestMeta{IP: "10.0.0.1"})
		require.NoError(t, err)
		require.Equal(t, "jdoe", user.Username)
		require.Equal(t, "jdoe@example.com", user.Email)

		stored, ok := st.User(user.ID)
		require.True(t, ok)
		require.True(t, stored.IsActive)
		require.NotEqual(t, "s3cretpass", stored.PasswordHash)
		require.NoError(t, cryptox.VerifyPassword("s3cretpass", stored.PasswordHash))

		roles, err := st.Roles().ListUserRoles(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"user"}, roles)

		entries := st.AuditEntries()
		require.Len(t, entries, 1)
		require.Equal(t, domain.ActionRegister, entries[0].Action)
		require.Equal(t, user.ID, entries[0].UserID)
		require.Equal(t, "10.0.0.1", entries[0].IPAddress)
	})

	t.Run("rejects duplicate email before username", func(t *testing.T) {
		svc, _ := newService()

		_, err := svc.Register(ctx, params, domain.RequestMeta{})
		require.NoError(t, err)

		dup := params
		dup.Username = "other"
		_, err = svc.Register(ctx, dup, domain.RequestMeta{})
		require.ErrorIs(t, err, ErrEmailTaken)

		// Case variants collide too, matching the lower() indexes.
		dup.Email = strings.ToUpper(dup.Email)
		_, err = svc.Register(ctx, dup, domain.RequestMeta{})
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		svc, _ := newService()

		_, err := svc.Register(ctx, params, domain.RequestMeta{})
		require.NoError(t, err)

		dup := params
		dup.Email = "other@example.com"
		_, err = svc.Register(ctx, dup, domain.RequestMeta{})
		require.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("sanitized result never carries secrets", func(t *testing.T) {
		svc, _ := newService()

		user, err := svc.Register(ctx, params, domain.RequestMeta{})
		require.NoError(t, err)
		require.False(t, user.TwoFactorEnabled)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("issues session token and records login", func(t *testing.T) {
		st := storetest.New()
		codec := newTestCodec(t)
		svc := &AuthService{Store: st, Tokens: codec}
		user := seedActiveUser(t, st, "u1", "u1@example.com", "password1")

		result, challenge, err := svc.Login(ctx, "u1@example.com", "password1", domain.RequestMeta{IP: "10.0.0.2", UserAgent: "go-test"})
		require.NoError(t, err)
		require.Nil(t, challenge)
		require.Equal(t, user.ID, result.User.ID)

		claims, err := codec.VerifySession(result.Token)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.Subject)

		entries := st.AuditEntries()
		require.Len(t, entries, 1)
		require.Equal(t, domain.ActionLogin, entries[0].Action)
		require.Equal(t, "go-test", entries[0].UserAgent)
	})

	t.Run("email match is case-insensitive", func(t *testing.T) {
		st := storetest.New()
		codec := newTestCodec(t)
		svc := &AuthService{Store: st, Tokens: codec}
		user := seedActiveUser(t, st, "u1", "u1@example.com", "password1")

		result, challenge, err := svc.Login(ctx, "U1@Example.COM", "password1", domain.RequestMeta{})
		require.NoError(t, err)
		require.Nil(t, challenge)
		require.Equal(t, user.ID, result.User.ID)
	})

	t.Run("unknown email and wrong password return the same error", func(t *testing.T) {
		st := storetest.New()
		svc := &AuthService{Store: st, Tokens: newTestCodec(t)}
		seedActiveUser(t, st, "u1", "u1@example.com", "password1")

		_, _, unknownErr := svc.Login(ctx, "nobody@example.com", "password1", domain.RequestMeta{})
		require.ErrorIs(t, unknownErr, ErrInvalidCredentials)

		_, _, wrongErr := svc.Login(ctx, "u1@example.com", "wrong", domain.RequestMeta{})
		require.ErrorIs(t, wrongErr, ErrInvalidCredentials)

		require.Empty(t, st.AuditEntries())
	})

	t.Run("deactivated account is reported before the password check", func(t *testing.T) {
		st := storetest.New()
		svc := &AuthService{Store: st, Tokens: newTestCodec(t)}
		user := seedActiveUser(t, st, "u1", "u1@example.com", "password1")
		user.IsActive = false
		st.SeedUser(user)

		// Even a wrong password surfaces the deactivation error.
		_, _, err := svc.Login(ctx, "u1@example.com", "wrong", domain.RequestMeta{})
		require.ErrorIs(t, err, ErrAccountDeactivated)
	})

	t.Run("2FA account gets a challenge instead of a session", func(t *testing.T) {
		st := storetest.New()
		codec := newTestCodec(t)
		svc := &AuthService{Store: st, Tokens: codec}
		user := seedActiveUser(t, st, "u1", "u1@example.com", "password1")
		secret := "JBSWY3DPEHPK3PXP"
		user.TwoFactorEnabled = true
		user.TwoFactorSecret = &secret
		st.SeedUser(user)

		result, challenge, err := svc.Login(ctx, "u1@example.com", "password1", domain.RequestMeta{})
		require.NoError(t, err)
		require.NotNil(t, challenge)
		require.Empty(t, result.Token)

		// The temp token is a pending token, not a session.
		_, err = codec.VerifySession(challenge.TempToken)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
		claims, err := codec.VerifyPending(challenge.TempToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.Subject)

		// No login audit until the code is verified.
		require.Empty(t, st.AuditEntries())
	})
}

func TestVerifyTwoFactor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	secret := "JBSWY3DPEHPK3PXP"

	setup := func(t *testing.T) (*AuthService, *storetest.Store, *jwtx.Codec, domain.User) {
		st := storetest.New()
		codec := newTestCodec(t)
		svc := &AuthService{Store: st, Tokens: codec}
		user := seedActiveUser(t, st, "u1", "u1@example.com", "password1")
		user.TwoFactorEnabled = true
		user.TwoFactorSecret = &secret
		st.SeedUser(user)
		return svc, st, codec, user
	}

	t.Run("valid code exchanges the pending token for a session", func(t *testing.T) {
		svc, st, codec, user := setup(t)

		temp, err := codec.SignPending(user.ID)
		require.NoError(t, err)

		code, err := totp.GenerateCode(secret, time.Now())
		require.NoError(t, err)

		result, err := svc.VerifyTwoFactor(ctx, temp, code, domain.RequestMeta{})
		require.NoError(t, err)

		claims, err := codec.VerifySession(result.Token)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.Subject)

		entries := st.AuditEntries()
		require.Len(t, entries, 1)
		require.Equal(t, "verify_2fa", entries[0].Action)
	})

	t.Run("session token is not accepted as a pending token", func(t *testing.T) {
		svc, _, codec, user := setup(t)

		session, err := codec.SignSession(user.ID)
		require.NoError(t, err)

		code, err := totp.GenerateCode(secret, time.Now())
		require.NoError(t, err)

		_, err = svc.VerifyTwoFactor(ctx, session, code, domain.RequestMeta{})
		require.ErrorIs(t, err, ErrInvalidPendingToken)
	})

	t.Run("wrong code is rejected", func(t *testing.T) {
		svc, st, codec, user := setup(t)

		temp, err := codec.SignPending(user.ID)
		require.NoError(t, err)

		_, err = svc.VerifyTwoFactor(ctx, temp, "000000", domain.RequestMeta{})
		require.ErrorIs(t, err, ErrInvalidTwoFactorCode)
		require.Empty(t, st.AuditEntries())
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	st := storetest.New()
	svc := &AuthService{Store: st, Tokens: newTestCodec(t)}

	err := svc.Logout(context.Background(), "u1", domain.RequestMeta{IP: "10.0.0.3"})
	require.NoError(t, err)

	entries := st.AuditEntries()
	require.Len(t, entries, 1)
	require.Equal(t, domain.ActionLogout, entries[0].Action)
	require.Equal(t, "u1", entries[0].UserID)
}
