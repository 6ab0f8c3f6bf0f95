package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/crewdeskhq/crewdesk/internal/auth/domain"
	"github.com/crewdeskhq/crewdesk/internal/auth/store"
	"github.com/crewdeskhq/crewdesk/pkg/cryptox"
	"github.com/crewdeskhq/crewdesk/pkg/idx"
	"github.com/crewdeskhq/crewdesk/pkg/jwtx"
	"github.com/crewdeskhq/crewdesk/pkg/totpx"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountDeactivated   = errors.New("account deactivated")
	ErrEmailTaken           = errors.New("email already in use")
	ErrUsernameTaken        = errors.New("username already in use")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidPendingToken  = errors.New("invalid pending token")
	ErrInvalidTwoFactorCode = errors.New("invalid 2FA code")
)

// AuthService implements registration and the two-step login flow.
type AuthService struct {
	Store  store.Store
	Tokens *jwtx.Codec
	Logger *slog.Logger
}

type RegisterParams struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	JobTitle  *string
}

// Register creates a user with the default role and writes the registration
// audit entry in the same transaction. Duplicate email and username are
// reported separately, checked in that order.
func (s *AuthService) Register(ctx context.Context, p RegisterParams, meta domain.RequestMeta) (domain.PublicUser, error) {
	if taken, err := s.Store.Users().EmailExists(ctx, p.Email); err != nil {
		return domain.PublicUser{}, fmt.Errorf("check email: %w", err)
	} else if taken {
		return domain.PublicUser{}, ErrEmailTaken
	}

	if taken, err := s.Store.Users().UsernameExists(ctx, p.Username); err != nil {
		return domain.PublicUser{}, fmt.Errorf("check username: %w", err)
	} else if taken {
		return domain.PublicUser{}, ErrUsernameTaken
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: hash,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		JobTitle:     p.JobTitle,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				// Lost the race between the exists check and the insert.
				return ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}

		role, err := tx.Roles().GetRoleByName(ctx, domain.DefaultRole)
		switch {
		case errors.Is(err, store.ErrNotFound):
			// The default role is seeded by migrations; a missing role is
			// survivable, the user just starts with no roles.
		case err != nil:
			return fmt.Errorf("lookup default role: %w", err)
		default:
			if err := tx.Roles().AssignRole(ctx, user.ID, role.ID); err != nil {
				return fmt.Errorf("assign default role: %w", err)
			}
		}

		return tx.AuditLog().Record(ctx, domain.AuditEntry{
			ID:         idx.New().String(),
			UserID:     user.ID,
			Action:     domain.ActionRegister,
			EntityType: domain.EntityUser,
			EntityID:   user.ID,
			Details:    "User registration",
			IPAddress:  meta.IP,
			CreatedAt:  time.Now().UTC(),
		})
	})
	if err != nil {
		return domain.PublicUser{}, err
	}

	return user.Sanitize(), nil
}

// Login checks the credentials and either issues a session token or, when
// the account has 2FA enabled, a short-lived pending token that must be
// exchanged via VerifyTwoFactor.
func (s *AuthService) Login(ctx context.Context, email, password string, meta domain.RequestMeta) (domain.AuthResult, *domain.TwoFactorChallenge, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AuthResult{}, nil, ErrInvalidCredentials
		}
		return domain.AuthResult{}, nil, fmt.Errorf("lookup user: %w", err)
	}

	if !user.IsActive {
		return domain.AuthResult{}, nil, ErrAccountDeactivated
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return domain.AuthResult{}, nil, ErrInvalidCredentials
	}

	if user.TwoFactorEnabled {
		temp, err := s.Tokens.SignPending(user.ID)
		if err != nil {
			return domain.AuthResult{}, nil, fmt.Errorf("sign pending token: %w", err)
		}
		return domain.AuthResult{}, &domain.TwoFactorChallenge{TempToken: temp}, nil
	}

	return s.issueSession(ctx, user, domain.ActionLogin, "User login", meta)
}

// VerifyTwoFactor exchanges a pending token plus a valid TOTP code for a
// full session. Pending tokens expire ten minutes after login.
func (s *AuthService) VerifyTwoFactor(ctx context.Context, tempToken, code string, meta domain.RequestMeta) (domain.AuthResult, error) {
	claims, err := s.Tokens.VerifyPending(tempToken)
	if err != nil {
		return domain.AuthResult{}, ErrInvalidPendingToken
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AuthResult{}, ErrUserNotFound
		}
		return domain.AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}

	if user.TwoFactorSecret == nil || !totpx.Verify(code, *user.TwoFactorSecret) {
		return domain.AuthResult{}, ErrInvalidTwoFactorCode
	}

	result, _, err := s.issueSession(ctx, user, domain.ActionVerifyTwoFactor, "2FA verification", meta)
	return result, err
}

// Logout only records the audit entry; the handler clears the cookie and
// the stateless session token simply ages out.
func (s *AuthService) Logout(ctx context.Context, userID string, meta domain.RequestMeta) error {
	return s.Store.AuditLog().Record(ctx, domain.AuditEntry{
		ID:         idx.New().String(),
		UserID:     userID,
		Action:     domain.ActionLogout,
		EntityType: domain.EntityUser,
		EntityID:   userID,
		Details:    "User logout",
		IPAddress:  meta.IP,
		CreatedAt:  time.Now().UTC(),
	})
}

func (s *AuthService) issueSession(ctx context.Context, user domain.User, action, details string, meta domain.RequestMeta) (domain.AuthResult, *domain.TwoFactorChallenge, error) {
	token, err := s.Tokens.SignSession(user.ID)
	if err != nil {
		return domain.AuthResult{}, nil, fmt.Errorf("sign session token: %w", err)
	}

	if err := s.Store.AuditLog().Record(ctx, domain.AuditEntry{
		ID:         idx.New().String(),
		UserID:     user.ID,
		Action:     action,
		EntityType: domain.EntityUser,
		EntityID:   user.ID,
		Details:    details,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		return domain.AuthResult{}, nil, fmt.Errorf("record login: %w", err)
	}

	public := user.Sanitize()
	roles, err := s.Store.Roles().ListUserRoles(ctx, user.ID)
	if err != nil {
		s.logger().WarnContext(ctx, "failed to load roles for login response", "user_id", user.ID, "error", err)
	} else {
		public.Roles = roles
	}

	return domain.AuthResult{Token: token, User: public}, nil, nil
}

func (s *AuthService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
