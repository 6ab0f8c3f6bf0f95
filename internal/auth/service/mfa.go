package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crewdeskhq/crewdesk/internal/auth/domain"
	"github.com/crewdeskhq/crewdesk/internal/auth/store"
	"github.com/crewdeskhq/crewdesk/pkg/cryptox"
	"github.com/crewdeskhq/crewdesk/pkg/idx"
	"github.com/crewdeskhq/crewdesk/pkg/totpx"
)

var (
	ErrSetupNotInitiated       = errors.New("2FA setup not initiated")
	ErrInvalidVerificationCode = errors.New("invalid verification code")
	ErrInvalidPassword         = errors.New("invalid password")
)

// TwoFactorService implements the TOTP enrollment lifecycle. A secret stays
// in the pending column until the user proves possession of it with a valid
// code; only then does it go live.
type TwoFactorService struct {
	Store  store.Store
	Issuer string // issuer label shown in authenticator apps
}

// Setup generates a fresh TOTP secret, stages it against the user and
// returns the secret with a QR code for the authenticator app. Calling it
// again replaces any previously staged secret.
func (s *TwoFactorService) Setup(ctx context.Context, userID, email string) (totpx.Enrollment, error) {
	enrollment, err := totpx.GenerateSecret(s.Issuer, email)
	if err != nil {
		return totpx.Enrollment{}, fmt.Errorf("generate totp secret: %w", err)
	}

	if err := s.Store.Users().SetPendingTwoFactorSecret(ctx, userID, enrollment.Secret); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return totpx.Enrollment{}, ErrUserNotFound
		}
		return totpx.Enrollment{}, fmt.Errorf("store pending secret: %w", err)
	}

	return enrollment, nil
}

// Enable verifies the code against the staged secret and promotes it,
// turning 2FA on for the account.
func (s *TwoFactorService) Enable(ctx context.Context, userID, code string, meta domain.RequestMeta) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if user.PendingTwoFactorSecret == nil || *user.PendingTwoFactorSecret == "" {
		return ErrSetupNotInitiated
	}

	if !totpx.Verify(code, *user.PendingTwoFactorSecret) {
		return ErrInvalidVerificationCode
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().PromotePendingTwoFactorSecret(ctx, userID); err != nil {
			// The staged secret can vanish between the pre-check and
			// the transaction, say a concurrent disable.
			if errors.Is(err, store.ErrNotFound) {
				return ErrSetupNotInitiated
			}
			return fmt.Errorf("promote pending secret: %w", err)
		}

		return tx.AuditLog().Record(ctx, domain.AuditEntry{
			ID:         idx.New().String(),
			UserID:     userID,
			Action:     domain.ActionEnableTwoFactor,
			EntityType: domain.EntityUser,
			EntityID:   userID,
			Details:    "2FA enabled",
			IPAddress:  meta.IP,
			CreatedAt:  time.Now().UTC(),
		})
	})
}

// Disable turns 2FA off after re-authenticating with both the account
// password and a current TOTP code.
func (s *TwoFactorService) Disable(ctx context.Context, userID, password, code string, meta domain.RequestMeta) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return ErrInvalidPassword
	}

	if user.TwoFactorSecret == nil || !totpx.Verify(code, *user.TwoFactorSecret) {
		return ErrInvalidTwoFactorCode
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().ClearTwoFactor(ctx, userID); err != nil {
			return fmt.Errorf("clear two factor: %w", err)
		}

		return tx.AuditLog().Record(ctx, domain.AuditEntry{
			ID:         idx.New().String(),
			UserID:     userID,
			Action:     domain.ActionDisableTwoFactor,
			EntityType: domain.EntityUser,
			EntityID:   userID,
			Details:    "2FA disabled",
			IPAddress:  meta.IP,
			CreatedAt:  time.Now().UTC(),
		})
	})
}
