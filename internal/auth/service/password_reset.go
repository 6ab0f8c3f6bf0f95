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
	"github.com/crewdeskhq/crewdesk/pkg/mailx"
)

const resetTokenTTL = time.Hour

var (
	ErrNoUserWithEmail   = errors.New("no user with that email")
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	ErrEmailSendFailed   = errors.New("email could not be sent")
)

// PasswordResetService issues single-use reset tokens by email and consumes
// them. Only the SHA-256 fingerprint of a token is stored; the raw token
// travels solely in the reset link.
type PasswordResetService struct {
	Store     store.Store
	Mailer    mailx.Mailer
	ClientURL string // frontend base URL the reset link points at
	Logger    *slog.Logger
}

// ForgotPassword stores a reset token for the account and emails the reset
// link. A second request before the first token is used replaces it. If the
// email cannot be sent the token is withdrawn so no orphaned token stays
// valid for an hour.
func (s *PasswordResetService) ForgotPassword(ctx context.Context, email string, meta domain.RequestMeta) error {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoUserWithEmail
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	token := domain.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(raw),
		ExpiresAt: time.Now().UTC().Add(resetTokenTTL),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.PasswordResets().UpsertResetToken(ctx, token); err != nil {
			return fmt.Errorf("store reset token: %w", err)
		}

		return tx.AuditLog().Record(ctx, domain.AuditEntry{
			ID:         idx.New().String(),
			UserID:     user.ID,
			Action:     domain.ActionForgotPassword,
			EntityType: domain.EntityUser,
			EntityID:   user.ID,
			Details:    "Password reset requested",
			IPAddress:  meta.IP,
			CreatedAt:  time.Now().UTC(),
		})
	})
	if err != nil {
		return err
	}

	resetURL := s.ClientURL + "/reset-password/" + raw
	body := fmt.Sprintf(`
		<h1>Password Reset</h1>
		<p>You are receiving this email because you (or someone else) has requested a password reset.</p>
		<p>Please click the link below to reset your password:</p>
		<a href="%s" target="_blank">Reset Password</a>
		<p>If you didn't request this, please ignore this email and your password will remain unchanged.</p>`,
		resetURL)

	if err := s.Mailer.Send(ctx, user.Email, "Password Reset Request", body); err != nil {
		s.logger().ErrorContext(ctx, "reset email could not be sent", "user_id", user.ID, "error", err)

		if delErr := s.Store.PasswordResets().DeleteResetToken(ctx, user.ID); delErr != nil {
			s.logger().ErrorContext(ctx, "failed to withdraw reset token", "user_id", user.ID, "error", delErr)
		}
		return ErrEmailSendFailed
	}

	return nil
}

// ResetPassword consumes a reset token and sets the new password. The token
// row is deleted in the same transaction, so a token can only be spent once.
func (s *PasswordResetService) ResetPassword(ctx context.Context, rawToken, newPassword string, meta domain.RequestMeta) error {
	token, err := s.Store.PasswordResets().GetActiveByTokenHash(ctx, cryptox.FingerprintToken(rawToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, token.UserID, hash); err != nil {
			return fmt.Errorf("update password: %w", err)
		}

		if err := tx.PasswordResets().DeleteResetToken(ctx, token.UserID); err != nil {
			return fmt.Errorf("consume reset token: %w", err)
		}

		return tx.AuditLog().Record(ctx, domain.AuditEntry{
			ID:         idx.New().String(),
			UserID:     token.UserID,
			Action:     domain.ActionResetPassword,
			EntityType: domain.EntityUser,
			EntityID:   token.UserID,
			Details:    "Password reset completed",
			IPAddress:  meta.IP,
			CreatedAt:  time.Now().UTC(),
		})
	})
}

func (s *PasswordResetService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
