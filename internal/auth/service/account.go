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
)

var ErrWrongCurrentPassword = errors.New("current password is incorrect")

// AccountService covers the signed-in user's own profile operations.
type AccountService struct {
	Store store.Store
}

// Me returns the caller's profile with role names attached.
func (s *AccountService) Me(ctx context.Context, userID string) (domain.PublicUser, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PublicUser{}, ErrUserNotFound
		}
		return domain.PublicUser{}, fmt.Errorf("lookup user: %w", err)
	}

	roles, err := s.Store.Roles().ListUserRoles(ctx, userID)
	if err != nil {
		return domain.PublicUser{}, fmt.Errorf("list roles: %w", err)
	}

	public := user.Sanitize()
	public.Roles = roles
	return public, nil
}

// UpdateDetails replaces the caller's name, job title and phone number.
// Omitted optional fields are set to NULL, matching a full-form submit.
func (s *AccountService) UpdateDetails(ctx context.Context, userID, firstName, lastName string, jobTitle, phone *string, meta domain.RequestMeta) (domain.PublicUser, error) {
	var updated domain.User

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		updated, err = tx.Users().UpdateDetails(ctx, userID, firstName, lastName, jobTitle, phone)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("update details: %w", err)
		}

		return tx.AuditLog().Record(ctx, domain.AuditEntry{
			ID:         idx.New().String(),
			UserID:     userID,
			Action:     domain.ActionUpdateProfile,
			EntityType: domain.EntityUser,
			EntityID:   userID,
			Details:    "Profile details updated",
			IPAddress:  meta.IP,
			CreatedAt:  time.Now().UTC(),
		})
	})
	if err != nil {
		return domain.PublicUser{}, err
	}

	return updated.Sanitize(), nil
}

// UpdatePassword changes the caller's password after re-checking the
// current one.
func (s *AccountService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string, meta domain.RequestMeta) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if err := cryptox.VerifyPassword(currentPassword, user.PasswordHash); err != nil {
		return ErrWrongCurrentPassword
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
			return fmt.Errorf("update password: %w", err)
		}

		return tx.AuditLog().Record(ctx, domain.AuditEntry{
			ID:         idx.New().String(),
			UserID:     userID,
			Action:     domain.ActionUpdatePassword,
			EntityType: domain.EntityUser,
			EntityID:   userID,
			Details:    "Password updated",
			IPAddress:  meta.IP,
			CreatedAt:  time.Now().UTC(),
		})
	})
}
