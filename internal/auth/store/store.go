package store

import (
	"context"
	"errors"

	"github.com/crewdeskhq/crewdesk/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface, implemented by the postgres
// driver. Sub-repositories keep the surface tidy and let services depend on
// exactly the slice they need.
type Store interface {
	Users() Users
	Roles() Roles
	PasswordResets() PasswordResets
	AuditLog() AuditLog

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST Commit or Rollback the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn inside a transaction, committing when fn returns
	// nil and rolling back otherwise. This is the preferred way to make a
	// data change and its audit entry atomic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying pool.
	Close() error

	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store with commit/rollback control.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user with all secret columns populated.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is the login lookup.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// EmailExists and UsernameExists are the registration pre-checks.
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateDetails mutates the profile fields and returns the updated row.
	UpdateDetails(ctx context.Context, userID, firstName, lastName string, jobTitle, phoneNumber *string) (domain.User, error)

	// UpdatePasswordHash sets the bcrypt hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// SetPendingTwoFactorSecret stages a TOTP secret without enabling 2FA.
	SetPendingTwoFactorSecret(ctx context.Context, userID, secret string) error

	// PromotePendingTwoFactorSecret moves the pending secret into the
	// confirmed slot, clears the pending slot, and flips the enabled flag,
	// all in one statement.
	PromotePendingTwoFactorSecret(ctx context.Context, userID string) error

	// ClearTwoFactor disables 2FA and removes the confirmed secret.
	ClearTwoFactor(ctx context.Context, userID string) error

	// TouchLastLogin sets last_login_at to now. Best effort; callers may
	// ignore the error.
	TouchLastLogin(ctx context.Context, userID string) error
}

type Roles interface {
	// GetRoleByName fetches a role row, used to assign the default role.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// AssignRole links a user to a role.
	AssignRole(ctx context.Context, userID, roleID string) error

	// ListUserRoles returns the role names held by a user.
	ListUserRoles(ctx context.Context, userID string) ([]string, error)

	// ListUserPermissions returns the permission names granted through the
	// user's roles.
	ListUserPermissions(ctx context.Context, userID string) ([]string, error)
}

type PasswordResets interface {
	// UpsertResetToken stores a reset token fingerprint, replacing any
	// prior token for the same user. One active token per user.
	UpsertResetToken(ctx context.Context, t domain.PasswordResetToken) error

	// GetActiveByTokenHash returns a non-expired token by fingerprint.
	GetActiveByTokenHash(ctx context.Context, hash string) (domain.PasswordResetToken, error)

	// DeleteResetToken removes the token for a user (consumption, or
	// invalidation after a failed email dispatch).
	DeleteResetToken(ctx context.Context, userID string) error

	// DeleteExpiredResetTokens is housekeeping.
	DeleteExpiredResetTokens(ctx context.Context) error
}

type AuditLog interface {
	// Record appends one system log entry. The log is write-only from the
	// service's perspective.
	Record(ctx context.Context, e domain.AuditEntry) error
}
