package postgres

import (
	"context"

	"github.com/crewdeskhq/crewdesk/internal/auth/domain"
	"github.com/crewdeskhq/crewdesk/internal/auth/store"
)

type usersRepo struct {
	q querier
}

const userColumns = `user_id, username, email, password_hash, first_name, last_name,
	job_title, phone_number, is_active, two_factor_enabled, two_factor_secret,
	pending_two_factor_secret, created_at, updated_at, last_login_at`

func scanUser(row interface{ Scan(dest ...any) error }) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.JobTitle, &u.PhoneNumber, &u.IsActive, &u.TwoFactorEnabled, &u.TwoFactorSecret,
		&u.PendingTwoFactorSecret, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

func (r *usersRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`, email,
	).Scan(&exists)
	return exists, err
}

func (r *usersRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(username) = lower($1))`, username,
	).Scan(&exists)
	return exists, err
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO users (
			user_id, username, email, password_hash, first_name, last_name,
			job_title, phone_number, is_active, two_factor_enabled,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.JobTitle, u.PhoneNumber, u.IsActive, u.TwoFactorEnabled,
		u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateDetails(ctx context.Context, userID, firstName, lastName string, jobTitle, phoneNumber *string) (domain.User, error) {
	row := r.q.QueryRow(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, job_title = $4, phone_number = $5,
			updated_at = now()
		WHERE user_id = $1
		RETURNING `+userColumns,
		userID, firstName, lastName, jobTitle, phoneNumber,
	)
	return scanUser(row)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE user_id = $1`,
		userID, newHash,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) SetPendingTwoFactorSecret(ctx context.Context, userID, secret string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE users SET pending_two_factor_secret = $2, updated_at = now() WHERE user_id = $1`,
		userID, secret,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// PromotePendingTwoFactorSecret moves the staged secret into the live column
// and flips two_factor_enabled in one statement. The WHERE clause guards
// against promoting when no setup was initiated.
func (r *usersRepo) PromotePendingTwoFactorSecret(ctx context.Context, userID string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE users
		SET two_factor_secret = pending_two_factor_secret,
			pending_two_factor_secret = NULL,
			two_factor_enabled = TRUE,
			updated_at = now()
		WHERE user_id = $1 AND pending_two_factor_secret IS NOT NULL`,
		userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) ClearTwoFactor(ctx context.Context, userID string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE users
		SET two_factor_secret = NULL,
			pending_two_factor_secret = NULL,
			two_factor_enabled = FALSE,
			updated_at = now()
		WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) TouchLastLogin(ctx context.Context, userID string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE users SET last_login_at = now() WHERE user_id = $1`,
		userID,
	)
	return err
}
