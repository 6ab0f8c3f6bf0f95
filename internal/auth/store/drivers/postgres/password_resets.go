package postgres

import (
	"context"

	"github.com/crewdeskhq/crewdesk/internal/auth/domain"
)

type passwordResetsRepo struct {
	q querier
}

// UpsertResetToken replaces any outstanding token for the user, so at most
// one reset token is live per account.
func (r *passwordResetsRepo) UpsertResetToken(ctx context.Context, t domain.PasswordResetToken) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO password_reset_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET token_hash = EXCLUDED.token_hash, expires_at = EXCLUDED.expires_at`,
		t.UserID, t.TokenHash, t.ExpiresAt,
	)
	return err
}

func (r *passwordResetsRepo) GetActiveByTokenHash(ctx context.Context, hash string) (domain.PasswordResetToken, error) {
	var t domain.PasswordResetToken
	err := r.q.QueryRow(ctx, `
		SELECT user_id, token_hash, expires_at
		FROM password_reset_tokens
		WHERE token_hash = $1 AND expires_at > now()`,
		hash,
	).Scan(&t.UserID, &t.TokenHash, &t.ExpiresAt)
	if err != nil {
		return domain.PasswordResetToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *passwordResetsRepo) DeleteResetToken(ctx context.Context, userID string) error {
	_, err := r.q.Exec(ctx,
		`DELETE FROM password_reset_tokens WHERE user_id = $1`, userID,
	)
	return err
}

func (r *passwordResetsRepo) DeleteExpiredResetTokens(ctx context.Context) error {
	_, err := r.q.Exec(ctx,
		`DELETE FROM password_reset_tokens WHERE expires_at <= now()`,
	)
	return err
}
