package domain

import "time"

// PasswordResetToken is the stored half of a reset link: only the SHA-256
// fingerprint of the raw token is kept. One row per user; issuing a new
// token replaces any prior one.
type PasswordResetToken struct {
	UserID    string
	TokenHash string
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at the given time.
func (t PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
