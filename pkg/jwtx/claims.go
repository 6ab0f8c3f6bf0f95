package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates the two signed-token variants issued by the
// service. Both kinds share one signing secret; verification dispatches on
// the kind tag so a pending-2FA token can never pass as a session.
type TokenKind string

const (
	// KindSession is a full session credential.
	KindSession TokenKind = "session"

	// KindTwoFactorPending is the short-lived token issued between password
	// verification and TOTP verification.
	KindTwoFactorPending TokenKind = "2fa_pending"
)

const (
	// DefaultSessionTTL is the session token lifetime unless overridden.
	DefaultSessionTTL = 24 * time.Hour

	// PendingTTL is the fixed lifetime of a pending-2FA token. It is not
	// configurable; the window to type a TOTP code is always ten minutes.
	PendingTTL = 10 * time.Minute
)

// Claims are the payload of both token kinds: the subject user ID, the
// standard issued/expiry claims, and the kind tag.
type Claims struct {
	jwt.RegisteredClaims

	Kind TokenKind `json:"kind"`
}

func newClaims(kind TokenKind, subject, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: kind,
	}
}
