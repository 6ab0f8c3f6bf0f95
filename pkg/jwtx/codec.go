package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the only error Verify* return for a bad token. Signature
// mismatch, malformed payload, expiry and wrong kind all collapse into it so
// callers cannot leak the failure reason.
var ErrInvalidToken = errors.New("jwtx: invalid token")

// Codec signs and verifies both token kinds with one HMAC-SHA256 secret.
type Codec struct {
	secret     []byte
	issuer     string
	sessionTTL time.Duration

	// now is swappable in tests.
	now func() time.Time
}

func NewCodec(secret, issuer string, sessionTTL time.Duration) *Codec {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Codec{
		secret:     []byte(secret),
		issuer:     issuer,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// SessionTTL reports the configured session token lifetime.
func (c *Codec) SessionTTL() time.Duration { return c.sessionTTL }

// SignSession issues a session token for the given user.
func (c *Codec) SignSession(subject string) (string, error) {
	return c.sign(KindSession, subject, c.sessionTTL)
}

// SignPending issues a pending-2FA token for the given user. The lifetime is
// always PendingTTL regardless of the configured session TTL.
func (c *Codec) SignPending(subject string) (string, error) {
	return c.sign(KindTwoFactorPending, subject, PendingTTL)
}

func (c *Codec) sign(kind TokenKind, subject string, ttl time.Duration) (string, error) {
	claims := newClaims(kind, subject, c.issuer, ttl, c.now())
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// VerifySession verifies a token and requires the session kind.
func (c *Codec) VerifySession(raw string) (Claims, error) {
	return c.verify(raw, KindSession)
}

// VerifyPending verifies a token and requires the pending-2FA kind.
func (c *Codec) VerifyPending(raw string) (Claims, error) {
	return c.verify(raw, KindTwoFactorPending)
}

func (c *Codec) verify(raw string, want TokenKind) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Kind != want || claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
