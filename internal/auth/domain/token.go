package domain

// AuthResult is what both direct login and 2FA verification produce: a
// signed session token plus the sanitized user.
type AuthResult struct {
	Token string
	User  PublicUser
}

// TwoFactorChallenge is returned instead of an AuthResult when the account
// has 2FA enabled. TempToken is a pending-2FA token, valid for ten minutes
// and accepted only by VerifyTwoFactor.
type TwoFactorChallenge struct {
	TempToken string
}
