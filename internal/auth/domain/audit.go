package domain

import "time"

// Audit actions recorded by the auth flows.
const (
	ActionRegister         = "register"
	ActionLogin            = "login"
	ActionVerifyTwoFactor  = "verify_2fa"
	ActionEnableTwoFactor  = "enable_2fa"
	ActionDisableTwoFactor = "disable_2fa"
	ActionLogout           = "logout"
	ActionUpdateProfile    = "update_profile"
	ActionUpdatePassword   = "update_password"
	ActionForgotPassword   = "forgot_password"
	ActionResetPassword    = "reset_password"
)

// EntityUser is the entity type of all auth audit entries.
const EntityUser = "user"

// AuditEntry is one append-only row in the system log. It is written as a
// side effect of every state-changing auth operation and never read back by
// this service.
type AuditEntry struct {
	ID         string
	UserID     string // empty means anonymous (stored as NULL)
	Action     string
	EntityType string
	EntityID   string
	Details    string
	IPAddress  string
	UserAgent  string // empty when the transport did not supply one
	CreatedAt  time.Time
}

// RequestMeta carries the transport-level facts every audit entry wants.
type RequestMeta struct {
	IP        string
	UserAgent string
}
