package domain

import "time"

// User is the central identity record. TwoFactorSecret is set iff
// TwoFactorEnabled; PendingTwoFactorSecret only exists between setup and
// enable, and is cleared when it is promoted or the flow is abandoned.
type User struct {
	ID                     string
	Username               string
	Email                  string
	PasswordHash           string // bcrypt encoded
	FirstName              string
	LastName               string
	JobTitle               *string
	PhoneNumber            *string
	IsActive               bool
	TwoFactorEnabled       bool
	TwoFactorSecret        *string // TOTP secret, base32 (nullable)
	PendingTwoFactorSecret *string // secret awaiting enable confirmation (nullable)
	CreatedAt              time.Time
	UpdatedAt              time.Time
	LastLoginAt            *time.Time
}

// PublicUser is the sanitized shape serialized to clients. It can never
// carry the password hash or either TOTP secret.
type PublicUser struct {
	ID               string     `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	JobTitle         *string    `json:"jobTitle,omitempty"`
	PhoneNumber      *string    `json:"phoneNumber,omitempty"`
	TwoFactorEnabled bool       `json:"twoFactorEnabled"`
	CreatedAt        time.Time  `json:"createdAt"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
	Roles            []string   `json:"roles,omitempty"`
}

// Sanitize strips the secret fields for serialization.
func (u User) Sanitize() PublicUser {
	return PublicUser{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		JobTitle:         u.JobTitle,
		PhoneNumber:      u.PhoneNumber,
		TwoFactorEnabled: u.TwoFactorEnabled,
		CreatedAt:        u.CreatedAt,
		LastLoginAt:      u.LastLoginAt,
	}
}
