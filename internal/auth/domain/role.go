package domain

import "time"

// DefaultRole is assigned to every newly registered user, when the role row
// exists.
const DefaultRole = "user"

type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Identity is what the access middleware derives from a session token and
// hands to downstream resource handlers.
type Identity struct {
	ID          string
	Username    string
	Email       string
	Roles       []string
	Permissions []string
}

// HasRole reports whether the identity holds any of the given roles.
func (id Identity) HasRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range id.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// HasPermissions reports whether the identity holds every listed permission.
func (id Identity) HasPermissions(required ...string) bool {
	have := make(map[string]struct{}, len(id.Permissions))
	for _, p := range id.Permissions {
		have[p] = struct{}{}
	}
	for _, want := range required {
		if _, ok := have[want]; !ok {
			return false
		}
	}
	return true
}
