// Package storetest provides an in-memory store.Store for service and
// handler tests. It mirrors the postgres driver's observable behavior
// (sentinel errors, upsert semantics) without needing a database.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/crewdeskhq/crewdesk/internal/auth/domain"
	"github.com/crewdeskhq/crewdesk/internal/auth/store"
)

type Store struct {
	mu sync.Mutex

	users        map[string]domain.User // by id
	roles        map[string]domain.Role // by name
	userRoles    map[string][]string    // user id -> role ids
	rolePerms    map[string][]string    // role id -> permission names
	resetTokens  map[string]domain.PasswordResetToken
	auditEntries []domain.AuditEntry
}

// New returns an empty store with the default roles seeded, matching what
// migrations guarantee in production.
func New() *Store {
	s := &Store{
		users:       make(map[string]domain.User),
		roles:       make(map[string]domain.Role),
		userRoles:   make(map[string][]string),
		rolePerms:   make(map[string][]string),
		resetTokens: make(map[string]domain.PasswordResetToken),
	}
	s.SeedRole("role-admin", "admin", "projects:read", "projects:write", "tasks:read", "tasks:write", "teams:manage", "users:manage", "reports:view")
	s.SeedRole("role-manager", "manager", "projects:read", "projects:write", "tasks:read", "tasks:write", "teams:manage", "reports:view")
	s.SeedRole("role-user", "user", "projects:read", "tasks:read", "tasks:write")
	return s
}

// SeedRole registers a role and its permission names.
func (s *Store) SeedRole(id, name string, permissions ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[name] = domain.Role{ID: id, Name: name, CreatedAt: time.Now().UTC()}
	s.rolePerms[id] = permissions
}

// SeedUser inserts a user directly, bypassing the registration flow.
func (s *Store) SeedUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// User returns a copy of the stored user for assertions.
func (s *Store) User(id string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

// ResetToken returns the stored reset token for a user, if any.
func (s *Store) ResetToken(userID string) (domain.PasswordResetToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.resetTokens[userID]
	return t, ok
}

// AuditEntries returns a copy of everything recorded so far.
func (s *Store) AuditEntries() []domain.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuditEntry, len(s.auditEntries))
	copy(out, s.auditEntries)
	return out
}

func (s *Store) Users() store.Users                   { return (*usersRepo)(s) }
func (s *Store) Roles() store.Roles                   { return (*rolesRepo)(s) }
func (s *Store) PasswordResets() store.PasswordResets { return (*passwordResetsRepo)(s) }
func (s *Store) AuditLog() store.AuditLog             { return (*auditRepo)(s) }

func (s *Store) ApplyMigrations() error         { return nil }
func (s *Store) Close() error                   { return nil }
func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	return &fakeTx{Store: s}, nil
}

// WithTx runs fn against the same store. The fake has no rollback; tests
// that exercise transactional atomicity belong in the e2e suite.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, _ := s.Tx(ctx)
	return fn(tx)
}

type fakeTx struct {
	*Store
}

func (t *fakeTx) Commit() error   { return nil }
func (t *fakeTx) Rollback() error { return nil }

type usersRepo Store

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, store.ErrNotFound
}

func (r *usersRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *usersRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return store.ErrAlreadyExists
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *usersRepo) UpdateDetails(ctx context.Context, userID, firstName, lastName string, jobTitle, phoneNumber *string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	u.FirstName = firstName
	u.LastName = lastName
	u.JobTitle = jobTitle
	u.PhoneNumber = phoneNumber
	u.UpdatedAt = time.Now().UTC()
	r.users[userID] = u
	return u, nil
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = newHash
	u.UpdatedAt = time.Now().UTC()
	r.users[userID] = u
	return nil
}

func (r *usersRepo) SetPendingTwoFactorSecret(ctx context.Context, userID, secret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.PendingTwoFactorSecret = &secret
	u.UpdatedAt = time.Now().UTC()
	r.users[userID] = u
	return nil
}

func (r *usersRepo) PromotePendingTwoFactorSecret(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.PendingTwoFactorSecret == nil {
		return store.ErrNotFound
	}
	u.TwoFactorSecret = u.PendingTwoFactorSecret
	u.PendingTwoFactorSecret = nil
	u.TwoFactorEnabled = true
	u.UpdatedAt = time.Now().UTC()
	r.users[userID] = u
	return nil
}

func (r *usersRepo) ClearTwoFactor(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.TwoFactorSecret = nil
	u.PendingTwoFactorSecret = nil
	u.TwoFactorEnabled = false
	u.UpdatedAt = time.Now().UTC()
	r.users[userID] = u
	return nil
}

func (r *usersRepo) TouchLastLogin(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil
	}
	now := time.Now().UTC()
	u.LastLoginAt = &now
	r.users[userID] = u
	return nil
}

type rolesRepo Store

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[name]
	if !ok {
		return domain.Role{}, store.ErrNotFound
	}
	return role, nil
}

func (r *rolesRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.userRoles[userID] {
		if id == roleID {
			return nil
		}
	}
	r.userRoles[userID] = append(r.userRoles[userID], roleID)
	return nil
}

func (r *rolesRepo) ListUserRoles(ctx context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, roleID := range r.userRoles[userID] {
		for _, role := range r.roles {
			if role.ID == roleID {
				names = append(names, role.Name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

func (r *rolesRepo) ListUserPermissions(ctx context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	for _, roleID := range r.userRoles[userID] {
		for _, perm := range r.rolePerms[roleID] {
			seen[perm] = true
		}
	}
	var names []string
	for perm := range seen {
		names = append(names, perm)
	}
	sort.Strings(names)
	return names, nil
}

type passwordResetsRepo Store

func (r *passwordResetsRepo) UpsertResetToken(ctx context.Context, t domain.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetTokens[t.UserID] = t
	return nil
}

func (r *passwordResetsRepo) GetActiveByTokenHash(ctx context.Context, hash string) (domain.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.resetTokens {
		if t.TokenHash == hash && !t.Expired(time.Now().UTC()) {
			return t, nil
		}
	}
	return domain.PasswordResetToken{}, store.ErrNotFound
}

func (r *passwordResetsRepo) DeleteResetToken(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.resetTokens, userID)
	return nil
}

func (r *passwordResetsRepo) DeleteExpiredResetTokens(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for userID, t := range r.resetTokens {
		if t.Expired(now) {
			delete(r.resetTokens, userID)
		}
	}
	return nil
}

type auditRepo Store

func (r *auditRepo) Record(ctx context.Context, e domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auditEntries = append(r.auditEntries, e)
	return nil
}
