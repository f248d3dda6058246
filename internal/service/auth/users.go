package auth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mamadbah2/harvest/internal/domain/models"
	"github.com/mamadbah2/harvest/pkg/password"
)

// AdminUsername is the bootstrap account. It cannot be removed.
const AdminUsername = "admin"

// NewUser is an account submission.
type NewUser struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Confirm  string      `json:"confirm_password"`
	Role     models.Role `json:"role"`
	FullName string      `json:"full_name"`
}

// UserUpdate changes an account. An empty Password keeps the current one;
// an empty Role keeps the current role.
type UserUpdate struct {
	Password string      `json:"password"`
	Confirm  string      `json:"confirm_password"`
	Role     models.Role `json:"role"`
	FullName *string     `json:"full_name"`
}

// Account is the public view of a user.
type Account struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	FullName string      `json:"full_name"`
}

// Directory holds the user accounts keyed by username.
type Directory struct {
	users map[string]models.User
	hash  func(string) (string, error)
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{users: map[string]models.User{}, hash: password.Hash}
}

// Authenticate checks the credentials and returns the acting principal.
func (d *Directory) Authenticate(username, secret string) (models.Principal, error) {
	user, ok := d.users[username]
	if !ok || !password.Verify(secret, user.PasswordHash) {
		return models.Principal{}, models.ErrUnauthenticated
	}
	return models.Principal{Username: username, Role: user.Role}, nil
}

// Lookup returns the stored account for username.
func (d *Directory) Lookup(username string) (models.User, bool) {
	user, ok := d.users[username]
	return user, ok
}

// AddUser creates an account.
func (d *Directory) AddUser(u NewUser) (Account, error) {
	username := strings.TrimSpace(u.Username)
	if username == "" {
		return Account{}, &models.ValidationError{Field: "username", Reason: "must not be empty"}
	}
	if _, exists := d.users[username]; exists {
		return Account{}, fmt.Errorf("user %q: %w", username, models.ErrConflict)
	}
	if u.Password == "" {
		return Account{}, &models.ValidationError{Field: "password", Reason: "must not be empty"}
	}
	if u.Password != u.Confirm {
		return Account{}, &models.ValidationError{Field: "confirm_password", Reason: "does not match"}
	}
	if !u.Role.Valid() {
		return Account{}, &models.ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", u.Role)}
	}
	hashed, err := d.hash(u.Password)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}
	d.users[username] = models.User{PasswordHash: hashed, Role: u.Role, FullName: strings.TrimSpace(u.FullName)}
	return d.account(username), nil
}

// UpdateUser changes the password, role or full name of an account.
func (d *Directory) UpdateUser(username string, u UserUpdate) (Account, error) {
	user, ok := d.users[username]
	if !ok {
		return Account{}, fmt.Errorf("user %q: %w", username, models.ErrNotFound)
	}
	if u.Password != "" {
		if u.Password != u.Confirm {
			return Account{}, &models.ValidationError{Field: "confirm_password", Reason: "does not match"}
		}
		hashed, err := d.hash(u.Password)
		if err != nil {
			return Account{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hashed
	}
	if u.Role != "" {
		if !u.Role.Valid() {
			return Account{}, &models.ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", u.Role)}
		}
		if username == AdminUsername && u.Role != models.RoleAdmin {
			return Account{}, &models.ValidationError{Field: "role", Reason: "the admin account keeps the admin role"}
		}
		user.Role = u.Role
	}
	if u.FullName != nil {
		user.FullName = strings.TrimSpace(*u.FullName)
	}
	d.users[username] = user
	return d.account(username), nil
}

// RemoveUser deletes an account.
func (d *Directory) RemoveUser(username string) error {
	if username == AdminUsername {
		return &models.ValidationError{Field: "username", Reason: "the admin account cannot be removed"}
	}
	if _, ok := d.users[username]; !ok {
		return fmt.Errorf("user %q: %w", username, models.ErrNotFound)
	}
	delete(d.users, username)
	return nil
}

// ListUsers returns every account sorted by username.
func (d *Directory) ListUsers() []Account {
	out := make([]Account, 0, len(d.users))
	for name := range d.users {
		out = append(out, d.account(name))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// EnsureAdmin creates the admin account when the directory is empty. It
// reports whether an account was created.
func (d *Directory) EnsureAdmin(secret string) (bool, error) {
	if len(d.users) > 0 {
		return false, nil
	}
	_, err := d.AddUser(NewUser{
		Username: AdminUsername,
		Password: secret,
		Confirm:  secret,
		Role:     models.RoleAdmin,
		FullName: "Administrator",
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Snapshot returns a copy of the stored accounts for persistence.
func (d *Directory) Snapshot() map[string]models.User {
	out := make(map[string]models.User, len(d.users))
	for name, u := range d.users {
		out[name] = u
	}
	return out
}

// Replace swaps in accounts read from storage.
func (d *Directory) Replace(users map[string]models.User) {
	d.users = make(map[string]models.User, len(users))
	for name, u := range users {
		d.users[name] = u
	}
}

func (d *Directory) account(username string) Account {
	u := d.users[username]
	return Account{Username: username, Role: u.Role, FullName: u.FullName}
}
