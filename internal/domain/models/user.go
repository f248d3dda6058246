package models

// Role is a capability tier. Tiers are ordered viewer < editor < admin.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// Capability names an action class guarded by role.
type Capability string

const (
	CapView        Capability = "view"
	CapEdit        Capability = "edit"
	CapDelete      Capability = "delete"
	CapManageUsers Capability = "manage_users"
)

func (r Role) rank() int {
	switch r {
	case RoleViewer:
		return 1
	case RoleEditor:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

// Valid reports whether r is one of the known tiers.
func (r Role) Valid() bool { return r.rank() > 0 }

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	switch c {
	case CapView:
		return r.rank() >= RoleViewer.rank()
	case CapEdit:
		return r.rank() >= RoleEditor.rank()
	case CapDelete, CapManageUsers:
		return r == RoleAdmin
	default:
		return false
	}
}

// User is a stored account, keyed by username in the users collection.
type User struct {
	PasswordHash string `json:"password"`
	Role         Role   `json:"role"`
	FullName     string `json:"full_name"`
}

// Principal is the authenticated actor of a command.
type Principal struct {
	Username string
	Role     Role
}

// Authorize returns an AuthorizationError when p lacks the capability.
func (p Principal) Authorize(c Capability, action string) error {
	if p.Role.Can(c) {
		return nil
	}
	return &AuthorizationError{Action: action, Role: p.Role}
}
