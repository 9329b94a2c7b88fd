package entity

import "fmt"

// Role is a user's position in the access hierarchy.
type Role string

// Roles ordered from most to least privileged.
const (
	RoleAdministrator Role = "administrator"
	RoleEditor        Role = "editor"
	RoleReader        Role = "reader"
)

// Rank returns the role's position in the hierarchy (administrator > editor > reader).
// Unknown roles rank 0 and never satisfy an access check.
func (r Role) Rank() int {
	switch r {
	case RoleAdministrator:
		return 3
	case RoleEditor:
		return 2
	case RoleReader:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r.Rank() > 0 }

// ParseRole converts a string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", &ValidationError{
			Field:   "role",
			Message: fmt.Sprintf("invalid role %q (must be administrator, editor or reader)", s),
		}
	}
	return r, nil
}

// User is a platform account. Username is the unique key.
// PasswordHash holds the opaque secret; the plain password is never stored.
type User struct {
	Username     string
	Email        string
	PasswordHash string
	Role         Role
}

func (u *User) Key() string { return u.Username }

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
