package domain

// Role enumerates helpdesk access levels.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ValidRole reports whether r is a defined role.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an account that may log in and operate on tickets.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Role         Role   `json:"role"`
}

// IsAdmin reports whether the user holds unrestricted privileges.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
