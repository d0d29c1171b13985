package entities

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Address    string    `json:"address,omitempty"`
	Role       Role      `json:"role"`
	JoinedDate string    `json:"joinedDate,omitempty"` // YYYY-MM-DD
	CreatedAt  time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user can use the admin dashboard.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
