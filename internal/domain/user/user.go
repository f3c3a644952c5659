package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type is the account category. Values match the persisted smallint.
type Type int16

const (
	TypeClient Type = 0
	TypeAdmin  Type = 1
)

func (t Type) String() string {
	if t == TypeAdmin {
		return "Admin"
	}
	return "Client"
}

// Role names known to the system.
const (
	RoleAdmin  = "Admin"
	RoleClient = "Client"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Type         Type       `json:"user_type"`
	IsActive     bool       `json:"is_active"`
	Address      string     `json:"address,omitempty"`
	CreatedBy    *string    `json:"created_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	Roles        []string   `json:"roles"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsAdmin is true for admin-type accounts and for holders of the Admin role.
func (u *User) IsAdmin() bool {
	return u.Type == TypeAdmin || u.HasRole(RoleAdmin)
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

type CreateUserInput struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Type         Type
	CreatedBy    *string
}

type UpdateProfileInput struct {
	FirstName string
	LastName  string
	Address   string
}

// ParseType accepts "client", "admin" or the numeric value.
func ParseType(s string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client", "0":
		return TypeClient, true
	case "admin", "1":
		return TypeAdmin, true
	}
	return 0, false
}

// DefaultRole is the role a new account of type t starts with.
func (t Type) DefaultRole() string {
	if t == TypeAdmin {
		return RoleAdmin
	}
	return RoleClient
}
