package entity

import (
	"time"
)

// Role is the authorization role carried in access tokens.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// Valid reports whether the role is one the service knows about.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleAdmin
}

// User is the aggregate root for the account domain. Password holds a
// bcrypt hash and is never serialized. The verification and
// password-reset code fields follow the same pattern: an opaque code,
// its expiry, and a used flag; nil code means no code outstanding.
type User struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	Role     Role
	Password string `json:"-"`

	ProfileURL  string
	Address     string
	BusinessURL string

	IsEmailVerified  bool
	VerifyCode       *string
	VerifyCodeExpiry *time.Time
	VerifyCodeUsed   bool

	ResetCode       *string
	ResetCodeExpiry *time.Time
	ResetCodeUsed   bool

	IsOnboarded bool
	IsApproved  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
