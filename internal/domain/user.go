package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is the closed set of user roles.
type Role string

// Supported roles.
const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Common validation errors
var (
	ErrEmptyUserName       = errors.New("user name cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// ParseRole converts a role name into a Role. Matching ignores case and
// surrounding whitespace.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", NewValidationError("role", "must be one of ADMIN, USER", ErrInvalidRole)
	}
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// IsAdmin reports whether r is the ADMIN role.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is a registered account. Email is unique across the store.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser creates a new User from an already hashed password.
// The ID is left zero; the store assigns it on Create.
func NewUser(name, email, passwordHash string, role Role) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.Name == "" {
		return NewValidationError("name", ErrEmptyUserName.Error(), ErrEmptyContent)
	}

	if u.Email == "" {
		return NewValidationError("email", ErrEmptyEmail.Error(), ErrEmptyContent)
	}

	if !validateEmailFormat(u.Email) {
		return NewValidationError("email", "must be a valid email address", ErrInvalidEmail)
	}

	if u.PasswordHash == "" {
		return NewValidationError("password", ErrEmptyHashedPassword.Error(), ErrEmptyContent)
	}

	if !u.Role.IsValid() {
		return NewValidationError("role", "must be one of ADMIN, USER", ErrInvalidRole)
	}

	return nil
}

// validateEmailFormat requires a non-empty local part and a dotted domain.
func validateEmailFormat(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at != strings.LastIndexByte(email, '@') {
		return false
	}

	domainPart := email[at+1:]
	if len(domainPart) < 3 {
		return false
	}

	dot := strings.IndexByte(domainPart, '.')
	return dot > 0 && dot < len(domainPart)-1
}
