package mocks

import (
	"errors"
	"strings"
)

// ErrPasswordMismatch is returned by MockPasswordHasher.Compare.
var ErrPasswordMismatch = errors.New("password mismatch")

// MockPasswordHasher implements auth.PasswordHasher with a reversible
// "hash:" prefix so tests stay fast.
type MockPasswordHasher struct {
	HashFn func(password string) (string, error)
}

// Hash implements auth.PasswordHasher.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	return "hash:" + password, nil
}

// Compare implements auth.PasswordHasher.
func (m *MockPasswordHasher) Compare(hashedPassword, password string) error {
	if strings.TrimPrefix(hashedPassword, "hash:") != password || !strings.HasPrefix(hashedPassword, "hash:") {
		return ErrPasswordMismatch
	}
	return nil
}
