package domain

import "time"

// TokenType is the kind of credential recorded in the ledger.
type TokenType string

// TokenTypeBearer is the only type issued today.
const TokenTypeBearer TokenType = "BEARER"

// Token is a ledger entry for an issued access token. Entries are never
// deleted; they are retired by flipping Revoked and Expired.
type Token struct {
	ID        int64
	UserID    int64
	Value     string
	Type      TokenType
	Revoked   bool
	Expired   bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewBearerToken creates a live ledger entry for value.
func NewBearerToken(userID int64, value string, expiresAt time.Time) *Token {
	return &Token{
		UserID:    userID,
		Value:     value,
		Type:      TokenTypeBearer,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
}

// Revoke retires the token. Calling it twice has no further effect.
func (t *Token) Revoke() {
	t.Revoked = true
	t.Expired = true
}

// IsValid reports whether the entry is neither revoked nor expired as of now.
// An elapsed ExpiresAt counts as expired even before the sweeper flags it.
func (t *Token) IsValid(now time.Time) bool {
	if t.Revoked || t.Expired {
		return false
	}
	return t.ExpiresAt.IsZero() || now.Before(t.ExpiresAt)
}
