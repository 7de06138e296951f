package models

import (
	"time"

	"github.com/ProphetRu/NovaChatServer/uuidutil"
	"github.com/ProphetRu/NovaChatServer/validation"
)

// RefreshToken is the persisted record backing refresh-token rotation.
// The plaintext token never persists; TokenHash is the deterministic
// SHA-256 fingerprint of the issued token string.
type RefreshToken struct {
	TokenID   string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewRefreshToken fingerprints rawToken and builds a record expiring at
// time.Now()+expiry. Neither this constructor nor the store's insert paths
// (InsertRefreshToken, RotateRefreshToken) check that the expiry lies in
// the future; IsValid only checks that it is after CreatedAt.
func NewRefreshToken(userID, rawToken string, expiry time.Duration) *RefreshToken {
	now := time.Now().UTC()
	return &RefreshToken{
		TokenID:   uuidutil.New(),
		UserID:    userID,
		TokenHash: validation.Fingerprint(rawToken),
		ExpiresAt: now.Add(expiry),
		CreatedAt: now,
	}
}

// IsValid reports whether the record's invariants hold: expiry strictly
// after creation, non-empty hash and user ID.
func (r *RefreshToken) IsValid() bool {
	return r.TokenHash != "" && r.UserID != "" && r.ExpiresAt.After(r.CreatedAt)
}
