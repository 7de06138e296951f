// Package models defines the persisted entities: User, Message, and
// RefreshToken, their JSON shapes, validation, and the legacy
// SQL-generation test hooks kept for compatibility.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ProphetRu/NovaChatServer/uuidutil"
	"github.com/ProphetRu/NovaChatServer/validation"
)

var (
	// ErrInvalidLogin is returned when a login fails validation.LoginValid.
	ErrInvalidLogin = errors.New("models: invalid login")
	// ErrInvalidPassword is returned when a password fails validation.PasswordValid.
	ErrInvalidPassword = errors.New("models: invalid password")
	// ErrParse is returned by FromDatabaseRow, UserFromJSON and
	// FromJSONInput on malformed input.
	ErrParse = errors.New("models: parse error")
	// ErrInvalid is returned when a populated entity fails IsValid.
	ErrInvalid = errors.New("models: entity invalid")
)

// User is the identity entity. PasswordHash is never included in any JSON
// envelope.
type User struct {
	UserID       string
	Login        string
	PasswordHash string
	CreatedAt    time.Time
}

// userJSON is the only view of a User ever exposed in a response body.
type userJSON struct {
	UserID string `json:"user_id"`
	Login  string `json:"login"`
}

// ToJSON returns the public view of the user: {user_id, login}.
func (u *User) ToJSON() any {
	return userJSON{UserID: u.UserID, Login: u.Login}
}

// userInput is the shape accepted by UserFromJSON: either a plaintext
// password (hashed on the way in) or an already-hashed password_hash.
type userInput struct {
	Login        string `json:"login"`
	Password     string `json:"password"`
	PasswordHash string `json:"password_hash"`
}

// UserFromJSON builds a User from a raw JSON object carrying either
// {login,password} or {login,password_hash}; see FromJSONInput.
func UserFromJSON(data []byte) (*User, error) {
	var in userInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return FromJSONInput(in.Login, in.Password, in.PasswordHash)
}

// FromJSONInput builds a User from request input, accepting either
// {login,password} (hashed via validation.Hash with an empty salt, the
// legacy MD5 branch) or {login,password_hash} (stored as-is).
func FromJSONInput(login, password, passwordHash string) (*User, error) {
	u := &User{Login: login}
	if password != "" {
		hash, err := validation.Hash(password, "")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		u.PasswordHash = hash
	} else {
		u.PasswordHash = passwordHash
	}
	return u, nil
}

// CreateFromCredentials is the canonical factory: validates login and
// password strength, hashes the password, and assigns a fresh UUID.
func CreateFromCredentials(login, password string) (*User, error) {
	if !validation.LoginValid(login) {
		return nil, ErrInvalidLogin
	}
	if !validation.PasswordValid(password) {
		return nil, ErrInvalidPassword
	}
	hash, err := validation.Hash(password, "")
	if err != nil {
		return nil, err
	}
	return &User{
		UserID:       uuidutil.New(),
		Login:        login,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// SetLogin validates and assigns a new login.
func (u *User) SetLogin(login string) error {
	if !validation.LoginValid(login) {
		return ErrInvalidLogin
	}
	u.Login = login
	return nil
}

// SetPassword validates password strength then hashes and assigns it.
func (u *User) SetPassword(password string) error {
	if !validation.PasswordValid(password) {
		return ErrInvalidPassword
	}
	hash, err := validation.Hash(password, "")
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// IsValid reports whether the persisted-user invariants hold.
func (u *User) IsValid() bool {
	return validation.LoginValid(u.Login) && u.PasswordHash != ""
}

// GenerateInsertSQL returns a legacy string-concatenated INSERT statement.
// This is a test-only compatibility hook; the runtime persistence path
// always uses parameter binding via the store package.
func (u *User) GenerateInsertSQL() string {
	return fmt.Sprintf(
		"INSERT INTO users (user_id, login, password_hash) VALUES ('%s', '%s', '%s')",
		u.UserID, validation.Sanitize(u.Login), validation.Sanitize(u.PasswordHash),
	)
}

// GenerateUpdateSQL returns a legacy string-concatenated UPDATE statement.
// Test-only hook; never used on the runtime path (see GenerateInsertSQL).
func (u *User) GenerateUpdateSQL() string {
	return fmt.Sprintf(
		"UPDATE users SET login = '%s', password_hash = '%s' WHERE user_id = '%s'",
		validation.Sanitize(u.Login), validation.Sanitize(u.PasswordHash), u.UserID,
	)
}
