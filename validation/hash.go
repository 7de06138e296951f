// Package validation implements the password hasher and the field
// validators/sanitizer. The hashing scheme keeps the legacy MD5/SHA-256
// format so previously stored hashes keep verifying; see DESIGN.md.
package validation

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// ErrEmptyPassword is returned by Hash when password is empty.
var ErrEmptyPassword = errors.New("validation: password must not be empty")

// Hash returns md5(password) in lowercase hex when salt is empty, else
// sha256(password || salt). Fails when password is empty.
func Hash(password, salt string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if salt == "" {
		sum := md5.Sum([]byte(password))
		return hex.EncodeToString(sum[:]), nil
	}
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes the hash for password/salt and compares it against
// storedHash in constant time. Returns false (never an error) when password
// or storedHash is empty.
func Verify(password, storedHash, salt string) bool {
	if password == "" || storedHash == "" {
		return false
	}
	computed, err := Hash(password, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}

// Fingerprint returns the SHA-256 hex digest of a refresh token, used as
// its at-rest identifier.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
