// Package jwtauth issues and verifies the tokens that guard every
// authenticated route. Tokens are signed with a single fixed server secret
// rather than a per-user derived key, so a manager instance is created
// once at startup from configuration and shared by all handlers.
package jwtauth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the recommended minimum length for the HMAC signing
// secret, matching the HS256 recommendation of at least 256 bits. A shorter
// secret is accepted; NewManager logs a warning for it.
const MinSecretLength = 32

// Issuer is the fixed iss claim stamped on every token this manager issues.
const Issuer = "nova-chat-server"

const (
	claimTypeAccess  = "access"
	claimTypeRefresh = "refresh"
)

var (
	// ErrTokenExpired is returned when a token's exp claim has passed.
	ErrTokenExpired = errors.New("jwtauth: token expired")
	// ErrInvalidToken covers malformed tokens, bad signatures and wrong algorithms.
	ErrInvalidToken = errors.New("jwtauth: invalid token")
	// ErrWrongTokenType is returned when an access token is presented where a
	// refresh token is required, or vice versa.
	ErrWrongTokenType = errors.New("jwtauth: wrong token type")
	// ErrTokenRevoked is returned when a token's jti is in the revocation set.
	ErrTokenRevoked = errors.New("jwtauth: token revoked")
	// ErrMissingSubject is returned by issuance when userID (or, for access
	// tokens, login) is empty.
	ErrMissingSubject = errors.New("jwtauth: userID and login are required")
	// ErrNoExpiry is returned by GetTokenExpiry when the token carries no
	// exp claim.
	ErrNoExpiry = errors.New("jwtauth: token has no expiry claim")
)

// Claims is the single claim set used for both access and refresh tokens;
// Type distinguishes which kind a given token is.
type Claims struct {
	UserID string `json:"user_id"`
	Login  string `json:"login"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// Manager issues and verifies access and refresh tokens against a single
// fixed secret. It is safe for concurrent use.
type Manager struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewManager builds a Manager from the configured secret and token
// lifetimes. A secret shorter than MinSecretLength logs a warning but does
// not fail construction.
func NewManager(secret string, accessExpiry, refreshExpiry time.Duration, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(secret) < MinSecretLength {
		logger.Warn("jwtauth: configured secret is shorter than the recommended minimum",
			"length", len(secret), "minimum", MinSecretLength)
	}
	return &Manager{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}, nil
}

// IssueAccessToken creates a signed access token for userID/login, along
// with the token's jti so the caller can track it for revocation. Fails
// when userID or login is empty.
func (m *Manager) IssueAccessToken(userID, login string) (token string, jti string, err error) {
	if userID == "" || login == "" {
		return "", "", ErrMissingSubject
	}
	return m.issue(userID, login, claimTypeAccess, m.accessExpiry)
}

// IssueRefreshToken creates a signed refresh token for userID. Fails when
// userID is empty; login is carried for convenience but not required.
func (m *Manager) IssueRefreshToken(userID, login string) (token string, jti string, err error) {
	if userID == "" {
		return "", "", ErrMissingSubject
	}
	return m.issue(userID, login, claimTypeRefresh, m.refreshExpiry)
}

func (m *Manager) issue(userID, login, typ string, duration time.Duration) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()
	claims := Claims{
		UserID: userID,
		Login:  login,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", "", fmt.Errorf("jwtauth: sign token: %w", err)
	}
	return signed, jti, nil
}

// ParseAndVerify verifies the signature, expiry and issued-at of tokenString
// and checks its Type claim matches wantType ("access" or "refresh").
func (m *Manager) ParseAndVerify(tokenString, wantType string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(Issuer),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, translateError(err)
	}

	if claims.Type != wantType {
		return nil, ErrWrongTokenType
	}

	return claims, nil
}

// GetTokenExpiry decodes tokenString without verifying its signature and
// returns the exp claim. Used where only the embedded expiry matters (e.g.
// sizing a revocation entry), never as proof of validity.
func (m *Manager) GetTokenExpiry(tokenString string) (time.Time, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}
