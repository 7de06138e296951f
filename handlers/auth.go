package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ProphetRu/NovaChatServer/models"
	"github.com/ProphetRu/NovaChatServer/store"
	"github.com/ProphetRu/NovaChatServer/validation"
)

// Register handles POST /api/v1/auth/register.
func (d *Deps) Register(w http.ResponseWriter, r *http.Request) {
	if !RequireJSONContentType(r) {
		RespondError(w, http.StatusBadRequest, CodeInvalidContentType, "Content-Type must be application/json")
		return
	}

	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if !ParseJSONBody(w, r, &req) {
		return
	}

	if !validation.LoginValid(req.Login) {
		RespondError(w, http.StatusBadRequest, CodeInvalidLogin, "login must be 3-50 characters of letters, digits, or underscore")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Uniqueness is reported before password strength; the insert below
	// still catches the race where the login is taken in between.
	if _, err := d.Store.GetUserByLogin(ctx, req.Login); err == nil {
		RespondError(w, http.StatusConflict, CodeLoginExists, "login already registered")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		RespondInternalError(w, "handlers.Register", err)
		return
	}

	if !validation.PasswordValid(req.Password) {
		RespondError(w, http.StatusBadRequest, CodeInvalidPassword, "password must be 6-128 characters with at least one letter and one digit")
		return
	}

	user, err := models.CreateFromCredentials(req.Login, req.Password)
	if err != nil {
		RespondError(w, http.StatusBadRequest, CodeInvalidLogin, "could not create user from credentials")
		return
	}

	if err := d.Store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrLoginExists) {
			RespondError(w, http.StatusConflict, CodeLoginExists, "login already registered")
			return
		}
		RespondInternalError(w, "handlers.Register", err)
		return
	}

	RespondSuccess(w, http.StatusCreated, user.ToJSON(), "User registered successfully")
}

// Login handles POST /api/v1/auth/login.
func (d *Deps) Login(w http.ResponseWriter, r *http.Request) {
	if !RequireJSONContentType(r) {
		RespondError(w, http.StatusBadRequest, CodeInvalidContentType, "Content-Type must be application/json")
		return
	}

	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if !ParseJSONBody(w, r, &req) {
		return
	}
	if req.Login == "" || req.Password == "" {
		RespondError(w, http.StatusBadRequest, CodeMissingFields, "login and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	user, err := d.Store.GetUserByLogin(ctx, req.Login)
	if err != nil || !validation.Verify(req.Password, user.PasswordHash, "") {
		RespondError(w, http.StatusUnauthorized, CodeInvalidCredentials, "invalid login or password")
		return
	}

	d.respondWithFreshTokens(w, ctx, user.UserID, user.Login)
}

// respondWithFreshTokens issues a new access+refresh pair, persists the
// refresh record, and writes the login/refresh success envelope.
func (d *Deps) respondWithFreshTokens(w http.ResponseWriter, ctx context.Context, userID, login string) {
	access, _, err := d.JWTManager.IssueAccessToken(userID, login)
	if err != nil {
		RespondInternalError(w, "handlers.issueTokens", err)
		return
	}
	refreshRaw, _, err := d.JWTManager.IssueRefreshToken(userID, login)
	if err != nil {
		RespondInternalError(w, "handlers.issueTokens", err)
		return
	}

	rt := models.NewRefreshToken(userID, refreshRaw, d.RefreshExpiry)
	if err := d.Store.InsertRefreshToken(ctx, rt); err != nil {
		RespondInternalError(w, "handlers.issueTokens", err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"access_token":  access,
		"refresh_token": refreshRaw,
		"token_type":    "Bearer",
		"expires_in":    int(d.AccessExpiry.Seconds()),
		"user_id":       userID,
		"login":         login,
	}, "")
}

// Refresh handles POST /api/v1/auth/refresh.
func (d *Deps) Refresh(w http.ResponseWriter, r *http.Request) {
	if !RequireJSONContentType(r) {
		RespondError(w, http.StatusBadRequest, CodeInvalidContentType, "Content-Type must be application/json")
		return
	}

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !ParseJSONBody(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		RespondError(w, http.StatusBadRequest, CodeMissingToken, "refresh_token is required")
		return
	}

	claims, err := d.JWTManager.ParseAndVerify(req.RefreshToken, "refresh")
	if err != nil {
		RespondError(w, http.StatusUnauthorized, CodeInvalidRefreshToken, "refresh token is invalid or expired")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	oldHash := validation.Fingerprint(req.RefreshToken)
	if _, err := d.Store.GetRefreshTokenByHash(ctx, oldHash); err != nil {
		RespondError(w, http.StatusUnauthorized, CodeInvalidRefreshToken, "refresh token is invalid or expired")
		return
	}

	user, err := d.Store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		RespondError(w, http.StatusUnauthorized, CodeInvalidRefreshToken, "refresh token is invalid or expired")
		return
	}

	access, _, err := d.JWTManager.IssueAccessToken(user.UserID, user.Login)
	if err != nil {
		RespondInternalError(w, "handlers.Refresh", err)
		return
	}
	newRefreshRaw, _, err := d.JWTManager.IssueRefreshToken(user.UserID, user.Login)
	if err != nil {
		RespondInternalError(w, "handlers.Refresh", err)
		return
	}
	newRT := models.NewRefreshToken(user.UserID, newRefreshRaw, d.RefreshExpiry)

	if err := d.Store.RotateRefreshToken(ctx, oldHash, newRT); err != nil {
		RespondInternalError(w, "handlers.Refresh", err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"access_token":  access,
		"refresh_token": newRefreshRaw,
		"token_type":    "Bearer",
		"expires_in":    int(d.AccessExpiry.Seconds()),
	}, "")
}

// Logout handles POST /api/v1/auth/logout.
func (d *Deps) Logout(w http.ResponseWriter, r *http.Request) {
	auth, ok := d.requireAuth(w, r)
	if !ok {
		return
	}

	if !RequireJSONContentType(r) {
		RespondError(w, http.StatusBadRequest, CodeInvalidContentType, "Content-Type must be application/json")
		return
	}
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !ParseJSONBody(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		RespondError(w, http.StatusBadRequest, CodeMissingToken, "refresh_token is required")
		return
	}

	expiresAt, err := d.JWTManager.GetTokenExpiry(ExtractBearer(r))
	if err != nil {
		expiresAt = time.Now().Add(d.AccessExpiry)
	}
	d.Revocation.Revoke(auth.JTI, expiresAt)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	// Refresh-row deletion failures are logged but never block logout
	// success.
	if err := d.Store.DeleteRefreshTokenByHash(ctx, validation.Fingerprint(req.RefreshToken)); err != nil {
		Logger.Warn("logout: failed to delete refresh token", "error", err)
	}

	RespondSuccess(w, http.StatusOK, nil, "logged out")
}

// ChangePassword handles PUT /api/v1/auth/password.
func (d *Deps) ChangePassword(w http.ResponseWriter, r *http.Request) {
	auth, ok := d.requireAuth(w, r)
	if !ok {
		return
	}
	if !RequireJSONContentType(r) {
		RespondError(w, http.StatusBadRequest, CodeInvalidContentType, "Content-Type must be application/json")
		return
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if !ParseJSONBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	user, err := d.Store.GetUserByID(ctx, auth.UserID)
	if err != nil {
		RespondInternalError(w, "handlers.ChangePassword", err)
		return
	}
	if !validation.Verify(req.OldPassword, user.PasswordHash, "") {
		RespondError(w, http.StatusForbidden, CodeInvalidPassword, "current password is incorrect")
		return
	}
	if !validation.PasswordValid(req.NewPassword) {
		RespondError(w, http.StatusBadRequest, CodeInvalidPassword, "new password does not meet strength requirements")
		return
	}

	newHash, err := validation.Hash(req.NewPassword, "")
	if err != nil {
		RespondInternalError(w, "handlers.ChangePassword", err)
		return
	}
	if err := d.Store.UpdatePassword(ctx, auth.UserID, newHash); err != nil {
		RespondInternalError(w, "handlers.ChangePassword", err)
		return
	}

	RespondSuccess(w, http.StatusOK, nil, "password updated")
}

// DeleteAccount handles DELETE /api/v1/auth/account.
func (d *Deps) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	auth, ok := d.requireAuth(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := d.Store.DeleteUser(ctx, auth.UserID); err != nil {
		RespondInternalError(w, "handlers.DeleteAccount", err)
		return
	}

	d.Revocation.Revoke(auth.JTI, time.Now().Add(d.AccessExpiry))
	RespondSuccess(w, http.StatusOK, nil, "account deleted")
}

// requireAuth extracts and validates the bearer access token, writing a
// 401/INVALID_TOKEN response and returning ok=false on any failure.
func (d *Deps) requireAuth(w http.ResponseWriter, r *http.Request) (AuthContext, bool) {
	token := ExtractBearer(r)
	auth, ok := ValidateAccessToken(d.JWTManager, d.Revocation, token)
	if !ok {
		RespondError(w, http.StatusUnauthorized, CodeInvalidToken, "missing, invalid, expired, or revoked access token")
		return AuthContext{}, false
	}
	return auth, true
}
