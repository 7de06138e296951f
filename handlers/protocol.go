// Package handlers implements the endpoint handlers and the shared
// request pipeline around them: content-type and JSON checks, bearer-token
// authentication, and the canonical {status,code,message,data} response
// envelope with its CORS/no-cache headers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ProphetRu/NovaChatServer/jwtauth"
)

// defaultHeaders are applied to every response: JSON content type,
// no-cache, and the CORS headers.
var defaultHeaders = map[string]string{
	"Content-Type":                 "application/json; charset=utf-8",
	"Cache-Control":                "no-cache",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET,POST,PUT,DELETE,OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type, Authorization",
}

func setHeaders(w http.ResponseWriter) {
	for k, v := range defaultHeaders {
		w.Header()[k] = []string{v}
	}
}

// successEnvelope is the shape written by RespondSuccess.
type successEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// errorEnvelope is the shape written by RespondError.
type errorEnvelope struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondSuccess writes a {"status":"success",...} envelope with the given
// HTTP status. message is omitted from the body when empty.
func RespondSuccess(w http.ResponseWriter, status int, data any, message string) {
	setHeaders(w)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(successEnvelope{Status: "success", Message: message, Data: data})
}

// RespondError writes a {"status":"error","code":...,"message":...}
// envelope with the given HTTP status and stable error code.
func RespondError(w http.ResponseWriter, status int, code, message string) {
	setHeaders(w)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorEnvelope{Status: "error", Code: code, Message: message})
}

// Stable error codes carried in error envelopes.
const (
	CodeInvalidContentType  = "INVALID_CONTENT_TYPE"
	CodeInvalidJSON         = "INVALID_JSON"
	CodeInvalidLogin        = "INVALID_LOGIN"
	CodeInvalidPassword     = "INVALID_PASSWORD"
	CodeLoginExists         = "LOGIN_EXISTS"
	CodeMissingFields       = "MISSING_FIELDS"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeMissingToken        = "MISSING_TOKEN"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeMissingQuery        = "MISSING_QUERY"
	CodeMessageTooLong      = "MESSAGE_TOO_LONG"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeSelfMessage         = "SELF_MESSAGE"
	CodeEmptyMessageIDs     = "EMPTY_MESSAGE_IDS"
	CodeEndpointNotFound    = "ENDPOINT_NOT_FOUND"
	CodeInternalError       = "INTERNAL_ERROR"
)

// RequireJSONContentType reports whether r carries Content-Type:
// application/json, ignoring any parameters.
func RequireJSONContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType := strings.TrimSpace(strings.SplitN(ct, ";", 2)[0])
	return strings.EqualFold(mediaType, "application/json")
}

// ParseJSONBody decodes r's body into dst, returning false (and having
// already written an INVALID_JSON error response) on failure.
func ParseJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		RespondError(w, http.StatusBadRequest, CodeInvalidJSON, "request body is not valid JSON")
		return false
	}
	return true
}

// ExtractBearer returns the token from an "Authorization: Bearer <token>"
// header, or "" if absent/malformed.
func ExtractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// AuthContext is what ValidateAccessToken returns on success: the claims
// needed to act on behalf of the authenticated user.
type AuthContext struct {
	UserID string
	Login  string
	JTI    string
}

// ValidateAccessToken verifies token as an access token and checks it
// against the revocation set. ok is false for any failure
// (empty token, bad signature, expired, wrong type, or revoked).
func ValidateAccessToken(manager *jwtauth.Manager, revocation *jwtauth.RevocationSet, token string) (ctx AuthContext, ok bool) {
	if token == "" {
		return AuthContext{}, false
	}
	claims, err := manager.ParseAndVerify(token, "access")
	if err != nil {
		return AuthContext{}, false
	}
	if revocation.IsRevoked(claims.ID) {
		return AuthContext{}, false
	}
	return AuthContext{UserID: claims.UserID, Login: claims.Login, JTI: claims.ID}, true
}

// Logger is the handler package's sole ambient dependency, used to log
// handler-level failures with component context before translating them
// to the canonical 500/INTERNAL_ERROR envelope.
var Logger = slog.Default()

// RespondInternalError logs err with component context and writes the
// uniform internal-error envelope, never leaking err's text to the client.
func RespondInternalError(w http.ResponseWriter, component string, err error) {
	Logger.Error("handler error", "component", component, "error", err)
	RespondError(w, http.StatusInternalServerError, CodeInternalError, "an internal error occurred")
}
