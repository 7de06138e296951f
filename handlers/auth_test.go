package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ProphetRu/NovaChatServer/jwtauth"
)

// newTestDeps builds a Deps with a live JWT manager and revocation set but
// no store; the tests here only exercise validation paths that return
// before any query runs.
func newTestDeps(t *testing.T) *Deps {
	t.Helper()
	manager, err := jwtauth.NewManager("a-test-secret-of-at-least-32-bytes", 15*time.Minute, 7*24*time.Hour, nil)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return &Deps{
		JWTManager:    manager,
		Revocation:    jwtauth.NewRevocationSet(),
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
	}
}

func bearerFor(t *testing.T, d *Deps) string {
	t.Helper()
	token, _, err := d.JWTManager.IssueAccessToken("user-1", "alice")
	if err != nil {
		t.Fatalf("IssueAccessToken() error = %v", err)
	}
	return token
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func assertErrorEnvelope(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()
	if rec.Code != wantStatus {
		t.Errorf("status = %d, want %d", rec.Code, wantStatus)
	}
	var body errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal error envelope: %v (body %q)", err, rec.Body.String())
	}
	if body.Status != "error" {
		t.Errorf("body.Status = %q, want error", body.Status)
	}
	if body.Code != wantCode {
		t.Errorf("body.Code = %q, want %q", body.Code, wantCode)
	}
	if body.Message == "" {
		t.Error("body.Message is empty, want a diagnostic message")
	}
}

func TestRegister_RejectsNonJSONContentType(t *testing.T) {
	d := newTestDeps(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader("login=alice"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	d.Register(rec, req)
	assertErrorEnvelope(t, rec, http.StatusBadRequest, CodeInvalidContentType)
}

func TestRegister_RejectsMalformedJSON(t *testing.T) {
	d := newTestDeps(t)
	rec := httptest.NewRecorder()
	d.Register(rec, jsonRequest(http.MethodPost, "/api/v1/auth/register", "{not json"))
	assertErrorEnvelope(t, rec, http.StatusBadRequest, CodeInvalidJSON)
}

func TestRegister_RejectsInvalidLogin(t *testing.T) {
	d := newTestDeps(t)
	rec := httptest.NewRecorder()
	d.Register(rec, jsonRequest(http.MethodPost, "/api/v1/auth/register", `{"login":"a!","password":"s3cret1"}`))
	assertErrorEnvelope(t, rec, http.StatusBadRequest, CodeInvalidLogin)
}

func TestLogin_RejectsMissingFields(t *testing.T) {
	d := newTestDeps(t)
	rec := httptest.NewRecorder()
	d.Login(rec, jsonRequest(http.MethodPost, "/api/v1/auth/login", `{"login":"alice"}`))
	assertErrorEnvelope(t, rec, http.StatusBadRequest, CodeMissingFields)
}

func TestRefresh_RejectsMissingToken(t *testing.T) {
	d := newTestDeps(t)
	rec := httptest.NewRecorder()
	d.Refresh(rec, jsonRequest(http.MethodPost, "/api/v1/auth/refresh", `{}`))
	assertErrorEnvelope(t, rec, http.StatusBadRequest, CodeMissingToken)
}

func TestRefresh_RejectsGarbageToken(t *testing.T) {
	d := newTestDeps(t)
	rec := httptest.NewRecorder()
	d.Refresh(rec, jsonRequest(http.MethodPost, "/api/v1/auth/refresh", `{"refresh_token":"not-a-jwt"}`))
	assertErrorEnvelope(t, rec, http.StatusUnauthorized, CodeInvalidRefreshToken)
}

func TestRefresh_RejectsAccessTokenAsRefresh(t *testing.T) {
	d := newTestDeps(t)
	access := bearerFor(t, d)
	rec := httptest.NewRecorder()
	d.Refresh(rec, jsonRequest(http.MethodPost, "/api/v1/auth/refresh", `{"refresh_token":"`+access+`"}`))
	assertErrorEnvelope(t, rec, http.StatusUnauthorized, CodeInvalidRefreshToken)
}

func TestLogout_RejectsMissingBearer(t *testing.T) {
	d := newTestDeps(t)
	rec := httptest.NewRecorder()
	d.Logout(rec, jsonRequest(http.MethodPost, "/api/v1/auth/logout", `{"refresh_token":"x"}`))
	assertErrorEnvelope(t, rec, http.StatusUnauthorized, CodeInvalidToken)
}

func TestLogout_RequiresRefreshTokenInBody(t *testing.T) {
	d := newTestDeps(t)
	req := jsonRequest(http.MethodPost, "/api/v1/auth/logout", `{}`)
	req.Header.Set("Authorization", "Bearer "+bearerFor(t, d))
	rec := httptest.NewRecorder()

	d.Logout(rec, req)
	assertErrorEnvelope(t, rec, http.StatusBadRequest, CodeMissingToken)
}

func TestChangePassword_RejectsMissingBearer(t *testing.T) {
	d := newTestDeps(t)
	rec := httptest.NewRecorder()
	d.ChangePassword(rec, jsonRequest(http.MethodPut, "/api/v1/auth/password", `{"old_password":"a1","new_password":"b2"}`))
	assertErrorEnvelope(t, rec, http.StatusUnauthorized, CodeInvalidToken)
}

func TestSendMessage_RejectsNonJSONContentType(t *testing.T) {
	d := newTestDeps(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages/send", strings.NewReader("hi"))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer "+bearerFor(t, d))
	rec := httptest.NewRecorder()

	d.SendMessage(rec, req)
	assertErrorEnvelope(t, rec, http.StatusBadRequest, CodeInvalidContentType)
}

func TestSendMessage_RejectsMissingFields(t *testing.T) {
	d := newTestDeps(t)
	req := jsonRequest(http.MethodPost, "/api/v1/messages/send", `{"to_login":"bob"}`)
	req.Header.Set("Authorization", "Bearer "+bearerFor(t, d))
	rec := httptest.NewRecorder()

	d.SendMessage(rec, req)
	assertErrorEnvelope(t, rec, http.StatusBadRequest, CodeMissingFields)
}

func TestMarkRead_RejectsEmptyMessageIDs(t *testing.T) {
	d := newTestDeps(t)
	req := jsonRequest(http.MethodPost, "/api/v1/messages/read", `{"message_ids":[]}`)
	req.Header.Set("Authorization", "Bearer "+bearerFor(t, d))
	rec := httptest.NewRecorder()

	d.MarkRead(rec, req)
	assertErrorEnvelope(t, rec, http.StatusBadRequest, CodeEmptyMessageIDs)
}

func TestSearchUsers_RejectsMissingQuery(t *testing.T) {
	d := newTestDeps(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/search", nil)
	req.Header.Set("Authorization", "Bearer "+bearerFor(t, d))
	rec := httptest.NewRecorder()

	d.SearchUsers(rec, req)
	assertErrorEnvelope(t, rec, http.StatusBadRequest, CodeMissingQuery)
}

func TestListMessages_RejectsRevokedToken(t *testing.T) {
	d := newTestDeps(t)
	token, jti, err := d.JWTManager.IssueAccessToken("user-1", "alice")
	if err != nil {
		t.Fatalf("IssueAccessToken() error = %v", err)
	}
	d.Revocation.Revoke(jti, time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	d.ListMessages(rec, req)
	assertErrorEnvelope(t, rec, http.StatusUnauthorized, CodeInvalidToken)
}

func TestSendMessage_ChecksLengthBeforeRecipientLookup(t *testing.T) {
	d := newTestDeps(t) // nil Store: the length check must fire before any query
	big := strings.Repeat("a", 4097)
	req := jsonRequest(http.MethodPost, "/api/v1/messages/send", `{"to_login":"nobody","message":"`+big+`"}`)
	req.Header.Set("Authorization", "Bearer "+bearerFor(t, d))
	rec := httptest.NewRecorder()

	d.SendMessage(rec, req)
	assertErrorEnvelope(t, rec, http.StatusBadRequest, CodeMessageTooLong)
}
