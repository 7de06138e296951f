package router_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ProphetRu/NovaChatServer/router"
)

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	})
}

func TestRouter_ExactMatch(t *testing.T) {
	rt := router.New(slog.Default(), nil)
	rt.RegisterAll(router.Chains{
		"/api/v1/users": router.NewChain(okHandler("users"), http.MethodGet),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	if rec.Body.String() != "users" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "users")
	}
}

func TestRouter_BasePathMatch(t *testing.T) {
	rt := router.New(slog.Default(), nil)
	rt.RegisterAll(router.Chains{
		"/api/v1": router.NewChain(okHandler("base"), http.MethodGet),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/anything/deeper", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	if rec.Body.String() != "base" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "base")
	}
}

func TestRouter_PrefixScanRespectsBoundary(t *testing.T) {
	rt := router.New(slog.Default(), nil)
	rt.RegisterAll(router.Chains{
		"/api/v1/messages": router.NewChain(okHandler("messages"), http.MethodGet),
	})

	// "/api/v1/messages-extra" shares the string prefix but not the path
	// boundary, so it must NOT match.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/messages-extra", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d for a boundary-violating path", rec.Code, http.StatusNotFound)
	}
}

func TestRouter_NotFoundFallsThrough(t *testing.T) {
	rt := router.New(slog.Default(), nil)
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRouter_CustomNotFoundHandler(t *testing.T) {
	rt := router.New(slog.Default(), okHandler("custom-404"))
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	if rec.Body.String() != "custom-404" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "custom-404")
	}
}

func TestRouter_RegisterNilChainReturnsError(t *testing.T) {
	rt := router.New(slog.Default(), nil)
	if err := rt.Register("/x", nil); err == nil {
		t.Error("Register(nil chain) error = nil, want an error")
	}
}

func TestRouter_NormalizePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "/"},
		{"no-leading-slash", "/no-leading-slash"},
		{"/trailing/", "/trailing"},
		{"/with?query=1", "/with"},
		{"/", "/"},
	}
	for _, tt := range tests {
		if got := router.NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
