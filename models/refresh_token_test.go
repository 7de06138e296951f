package models

import (
	"testing"
	"time"
)

func TestNewRefreshToken(t *testing.T) {
	rt := NewRefreshToken("user-1", "raw-token-value", time.Hour)

	if rt.TokenID == "" {
		t.Error("NewRefreshToken() did not assign a TokenID")
	}
	if rt.UserID != "user-1" {
		t.Errorf("rt.UserID = %q, want %q", rt.UserID, "user-1")
	}
	if rt.TokenHash == "" {
		t.Error("NewRefreshToken() did not fingerprint the raw token")
	}
	if !rt.ExpiresAt.After(rt.CreatedAt) {
		t.Error("ExpiresAt is not after CreatedAt")
	}
	if !rt.IsValid() {
		t.Error("NewRefreshToken() produced an invalid record")
	}
}

func TestRefreshToken_IsValid(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		rt   RefreshToken
		want bool
	}{
		{"valid", RefreshToken{TokenHash: "h", UserID: "u", ExpiresAt: now.Add(time.Hour), CreatedAt: now}, true},
		{"empty hash", RefreshToken{TokenHash: "", UserID: "u", ExpiresAt: now.Add(time.Hour), CreatedAt: now}, false},
		{"empty user", RefreshToken{TokenHash: "h", UserID: "", ExpiresAt: now.Add(time.Hour), CreatedAt: now}, false},
		{"expiry not after creation", RefreshToken{TokenHash: "h", UserID: "u", ExpiresAt: now, CreatedAt: now}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rt.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}
