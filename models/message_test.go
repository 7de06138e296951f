package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ProphetRu/NovaChatServer/uuidutil"
)

func TestFromJSON_Success(t *testing.T) {
	from, to := uuidutil.New(), uuidutil.New()
	m, err := FromJSON(from, to, "hello there")
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	if m.MessageID == "" {
		t.Error("FromJSON() did not assign a MessageID")
	}
	if !m.IsValid() {
		t.Error("FromJSON() produced an invalid message")
	}
}

func TestFromJSON_SelfSendFailsIsValid(t *testing.T) {
	id := uuidutil.New()
	m, err := FromJSON(id, id, "hello")
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	if m.IsValid() {
		t.Error("IsValid() = true for a message where sender equals recipient")
	}
}

func TestFromJSON_RejectsEmptyTextAfterSanitization(t *testing.T) {
	from, to := uuidutil.New(), uuidutil.New()
	if _, err := FromJSON(from, to, "<script>alert(1)</script>"); !errors.Is(err, ErrInvalid) {
		t.Errorf("FromJSON() with an XSS-only payload error = %v, want %v", err, ErrInvalid)
	}
}

func TestFromJSON_RejectsOversizedText(t *testing.T) {
	from, to := uuidutil.New(), uuidutil.New()
	over := strings.Repeat("a", 4097)
	if _, err := FromJSON(from, to, over); !errors.Is(err, ErrInvalid) {
		t.Errorf("FromJSON() with oversized text error = %v, want %v", err, ErrInvalid)
	}
}

func TestFromDatabaseRow_RejectsMalformedIDs(t *testing.T) {
	_, err := FromDatabaseRow("not-a-uuid", uuidutil.New(), uuidutil.New(), "a", "b", "hi", false, time.Now())
	if !errors.Is(err, ErrParse) {
		t.Errorf("FromDatabaseRow() with a malformed id error = %v, want %v", err, ErrParse)
	}
}

func TestFromDatabaseRow_Success(t *testing.T) {
	from, to := uuidutil.New(), uuidutil.New()
	m, err := FromDatabaseRow(uuidutil.New(), from, to, "alice", "bob", "hi", true, time.Now())
	if err != nil {
		t.Fatalf("FromDatabaseRow() error = %v", err)
	}
	if m.FromLogin != "alice" || m.ToLogin != "bob" {
		t.Errorf("FromLogin/ToLogin = %q/%q, want alice/bob", m.FromLogin, m.ToLogin)
	}
	if !m.IsRead {
		t.Error("IsRead = false, want true")
	}
}
