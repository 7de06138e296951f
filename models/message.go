package models

import (
	"fmt"
	"time"

	"github.com/ProphetRu/NovaChatServer/uuidutil"
	"github.com/ProphetRu/NovaChatServer/validation"
)

// Message is the point-to-point message entity. FromLogin and ToLogin are
// display-only enrichments joined at read time, never persisted on the
// message row itself.
type Message struct {
	MessageID   string
	FromUserID  string
	ToUserID    string
	FromLogin   string
	ToLogin     string
	MessageText string
	IsRead      bool
	CreatedAt   time.Time
}

type messageJSON struct {
	MessageID   string    `json:"message_id"`
	FromUserID  string    `json:"from_user_id"`
	ToUserID    string    `json:"to_user_id"`
	FromLogin   string    `json:"from_login"`
	ToLogin     string    `json:"to_login"`
	MessageText string    `json:"message_text"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToJSON returns the full wire representation of a message.
func (m *Message) ToJSON() any {
	return messageJSON{
		MessageID:   m.MessageID,
		FromUserID:  m.FromUserID,
		ToUserID:    m.ToUserID,
		FromLogin:   m.FromLogin,
		ToLogin:     m.ToLogin,
		MessageText: m.MessageText,
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt,
	}
}

// FromJSON builds a new Message from sender, recipient and text, assigning
// a fresh MessageID and CreatedAt. The text goes through SetMessageText's
// sanitization and validation; sender and recipient are not checked here.
func FromJSON(fromUserID, toUserID, text string) (*Message, error) {
	m := &Message{
		MessageID:  uuidutil.New(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := m.SetMessageText(text); err != nil {
		return nil, err
	}
	return m, nil
}

// FromDatabaseRow reconstructs a Message from persisted column values.
// Fails with ErrParse if messageID/fromUserID/toUserID aren't valid UUIDs,
// and ErrInvalid if the resulting entity fails IsValid.
func FromDatabaseRow(messageID, fromUserID, toUserID, fromLogin, toLogin, text string, isRead bool, createdAt time.Time) (*Message, error) {
	if !validation.UUIDValid(messageID) || !validation.UUIDValid(fromUserID) || !validation.UUIDValid(toUserID) {
		return nil, fmt.Errorf("%w: malformed id in message row", ErrParse)
	}
	m := &Message{
		MessageID:   messageID,
		FromUserID:  fromUserID,
		ToUserID:    toUserID,
		FromLogin:   fromLogin,
		ToLogin:     toLogin,
		MessageText: text,
		IsRead:      isRead,
		CreatedAt:   createdAt,
	}
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: message fails invariants", ErrInvalid)
	}
	return m, nil
}

// SetMessageText runs the security-clean pipeline over text and assigns it,
// failing if the cleaned text is empty or exceeds MaxMessageLen.
func (m *Message) SetMessageText(text string) error {
	cleaned := validation.SecurityClean(text)
	if !validation.MessageTextValid(cleaned) {
		return fmt.Errorf("%w: message text invalid after sanitization", ErrInvalid)
	}
	m.MessageText = cleaned
	return nil
}

// IsValid reports whether the message invariants hold: sender and
// recipient differ, and the message text is non-empty and within bounds.
func (m *Message) IsValid() bool {
	if m.FromUserID == m.ToUserID {
		return false
	}
	return validation.MessageTextValid(m.MessageText)
}

// GenerateInsertSQL returns a legacy string-concatenated INSERT statement.
// Test-only compatibility hook; never used at runtime.
func (m *Message) GenerateInsertSQL() string {
	return fmt.Sprintf(
		"INSERT INTO messages (message_id, from_user_id, to_user_id, message_text, is_read) VALUES ('%s', '%s', '%s', '%s', %t)",
		m.MessageID, m.FromUserID, m.ToUserID, validation.Sanitize(m.MessageText), m.IsRead,
	)
}

// GenerateUpdateSQL returns a legacy string-concatenated UPDATE statement
// for marking a message read. Test-only hook; never used at runtime.
func (m *Message) GenerateUpdateSQL() string {
	return fmt.Sprintf(
		"UPDATE messages SET is_read = %t WHERE message_id = '%s'",
		m.IsRead, m.MessageID,
	)
}
