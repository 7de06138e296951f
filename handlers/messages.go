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

// SendMessage handles POST /api/v1/messages/send.
func (d *Deps) SendMessage(w http.ResponseWriter, r *http.Request) {
	auth, ok := d.requireAuth(w, r)
	if !ok {
		return
	}
	if !RequireJSONContentType(r) {
		RespondError(w, http.StatusBadRequest, CodeInvalidContentType, "Content-Type must be application/json")
		return
	}

	var req struct {
		ToLogin string `json:"to_login"`
		Message string `json:"message"`
	}
	if !ParseJSONBody(w, r, &req) {
		return
	}
	if req.ToLogin == "" || req.Message == "" {
		RespondError(w, http.StatusBadRequest, CodeMissingFields, "to_login and message are required")
		return
	}

	// Length/sanitization is checked before the recipient is resolved, so
	// an oversized message to an unknown login still reports the message
	// problem.
	if !validation.MessageTextValid(validation.SecurityClean(req.Message)) {
		RespondError(w, http.StatusBadRequest, CodeMessageTooLong, "message text invalid or too long after sanitization")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	recipient, err := d.Store.GetUserByLogin(ctx, req.ToLogin)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondError(w, http.StatusNotFound, CodeUserNotFound, "recipient not found")
			return
		}
		RespondInternalError(w, "handlers.SendMessage", err)
		return
	}
	if recipient.UserID == auth.UserID {
		RespondError(w, http.StatusBadRequest, CodeSelfMessage, "cannot send a message to yourself")
		return
	}

	msg, err := models.FromJSON(auth.UserID, recipient.UserID, req.Message)
	if err != nil {
		RespondError(w, http.StatusBadRequest, CodeMessageTooLong, "message text invalid or too long after sanitization")
		return
	}

	if err := d.Store.InsertMessage(ctx, msg); err != nil {
		RespondInternalError(w, "handlers.SendMessage", err)
		return
	}

	RespondSuccess(w, http.StatusCreated, map[string]any{
		"message_id": msg.MessageID,
		"sent_at":    msg.CreatedAt,
	}, "")
}

// ListMessages handles GET /api/v1/messages.
func (d *Deps) ListMessages(w http.ResponseWriter, r *http.Request) {
	auth, ok := d.requireAuth(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := store.MessageListFilter{
		UserID:           auth.UserID,
		UnreadOnly:       q.Get("unread_only") == "true",
		ConversationWith: q.Get("conversation_with"),
		AfterMessageID:   q.Get("after_message_id"),
		BeforeMessageID:  q.Get("before_message_id"),
		Limit:            parseIntDefault(q.Get("limit"), 50, 1, 200),
	}
	if cursor := q.Get("cursor_created_at"); cursor != "" {
		if t, err := time.Parse(time.RFC3339, cursor); err == nil {
			filter.CursorCreatedAt = &t
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	messages, unreadCount, err := d.Store.ListMessages(ctx, filter)
	if err != nil {
		RespondInternalError(w, "handlers.ListMessages", err)
		return
	}

	payload := make([]any, len(messages))
	for i, m := range messages {
		payload[i] = m.ToJSON()
	}

	meta := map[string]any{
		"total_count":  len(messages),
		"unread_count": unreadCount,
		"has_more":     len(messages) == filter.Limit,
	}
	if len(messages) > 0 {
		meta["last_message_id"] = messages[len(messages)-1].MessageID
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"messages": payload,
		"meta":     meta,
	}, "")
}

// MarkRead handles POST /api/v1/messages/read. The response reports
// read_count as the input cardinality, keeping the documented contract,
// with affected_count carrying the number of rows actually changed.
func (d *Deps) MarkRead(w http.ResponseWriter, r *http.Request) {
	auth, ok := d.requireAuth(w, r)
	if !ok {
		return
	}
	if !RequireJSONContentType(r) {
		RespondError(w, http.StatusBadRequest, CodeInvalidContentType, "Content-Type must be application/json")
		return
	}

	var req struct {
		MessageIDs []string `json:"message_ids"`
	}
	if !ParseJSONBody(w, r, &req) {
		return
	}
	if len(req.MessageIDs) == 0 {
		RespondError(w, http.StatusBadRequest, CodeEmptyMessageIDs, "message_ids must be a non-empty array")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	affected, err := d.Store.MarkRead(ctx, auth.UserID, req.MessageIDs)
	if err != nil {
		RespondInternalError(w, "handlers.MarkRead", err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"read_count":     len(req.MessageIDs),
		"affected_count": affected,
	}, "")
}
