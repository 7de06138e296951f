package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ProphetRu/NovaChatServer/models"
)

// ErrNotFound is returned by lookup methods when no row matches.
var ErrNotFound = errors.New("store: not found")

// Store is the query layer over Pool. Every method checks a connection out
// through Pool.Acquire and returns it through Pool.Release, so the
// bounded-pool contract (block with timeout, ErrTimeout on exhaustion)
// applies to all request traffic, not just the health check.
type Store struct {
	pool *Pool
}

// New wraps pool for query convenience methods.
func New(pool *Pool) *Store {
	return &Store{pool: pool}
}

// CreateUser inserts a new user row with parameter binding and sets
// u.CreatedAt from the database default.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Release(conn)

	const q = `INSERT INTO users (user_id, login, password_hash) VALUES ($1, $2, $3) RETURNING created_at`
	err = conn.raw.QueryRowxContext(ctx, q, u.UserID, u.Login, u.PasswordHash).Scan(&u.CreatedAt)
	if isUniqueViolation(err) {
		return ErrLoginExists
	}
	return conn.fail(err)
}

// ErrLoginExists is returned by CreateUser when the login is already taken.
var ErrLoginExists = errors.New("store: login already exists")

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

type userRow struct {
	UserID       string    `db:"user_id"`
	Login        string    `db:"login"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r userRow) toModel() *models.User {
	return &models.User{UserID: r.UserID, Login: r.Login, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt}
}

// GetUserByLogin fetches a user by their unique login.
func (s *Store) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	const q = `SELECT user_id, login, password_hash, created_at FROM users WHERE login = $1`
	return s.getUser(ctx, q, login)
}

// GetUserByID fetches a user by primary key.
func (s *Store) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	const q = `SELECT user_id, login, password_hash, created_at FROM users WHERE user_id = $1`
	return s.getUser(ctx, q, userID)
}

func (s *Store) getUser(ctx context.Context, query, arg string) (*models.User, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(conn)

	var row userRow
	if err := conn.raw.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, conn.fail(err)
	}
	return row.toModel(), nil
}

// UpdatePassword persists a new password hash for userID.
func (s *Store) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Release(conn)

	const q = `UPDATE users SET password_hash = $1 WHERE user_id = $2`
	_, err = conn.raw.ExecContext(ctx, q, passwordHash, userID)
	return conn.fail(err)
}

// DeleteUser removes a user row; messages and refresh tokens cascade
// per the schema's ON DELETE CASCADE.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Release(conn)

	const q = `DELETE FROM users WHERE user_id = $1`
	_, err = conn.raw.ExecContext(ctx, q, userID)
	return conn.fail(err)
}

// ListUsers returns a page of users ordered by created_at desc, plus the
// total row count honoring the optional search filter.
func (s *Store) ListUsers(ctx context.Context, page, limit int, search string) ([]*models.User, int, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer s.pool.Release(conn)

	offset := (page - 1) * limit

	var (
		rows  []userRow
		total int
	)
	if search == "" {
		const qList = `SELECT user_id, login, password_hash, created_at FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		err = conn.raw.SelectContext(ctx, &rows, qList, limit, offset)
		if err == nil {
			err = conn.raw.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`)
		}
	} else {
		pattern := "%" + search + "%"
		const qList = `SELECT user_id, login, password_hash, created_at FROM users WHERE login ILIKE $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		err = conn.raw.SelectContext(ctx, &rows, qList, pattern, limit, offset)
		if err == nil {
			err = conn.raw.GetContext(ctx, &total, `SELECT COUNT(*) FROM users WHERE login ILIKE $1`, pattern)
		}
	}
	if err != nil {
		return nil, 0, conn.fail(err)
	}

	users := make([]*models.User, len(rows))
	for i, r := range rows {
		users[i] = r.toModel()
	}
	return users, total, nil
}

// SearchUsers returns users whose login matches query, ordered ascending,
// for the directory search endpoint.
func (s *Store) SearchUsers(ctx context.Context, query string, limit int) ([]*models.User, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(conn)

	const q = `SELECT user_id, login, password_hash, created_at FROM users WHERE login ILIKE $1 ORDER BY login ASC LIMIT $2`
	var rows []userRow
	if err := conn.raw.SelectContext(ctx, &rows, q, "%"+query+"%", limit); err != nil {
		return nil, conn.fail(err)
	}
	users := make([]*models.User, len(rows))
	for i, r := range rows {
		users[i] = r.toModel()
	}
	return users, nil
}

// InsertMessage persists m with parameter binding; the before-insert
// trigger enforces from != to and existing users at the database layer as
// well.
func (s *Store) InsertMessage(ctx context.Context, m *models.Message) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Release(conn)

	const q = `INSERT INTO messages (message_id, from_user_id, to_user_id, message_text) VALUES ($1, $2, $3, $4) RETURNING created_at`
	return conn.fail(conn.raw.QueryRowxContext(ctx, q, m.MessageID, m.FromUserID, m.ToUserID, m.MessageText).Scan(&m.CreatedAt))
}

// MessageListFilter bundles the list-messages query parameters.
type MessageListFilter struct {
	UserID           string
	UnreadOnly       bool
	ConversationWith string
	AfterMessageID   string
	BeforeMessageID  string
	CursorCreatedAt  *time.Time
	Limit            int
}

type messageRow struct {
	MessageID   string    `db:"message_id"`
	FromUserID  string    `db:"from_user_id"`
	ToUserID    string    `db:"to_user_id"`
	FromLogin   string    `db:"from_login"`
	ToLogin     string    `db:"to_login"`
	MessageText string    `db:"message_text"`
	IsRead      bool      `db:"is_read"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r messageRow) toModel() *models.Message {
	return &models.Message{
		MessageID: r.MessageID, FromUserID: r.FromUserID, ToUserID: r.ToUserID,
		FromLogin: r.FromLogin, ToLogin: r.ToLogin, MessageText: r.MessageText,
		IsRead: r.IsRead, CreatedAt: r.CreatedAt,
	}
}

// ListMessages returns messages where userID is sender or recipient,
// narrowed by filter, newest first, plus the caller's total unread count.
func (s *Store) ListMessages(ctx context.Context, filter MessageListFilter) ([]*models.Message, int, error) {
	query := `
		SELECT m.message_id, m.from_user_id, m.to_user_id,
		       fu.login AS from_login, tu.login AS to_login,
		       m.message_text, m.is_read, m.created_at
		  FROM messages m
		  JOIN users fu ON fu.user_id = m.from_user_id
		  JOIN users tu ON tu.user_id = m.to_user_id
		 WHERE (m.from_user_id = :user_id OR m.to_user_id = :user_id)`

	args := map[string]any{
		"user_id": filter.UserID,
		"limit":   filter.Limit,
	}

	if filter.UnreadOnly {
		query += ` AND m.to_user_id = :user_id AND m.is_read = false`
	}
	if filter.ConversationWith != "" {
		query += ` AND (m.from_user_id = :conv OR m.to_user_id = :conv)`
		args["conv"] = filter.ConversationWith
	}
	// after_message_id/before_message_id keep the documented lexical
	// UUID-string comparison; cursor_created_at below is the additive,
	// temporally ordered alternative.
	if filter.AfterMessageID != "" {
		query += ` AND m.message_id::text > :after`
		args["after"] = filter.AfterMessageID
	}
	if filter.BeforeMessageID != "" {
		query += ` AND m.message_id::text < :before`
		args["before"] = filter.BeforeMessageID
	}
	if filter.CursorCreatedAt != nil {
		query += ` AND m.created_at < :cursor`
		args["cursor"] = *filter.CursorCreatedAt
	}

	query += ` ORDER BY m.created_at DESC LIMIT :limit`

	named, namedArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, fmt.Errorf("store: bind list-messages query: %w", err)
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer s.pool.Release(conn)
	named = conn.raw.Rebind(named)

	var rows []messageRow
	if err := conn.raw.SelectContext(ctx, &rows, named, namedArgs...); err != nil {
		return nil, 0, conn.fail(err)
	}

	var unread int
	if err := conn.raw.GetContext(ctx, &unread,
		`SELECT COUNT(*) FROM messages WHERE to_user_id = $1 AND is_read = false`, filter.UserID); err != nil {
		return nil, 0, conn.fail(err)
	}

	messages := make([]*models.Message, len(rows))
	for i, r := range rows {
		messages[i] = r.toModel()
	}
	return messages, unread, nil
}

// MarkRead flips is_read=true for every message in messageIDs where userID
// is the recipient, silently ignoring the rest, and returns the number of
// rows actually changed.
func (s *Store) MarkRead(ctx context.Context, userID string, messageIDs []string) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(
		`UPDATE messages SET is_read = true WHERE to_user_id = ? AND message_id IN (?)`,
		userID, messageIDs,
	)
	if err != nil {
		return 0, fmt.Errorf("store: bind mark-read query: %w", err)
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer s.pool.Release(conn)

	query = conn.raw.Rebind(query)
	result, err := conn.raw.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, conn.fail(err)
	}
	return result.RowsAffected()
}

// InsertRefreshToken persists a refresh-token record.
func (s *Store) InsertRefreshToken(ctx context.Context, rt *models.RefreshToken) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Release(conn)

	const q = `INSERT INTO refresh_tokens (token_id, user_id, token_hash, expires_at) VALUES ($1, $2, $3, $4)`
	_, err = conn.raw.ExecContext(ctx, q, rt.TokenID, rt.UserID, rt.TokenHash, rt.ExpiresAt)
	return conn.fail(err)
}

// GetRefreshTokenByHash fetches a non-expired refresh-token record by
// fingerprint, failing with ErrNotFound if absent or expired.
func (s *Store) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(conn)

	const q = `SELECT token_id, user_id, token_hash, expires_at, created_at FROM refresh_tokens WHERE token_hash = $1 AND expires_at > now()`
	var rt models.RefreshToken
	row := conn.raw.QueryRowxContext(ctx, q, tokenHash)
	if err := row.Scan(&rt.TokenID, &rt.UserID, &rt.TokenHash, &rt.ExpiresAt, &rt.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, conn.fail(err)
	}
	return &rt, nil
}

// DeleteRefreshTokenByHash removes a refresh-token record by fingerprint.
func (s *Store) DeleteRefreshTokenByHash(ctx context.Context, tokenHash string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Release(conn)

	const q = `DELETE FROM refresh_tokens WHERE token_hash = $1`
	_, err = conn.raw.ExecContext(ctx, q, tokenHash)
	return conn.fail(err)
}

// RotateRefreshToken deletes oldHash and inserts newToken inside a single
// transaction, so a crash mid-rotation can never leave both the old and
// new tokens live.
func (s *Store) RotateRefreshToken(ctx context.Context, oldHash string, newToken *models.RefreshToken) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Release(conn)

	tx, err := conn.raw.BeginTxx(ctx, nil)
	if err != nil {
		return conn.fail(fmt.Errorf("store: begin rotation: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, oldHash); err != nil {
		return conn.fail(fmt.Errorf("store: delete old refresh token: %w", err))
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO refresh_tokens (token_id, user_id, token_hash, expires_at) VALUES ($1, $2, $3, $4)`,
		newToken.TokenID, newToken.UserID, newToken.TokenHash, newToken.ExpiresAt,
	); err != nil {
		return conn.fail(fmt.Errorf("store: insert new refresh token: %w", err))
	}
	return conn.fail(tx.Commit())
}

// SweepExpiredRefreshTokens deletes every refresh-token row whose expiry
// has passed, mirroring the schema's scheduled sweep function.
func (s *Store) SweepExpiredRefreshTokens(ctx context.Context) (int64, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer s.pool.Release(conn)

	result, err := conn.raw.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < now()`)
	if err != nil {
		return 0, conn.fail(err)
	}
	return result.RowsAffected()
}
