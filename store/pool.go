// Package store implements the bounded connection pool and the query
// layer over database/sql and the lib/pq Postgres driver. Acquire blocks
// with a timeout instead of queueing silently, so pool pressure stays
// observable.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ErrTimeout is returned by Acquire when connect_timeout elapses before a
// connection becomes available.
var ErrTimeout = errors.New("store: acquire timeout")

// ErrClosed is returned by Acquire/Execute once the pool has been closed.
var ErrClosed = errors.New("store: pool closed")

// Config describes how to reach the Postgres instance backing the pool.
type Config struct {
	Address           string
	Port              int
	Username          string
	Password          string
	DBName            string
	MaxConnections    int
	ConnectionTimeout time.Duration
}

func (c Config) dsn() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s client_encoding=UTF8 sslmode=disable",
		c.Address, c.Port, c.Username, c.Password, c.DBName,
	)
}

// Pool is a fixed-size pool of N authenticated connections. It
// wraps a single *sqlx.DB (which already pools internally) with an explicit
// semaphore so Acquire can block-with-timeout rather than queue silently,
// and so the pool's steady-state size is an observable, enforced N. Every
// query the Store runs checks a connection out through Acquire and returns
// it through Release; nothing reaches the underlying handle around the
// semaphore.
type Pool struct {
	db      *sqlx.DB
	sem     chan struct{}
	timeout time.Duration
	logger  *slog.Logger
}

// Open opens cfg.MaxConnections connections against Postgres and returns a
// ready Pool. Fails construction when MaxConnections < 1.
func Open(cfg Config, logger *slog.Logger) (*Pool, error) {
	if cfg.MaxConnections < 1 {
		return nil, fmt.Errorf("store: max_connections must be >= 1, got %d", cfg.MaxConnections)
	}

	sqlDB, err := sql.Open("postgres", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxConnections)
	db := sqlx.NewDb(sqlDB, "postgres")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectionTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	// Hold all N connections at once so each is established now; the
	// deferred Close returns them to db's idle set (MaxIdleConns is N).
	opened := make([]*sqlx.Conn, 0, cfg.MaxConnections)
	defer func() {
		for _, c := range opened {
			c.Close()
		}
	}()
	for i := 0; i < cfg.MaxConnections; i++ {
		c, err := db.Connx(ctx)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("store: open connection: %w", err)
		}
		opened = append(opened, c)
	}

	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		db:      db,
		sem:     make(chan struct{}, cfg.MaxConnections),
		timeout: cfg.ConnectionTimeout,
		logger:  logger,
	}
	for i := 0; i < cfg.MaxConnections; i++ {
		p.sem <- struct{}{}
	}
	return p, nil
}

// Conn is an acquired, exclusively owned connection. Release must be
// called exactly once to return it to the pool. fail marks the connection
// unhealthy on a query error so Release logs the drop.
type Conn struct {
	raw     *sqlx.Conn
	pool    *Pool
	healthy bool
}

// fail records that a query on this connection errored and passes err
// through, so call sites can keep their error returns single-expression.
func (c *Conn) fail(err error) error {
	if err != nil {
		c.healthy = false
	}
	return err
}

// Acquire blocks until a slot is available or connect_timeout elapses,
// whichever comes first, then checks out a connection. Returns ErrTimeout
// on deadline, ErrClosed if the pool has been closed.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	start := time.Now()
	deadline, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	select {
	case <-p.sem:
	case <-deadline.Done():
		return nil, ErrTimeout
	}

	raw, err := p.db.Connx(deadline)
	if err != nil {
		p.sem <- struct{}{} // release the slot we reserved but couldn't use
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("store: acquire: %w", err)
	}

	if waited := time.Since(start); waited > p.timeout/2 {
		p.logger.Warn("store: slow pool acquire", "waited", waited, "connect_timeout", p.timeout)
	}

	return &Conn{raw: raw, pool: p, healthy: true}, nil
}

// Release returns conn to the pool; an unhealthy connection is logged before
// being dropped (database/sql's own bad-connection detection keeps it out of
// *sql.DB's idle set so the next Acquire gets a fresh one, keeping the pool's
// steady-state size at N). A wakeup signal (the buffered semaphore slot)
// frees exactly one waiter.
func (p *Pool) Release(conn *Conn) {
	if conn == nil {
		return
	}
	if !conn.healthy {
		p.logger.Warn("store: releasing connection after query error")
	}
	conn.raw.Close()
	p.sem <- struct{}{}
}

// Execute runs query in a single-statement transaction (acquire, begin,
// exec/query, commit, release) and returns the row count. Rows are fully
// drained and closed before the transaction commits: reading from a
// *sql.Rows after its owning Tx has
// committed is undefined, so Execute never hands the caller a live Rows
// across that boundary. On any SQL error the connection is marked unhealthy
// so Release drops it.
func (p *Pool) Execute(ctx context.Context, query string, args ...any) (rowCount int, err error) {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer p.Release(conn)

	tx, err := conn.raw.BeginTxx(ctx, nil)
	if err != nil {
		conn.healthy = false
		return 0, fmt.Errorf("store: begin: %w", err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		conn.healthy = false
		tx.Rollback()
		return 0, fmt.Errorf("store: query: %w", err)
	}

	for rows.Next() {
		rowCount++
	}
	rowErr := rows.Err()
	rows.Close()
	if rowErr != nil {
		conn.healthy = false
		tx.Rollback()
		return 0, fmt.Errorf("store: scan: %w", rowErr)
	}

	if err := tx.Commit(); err != nil {
		conn.healthy = false
		return 0, fmt.Errorf("store: commit: %w", err)
	}

	return rowCount, nil
}

// Health runs SELECT 1 via Execute and never panics; a failure is reported
// as false, not propagated.
func (p *Pool) Health() bool {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	rowCount, err := p.Execute(ctx, "SELECT 1")
	return err == nil && rowCount > 0
}

// DB exposes the underlying *sql.DB for the one caller that legitimately
// sits outside the Acquire/Release contract: the startup migration runner,
// which executes before any request traffic exists.
func (p *Pool) DB() *sql.DB {
	return p.db.DB
}

// Close closes the underlying *sql.DB. Safe to call once, at shutdown.
func (p *Pool) Close() error {
	return p.db.Close()
}
