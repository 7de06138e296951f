// Package migrations embeds the Postgres schema DDL: the users,
// messages and refresh_tokens tables, their indices, the before-insert
// message trigger, and the expired-refresh-token sweep function.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed schema
var schemaFS embed.FS

// Schema returns the embedded schema filesystem.
func Schema() fs.FS {
	sub, err := fs.Sub(schemaFS, "schema")
	if err != nil {
		panic(err) // should never happen since we control the embed path
	}
	return sub
}

// Apply executes every embedded .sql file against db in lexical filename
// order (001_, 002_, 003_...), so later files can reference tables earlier
// ones create. Each statement set runs outside an explicit transaction: the
// DDL itself is idempotent (IF NOT EXISTS / CREATE OR REPLACE) so re-running
// Apply against an already-migrated database is a no-op.
func Apply(ctx context.Context, db *sql.DB) error {
	schema := Schema()
	var files []string
	err := fs.WalkDir(schema, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("migrations: walk schema: %w", err)
	}
	sort.Strings(files)

	for _, path := range files {
		sqlBytes, err := fs.ReadFile(schema, path)
		if err != nil {
			return fmt.Errorf("migrations: read %s: %w", path, err)
		}
		if _, err := db.ExecContext(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("migrations: apply %s: %w", path, err)
		}
	}
	return nil
}
