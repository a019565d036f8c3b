// Package sqlite provides the durable on-device session cache.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	domainauth "github.com/target/profilegate/internal/domain/auth"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS session_kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SessionCache stores session keys in a single SQLite key/value table.
type SessionCache struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(ctx context.Context, path string) (*SessionCache, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	// One writer keeps transactions from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache database ping failed: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &SessionCache{db: db}, nil
}

// Close releases the database handle.
func (c *SessionCache) Close() error {
	return c.db.Close()
}

func (c *SessionCache) LoadCredentials(ctx context.Context) (domainauth.Credentials, bool, error) {
	values, err := c.queryKeys(ctx, domainauth.CredentialKeys)
	if err != nil {
		return domainauth.Credentials{}, false, err
	}
	creds, ok := domainauth.CredentialsFromValues(values)
	return creds, ok, nil
}

func (c *SessionCache) SaveCredentials(ctx context.Context, creds domainauth.Credentials) error {
	if !creds.Valid() {
		return errors.New("credentials require token, role and user id")
	}
	return c.inTx(ctx, func(tx *sql.Tx) error {
		for key, value := range domainauth.CredentialsToValues(creds) {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR REPLACE INTO session_kv (key, value) VALUES (?, ?)", key, value); err != nil {
				return fmt.Errorf("write %s: %w", key, err)
			}
		}
		return nil
	})
}

func (c *SessionCache) CompletionVerified(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	var value string
	err := c.db.QueryRowContext(ctx,
		"SELECT value FROM session_kv WHERE key = ?", domainauth.CompletionCacheKey(userID)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read completion entry: %w", err)
	}
	return value == domainauth.CompletionVerifiedValue, nil
}

func (c *SessionCache) MarkCompletionVerified(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("user id is required")
	}
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO session_kv (key, value) VALUES (?, ?)",
		domainauth.CompletionCacheKey(userID), domainauth.CompletionVerifiedValue)
	if err != nil {
		return fmt.Errorf("write completion entry: %w", err)
	}
	return nil
}

func (c *SessionCache) ForgetCompletion(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if _, err := c.db.ExecContext(ctx,
		"DELETE FROM session_kv WHERE key = ?", domainauth.CompletionCacheKey(userID)); err != nil {
		return fmt.Errorf("delete completion entry: %w", err)
	}
	return nil
}

func (c *SessionCache) Clear(ctx context.Context, userID string) error {
	keys := append([]string{}, domainauth.CredentialKeys...)
	if userID != "" {
		keys = append(keys, domainauth.CompletionCacheKey(userID))
	}
	return c.inTx(ctx, func(tx *sql.Tx) error {
		query := "DELETE FROM session_kv WHERE key IN (" + placeholders(len(keys)) + ")"
		if _, err := tx.ExecContext(ctx, query, toArgs(keys)...); err != nil {
			return fmt.Errorf("delete session keys: %w", err)
		}
		return nil
	})
}

func (c *SessionCache) queryKeys(ctx context.Context, keys []string) (map[string]string, error) {
	query := "SELECT key, value FROM session_kv WHERE key IN (" + placeholders(len(keys)) + ")"
	rows, err := c.db.QueryContext(ctx, query, toArgs(keys)...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, len(keys))
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return values, nil
}

func (c *SessionCache) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(keys []string) []any {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return args
}
