package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/krea02/ai-agent-demo/internal/domain"
	"github.com/krea02/ai-agent-demo/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists sessions as JSON snapshots in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the session database at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_key TEXT PRIMARY KEY,
		state_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Get loads the session stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT state_json FROM sessions WHERE session_key = ?`, key)

	var stateJSON string
	err := row.Scan(&stateJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(stateJSON), &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", key, err)
	}
	return &sess, nil
}

// Save writes the whole session in one statement.
func (s *SQLiteStore) Save(ctx context.Context, sess *domain.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	query := `
	INSERT INTO sessions (session_key, state_json, created_at, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(session_key) DO UPDATE SET
		state_json = excluded.state_json,
		updated_at = excluded.updated_at`

	return shared.RetryOnConflict(ctx, shared.DefaultRetry, "save session", func() error {
		_, err := s.db.ExecContext(ctx, query,
			sess.Key, string(data), sess.CreatedAt.Unix(), sess.UpdatedAt.Unix())
		if err != nil {
			return fmt.Errorf("upsert session: %w", err)
		}
		return nil
	})
}

// Delete removes the session stored under key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	err := shared.RetryOnConflict(ctx, shared.DefaultRetry, "delete session", func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_key = ?`, key)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete session %s: %w", key, err)
	}
	return nil
}

// ExpiredKeys returns the keys of sessions last updated before cutoff.
func (s *SQLiteStore) ExpiredKeys(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_key FROM sessions WHERE updated_at < ? ORDER BY updated_at`, cutoff.Unix())
	if err != nil {
		return nil, fmt.Errorf("query expired sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close expired sessions rows", "error", closeErr)
		}
	}()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan expired session row: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired sessions: %w", err)
	}
	return keys, nil
}

// DeleteIdle removes the session only if it is still older than cutoff, so a
// turn that lands during the sweep keeps its session.
func (s *SQLiteStore) DeleteIdle(ctx context.Context, key string, cutoff time.Time) (bool, error) {
	var affected int64
	err := shared.RetryOnConflict(ctx, shared.DefaultRetry, "delete idle session", func() error {
		res, err := s.db.ExecContext(ctx,
			`DELETE FROM sessions WHERE session_key = ? AND updated_at < ?`, key, cutoff.Unix())
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("delete idle session %s: %w", key, err)
	}
	return affected > 0, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
