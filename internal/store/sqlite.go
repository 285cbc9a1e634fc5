package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/homework-planner/internal/domain"
	"github.com/ashureev/homework-planner/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db    *sql.DB
	retry shared.RetryPolicy
	now   func() time.Time
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db, retry: shared.DefaultRetryPolicy, now: time.Now}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS user_attributes (
		user_id TEXT PRIMARY KEY,
		attributes_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		last_seen_at INTEGER NOT NULL DEFAULT 0
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	// Tables created before activity tracking lack last_seen_at.
	hasLastSeen, err := s.hasColumn("user_attributes", "last_seen_at")
	if err != nil {
		return err
	}
	if !hasLastSeen {
		if _, err := s.db.Exec(`ALTER TABLE user_attributes ADD COLUMN last_seen_at INTEGER NOT NULL DEFAULT 0`); err != nil {
			return fmt.Errorf("add last_seen_at column: %w", err)
		}
		if _, err := s.db.Exec(`UPDATE user_attributes SET last_seen_at = updated_at`); err != nil {
			return fmt.Errorf("backfill last_seen_at: %w", err)
		}
	}

	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_user_attributes_last_seen ON user_attributes(last_seen_at)`); err != nil {
		return fmt.Errorf("create last_seen index: %w", err)
	}
	return nil
}

func (s *SQLiteStore) hasColumn(table, column string) (bool, error) {
	rows, err := s.db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, fmt.Errorf("inspect %s columns: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, fmt.Errorf("scan %s column: %w", table, err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetAttributes retrieves the persisted attributes for a user.
func (s *SQLiteStore) GetAttributes(ctx context.Context, userID string) (*domain.PersistedAttributes, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT attributes_json FROM user_attributes WHERE user_id = ?`, userID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan attributes: %w", err)
	}

	var attrs domain.PersistedAttributes
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return nil, fmt.Errorf("decode attributes for %s: %w", userID, err)
	}
	return &attrs, nil
}

// PutAttributes creates or updates a user's attributes and records activity.
// updated_at only moves when the encoded attributes differ from what is
// stored; last_seen_at moves on every call.
func (s *SQLiteStore) PutAttributes(ctx context.Context, userID string, attrs *domain.PersistedAttributes) error {
	if attrs == nil {
		return fmt.Errorf("put attributes for %s: nil attributes", userID)
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}

	query := `
	INSERT INTO user_attributes (user_id, attributes_json, created_at, updated_at, last_seen_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		updated_at = CASE
			WHEN user_attributes.attributes_json <> excluded.attributes_json THEN excluded.updated_at
			ELSE user_attributes.updated_at
		END,
		attributes_json = excluded.attributes_json,
		last_seen_at = excluded.last_seen_at`

	now := s.now().Unix()
	return shared.RetryOnConflict(ctx, s.retry, "put_attributes", func() error {
		if _, err := s.db.ExecContext(ctx, query, userID, string(data), now, now, now); err != nil {
			return fmt.Errorf("upsert attributes: %w", err)
		}
		return nil
	})
}

// DeleteInactive removes users not seen since the cutoff.
func (s *SQLiteStore) DeleteInactive(ctx context.Context, olderThan time.Duration) (int64, error) {
	threshold := s.now().Add(-olderThan).Unix()
	var deleted int64
	err := shared.RetryOnConflict(ctx, s.retry, "delete_inactive", func() error {
		result, err := s.db.ExecContext(ctx, `DELETE FROM user_attributes WHERE last_seen_at < ?`, threshold)
		if err != nil {
			return fmt.Errorf("delete inactive users: %w", err)
		}
		deleted, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		return nil
	})
	return deleted, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
