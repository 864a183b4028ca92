package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const historyLimit = 10

// Store keeps values in the kv_store table. Every overwrite copies the
// previous value into kv_store_history so `gonext doctor --fix` can recover.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("storage key is required")
	}
	return key, nil
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, false, err
	}
	var value string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save %q: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO kv_store_history(key, value)
SELECT key, value FROM kv_store WHERE key = ? AND value <> ?
`, key, string(value)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record history %q: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx, `
DELETE FROM kv_store_history
WHERE key = ? AND id NOT IN (
  SELECT id FROM kv_store_history WHERE key = ? ORDER BY id DESC LIMIT ?
)
`, key, key, historyLimit); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("trim history %q: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO kv_store(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, string(value)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("set %q: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// History returns previous values of key, newest first.
func (s *Store) History(ctx context.Context, key string) ([][]byte, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT value FROM kv_store_history WHERE key = ? ORDER BY id DESC`, key)
	if err != nil {
		return nil, fmt.Errorf("list history %q: %w", key, err)
	}
	defer rows.Close()
	out := make([][]byte, 0)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan history %q: %w", key, err)
		}
		out = append(out, []byte(value))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history %q: %w", key, err)
	}
	return out, nil
}
