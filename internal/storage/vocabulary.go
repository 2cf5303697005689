package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

func vocabularyKey(field string) string {
	return "vocabulary." + field
}

// PossibleValues returns the controlled value list for a field, in stored
// order. An unset field yields an empty list, not an error.
func (s *SQLiteStorage) PossibleValues(ctx context.Context, field string) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(field, "field"); err != nil {
		return nil, err
	}

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, vocabularyKey(field)).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vocabulary %s: %w", field, err)
	}

	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("corrupt vocabulary %s: %w", field, err)
	}
	return values, nil
}

// SetPossibleValues replaces the controlled value list for a field. The write
// is atomic per call; callers de-duplicate case-insensitively before writing.
func (s *SQLiteStorage) SetPossibleValues(ctx context.Context, field string, values []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(field, "field"); err != nil {
		return err
	}
	if values == nil {
		values = []string{}
	}

	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode vocabulary %s: %w", field, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		vocabularyKey(field), string(raw), time.Now())
	if err != nil {
		return fmt.Errorf("failed to write vocabulary %s: %w", field, err)
	}

	slog.Debug("updated vocabulary", "field", field, "count", len(values))
	return nil
}
