package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fotonlabs/cashflow/internal/model"
)

// FindUserByName looks a user up by login, first name, last name, or full
// name, case-insensitively. Returns nil without error when nobody matches.
func (s *SQLiteStorage) FindUserByName(ctx context.Context, name string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	query := `
		SELECT id, login, first_name, last_name
		FROM users
		WHERE login = ? COLLATE NOCASE
		   OR first_name = ? COLLATE NOCASE
		   OR last_name = ? COLLATE NOCASE
		   OR (first_name || ' ' || last_name) = ? COLLATE NOCASE
		LIMIT 1`

	var user model.User
	err := s.db.QueryRowContext(ctx, query, name, name, name, name).Scan(
		&user.ID, &user.Login, &user.FirstName, &user.LastName,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// CreateUser inserts a user into the directory.
func (s *SQLiteStorage) CreateUser(ctx context.Context, user *model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if err := validateString(user.Login, "login"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (login, first_name, last_name) VALUES (?, ?, ?)`,
		user.Login, user.FirstName, user.LastName)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get user ID: %w", err)
	}
	user.ID = id
	return nil
}
