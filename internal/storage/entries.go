package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fotonlabs/cashflow/internal/model"
	"github.com/fotonlabs/cashflow/internal/service"
)

// categorySeparator joins the categories list into one column. Category names
// themselves never contain it because the importer splits both raw cells and
// newly minted vocabulary values on commas and trims each part.
const categorySeparator = ","

// SaveEntry persists an entry outside any batch transaction.
func (s *SQLiteStorage) SaveEntry(ctx context.Context, entry *model.Entry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEntry(entry); err != nil {
		return err
	}
	return s.saveEntryTx(ctx, nil, entry)
}

// saveEntryTx inserts an entry using the transaction when one is supplied,
// falling back to the shared connection otherwise.
func (s *SQLiteStorage) saveEntryTx(ctx context.Context, tx *sql.Tx, entry *model.Entry) error {
	query := `
		INSERT INTO entries
			(subject, description, entry_date, amount, transaction_type,
			 categories, status, assignee_id, project, author, source_file,
			 hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if entry.Hash == "" {
		entry.Hash = entry.GenerateHash()
	}

	now := time.Now()
	args := []any{
		entry.Subject,
		entry.Description,
		entry.EntryDate,
		entry.Amount.String(),
		entry.TransactionType,
		strings.Join(entry.Categories, categorySeparator),
		entry.Status,
		entry.AssigneeID,
		entry.Project,
		entry.Author,
		entry.SourceFile,
		entry.Hash,
		now,
	}

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.ExecContext(ctx, query, args...)
	} else {
		result, err = s.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get entry ID: %w", err)
	}
	entry.ID = id
	entry.CreatedAt = now

	slog.Debug("saved entry", "id", id, "subject", entry.Subject)
	return nil
}

const entryColumns = `
	id, subject, description, entry_date, amount, transaction_type,
	categories, status, assignee_id, project, author, source_file,
	hash, created_at`

// GetEntries returns entries matching the filter, in entry date order.
func (s *SQLiteStorage) GetEntries(ctx context.Context, filter service.EntryFilter) ([]model.Entry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + entryColumns + ` FROM entries WHERE 1=1`
	var args []any

	if filter.StartDate != nil {
		query += ` AND entry_date >= ?`
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += ` AND entry_date <= ?`
		args = append(args, *filter.EndDate)
	}
	if filter.Project != "" {
		query += ` AND project = ?`
		args = append(args, filter.Project)
	}
	if filter.Type != "" {
		query += ` AND transaction_type = ?`
		args = append(args, filter.Type)
	}
	if filter.Category != "" {
		// Categories are stored comma-joined; match the value as a list element.
		query += ` AND (',' || categories || ',') LIKE ?`
		args = append(args, "%,"+filter.Category+",%")
	}

	query += ` ORDER BY entry_date, id`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	slog.Debug("retrieved entries", "count", len(entries))
	return entries, nil
}

// GetEntryByID returns one entry, or nil when it does not exist.
func (s *SQLiteStorage) GetEntryByID(ctx context.Context, id int64) (*model.Entry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// GetEntryCount returns the number of persisted entries.
func (s *SQLiteStorage) GetEntryCount(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*model.Entry, error) {
	var entry model.Entry
	var amount string
	var categories, hash sql.NullString
	var assigneeID sql.NullInt64

	err := sc.Scan(
		&entry.ID, &entry.Subject, &entry.Description, &entry.EntryDate,
		&amount, &entry.TransactionType, &categories, &entry.Status,
		&assigneeID, &entry.Project, &entry.Author, &entry.SourceFile,
		&hash, &entry.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan entry: %w", err)
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount %q for entry %d: %w", amount, entry.ID, err)
	}
	entry.Amount = parsed

	if categories.Valid && categories.String != "" {
		entry.Categories = strings.Split(categories.String, categorySeparator)
	}
	if assigneeID.Valid {
		entry.AssigneeID = &assigneeID.Int64
	}
	if hash.Valid {
		entry.Hash = hash.String
	}

	return &entry, nil
}
