// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/fotonlabs/cashflow/internal/model"
)

// Controlled vocabulary fields.
const (
	FieldTransactionType = "transaction_type"
	FieldCategory        = "category"
)

// EntryFilter defines filtering options for entry queries.
type EntryFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Project   string
	Category  string
	Type      string
	Limit     int
	Offset    int
}

// EntryStore defines the contract for the entry persistence layer. Saving an
// entry runs the store's own validation; a validation failure is returned as
// an error carrying human-readable messages.
type EntryStore interface {
	SaveEntry(ctx context.Context, entry *model.Entry) error
	GetEntries(ctx context.Context, filter EntryFilter) ([]model.Entry, error)
	GetEntryByID(ctx context.Context, id int64) (*model.Entry, error)
	GetEntryCount(ctx context.Context) (int, error)

	BeginTx(ctx context.Context) (Tx, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Tx represents an atomic batch of store operations. The import pipeline
// saves every row of a batch inside one Tx and rolls the whole batch back
// when any global error accumulated.
type Tx interface {
	Commit() error
	Rollback() error

	SaveEntry(ctx context.Context, entry *model.Entry) error
}

// VocabularyStore exposes the controlled value lists for list-type fields.
// Callers are expected to de-duplicate case-insensitively before writing.
type VocabularyStore interface {
	PossibleValues(ctx context.Context, field string) ([]string, error)
	SetPossibleValues(ctx context.Context, field string, values []string) error
}

// UserDirectory resolves free-text names to known users.
type UserDirectory interface {
	FindUserByName(ctx context.Context, name string) (*model.User, error)
}
