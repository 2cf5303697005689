package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fotonlabs/cashflow/internal/model"
)

// createTestStorage spins up a migrated store on a throwaway database.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testEntry(subject string) *model.Entry {
	return &model.Entry{
		Subject:         subject,
		Description:     "monthly groceries",
		EntryDate:       time.Date(2024, 8, 19, 0, 0, 0, 0, time.UTC),
		Amount:          decimal.RequireFromString("45.90"),
		TransactionType: "expense",
		Categories:      []string{"Alimentação", "Mercado"},
		Status:          "new",
		Project:         "acme",
		Author:          "mariana",
		SourceFile:      "agosto.csv",
	}
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("creates the parent directory", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()
	})

	t.Run("rejects an empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("  ")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyString)
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := createTestStorage(t)
	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, store.Migrate(context.Background()))
}

func TestMigrateSeedsTransactionTypes(t *testing.T) {
	store := createTestStorage(t)

	types, err := store.PossibleValues(context.Background(), "transaction_type")
	require.NoError(t, err)
	assert.Equal(t, []string{"income", "expense"}, types)
}

func TestTransactionCommit(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.SaveEntry(ctx, testEntry("Almoço")))
	require.NoError(t, tx.SaveEntry(ctx, testEntry("Mercado")))
	require.NoError(t, tx.Commit())

	count, err := store.GetEntryCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestTransactionRollbackDiscardsEverything(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.SaveEntry(ctx, testEntry("Almoço")))
	require.NoError(t, tx.SaveEntry(ctx, testEntry("Mercado")))
	require.NoError(t, tx.Rollback())

	count, err := store.GetEntryCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "rolled back saves must not persist")
}

func TestTransactionSaveValidates(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	entry := testEntry("")
	entry.Status = ""

	err = tx.SaveEntry(ctx, entry)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEntry)
	assert.Contains(t, err.Error(), "subject cannot be blank")
	assert.Contains(t, err.Error(), "status cannot be blank")
}
