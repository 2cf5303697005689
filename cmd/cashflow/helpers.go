package main

import (
	"context"

	"github.com/spf13/viper"

	"github.com/fotonlabs/cashflow/internal/common"
	"github.com/fotonlabs/cashflow/internal/config"
	"github.com/fotonlabs/cashflow/internal/storage"
)

// initStorage initializes the storage layer with proper path expansion and
// runs any pending migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError("failed to open the database at "+dbPath, err)
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, common.NewUserError("failed to run migrations", err)
	}

	return store, nil
}
