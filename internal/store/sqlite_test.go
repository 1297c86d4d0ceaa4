package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/config"
)

// initSQLiteTestDB opens a private in-memory database with the migrations applied
func initSQLiteTestDB(t *testing.T) Store {
	t.Helper()

	db, err := Open(config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, Migrate(context.Background(), db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return NewGormStore(db)
}

func TestSQLiteStore(t *testing.T) {
	RunStoreTests(t, initSQLiteTestDB, func(t *testing.T) {})
}

func TestSQLiteStore_Ping(t *testing.T) {
	store := initSQLiteTestDB(t)
	require.NoError(t, store.Ping(context.Background()))
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := Open(config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, Migrate(context.Background(), db))
}
