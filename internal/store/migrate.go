package store

import (
	"context"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var migrations embed.FS

// goose keeps its dialect and filesystem in package state
var gooseMu sync.Mutex

// Migrate applies the embedded schema migrations for the connection's dialect
func Migrate(ctx context.Context, db *gorm.DB) error {
	dialect, dir, err := migrationTarget(db.Dialector.Name())
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

func migrationTarget(dialectorName string) (string, string, error) {
	switch dialectorName {
	case "postgres":
		return "postgres", "migrations/postgres", nil
	case "sqlite":
		return "sqlite3", "migrations/sqlite3", nil
	default:
		return "", "", fmt.Errorf("no migrations for dialect %q", dialectorName)
	}
}
