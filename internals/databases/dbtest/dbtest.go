// Package dbtest opens throwaway SQLite databases migrated with the service
// schema. Only tests import it.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	database "pahla_backend/internals/databases"
	"pahla_backend/internals/seeds/awards"
)

// Open returns a migrated database living in t.TempDir().
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "pahla.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one writer keeps concurrent tests away from SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// OpenWithCatalog is Open plus the embedded award catalogue.
func OpenWithCatalog(t testing.TB) *gorm.DB {
	t.Helper()
	db := Open(t)
	_, err := awards.SeedAwardCategories(context.Background(), db, awards.DefaultAwardCategories)
	require.NoError(t, err)
	return db
}
