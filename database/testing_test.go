package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sfrosal/portfolio-api/models"
)

// newTestDB opens an isolated in-memory database with the full schema
// migrated. The pool is pinned to one connection because every sqlite
// in-memory connection gets its own database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Technology{},
		&models.ProjectImage{},
	))

	return db
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
