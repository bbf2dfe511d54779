// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/nezabudrama/core/database"
	"github.com/m3rciful/nezabudrama/migrations"
)

// Open returns a fresh database with every migration applied.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	cfg := database.Config{Driver: database.DriverSQLite, Path: ":memory:"}
	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("connect sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.RunMigrations(db, database.DriverSQLite, migrations.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
