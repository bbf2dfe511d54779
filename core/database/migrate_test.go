package database

import (
	"testing"

	"github.com/m3rciful/nezabudrama/migrations"
)

func TestRunMigrationsSQLite(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Path: ":memory:"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db, DriverSQLite, migrations.FS); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// second run is a no-op
	if err := RunMigrations(db, DriverSQLite, migrations.FS); err != nil {
		t.Fatalf("second run: %v", err)
	}

	for _, table := range []string{"doramas", "users", "user_actions"} {
		var n int
		if err := db.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
}

func TestRunMigrationsUnknownDriver(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Path: ":memory:"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()
	if err := RunMigrations(db, "mysql", migrations.FS); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestSelectApplied(t *testing.T) {
	files := []string{"0001_catalog.up.sql", "0002_activity.up.sql", "0003_more.up.sql"}
	got := selectApplied(files, 1, 3)
	if len(got) != 2 || got[0] != "0002_activity.up.sql" {
		t.Fatalf("selectApplied = %v", got)
	}
	if got := selectApplied(files, 3, 3); got != nil {
		t.Fatalf("expected nothing applied, got %v", got)
	}
}

func TestConfigNormalize(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
		wantDSN string
	}{
		{"postgres defaults", Config{Host: "db", Name: "drama", User: "u", Password: "p"}, false, "postgres://u:p@db:5432/drama?sslmode=disable"},
		{"postgres missing host", Config{Driver: "postgres", Name: "drama"}, true, ""},
		{"sqlite memory", Config{Driver: "SQLite", Path: ":memory:"}, false, "file::memory:?_pragma=foreign_keys(1)&_time_format=sqlite"},
		{"sqlite missing path", Config{Driver: "sqlite"}, true, ""},
		{"unknown driver", Config{Driver: "mysql"}, true, ""},
	}
	for _, tc := range cases {
		cfg := tc.cfg
		err := cfg.Normalize()
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: err = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
		if err == nil && cfg.DSN() != tc.wantDSN {
			t.Fatalf("%s: dsn = %s, want %s", tc.name, cfg.DSN(), tc.wantDSN)
		}
	}
}
