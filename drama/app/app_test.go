package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	coreconfig "github.com/m3rciful/nezabudrama/core/config"
	coredatabase "github.com/m3rciful/nezabudrama/core/database"
	"github.com/m3rciful/nezabudrama/drama/poster"
)

func writeConfig(t *testing.T, yml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsAndEnv(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: file-token
  admin_ids: [7]
database:
  driver: sqlite
  path: ":memory:"
session:
  ttl: 2h
`)
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("CATALOG_PAGE_SIZE", "5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "env-token" || !cfg.Telegram.IsAdmin(7) {
		t.Fatalf("telegram = %+v", cfg.Telegram)
	}
	if cfg.Session.Backend != SessionMemory || cfg.Session.TTL != 2*time.Hour {
		t.Fatalf("session = %+v", cfg.Session)
	}
	if cfg.Catalog.PageSize != 5 {
		t.Fatalf("page size = %d", cfg.Catalog.PageSize)
	}
	if cfg.Poster.Endpoint != poster.DefaultEndpoint || cfg.Poster.AllowedPrefixes[0] != poster.DefaultPrefix {
		t.Fatalf("poster = %+v", cfg.Poster)
	}
	if cfg.Database.Driver != coredatabase.DriverSQLite {
		t.Fatalf("database = %+v", cfg.Database)
	}
}

func TestNormalizeRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"unknown backend": func(c *Config) { c.Session.Backend = "memcached" },
		"redis no addr":   func(c *Config) { c.Session.Backend = "redis" },
		"negative ttl":    func(c *Config) { c.Session.TTL = -time.Second },
		"page too large":  func(c *Config) { c.Catalog.PageSize = 500 },
		"sqlite no path":  func(c *Config) { c.Database.Path = "" },
	}
	for name, mutate := range cases {
		cfg := testConfig()
		mutate(cfg)
		if err := cfg.Normalize(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func testConfig() *Config {
	return &Config{
		Config:   coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "t", AdminIDs: []int64{1}}},
		Database: coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: ":memory:"},
	}
}

func TestBootstrapWiresRuntime(t *testing.T) {
	cfg := testConfig()
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	a, err := Bootstrap(context.Background(), cfg)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	opts, err := a.TelegramRunOptions()
	if err != nil {
		t.Fatalf("run options: %v", err)
	}
	if opts.Config != &cfg.Config || opts.Registry == nil {
		t.Fatal("run options must carry the core config and registry")
	}
	names := map[string]bool{}
	for _, mw := range opts.Middlewares {
		names[mw.Name] = true
	}
	if !names["recover"] || !names["activity"] {
		t.Fatalf("middlewares = %v", names)
	}
	endpoints := map[any]bool{}
	for _, r := range opts.Routes {
		endpoints[r.Endpoint] = true
	}
	for _, ep := range []string{"/start", "/users", "/get_user_actions", "\acallback", "\atext"} {
		if !endpoints[ep] {
			t.Fatalf("route %q missing", ep)
		}
	}
}

func TestBootstrapRedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Session = SessionConfig{Backend: SessionRedis, Redis: RedisConfig{Addr: mr.Addr()}}
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	a, err := Bootstrap(context.Background(), cfg)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if a.redis == nil {
		t.Fatal("redis client not kept")
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	mr.Close()
	if _, err := Bootstrap(context.Background(), cfg); err == nil {
		t.Fatal("bootstrap must fail when redis is down")
	}
}
