// Package app holds the bot configuration and wires the catalog, sessions and Telegram runtime together.
package app

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/nezabudrama/core/config"
	coredatabase "github.com/m3rciful/nezabudrama/core/database"
	"github.com/m3rciful/nezabudrama/drama/paging"
	"github.com/m3rciful/nezabudrama/drama/poster"
)

const (
	SessionMemory = "memory"
	SessionRedis  = "redis"

	defaultSessionTTL    = 24 * time.Hour
	defaultSessionPrefix = "nezabudrama:session:"
	defaultPosterTimeout = 10 * time.Second
	maxPageSize          = 50
)

// RedisConfig locates the shared session store.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
	Prefix   string `yaml:"prefix" envconfig:"REDIS_PREFIX"`
}

// SessionConfig selects the session backend.
type SessionConfig struct {
	Backend string        `yaml:"backend" envconfig:"SESSION_BACKEND"`
	TTL     time.Duration `yaml:"ttl" envconfig:"SESSION_TTL"`
	Redis   RedisConfig   `yaml:"redis"`
}

// CatalogConfig tunes catalog listings.
type CatalogConfig struct {
	PageSize int `yaml:"page_size" envconfig:"CATALOG_PAGE_SIZE"`
}

// PosterConfig configures the public-link resolver.
type PosterConfig struct {
	Endpoint        string        `yaml:"endpoint" envconfig:"POSTER_ENDPOINT"`
	AllowedPrefixes []string      `yaml:"allowed_prefixes" envconfig:"POSTER_ALLOWED_PREFIXES"`
	Timeout         time.Duration `yaml:"timeout" envconfig:"POSTER_TIMEOUT"`
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Session  SessionConfig       `yaml:"session"`
	Catalog  CatalogConfig       `yaml:"catalog"`
	Poster   PosterConfig        `yaml:"poster"`
}

// CoreConfig exposes the framework part of the configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Load reads path, overlays the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize fills defaults for the database and bot sections and validates them.
func (c *Config) Normalize() error {
	if err := c.Database.Normalize(); err != nil {
		return err
	}
	s := &c.Session
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	if s.Backend == "" {
		s.Backend = SessionMemory
	}
	switch s.Backend {
	case SessionMemory:
	case SessionRedis:
		if strings.TrimSpace(s.Redis.Addr) == "" {
			return fmt.Errorf("session.redis.addr is required for the redis backend")
		}
		if s.Redis.Prefix == "" {
			s.Redis.Prefix = defaultSessionPrefix
		}
	default:
		return fmt.Errorf("invalid session.backend %q; allowed: memory, redis", s.Backend)
	}
	if s.TTL < 0 {
		return fmt.Errorf("session.ttl must not be negative")
	}
	if s.TTL == 0 {
		s.TTL = defaultSessionTTL
	}

	if c.Catalog.PageSize <= 0 {
		c.Catalog.PageSize = paging.DefaultSize
	}
	if c.Catalog.PageSize > maxPageSize {
		return fmt.Errorf("catalog.page_size must be at most %d", maxPageSize)
	}

	p := &c.Poster
	if p.Endpoint == "" {
		p.Endpoint = poster.DefaultEndpoint
	}
	if len(p.AllowedPrefixes) == 0 {
		p.AllowedPrefixes = []string{poster.DefaultPrefix}
	}
	if p.Timeout <= 0 {
		p.Timeout = defaultPosterTimeout
	}
	return nil
}
