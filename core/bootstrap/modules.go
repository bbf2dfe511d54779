package bootstrap

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Seeder loads reference data into a freshly migrated database and reports inserted rows.
type Seeder interface {
	Seed(ctx context.Context, db *sqlx.DB) (int, error)
}

// SeederFunc adapts a bare function to the Seeder interface.
type SeederFunc func(ctx context.Context, db *sqlx.DB) (int, error)

// Seed executes the underlying function.
func (f SeederFunc) Seed(ctx context.Context, db *sqlx.DB) (int, error) {
	return f(ctx, db)
}
