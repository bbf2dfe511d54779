package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/nezabudrama/core/logger"
	"github.com/m3rciful/nezabudrama/drama/textnorm"
)

const entryColumns = `id, title_primary, title_secondary, country, year, director,
	lead_actress, lead_actor, plot, comment, rating, poster_url, created_at`

// Person is a distinct people column value together with the country it appears with.
// Two people sharing a display name stay separate when their countries differ.
type Person struct {
	Name    string `db:"name"`
	Country string `db:"country"`
}

// Repository is the sqlx backed catalog store.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps db. Queries are rebound to the driver's placeholder style.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Count returns the number of entries matching p.
func (r *Repository) Count(ctx context.Context, p Predicate) (int, error) {
	if err := p.Err(); err != nil {
		return 0, err
	}
	var n int
	q := r.db.Rebind("SELECT COUNT(*) FROM doramas" + p.where())
	if err := r.db.GetContext(ctx, &n, q, p.args...); err != nil {
		return 0, fmt.Errorf("catalog: count: %w", err)
	}
	return n, nil
}

// Find returns one page of entries matching p.
func (r *Repository) Find(ctx context.Context, p Predicate, order Order, limit, offset int) ([]Entry, error) {
	if err := p.Err(); err != nil {
		return nil, err
	}
	q := r.db.Rebind("SELECT " + entryColumns + " FROM doramas" + p.where() +
		" ORDER BY " + order.sql() + " LIMIT ? OFFSET ?")
	args := append(append([]any(nil), p.args...), limit, offset)
	var out []Entry
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, fmt.Errorf("catalog: find: %w", err)
	}
	return out, nil
}

// Get loads a single entry.
func (r *Repository) Get(ctx context.Context, id int64) (Entry, error) {
	var e Entry
	q := r.db.Rebind("SELECT " + entryColumns + " FROM doramas WHERE id = ?")
	err := r.db.GetContext(ctx, &e, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("catalog: get %d: %w", id, err)
	}
	return e, nil
}

type entryRow struct {
	Entry
	TitlePrimaryKey   string `db:"title_primary_key"`
	TitleSecondaryKey string `db:"title_secondary_key"`
	DirectorKey       string `db:"director_key"`
	LeadActressKey    string `db:"lead_actress_key"`
	LeadActorKey      string `db:"lead_actor_key"`
	LetterPrimary     string `db:"letter_primary"`
	LetterSecondary   string `db:"letter_secondary"`
}

const insertEntrySQL = `INSERT INTO doramas (
	title_primary, title_secondary, country, year, director, lead_actress, lead_actor,
	plot, comment, rating, poster_url,
	title_primary_key, title_secondary_key, director_key, lead_actress_key, lead_actor_key,
	letter_primary, letter_secondary, created_at
) VALUES (
	:title_primary, :title_secondary, :country, :year, :director, :lead_actress, :lead_actor,
	:plot, :comment, :rating, :poster_url,
	:title_primary_key, :title_secondary_key, :director_key, :lead_actress_key, :lead_actor_key,
	:letter_primary, :letter_secondary, :created_at
) RETURNING id`

// Insert validates e, derives its search keys and stores it in a single statement.
func (r *Repository) Insert(ctx context.Context, e Entry) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	row := entryRow{
		Entry:             e,
		TitlePrimaryKey:   textnorm.Key(e.TitlePrimary),
		TitleSecondaryKey: textnorm.Key(e.TitleSecondary),
		DirectorKey:       textnorm.Key(e.Director),
		LeadActressKey:    textnorm.Key(e.LeadActress),
		LeadActorKey:      textnorm.Key(e.LeadActor),
		LetterPrimary:     textnorm.Letter(e.TitlePrimary),
		LetterSecondary:   textnorm.Letter(e.TitleSecondary),
	}
	q, args, err := r.db.BindNamed(insertEntrySQL, row)
	if err != nil {
		return 0, fmt.Errorf("catalog: bind insert: %w", err)
	}
	var id int64
	if err := r.db.QueryRowxContext(ctx, q, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("catalog: insert: %w", err)
	}
	logger.Info(ctx, "catalog", "catalog.insert",
		slog.String("status", "ok"),
		slog.Int64("entry_id", id),
	)
	return id, nil
}

// DeleteByID removes the entry and reports whether a row existed.
// Deleting a missing id is not an error.
func (r *Repository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM doramas WHERE id = ?"), id)
	if err != nil {
		return false, fmt.Errorf("catalog: delete %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("catalog: delete %d: %w", id, err)
	}
	logger.Info(ctx, "catalog", "catalog.delete",
		slog.String("status", "ok"),
		slog.Int64("entry_id", id),
		slog.Bool("found", n > 0),
	)
	return n > 0, nil
}

// DistinctValues lists the distinct values of f among entries matching p, ascending.
func (r *Repository) DistinctValues(ctx context.Context, f Field, p Predicate) ([]string, error) {
	col, ok := valueColumns[f]
	if !ok {
		return nil, fmt.Errorf("catalog: unknown field %q", f)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	q := r.db.Rebind("SELECT DISTINCT " + col + " FROM doramas" + p.where() + " ORDER BY " + col)
	var out []string
	if err := r.db.SelectContext(ctx, &out, q, p.args...); err != nil {
		return nil, fmt.Errorf("catalog: distinct %s: %w", f, err)
	}
	return out, nil
}

// Ratings lists the ratings in use, highest first.
func (r *Repository) Ratings(ctx context.Context) ([]int, error) {
	var out []int
	if err := r.db.SelectContext(ctx, &out, "SELECT DISTINCT rating FROM doramas ORDER BY rating DESC"); err != nil {
		return nil, fmt.Errorf("catalog: ratings: %w", err)
	}
	return out, nil
}

// CountYears returns the number of distinct release years.
func (r *Repository) CountYears(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(DISTINCT year) FROM doramas"); err != nil {
		return 0, fmt.Errorf("catalog: count years: %w", err)
	}
	return n, nil
}

// Years returns one page of distinct release years, newest first.
func (r *Repository) Years(ctx context.Context, limit, offset int) ([]int, error) {
	var out []int
	q := r.db.Rebind("SELECT DISTINCT year FROM doramas ORDER BY year DESC LIMIT ? OFFSET ?")
	if err := r.db.SelectContext(ctx, &out, q, limit, offset); err != nil {
		return nil, fmt.Errorf("catalog: years: %w", err)
	}
	return out, nil
}

// DistinctPeople lists one page of distinct (name, country) pairs of the people field role
// among entries matching p.
func (r *Repository) DistinctPeople(ctx context.Context, role Field, p Predicate, limit, offset int) ([]Person, error) {
	if !IsPerson(role) {
		return nil, fmt.Errorf("catalog: field %q is not a people field", role)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	col := valueColumns[role]
	q := r.db.Rebind("SELECT DISTINCT " + col + " AS name, country FROM doramas" + p.where() +
		" ORDER BY name, country LIMIT ? OFFSET ?")
	args := append(append([]any(nil), p.args...), limit, offset)
	var out []Person
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, fmt.Errorf("catalog: people %s: %w", role, err)
	}
	return out, nil
}

// CountPeople counts the distinct (name, country) pairs DistinctPeople would list.
func (r *Repository) CountPeople(ctx context.Context, role Field, p Predicate) (int, error) {
	if !IsPerson(role) {
		return 0, fmt.Errorf("catalog: field %q is not a people field", role)
	}
	if err := p.Err(); err != nil {
		return 0, err
	}
	col := valueColumns[role]
	q := r.db.Rebind("SELECT COUNT(*) FROM (SELECT DISTINCT " + col + ", country FROM doramas" + p.where() + ") people")
	var n int
	if err := r.db.GetContext(ctx, &n, q, p.args...); err != nil {
		return 0, fmt.Errorf("catalog: count people %s: %w", role, err)
	}
	return n, nil
}
