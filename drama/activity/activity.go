// Package activity records who talks to the bot and what they do.
package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/nezabudrama/core/logger"
)

// Kind classifies a recorded update.
type Kind string

const (
	KindCommand  Kind = "command"
	KindMessage  Kind = "message"
	KindCallback Kind = "callback"
)

// maxActionLen bounds the stored action text in runes.
const maxActionLen = 256

// User is a known bot user.
type User struct {
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	FirstSeen time.Time `db:"first_seen"`
	LastSeen  time.Time `db:"last_seen"`
}

// DisplayName prefers the @username, then the full name.
func (u User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return fmt.Sprint(u.UserID)
	}
	return name
}

// Action is one recorded update.
type Action struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Kind      Kind      `db:"action_type"`
	Action    string    `db:"action"`
	CreatedAt time.Time `db:"created_at"`
}

// Repository stores users and their actions.
type Repository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewRepository wraps db.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const upsertUserSQL = `INSERT INTO users (user_id, username, first_name, last_name, first_seen, last_seen)
VALUES (:user_id, :username, :first_name, :last_name, :first_seen, :last_seen)
ON CONFLICT (user_id) DO UPDATE SET
	username = excluded.username,
	first_name = excluded.first_name,
	last_name = excluded.last_name,
	last_seen = excluded.last_seen`

// Record upserts u and appends the action in one transaction.
func (r *Repository) Record(ctx context.Context, u User, kind Kind, action string) error {
	switch kind {
	case KindCommand, KindMessage, KindCallback:
	default:
		return fmt.Errorf("activity: unknown kind %q", kind)
	}
	now := r.now()
	u.FirstSeen, u.LastSeen = now, now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("activity: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExecContext(ctx, upsertUserSQL, u); err != nil {
		return fmt.Errorf("activity: upsert user %d: %w", u.UserID, err)
	}
	q := tx.Rebind("INSERT INTO user_actions (user_id, action_type, action, created_at) VALUES (?, ?, ?, ?)")
	if _, err := tx.ExecContext(ctx, q, u.UserID, kind, truncate(action, maxActionLen), now); err != nil {
		return fmt.Errorf("activity: insert action: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("activity: commit: %w", err)
	}
	logger.Debug(ctx, "activity", "activity.record",
		slog.String("status", "ok"),
		slog.String("kind", string(kind)),
	)
	return nil
}

// CountUsers returns the number of known users.
func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM users"); err != nil {
		return 0, fmt.Errorf("activity: count users: %w", err)
	}
	return n, nil
}

// ListUsers returns the most recently seen users first.
func (r *Repository) ListUsers(ctx context.Context, limit int) ([]User, error) {
	var out []User
	q := r.db.Rebind(`SELECT user_id, username, first_name, last_name, first_seen, last_seen
		FROM users ORDER BY last_seen DESC, user_id LIMIT ?`)
	if err := r.db.SelectContext(ctx, &out, q, limit); err != nil {
		return nil, fmt.Errorf("activity: list users: %w", err)
	}
	return out, nil
}

// RecentActions returns the user's latest actions, newest first.
func (r *Repository) RecentActions(ctx context.Context, userID int64, limit int) ([]Action, error) {
	var out []Action
	q := r.db.Rebind(`SELECT id, user_id, action_type, action, created_at
		FROM user_actions WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`)
	if err := r.db.SelectContext(ctx, &out, q, userID, limit); err != nil {
		return nil, fmt.Errorf("activity: recent actions %d: %w", userID, err)
	}
	return out, nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
