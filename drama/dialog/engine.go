// Package dialog is the conversation engine: per-flow state machines over a typed session,
// the action token router and the error taxonomy that keeps every conversation usable.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/nezabudrama/core/logger"
	"github.com/m3rciful/nezabudrama/core/telegram/state"
	"github.com/m3rciful/nezabudrama/drama/catalog"
	"github.com/m3rciful/nezabudrama/drama/paging"
	"github.com/m3rciful/nezabudrama/drama/render"
	"github.com/m3rciful/nezabudrama/drama/session"
)

// Catalog is the part of the catalog repository the engine reads and writes.
type Catalog interface {
	Count(ctx context.Context, p catalog.Predicate) (int, error)
	Find(ctx context.Context, p catalog.Predicate, order catalog.Order, limit, offset int) ([]catalog.Entry, error)
	Get(ctx context.Context, id int64) (catalog.Entry, error)
	Insert(ctx context.Context, e catalog.Entry) (int64, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	DistinctValues(ctx context.Context, f catalog.Field, p catalog.Predicate) ([]string, error)
	Ratings(ctx context.Context) ([]int, error)
	CountYears(ctx context.Context) (int, error)
	Years(ctx context.Context, limit, offset int) ([]int, error)
	DistinctPeople(ctx context.Context, role catalog.Field, p catalog.Predicate, limit, offset int) ([]catalog.Person, error)
	CountPeople(ctx context.Context, role catalog.Field, p catalog.Predicate) (int, error)
}

// PosterResolver validates and resolves public poster links.
type PosterResolver interface {
	Supported(link string) bool
	Resolve(ctx context.Context, link string) (string, error)
}

// Incident describes an unanticipated handler failure.
type Incident struct {
	ID     string
	UserID int64
	Event  string
	State  string
	Err    error
	Stack  []byte
	At     time.Time
}

// Reporter delivers incidents out of band, typically to the admins.
type Reporter interface {
	Report(ctx context.Context, inc Incident)
}

// Outcome is the result class of one handled event. The values match the log schema.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeInvalid  Outcome = "invalid"
	OutcomeDenied   Outcome = "denied"
	OutcomeNotFound Outcome = "not_found"
	OutcomeNoop     Outcome = "noop"
	OutcomeFail     Outcome = "fail"
)

// Options configures an Engine.
type Options struct {
	Catalog  Catalog
	Sessions state.Store[*session.Session]
	// Locker serializes events per user. A fresh one is created when nil.
	Locker   *state.Locker
	Posters  PosterResolver
	IsAdmin  func(userID int64) bool
	Reporter Reporter
	PageSize int
	Now      func() time.Time
}

// Engine routes events to flows. It is safe for concurrent use; events of one user
// are handled one at a time.
type Engine struct {
	catalog  Catalog
	sessions state.Store[*session.Session]
	locks    *state.Locker
	posters  PosterResolver
	isAdmin  func(int64) bool
	reporter Reporter
	pageSize int
	now      func() time.Time
}

// New validates opts and builds an Engine.
func New(opts Options) (*Engine, error) {
	if opts.Catalog == nil {
		return nil, errors.New("dialog: catalog is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("dialog: session store is required")
	}
	if opts.Posters == nil {
		return nil, errors.New("dialog: poster resolver is required")
	}
	e := &Engine{
		catalog:  opts.Catalog,
		sessions: opts.Sessions,
		locks:    opts.Locker,
		posters:  opts.Posters,
		isAdmin:  opts.IsAdmin,
		reporter: opts.Reporter,
		pageSize: opts.PageSize,
		now:      opts.Now,
	}
	if e.locks == nil {
		e.locks = state.NewLocker()
	}
	if e.isAdmin == nil {
		e.isAdmin = func(int64) bool { return false }
	}
	if e.pageSize <= 0 {
		e.pageSize = paging.DefaultSize
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e, nil
}

// turn is the handling of one event.
type turn struct {
	*Engine
	fe      render.FrontEnd
	ev      Event
	sess    *session.Session
	outcome Outcome
}

// Handle processes ev for its user: load the session, run the owning flow, save the session.
// Failures are answered to the user and never returned; the outcome classifies the result.
func (e *Engine) Handle(ctx context.Context, fe render.FrontEnd, ev Event) Outcome {
	unlock := e.locks.Lock(ev.UserID)
	defer unlock()
	start := time.Now()

	sess, err := e.sessions.Load(ctx, ev.UserID)
	if err != nil {
		if !errors.Is(err, state.ErrNotFound) {
			logger.Warn(ctx, "session", "session.load",
				slog.String("status", "fail"),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
		sess = session.New(ev.UserID)
	}
	t := &turn{Engine: e, fe: fe, ev: ev, sess: sess, outcome: OutcomeOK}
	before := session.Describe(sess.State)

	if ev.Kind == EventTap {
		if err := fe.Answer(ctx, ""); err != nil {
			logger.Debug(ctx, "dialog", "callback.answer",
				slog.String("status", "fail"),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
	}
	if err := t.run(ctx); err != nil {
		t.fail(ctx, err)
	}

	sess.UpdatedAt = e.now()
	if err := e.sessions.Save(ctx, ev.UserID, sess); err != nil {
		logger.Error(ctx, "session", "session.save",
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
	logger.Info(ctx, "dialog", "dialog.handled",
		slog.String("status", "ok"),
		slog.String("flow", before),
		slog.String("state", session.Describe(sess.State)),
		slog.String("token", logger.SanitizeLimit(ev.Data, 64)),
		slog.String("outcome", string(t.outcome)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return t.outcome
}

func (t *turn) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	switch t.ev.Kind {
	case EventCommand:
		return t.command(ctx)
	case EventText:
		return t.text(ctx)
	case EventTap:
		return t.tap(ctx)
	}
	return fmt.Errorf("dialog: unknown event kind %d", t.ev.Kind)
}

// fail answers err according to its class.
func (t *turn) fail(ctx context.Context, err error) {
	var (
		verr *ValidationError
		aerr *AuthorizationError
		nerr *NotFoundError
		serr *TransientStoreError
		terr *TokenError
	)
	var answer error
	switch {
	case errors.As(err, &verr):
		t.outcome = OutcomeInvalid
		answer = t.show(ctx, verr.Screen)
	case errors.As(err, &aerr):
		t.outcome = OutcomeDenied
		t.sess.Enter(session.Idle{})
		answer = t.show(ctx, render.Notice(aerr.Message))
	case errors.As(err, &nerr):
		t.outcome = OutcomeNotFound
		t.exitFlow()
		answer = t.show(ctx, nerr.Screen)
	case errors.As(err, &serr):
		t.outcome = OutcomeFail
		logger.Error(ctx, "dialog", "store.failed",
			slog.String("status", "fail"),
			slog.String("state", session.Describe(t.sess.State)),
			slog.String("cause", serr.Op),
			slog.String("err", logger.SanitizeLimit(serr.Err.Error(), 256)),
		)
		if serr.Retry != nil {
			answer = t.reply(ctx, *serr.Retry)
		} else {
			t.exitFlow()
			answer = t.reply(ctx, render.Failure())
		}
	case errors.As(err, &terr):
		t.outcome = OutcomeInvalid
		logger.Warn(ctx, "dialog", "token.rejected",
			slog.String("status", "skip"),
			slog.String("token", logger.SanitizeLimit(t.ev.Data, 64)),
			slog.String("cause", logger.SanitizeLimit(terr.Reason, 128)),
		)
		answer = t.show(ctx, render.UnknownButton())
	case errors.Is(err, ErrMissingContext):
		t.outcome = OutcomeInvalid
		answer = t.show(ctx, render.MissingContext())
	default:
		t.incident(ctx, err)
		return
	}
	if answer != nil {
		t.incident(ctx, answer)
	}
}

// incident resets the session, reports err to the admins and apologizes to the user.
func (t *turn) incident(ctx context.Context, err error) {
	t.outcome = OutcomeFail
	inc := Incident{
		ID:     uuid.NewString(),
		UserID: t.ev.UserID,
		Event:  t.ev.String(),
		State:  session.Describe(t.sess.State),
		Err:    err,
		At:     t.now(),
	}
	var perr *PanicError
	if errors.As(err, &perr) {
		inc.Stack = perr.Stack
	}
	logger.Error(ctx, "dialog", "dialog.incident",
		slog.String("status", "fail"),
		slog.String("state", inc.State),
		slog.String("token", logger.SanitizeLimit(t.ev.Data, 64)),
		slog.String("incident", inc.ID),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
	t.sess.Enter(session.Idle{})
	if t.reporter != nil {
		t.reporter.Report(ctx, inc)
	}
	if rerr := t.fe.Reply(ctx, render.Failure()); rerr != nil {
		logger.Error(ctx, "dialog", "dialog.apology",
			slog.String("status", "fail"),
			slog.String("incident", inc.ID),
			slog.String("err", logger.SanitizeLimit(rerr.Error(), 256)),
		)
	}
}

// show redraws the tapped message, or replies when the event is not a tap.
func (t *turn) show(ctx context.Context, s render.Screen) error {
	if t.ev.Kind == EventTap {
		return render.EditOrReply(ctx, t.fe, s)
	}
	return t.fe.Reply(ctx, s)
}

func (t *turn) reply(ctx context.Context, s render.Screen) error {
	return t.fe.Reply(ctx, s)
}

// exitFlow ends the active flow and forgets its search context.
func (t *turn) exitFlow() {
	if st, ok := t.sess.State.(session.Searching); ok {
		t.sess.ClearSlot(st.Facet)
	}
	t.sess.Enter(session.Idle{})
}
