package frontend

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/nezabudrama/core/logger"
	tg "github.com/m3rciful/nezabudrama/core/telegram"
	"github.com/m3rciful/nezabudrama/core/telegram/commands"
	"github.com/m3rciful/nezabudrama/core/telegram/helpers"
	"github.com/m3rciful/nezabudrama/core/telegram/router"
	"github.com/m3rciful/nezabudrama/drama/activity"
	"github.com/m3rciful/nezabudrama/drama/dialog"
	"github.com/m3rciful/nezabudrama/drama/render"
)

const (
	usersLimit   = 50
	actionsLimit = 10
)

var descriptions = map[string]string{
	"start":           "Запустить бота",
	"menu":            "Главное меню",
	"restart":         "Перезапустить бота",
	"cancel":          "Отменить текущее действие",
	"search_by_title": "Поиск по названию",
}

// ActivityLog is the part of the activity repository the bot uses.
type ActivityLog interface {
	Record(ctx context.Context, u activity.User, kind activity.Kind, action string) error
	CountUsers(ctx context.Context) (int, error)
	ListUsers(ctx context.Context, limit int) ([]activity.User, error)
	RecentActions(ctx context.Context, userID int64, limit int) ([]activity.Action, error)
}

// Bot adapts telebot updates to the dialog engine and serves the admin commands.
type Bot struct {
	Engine   *dialog.Engine
	Activity ActivityLog
	Reporter dialog.Reporter
	Now      func() time.Time
}

// Registry registers the engine commands, the admin commands and the catch-all handlers.
func (b *Bot) Registry() *tg.Registry {
	reg := tg.NewRegistry()
	for _, name := range dialog.Commands {
		reg.RegisterCommand("/"+name, commands.Command{
			Handler:     b.command(name),
			Description: descriptions[name],
		})
	}
	reg.RegisterCommand("/users", commands.Command{
		Handler:     b.users,
		Description: "Список пользователей",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/actions", commands.Command{
		Handler:     b.actions,
		Description: "Последние действия пользователя",
		AdminOnly:   true,
		Aliases:     []string{"get_user_actions"},
	})
	reg.SetCallbackHandler(b.callback)
	reg.SetTextFallback(b.text)
	return reg
}

func (b *Bot) handle(c tele.Context, ev dialog.Event) error {
	out := b.Engine.Handle(helpers.BuildContext(c), NewTelegram(c), ev)
	c.Set(router.OutcomeKey, string(out))
	return nil
}

func (b *Bot) command(name string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return b.handle(c, dialog.Command(senderID(c), name))
	}
}

func (b *Bot) callback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	return b.handle(c, dialog.Tap(senderID(c), strings.TrimSpace(cb.Data)))
}

func (b *Bot) text(c tele.Context) error {
	return b.handle(c, dialog.Text(senderID(c), c.Text()))
}

// Media answers non-text messages.
func (b *Bot) Media(c tele.Context) error {
	c.Set(router.OutcomeKey, "noop")
	return NewTelegram(c).Reply(helpers.BuildContext(c), render.UseButtons())
}

// Denied answers admin commands sent by other users.
func (b *Bot) Denied(c tele.Context) error {
	c.Set(router.OutcomeKey, "denied")
	return NewTelegram(c).Reply(helpers.BuildContext(c), render.Notice("❌ У вас нет прав для этой команды."))
}

// Limited answers updates dropped by the rate limiter.
func (b *Bot) Limited(c tele.Context) error {
	c.Set(router.OutcomeKey, "rate_limited")
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: "⏳ Не так быстро, подождите секунду."})
	}
	return nil
}

// Panicked reports a panic that escaped a handler.
func (b *Bot) Panicked(c tele.Context, recovered any, stack []byte) {
	if b.Reporter == nil {
		return
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	b.Reporter.Report(helpers.BuildContext(c), dialog.Incident{
		ID:     uuid.NewString(),
		UserID: senderID(c),
		Event:  logger.SanitizeLimit(c.Text(), 64),
		State:  "unknown",
		Err:    panicError{recovered},
		Stack:  stack,
		At:     now(),
	})
}

type panicError struct{ v any }

func (p panicError) Error() string { return "panic: " + strings.TrimSpace(toString(p.v)) }

func toString(v any) string {
	switch x := v.(type) {
	case error:
		return x.Error()
	case string:
		return x
	}
	return "non-string panic value"
}

func (b *Bot) users(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	fe := NewTelegram(c)
	total, err := b.Activity.CountUsers(ctx)
	if err != nil {
		apologize(ctx, fe)
		return err
	}
	list, err := b.Activity.ListUsers(ctx, usersLimit)
	if err != nil {
		apologize(ctx, fe)
		return err
	}
	return fe.Reply(ctx, render.Users(list, total))
}

func (b *Bot) actions(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	fe := NewTelegram(c)
	var payload string
	if m := c.Message(); m != nil {
		payload = m.Payload
	}
	userID, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
	if err != nil || userID <= 0 {
		c.Set(router.OutcomeKey, "invalid")
		return fe.Reply(ctx, render.Plain("⚠️ Использование: /actions <user_id>"))
	}
	list, err := b.Activity.RecentActions(ctx, userID, actionsLimit)
	if err != nil {
		apologize(ctx, fe)
		return err
	}
	return fe.Reply(ctx, render.Actions(userID, list))
}

// apologize sends the generic failure reply of an admin command.
func apologize(ctx context.Context, fe render.FrontEnd) {
	if err := fe.Reply(ctx, render.Failure()); err != nil {
		logger.Error(ctx, "frontend", "admin.apology",
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
}

// RecordActivity stores the sender and a short description of every update.
// Recording failures are logged and never block the update.
func (b *Bot) RecordActivity(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if u := c.Sender(); u != nil && b.Activity != nil {
			kind, action := describe(c)
			ctx := helpers.BuildContext(c)
			err := b.Activity.Record(ctx, activity.User{
				UserID:    u.ID,
				Username:  u.Username,
				FirstName: u.FirstName,
				LastName:  u.LastName,
			}, kind, action)
			if err != nil {
				logger.Warn(ctx, "activity", "activity.record",
					slog.String("status", "fail"),
					slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
				)
			}
		}
		return next(c)
	}
}

func describe(c tele.Context) (activity.Kind, string) {
	if cb := c.Callback(); cb != nil {
		return activity.KindCallback, cb.Data
	}
	text := c.Text()
	if strings.HasPrefix(text, "/") {
		return activity.KindCommand, text
	}
	if text == "" {
		return activity.KindMessage, "[media]"
	}
	return activity.KindMessage, text
}

func senderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}
