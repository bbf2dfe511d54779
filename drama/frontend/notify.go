package frontend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/nezabudrama/core/logger"
	"github.com/m3rciful/nezabudrama/core/telegram/format"
	"github.com/m3rciful/nezabudrama/core/telegram/helpers"
	"github.com/m3rciful/nezabudrama/drama/dialog"
)

const (
	messageLimit = 4096
	stackLimit   = 1500
)

// Notifier reports incidents to every admin through the shared sender dispatcher.
// Reports made before Bind are logged and dropped.
type Notifier struct {
	admins []int64
	bot    atomic.Pointer[botRef]
}

type botRef struct{ api tele.API }

// NewNotifier builds a Notifier for the given admin ids.
func NewNotifier(admins []int64) *Notifier {
	return &Notifier{admins: append([]int64(nil), admins...)}
}

// Bind attaches the running bot; nil detaches it.
func (n *Notifier) Bind(api tele.API) {
	if api == nil {
		n.bot.Store(nil)
		return
	}
	n.bot.Store(&botRef{api: api})
}

// Report implements dialog.Reporter.
func (n *Notifier) Report(ctx context.Context, inc dialog.Incident) {
	ref := n.bot.Load()
	if ref == nil || len(n.admins) == 0 {
		logger.Warn(ctx, "dialog", "incident.report",
			slog.String("status", "skip"),
			slog.String("incident", inc.ID),
		)
		return
	}
	text := IncidentText(inc)
	sent := 0
	for _, id := range n.admins {
		if err := helpers.SendTo(ctx, ref.api, &tele.User{ID: id}, text); err != nil {
			logger.Warn(ctx, "dialog", "incident.report",
				slog.String("status", "fail"),
				slog.String("incident", inc.ID),
				slog.Int64("admin_id", id),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
			continue
		}
		sent++
	}
	logger.Info(ctx, "dialog", "incident.report",
		slog.String("status", "ok"),
		slog.String("incident", inc.ID),
		slog.Int("count", sent),
	)
}

// IncidentText renders the plain-text admin report of inc.
func IncidentText(inc dialog.Incident) string {
	var b strings.Builder
	b.WriteString("⚠️ Произошла ошибка при обработке запроса.\n\n")
	fmt.Fprintf(&b, "Инцидент: %s\n", inc.ID)
	fmt.Fprintf(&b, "Пользователь: %d\n", inc.UserID)
	fmt.Fprintf(&b, "Событие: %s\n", inc.Event)
	fmt.Fprintf(&b, "Состояние: %s\n", inc.State)
	if !inc.At.IsZero() {
		fmt.Fprintf(&b, "Время: %s\n", inc.At.UTC().Format("2006-01-02 15:04:05"))
	}
	if inc.Err != nil {
		fmt.Fprintf(&b, "Ошибка: %s\n", inc.Err)
	}
	if len(inc.Stack) > 0 {
		b.WriteString("\n")
		b.WriteString(format.Truncate(string(inc.Stack), stackLimit))
	}
	return format.Truncate(b.String(), messageLimit)
}
