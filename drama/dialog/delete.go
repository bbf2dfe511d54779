package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/nezabudrama/core/logger"
	"github.com/m3rciful/nezabudrama/drama/catalog"
	"github.com/m3rciful/nezabudrama/drama/render"
	"github.com/m3rciful/nezabudrama/drama/session"
)

func (t *turn) startDelete(ctx context.Context) error {
	if !t.isAdmin(t.ev.UserID) {
		return &AuthorizationError{Message: "❌ У вас нет прав для удаления дорам."}
	}
	t.exitFlow()
	t.sess.Enter(session.Deleting{Step: session.StepPromptID})
	return t.reply(ctx, render.Prompt("Введите ID дорамы, которую хотите удалить:"))
}

func (t *turn) deleteText(ctx context.Context, step session.DeleteStep) error {
	if step == session.StepConfirm {
		// anything but the confirm button cancels
		t.exitFlow()
		return t.reply(ctx, render.Done("Удаление отменено."))
	}
	raw := strings.TrimSpace(t.ev.Text)
	if raw == "" {
		return invalid(render.Prompt("Введите ID дорамы, которую хотите удалить:"))
	}
	t.sess.PendingDeleteID = raw
	t.sess.Enter(session.Deleting{Step: session.StepConfirm})
	return t.reply(ctx, render.ConfirmDelete(raw))
}

func (t *turn) confirmDelete(ctx context.Context) error {
	st, ok := t.sess.State.(session.Deleting)
	if !ok || st.Step != session.StepConfirm {
		return ErrMissingContext
	}
	if !t.isAdmin(t.ev.UserID) {
		return &AuthorizationError{Message: "❌ У вас нет прав для удаления дорам."}
	}
	raw := t.sess.PendingDeleteID
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		t.sess.Enter(session.Idle{})
		t.outcome = OutcomeInvalid
		return t.show(ctx, render.Done("⚠️ ID должен быть числом. Операция отменена."))
	}
	found, err := t.catalog.DeleteByID(ctx, id)
	if err != nil {
		return writeFailed("catalog.delete", err, render.ConfirmDelete(raw))
	}
	t.sess.Enter(session.Idle{})
	if !found {
		return notFound(render.Done(fmt.Sprintf("🚫 Дорама с ID %d не найдена.", id)))
	}
	logger.Info(ctx, "dialog", "flow.completed",
		slog.String("status", "ok"),
		slog.String("flow", string(session.FlowDelete)),
		slog.Int64("entry_id", id),
	)
	return t.show(ctx, render.Done(fmt.Sprintf("Дорама с ID %d успешно удалена!", id)))
}

func (t *turn) startLookup(ctx context.Context) error {
	t.exitFlow()
	t.sess.Enter(session.LookingUp{})
	return t.show(ctx, render.MarkdownPrompt("*🔎 Введите ID дорамы, которую хотите посмотреть:*"))
}

func (t *turn) lookupText(ctx context.Context) error {
	id, err := strconv.ParseInt(strings.TrimSpace(t.ev.Text), 10, 64)
	if err != nil || id <= 0 {
		return invalid(render.Prompt("⚠️ ID должен быть числом. Попробуйте еще раз."))
	}
	e, err := t.catalog.Get(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return notFound(render.Done(fmt.Sprintf("🚫 Дорама с ID %d не найдена.", id)))
	}
	if err != nil {
		return readFailed("catalog.get", err)
	}
	t.sess.Enter(session.Idle{})
	return t.sendCard(ctx, e)
}

// showEntry opens an entry card from a result list without leaving the search.
func (t *turn) showEntry(ctx context.Context, id int64) error {
	e, err := t.catalog.Get(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		t.outcome = OutcomeNotFound
		return t.reply(ctx, render.Notice(fmt.Sprintf("🚫 Дорама с ID %d не найдена.", id)))
	}
	if err != nil {
		return readFailed("catalog.get", err)
	}
	return t.sendCard(ctx, e)
}

// sendCard sends the entry card as a new message, as a photo when the poster resolves.
func (t *turn) sendCard(ctx context.Context, e catalog.Entry) error {
	var photo string
	if e.PosterURL != "" {
		href, err := t.posters.Resolve(ctx, e.PosterURL)
		if err == nil {
			photo = href
		}
	}
	head, tail := render.SplitCaption(render.Detail(e, photo))
	if err := t.reply(ctx, head); err != nil {
		return err
	}
	if tail != nil {
		return t.reply(ctx, *tail)
	}
	return nil
}
