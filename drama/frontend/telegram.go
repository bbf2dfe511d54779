// Package frontend connects the dialog engine and the activity log to the telebot runtime.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/nezabudrama/core/telegram/keyboard"
	"github.com/m3rciful/nezabudrama/drama/render"
)

// uneditableMarkers are Bot API error descriptions meaning the target message cannot take an edit.
var uneditableMarkers = []string{
	"message can't be edited",
	"there is no text in the message to edit",
	"no text in the message",
	"message to edit not found",
}

// Telegram is the render.FrontEnd of one update.
type Telegram struct {
	c tele.Context
}

// NewTelegram wraps the update context c.
func NewTelegram(c tele.Context) *Telegram {
	return &Telegram{c: c}
}

// Reply sends s as a new message, as a photo when it carries one.
func (t *Telegram) Reply(_ context.Context, s render.Screen) error {
	var what any = s.Text
	if s.PhotoURL != "" {
		what = &tele.Photo{File: tele.FromURL(s.PhotoURL), Caption: s.Text}
	}
	return t.c.Send(what, sendOptions(s)...)
}

// Edit replaces the tapped message with s.
func (t *Telegram) Edit(_ context.Context, s render.Screen) render.EditResult {
	if t.c.Callback() == nil {
		return render.EditResult{Outcome: render.Failed, Uneditable: true, Err: render.ErrUneditable}
	}
	return classifyEdit(t.c.Edit(s.Text, sendOptions(s)...))
}

// Delete removes the tapped message.
func (t *Telegram) Delete(context.Context) error {
	return t.c.Delete()
}

// Answer acknowledges the callback query, optionally with a toast.
func (t *Telegram) Answer(_ context.Context, text string) error {
	if text == "" {
		return t.c.Respond()
	}
	return t.c.Respond(&tele.CallbackResponse{Text: text})
}

func sendOptions(s render.Screen) []any {
	var opts []any
	if markup := Markup(s.Rows); markup != nil {
		opts = append(opts, markup)
	}
	if s.Markdown {
		opts = append(opts, tele.ModeMarkdown)
	}
	return opts
}

// Markup converts rows of render buttons into an inline keyboard, or nil without buttons.
func Markup(rows [][]render.Button) *tele.ReplyMarkup {
	inline := make([][]keyboard.InlineBtn, 0, len(rows))
	for _, row := range rows {
		r := make([]keyboard.InlineBtn, len(row))
		for i, b := range row {
			r[i] = keyboard.InlineBtn{Text: b.Text, Data: b.Data}
		}
		inline = append(inline, r)
	}
	return keyboard.InlineRows(inline...)
}

// classifyEdit maps a Bot API edit error to an EditResult.
func classifyEdit(err error) render.EditResult {
	if err == nil {
		return render.EditResult{Outcome: render.Applied}
	}
	var apiErr *tele.Error
	if !errors.As(err, &apiErr) {
		return render.EditResult{Outcome: render.Failed, Err: err}
	}
	desc := strings.ToLower(apiErr.Description)
	if errors.Is(err, tele.ErrSameMessageContent) || strings.Contains(desc, "message is not modified") {
		return render.EditResult{Outcome: render.NoOpIdentical}
	}
	if errors.Is(err, tele.ErrCantEditMessage) || uneditable(desc) {
		return render.EditResult{
			Outcome:    render.Failed,
			Uneditable: true,
			Err:        fmt.Errorf("%w: %v", render.ErrUneditable, err),
		}
	}
	return render.EditResult{Outcome: render.Failed, Err: err}
}

func uneditable(desc string) bool {
	for _, m := range uneditableMarkers {
		if strings.Contains(desc, m) {
			return true
		}
	}
	return false
}
