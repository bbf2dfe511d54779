package frontend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/nezabudrama/core/logger"
	"github.com/m3rciful/nezabudrama/drama/activity"
	"github.com/m3rciful/nezabudrama/drama/dialog"
	"github.com/m3rciful/nezabudrama/drama/render"
)

func TestClassifyEdit(t *testing.T) {
	cases := []struct {
		err        error
		want       render.EditOutcome
		uneditable bool
	}{
		{nil, render.Applied, false},
		{tele.ErrSameMessageContent, render.NoOpIdentical, false},
		{fmt.Errorf("edit: %w", &tele.Error{Code: 400, Description: "Bad Request: message is not modified"}), render.NoOpIdentical, false},
		{tele.ErrCantEditMessage, render.Failed, true},
		{&tele.Error{Code: 400, Description: "Bad Request: there is no text in the message to edit"}, render.Failed, true},
		{&tele.Error{Code: 400, Description: "Bad Request: message to edit not found"}, render.Failed, true},
		{&tele.Error{Code: 502, Description: "Bad Gateway"}, render.Failed, false},
		// only Bot API errors are classified; transport text never counts
		{errors.New("read: message is not modified"), render.Failed, false},
	}
	for _, tc := range cases {
		got := classifyEdit(tc.err)
		if got.Outcome != tc.want || got.Uneditable != tc.uneditable {
			t.Fatalf("%v: got %+v", tc.err, got)
		}
		if tc.uneditable && !errors.Is(got.Err, render.ErrUneditable) {
			t.Fatalf("%v: err %v does not wrap ErrUneditable", tc.err, got.Err)
		}
	}
}

func TestMarkup(t *testing.T) {
	if Markup(nil) != nil {
		t.Fatal("no rows must give no keyboard")
	}
	m := Markup([][]render.Button{{{Text: "a", Data: "show_menu"}, {Text: "b", Data: "cancel"}}, {}})
	if m == nil || len(m.InlineKeyboard) != 1 || len(m.InlineKeyboard[0]) != 2 {
		t.Fatalf("markup = %+v", m)
	}
	if m.InlineKeyboard[0][1].Data != "cancel" {
		t.Fatalf("data = %q", m.InlineKeyboard[0][1].Data)
	}
}

func TestIncidentText(t *testing.T) {
	inc := dialog.Incident{
		ID:     "3f1c",
		UserID: 42,
		Event:  "tap show_dorama:1",
		State:  "idle",
		Err:    errors.New("boom"),
		Stack:  []byte(strings.Repeat("x", 5000)),
		At:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	text := IncidentText(inc)
	for _, want := range []string{"Инцидент: 3f1c", "Пользователь: 42", "Ошибка: boom", "2026-01-02 03:04:05"} {
		if !strings.Contains(text, want) {
			t.Fatalf("report misses %q:\n%s", want, text)
		}
	}
	if n := len([]rune(text)); n > messageLimit {
		t.Fatalf("report is %d runes", n)
	}
}

type fakeLog struct {
	users   []activity.User
	kinds   []activity.Kind
	actions []string
	err     error
}

func (f *fakeLog) Record(_ context.Context, u activity.User, kind activity.Kind, action string) error {
	f.users = append(f.users, u)
	f.kinds = append(f.kinds, kind)
	f.actions = append(f.actions, action)
	return f.err
}
func (f *fakeLog) CountUsers(context.Context) (int, error) { return len(f.users), nil }
func (f *fakeLog) ListUsers(context.Context, int) ([]activity.User, error) {
	return f.users, nil
}
func (f *fakeLog) RecentActions(context.Context, int64, int) ([]activity.Action, error) {
	return nil, nil
}

func TestRecordActivity(t *testing.T) {
	b, err := tele.NewBot(tele.Settings{Offline: true, Synchronous: true})
	if err != nil {
		t.Fatalf("new bot: %v", err)
	}
	log := &fakeLog{err: errors.New("disk full")}
	bot := &Bot{Activity: log}
	handled := 0
	h := bot.RecordActivity(func(tele.Context) error { handled++; return nil })

	user := &tele.User{ID: 7, Username: "kate", FirstName: "Катя"}
	_ = h(b.NewContext(tele.Update{ID: 1, Message: &tele.Message{Sender: user, Chat: &tele.Chat{ID: 7}, Text: "/start"}}))
	_ = h(b.NewContext(tele.Update{ID: 2, Message: &tele.Message{Sender: user, Chat: &tele.Chat{ID: 7}, Text: "Гоблин"}}))
	_ = h(b.NewContext(tele.Update{ID: 3, Callback: &tele.Callback{ID: "cb", Sender: user, Data: "show_menu"}}))

	if handled != 3 {
		t.Fatalf("handled = %d; a failing log must not block updates", handled)
	}
	want := []activity.Kind{activity.KindCommand, activity.KindMessage, activity.KindCallback}
	for i, k := range want {
		if log.kinds[i] != k {
			t.Fatalf("kind[%d] = %s, want %s", i, log.kinds[i], k)
		}
	}
	if log.actions[2] != "show_menu" || log.users[0].Username != "kate" {
		t.Fatalf("recorded %v %+v", log.actions, log.users[0])
	}
}

func TestRegistryCommands(t *testing.T) {
	reg := (&Bot{}).Registry()
	for _, name := range append(append([]string(nil), dialog.Commands...), "users", "actions") {
		if _, ok := reg.Commands()["/"+name]; !ok {
			t.Fatalf("command /%s not registered", name)
		}
	}
	key, cmd, args, ok := reg.LookupCommand("/get_user_actions 42")
	if !ok || key != "/actions" || !cmd.AdminOnly || args != "42" {
		t.Fatalf("alias lookup = %q %+v %q %v", key, cmd, args, ok)
	}
	visible := reg.ListCommands(true)
	for _, c := range visible {
		if c.Text == "users" || c.Text == "actions" {
			t.Fatalf("admin command %q is visible", c.Text)
		}
	}
}

type deadFrontEnd struct{ render.FrontEnd }

func (deadFrontEnd) Reply(context.Context, render.Screen) error { return errors.New("chat not found") }

func TestApologizeLogsFailedReply(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.L
	logger.L = slog.New(slog.NewTextHandler(&buf, nil))
	t.Cleanup(func() { logger.L = prev })

	apologize(context.Background(), deadFrontEnd{})
	out := buf.String()
	if !strings.Contains(out, "event=admin.apology") || !strings.Contains(out, "chat not found") {
		t.Fatalf("log = %q", out)
	}
}
