package middleware

import (
	"errors"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func newBot(t *testing.T) *tele.Bot {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true, Synchronous: true})
	if err != nil {
		t.Fatalf("new bot: %v", err)
	}
	return b
}

func messageFrom(b *tele.Bot, userID int64, updateID int) tele.Context {
	return b.NewContext(tele.Update{
		ID: updateID,
		Message: &tele.Message{
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
			Text:   "hello",
		},
	})
}

func callbackFrom(b *tele.Bot, userID int64, data string) tele.Context {
	return b.NewContext(tele.Update{
		Callback: &tele.Callback{ID: "cb", Sender: &tele.User{ID: userID}, Data: data},
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	b := newBot(t)
	now := time.Unix(1_700_000_000, 0)
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Second,
		Exclude:   map[string]struct{}{"callback": {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
		Now:       func() time.Time { return now },
	})
	handled := 0
	h := mw(func(tele.Context) error { handled++; return nil })

	_ = h(messageFrom(b, 1, 1))
	_ = h(messageFrom(b, 1, 2))
	_ = h(messageFrom(b, 2, 3))
	if handled != 2 || limited != 1 {
		t.Fatalf("handled=%d limited=%d, want 2/1", handled, limited)
	}

	_ = h(callbackFrom(b, 1, "show_menu"))
	if handled != 3 {
		t.Fatal("excluded callback must bypass the limiter")
	}

	now = now.Add(1500 * time.Millisecond)
	_ = h(messageFrom(b, 1, 4))
	if handled != 4 {
		t.Fatal("message after the interval must pass")
	}
}

func TestAdminOnlyMiddleware(t *testing.T) {
	b := newBot(t)
	rejected := 0
	mw := AdminOnlyMiddleware(AdminOptions{
		IsAdmin:  func(id int64) bool { return id == 42 },
		OnReject: func(tele.Context) error { rejected++; return nil },
	})
	passed := 0
	h := mw(func(tele.Context) error { passed++; return nil })

	_ = h(messageFrom(b, 42, 1))
	_ = h(messageFrom(b, 7, 2))
	if passed != 1 || rejected != 1 {
		t.Fatalf("passed=%d rejected=%d", passed, rejected)
	}

	closed := AdminOnlyMiddleware(AdminOptions{})(func(tele.Context) error { passed++; return nil })
	_ = closed(messageFrom(b, 42, 3))
	if passed != 1 {
		t.Fatal("nil IsAdmin must reject everyone")
	}
}

func TestRecoverWith(t *testing.T) {
	b := newBot(t)
	var got any
	h := RecoverWith(func(_ tele.Context, r any, stack []byte) {
		got = r
		if len(stack) == 0 {
			t.Error("stack must be captured")
		}
	})(func(tele.Context) error { panic("boom") })

	err := h(messageFrom(b, 1, 1))
	if err == nil || got != "boom" {
		t.Fatalf("err=%v recovered=%v", err, got)
	}

	plain := RecoverMiddleware(func(tele.Context) error { return errors.New("fail") })
	if err := plain(messageFrom(b, 1, 2)); err == nil || err.Error() != "fail" {
		t.Fatalf("errors must pass through, got %v", err)
	}
}

func TestCounters(t *testing.T) {
	b := newBot(t)
	c := messageFrom(b, 1, 1)
	_ = MessageMetricsMiddleware(func(c tele.Context) error {
		CountSent(c, false)
		CountSent(c, true)
		return nil
	})(c)
	msgs, kb := GetCounters(c)
	if msgs != 2 || !kb {
		t.Fatalf("counters = %d/%v", msgs, kb)
	}
}

func TestCallbackKey(t *testing.T) {
	cases := map[string]string{
		"actor:3":                  "actor",
		"select_country:Япония":    "select_country",
		"list_doramas_year_2016_1": "list_doramas_year",
		"filter_by_rating_9":       "filter_by_rating",
		"cancel":                   "cancel",
		"\fmenu|x":                 "menu",
	}
	for in, want := range cases {
		if got := CallbackKey(in); got != want {
			t.Fatalf("CallbackKey(%q) = %q, want %q", in, got, want)
		}
	}
}
