package router

import (
	"errors"
	"fmt"
	"testing"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/nezabudrama/core/telegram"
	"github.com/m3rciful/nezabudrama/core/telegram/commands"
)

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() string  { return "not found" }

type plainErr struct{}

func (*plainErr) Error() string { return "plain" }

func TestDeriveErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{codedErr{}, "NOT_FOUND"},
		{fmt.Errorf("wrap: %w", codedErr{}), "NOT_FOUND"},
		{&plainErr{}, "PLAINERR"},
	}
	for _, tc := range cases {
		if got := deriveErrorCode(tc.err); got != tc.want {
			t.Fatalf("deriveErrorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
	if got := deriveErrorCode(errors.New("x")); got == "" {
		t.Fatal("errors without code still get a type based code")
	}
}

func TestNormalizeHandlerName(t *testing.T) {
	if got := normalizeHandlerName("/Search_By_Title"); got != "search_by_title" {
		t.Fatalf("got %q", got)
	}
	if got := normalizeHandlerName("  "); got != "unknown" {
		t.Fatalf("got %q", got)
	}
}

func TestCommandRoutesIncludeAliases(t *testing.T) {
	reg := tg.NewRegistry()
	h := func(tele.Context) error { return nil }
	reg.RegisterCommand("/actions", commands.Command{Handler: h, Description: "actions", AdminOnly: true, Aliases: []string{"get_user_actions"}})
	reg.RegisterCommand("/start", commands.Command{Handler: h, Description: "start"})

	routes := CommandRoutes(reg, CommandRouteOptions{IsAdmin: func(int64) bool { return false }})
	endpoints := map[any]bool{}
	for _, r := range routes {
		endpoints[r.Endpoint] = true
	}
	for _, want := range []string{"/actions", "/get_user_actions", "/start"} {
		if !endpoints[want] {
			t.Fatalf("missing endpoint %s in %v", want, endpoints)
		}
	}
	if len(routes) != 3 {
		t.Fatalf("routes = %d, want 3", len(routes))
	}
}

func TestTextRoutesCoverMedia(t *testing.T) {
	routes := TextRoutes(tg.NewRegistry(), TextOptions{})
	if routes[0].Endpoint != tele.OnText {
		t.Fatalf("first route = %v", routes[0].Endpoint)
	}
	if len(routes) != 1+len(mediaEndpoints) {
		t.Fatalf("routes = %d", len(routes))
	}
}
