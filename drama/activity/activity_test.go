package activity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/nezabudrama/core/database/dbtest"
)

func newRepo(t *testing.T) (*Repository, *time.Time) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	clock := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }
	return repo, &clock
}

func TestRecordUpsertsUser(t *testing.T) {
	repo, clock := newRepo(t)
	ctx := context.Background()

	if err := repo.Record(ctx, User{UserID: 1, Username: "katya"}, KindCommand, "/start"); err != nil {
		t.Fatalf("record: %v", err)
	}
	*clock = clock.Add(time.Hour)
	if err := repo.Record(ctx, User{UserID: 1, Username: "katya_new"}, KindCallback, "show_menu"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := repo.Record(ctx, User{UserID: 2, FirstName: "Аня"}, KindMessage, "привет"); err != nil {
		t.Fatalf("record: %v", err)
	}

	n, err := repo.CountUsers(ctx)
	if err != nil || n != 2 {
		t.Fatalf("count = %d, %v", n, err)
	}
	users, err := repo.ListUsers(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("users = %+v", users)
	}
	var katya User
	for _, u := range users {
		if u.UserID == 1 {
			katya = u
		}
	}
	if katya.Username != "katya_new" {
		t.Fatalf("username not refreshed: %+v", katya)
	}
	if !katya.LastSeen.After(katya.FirstSeen) {
		t.Fatalf("first_seen must be kept on upsert: %+v", katya)
	}
	if users[1].DisplayName() == "" {
		t.Fatal("display name must never be empty")
	}
}

func TestRecentActionsNewestFirst(t *testing.T) {
	repo, clock := newRepo(t)
	ctx := context.Background()
	for i, a := range []string{"/start", "list_doramas_menu", "show_dorama:3"} {
		*clock = clock.Add(time.Duration(i) * time.Minute)
		kind := KindCallback
		if i == 0 {
			kind = KindCommand
		}
		if err := repo.Record(ctx, User{UserID: 7}, kind, a); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	got, err := repo.RecentActions(ctx, 7, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0].Action != "show_dorama:3" || got[1].Action != "list_doramas_menu" {
		t.Fatalf("recent = %+v", got)
	}
	if other, _ := repo.RecentActions(ctx, 8, 10); len(other) != 0 {
		t.Fatalf("actions leaked across users: %+v", other)
	}
}

func TestRecordRejectsUnknownKindAndTruncates(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	if err := repo.Record(ctx, User{UserID: 1}, Kind("photo"), "x"); err == nil {
		t.Fatal("unknown kind must be rejected")
	}
	if err := repo.Record(ctx, User{UserID: 1}, KindMessage, strings.Repeat("я", 400)); err != nil {
		t.Fatalf("record: %v", err)
	}
	got, err := repo.RecentActions(ctx, 1, 1)
	if err != nil || len(got) != 1 {
		t.Fatalf("recent = %+v, %v", got, err)
	}
	if n := len([]rune(got[0].Action)); n != maxActionLen {
		t.Fatalf("stored %d runes", n)
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		u    User
		want string
	}{
		{User{UserID: 1, Username: "kat"}, "@kat"},
		{User{UserID: 1, FirstName: "Катя", LastName: "Ли"}, "Катя Ли"},
		{User{UserID: 1, LastName: "Ли"}, "Ли"},
		{User{UserID: 42}, "42"},
	}
	for _, tc := range cases {
		if got := tc.u.DisplayName(); got != tc.want {
			t.Fatalf("DisplayName(%+v) = %q, want %q", tc.u, got, tc.want)
		}
	}
}
