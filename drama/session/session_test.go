package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/nezabudrama/core/telegram/state"
	"github.com/m3rciful/nezabudrama/drama/token"
)

func TestEnterDiscardsDraftOnFlowChange(t *testing.T) {
	s := New(1)
	s.Enter(Adding{Step: StepTitlePrimary})
	if s.Draft == nil {
		t.Fatal("entering the wizard must start a draft")
	}
	s.Draft.TitlePrimary = "Гоблин"
	s.Enter(Adding{Step: StepTitleSecondary})
	if s.Draft == nil || s.Draft.TitlePrimary != "Гоблин" {
		t.Fatalf("draft lost between steps: %+v", s.Draft)
	}

	s.Enter(Searching{Facet: token.FacetActor, Step: StepPromptQuery})
	if s.Draft != nil {
		t.Fatal("cross-flow interruption must discard the draft")
	}
	s.Enter(Adding{Step: StepTitlePrimary})
	if s.Draft == nil || s.Draft.TitlePrimary != "" {
		t.Fatalf("new wizard must start empty: %+v", s.Draft)
	}
}

func TestEnterClearsPendingDelete(t *testing.T) {
	s := New(1)
	s.Enter(Deleting{Step: StepPromptID})
	s.PendingDeleteID = "42"
	s.Enter(Deleting{Step: StepConfirm})
	if s.PendingDeleteID != "42" {
		t.Fatal("pending id must survive inside the flow")
	}
	s.Enter(Idle{})
	if s.PendingDeleteID != "" {
		t.Fatal("pending id must be discarded on exit")
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	s := New(1)
	s.SetSlot(token.FacetCountry, SearchContext{Query: "Япония", Page: 2})
	s.SetSlot(token.FacetActor, SearchContext{Query: "гон", Page: 1})
	if s.Slot(token.FacetCountry).Page != 2 {
		t.Fatal("actor search clobbered the country cursor")
	}
	s.ClearSlot(token.FacetActor)
	if s.Slot(token.FacetActor) != nil || s.Slot(token.FacetCountry) == nil {
		t.Fatal("ClearSlot must only drop its own facet")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := New(1)
	s.Enter(Adding{Step: StepPlot})
	s.Draft.Plot = "a"
	s.SetSlot(token.FacetTitle, SearchContext{Query: "q"})
	c := s.Clone()
	c.Draft.Plot = "b"
	c.Slot(token.FacetTitle).Query = "changed"
	if s.Draft.Plot != "a" || s.Slot(token.FacetTitle).Query != "q" {
		t.Fatal("clone shares memory with the original")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	s := New(7)
	s.Enter(Searching{Facet: token.FacetDirector, Step: StepChoosePerson})
	s.SetSlot(token.FacetDirector, SearchContext{Query: "ли", Person: "Ли Мин", Code: "CN", Total: 3, Page: 1})
	s.Language = "en"

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got *Session
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	st, ok := got.State.(Searching)
	if !ok || st.Facet != token.FacetDirector || st.Step != StepChoosePerson {
		t.Fatalf("state = %#v", got.State)
	}
	if sc := got.Slot(token.FacetDirector); sc == nil || sc.Person != "Ли Мин" || sc.Code != "CN" {
		t.Fatalf("slot = %+v", sc)
	}
	if got.Lang() != "en" {
		t.Fatalf("lang = %q", got.Lang())
	}

	if err := json.Unmarshal([]byte(`{"state":{"flow":"add","step":"nope"}}`), &got); err == nil {
		t.Fatal("unknown step must fail to decode")
	}
}

func TestRedisStoreKeepsTypedState(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := state.NewRedisStore[*Session](client, "nz:session:", time.Hour)
	ctx := context.Background()

	s := New(5)
	s.Enter(Adding{Step: StepYear})
	s.Draft.TitlePrimary = "x"
	if err := store.Save(ctx, 5, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx, 5)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st, ok := got.State.(Adding); !ok || st.Step != StepYear || got.Draft.TitlePrimary != "x" {
		t.Fatalf("loaded = %#v", got)
	}
	if ttl := mr.TTL("nz:session:5"); ttl != time.Hour {
		t.Fatalf("ttl = %v", ttl)
	}
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		s    State
		want string
	}{
		{Idle{}, "idle"},
		{nil, "idle"},
		{Adding{Step: StepYear}, "add/year"},
		{Searching{Facet: token.FacetActress, Step: StepResults}, "search/actress/results"},
	}
	for _, tc := range cases {
		if got := Describe(tc.s); got != tc.want {
			t.Fatalf("Describe(%#v) = %q, want %q", tc.s, got, tc.want)
		}
	}
}
