package dialog

import (
	"context"
	"fmt"

	"github.com/m3rciful/nezabudrama/drama/render"
	"github.com/m3rciful/nezabudrama/drama/session"
	"github.com/m3rciful/nezabudrama/drama/token"
)

// Commands lists the command names the engine understands.
var Commands = []string{"start", "menu", "restart", "cancel", "search_by_title"}

func (t *turn) command(ctx context.Context) error {
	switch t.ev.Command {
	case "start":
		t.sess.Reset()
		n, err := t.catalog.Count(ctx, allEntries)
		if err != nil {
			return readFailed("catalog.count", err)
		}
		return t.reply(ctx, render.Welcome(n))
	case "menu":
		t.exitFlow()
		return t.reply(ctx, render.Menu())
	case "restart":
		t.sess.Reset()
		return t.reply(ctx, render.Restarted())
	case "cancel":
		return t.cancel(ctx)
	case "search_by_title":
		return t.startSearch(ctx, token.FacetTitle)
	}
	return fmt.Errorf("dialog: unknown command %q", t.ev.Command)
}

func (t *turn) text(ctx context.Context) error {
	switch st := t.sess.State.(type) {
	case session.Adding:
		return t.addText(ctx, st.Step)
	case session.Deleting:
		return t.deleteText(ctx, st.Step)
	case session.LookingUp:
		return t.lookupText(ctx)
	case session.Searching:
		return t.searchText(ctx, st)
	}
	t.outcome = OutcomeNoop
	return t.reply(ctx, render.UseButtons())
}

// tap routes a decoded token to its flow or browse action.
func (t *turn) tap(ctx context.Context) error {
	res := token.Decode(t.ev.Data)
	if res.Outcome != token.OK {
		return &TokenError{Outcome: res.Outcome, Reason: res.Reason}
	}
	tok := res.Token
	t.interrupt(tok)
	switch tok.Kind {
	case token.KindAction:
		return t.action(ctx, tok.Action)
	case token.KindSelectCountry:
		return t.selectCountry(ctx, tok.Value)
	case token.KindRating:
		return t.selectRating(ctx, int(tok.Number))
	case token.KindChoose:
		return t.choosePerson(ctx, tok.Facet, tok.Value, tok.Code)
	case token.KindShow:
		return t.showEntry(ctx, tok.Number)
	case token.KindPage:
		return t.page(ctx, tok.Facet, tok.Page)
	case token.KindStep:
		slot := t.sess.Slot(tok.Facet)
		if slot == nil {
			return ErrMissingContext
		}
		return t.page(ctx, tok.Facet, slot.Page+tok.Delta)
	case token.KindLetter:
		return t.browseLetter(ctx, tok.Value)
	case token.KindRatingFilter:
		return t.browseRating(ctx, int(tok.Number))
	case token.KindYear:
		return t.browseYear(ctx, int(tok.Number), tok.Page)
	case token.KindLanguage:
		t.sess.Language = tok.Value
		return t.letters(ctx)
	}
	return &TokenError{Outcome: token.UnknownFacet, Reason: fmt.Sprintf("kind %d has no route", tok.Kind)}
}

// interrupt ends the flows a tap leaves before it is routed. Browsing ends any flow;
// opening a card or paging a search ends only the add, delete and lookup wizards.
func (t *turn) interrupt(tok token.Token) {
	switch tok.Kind {
	case token.KindLetter, token.KindRatingFilter, token.KindYear, token.KindLanguage:
		t.exitFlow()
	case token.KindPage, token.KindStep:
		if browseFacet(tok.Facet) {
			t.exitFlow()
		} else {
			t.leaveWizard()
		}
	case token.KindShow:
		t.leaveWizard()
	case token.KindAction:
		switch tok.Action {
		case token.ActionListMenu, token.ActionLanguageMenu, token.ActionLetters,
			token.ActionRatings, token.ActionYears:
			t.exitFlow()
		}
	}
}

func browseFacet(f token.Facet) bool {
	return f == token.FacetLetter || f == token.FacetRating || f == token.FacetYear
}

// leaveWizard drops an add, delete or lookup flow together with its draft.
func (t *turn) leaveWizard() {
	switch t.sess.State.(type) {
	case session.Adding, session.Deleting, session.LookingUp:
		t.exitFlow()
	}
}

func (t *turn) action(ctx context.Context, a token.Action) error {
	switch a {
	case token.ActionShowMenu:
		t.exitFlow()
		return t.show(ctx, render.Menu())
	case token.ActionMainMenu:
		t.exitFlow()
		return t.show(ctx, render.MainMenu("🏠 Главное меню:"))
	case token.ActionCancel:
		return t.cancel(ctx)
	case token.ActionListMenu:
		return t.show(ctx, render.ListMenu())
	case token.ActionLanguageMenu:
		return t.show(ctx, render.LanguageMenu())
	case token.ActionLetters:
		return t.letters(ctx)
	case token.ActionRatings:
		return t.ratings(ctx)
	case token.ActionYears:
		return t.years(ctx, 0)
	case token.ActionAdd:
		return t.startAdd(ctx)
	case token.ActionDelete:
		return t.startDelete(ctx)
	case token.ActionLookup:
		return t.startLookup(ctx)
	case token.ActionConfirmDelete:
		return t.confirmDelete(ctx)
	}
	for _, f := range token.Facets {
		if sa, ok := token.SearchAction(f); ok && sa == a {
			return t.startSearch(ctx, f)
		}
	}
	return &TokenError{Outcome: token.UnknownFacet, Reason: "action " + string(a) + " has no route"}
}

// cancel leaves any flow from any state.
func (t *turn) cancel(ctx context.Context) error {
	_, deleting := t.sess.State.(session.Deleting)
	t.exitFlow()
	if deleting {
		return t.show(ctx, render.Done("Удаление отменено."))
	}
	if err := t.show(ctx, render.Cancelled()); err != nil {
		return err
	}
	return t.reply(ctx, render.AfterCancel())
}
