package dialog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/m3rciful/nezabudrama/core/telegram/format"
	"github.com/m3rciful/nezabudrama/drama/catalog"
	"github.com/m3rciful/nezabudrama/drama/paging"
	"github.com/m3rciful/nezabudrama/drama/render"
	"github.com/m3rciful/nezabudrama/drama/session"
	"github.com/m3rciful/nezabudrama/drama/token"
)

var allEntries = catalog.All()

// entryQuery describes a paginated list of entries.
type entryQuery struct {
	pred     catalog.Predicate
	order    catalog.Order
	markdown bool
	heading  func(w paging.Window, entries []catalog.Entry) string
	label    func(catalog.Entry) string
	link     render.ListLink
	trailer  [][]render.Button
	// empty is shown, as a not found result, when nothing matches.
	empty render.Screen
}

// entryPage renders the slot's page of q, clamping the page and recording the total.
func (t *turn) entryPage(ctx context.Context, slot *session.SearchContext, q entryQuery) error {
	total, err := t.catalog.Count(ctx, q.pred)
	if err != nil {
		return readFailed("catalog.count", err)
	}
	w := paging.Page(total, slot.Page, t.pageSize)
	slot.Total, slot.Page = total, w.Index
	if w.Empty() {
		return notFound(q.empty)
	}
	entries, err := t.catalog.Find(ctx, q.pred, q.order, w.Size, w.Offset)
	if err != nil {
		return readFailed("catalog.find", err)
	}
	return t.show(ctx, render.List{
		Heading:  q.heading(w, entries),
		Markdown: q.markdown,
		Items:    render.EntryButtons(entries, q.label),
		Window:   w,
		Link:     q.link,
		Trailer:  q.trailer,
	}.Screen())
}

// page redraws a facet at an absolute page using the stored search context.
func (t *turn) page(ctx context.Context, f token.Facet, p int) error {
	if f == token.FacetYear {
		return t.years(ctx, p)
	}
	slot := t.sess.Slot(f)
	if slot == nil {
		return ErrMissingContext
	}
	slot.Page = p
	switch f {
	case token.FacetCountry:
		return t.countryResults(ctx, slot)
	case token.FacetTitle:
		return t.titleResults(ctx, slot)
	case token.FacetActor, token.FacetActress, token.FacetDirector:
		return t.personResults(ctx, f, slot)
	case token.FacetLetter:
		return t.letterResults(ctx, slot)
	case token.FacetRating:
		return t.ratingResults(ctx, slot)
	}
	return &TokenError{Outcome: token.UnknownFacet, Reason: "facet " + string(f) + " has no pages"}
}

func letterField(lang string) (catalog.Field, catalog.Order) {
	if lang == "en" {
		return catalog.FieldLetterSecondary, catalog.OrderTitleSecondary
	}
	return catalog.FieldLetterPrimary, catalog.OrderTitlePrimary
}

func (t *turn) letters(ctx context.Context) error {
	field, _ := letterField(t.sess.Lang())
	letters, err := t.catalog.DistinctValues(ctx, field, allEntries)
	if err != nil {
		return readFailed("catalog.letters", err)
	}
	total, err := t.catalog.Count(ctx, allEntries)
	if err != nil {
		return readFailed("catalog.count", err)
	}
	return t.show(ctx, render.Letters(t.sess.Lang(), letters, total))
}

func (t *turn) browseLetter(ctx context.Context, letter string) error {
	slot := t.sess.SetSlot(token.FacetLetter, session.SearchContext{Query: letter})
	return t.letterResults(ctx, slot)
}

func (t *turn) letterResults(ctx context.Context, slot *session.SearchContext) error {
	lang := t.sess.Lang()
	field, order := letterField(lang)
	letter := slot.Query
	trailer := render.Rows(render.Btn("🔙 Назад", token.Act(token.ActionLetters)), btnMainMenu)
	return t.entryPage(ctx, slot, entryQuery{
		pred:  catalog.HasPrefix(field, letter),
		order: order,
		heading: func(w paging.Window, _ []catalog.Entry) string {
			return fmt.Sprintf("Дорамы на букву %s (Всего: %d):\n%s", format.NeutralizeHashtags(letter), w.Total, render.PageLine(w))
		},
		label:   render.TitleFlag(lang),
		link:    func(p int) token.Token { return token.Page(token.FacetLetter, p) },
		trailer: trailer,
		empty:   render.Screen{Text: fmt.Sprintf("Нет дорам, начинающихся на %s.", format.NeutralizeHashtags(letter)), Rows: trailer},
	})
}

func (t *turn) ratings(ctx context.Context) error {
	rs, err := t.catalog.Ratings(ctx)
	if err != nil {
		return readFailed("catalog.ratings", err)
	}
	total, err := t.catalog.Count(ctx, allEntries)
	if err != nil {
		return readFailed("catalog.count", err)
	}
	return t.show(ctx, render.Ratings(rs, total))
}

func (t *turn) browseRating(ctx context.Context, rating int) error {
	slot := t.sess.SetSlot(token.FacetRating, session.SearchContext{Query: strconv.Itoa(rating)})
	return t.ratingResults(ctx, slot)
}

func (t *turn) ratingResults(ctx context.Context, slot *session.SearchContext) error {
	rating, err := strconv.Atoi(slot.Query)
	if err != nil {
		return ErrMissingContext
	}
	trailer := render.Rows(render.Btn("🔙 Назад", token.Act(token.ActionRatings)), btnMainMenu)
	return t.entryPage(ctx, slot, entryQuery{
		pred:  catalog.Equals(catalog.FieldRating, rating),
		order: catalog.OrderTitlePrimary,
		heading: func(w paging.Window, _ []catalog.Entry) string {
			return fmt.Sprintf("Дорамы с рейтингом %d (Всего: %d):\n%s", rating, w.Total, render.PageLine(w))
		},
		label:   render.TitleFlag("ru"),
		link:    func(p int) token.Token { return token.Page(token.FacetRating, p) },
		trailer: trailer,
		empty:   render.Screen{Text: fmt.Sprintf("Нет дорам с рейтингом %d.", rating), Rows: trailer},
	})
}

func (t *turn) years(ctx context.Context, p int) error {
	total, err := t.catalog.CountYears(ctx)
	if err != nil {
		return readFailed("catalog.count_years", err)
	}
	w := paging.Page(total, p, t.pageSize)
	if w.Empty() {
		t.outcome = OutcomeNotFound
		return t.show(ctx, render.Notice("🚫 В каталоге пока нет дорам."))
	}
	ys, err := t.catalog.Years(ctx, w.Size, w.Offset)
	if err != nil {
		return readFailed("catalog.years", err)
	}
	return t.show(ctx, render.Years(ys, w))
}

// browseYear lists one year's entries. The page comes from the token, so the slot only mirrors it.
func (t *turn) browseYear(ctx context.Context, year, p int) error {
	slot := t.sess.SetSlot(token.FacetYear, session.SearchContext{Query: strconv.Itoa(year), Page: p})
	trailer := render.Rows(render.Btn("📅 Список по годам", token.Act(token.ActionYears)), btnMainMenu)
	return t.entryPage(ctx, slot, entryQuery{
		pred:     catalog.Equals(catalog.FieldYear, year),
		order:    catalog.OrderTitlePrimary,
		markdown: true,
		heading: func(w paging.Window, _ []catalog.Entry) string {
			return fmt.Sprintf("📅 *Дорамы %d года (%d всего):*\n\n%s\n\n", year, w.Total, render.PageLine(w))
		},
		label:   render.TitleYear,
		link:    func(page int) token.Token { return token.Year(year, page) },
		trailer: trailer,
		empty:   render.Screen{Text: fmt.Sprintf("🚫 В %d году дорам нет.", year), Rows: trailer},
	})
}
