package dialog

import (
	"context"
	"errors"
	"fmt"

	"github.com/m3rciful/nezabudrama/core/telegram/format"
	"github.com/m3rciful/nezabudrama/drama/catalog"
	"github.com/m3rciful/nezabudrama/drama/paging"
	"github.com/m3rciful/nezabudrama/drama/render"
	"github.com/m3rciful/nezabudrama/drama/session"
	"github.com/m3rciful/nezabudrama/drama/textnorm"
	"github.com/m3rciful/nezabudrama/drama/token"
)

// person describes one people facet.
type person struct {
	field  catalog.Field
	prompt string
	label  string
	// with completes "Дорамы с ... не найдены".
	with string
}

var people = map[token.Facet]person{
	token.FacetActor: {
		field:  catalog.FieldLeadActor,
		prompt: "*🔎 Введите имя или фамилию актёра с заглавной буквы на русском языке:*",
		label:  "🤴 Актёр",
		with:   "с актёром",
	},
	token.FacetActress: {
		field:  catalog.FieldLeadActress,
		prompt: "*🔎 Введите имя или фамилию актрисы с заглавной буквы на русском языке:*",
		label:  "👸 Актриса",
		with:   "с актрисой",
	},
	token.FacetDirector: {
		field:  catalog.FieldDirector,
		prompt: "*🔎 Введите имя или фамилию режиссёра с заглавной буквы на русском языке:*",
		label:  "🎬 Режиссёр",
		with:   "с режиссёром",
	},
}

const titlePrompt = "*🔎 Введите название дорамы или слово на русском или английском языке:*"

var btnMainMenu = render.Btn("🌸 В главное меню", token.Act(token.ActionShowMenu))

func newSearchButton(f token.Facet) render.Button {
	a, _ := token.SearchAction(f)
	return render.Btn("🔍 Новый поиск", token.Act(a))
}

// startSearch enters the search wizard of f, dropping any earlier search of f.
func (t *turn) startSearch(ctx context.Context, f token.Facet) error {
	t.exitFlow()
	t.sess.ClearSlot(f)
	t.sess.Enter(session.Searching{Facet: f, Step: session.StepPromptQuery})
	switch f {
	case token.FacetCountry:
		return t.show(ctx, render.SearchCountryPicker())
	case token.FacetTitle:
		return t.show(ctx, render.MarkdownPrompt(titlePrompt))
	}
	p, ok := people[f]
	if !ok {
		return fmt.Errorf("dialog: facet %q has no search", f)
	}
	return t.show(ctx, render.MarkdownPrompt(p.prompt))
}

func (t *turn) searchText(ctx context.Context, st session.Searching) error {
	if st.Facet == token.FacetCountry {
		return invalid(render.SearchCountryPicker())
	}
	q, err := textnorm.Normalize(t.ev.Text)
	if errors.Is(err, textnorm.ErrEmpty) {
		return invalid(render.Prompt("⚠️ Ошибка: Вы не ввели запрос для поиска. Попробуйте снова."))
	}
	if err != nil {
		return err
	}
	slot := t.sess.SetSlot(st.Facet, session.SearchContext{Query: q})
	if st.Facet == token.FacetTitle {
		t.sess.Enter(session.Searching{Facet: st.Facet, Step: session.StepResults})
		return t.titleResults(ctx, slot)
	}
	return t.personResults(ctx, st.Facet, slot)
}

func (t *turn) titleResults(ctx context.Context, slot *session.SearchContext) error {
	q := slot.Query
	return t.entryPage(ctx, slot, entryQuery{
		pred:     catalog.Contains(catalog.FieldTitle, q),
		order:    catalog.OrderTitlePrimary,
		markdown: true,
		heading: func(w paging.Window, _ []catalog.Entry) string {
			return fmt.Sprintf("*🌸 Найдено %d дорам по запросу:* '%s'\n\n%s\n\n", w.Total, format.Safe(q), render.PageLine(w))
		},
		label:   render.TitleYear,
		link:    func(p int) token.Token { return token.Page(token.FacetTitle, p) },
		trailer: render.Rows(newSearchButton(token.FacetTitle), btnMainMenu),
		empty:   render.Screen{Text: fmt.Sprintf("🚫 Дорамы с названием '%s' не найдены.", format.NeutralizeHashtags(q)), Rows: render.Rows(newSearchButton(token.FacetTitle), btnMainMenu)},
	})
}

// searchCountry starts the country results for a tapped country.
func (t *turn) searchCountry(ctx context.Context, name string) error {
	if _, ok := catalog.CountryByName(name); !ok {
		return invalid(render.SearchCountryPicker())
	}
	if st, ok := t.sess.State.(session.Searching); !ok || st.Facet != token.FacetCountry {
		t.exitFlow()
	}
	t.sess.Enter(session.Searching{Facet: token.FacetCountry, Step: session.StepResults})
	slot := t.sess.SetSlot(token.FacetCountry, session.SearchContext{Query: name})
	return t.countryResults(ctx, slot)
}

func (t *turn) countryResults(ctx context.Context, slot *session.SearchContext) error {
	name := slot.Query
	trailer := render.Rows(
		render.Btn("🌍 Вернуться в список стран", token.Act(token.ActionSearchCountry)),
		btnMainMenu,
	)
	return t.entryPage(ctx, slot, entryQuery{
		pred:     catalog.Equals(catalog.FieldCountry, name),
		order:    catalog.OrderTitlePrimary,
		markdown: true,
		heading: func(w paging.Window, _ []catalog.Entry) string {
			return fmt.Sprintf("*🚩 Найдено %d дорам из страны:* %s\n%s", w.Total, format.Safe(name), render.PageLine(w))
		},
		label:   render.TitleYear,
		link:    func(p int) token.Token { return token.Page(token.FacetCountry, p) },
		trailer: trailer,
		empty:   render.Screen{Text: fmt.Sprintf("🚫 Дорамы из страны '%s' не найдены.", format.NeutralizeHashtags(name)), Rows: trailer},
	})
}

// personResults shows the people matching the slot query. A single match skips the chooser.
func (t *turn) personResults(ctx context.Context, f token.Facet, slot *session.SearchContext) error {
	p, ok := people[f]
	if !ok {
		return fmt.Errorf("dialog: facet %q has no people", f)
	}
	if slot.Person != "" {
		return t.personEntries(ctx, f, slot)
	}
	pred := catalog.Contains(p.field, slot.Query)
	total, err := t.catalog.CountPeople(ctx, p.field, pred)
	if err != nil {
		return readFailed("catalog.count_people", err)
	}
	if total == 0 {
		return notFound(render.Screen{
			Text: fmt.Sprintf("🚫 Дорамы %s '%s' не найдены.", p.with, format.NeutralizeHashtags(slot.Query)),
			Rows: render.Rows(newSearchButton(f), btnMainMenu),
		})
	}
	if total == 1 {
		found, err := t.catalog.DistinctPeople(ctx, p.field, pred, 1, 0)
		if err != nil {
			return readFailed("catalog.people", err)
		}
		if len(found) == 0 {
			return ErrMissingContext
		}
		slot.Person, slot.Code, slot.Page = found[0].Name, "", 0
		t.sess.Enter(session.Searching{Facet: f, Step: session.StepResults})
		return t.personEntries(ctx, f, slot)
	}

	w := paging.Page(total, slot.Page, t.pageSize)
	slot.Total, slot.Page = total, w.Index
	// one extra row on each side tells whether a name on the page edge is shared
	from := max(w.Offset-1, 0)
	around, err := t.catalog.DistinctPeople(ctx, p.field, pred, w.Size+2, from)
	if err != nil {
		return readFailed("catalog.people", err)
	}
	btns := make([]render.Button, 0, w.Size)
	for i, who := range around {
		pos := from + i
		if pos < w.Offset || pos >= w.Offset+w.Size {
			continue
		}
		code := ""
		if sharedName(around, i) {
			if c, ok := catalog.CountryByName(who.Country); ok {
				code = c.Code
			}
		}
		if b, ok := render.TryBtn(who.Name+" "+catalog.Flag(who.Country), token.Choose(f, who.Name, code)); ok {
			btns = append(btns, b)
		}
	}
	t.sess.Enter(session.Searching{Facet: f, Step: session.StepChoosePerson})
	return t.show(ctx, render.List{
		Heading:  "*❔Выберите нужный вариант:*",
		Markdown: true,
		Items:    btns,
		Window:   w,
		Link:     func(p int) token.Token { return token.Page(f, p) },
		Trailer:  render.Rows(newSearchButton(f), render.Btn("Отмена", token.Act(token.ActionCancel))),
	}.Screen())
}

// sharedName reports whether the person at i shares a name with a neighbour.
// The list is ordered by name, so equal names are adjacent.
func sharedName(list []catalog.Person, i int) bool {
	return (i > 0 && list[i-1].Name == list[i].Name) ||
		(i+1 < len(list) && list[i+1].Name == list[i].Name)
}

func (t *turn) choosePerson(ctx context.Context, f token.Facet, name, code string) error {
	if _, ok := people[f]; !ok {
		return &TokenError{Outcome: token.UnknownFacet, Reason: "no chooser for " + string(f)}
	}
	sc := session.SearchContext{Person: name, Code: code}
	if prev := t.sess.Slot(f); prev != nil {
		sc.Query = prev.Query
	}
	if st, ok := t.sess.State.(session.Searching); !ok || st.Facet != f {
		t.exitFlow()
	}
	slot := t.sess.SetSlot(f, sc)
	t.sess.Enter(session.Searching{Facet: f, Step: session.StepResults})
	return t.personEntries(ctx, f, slot)
}

// personEntries lists the entries of the chosen person, narrowed to a country when the name is shared.
func (t *turn) personEntries(ctx context.Context, f token.Facet, slot *session.SearchContext) error {
	p := people[f]
	pred := catalog.Equals(p.field, slot.Person)
	flag := ""
	if c, ok := catalog.CountryByCode(slot.Code); ok {
		pred = catalog.All(pred, catalog.Equals(catalog.FieldCountry, c.Name))
		flag = c.Flag
	}
	name := slot.Person
	return t.entryPage(ctx, slot, entryQuery{
		pred:     pred,
		order:    catalog.OrderTitlePrimary,
		markdown: true,
		heading: func(w paging.Window, entries []catalog.Entry) string {
			shown := flag
			if shown == "" && len(entries) > 0 {
				shown = catalog.Flag(entries[0].Country)
			}
			return fmt.Sprintf("%s: %s %s\n%s\nВсего дорам: *%d*\n\n", p.label, format.Safe(name), shown, render.PageLine(w), w.Total)
		},
		label:   render.TitleYear,
		link:    func(page int) token.Token { return token.Page(f, page) },
		trailer: render.Rows(newSearchButton(f), render.Btn("В главное меню 🌸", token.Act(token.ActionShowMenu))),
		empty: render.Screen{
			Text: fmt.Sprintf("🚫 Дорамы %s '%s' не найдены.", p.with, format.NeutralizeHashtags(name)),
			Rows: render.Rows(newSearchButton(f), btnMainMenu),
		},
	})
}
