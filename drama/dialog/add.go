package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/nezabudrama/core/logger"
	"github.com/m3rciful/nezabudrama/drama/catalog"
	"github.com/m3rciful/nezabudrama/drama/render"
	"github.com/m3rciful/nezabudrama/drama/session"
	"github.com/m3rciful/nezabudrama/drama/token"
)

// skipPoster answers the poster step without a poster.
const skipPoster = "-"

var addPrompts = map[session.AddStep]string{
	session.StepTitlePrimary:   "🇷🇺 Введите название дорамы на русском языке:",
	session.StepTitleSecondary: "🇬🇧 Введите название дорамы на английском языке:",
	session.StepYear:           "📅 Введите год выхода дорамы:",
	session.StepDirector:       "🎬 Введите имя режиссера:",
	session.StepLeadActress:    "👸🏻 Введите имя актрисы:",
	session.StepLeadActor:      "🤴🏻 Введите имя актера:",
	session.StepPlot:           "🎞️ Введите сюжет дорамы:",
	session.StepComment:        "💬 Введите комментарий к дораме:",
	session.StepPosterURL:      "📷 Введите URL постера с Яндекс.Диска (или «-», чтобы пропустить):",
}

var emptyMessages = map[session.AddStep]string{
	session.StepTitlePrimary:   "💡Название на русском не может быть пустым. Попробуйте еще раз.",
	session.StepTitleSecondary: "💡Название на английском не может быть пустым. Попробуйте еще раз.",
	session.StepDirector:       "💡Имя режиссера не может быть пустым. Попробуйте еще раз.",
	session.StepLeadActress:    "💡Имя актрисы не может быть пустым. Попробуйте еще раз.",
	session.StepLeadActor:      "💡Имя актера не может быть пустым. Попробуйте еще раз.",
	session.StepPlot:           "💡Сюжет не может быть пустым. Попробуйте еще раз.",
	session.StepComment:        "💡Комментарий не может быть пустым. Попробуйте еще раз.",
}

// personFacets maps the wizard's people steps to the facet whose chooser tokens carry the name.
var personFacets = map[session.AddStep]token.Facet{
	session.StepDirector:    token.FacetDirector,
	session.StepLeadActress: token.FacetActress,
	session.StepLeadActor:   token.FacetActor,
}

func addPrompt(step session.AddStep) render.Screen {
	switch step {
	case session.StepCountry:
		return render.AddCountryPicker()
	case session.StepRating:
		return render.RatingPicker()
	}
	return render.Prompt(addPrompts[step])
}

// repromptAdd rejects input for step with msg and shows the step's controls again.
func repromptAdd(step session.AddStep, msg string) error {
	s := addPrompt(step)
	s.Text = msg
	return invalid(s)
}

func (t *turn) startAdd(ctx context.Context) error {
	if !t.isAdmin(t.ev.UserID) {
		return &AuthorizationError{Message: "❌ У вас нет прав для добавления дорам."}
	}
	t.exitFlow()
	t.sess.Enter(session.Adding{Step: session.StepTitlePrimary})
	return t.reply(ctx, addPrompt(session.StepTitlePrimary))
}

func (t *turn) addText(ctx context.Context, step session.AddStep) error {
	d := t.draft()
	text := strings.TrimSpace(t.ev.Text)
	if msg, ok := emptyMessages[step]; ok && text == "" {
		return repromptAdd(step, msg)
	}
	switch step {
	case session.StepTitlePrimary:
		d.TitlePrimary = text
	case session.StepTitleSecondary:
		d.TitleSecondary = text
	case session.StepCountry:
		return repromptAdd(step, "🌏 Пожалуйста, выберите страну кнопкой ниже.")
	case session.StepYear:
		year, err := strconv.Atoi(text)
		if err != nil {
			return repromptAdd(step, "📅 Пожалуйста, введите год цифрами.")
		}
		if year < catalog.MinYear || year > catalog.MaxYear {
			return repromptAdd(step, fmt.Sprintf("📅 Пожалуйста, введите корректный год (%d-%d).", catalog.MinYear, catalog.MaxYear))
		}
		d.Year = year
	case session.StepDirector, session.StepLeadActress, session.StepLeadActor:
		if _, err := token.Encode(token.Choose(personFacets[step], text, catalog.Countries[0].Code)); err != nil {
			return repromptAdd(step, "⚠️ Имя слишком длинное. Попробуйте сократить его.")
		}
		switch step {
		case session.StepDirector:
			d.Director = text
		case session.StepLeadActress:
			d.LeadActress = text
		default:
			d.LeadActor = text
		}
	case session.StepPlot:
		d.Plot = text
	case session.StepRating:
		return repromptAdd(step, "⭐ Пожалуйста, выберите оценку кнопкой ниже.")
	case session.StepComment:
		d.Comment = text
	case session.StepPosterURL:
		return t.addPoster(ctx, text)
	}
	return t.advance(ctx, step, "")
}

// advance moves the wizard past step. lead, when set, replaces the next prompt's text.
func (t *turn) advance(ctx context.Context, step session.AddStep, lead string) error {
	next, ok := step.Next()
	if !ok {
		return t.commit(ctx)
	}
	t.sess.Enter(session.Adding{Step: next})
	s := addPrompt(next)
	if lead != "" {
		s.Text = lead
	}
	return t.show(ctx, s)
}

// draft returns the session's draft, starting one if a restored session lost it.
func (t *turn) draft() *session.Draft {
	if t.sess.Draft == nil {
		t.sess.Draft = &session.Draft{}
	}
	return t.sess.Draft
}

// selectCountry handles select_country taps for the add wizard and for the country search.
func (t *turn) selectCountry(ctx context.Context, name string) error {
	if st, ok := t.sess.State.(session.Adding); ok {
		if st.Step != session.StepCountry {
			return repromptAdd(st.Step, "Эта кнопка сейчас неактивна. "+addPrompt(st.Step).Text)
		}
		c, found := catalog.CountryByName(name)
		if !found {
			return repromptAdd(st.Step, "🌏 Неизвестная страна. Выберите страну кнопкой ниже.")
		}
		t.draft().Country = c.Name
		return t.advance(ctx, st.Step, fmt.Sprintf("Вы выбрали страну: %s %s\n📅 Теперь введите год выхода дорамы:", c.Flag, c.Name))
	}
	return t.searchCountry(ctx, name)
}

func (t *turn) selectRating(ctx context.Context, rating int) error {
	st, ok := t.sess.State.(session.Adding)
	if !ok {
		return invalid(render.UnknownButton())
	}
	if st.Step != session.StepRating {
		return repromptAdd(st.Step, "Эта кнопка сейчас неактивна. "+addPrompt(st.Step).Text)
	}
	t.draft().Rating = rating
	return t.advance(ctx, st.Step, fmt.Sprintf("Вы выбрали оценку: %d\n%s", rating, addPrompts[session.StepComment]))
}

func (t *turn) addPoster(ctx context.Context, link string) error {
	if link == skipPoster {
		t.draft().PosterURL = ""
		return t.commit(ctx)
	}
	if !t.posters.Supported(link) {
		return repromptAdd(session.StepPosterURL, "⚠️ Неверный URL! Введите ссылку с Яндекс.Диска.")
	}
	if _, err := t.posters.Resolve(ctx, link); err != nil {
		return repromptAdd(session.StepPosterURL, "⚠️ Не удалось получить прямую ссылку на постер. Проверьте ссылку.")
	}
	t.draft().PosterURL = link
	return t.commit(ctx)
}

// commit writes the draft in one insert. A failed insert keeps the draft and the last step.
func (t *turn) commit(ctx context.Context) error {
	id, err := t.catalog.Insert(ctx, t.draft().Entry())
	if err != nil {
		return writeFailed("catalog.insert", err,
			render.Prompt("⚠️ Не удалось сохранить дораму. Отправьте ссылку на постер (или «-») еще раз, чтобы повторить."))
	}
	t.sess.Enter(session.Idle{})
	logger.Info(ctx, "dialog", "flow.completed",
		slog.String("status", "ok"),
		slog.String("flow", string(session.FlowAdd)),
		slog.Int64("entry_id", id),
	)
	return t.reply(ctx, render.Done(fmt.Sprintf("🎉 Дорама успешно добавлена! ID: %d", id)))
}
