package render

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/m3rciful/nezabudrama/core/telegram/format"
	"github.com/m3rciful/nezabudrama/drama/activity"
	"github.com/m3rciful/nezabudrama/drama/paging"
	"github.com/m3rciful/nezabudrama/drama/token"
)

var alphabets = map[string]string{
	"ru": "АБВГДЕЁЖЗИЙКЛМНОПРСТУФХЦЧШЩЪЫЬЭЮЯ",
	"en": "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
}

// SortLetters orders letters by the alphabet of lang, followed by everything else.
func SortLetters(letters []string, lang string) []string {
	alphabet := []rune(alphabets[lang])
	rank := func(l string) int {
		r := []rune(l)
		if len(r) == 0 {
			return len(alphabet) + 1
		}
		if i := slices.Index(alphabet, r[0]); i >= 0 {
			return i
		}
		return len(alphabet)
	}
	out := slices.Clone(letters)
	slices.SortStableFunc(out, func(a, b string) int {
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra - rb
		}
		return strings.Compare(a, b)
	})
	return out
}

// Letters lists the first letters of titles in lang.
func Letters(lang string, letters []string, total int) Screen {
	flag := "🇷🇺"
	if lang == "en" {
		flag = "🇬🇧"
	}
	btns := make([]Button, 0, len(letters))
	for _, l := range SortLetters(letters, lang) {
		if b, ok := TryBtn(l, token.Letter(l)); ok {
			btns = append(btns, b)
		}
	}
	rows := Chunk(btns, 5)
	rows = append(rows, []Button{Btn("🔙 Назад", token.Act(token.ActionLanguageMenu))}, []Button{btnMenu})
	return Screen{
		Text:     fmt.Sprintf("*Выберите первую букву названия: %s*\nВсего дорам: %d", flag, total),
		Markdown: true,
		Rows:     rows,
	}
}

// Ratings lists the ratings in use.
func Ratings(ratings []int, total int) Screen {
	btns := make([]Button, 0, len(ratings))
	for _, r := range ratings {
		btns = append(btns, Btn(fmt.Sprintf("⭐ %d", r), token.RatingFilter(r)))
	}
	rows := append(Chunk(btns, 5), []Button{btnMenu})
	return Screen{
		Text:     fmt.Sprintf("*Выберите оценку* (Всего дорам: %d):", total),
		Markdown: true,
		Rows:     rows,
	}
}

// Years lists one page of release years.
func Years(years []int, w paging.Window) Screen {
	btns := make([]Button, 0, len(years))
	for _, y := range years {
		btns = append(btns, Btn(fmt.Sprint(y), token.Year(y, 0)))
	}
	return List{
		Heading:  "📅 *Выберите год:*",
		Markdown: true,
		Items:    btns,
		PerRow:   3,
		Window:   w,
		Link:     func(p int) token.Token { return token.Page(token.FacetYear, p) },
		Trailer:  Rows(btnMenu),
	}.Screen()
}

// Users is the admin user list.
func Users(users []activity.User, total int) Screen {
	if len(users) == 0 {
		return Plain("📭 Нет зарегистрированных пользователей.")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "👥 *Список пользователей:* %d\n\n", total)
	for _, u := range users {
		fmt.Fprintf(&b, "🆔 %d | 👤 %s | 🕓 %s | ⏳ %s\n",
			u.UserID, format.Safe(u.DisplayName()), stamp(u.FirstSeen), stamp(u.LastSeen))
	}
	return Screen{Text: b.String(), Markdown: true}
}

// Actions is the admin view of one user's latest actions.
func Actions(userID int64, actions []activity.Action) Screen {
	if len(actions) == 0 {
		return Plain("📭 Нет последних действий.")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📝 Последние действия %d:\n", userID)
	for _, a := range actions {
		fmt.Fprintf(&b, "%s - %s: %s\n", stamp(a.CreatedAt), a.Kind, a.Action)
	}
	return Plain(b.String())
}

func stamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}
