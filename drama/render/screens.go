package render

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/m3rciful/nezabudrama/core/telegram/format"
	"github.com/m3rciful/nezabudrama/drama/catalog"
	"github.com/m3rciful/nezabudrama/drama/paging"
	"github.com/m3rciful/nezabudrama/drama/token"
)

// CaptionLimit is Telegram's maximum photo caption length in UTF-16 code units.
const CaptionLimit = 1024

// Btn builds a button for a token known to encode.
func Btn(text string, t token.Token) Button {
	return Button{Text: text, Data: token.Must(t)}
}

// TryBtn builds a button for a token carrying user data; ok is false when it does not encode.
func TryBtn(text string, t token.Token) (Button, bool) {
	data, err := token.Encode(t)
	if err != nil {
		return Button{}, false
	}
	return Button{Text: text, Data: data}, true
}

// Rows wraps single buttons into one row each.
func Rows(btns ...Button) [][]Button {
	rows := make([][]Button, len(btns))
	for i, b := range btns {
		rows[i] = []Button{b}
	}
	return rows
}

// Chunk splits buttons into rows of at most n.
func Chunk(btns []Button, n int) [][]Button {
	if n < 1 {
		n = 1
	}
	var rows [][]Button
	for i := 0; i < len(btns); i += n {
		rows = append(rows, btns[i:min(i+n, len(btns))])
	}
	return rows
}

var (
	btnMenu       = Btn("В главное меню 🌸", token.Act(token.ActionShowMenu))
	btnBackMenu   = Btn("Вернуться в главное меню 🌸", token.Act(token.ActionShowMenu))
	btnReturnMenu = Btn("В главное меню 🌸", token.Act(token.ActionMainMenu))
	btnCancel     = Btn("Отмена", token.Act(token.ActionCancel))
)

// MainMenu is the root menu with the given heading.
func MainMenu(heading string) Screen {
	return Screen{
		Text: heading,
		Rows: [][]Button{
			{Btn("Список всех дорам 📚", token.Act(token.ActionListMenu))},
			{Btn("Поиск по названию 🔎", token.Act(token.ActionSearchTitle))},
			{Btn("Поиск по стране 🌍", token.Act(token.ActionSearchCountry))},
			{Btn("Поиск по актеру 🤴🏻", token.Act(token.ActionSearchActor))},
			{Btn("Поиск по актрисе 👸🏻", token.Act(token.ActionSearchActress))},
			{Btn("Поиск по режиссеру 🎬", token.Act(token.ActionSearchDirector))},
			{Btn("Добавить (Катя)", token.Act(token.ActionAdd)), Btn("Удалить (Катя)", token.Act(token.ActionDelete))},
			{btnMenu},
		},
	}
}

// Menu is the plain main menu.
func Menu() Screen { return MainMenu("Выберите действие:") }

// Welcome greets a user on /start.
func Welcome(total int) Screen {
	return Screen{
		Text: "👋 *Привет!*\nЯ сериальный бот 🌸*НеЗабудрама!*🌸\n\n" +
			"Моя задача — собирать информацию \nо дорамах, которые Катя уже успела посмотреть. 📚 \n\n" +
			fmt.Sprintf("Сейчас в моей библиотеке *%d* дорам!\n📖 (И мы продолжаем её пополнять!)\n\n", total) +
			"Нажми «Начать», чтобы узнать,\nчто я могу тебе показать! ✨",
		Markdown: true,
		Rows:     Rows(Btn("Начать", token.Act(token.ActionShowMenu))),
	}
}

// Restarted confirms /restart.
func Restarted() Screen {
	s := MainMenu("🔄 *Бот перезапущен.* \n\n🌸Пожалуйста, выберите действие:")
	s.Markdown = true
	return s
}

// Notice is a message with a single return-to-menu button.
func Notice(text string) Screen {
	return Screen{Text: text, Rows: Rows(btnBackMenu)}
}

// Done is a terminal flow message whose button also clears the flow.
func Done(text string) Screen {
	return Screen{Text: text, Rows: Rows(btnReturnMenu)}
}

// Plain is a message without buttons.
func Plain(text string) Screen { return Screen{Text: text} }

// Prompt asks for free text and offers a cancel button.
func Prompt(text string) Screen {
	return Screen{Text: text, Rows: Rows(btnCancel)}
}

// MarkdownPrompt is Prompt with Markdown text.
func MarkdownPrompt(text string) Screen {
	s := Prompt(text)
	s.Markdown = true
	return s
}

// Cancelled confirms a cancel.
func Cancelled() Screen { return Plain("❌ Действие отменено.") }

// AfterCancel follows Cancelled with a way back.
func AfterCancel() Screen { return Notice("Вы можете вернуться в главное меню:") }

// UnknownButton answers stale or unrecognized taps.
func UnknownButton() Screen { return Notice("Неизвестная кнопка. Пожалуйста, попробуйте еще раз.") }

// MissingContext answers taps whose search state is gone.
func MissingContext() Screen { return Notice("⚠️ Ошибка: данные поиска потеряны. Попробуйте заново.") }

// UseButtons answers free text outside of any flow.
func UseButtons() Screen {
	return Notice("😔 Пожалуйста, используйте кнопки для навигации. Ввод текста не поддерживается.")
}

// Failure is the generic apology for unexpected errors.
func Failure() Screen {
	return Notice("😔 Что-то пошло не так. Попробуйте еще раз чуть позже.")
}

// CountryPicker lists the fixed countries as select_country buttons.
func CountryPicker(heading string, markdown bool, trailer Button) Screen {
	rows := make([][]Button, 0, len(catalog.Countries)+1)
	for _, c := range catalog.Countries {
		rows = append(rows, []Button{Btn(c.Flag+" "+c.Name, token.SelectCountry(c.Name))})
	}
	rows = append(rows, []Button{trailer})
	return Screen{Text: heading, Markdown: markdown, Rows: rows}
}

// AddCountryPicker is the country step of the add wizard.
func AddCountryPicker() Screen {
	return CountryPicker("🌏 Выберите страну производства дорамы:", false, btnCancel)
}

// SearchCountryPicker starts the country search.
func SearchCountryPicker() Screen {
	return CountryPicker("*🚩 Выберите страну для поиска:*", true, btnMenu)
}

// RatingPicker is the rating step of the add wizard.
func RatingPicker() Screen {
	btns := make([]Button, 0, catalog.MaxRating)
	for r := catalog.MinRating; r <= catalog.MaxRating; r++ {
		btns = append(btns, Btn(fmt.Sprint(r), token.Rating(r)))
	}
	rows := append(Chunk(btns, 5), []Button{btnCancel})
	return Screen{Text: "⭐ Оценка дорамы (от 1 до 10):", Rows: rows}
}

// ConfirmDelete asks to confirm deleting the raw id.
func ConfirmDelete(rawID string) Screen {
	return Screen{
		Text: fmt.Sprintf("Вы уверены, что хотите удалить дораму с ID %s?", format.NeutralizeHashtags(rawID)),
		Rows: [][]Button{{
			Btn("Да, удалить", token.Act(token.ActionConfirmDelete)),
			Btn("Нет, отменить", token.Act(token.ActionCancel)),
		}},
	}
}

// Detail is the entry card. It is a photo when posterURL is set.
func Detail(e catalog.Entry, posterURL string) Screen {
	var b strings.Builder
	fmt.Fprintf(&b, "*🇷🇺* %s\n*🇬🇧* %s\n\n", format.Safe(e.TitlePrimary), format.Safe(e.TitleSecondary))
	fmt.Fprintf(&b, "*🌏Страна:* %s %s\n", format.Safe(e.Country), catalog.Flag(e.Country))
	fmt.Fprintf(&b, "*📅Год:* %d\n", e.Year)
	fmt.Fprintf(&b, "*🎬Режиссер:* %s\n", format.Safe(e.Director))
	fmt.Fprintf(&b, "*👸🏻Главная актриса:* %s\n", format.Safe(e.LeadActress))
	fmt.Fprintf(&b, "*🤴🏻Главный актер:* %s\n\n", format.Safe(e.LeadActor))
	fmt.Fprintf(&b, "*🎞️Сюжет:* %s\n\n", format.Safe(e.Plot))
	fmt.Fprintf(&b, "*⭐Личная оценка:* %d/10 %s\n", e.Rating, strings.Repeat("⭐", e.Rating))
	fmt.Fprintf(&b, "*💬Комментарий:* %s\n\n", format.Safe(e.Comment))
	fmt.Fprintf(&b, "*ID* %d", e.ID)
	return Screen{Text: b.String(), Markdown: true, PhotoURL: posterURL, Rows: Rows(btnMenu)}
}

// SplitCaption returns a caption that fits CaptionLimit and, when the text was cut,
// the remainder to send as a follow-up message.
func SplitCaption(s Screen) (Screen, *Screen) {
	cut := captionCut(s.Text, CaptionLimit)
	if s.PhotoURL == "" || cut == len(s.Text) {
		return s, nil
	}
	caption := s.Text[:cut]
	if i := strings.LastIndex(caption, "\n\n"); i > 0 {
		caption = caption[:i]
	}
	head := s
	head.Text = caption
	head.Rows = nil
	tail := Screen{Text: strings.TrimLeft(s.Text[len(caption):], "\n"), Markdown: s.Markdown, Rows: s.Rows}
	return head, &tail
}

// captionCut returns the byte length of the longest prefix of text within limit UTF-16 units.
func captionCut(text string, limit int) int {
	units := 0
	for i, r := range text {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > limit {
			return i
		}
		units += n
	}
	return len(text)
}

// ListLink maps a page index to its token.
type ListLink func(page int) token.Token

// List is a paginated list of buttons with navigation and trailer rows.
type List struct {
	Heading  string
	Markdown bool
	Items    []Button
	Window   paging.Window
	Link     ListLink
	// PerRow puts several items on one row; zero means one per row.
	PerRow  int
	Trailer [][]Button
}

// Screen renders the list.
func (l List) Screen() Screen {
	rows := Chunk(l.Items, max(l.PerRow, 1))
	if nav := NavRow(l.Window, l.Link); len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, l.Trailer...)
	return Screen{Text: l.Heading, Markdown: l.Markdown, Rows: rows}
}

// NavRow renders the previous and next buttons of w, or nil when there is neither.
func NavRow(w paging.Window, link ListLink) []Button {
	if link == nil {
		return nil
	}
	nav := paging.NavButtons(w, link)
	var row []Button
	if nav.HasPrev {
		if b, ok := TryBtn("⬅️ Назад", nav.Prev); ok {
			row = append(row, b)
		}
	}
	if nav.HasNext {
		if b, ok := TryBtn("➡️ Вперёд", nav.Next); ok {
			row = append(row, b)
		}
	}
	return row
}

// EntryButtons links each entry to its card, labelled by label.
func EntryButtons(entries []catalog.Entry, label func(catalog.Entry) string) []Button {
	out := make([]Button, 0, len(entries))
	for _, e := range entries {
		out = append(out, Btn(label(e), token.Show(e.ID)))
	}
	return out
}

// TitleYear labels an entry as "🎬 title (year)".
func TitleYear(e catalog.Entry) string {
	return fmt.Sprintf("🎬 %s (%d)", e.TitlePrimary, e.Year)
}

// TitleFlag labels an entry by the title of lang and its country flag.
func TitleFlag(lang string) func(catalog.Entry) string {
	return func(e catalog.Entry) string {
		title := e.TitlePrimary
		if lang == "en" {
			title = e.TitleSecondary
		}
		return title + " " + catalog.Flag(e.Country)
	}
}

// PageLine is the "page p of P" line.
func PageLine(w paging.Window) string {
	return fmt.Sprintf("📄 Страница %d из %d", w.Index+1, w.DisplayPages())
}

// ListMenu offers the browse modes.
func ListMenu() Screen {
	return Screen{
		Text: "Выберите опцию:",
		Rows: Rows(
			Btn("🔠 По алфавиту", token.Act(token.ActionLanguageMenu)),
			Btn("⭐ По рейтингу", token.Act(token.ActionRatings)),
			Btn("📅 Поиск по году", token.Act(token.ActionYears)),
			Btn("🆔 По ID", token.Act(token.ActionLookup)),
			Btn("🌸 В главное меню", token.Act(token.ActionShowMenu)),
		),
	}
}

// LanguageMenu picks the title language for letter browsing.
func LanguageMenu() Screen {
	return Screen{
		Text:     "*Выберите язык:*",
		Markdown: true,
		Rows: [][]Button{
			{Btn("🇷🇺 Русский", token.Language("ru")), Btn("🇬🇧 English", token.Language("en"))},
			{btnMenu},
		},
	}
}
