package token

import (
	"fmt"
	"strconv"
)

var pageNames = map[Facet]string{
	FacetCountry:  "country",
	FacetTitle:    "title",
	FacetActor:    "actor",
	FacetActress:  "actress",
	FacetDirector: "director",
	FacetYear:     "list_years",
	FacetLetter:   "letter_page",
	FacetRating:   "rating_page",
}

// Encode renders t. Year tokens always carry their page.
func Encode(t Token) (string, error) {
	s, err := render(t)
	if err != nil {
		return "", err
	}
	if len(s) > MaxLen {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLong, len(s))
	}
	return s, nil
}

func render(t Token) (string, error) {
	switch t.Kind {
	case KindAction:
		if _, found := actions[t.Action]; !found {
			return "", fmt.Errorf("token: unknown action %q", t.Action)
		}
		return string(t.Action), nil
	case KindPage:
		name, found := pageNames[t.Facet]
		if !found || t.Page < 0 {
			return "", fmt.Errorf("token: cannot page facet %q to %d", t.Facet, t.Page)
		}
		return name + ":" + strconv.Itoa(t.Page), nil
	case KindStep:
		if t.Facet != FacetLetter && t.Facet != FacetRating {
			return "", fmt.Errorf("token: facet %q has no relative cursor", t.Facet)
		}
		dir := "next"
		if t.Delta < 0 {
			dir = "back"
		}
		return string(t.Facet) + "_doramas_page_" + dir, nil
	case KindSelectCountry:
		return "select_country:" + t.Value, nil
	case KindRating:
		return "rating:" + strconv.FormatInt(t.Number, 10), nil
	case KindChoose:
		switch t.Facet {
		case FacetActor, FacetActress, FacetDirector:
		default:
			return "", fmt.Errorf("token: facet %q has no person chooser", t.Facet)
		}
		s := "choose_" + string(t.Facet) + ":" + t.Value
		if t.Code != "" {
			s += "@" + t.Code
		}
		return s, nil
	case KindShow:
		return "show_dorama:" + strconv.FormatInt(t.Number, 10), nil
	case KindLetter:
		return prefixLetter + t.Value, nil
	case KindRatingFilter:
		return prefixRatingFilter + strconv.FormatInt(t.Number, 10), nil
	case KindYear:
		return prefixYear + strconv.FormatInt(t.Number, 10) + "_" + strconv.Itoa(t.Page), nil
	case KindLanguage:
		return prefixLanguage + t.Value, nil
	}
	return "", fmt.Errorf("token: unknown kind %d", t.Kind)
}

// Must encodes t and panics on error. Use it only for tokens built from constants.
func Must(t Token) string {
	s, err := Encode(t)
	if err != nil {
		panic(err)
	}
	return s
}

// Act builds a bare action token.
func Act(a Action) Token { return Token{Kind: KindAction, Action: a} }

// Page builds an absolute page token.
func Page(f Facet, page int) Token { return Token{Kind: KindPage, Facet: f, Page: page} }

// Choose builds a person chooser token; code may be empty.
func Choose(f Facet, name, code string) Token {
	return Token{Kind: KindChoose, Facet: f, Value: name, Code: code}
}

// Show builds a detail view token.
func Show(id int64) Token { return Token{Kind: KindShow, Number: id} }

// SelectCountry builds a country selector token.
func SelectCountry(name string) Token { return Token{Kind: KindSelectCountry, Value: name} }

// Rating builds a rating selector token.
func Rating(n int) Token { return Token{Kind: KindRating, Number: int64(n)} }

// Letter builds a browse-by-letter token.
func Letter(l string) Token { return Token{Kind: KindLetter, Value: l} }

// RatingFilter builds a browse-by-rating token.
func RatingFilter(n int) Token { return Token{Kind: KindRatingFilter, Number: int64(n)} }

// Year builds a browse-by-year token.
func Year(year, page int) Token { return Token{Kind: KindYear, Number: int64(year), Page: page} }

// Language builds a letter language token ("ru" or "en").
func Language(lang string) Token { return Token{Kind: KindLanguage, Value: lang} }
