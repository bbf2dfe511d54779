// Package token encodes and decodes the action tokens carried as inline button data.
//
// Decoding is total: every input yields a Result whose Outcome tells the caller
// whether the token was understood, malformed, or belongs to no known facet.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxLen is Telegram's limit on callback data, in bytes.
const MaxLen = 64

// ErrTooLong is returned by Encode when the token does not fit into MaxLen bytes.
var ErrTooLong = errors.New("token: encoded token exceeds 64 bytes")

// Facet is a dimension of search or browse.
type Facet string

const (
	FacetCountry  Facet = "country"
	FacetTitle    Facet = "title"
	FacetActor    Facet = "actor"
	FacetActress  Facet = "actress"
	FacetDirector Facet = "director"
	FacetLetter   Facet = "letter"
	FacetRating   Facet = "rating"
	FacetYear     Facet = "year"
)

// Facets lists every facet in a stable order.
var Facets = []Facet{FacetCountry, FacetTitle, FacetActor, FacetActress, FacetDirector, FacetLetter, FacetRating, FacetYear}

// Kind discriminates the token shapes.
type Kind int

const (
	// KindAction is a bare menu entry or control token.
	KindAction Kind = iota + 1
	// KindPage jumps to an absolute page of a facet.
	KindPage
	// KindStep moves a facet's stored cursor by Delta pages.
	KindStep
	KindSelectCountry
	KindRating
	KindChoose
	KindShow
	KindLetter
	KindRatingFilter
	// KindYear lists the entries of one year; the page is optional on input.
	KindYear
	KindLanguage
)

// Action names a bare token.
type Action string

const (
	ActionShowMenu       Action = "show_menu"
	ActionListMenu       Action = "list_doramas_menu"
	ActionLanguageMenu   Action = "list_by_letter"
	ActionLetters        Action = "list_doramas_by_letter"
	ActionRatings        Action = "list_doramas_by_rating"
	ActionYears          Action = "list_years"
	ActionSearchCountry  Action = "search_by_country"
	ActionSearchTitle    Action = "search_by_title"
	ActionSearchActor    Action = "search_by_actor"
	ActionSearchActress  Action = "search_by_actress"
	ActionSearchDirector Action = "search_by_director"
	ActionAdd            Action = "add_dorama"
	ActionDelete         Action = "delete_dorama"
	ActionLookup         Action = "get_dorama_details"
	ActionCancel         Action = "cancel"
	ActionMainMenu       Action = "return_to_main_menu"
	ActionConfirmDelete  Action = "confirm_delete"
)

var actions = map[Action]struct{}{
	ActionShowMenu: {}, ActionListMenu: {}, ActionLanguageMenu: {}, ActionLetters: {},
	ActionRatings: {}, ActionYears: {}, ActionSearchCountry: {}, ActionSearchTitle: {},
	ActionSearchActor: {}, ActionSearchActress: {}, ActionSearchDirector: {}, ActionAdd: {},
	ActionDelete: {}, ActionLookup: {}, ActionCancel: {}, ActionMainMenu: {}, ActionConfirmDelete: {},
}

// SearchAction returns the entry token of a facet's search wizard.
func SearchAction(f Facet) (Action, bool) {
	switch f {
	case FacetCountry:
		return ActionSearchCountry, true
	case FacetTitle:
		return ActionSearchTitle, true
	case FacetActor:
		return ActionSearchActor, true
	case FacetActress:
		return ActionSearchActress, true
	case FacetDirector:
		return ActionSearchDirector, true
	}
	return "", false
}

// pagePrefixes maps the colon-form page prefixes to their facet.
var pagePrefixes = map[string]Facet{
	"country":     FacetCountry,
	"title":       FacetTitle,
	"actor":       FacetActor,
	"actress":     FacetActress,
	"director":    FacetDirector,
	"list_years":  FacetYear,
	"letter_page": FacetLetter,
	"rating_page": FacetRating,
}

var choosePrefixes = map[string]Facet{
	"choose_actor":    FacetActor,
	"choose_actress":  FacetActress,
	"choose_director": FacetDirector,
}

var steps = map[string]struct {
	facet Facet
	delta int
}{
	"letter_doramas_page_back": {FacetLetter, -1},
	"letter_doramas_page_next": {FacetLetter, 1},
	"rating_doramas_page_back": {FacetRating, -1},
	"rating_doramas_page_next": {FacetRating, 1},
}

const (
	prefixLetter       = "filter_by_letter_"
	prefixRatingFilter = "filter_by_rating_"
	prefixYear         = "list_doramas_year_"
	prefixLanguage     = "language_"
)

// Token is a decoded action token. Only the fields relevant to Kind are set.
type Token struct {
	Kind   Kind
	Action Action
	Facet  Facet
	// Page is the zero-based page index for KindPage and KindYear.
	Page  int
	Delta int
	// Value carries a country name, person name, letter or language.
	Value string
	// Code is the optional country code that disambiguates a person name.
	Code string
	// Number carries a rating, year or entry id.
	Number int64
}

// Outcome classifies a decode attempt.
type Outcome int

const (
	OK Outcome = iota
	Malformed
	UnknownFacet
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case Malformed:
		return "malformed"
	case UnknownFacet:
		return "unknown_facet"
	}
	return "outcome(" + strconv.Itoa(int(o)) + ")"
}

// Result is the outcome of Decode.
type Result struct {
	Outcome Outcome
	Token   Token
	// Reason explains a Malformed outcome.
	Reason string
}

func malformed(format string, args ...any) Result {
	return Result{Outcome: Malformed, Reason: fmt.Sprintf(format, args...)}
}

func ok(t Token) Result { return Result{Outcome: OK, Token: t} }

// Decode parses raw callback data. It never panics.
func Decode(raw string) Result {
	if raw == "" {
		return malformed("empty token")
	}
	if len(raw) > MaxLen {
		return malformed("token longer than %d bytes", MaxLen)
	}
	if _, found := actions[Action(raw)]; found {
		return ok(Token{Kind: KindAction, Action: Action(raw)})
	}
	if s, found := steps[raw]; found {
		return ok(Token{Kind: KindStep, Facet: s.facet, Delta: s.delta})
	}
	if rest, found := strings.CutPrefix(raw, prefixLanguage); found {
		if rest != "ru" && rest != "en" {
			return malformed("unsupported language %q", rest)
		}
		return ok(Token{Kind: KindLanguage, Value: rest})
	}
	if rest, found := strings.CutPrefix(raw, prefixLetter); found {
		if rest == "" {
			return malformed("missing letter")
		}
		return ok(Token{Kind: KindLetter, Value: rest})
	}
	if rest, found := strings.CutPrefix(raw, prefixRatingFilter); found {
		n, err := parseRating(rest)
		if err != nil {
			return malformed("%v", err)
		}
		return ok(Token{Kind: KindRatingFilter, Number: n})
	}
	if rest, found := strings.CutPrefix(raw, prefixYear); found {
		return decodeYear(rest)
	}

	head, payload, hasColon := strings.Cut(raw, ":")
	if !hasColon {
		return Result{Outcome: UnknownFacet, Reason: "no facet for " + raw}
	}
	if f, found := pagePrefixes[head]; found {
		p, err := parsePage(payload)
		if err != nil {
			return malformed("%s: %v", head, err)
		}
		return ok(Token{Kind: KindPage, Facet: f, Page: p})
	}
	if f, found := choosePrefixes[head]; found {
		name, code := splitCode(payload)
		if strings.TrimSpace(name) == "" {
			return malformed("%s: empty name", head)
		}
		return ok(Token{Kind: KindChoose, Facet: f, Value: name, Code: code})
	}
	switch head {
	case "select_country":
		if strings.TrimSpace(payload) == "" {
			return malformed("select_country: empty country")
		}
		return ok(Token{Kind: KindSelectCountry, Value: payload})
	case "rating":
		n, err := parseRating(payload)
		if err != nil {
			return malformed("%v", err)
		}
		return ok(Token{Kind: KindRating, Number: n})
	case "show_dorama":
		id, err := strconv.ParseInt(payload, 10, 64)
		if err != nil || id <= 0 {
			return malformed("show_dorama: invalid id %q", payload)
		}
		return ok(Token{Kind: KindShow, Number: id})
	}
	return Result{Outcome: UnknownFacet, Reason: "no facet for " + head}
}

// decodeYear parses "<year>[_<page>]". The year is required; a page may follow.
func decodeYear(rest string) Result {
	parts := strings.Split(rest, "_")
	if len(parts) > 2 {
		return malformed("year: unexpected segments in %q", rest)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year <= 0 {
		return malformed("year: invalid year %q", parts[0])
	}
	t := Token{Kind: KindYear, Number: int64(year)}
	if len(parts) == 2 {
		p, err := parsePage(parts[1])
		if err != nil {
			return malformed("year: %v", err)
		}
		t.Page = p
	}
	return ok(t)
}

func parsePage(s string) (int, error) {
	p, err := strconv.Atoi(s)
	if err != nil || p < 0 {
		return 0, fmt.Errorf("invalid page %q", s)
	}
	return p, nil
}

func parseRating(s string) (int64, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 10 {
		return 0, fmt.Errorf("invalid rating %q", s)
	}
	return int64(n), nil
}

// splitCode separates a trailing "@CC" country code from a person name.
func splitCode(payload string) (string, string) {
	i := strings.LastIndexByte(payload, '@')
	if i <= 0 || !isCode(payload[i+1:]) {
		return payload, ""
	}
	return payload[:i], payload[i+1:]
}

func isCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
