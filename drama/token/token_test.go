package token

import (
	"errors"
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	valid := []string{
		"actor:3", "country:0", "title:12", "actress:1", "director:2",
		"list_years:4", "letter_page:1", "rating_page:2",
		"select_country:Япония", "rating:10", "choose_actor:Гон Ю", "choose_director:Ли Мин@CN",
		"show_dorama:42", "filter_by_letter_К", "filter_by_rating_7",
		"list_doramas_year_2016_1", "language_en",
		"letter_doramas_page_back", "rating_doramas_page_next",
		"cancel", "return_to_main_menu", "confirm_delete", "list_years", "show_menu",
	}
	for _, raw := range valid {
		res := Decode(raw)
		if res.Outcome != OK {
			t.Fatalf("Decode(%q) = %v (%s)", raw, res.Outcome, res.Reason)
		}
		got, err := Encode(res.Token)
		if err != nil {
			t.Fatalf("Encode(%q): %v", raw, err)
		}
		if got != raw {
			t.Fatalf("round trip %q -> %q", raw, got)
		}
	}
}

func TestYearPageOptionalOnInput(t *testing.T) {
	res := Decode("list_doramas_year_2016")
	if res.Outcome != OK || res.Token.Kind != KindYear || res.Token.Number != 2016 || res.Token.Page != 0 {
		t.Fatalf("decode = %+v", res)
	}
	if got := Must(res.Token); got != "list_doramas_year_2016_0" {
		t.Fatalf("encode = %q", got)
	}
}

func TestDecodeMalformed(t *testing.T) {
	bad := []string{
		"", "actor:", "actor:-1", "actor:x", "rating:0", "rating:11", "show_dorama:abc",
		"show_dorama:0", "select_country:", "choose_actor:", "filter_by_letter_",
		"filter_by_rating_99", "list_doramas_year_", "list_doramas_year_abc_1",
		"list_doramas_year_2016_x", "list_doramas_year_2016_1_2", "language_de",
		strings.Repeat("a", MaxLen+1),
	}
	for _, raw := range bad {
		if res := Decode(raw); res.Outcome != Malformed {
			t.Fatalf("Decode(%q) = %v, want malformed", raw, res.Outcome)
		}
	}
}

func TestDecodeUnknownFacet(t *testing.T) {
	for _, raw := range []string{"back", "whatever:1", "foo_bar"} {
		if res := Decode(raw); res.Outcome != UnknownFacet {
			t.Fatalf("Decode(%q) = %v, want unknown facet", raw, res.Outcome)
		}
	}
}

func TestChooseCodeSuffix(t *testing.T) {
	res := Decode("choose_actress:Ким@JP")
	if res.Token.Value != "Ким" || res.Token.Code != "JP" {
		t.Fatalf("decode = %+v", res.Token)
	}
	// an '@' that is not followed by a country code stays in the name
	res = Decode("choose_actor:a@b")
	if res.Token.Value != "a@b" || res.Token.Code != "" {
		t.Fatalf("decode = %+v", res.Token)
	}
}

func TestEncodeTooLong(t *testing.T) {
	name := strings.Repeat("Я", 30)
	_, err := Encode(Choose(FacetActor, name, ""))
	if !errors.Is(err, ErrTooLong) {
		t.Fatalf("err = %v", err)
	}
}

func TestEncodeRejectsInvalid(t *testing.T) {
	cases := []Token{
		{Kind: KindAction, Action: "nope"},
		Page("bogus", 1),
		Page(FacetTitle, -1),
		Choose(FacetTitle, "x", ""),
		{Kind: KindStep, Facet: FacetActor, Delta: 1},
		{},
	}
	for _, tc := range cases {
		if _, err := Encode(tc); err == nil {
			t.Fatalf("Encode(%+v) should fail", tc)
		}
	}
}
