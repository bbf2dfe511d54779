package textnorm

import (
	"errors"
	"testing"
)

func TestNormalizeEquivalence(t *testing.T) {
	a, err := Normalize(" Москва  story ")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	b, _ := Normalize("москва story")
	if a != b {
		t.Fatalf("%q != %q", a, b)
	}
	if a != "москва story" {
		t.Fatalf("got %q", a)
	}
}

func TestNormalizeUnicodeForms(t *testing.T) {
	decomposed := "Cafe\u0301"
	precomposed := "caf\u00e9"
	a, _ := Normalize(decomposed)
	b, _ := Normalize(precomposed)
	if a != b {
		t.Fatalf("%q != %q", a, b)
	}
	// full-width letters fold to ASCII under NFKC
	if got, _ := Normalize("ＬＯＶＥ\tin\n Seoul"); got != "love in seoul" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeRejectsEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		if _, err := Normalize(in); !errors.Is(err, ErrEmpty) {
			t.Fatalf("Normalize(%q) err = %v", in, err)
		}
	}
	if Key("  ") != "" {
		t.Fatal("blank key must be empty")
	}
}

func TestLetter(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"The King: Eternal Monarch", "K"},
		{"A Korean Odyssey", "K"},
		{"Alchemy of Souls", "A"},
		{"The", "T"},
		{"ёлки", "Ё"},
		{"  сон в летнюю ночь", "С"},
		{"1987", "1"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Letter(tc.in); got != tc.want {
			t.Fatalf("Letter(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
