package format

import "testing"

func TestEscape(t *testing.T) {
	cases := map[string]string{
		"snake_case *bold* [link]": `snake\_case \*bold\* \[link]`,
		"`code`":                   "\\`code\\`",
		"plain (x) #1.":            "plain (x) #1.",
	}
	for in, want := range cases {
		if got := Escape(in); got != want {
			t.Fatalf("Escape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSafe(t *testing.T) {
	got := Safe("#лучшее _дорама_")
	want := "#\u200bлучшее \\_дорама\\_"
	if got != want {
		t.Fatalf("Safe = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("привет", 10); got != "привет" {
		t.Fatalf("Truncate short = %q", got)
	}
	if got := Truncate("привет", 4); got != "при…" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("abc", 0); got != "" {
		t.Fatalf("Truncate zero = %q", got)
	}
}
