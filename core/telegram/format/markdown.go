package format

import "strings"

// mdSpecials is the punctuation legacy Markdown treats as markup.
const mdSpecials = "_*`["

// Escape escapes legacy Markdown punctuation, the dialect of every formatted screen.
// Escapes are not honoured inside an entity, so escaped text must sit outside bold or italic spans.
func Escape(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(mdSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NeutralizeHashtags inserts a zero-width space after '#' so clients do not turn it into a hashtag link.
func NeutralizeHashtags(text string) string {
	return strings.ReplaceAll(text, "#", "#\u200b")
}

// Safe escapes user supplied text and neutralizes hashtags.
func Safe(text string) string {
	return NeutralizeHashtags(Escape(text))
}

// Truncate shortens text to at most limit runes, ending with an ellipsis when cut.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}
