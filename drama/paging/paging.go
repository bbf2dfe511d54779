// Package paging computes clamped pagination windows and their navigation tokens.
package paging

import "github.com/m3rciful/nezabudrama/drama/token"

// DefaultSize is the number of rows on one page.
const DefaultSize = 10

// Window describes one page of a result set.
type Window struct {
	Index  int
	Size   int
	Total  int
	Pages  int
	Offset int
}

// Page clamps requested into [0, max(pages-1, 0)] and derives the offset.
// A non-positive size falls back to DefaultSize.
func Page(total, requested, size int) Window {
	if size <= 0 {
		size = DefaultSize
	}
	if total < 0 {
		total = 0
	}
	pages := (total + size - 1) / size
	idx := requested
	if idx > pages-1 {
		idx = pages - 1
	}
	if idx < 0 {
		idx = 0
	}
	return Window{Index: idx, Size: size, Total: total, Pages: pages, Offset: idx * size}
}

// HasPrev reports whether a previous page exists.
func (w Window) HasPrev() bool { return w.Index > 0 }

// HasNext reports whether rows remain after this page.
func (w Window) HasNext() bool { return (w.Index+1)*w.Size < w.Total }

// Empty reports whether the result set has no rows.
func (w Window) Empty() bool { return w.Total == 0 }

// DisplayPages is the page count shown to users; an empty set still renders one page.
func (w Window) DisplayPages() int { return max(w.Pages, 1) }

// Nav holds the optional previous and next tokens of a window.
type Nav struct {
	Prev, Next       token.Token
	HasPrev, HasNext bool
}

// NavButtons builds the navigation tokens with link, which maps a page index to a token.
// Facet specific trailer buttons are left to the caller.
func NavButtons(w Window, link func(page int) token.Token) Nav {
	var n Nav
	if w.HasPrev() {
		n.Prev, n.HasPrev = link(w.Index-1), true
	}
	if w.HasNext() {
		n.Next, n.HasNext = link(w.Index+1), true
	}
	return n
}
