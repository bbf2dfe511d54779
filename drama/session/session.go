// Package session holds the typed per-user conversation state.
package session

import (
	"encoding/json"
	"time"

	"github.com/m3rciful/nezabudrama/drama/catalog"
	"github.com/m3rciful/nezabudrama/drama/token"
)

// Draft accumulates the add-entry wizard fields until commit.
type Draft struct {
	TitlePrimary   string `json:"title_primary,omitempty"`
	TitleSecondary string `json:"title_secondary,omitempty"`
	Country        string `json:"country,omitempty"`
	Year           int    `json:"year,omitempty"`
	Director       string `json:"director,omitempty"`
	LeadActress    string `json:"lead_actress,omitempty"`
	LeadActor      string `json:"lead_actor,omitempty"`
	Plot           string `json:"plot,omitempty"`
	Rating         int    `json:"rating,omitempty"`
	Comment        string `json:"comment,omitempty"`
	PosterURL      string `json:"poster_url,omitempty"`
}

// Entry converts the draft into a catalog entry.
func (d Draft) Entry() catalog.Entry {
	return catalog.Entry{
		TitlePrimary:   d.TitlePrimary,
		TitleSecondary: d.TitleSecondary,
		Country:        d.Country,
		Year:           d.Year,
		Director:       d.Director,
		LeadActress:    d.LeadActress,
		LeadActor:      d.LeadActor,
		Plot:           d.Plot,
		Comment:        d.Comment,
		Rating:         d.Rating,
		PosterURL:      d.PosterURL,
	}
}

// SearchContext is one facet's search subject and pagination cursor.
type SearchContext struct {
	// Query is the normalized search text, or the selected country, letter, rating or year.
	Query string `json:"query"`
	// Person is the exact person chosen from a disambiguation list.
	Person string `json:"person,omitempty"`
	// Code is the country code that narrows Person when names collide.
	Code  string `json:"code,omitempty"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
}

// Session is the conversation state of one user.
type Session struct {
	UserID int64
	State  State
	// Draft is non-nil only while State is Adding.
	Draft *Draft
	// PendingDeleteID is the raw id typed in the delete flow, parsed on confirm.
	PendingDeleteID string
	Slots           map[token.Facet]*SearchContext
	// Language selects the title used by letter browsing: "ru" or "en".
	Language  string
	UpdatedAt time.Time
}

// New returns an idle session.
func New(userID int64) *Session {
	return &Session{UserID: userID, State: Idle{}, Slots: make(map[token.Facet]*SearchContext)}
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	if s.Draft != nil {
		d := *s.Draft
		c.Draft = &d
	}
	c.Slots = make(map[token.Facet]*SearchContext, len(s.Slots))
	for f, sc := range s.Slots {
		if sc != nil {
			v := *sc
			c.Slots[f] = &v
		}
	}
	return &c
}

// Slot returns the facet's search context, or nil when the facet was never searched.
func (s *Session) Slot(f token.Facet) *SearchContext {
	return s.Slots[f]
}

// SetSlot replaces the facet's search context, leaving other facets untouched.
func (s *Session) SetSlot(f token.Facet, sc SearchContext) *SearchContext {
	if s.Slots == nil {
		s.Slots = make(map[token.Facet]*SearchContext)
	}
	v := sc
	s.Slots[f] = &v
	return &v
}

// ClearSlot drops one facet's search context.
func (s *Session) ClearSlot(f token.Facet) {
	delete(s.Slots, f)
}

// Enter moves the session into st. Leaving the add wizard discards the draft and
// leaving the delete flow discards the pending id, so nothing leaks into a later flow.
func (s *Session) Enter(st State) {
	if st == nil {
		st = Idle{}
	}
	if _, adding := st.(Adding); adding {
		if _, was := s.State.(Adding); !was || s.Draft == nil {
			s.Draft = &Draft{}
		}
	} else {
		s.Draft = nil
	}
	if _, deleting := st.(Deleting); !deleting {
		s.PendingDeleteID = ""
	}
	s.State = st
}

// Reset ends any flow and forgets every search context.
func (s *Session) Reset() {
	s.Enter(Idle{})
	s.Slots = make(map[token.Facet]*SearchContext)
	s.Language = ""
}

// Lang returns the letter browsing language, "ru" by default.
func (s *Session) Lang() string {
	if s.Language == "en" {
		return "en"
	}
	return "ru"
}

type sessionJSON struct {
	UserID          int64                          `json:"user_id"`
	State           stateJSON                      `json:"state"`
	Draft           *Draft                         `json:"draft,omitempty"`
	PendingDeleteID string                         `json:"pending_delete_id,omitempty"`
	Slots           map[token.Facet]*SearchContext `json:"slots,omitempty"`
	Language        string                         `json:"language,omitempty"`
	UpdatedAt       time.Time                      `json:"updated_at"`
}

// MarshalJSON encodes the state as {flow, step, facet}.
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionJSON{
		UserID:          s.UserID,
		State:           encodeState(s.State),
		Draft:           s.Draft,
		PendingDeleteID: s.PendingDeleteID,
		Slots:           s.Slots,
		Language:        s.Language,
		UpdatedAt:       s.UpdatedAt,
	})
}

// UnmarshalJSON restores a session written by MarshalJSON.
func (s *Session) UnmarshalJSON(data []byte) error {
	var w sessionJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	st, err := decodeState(w.State)
	if err != nil {
		return err
	}
	*s = Session{
		UserID:          w.UserID,
		State:           st,
		Draft:           w.Draft,
		PendingDeleteID: w.PendingDeleteID,
		Slots:           w.Slots,
		Language:        w.Language,
		UpdatedAt:       w.UpdatedAt,
	}
	if s.Slots == nil {
		s.Slots = make(map[token.Facet]*SearchContext)
	}
	return nil
}
