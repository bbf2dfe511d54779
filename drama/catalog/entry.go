// Package catalog stores drama entries and answers the field level queries
// the bot's search and browse screens are built from.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	MinYear   = 1900
	MaxYear   = 2100
	MinRating = 1
	MaxRating = 10
)

// ErrNotFound is returned by Get when no entry has the requested id.
var ErrNotFound = errors.New("catalog: entry not found")

// Country is one of the fixed production countries.
type Country struct {
	Name string
	Flag string
	// Code is a short stable identifier used where the display name does not fit.
	Code string
}

// Countries lists the selectable countries in menu order.
var Countries = []Country{
	{Name: "Южная Корея", Flag: "🇰🇷", Code: "KR"},
	{Name: "Китай", Flag: "🇨🇳", Code: "CN"},
	{Name: "Япония", Flag: "🇯🇵", Code: "JP"},
}

// UnknownFlag is shown for countries outside the fixed list.
const UnknownFlag = "🌍"

// CountryByName looks a country up by its display name.
func CountryByName(name string) (Country, bool) {
	for _, c := range Countries {
		if c.Name == name {
			return c, true
		}
	}
	return Country{}, false
}

// CountryByCode looks a country up by its code, ignoring case.
func CountryByCode(code string) (Country, bool) {
	for _, c := range Countries {
		if strings.EqualFold(c.Code, code) {
			return c, true
		}
	}
	return Country{}, false
}

// Flag returns the country's flag or UnknownFlag.
func Flag(country string) string {
	if c, ok := CountryByName(country); ok {
		return c.Flag
	}
	return UnknownFlag
}

// Entry is a catalog record. Entries are created whole and never updated in place.
type Entry struct {
	ID             int64     `db:"id"`
	TitlePrimary   string    `db:"title_primary"`
	TitleSecondary string    `db:"title_secondary"`
	Country        string    `db:"country"`
	Year           int       `db:"year"`
	Director       string    `db:"director"`
	LeadActress    string    `db:"lead_actress"`
	LeadActor      string    `db:"lead_actor"`
	Plot           string    `db:"plot"`
	Comment        string    `db:"comment"`
	Rating         int       `db:"rating"`
	PosterURL      string    `db:"poster_url"`
	CreatedAt      time.Time `db:"created_at"`
}

// Validate checks that every required field is present and in range.
func (e Entry) Validate() error {
	required := []struct {
		name, value string
	}{
		{"title_primary", e.TitlePrimary},
		{"title_secondary", e.TitleSecondary},
		{"country", e.Country},
		{"director", e.Director},
		{"lead_actress", e.LeadActress},
		{"lead_actor", e.LeadActor},
		{"plot", e.Plot},
		{"comment", e.Comment},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("catalog: %s is required", f.name)
		}
	}
	if _, ok := CountryByName(e.Country); !ok {
		return fmt.Errorf("catalog: unknown country %q", e.Country)
	}
	if e.Year < MinYear || e.Year > MaxYear {
		return fmt.Errorf("catalog: year %d out of range %d-%d", e.Year, MinYear, MaxYear)
	}
	if e.Rating < MinRating || e.Rating > MaxRating {
		return fmt.Errorf("catalog: rating %d out of range %d-%d", e.Rating, MinRating, MaxRating)
	}
	return nil
}
