package catalog

import (
	"fmt"
	"strings"

	"github.com/m3rciful/nezabudrama/drama/textnorm"
)

// Field names a queryable attribute of an entry.
type Field string

const (
	// FieldTitle matches either title.
	FieldTitle           Field = "title"
	FieldTitlePrimary    Field = "title_primary"
	FieldTitleSecondary  Field = "title_secondary"
	FieldCountry         Field = "country"
	FieldYear            Field = "year"
	FieldRating          Field = "rating"
	FieldDirector        Field = "director"
	FieldLeadActor       Field = "lead_actor"
	FieldLeadActress     Field = "lead_actress"
	FieldLetterPrimary   Field = "letter_primary"
	FieldLetterSecondary Field = "letter_secondary"
)

// searchKeys maps text fields to the normalized shadow columns written at insert time.
var searchKeys = map[Field][]string{
	FieldTitle:          {"title_primary_key", "title_secondary_key"},
	FieldTitlePrimary:   {"title_primary_key"},
	FieldTitleSecondary: {"title_secondary_key"},
	FieldDirector:       {"director_key"},
	FieldLeadActor:      {"lead_actor_key"},
	FieldLeadActress:    {"lead_actress_key"},
}

var valueColumns = map[Field]string{
	FieldTitlePrimary:    "title_primary",
	FieldTitleSecondary:  "title_secondary",
	FieldCountry:         "country",
	FieldYear:            "year",
	FieldRating:          "rating",
	FieldDirector:        "director",
	FieldLeadActor:       "lead_actor",
	FieldLeadActress:     "lead_actress",
	FieldLetterPrimary:   "letter_primary",
	FieldLetterSecondary: "letter_secondary",
}

// IsPerson reports whether f names one of the people columns.
func IsPerson(f Field) bool {
	return f == FieldDirector || f == FieldLeadActor || f == FieldLeadActress
}

// Predicate is a WHERE fragment with '?' placeholders. The zero value matches everything.
type Predicate struct {
	clause string
	args   []any
	err    error
}

// Contains matches entries whose field contains needle, ignoring case and Unicode form.
func Contains(f Field, needle string) Predicate {
	cols, ok := searchKeys[f]
	if !ok {
		return Predicate{err: fmt.Errorf("catalog: field %q does not support substring match", f)}
	}
	pattern := "%" + escapeLike(textnorm.Key(needle)) + "%"
	parts := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		parts[i] = col + ` LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	clause := parts[0]
	if len(parts) > 1 {
		clause = "(" + strings.Join(parts, " OR ") + ")"
	}
	return Predicate{clause: clause, args: args}
}

// Equals matches entries whose field equals v exactly.
func Equals(f Field, v any) Predicate {
	col, ok := valueColumns[f]
	if !ok {
		return Predicate{err: fmt.Errorf("catalog: unknown field %q", f)}
	}
	return Predicate{clause: col + " = ?", args: []any{v}}
}

// HasPrefix matches entries whose title starts with letter. f must be a letter field.
func HasPrefix(f Field, letter string) Predicate {
	if f != FieldLetterPrimary && f != FieldLetterSecondary {
		return Predicate{err: fmt.Errorf("catalog: field %q is not a letter field", f)}
	}
	return Equals(f, letter)
}

// All joins predicates with AND.
func All(ps ...Predicate) Predicate {
	var out Predicate
	var parts []string
	for _, p := range ps {
		if p.err != nil {
			return Predicate{err: p.err}
		}
		if p.clause == "" {
			continue
		}
		parts = append(parts, p.clause)
		out.args = append(out.args, p.args...)
	}
	out.clause = strings.Join(parts, " AND ")
	return out
}

// Err reports a construction error, such as an unsupported field.
func (p Predicate) Err() error { return p.err }

func (p Predicate) where() string {
	if p.clause == "" {
		return ""
	}
	return " WHERE " + p.clause
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Order selects the sort order of Find.
type Order int

const (
	OrderTitlePrimary Order = iota
	OrderTitleSecondary
	OrderNewest
)

func (o Order) sql() string {
	switch o {
	case OrderTitleSecondary:
		return "title_secondary ASC, id ASC"
	case OrderNewest:
		return "id DESC"
	default:
		return "title_primary ASC, id ASC"
	}
}
