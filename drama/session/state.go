package session

import (
	"fmt"

	"github.com/m3rciful/nezabudrama/drama/token"
)

// Flow identifies a dialog.
type Flow string

const (
	FlowIdle   Flow = "idle"
	FlowAdd    Flow = "add"
	FlowDelete Flow = "delete"
	FlowLookup Flow = "lookup"
	FlowSearch Flow = "search"
)

// State is the current position in a dialog. The set of implementations is closed:
// Idle, Adding, Deleting, LookingUp and Searching.
type State interface {
	Flow() Flow
	sealed()
}

// Idle means no dialog owns free text.
type Idle struct{}

// Adding is a step of the add-entry wizard.
type Adding struct{ Step AddStep }

// Deleting is a step of the delete-entry flow.
type Deleting struct{ Step DeleteStep }

// LookingUp waits for an entry id.
type LookingUp struct{}

// Searching is a step of a per-field search.
type Searching struct {
	Facet token.Facet
	Step  SearchStep
}

func (Idle) Flow() Flow      { return FlowIdle }
func (Adding) Flow() Flow    { return FlowAdd }
func (Deleting) Flow() Flow  { return FlowDelete }
func (LookingUp) Flow() Flow { return FlowLookup }
func (Searching) Flow() Flow { return FlowSearch }

func (Idle) sealed()      {}
func (Adding) sealed()    {}
func (Deleting) sealed()  {}
func (LookingUp) sealed() {}
func (Searching) sealed() {}

// AddStep is a step of the add-entry wizard.
type AddStep string

const (
	StepTitlePrimary   AddStep = "title_primary"
	StepTitleSecondary AddStep = "title_secondary"
	StepCountry        AddStep = "country"
	StepYear           AddStep = "year"
	StepDirector       AddStep = "director"
	StepLeadActress    AddStep = "lead_actress"
	StepLeadActor      AddStep = "lead_actor"
	StepPlot           AddStep = "plot"
	StepRating         AddStep = "rating"
	StepComment        AddStep = "comment"
	StepPosterURL      AddStep = "poster_url"
)

// AddSteps is the wizard order. The entry is committed after the last step.
var AddSteps = []AddStep{
	StepTitlePrimary, StepTitleSecondary, StepCountry, StepYear, StepDirector,
	StepLeadActress, StepLeadActor, StepPlot, StepRating, StepComment, StepPosterURL,
}

// Next returns the step after s, or false when s is the last one.
func (s AddStep) Next() (AddStep, bool) {
	for i, step := range AddSteps {
		if step == s && i+1 < len(AddSteps) {
			return AddSteps[i+1], true
		}
	}
	return "", false
}

func (s AddStep) valid() bool {
	for _, step := range AddSteps {
		if step == s {
			return true
		}
	}
	return false
}

// DeleteStep is a step of the delete-entry flow.
type DeleteStep string

const (
	StepPromptID DeleteStep = "prompt_id"
	StepConfirm  DeleteStep = "confirm"
)

// SearchStep is a step of a per-field search.
type SearchStep string

const (
	StepPromptQuery  SearchStep = "prompt_query"
	StepChoosePerson SearchStep = "choose_person"
	StepResults      SearchStep = "results"
)

// stateJSON is the wire form of State.
type stateJSON struct {
	Flow  Flow        `json:"flow"`
	Step  string      `json:"step,omitempty"`
	Facet token.Facet `json:"facet,omitempty"`
}

func encodeState(s State) stateJSON {
	switch v := s.(type) {
	case Adding:
		return stateJSON{Flow: FlowAdd, Step: string(v.Step)}
	case Deleting:
		return stateJSON{Flow: FlowDelete, Step: string(v.Step)}
	case LookingUp:
		return stateJSON{Flow: FlowLookup}
	case Searching:
		return stateJSON{Flow: FlowSearch, Step: string(v.Step), Facet: v.Facet}
	}
	return stateJSON{Flow: FlowIdle}
}

func decodeState(w stateJSON) (State, error) {
	switch w.Flow {
	case "", FlowIdle:
		return Idle{}, nil
	case FlowAdd:
		step := AddStep(w.Step)
		if !step.valid() {
			return nil, fmt.Errorf("session: unknown add step %q", w.Step)
		}
		return Adding{Step: step}, nil
	case FlowDelete:
		switch step := DeleteStep(w.Step); step {
		case StepPromptID, StepConfirm:
			return Deleting{Step: step}, nil
		}
		return nil, fmt.Errorf("session: unknown delete step %q", w.Step)
	case FlowLookup:
		return LookingUp{}, nil
	case FlowSearch:
		switch step := SearchStep(w.Step); step {
		case StepPromptQuery, StepChoosePerson, StepResults:
			return Searching{Facet: w.Facet, Step: step}, nil
		}
		return nil, fmt.Errorf("session: unknown search step %q", w.Step)
	}
	return nil, fmt.Errorf("session: unknown flow %q", w.Flow)
}

// Describe renders s as "flow", "flow/step" or "search/facet/step" for logs and incident reports.
func Describe(s State) string {
	w := encodeState(s)
	out := string(w.Flow)
	if w.Facet != "" {
		out += "/" + string(w.Facet)
	}
	if w.Step != "" {
		out += "/" + w.Step
	}
	return out
}
