package history

import (
	"cmp"
	"slices"
	"strings"
)

// Workflow names the states that carry meaning for the interval metrics.
type Workflow struct {
	// StartState marks the beginning of active work (cycle time start).
	StartState string `toml:"start_state" json:"startState"`
	// EndState is the terminal state (cycle and lead time end).
	EndState string `toml:"end_state" json:"endState"`
	// ResolvedState is counted separately as rework signal.
	ResolvedState string `toml:"resolved_state" json:"resolvedState"`
	// Order is the display order for states; unknown states sort after it.
	Order []string `toml:"state_order" json:"stateOrder"`
}

// Well-known state names of the default Agile process.
const (
	StateNew        = "New"
	StateActive     = "Active"
	StateCodeReview = "Code Review"
	StateResolved   = "Resolved"
	StateClosed     = "Closed"
)

// DefaultWorkflow returns the Agile process defaults.
func DefaultWorkflow() Workflow {
	return Workflow{
		StartState:    StateActive,
		EndState:      StateClosed,
		ResolvedState: StateResolved,
		Order:         []string{StateNew, StateActive, StateCodeReview, StateResolved, StateClosed},
	}
}

// WithDefaults fills empty fields from DefaultWorkflow.
func (w Workflow) WithDefaults() Workflow {
	d := DefaultWorkflow()
	if w.StartState == "" {
		w.StartState = d.StartState
	}
	if w.EndState == "" {
		w.EndState = d.EndState
	}
	if w.ResolvedState == "" {
		w.ResolvedState = d.ResolvedState
	}
	if len(w.Order) == 0 {
		w.Order = d.Order
	}
	return w
}

// SortStates returns states in display order: states named in Order first,
// in that order, then the rest alphabetically. Duplicates are removed.
func (w Workflow) SortStates(states []string) []string {
	rank := make(map[string]int, len(w.Order))
	for i, s := range w.Order {
		if _, ok := rank[s]; !ok {
			rank[s] = i
		}
	}

	out := slices.Clone(states)
	slices.SortFunc(out, func(a, b string) int {
		ra, okA := rank[a]
		rb, okB := rank[b]
		switch {
		case okA && okB:
			return cmp.Compare(ra, rb)
		case okA:
			return -1
		case okB:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
	return slices.Compact(out)
}
