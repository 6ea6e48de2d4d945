package history

import (
	"slices"
	"time"
)

// Report is the state occupancy history of one work item.
type Report struct {
	// TransitionCount maps a state to the number of times the item entered it.
	TransitionCount map[string]int `json:"transitionCount"`
	// TimeInState maps a state to the cumulative days spent in it.
	TimeInState map[string]float64 `json:"timeInState"`
	// Timeline is the chronological list of occupancy intervals.
	Timeline []Segment `json:"timeline,omitempty"`
}

// ValidTransitions keeps the events that carry a state and an effective time
// not later than now, preserving input order. A zero now means time.Now().
func ValidTransitions(events []StateChangeEvent, now time.Time) []Transition {
	now = resolveNow(now)

	transitions := make([]Transition, 0, len(events))
	for _, e := range events {
		if e.NewState == "" {
			continue
		}
		at, ok := e.EffectiveTime()
		if !ok || at.After(now) {
			continue
		}
		transitions = append(transitions, Transition{State: e.NewState, At: at})
	}
	return transitions
}

// AnalyzeStateTransitions counts transitions per state and accumulates the
// time spent in each. The last interval stays open until now.
// Transitions sharing a timestamp keep their input order.
func AnalyzeStateTransitions(events []StateChangeEvent, now time.Time) Report {
	now = resolveNow(now)

	report := Report{
		TransitionCount: make(map[string]int),
		TimeInState:     make(map[string]float64),
	}

	transitions := ValidTransitions(events, now)
	for _, t := range transitions {
		report.TransitionCount[t.State]++
	}

	slices.SortStableFunc(transitions, func(a, b Transition) int {
		return a.At.Compare(b.At)
	})

	for i, t := range transitions {
		end := now
		if i+1 < len(transitions) {
			end = transitions[i+1].At
		}
		seg := Segment{State: t.State, Start: t.At, End: end}
		report.TimeInState[t.State] += seg.Days()
		report.Timeline = append(report.Timeline, seg)
	}

	return report
}

// CalculateCycleTime returns the days between the first transition into start
// and the last transition into end, or nil when either is missing.
func CalculateCycleTime(events []StateChangeEvent, start, end string, now time.Time) *float64 {
	now = resolveNow(now)

	var first *time.Time
	for _, t := range ValidTransitions(events, now) {
		if t.State == start && (first == nil || t.At.Before(*first)) {
			at := t.At
			first = &at
		}
	}
	if first == nil {
		return nil
	}
	return intervalTo(events, *first, end, now)
}

// CalculateLeadTime returns the days between creation and the last transition
// into end, or nil when created is zero or end was never reached.
func CalculateLeadTime(events []StateChangeEvent, created time.Time, end string, now time.Time) *float64 {
	if created.IsZero() {
		return nil
	}
	return intervalTo(events, created, end, resolveNow(now))
}

// CountTransitions returns how many valid events moved the item into state.
func CountTransitions(events []StateChangeEvent, state string, now time.Time) int {
	count := 0
	for _, t := range ValidTransitions(events, now) {
		if t.State == state {
			count++
		}
	}
	return count
}

func intervalTo(events []StateChangeEvent, from time.Time, end string, now time.Time) *float64 {
	var last *time.Time
	for _, t := range ValidTransitions(events, now) {
		if t.State == end && (last == nil || t.At.After(*last)) {
			at := t.At
			last = &at
		}
	}
	if last == nil {
		return nil
	}
	days := Days(last.Sub(from))
	return &days
}

func resolveNow(now time.Time) time.Time {
	if now.IsZero() {
		return time.Now()
	}
	return now
}
