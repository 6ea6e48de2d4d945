package history

import (
	"strings"
	"time"
)

// StateChangeEvent is a single work item update reduced to the fields needed
// to rebuild the state timeline.
type StateChangeEvent struct {
	// NewState is the state the item moved into. Empty for updates that did not touch the state.
	NewState string `json:"newState,omitempty"`
	// ChangedDate is the primary timestamp (the System.ChangedDate new value).
	ChangedDate string `json:"changedDate,omitempty"`
	// RevisedDate is the revision timestamp, used when ChangedDate is absent.
	RevisedDate string `json:"revisedDate,omitempty"`
}

// EffectiveTime returns the instant the event became effective. ChangedDate
// wins over RevisedDate; the second return value is false when neither parses.
func (e StateChangeEvent) EffectiveTime() (time.Time, bool) {
	raw := e.ChangedDate
	if strings.TrimSpace(raw) == "" {
		raw = e.RevisedDate
	}
	t, err := ParseTime(raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Transition is a validated state change: a state name and the instant it was entered.
type Transition struct {
	State string    `json:"state"`
	At    time.Time `json:"at"`
}

// Segment is a contiguous occupancy interval in a single state.
type Segment struct {
	State string    `json:"state"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the segment length in fractional days, never negative.
func (s Segment) Days() float64 {
	return max(0, Days(s.End.Sub(s.Start)))
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses the ISO-8601 variants seen in work item histories.
// Values without a zone are read as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// Days converts a duration into fractional days.
func Days(d time.Duration) float64 {
	return d.Seconds() / 86400.0
}
