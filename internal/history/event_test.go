package history

import (
	"slices"
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-03-20T14:30:00Z", time.Date(2024, 3, 20, 14, 30, 0, 0, time.UTC), true},
		{"2024-03-20T14:30:00.123Z", time.Date(2024, 3, 20, 14, 30, 0, 123000000, time.UTC), true},
		{"2024-03-20T16:30:00+02:00", time.Date(2024, 3, 20, 14, 30, 0, 0, time.UTC), true},
		{"2024-03-20T14:30:00.000+0000", time.Date(2024, 3, 20, 14, 30, 0, 0, time.UTC), true},
		{"2024-03-20T14:30:00", time.Date(2024, 3, 20, 14, 30, 0, 0, time.UTC), true},
		{"2024-03-20", time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
	}

	for _, tt := range tests {
		got, err := ParseTime(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseTime(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && !got.Equal(tt.want) {
			t.Errorf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEffectiveTime_PrefersChangedDate(t *testing.T) {
	e := StateChangeEvent{ChangedDate: "2024-01-02T00:00:00Z", RevisedDate: "2024-01-05T00:00:00Z"}
	got, ok := e.EffectiveTime()
	if !ok || got.Day() != 2 {
		t.Errorf("Expected ChangedDate to be used, got %v (ok=%v)", got, ok)
	}

	e = StateChangeEvent{ChangedDate: "  ", RevisedDate: "2024-01-05T00:00:00Z"}
	got, ok = e.EffectiveTime()
	if !ok || got.Day() != 5 {
		t.Errorf("Expected RevisedDate fallback, got %v (ok=%v)", got, ok)
	}

	if _, ok := (StateChangeEvent{}).EffectiveTime(); ok {
		t.Error("Expected no effective time for an empty event")
	}
}

func TestWorkflowWithDefaults(t *testing.T) {
	wf := Workflow{EndState: "Done"}.WithDefaults()
	if wf.EndState != "Done" {
		t.Errorf("Expected explicit EndState to survive, got %s", wf.EndState)
	}
	if wf.StartState != StateActive || wf.ResolvedState != StateResolved {
		t.Errorf("Expected defaults for unset states, got %+v", wf)
	}
	if len(wf.Order) != 5 {
		t.Errorf("Expected default display order, got %v", wf.Order)
	}
}

func TestWorkflowSortStates(t *testing.T) {
	wf := DefaultWorkflow()
	got := wf.SortStates([]string{"Closed", "Blocked", "New", "Code Review", "Approved", "New"})
	want := []string{"New", "Code Review", "Closed", "Approved", "Blocked"}
	if !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
