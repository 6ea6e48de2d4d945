package workitem

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"azdo-flow/internal/history"

	"github.com/rs/zerolog/log"
)

// NotAvailable is the display value for details the source did not provide.
const NotAvailable = "N/A"

// Details holds the work item metadata fetched once per item.
type Details struct {
	ID      int       `json:"id"`
	Title   string    `json:"title"`
	Type    string    `json:"type"`
	State   string    `json:"state"`
	Created time.Time `json:"created"`
}

// Source provides raw work item data. Implementations perform I/O and may fail.
type Source interface {
	FetchUpdates(ctx context.Context, id int) ([]history.StateChangeEvent, error)
	FetchDetails(ctx context.Context, id int) (Details, error)
}

// StateInfo is the per-state view exposed to presentation.
type StateInfo struct {
	Count     int     `json:"count"`
	TotalDays float64 `json:"totalDays"`
}

// WorkItem is a lazily evaluated, memoizing view over one work item.
// Every accessor fetches and computes on first use and caches the result
// for the lifetime of the WorkItem. Safe for concurrent use.
type WorkItem struct {
	id       int
	source   Source
	workflow history.Workflow
	clock    func() time.Time

	details  lazy[Details]
	updates  lazy[[]history.StateChangeEvent]
	report   lazy[history.Report]
	states   lazy[map[string]StateInfo]
	resolved lazy[int]
	cycle    lazy[*float64]
	lead     lazy[*float64]
}

// Option configures a WorkItem.
type Option func(*WorkItem)

// WithWorkflow sets the state names used for cycle time, lead time and the resolved count.
func WithWorkflow(wf history.Workflow) Option {
	return func(w *WorkItem) {
		w.workflow = wf.WithDefaults()
	}
}

// WithClock overrides the evaluation instant used to close open intervals.
func WithClock(clock func() time.Time) Option {
	return func(w *WorkItem) {
		w.clock = clock
	}
}

// New creates a view for the work item id. The source is not owned by the view.
func New(id int, source Source, opts ...Option) *WorkItem {
	w := &WorkItem{
		id:       id,
		source:   source,
		workflow: history.DefaultWorkflow(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ID returns the work item id.
func (w *WorkItem) ID() int {
	return w.id
}

// Workflow returns the state names this view evaluates against.
func (w *WorkItem) Workflow() history.Workflow {
	return w.workflow
}

// Details returns the item metadata.
func (w *WorkItem) Details(ctx context.Context) (Details, error) {
	return w.details.get(ctx, func(ctx context.Context) (Details, error) {
		d, err := w.source.FetchDetails(ctx, w.id)
		if err != nil {
			return Details{}, fmt.Errorf("fetch details for work item %d: %w", w.id, err)
		}
		if d.ID == 0 {
			d.ID = w.id
		}
		return d, nil
	})
}

// Updates returns a copy of the raw state change events of the item.
func (w *WorkItem) Updates(ctx context.Context) ([]history.StateChangeEvent, error) {
	events, err := w.updates.get(ctx, func(ctx context.Context) ([]history.StateChangeEvent, error) {
		events, err := w.source.FetchUpdates(ctx, w.id)
		if err != nil {
			return nil, fmt.Errorf("fetch updates for work item %d: %w", w.id, err)
		}
		log.Debug().Int("id", w.id).Int("events", len(events)).Msg("Fetched work item updates")
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(events), nil
}

// Report returns a copy of the unrounded state occupancy report.
func (w *WorkItem) Report(ctx context.Context) (history.Report, error) {
	report, err := w.report.get(ctx, func(ctx context.Context) (history.Report, error) {
		events, err := w.Updates(ctx)
		if err != nil {
			return history.Report{}, err
		}
		return history.AnalyzeStateTransitions(events, w.clock()), nil
	})
	if err != nil {
		return history.Report{}, err
	}
	report.TransitionCount = maps.Clone(report.TransitionCount)
	report.TimeInState = maps.Clone(report.TimeInState)
	report.Timeline = slices.Clone(report.Timeline)
	return report, nil
}

// StateInfo returns transition counts and days per state, rounded to two decimals.
func (w *WorkItem) StateInfo(ctx context.Context) (map[string]StateInfo, error) {
	info, err := w.states.get(ctx, func(ctx context.Context) (map[string]StateInfo, error) {
		report, err := w.Report(ctx)
		if err != nil {
			return nil, err
		}
		info := make(map[string]StateInfo, len(report.TransitionCount))
		for state, count := range report.TransitionCount {
			info[state] = StateInfo{
				Count:     count,
				TotalDays: roundTo(report.TimeInState[state], 2),
			}
		}
		return info, nil
	})
	if err != nil {
		return nil, err
	}
	return maps.Clone(info), nil
}

// ResolvedCount returns how many times the item entered the resolved state.
func (w *WorkItem) ResolvedCount(ctx context.Context) (int, error) {
	return w.resolved.get(ctx, func(ctx context.Context) (int, error) {
		events, err := w.Updates(ctx)
		if err != nil {
			return 0, err
		}
		return history.CountTransitions(events, w.workflow.ResolvedState, w.clock()), nil
	})
}

// CycleTime returns whole days from the first start-state transition to the
// last end-state transition, or nil when either boundary is missing.
func (w *WorkItem) CycleTime(ctx context.Context) (*float64, error) {
	return w.cycle.get(ctx, func(ctx context.Context) (*float64, error) {
		events, err := w.Updates(ctx)
		if err != nil {
			return nil, err
		}
		days := history.CalculateCycleTime(events, w.workflow.StartState, w.workflow.EndState, w.clock())
		return roundDays(days), nil
	})
}

// LeadTime returns whole days from creation to the last end-state transition,
// or nil when the item was never closed or has no creation date.
func (w *WorkItem) LeadTime(ctx context.Context) (*float64, error) {
	return w.lead.get(ctx, func(ctx context.Context) (*float64, error) {
		events, err := w.Updates(ctx)
		if err != nil {
			return nil, err
		}
		d, err := w.Details(ctx)
		if err != nil {
			return nil, err
		}
		days := history.CalculateLeadTime(events, d.Created, w.workflow.EndState, w.clock())
		return roundDays(days), nil
	})
}

// CycleTimeHours is CycleTime in hours. It inherits the whole-day rounding.
func (w *WorkItem) CycleTimeHours(ctx context.Context) (*float64, error) {
	return hours(w.CycleTime(ctx))
}

// LeadTimeHours is LeadTime in hours. It inherits the whole-day rounding.
func (w *WorkItem) LeadTimeHours(ctx context.Context) (*float64, error) {
	return hours(w.LeadTime(ctx))
}

// roundDays rounds half away from zero to whole days.
func roundDays(days *float64) *float64 {
	if days == nil {
		return nil
	}
	r := math.Round(*days)
	return &r
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func hours(days *float64, err error) (*float64, error) {
	if err != nil || days == nil {
		return nil, err
	}
	h := *days * 24
	return &h, nil
}
