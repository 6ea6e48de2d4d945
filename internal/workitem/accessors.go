package workitem

import (
	"context"

	"azdo-flow/internal/history"
)

// Title returns the item title, or NotAvailable.
func (w *WorkItem) Title(ctx context.Context) (string, error) {
	d, err := w.Details(ctx)
	return orNA(d.Title), err
}

// CurrentState returns the state the item is in now, or NotAvailable.
func (w *WorkItem) CurrentState(ctx context.Context) (string, error) {
	d, err := w.Details(ctx)
	return orNA(d.State), err
}

// Type returns the work item type, or NotAvailable.
func (w *WorkItem) Type(ctx context.Context) (string, error) {
	d, err := w.Details(ctx)
	return orNA(d.Type), err
}

// CreatedDate returns the creation date as RFC 3339, or NotAvailable.
func (w *WorkItem) CreatedDate(ctx context.Context) (string, error) {
	d, err := w.Details(ctx)
	if err != nil || d.Created.IsZero() {
		return NotAvailable, err
	}
	return d.Created.Format("2006-01-02T15:04:05Z07:00"), nil
}

// StateCount returns the number of transitions into state.
func (w *WorkItem) StateCount(ctx context.Context, state string) (int, error) {
	info, err := w.StateInfo(ctx)
	if err != nil {
		return 0, err
	}
	return info[state].Count, nil
}

// StateTime returns the days spent in state, rounded to two decimals.
func (w *WorkItem) StateTime(ctx context.Context, state string) (float64, error) {
	info, err := w.StateInfo(ctx)
	if err != nil {
		return 0, err
	}
	return info[state].TotalDays, nil
}

// StateTimeHours returns StateTime in hours.
func (w *WorkItem) StateTimeHours(ctx context.Context, state string) (float64, error) {
	days, err := w.StateTime(ctx, state)
	return days * 24, err
}

func (w *WorkItem) NewCount(ctx context.Context) (int, error) {
	return w.StateCount(ctx, history.StateNew)
}

func (w *WorkItem) NewTime(ctx context.Context) (float64, error) {
	return w.StateTime(ctx, history.StateNew)
}

func (w *WorkItem) ActiveCount(ctx context.Context) (int, error) {
	return w.StateCount(ctx, history.StateActive)
}

func (w *WorkItem) ActiveTime(ctx context.Context) (float64, error) {
	return w.StateTime(ctx, history.StateActive)
}

func (w *WorkItem) CodeReviewCount(ctx context.Context) (int, error) {
	return w.StateCount(ctx, history.StateCodeReview)
}

func (w *WorkItem) CodeReviewTime(ctx context.Context) (float64, error) {
	return w.StateTime(ctx, history.StateCodeReview)
}

func (w *WorkItem) ResolvedTime(ctx context.Context) (float64, error) {
	return w.StateTime(ctx, history.StateResolved)
}

func (w *WorkItem) ClosedCount(ctx context.Context) (int, error) {
	return w.StateCount(ctx, history.StateClosed)
}

func (w *WorkItem) ClosedTime(ctx context.Context) (float64, error) {
	return w.StateTime(ctx, history.StateClosed)
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
