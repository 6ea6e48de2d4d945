package workitem

import (
	"context"
	"time"

	"azdo-flow/internal/history"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Summary is a fully evaluated snapshot of a WorkItem for presentation.
type Summary struct {
	ID            int                  `json:"id"`
	Title         string               `json:"title"`
	Type          string               `json:"type"`
	State         string               `json:"state"`
	Created       time.Time            `json:"created"`
	States        map[string]StateInfo `json:"states"`
	Timeline      []history.Segment    `json:"timeline,omitempty"`
	ResolvedCount int                  `json:"resolvedCount"`
	CycleTimeDays *float64             `json:"cycleTimeDays"`
	LeadTimeDays  *float64             `json:"leadTimeDays"`
}

// Summary evaluates every slot of the view.
func (w *WorkItem) Summary(ctx context.Context) (Summary, error) {
	d, err := w.Details(ctx)
	if err != nil {
		return Summary{}, err
	}
	report, err := w.Report(ctx)
	if err != nil {
		return Summary{}, err
	}
	states, err := w.StateInfo(ctx)
	if err != nil {
		return Summary{}, err
	}
	resolved, err := w.ResolvedCount(ctx)
	if err != nil {
		return Summary{}, err
	}
	cycle, err := w.CycleTime(ctx)
	if err != nil {
		return Summary{}, err
	}
	lead, err := w.LeadTime(ctx)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		ID:            w.id,
		Title:         orNA(d.Title),
		Type:          orNA(d.Type),
		State:         orNA(d.State),
		Created:       d.Created,
		States:        states,
		Timeline:      report.Timeline,
		ResolvedCount: resolved,
		CycleTimeDays: cycle,
		LeadTimeDays:  lead,
	}, nil
}

// LoadAll evaluates the items with at most limit concurrent loads and returns
// their summaries in input order. The first failure cancels the rest.
func LoadAll(ctx context.Context, items []*WorkItem, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 4
	}

	summaries := make([]Summary, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, item := range items {
		g.Go(func() error {
			s, err := item.Summary(gctx)
			if err != nil {
				return err
			}
			summaries[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Debug().Int("items", len(items)).Msg("Work items loaded")
	return summaries, nil
}
