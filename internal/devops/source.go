package devops

import (
	"context"

	"azdo-flow/internal/history"
	"azdo-flow/internal/workitem"
)

// Source adapts a Client to the workitem.Source interface.
type Source struct {
	client Client
}

// NewSource wraps client so work item views can fetch from Azure DevOps.
func NewSource(client Client) *Source {
	return &Source{client: client}
}

func (s *Source) FetchUpdates(ctx context.Context, id int) ([]history.StateChangeEvent, error) {
	updates, err := s.client.GetWorkItemUpdates(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToStateEvents(updates), nil
}

func (s *Source) FetchDetails(ctx context.Context, id int) (workitem.Details, error) {
	dto, err := s.client.GetWorkItem(ctx, id)
	if err != nil {
		return workitem.Details{}, err
	}
	return ToDetails(dto), nil
}

// QueryItems resolves a saved query into work item views sharing this source.
func (s *Source) QueryItems(ctx context.Context, queryID string, opts ...workitem.Option) ([]*workitem.WorkItem, error) {
	ids, err := s.client.QueryWorkItemIDs(ctx, queryID)
	if err != nil {
		return nil, err
	}
	return s.Items(ids, opts...), nil
}

// Items creates one view per id.
func (s *Source) Items(ids []int, opts ...workitem.Option) []*workitem.WorkItem {
	items := make([]*workitem.WorkItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, workitem.New(id, s, opts...))
	}
	return items
}
