package workitem

import "context"

// Catalog hands out work item views, either by id or by running a saved query.
type Catalog interface {
	Items(ids []int, opts ...Option) []*WorkItem
	QueryItems(ctx context.Context, queryID string, opts ...Option) ([]*WorkItem, error)
}
