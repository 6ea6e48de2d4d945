package mcp

import (
	"context"
	"fmt"

	"azdo-flow/internal/visuals"
	"azdo-flow/internal/workitem"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// HistoryResult is the get_work_item_history payload.
type HistoryResult struct {
	workitem.Summary
	Charts *Charts `json:"charts,omitempty"`
}

// Charts holds Mermaid renderings of one work item.
type Charts struct {
	TimeInState string `json:"time_in_state,omitempty"`
	Timeline    string `json:"timeline,omitempty"`
}

// QueryItem is the compact per-item row of list_query_work_items.
type QueryItem struct {
	ID            int                           `json:"id"`
	Title         string                        `json:"title"`
	Type          string                        `json:"type"`
	State         string                        `json:"state"`
	ResolvedCount int                           `json:"resolvedCount"`
	CycleTimeDays *float64                      `json:"cycleTimeDays"`
	LeadTimeDays  *float64                      `json:"leadTimeDays"`
	States        map[string]workitem.StateInfo `json:"states"`
}

// QueryResult is the list_query_work_items payload.
type QueryResult struct {
	QueryID string      `json:"queryId"`
	Count   int         `json:"count"`
	Items   []QueryItem `json:"items"`
}

func (s *Server) handleGetWorkItemHistory(ctx context.Context, req *mcp.CallToolRequest, in HistoryInput) (*mcp.CallToolResult, any, error) {
	data, err := s.getWorkItemHistory(ctx, in)
	return toolResult("get_work_item_history", data, err)
}

func (s *Server) handleListQueryWorkItems(ctx context.Context, req *mcp.CallToolRequest, in QueryInput) (*mcp.CallToolResult, any, error) {
	data, err := s.listQueryWorkItems(ctx, in)
	return toolResult("list_query_work_items", data, err)
}

func (s *Server) getWorkItemHistory(ctx context.Context, in HistoryInput) (*HistoryResult, error) {
	if in.ID <= 0 {
		return nil, fmt.Errorf("invalid work item id %d", in.ID)
	}
	log.Info().Int("id", in.ID).Msg("Analyzing work item history")

	items := s.catalog.Items([]int{in.ID}, s.itemOptions()...)
	summary, err := items[0].Summary(ctx)
	if err != nil {
		return nil, err
	}

	res := &HistoryResult{Summary: summary}
	if in.IncludeCharts {
		res.Charts = &Charts{
			TimeInState: visuals.GenerateStateDurationChart(summary, s.workflow),
			Timeline:    visuals.GenerateTimelineChart(summary),
		}
	}
	return res, nil
}

func (s *Server) listQueryWorkItems(ctx context.Context, in QueryInput) (*QueryResult, error) {
	queryID := in.QueryID
	if queryID == "" {
		queryID = s.queryID
	}
	if queryID == "" {
		return nil, fmt.Errorf("no query_id given and no default query configured (AZDO_QUERY_ID or AZDO_QUERY_URL)")
	}

	items, err := s.catalog.QueryItems(ctx, queryID, s.itemOptions()...)
	if err != nil {
		return nil, err
	}
	summaries, err := workitem.LoadAll(ctx, items, 0)
	if err != nil {
		return nil, err
	}

	res := &QueryResult{QueryID: queryID, Count: len(summaries), Items: make([]QueryItem, 0, len(summaries))}
	for _, sum := range summaries {
		res.Items = append(res.Items, QueryItem{
			ID:            sum.ID,
			Title:         sum.Title,
			Type:          sum.Type,
			State:         sum.State,
			ResolvedCount: sum.ResolvedCount,
			CycleTimeDays: sum.CycleTimeDays,
			LeadTimeDays:  sum.LeadTimeDays,
			States:        sum.States,
		})
	}
	return res, nil
}
