package mcp

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = "Analyzes how Azure DevOps work items moved through their workflow states. " +
	"Use 'get_work_item_history' for one item and 'list_query_work_items' for every item of a saved query. " +
	"All durations are in days. Cycle time runs from the first transition into the start state to the last transition into the end state; " +
	"lead time runs from creation to the last transition into the end state. A null metric means the item never reached the boundary state."

// HistoryInput selects one work item.
type HistoryInput struct {
	ID            int  `json:"id" jsonschema:"the numeric work item id"`
	IncludeCharts bool `json:"include_charts,omitempty" jsonschema:"also return Mermaid charts of time in state and the state timeline"`
}

// QueryInput selects a saved query.
type QueryInput struct {
	QueryID string `json:"query_id,omitempty" jsonschema:"saved query GUID; defaults to the configured query"`
}

func (s *Server) registerTools() error {
	historySchema, err := jsonschema.For[HistoryInput](nil)
	if err != nil {
		return fmt.Errorf("history tool schema: %w", err)
	}
	historySchema.Required = []string{"id"}
	if id, ok := historySchema.Properties["id"]; ok {
		minID := 1.0
		id.Minimum = &minID
	}

	querySchema, err := jsonschema.For[QueryInput](nil)
	if err != nil {
		return fmt.Errorf("query tool schema: %w", err)
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "get_work_item_history",
		Description: "Analyze the state history of a single Azure DevOps work item: transitions into each state, days spent per state, " +
			"the ordered timeline of state visits, how often it was resolved, cycle time and lead time (whole days). \n\n" +
			"Repeated visits to a state (e.g. Active -> Code Review -> Active) are summed; a high transition count signals rework.",
		InputSchema: historySchema,
	}, s.handleGetWorkItemHistory)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "list_query_work_items",
		Description: "Run a saved Azure DevOps work item query and summarize every returned item (state, resolved count, cycle and lead time, " +
			"days per state). Use 'get_work_item_history' afterwards to drill into an individual item.",
		InputSchema: querySchema,
	}, s.handleListQueryWorkItems)

	return nil
}
