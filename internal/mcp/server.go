package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"azdo-flow/internal/devops"
	"azdo-flow/internal/history"
	"azdo-flow/internal/workitem"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

const (
	serverName    = "azdo-flow"
	serverVersion = "0.1.0"
)

// Server exposes work item history analysis as MCP tools.
type Server struct {
	catalog  workitem.Catalog
	queryID  string
	workflow history.Workflow
	mcp      *mcp.Server
}

// NewServer creates an MCP server answering from catalog. queryID is the saved
// query used when a tool call does not name one.
func NewServer(catalog workitem.Catalog, queryID string, wf history.Workflow) (*Server, error) {
	s := &Server{
		catalog:  catalog,
		queryID:  queryID,
		workflow: wf.WithDefaults(),
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		Instructions: serverInstructions,
	})
	if err := s.registerTools(); err != nil {
		return nil, err
	}
	return s, nil
}

// Serve runs the server over stdin/stdout until the client disconnects or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Str("server", serverName).Msg("MCP server listening on stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// Connect attaches the server to an arbitrary transport.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcp.Connect(ctx, t, nil)
}

func (s *Server) itemOptions() []workitem.Option {
	return []workitem.Option{workitem.WithWorkflow(s.workflow)}
}

// toolResult wraps a handler outcome the way MCP clients expect: JSON text on
// success, an error result the model can read otherwise.
func toolResult(name string, data any, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		log.Error().Err(err).Str("tool", name).Msg("Tool call failed")
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: describeError(err)}},
		}, nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: formatResult(data)}},
	}, nil, nil
}

func formatResult(data any) string {
	out, _ := json.MarshalIndent(data, "", "  ")
	return string(out)
}

func describeError(err error) string {
	switch {
	case errors.Is(err, devops.ErrNotFound):
		return fmt.Sprintf("Not found: %v. Check the work item id or query id.", err)
	case errors.Is(err, devops.ErrUnauthorized):
		return fmt.Sprintf("Azure DevOps rejected the credentials: %v. The personal access token needs Work Items (Read) scope.", err)
	case errors.Is(err, devops.ErrRateLimited):
		return fmt.Sprintf("Azure DevOps is throttling requests: %v. Retry later.", err)
	default:
		return err.Error()
	}
}
