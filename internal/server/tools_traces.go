package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// listTracesInput is the (empty) input schema for the list_traces tool.
type listTracesInput struct{}

// listTracesOutput is the output schema for the list_traces tool.
type listTracesOutput struct {
	Files []string `json:"files" jsonschema:"Exported trace files in the watched directory"`
}

// registerTraceTools registers the list_traces MCP tool over the watched
// trace-file index.
func (s *Server) registerTraceTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_traces",
		Description: "List exported trace files available to load_trace",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ listTracesInput) (*mcp.CallToolResult, listTracesOutput, error) {
		return nil, listTracesOutput{Files: s.TraceFiles()}, nil
	})
}
