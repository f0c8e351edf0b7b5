package server

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papapumpkin/comet/internal/playback"
	"github.com/papapumpkin/comet/internal/problem"
	"github.com/papapumpkin/comet/internal/stepper"
	"github.com/papapumpkin/comet/internal/store"
	"github.com/papapumpkin/comet/internal/telemetry"
)

// edgeInput is one edge of a graph problem.
type edgeInput struct {
	From   string  `json:"from" jsonschema:"Source node ID"`
	To     string  `json:"to" jsonschema:"Destination node ID"`
	Weight float64 `json:"weight" jsonschema:"Edge weight"`
}

// runInput is the input schema for the run_algorithm tool.
type runInput struct {
	Algorithm  string      `json:"algorithm" jsonschema:"One of dijkstra kruskal quicksort mergesort linearsearch"`
	Values     []float64   `json:"values,omitempty" jsonschema:"Array input for the sort and search algorithms"`
	Target     float64     `json:"target,omitempty" jsonschema:"Search target for linearsearch"`
	Start      string      `json:"start,omitempty" jsonschema:"Start node for dijkstra"`
	Undirected bool        `json:"undirected,omitempty" jsonschema:"Mirror each edge for undirected graphs"`
	Nodes      []string    `json:"nodes,omitempty" jsonschema:"Isolated node IDs"`
	Edges      []edgeInput `json:"edges,omitempty" jsonschema:"Graph edges"`
}

// runOutput is the output schema for the run_algorithm tool.
type runOutput struct {
	TraceID int64 `json:"trace_id"`
	Events  int   `json:"events"`
}

// loadInput is the input schema for the load_trace tool.
type loadInput struct {
	Path string `json:"path" jsonschema:"Path of an exported trace JSON file"`
}

// listAlgorithmsInput is the (empty) input schema for the list_algorithms
// tool.
type listAlgorithmsInput struct{}

// listAlgorithmsOutput is the output schema for the list_algorithms tool.
type listAlgorithmsOutput struct {
	Algorithms []string `json:"algorithms" jsonschema:"Sorted algorithm names accepted by run_algorithm"`
}

// registerRunTools registers the run_algorithm, load_trace and
// list_algorithms MCP tools.
func (s *Server) registerRunTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "run_algorithm",
		Description: "Run an instrumented algorithm and open a playback session over its trace",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input runInput) (*mcp.CallToolResult, runOutput, error) {
		if input.Algorithm == "" {
			return nil, runOutput{}, fmt.Errorf("algorithm is required")
		}

		p := problem.Problem{
			Algorithm:  input.Algorithm,
			Values:     input.Values,
			Target:     input.Target,
			Start:      input.Start,
			Undirected: input.Undirected,
			Nodes:      input.Nodes,
		}
		for _, e := range input.Edges {
			p.Edges = append(p.Edges, problem.EdgeSpec{From: e.From, To: e.To, Weight: e.Weight})
		}

		t, err := stepper.Run(input.Algorithm, p.Input())
		if err != nil {
			return nil, runOutput{}, fmt.Errorf("running %s: %w", input.Algorithm, err)
		}
		engine, err := playback.NewEngine(t)
		if err != nil {
			return nil, runOutput{}, fmt.Errorf("opening playback: %w", err)
		}

		id := s.addSession(input.Algorithm, engine)
		return nil, runOutput{TraceID: id, Events: t.Len()}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "load_trace",
		Description: "Load an exported trace file and open a playback session over it",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input loadInput) (*mcp.CallToolResult, runOutput, error) {
		if input.Path == "" {
			return nil, runOutput{}, fmt.Errorf("path is required")
		}

		t, err := store.LoadTrace(input.Path)
		if err != nil {
			return nil, runOutput{}, fmt.Errorf("loading trace: %w", err)
		}
		engine, err := playback.NewEngine(t)
		if err != nil {
			return nil, runOutput{}, fmt.Errorf("opening playback: %w", err)
		}

		id := s.addSession("", engine)
		_ = s.tel.Emit(telemetry.Record{Kind: telemetry.KindTraceLoaded,
			Data: map[string]any{"path": input.Path, "events": t.Len()}})
		return nil, runOutput{TraceID: id, Events: t.Len()}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_algorithms",
		Description: "List the algorithm names accepted by run_algorithm",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ listAlgorithmsInput) (*mcp.CallToolResult, listAlgorithmsOutput, error) {
		return nil, listAlgorithmsOutput{Algorithms: stepper.Algorithms()}, nil
	})
}
