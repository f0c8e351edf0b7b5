package server

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papapumpkin/comet/internal/playback"
)

// snapshotOutput is the renderable state returned by the playback tools.
type snapshotOutput struct {
	Step    int            `json:"step"`
	Type    string         `json:"type"`
	Details string         `json:"details"`
	Data    map[string]any `json:"data"`
	Index   int            `json:"index"`
	Length  int            `json:"length"`
}

// seekInput is the input schema for the seek tool.
type seekInput struct {
	TraceID int64 `json:"trace_id" jsonschema:"Playback session ID from run_algorithm or load_trace"`
	Index   int   `json:"index" jsonschema:"0-based event index to jump to"`
}

// stepInput is the input schema for the step tool.
type stepInput struct {
	TraceID  int64 `json:"trace_id" jsonschema:"Playback session ID"`
	Backward bool  `json:"backward,omitempty" jsonschema:"Step to the previous event instead of the next"`
}

// snapshotInput is the input schema for the snapshot tool.
type snapshotInput struct {
	TraceID int64 `json:"trace_id" jsonschema:"Playback session ID"`
}

// toSnapshotOutput projects an engine's current state into the tool output.
func toSnapshotOutput(e *playback.Engine) snapshotOutput {
	snap := e.Snapshot()
	return snapshotOutput{
		Step:    snap.Step,
		Type:    snap.Type,
		Details: snap.Details,
		Data:    snap.Data,
		Index:   e.Index(),
		Length:  e.Len(),
	}
}

// registerPlaybackTools registers the seek, step and snapshot MCP tools.
func (s *Server) registerPlaybackTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "seek",
		Description: "Jump a playback session to an event index and return the snapshot there",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input seekInput) (*mcp.CallToolResult, snapshotOutput, error) {
		sess, err := s.getSession(input.TraceID)
		if err != nil {
			return nil, snapshotOutput{}, err
		}
		if _, err := sess.engine.Seek(input.Index); err != nil {
			return nil, snapshotOutput{}, fmt.Errorf("seek: %w", err)
		}
		return nil, toSnapshotOutput(sess.engine), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "step",
		Description: "Advance a playback session one event forward or backward; at either end the position is unchanged",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input stepInput) (*mcp.CallToolResult, snapshotOutput, error) {
		sess, err := s.getSession(input.TraceID)
		if err != nil {
			return nil, snapshotOutput{}, err
		}
		if input.Backward {
			sess.engine.Prev()
		} else {
			sess.engine.Next()
		}
		return nil, toSnapshotOutput(sess.engine), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "snapshot",
		Description: "Return the renderable snapshot at a playback session's current position",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input snapshotInput) (*mcp.CallToolResult, snapshotOutput, error) {
		sess, err := s.getSession(input.TraceID)
		if err != nil {
			return nil, snapshotOutput{}, err
		}
		return nil, toSnapshotOutput(sess.engine), nil
	})
}
