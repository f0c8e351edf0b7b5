package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papapumpkin/comet/internal/stepper"
	"github.com/papapumpkin/comet/internal/store"
	"github.com/papapumpkin/comet/internal/telemetry"
)

// mcpClientSession connects an in-memory MCP client to the server's
// underlying MCP server and returns the client session. Both ends are
// closed when the test finishes.
func mcpClientSession(t *testing.T, srv *Server) *mcp.ClientSession {
	t.Helper()

	ctx := context.Background()
	ct, st := mcp.NewInMemoryTransports()

	ss, err := srv.mcp.Connect(ctx, st, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })

	return cs
}

// callTool calls a tool and decodes its structured output into out.
func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any, out any) {
	t.Helper()
	result, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool %s: %v", name, err)
	}
	if result.IsError {
		t.Fatalf("CallTool %s returned error: %v", name, result.Content)
	}
	raw, err := json.Marshal(result.StructuredContent)
	if err != nil {
		t.Fatalf("marshal StructuredContent: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("unmarshal %s output: %v", name, err)
	}
}

// saveSearchTrace exports a small linear-search trace to dir.
func saveSearchTrace(t *testing.T, dir, name string) string {
	t.Helper()
	tr, err := stepper.Collect(stepper.NewLinearSearch([]float64{1, 2, 3}, 2))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := store.SaveTrace(path, tr); err != nil {
		t.Fatalf("SaveTrace: %v", err)
	}
	return path
}

func TestListAlgorithmsTool(t *testing.T) {
	t.Parallel()

	srv := NewServer(0)
	cs := mcpClientSession(t, srv)

	var out listAlgorithmsOutput
	callTool(t, cs, "list_algorithms", map[string]any{}, &out)

	want := []string{"dijkstra", "kruskal", "linearsearch", "mergesort", "quicksort"}
	if len(out.Algorithms) != len(want) {
		t.Fatalf("algorithms = %v, want %v", out.Algorithms, want)
	}
	for i, name := range want {
		if out.Algorithms[i] != name {
			t.Errorf("algorithms[%d] = %q, want %q", i, out.Algorithms[i], name)
		}
	}
}

// waitForTraceFiles polls the server's index until it holds exactly want
// files or the deadline passes.
func waitForTraceFiles(t *testing.T, srv *Server, want int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		files := srv.TraceFiles()
		if len(files) == want {
			return files
		}
		if time.Now().After(deadline) {
			t.Fatalf("trace index = %v, want %d files", files, want)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestListTracesReflectsDirectoryChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := saveSearchTrace(t, dir, "first.json")

	srv := NewServer(0)
	if err := srv.WatchTraces(dir); err != nil {
		t.Fatalf("WatchTraces: %v", err)
	}
	t.Cleanup(func() { srv.Stop(context.Background()) })

	// The pre-existing file is indexed by the initial scan.
	files := waitForTraceFiles(t, srv, 1)
	if files[0] != first {
		t.Fatalf("indexed %q, want %q", files[0], first)
	}

	second := saveSearchTrace(t, dir, "second.json")
	files = waitForTraceFiles(t, srv, 2)
	if files[1] != second {
		t.Errorf("indexed %v, want %q last", files, second)
	}

	if err := os.Remove(first); err != nil {
		t.Fatalf("remove: %v", err)
	}
	files = waitForTraceFiles(t, srv, 1)
	if files[0] != second {
		t.Errorf("indexed %v after removal, want only %q", files, second)
	}

	var out listTracesOutput
	cs := mcpClientSession(t, srv)
	callTool(t, cs, "list_traces", map[string]any{}, &out)
	if len(out.Files) != 1 || out.Files[0] != second {
		t.Errorf("list_traces = %v, want [%q]", out.Files, second)
	}
}

func TestLoadTraceRecordsTelemetry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := saveSearchTrace(t, dir, "run.json")
	telPath := filepath.Join(dir, "telemetry.jsonl")

	tel, err := telemetry.NewEmitter(telPath)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}

	srv := NewServer(0)
	srv.SetTelemetry(tel)
	cs := mcpClientSession(t, srv)

	var out runOutput
	callTool(t, cs, "load_trace", map[string]any{"path": path}, &out)
	if out.Events == 0 {
		t.Fatal("load_trace reported zero events")
	}
	if err := tel.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(telPath)
	if err != nil {
		t.Fatalf("read telemetry: %v", err)
	}
	if !strings.Contains(string(raw), telemetry.KindTraceLoaded) {
		t.Errorf("telemetry log missing %q record:\n%s", telemetry.KindTraceLoaded, raw)
	}
}
