// Package server exposes the steppers and the playback engine as MCP tools
// over SSE/HTTP, so external frontends can run algorithms and navigate
// traces without linking the engine directly.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papapumpkin/comet/internal/playback"
	"github.com/papapumpkin/comet/internal/store"
	"github.com/papapumpkin/comet/internal/telemetry"
)

// Version is the comet server version, matching the module.
const Version = "0.1.0"

// session is one loaded trace with its playback cursor.
type session struct {
	algorithm string
	engine    *playback.Engine
}

// Server is the in-process comet MCP server. It registers run and playback
// tools and serves them over SSE/HTTP.
type Server struct {
	mcp     *mcp.Server
	port    int
	srv     *http.Server
	ln      net.Listener
	tel     *telemetry.Emitter
	watcher *store.Watcher

	mu         sync.Mutex
	sessions   map[int64]*session
	nextID     int64
	traceFiles map[string]struct{}
}

// NewServer creates a comet MCP server with its tool registrations.
func NewServer(port int) *Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "comet",
			Version: Version,
		},
		nil,
	)

	s := &Server{
		mcp:        mcpServer,
		port:       port,
		sessions:   make(map[int64]*session),
		nextID:     1,
		traceFiles: make(map[string]struct{}),
	}

	s.registerRunTools()
	s.registerPlaybackTools()
	s.registerTraceTools()

	return s
}

// SetTelemetry attaches an emitter for operational records. A nil emitter
// disables telemetry.
func (s *Server) SetTelemetry(tel *telemetry.Emitter) { s.tel = tel }

// WatchTraces indexes the exported trace files in dir and keeps the index
// fresh through a directory watcher, so the list_traces tool reflects
// writes and removals made while the server runs.
func (s *Server) WatchTraces(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return fmt.Errorf("server: scan %s: %w", dir, err)
	}

	w, err := store.NewWatcher(dir)
	if err != nil {
		return fmt.Errorf("server: watch %s: %w", dir, err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("server: watch %s: %w", dir, err)
	}

	s.mu.Lock()
	for _, m := range matches {
		s.traceFiles[m] = struct{}{}
	}
	s.watcher = w
	s.mu.Unlock()

	go func() {
		for change := range w.Changes {
			s.mu.Lock()
			switch change.Kind {
			case store.ChangeRemoved:
				delete(s.traceFiles, change.File)
			default:
				s.traceFiles[change.File] = struct{}{}
			}
			s.mu.Unlock()
		}
	}()
	return nil
}

// TraceFiles returns the indexed trace file paths in sorted order.
func (s *Server) TraceFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.traceFiles))
	for f := range s.traceFiles {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// addSession registers a playback engine and returns its trace ID.
func (s *Server) addSession(algorithm string, engine *playback.Engine) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.sessions[id] = &session{algorithm: algorithm, engine: engine}
	return id
}

// getSession looks up a session by trace ID.
func (s *Server) getSession(id int64) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown trace id %d", id)
	}
	return sess, nil
}

// Start begins serving the MCP server over SSE/HTTP on the configured
// port. It returns once the listener is accepting connections.
func (s *Server) Start() error {
	handler := mcp.NewSSEHandler(func(_ *http.Request) *mcp.Server {
		return s.mcp
	}, nil)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("server: listen on port %d: %w", s.port, err)
	}
	s.ln = ln

	s.srv = &http.Server{Handler: handler}

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server: serve error: %v\n", err)
		}
	}()

	return nil
}

// Addr returns the listener address, useful for tests with port 0.
func (s *Server) Addr() net.Addr {
	if s.ln != nil {
		return s.ln.Addr()
	}
	return nil
}

// Stop gracefully shuts down the HTTP server and the trace watcher.
func (s *Server) Stop(ctx context.Context) error {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
