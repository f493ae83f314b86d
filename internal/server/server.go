// Package server composes the MCP server and runs it over stdio or HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/reaver89/time-tracker/internal/tools"
	"github.com/rs/zerolog"
)

// Name is the server name reported to MCP clients
const Name = "tempo-mcp"

// Version is set at build time with -ldflags "-X .../internal/server.Version=..."
var Version = "dev"

const shutdownTimeout = 10 * time.Second

// New creates the MCP server with every tool registered
func New(deps *tools.Deps) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(
		Name,
		Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
		mcpserver.WithInstructions(instructions()),
	)
	tools.Register(s, deps)
	return s
}

// ServeStdio serves MCP over stdin/stdout until stdin is closed
func ServeStdio(s *mcpserver.MCPServer, log zerolog.Logger) error {
	errLog := stdlog.New(log.With().Str("transport", "stdio").Logger(), "", 0)
	return mcpserver.ServeStdio(s, mcpserver.WithErrorLogger(errLog))
}

// NewRouter mounts the streamable HTTP transport on /mcp next to /healthz
func NewRouter(s *mcpserver.MCPServer, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s))

	return r
}

// ServeHTTP serves MCP over HTTP on addr until ctx is cancelled
func ServeHTTP(ctx context.Context, s *mcpserver.MCPServer, addr string, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(s, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("serving MCP over HTTP on /mcp")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		log.Info().Msg("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		return nil
	}
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Debug().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int64("duration_ms", time.Since(start).Milliseconds()).
					Msg("http request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func instructions() string {
	return `Tempo time tracking for Jira.

Use log_time or bulk_log_time to record work on Jira issues, list_issues to
find issue keys, time_summary for your own logged vs required time,
team_worklogs for the members of the teams you lead, get_plans for planned
allocations and team_report for timesheets across several people.

Durations accept 2h, 30m, 1h30m or 1.5h. Dates are YYYY-MM-DD. Reporting
tools take period today, week (Monday to Friday), month or custom with
from and to.`
}
