// Package mcp exposes a script runner as a Model Context Protocol server.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/redscript"
	"github.com/aretw0/redscript/internal/logging"
	"github.com/aretw0/redscript/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolRunScript is the name of the tool that runs a script.
const ToolRunScript = "run_script"

// Runner is the part of redscript.Runner the server needs.
type Runner interface {
	Run(ctx context.Context, path string, keys, args []domain.Param) (any, error)
}

// RunArgs are the arguments of the run_script tool.
type RunArgs struct {
	Script string   `json:"script"`
	Keys   []string `json:"keys,omitempty"`
	Args   []string `json:"args,omitempty"`
}

// RunResult is the structured output of the run_script tool.
type RunResult struct {
	Script string `json:"script" jsonschema_description:"The script that was run"`
	Result any    `json:"result" jsonschema_description:"The reply of the store"`
}

// Server wraps a Runner and exposes it as an MCP Server.
type Server struct {
	runner    Runner
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used for tool failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(runner Runner, opts ...Option) *Server {
	s := &Server{
		runner:    runner,
		mcpServer: server.NewMCPServer("redscript-mcp", strings.TrimSpace(redscript.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	tool := mcp.NewTool(ToolRunScript,
		mcp.WithDescription("Run a Lua script against Redis. The script is registered once and then called by hash."),
		mcp.WithString("script", mcp.Required(), mcp.Description("Script path relative to the base directory, with or without extension")),
		mcp.WithArray("keys", mcp.Description("Values for KEYS"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithArray("args", mcp.Description("Values for ARGV"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithOutputSchema[RunResult](),
	)
	s.mcpServer.AddTool(tool, mcp.NewStructuredToolHandler(s.handleRunScript))
}

func (s *Server) handleRunScript(ctx context.Context, _ mcp.CallToolRequest, args RunArgs) (RunResult, error) {
	return s.RunScript(ctx, args)
}

// RunScript runs the requested script. Only paths below the runner's base
// directory are accepted.
func (s *Server) RunScript(ctx context.Context, args RunArgs) (RunResult, error) {
	if args.Script == "" || !filepath.IsLocal(args.Script) {
		return RunResult{}, errors.New("script must be a relative path below the base directory")
	}

	res, err := s.runner.Run(ctx, args.Script, domain.Values(args.Keys...), domain.Values(args.Args...))
	if err != nil {
		s.logger.Warn("run_script failed", "script", args.Script, "err", err)
		return RunResult{}, err
	}
	return RunResult{Script: args.Script, Result: res}, nil
}
