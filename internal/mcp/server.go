// Package mcp exposes the running window manager to MCP clients over stdio.
// Every tool is a thin wrapper over the IPC control socket.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tagwm/internal/ipc"
	"github.com/1broseidon/tagwm/internal/wm"
)

const (
	ServerName    = "tagwm"
	ServerVersion = "0.1.0"
)

// Backend is the subset of the IPC client the tools use.
type Backend interface {
	Status() (*wm.Status, error)
	Clients() ([]wm.ClientInfo, error)
	Tags() ([]wm.TagInfo, error)
	Exec(command string, args ...string) error
}

var _ Backend = (*ipc.Client)(nil)

// Server is the MCP server for tagwm.
type Server struct {
	mcpServer *mcpsdk.Server
	backend   Backend
	logger    *slog.Logger
}

// NewServer creates an MCP server that talks to the window manager through
// backend. A nil backend uses the default IPC socket.
func NewServer(backend Backend, logger *slog.Logger) *Server {
	if backend == nil {
		backend = ipc.NewClient()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		backend: backend,
		logger:  logger.With("component", "mcp"),
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Serve is Run under the name a supervisor expects.
func (s *Server) Serve(ctx context.Context) error {
	return s.Run(ctx)
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Summarise the running window manager: session id, current tag, focused window, number of managed clients and docks, uptime and screen size.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_clients",
		Description: "List every managed window with its id, tag, title, class, user tag, floating/sticky/maximized/fullscreen flags and geometry. Optionally filter by tag or class.",
	}, s.handleListClients)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_tags",
		Description: "List the configured tags (virtual desktops) in order, with description, layout, client count and which one is current.",
	}, s.handleListTags)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "select_tag",
		Description: "Switch to a tag. Sticky windows follow the switch.",
	}, s.handleSelectTag)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Focus a window by id or by title substring, switching to its tag first.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "run_command",
		Description: "Run any configured window manager command as if its key had been pressed, e.g. zoom, overview, toggle-floating, shift-window left, expand-width grow or spawn xterm.",
	}, s.handleRunCommand)
}
