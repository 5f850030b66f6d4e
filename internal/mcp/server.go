package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/underlay/internal/wallpaper"
)

const (
	ServerName    = "underlay"
	ServerVersion = "0.1.0"
)

// Server is the MCP server exposing desktop relocation tools. Relocation
// records live as long as the server process.
type Server struct {
	mcpServer *mcpsdk.Server
	api       *wallpaper.API
}

// NewServer creates a new MCP server backed by api.
func NewServer(api *wallpaper.API) *Server {
	s := &Server{api: api}

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

// RestoreAll restores every window relocated through this server.
func (s *Server) RestoreAll() map[string]error {
	failed := s.api.Manager().RestoreAll()
	out := make(map[string]error, len(failed))
	for id, err := range failed {
		out[wallpaper.FormatHandle(id)] = err
	}
	return out
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_window_behind_desktop",
		Description: "Reparent a window underneath the desktop icons so it acts as a live wallpaper. The handle is the window's native handle as a decimal string. Returns success=false when the window does not exist, the desktop container cannot be found, or the window system refuses the move.",
	}, s.handleSetWindowBehindDesktop)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_window",
		Description: "Move a window previously placed behind the desktop back to its original parent, position, size and stacking. Restoring a window that was never relocated succeeds without doing anything.",
	}, s.handleRestoreWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_worker_window",
		Description: "Find the desktop background container window (WorkerW on Windows, the EWMH desktop window on X11). The lookup is repeated on every call.",
	}, s.handleGetWorkerWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "is_valid_window",
		Description: "Check whether a decimal window handle refers to a live window.",
	}, s.handleIsValidWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_relocations",
		Description: "List windows currently placed behind the desktop by this server, with their original parent and screen bounds.",
	}, s.handleListRelocations)
}
