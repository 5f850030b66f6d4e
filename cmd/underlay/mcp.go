package main

import (
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/underlay/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: underlay mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'underlay mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	fs := newFlagSet("serve", "underlay mcp serve [--config PATH]",
		"Start the MCP server on stdio. Designed to be invoked by MCP clients.\n"+
			"Windows relocated through the server are restored when it exits\n"+
			"if daemon.restore_on_exit is set.")
	cfgPath := fs.String("config", "", "Config file path (default: <user config dir>/underlay/config.yaml)")
	if code := parseArgs(fs, args, 0); code >= 0 {
		return code
	}

	env, err := openEnv(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer env.Close()

	server := mcp.NewServer(env.api)

	ctx, cancel := signalContext()
	defer cancel()

	runErr := server.Run(ctx)
	if env.cfg.Daemon.RestoreOnExit {
		for handle, err := range server.RestoreAll() {
			env.logger.Warn("failed to restore window on exit", "window_id", handle, "error", err)
		}
	}
	if runErr != nil && ctx.Err() == nil {
		env.logger.Error("MCP server error", "error", runErr)
		return 1
	}
	return 0
}
