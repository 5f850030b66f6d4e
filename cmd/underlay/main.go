package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/1broseidon/underlay/internal/daemon"
	"github.com/1broseidon/underlay/internal/ipc"
	"github.com/1broseidon/underlay/internal/wallpaper"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "set":
		os.Exit(runSet(os.Args[2:]))
	case "restore":
		os.Exit(runRestore(os.Args[2:]))
	case "restore-all":
		os.Exit(runRestoreAll(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "worker":
		os.Exit(runWorker(os.Args[2:]))
	case "valid":
		os.Exit(runValid(os.Args[2:]))
	case "run":
		os.Exit(runScript(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: underlay <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the underlay daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  set <handle>        Place a window behind the desktop icons")
	fmt.Fprintln(w, "  restore <handle>    Move a window back to where it was")
	fmt.Fprintln(w, "  restore-all         Restore every relocated window")
	fmt.Fprintln(w, "  list                List relocated windows")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  worker              Print the desktop background container handle")
	fmt.Fprintln(w, "  valid <handle>      Check whether a window handle is live")
	fmt.Fprintln(w, "  run <script.js>     Run a script with the underlay module")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'underlay <command> --help' for command-specific options.")
}

// newFlagSet returns a flag set whose usage prints usage, the description
// and the flag defaults.
func newFlagSet(name, usage, description string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: "+usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, description)
		hasFlags := false
		fs.VisitAll(func(*flag.Flag) { hasFlags = true })
		if hasFlags {
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
	}
	return fs
}

// parseArgs parses args and checks the positional count. The returned code
// is non-negative when the caller should exit with it.
func parseArgs(fs *flag.FlagSet, args []string, positional int) int {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != positional {
		if positional == 0 {
			fmt.Fprintf(os.Stderr, "%s takes no arguments\n", fs.Name())
		} else {
			fmt.Fprintf(os.Stderr, "%s requires %d argument(s)\n", fs.Name(), positional)
		}
		fs.Usage()
		return 2
	}
	return -1
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runDaemon(args []string) int {
	fs := newFlagSet("daemon", "underlay daemon [--config PATH]",
		"Run in the foreground, keeping relocation records and serving IPC.")
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

	ctx, cancel := signalContext()
	defer cancel()

	d := daemon.New(env.api, daemon.Options{
		LocatorName:       env.locator.Name(),
		ReconcileInterval: env.cfg.ReconcileInterval(),
		RestoreOnExit:     env.cfg.Daemon.RestoreOnExit,
		Logger:            env.logger,
	})
	if err := d.Run(ctx); err != nil {
		env.logger.Error("daemon failed", "error", err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "underlay status", "Show daemon status via IPC.")
	if code := parseArgs(fs, args, 0); code >= 0 {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("locator:        %s\n", status.Locator)
	fmt.Printf("worker_window:  %s\n", valueOrNone(status.WorkerWindow))
	fmt.Printf("relocations:    %d\n", status.Relocations)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runSet(args []string) int {
	fs := newFlagSet("set", "underlay set <handle>",
		"Place the window with the given decimal handle behind the desktop icons.")
	if code := parseArgs(fs, args, 1); code >= 0 {
		return code
	}
	handle := fs.Arg(0)
	if _, err := wallpaper.ParseHandle(handle); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ok, err := ipc.NewClient().SetWindowBehindDesktop(handle)
	return reportResult(ok, err)
}

func runRestore(args []string) int {
	fs := newFlagSet("restore", "underlay restore <handle>",
		"Move a window placed behind the desktop back to its original parent and position.")
	if code := parseArgs(fs, args, 1); code >= 0 {
		return code
	}
	handle := fs.Arg(0)
	if _, err := wallpaper.ParseHandle(handle); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ok, err := ipc.NewClient().RestoreWindow(handle)
	return reportResult(ok, err)
}

func reportResult(ok bool, err error) int {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(ok)
	if !ok {
		return 1
	}
	return 0
}

func runRestoreAll(args []string) int {
	fs := newFlagSet("restore-all", "underlay restore-all", "Restore every window the daemon has relocated.")
	if code := parseArgs(fs, args, 0); code >= 0 {
		return code
	}

	res, err := ipc.NewClient().RestoreAll()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, handle := range res.Restored {
		fmt.Printf("restored %s\n", handle)
	}
	for handle, msg := range res.Failed {
		fmt.Fprintf(os.Stderr, "failed %s: %s\n", handle, msg)
	}
	if len(res.Failed) > 0 {
		return 1
	}
	return 0
}

func runList(args []string) int {
	fs := newFlagSet("list", "underlay list [--json]",
		"List relocated windows. Prints a table on a terminal and JSON otherwise.")
	jsonOut := fs.Bool("json", false, "Always print JSON")
	if code := parseArgs(fs, args, 0); code >= 0 {
		return code
	}

	list, err := ipc.NewClient().ListRelocations()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	asJSON := *jsonOut || !term.IsTerminal(int(os.Stdout.Fd()))
	if err := writeRelocations(os.Stdout, list, asJSON); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func writeRelocations(w io.Writer, list []ipc.RelocationInfo, asJSON bool) error {
	if asJSON {
		if list == nil {
			list = []ipc.RelocationInfo{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "no relocated windows")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HANDLE\tPARENT\tCONTAINER\tBOUNDS\tFILLED\tMOVED")
	for _, r := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d+%d+%d\t%t\t%s\n",
			r.Handle, r.Parent, r.Container, r.Width, r.Height, r.X, r.Y, r.Filled,
			r.MovedAt.Local().Format("15:04:05"))
	}
	return tw.Flush()
}

func runWorker(args []string) int {
	fs := newFlagSet("worker", "underlay worker [--config PATH]",
		"Print the desktop background container handle. Exits 1 when none is found.")
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

	handle, ok := env.api.GetWorkerWindow()
	if !ok {
		fmt.Fprintln(os.Stderr, "background container not found")
		return 1
	}
	fmt.Println(handle)
	return 0
}

func runValid(args []string) int {
	fs := newFlagSet("valid", "underlay valid [--config PATH] <handle>",
		"Print whether the handle names a live window. Exits 1 when it does not.")
	cfgPath := fs.String("config", "", "Config file path (default: <user config dir>/underlay/config.yaml)")
	if code := parseArgs(fs, args, 1); code >= 0 {
		return code
	}

	env, err := openEnv(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer env.Close()

	valid := env.api.IsValidWindow(fs.Arg(0))
	fmt.Println(valid)
	if !valid {
		return 1
	}
	return 0
}

func valueOrNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
