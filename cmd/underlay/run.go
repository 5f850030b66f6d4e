package main

import (
	"fmt"
	"os"

	"github.com/1broseidon/underlay/internal/scripting"
)

func runScript(args []string) int {
	fs := newFlagSet("run", "underlay run [--config PATH] [--restore] <script.js>",
		"Run a JavaScript file. require('underlay') exposes setWindowBehindDesktop,\n"+
			"getWorkerWindow, restoreWindow and isValidWindow.")
	cfgPath := fs.String("config", "", "Config file path (default: <user config dir>/underlay/config.yaml)")
	restore := fs.Bool("restore", false, "Restore windows the script relocated when it finishes")
	if code := parseArgs(fs, args, 1); code >= 0 {
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

	runner := scripting.NewRunner(env.api, os.Stdout, os.Stderr)
	runErr := runner.Run(ctx, fs.Arg(0))
	if *restore {
		for id, err := range env.api.Manager().RestoreAll() {
			env.logger.Warn("failed to restore window", "window_id", id, "error", err)
		}
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		return 1
	}
	return 0
}
