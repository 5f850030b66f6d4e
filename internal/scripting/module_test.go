package scripting

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/underlay/internal/platform"
	"github.com/1broseidon/underlay/internal/platform/platformtest"
	"github.com/1broseidon/underlay/internal/relocate"
	"github.com/1broseidon/underlay/internal/shell"
	"github.com/1broseidon/underlay/internal/wallpaper"
)

type env struct {
	runner *Runner
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	b      *platformtest.Backend
	worker platform.WindowID
	app    platform.WindowID
}

func newEnv(t *testing.T, withShell bool) *env {
	t.Helper()
	screen := platform.Rect{Width: 1920, Height: 1080}
	b := platformtest.New()
	var worker platform.WindowID
	if withShell {
		b.Add(b.Root(), "Progman", screen)
		worker = b.Add(b.Root(), "WorkerW", screen)
		host := b.Add(b.Root(), "WorkerW", screen)
		b.Add(host, "SHELLDLL_DefView", screen)
	}
	app := b.Add(b.Root(), "Notepad", platform.Rect{X: 10, Y: 10, Width: 200, Height: 100})

	api := wallpaper.New(relocate.NewManager(b, shell.NewWorkerW(), relocate.Options{}), nil)
	var stdout, stderr bytes.Buffer
	return &env{
		runner: NewRunner(api, &stdout, &stderr),
		stdout: &stdout,
		stderr: &stderr,
		b:      b,
		worker: worker,
		app:    app,
	}
}

func (e *env) run(t *testing.T, src string) error {
	t.Helper()
	return e.runner.RunString(context.Background(), "test.js", src)
}

func (e *env) lines() []string {
	return strings.Split(strings.TrimSpace(e.stdout.String()), "\n")
}

func TestModule_BasicUsage(t *testing.T) {
	e := newEnv(t, true)

	err := e.run(t, `
		const underlay = require('underlay');
		const worker = underlay.getWorkerWindow();
		console.log(worker);
		console.log(underlay.isValidWindow(worker));
		console.log(underlay.isValidWindow("2230926"));
		console.log(underlay.setWindowBehindDesktop("2230926"));
		try {
			underlay.setWindowBehindDesktop(12345);
		} catch (error) {
			console.log(error instanceof TypeError, error.message);
		}
		console.log(underlay.isValidWindow("not_a_number"));
	`)
	require.NoError(t, err)

	assert.Equal(t, []string{
		wallpaper.FormatHandle(e.worker),
		"true",
		"false",
		"false",
		"true Window handle must be a string",
		"false",
	}, e.lines())
}

func TestModule_GetWorkerWindowNull(t *testing.T) {
	e := newEnv(t, false)

	require.NoError(t, e.run(t, `
		const underlay = require('underlay');
		console.log(underlay.getWorkerWindow() === null);
	`))
	assert.Equal(t, []string{"true"}, e.lines())
}

func TestModule_RelocateAndRestore(t *testing.T) {
	e := newEnv(t, true)
	handle := wallpaper.FormatHandle(e.app)

	require.NoError(t, e.run(t, `
		const underlay = require('underlay');
		const handle = "`+handle+`";
		console.log(underlay.setWindowBehindDesktop(handle));
	`))
	parent, err := e.b.Parent(e.app)
	require.NoError(t, err)
	assert.Equal(t, e.worker, parent)

	require.NoError(t, e.run(t, `
		const underlay = require('underlay');
		console.log(underlay.restoreWindow("`+handle+`"));
		console.log(underlay.restoreWindow("`+handle+`"));
	`))
	parent, err = e.b.Parent(e.app)
	require.NoError(t, err)
	assert.Equal(t, e.b.Root(), parent)
	assert.Equal(t, []string{"true", "true", "true"}, e.lines())
}

func TestModule_ArgumentErrors(t *testing.T) {
	tests := []struct {
		name    string
		call    string
		errType string
		message string
	}{
		{"set missing", `setWindowBehindDesktop()`, "TypeError", "Expected window handle as argument"},
		{"restore missing", `restoreWindow()`, "TypeError", "Expected window handle as argument"},
		{"set number", `setWindowBehindDesktop(12345)`, "TypeError", "Window handle must be a string"},
		{"restore object", `restoreWindow({})`, "TypeError", "Window handle must be a string"},
		{"set unparsable", `setWindowBehindDesktop("not_a_number")`, "Error", "Invalid window handle"},
		{"restore unparsable", `restoreWindow("12abc")`, "Error", "Invalid window handle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, true)
			require.NoError(t, e.run(t, `
				const underlay = require('underlay');
				try {
					underlay.`+tt.call+`;
					console.log("no error");
				} catch (error) {
					console.log(error instanceof TypeError ? "TypeError" : "Error");
					console.log(error.message);
				}
			`))
			assert.Equal(t, []string{tt.errType, tt.message}, e.lines())
		})
	}
}

func TestModule_IsValidWindowNeverThrows(t *testing.T) {
	e := newEnv(t, true)

	require.NoError(t, e.run(t, `
		const underlay = require('underlay');
		console.log([
			underlay.isValidWindow(),
			underlay.isValidWindow(12345),
			underlay.isValidWindow(null),
			underlay.isValidWindow("0"),
			underlay.isValidWindow("`+wallpaper.FormatHandle(e.app)+`"),
		].join(","));
	`))
	assert.Equal(t, []string{"false,false,false,false,true"}, e.lines())
}

func TestRunner_UncaughtErrorIsReturned(t *testing.T) {
	e := newEnv(t, true)

	err := e.run(t, `require('underlay').setWindowBehindDesktop(1);`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Window handle must be a string")
}

func TestRunner_ConsoleErrorGoesToStderr(t *testing.T) {
	e := newEnv(t, true)

	require.NoError(t, e.run(t, `console.error("boom");`))
	assert.Empty(t, e.stdout.String())
	assert.Equal(t, "boom\n", e.stderr.String())
}

func TestRunner_RunFile(t *testing.T) {
	e := newEnv(t, true)
	path := filepath.Join(t.TempDir(), "script.js")
	require.NoError(t, os.WriteFile(path, []byte(`console.log(typeof require('underlay').restoreWindow);`), 0644))

	require.NoError(t, e.runner.Run(context.Background(), path))
	assert.Equal(t, []string{"function"}, e.lines())

	err := e.runner.Run(context.Background(), filepath.Join(t.TempDir(), "missing.js"))
	require.Error(t, err)
}

func TestRunner_InterruptedByContext(t *testing.T) {
	e := newEnv(t, true)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := e.runner.RunString(ctx, "loop.js", `for (;;) {}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
