package scripting

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"

	"github.com/1broseidon/underlay/internal/wallpaper"
)

// Runner executes scripts with the underlay module, require and console
// available.
type Runner struct {
	api    *wallpaper.API
	stdout io.Writer
	stderr io.Writer
}

// NewRunner creates a Runner writing console output to stdout and stderr.
func NewRunner(api *wallpaper.API, stdout, stderr io.Writer) *Runner {
	return &Runner{api: api, stdout: stdout, stderr: stderr}
}

// Run executes the script at path. The script is interrupted when ctx is
// cancelled.
func (r *Runner) Run(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return r.RunString(ctx, filepath.Base(path), string(src))
}

// RunString executes src under the given script name.
func (r *Runner) RunString(ctx context.Context, name, src string) error {
	vm := r.newRuntime()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	if _, err := vm.RunScript(name, src); err != nil {
		return fmt.Errorf("script %s failed: %w", name, err)
	}
	return nil
}

func (r *Runner) newRuntime() *goja.Runtime {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	registry := require.NewRegistry()
	registry.RegisterNativeModule(ModuleName, Require(r.api))
	registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(&printer{stdout: r.stdout, stderr: r.stderr}))
	registry.Enable(vm)
	console.Enable(vm)
	return vm
}

type printer struct {
	stdout io.Writer
	stderr io.Writer
}

func (p *printer) Log(s string)   { writeLine(p.stdout, s) }
func (p *printer) Warn(s string)  { writeLine(p.stderr, s) }
func (p *printer) Error(s string) { writeLine(p.stderr, s) }

func writeLine(w io.Writer, s string) {
	if w == nil {
		return
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, _ = io.WriteString(w, s)
}
