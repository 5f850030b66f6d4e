// Package scripting exposes the desktop operations to JavaScript through a
// goja native module named "underlay".
package scripting

import (
	"errors"

	"github.com/dop251/goja"

	"github.com/1broseidon/underlay/internal/wallpaper"
)

// ModuleName is the name scripts pass to require.
const ModuleName = "underlay"

// Require returns the module loader for api.
func Require(api *wallpaper.API) func(runtime *goja.Runtime, module *goja.Object) {
	return func(runtime *goja.Runtime, module *goja.Object) {
		exports := module.Get("exports").(*goja.Object)

		// setWindowBehindDesktop(handle: string): boolean
		_ = exports.Set("setWindowBehindDesktop", func(call goja.FunctionCall) goja.Value {
			handle := handleArgument(runtime, call)
			ok, err := api.SetWindowBehindDesktop(handle)
			if err != nil {
				panic(invalidHandle(runtime, err))
			}
			return runtime.ToValue(ok)
		})

		// getWorkerWindow(): string | null
		_ = exports.Set("getWorkerWindow", func(call goja.FunctionCall) goja.Value {
			handle, ok := api.GetWorkerWindow()
			if !ok {
				return goja.Null()
			}
			return runtime.ToValue(handle)
		})

		// restoreWindow(handle: string): boolean
		_ = exports.Set("restoreWindow", func(call goja.FunctionCall) goja.Value {
			handle := handleArgument(runtime, call)
			ok, err := api.RestoreWindow(handle)
			if err != nil {
				panic(invalidHandle(runtime, err))
			}
			return runtime.ToValue(ok)
		})

		// isValidWindow(handle: string): boolean
		_ = exports.Set("isValidWindow", func(call goja.FunctionCall) goja.Value {
			arg := call.Argument(0).Export()
			return runtime.ToValue(api.IsValidWindow(arg))
		})
	}
}

// handleArgument returns the first argument as a string, throwing a
// TypeError when it is missing or of another type.
func handleArgument(runtime *goja.Runtime, call goja.FunctionCall) string {
	if len(call.Arguments) < 1 {
		panic(runtime.NewTypeError("Expected window handle as argument"))
	}
	s, ok := call.Argument(0).Export().(string)
	if !ok {
		panic(runtime.NewTypeError("Window handle must be a string"))
	}
	return s
}

func invalidHandle(runtime *goja.Runtime, err error) goja.Value {
	if errors.Is(err, wallpaper.ErrInvalidArgument) {
		return runtime.NewGoError(errors.New("Invalid window handle"))
	}
	return runtime.NewGoError(err)
}
