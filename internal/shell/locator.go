// Package shell finds the desktop shell's background container window: the
// window that sits above the wallpaper and below the desktop icons. How to
// find it depends on the shell and its version, so each layout is a Locator.
package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/underlay/internal/platform"
)

// ErrNotFound means the shell hierarchy did not have the expected shape.
var ErrNotFound = errors.New("background container window not found")

// ErrShellUnresponsive means the shell was present but did not answer the
// spawn message. It wraps ErrNotFound and ends a Chain.
var ErrShellUnresponsive = fmt.Errorf("%w: shell did not answer spawn message", ErrNotFound)

// Locator finds the background container given access to the root window
// list. Implementations must walk the hierarchy on every call.
type Locator interface {
	Name() string
	Locate(b platform.Backend) (platform.WindowID, error)
}

// Chain tries each locator in order and returns the first match. A shell
// that is present but unresponsive stops the search.
type Chain []Locator

func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, l := range c {
		names[i] = l.Name()
	}
	return strings.Join(names, ",")
}

func (c Chain) Locate(b platform.Backend) (platform.WindowID, error) {
	var errs []error
	for _, l := range c {
		id, err := l.Locate(b)
		if err == nil {
			return id, nil
		}
		if errors.Is(err, ErrShellUnresponsive) {
			return 0, fmt.Errorf("%s: %w", l.Name(), err)
		}
		errs = append(errs, fmt.Errorf("%s: %w", l.Name(), err))
	}
	if len(errs) == 0 {
		return 0, ErrNotFound
	}
	return 0, errors.Join(append([]error{ErrNotFound}, errs...)...)
}

// findTopLevel returns the first top-level window with the given class.
func findTopLevel(b platform.Backend, class string) (platform.WindowID, error) {
	top, err := b.Children(b.Root())
	if err != nil {
		return 0, fmt.Errorf("failed to list top-level windows: %w", err)
	}
	for _, id := range top {
		if hasClass(b, id, class) {
			return id, nil
		}
	}
	return 0, ErrNotFound
}

// findChild returns the first direct child of parent with the given class.
func findChild(b platform.Backend, parent platform.WindowID, class string) (platform.WindowID, bool) {
	children, err := b.Children(parent)
	if err != nil {
		return 0, false
	}
	for _, id := range children {
		if hasClass(b, id, class) {
			return id, true
		}
	}
	return 0, false
}

func hasClass(b platform.Backend, id platform.WindowID, class string) bool {
	name, err := b.ClassName(id)
	return err == nil && name == class
}
