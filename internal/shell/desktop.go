package shell

import "github.com/1broseidon/underlay/internal/platform"

// DesktopWindowType is the EWMH type set by file managers that draw desktop icons.
const DesktopWindowType = "_NET_WM_WINDOW_TYPE_DESKTOP"

// DefaultDesktopClasses are WM_CLASS values of common icon-drawing desktop
// windows on X11.
var DefaultDesktopClasses = []string{
	"xfdesktop",
	"Desktop",
	"desktop_window",
	"nautilus-desktop",
	"pcmanfm",
}

// EWMHDesktop locates the window of type _NET_WM_WINDOW_TYPE_DESKTOP, falling
// back to a top-level window whose class is listed in Classes. Backends that
// do not expose window types never match, so a class name alone cannot pick
// an ordinary application window on Windows.
type EWMHDesktop struct {
	Classes []string
}

// NewEWMHDesktop returns an EWMHDesktop locator with the default classes.
func NewEWMHDesktop() *EWMHDesktop {
	return &EWMHDesktop{Classes: append([]string(nil), DefaultDesktopClasses...)}
}

func (d *EWMHDesktop) Name() string { return "ewmh-desktop" }

func (d *EWMHDesktop) Locate(b platform.Backend) (platform.WindowID, error) {
	typed, ok := b.(platform.TypedWindowLister)
	if !ok {
		return 0, ErrNotFound
	}
	wins, err := typed.WindowsOfType(DesktopWindowType)
	if err == nil && len(wins) > 0 {
		return wins[0], nil
	}
	for _, class := range d.Classes {
		if id, err := findTopLevel(b, class); err == nil {
			return id, nil
		}
	}
	return 0, ErrNotFound
}
