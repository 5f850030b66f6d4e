package platform

import (
	"errors"
	"time"
)

// WindowID is a platform-neutral window identifier (an HWND on Windows, an
// X11 window ID on Linux). Zero never refers to a window.
type WindowID uintptr

// Point is a position in either screen or parent-client coordinates.
type Point struct {
	X int
	Y int
}

// Rect describes a rectangular region.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Origin returns the top-left corner of r.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// ErrUnsupported is returned by backends on platforms without a window system
// implementation.
var ErrUnsupported = errors.New("window system not supported on this platform")

// Backend abstracts the operating system's window table. Every method must
// tolerate IDs of windows that have already been destroyed and report an
// error (or false) instead of crashing.
type Backend interface {
	// Root returns the window that parents all top-level windows.
	Root() WindowID
	// IsWindow reports whether id currently refers to a live window.
	IsWindow(id WindowID) bool
	// Parent returns the parent of id. Top-level windows return Root().
	Parent(id WindowID) (WindowID, error)
	// Children returns the direct children of id, top-most first.
	Children(id WindowID) ([]WindowID, error)
	// ClassName returns the window class of id.
	ClassName(id WindowID) (string, error)
	// Bounds returns the outer bounds of id in screen coordinates.
	Bounds(id WindowID) (Rect, error)
	// ScreenToClient converts a screen point into the client coordinates of
	// parent. For Root() this is the identity.
	ScreenToClient(parent WindowID, p Point) (Point, error)
	// SetParent makes parent the new parent of id.
	SetParent(id, parent WindowID) error
	// Move positions and sizes id relative to its parent's client area.
	Move(id WindowID, r Rect) error
	// PlaceBelow restacks id directly beneath sibling. A zero sibling raises
	// id to the top of its siblings.
	PlaceBelow(id, sibling WindowID) error
	// SendToBottom restacks id beneath all of its siblings.
	SendToBottom(id WindowID) error
}

// Messenger is implemented by backends that can deliver a synchronous window
// message with a bounded wait (SendMessageTimeout on Windows).
type Messenger interface {
	SendMessageTimeout(id WindowID, msg uint32, wParam, lParam uintptr, timeout time.Duration) (uintptr, error)
}

// TypedWindowLister is implemented by backends that expose a window-type
// hint for top-level windows (EWMH _NET_WM_WINDOW_TYPE on X11).
type TypedWindowLister interface {
	WindowsOfType(windowType string) ([]WindowID, error)
}

// Above returns the sibling stacked directly above id, or zero when id is the
// top-most child of its parent.
func Above(b Backend, id WindowID) (WindowID, error) {
	parent, err := b.Parent(id)
	if err != nil {
		return 0, err
	}
	siblings, err := b.Children(parent)
	if err != nil {
		return 0, err
	}
	for i, sib := range siblings {
		if sib == id {
			if i == 0 {
				return 0, nil
			}
			return siblings[i-1], nil
		}
	}
	return 0, errors.New("window not found among its parent's children")
}

// IsAncestor reports whether candidate is id itself or one of its ancestors.
func IsAncestor(b Backend, candidate, id WindowID) bool {
	root := b.Root()
	for cur := id; cur != 0; {
		if cur == candidate {
			return true
		}
		if cur == root {
			return false
		}
		parent, err := b.Parent(cur)
		if err != nil || parent == cur {
			return false
		}
		cur = parent
	}
	return false
}
