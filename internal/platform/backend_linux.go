//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/underlay/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var (
	_ Backend           = (*LinuxBackend)(nil)
	_ TypedWindowLister = (*LinuxBackend)(nil)
)

// NewBackend opens a fresh X11 connection.
func NewBackend() (Backend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Close closes the underlying X11 connection.
func (b *LinuxBackend) Close() error {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
	return nil
}

func (b *LinuxBackend) Root() WindowID {
	if b == nil || b.conn == nil {
		return 0
	}
	return WindowID(b.conn.Root)
}

func (b *LinuxBackend) IsWindow(id WindowID) bool {
	conn, err := b.connection()
	if err != nil {
		return false
	}
	return conn.Exists(xproto.Window(id))
}

func (b *LinuxBackend) Parent(id WindowID) (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	parent, _, err := conn.Tree(xproto.Window(id))
	if err != nil {
		return 0, err
	}
	return WindowID(parent), nil
}

func (b *LinuxBackend) Children(id WindowID) ([]WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	_, children, err := conn.Tree(xproto.Window(id))
	if err != nil {
		return nil, err
	}
	out := make([]WindowID, len(children))
	for i, child := range children {
		out[i] = WindowID(child)
	}
	return out, nil
}

func (b *LinuxBackend) ClassName(id WindowID) (string, error) {
	conn, err := b.connection()
	if err != nil {
		return "", err
	}
	return conn.ClassName(xproto.Window(id))
}

func (b *LinuxBackend) Bounds(id WindowID) (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}
	x, y, w, h, err := conn.AbsoluteGeometry(xproto.Window(id))
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: x, Y: y, Width: w, Height: h}, nil
}

func (b *LinuxBackend) ScreenToClient(parent WindowID, p Point) (Point, error) {
	conn, err := b.connection()
	if err != nil {
		return Point{}, err
	}
	if xproto.Window(parent) == conn.Root {
		return p, nil
	}
	x, y, err := conn.RootToWindow(xproto.Window(parent), p.X, p.Y)
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

// SetParent reparents without moving; callers follow up with Move.
func (b *LinuxBackend) SetParent(id, parent WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	if err := conn.Reparent(xproto.Window(id), xproto.Window(parent), 0, 0); err != nil {
		return fmt.Errorf("failed to reparent window %d under %d: %w", id, parent, err)
	}
	return nil
}

func (b *LinuxBackend) Move(id WindowID, r Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MoveResizeWindow(xproto.Window(id), r.X, r.Y, r.Width, r.Height)
}

func (b *LinuxBackend) PlaceBelow(id, sibling WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.StackBelow(xproto.Window(id), xproto.Window(sibling))
}

func (b *LinuxBackend) SendToBottom(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.StackBottom(xproto.Window(id))
}

// WindowsOfType lists top-level windows carrying the given EWMH window type.
func (b *LinuxBackend) WindowsOfType(windowType string) ([]WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	wins, err := conn.WindowsOfType(windowType)
	if err != nil {
		return nil, err
	}
	out := make([]WindowID, len(wins))
	for i, w := range wins {
		out[i] = WindowID(w)
	}
	return out, nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
