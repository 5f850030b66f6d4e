//go:build windows

package platform

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	moduser32               = windows.NewLazySystemDLL("user32.dll")
	procGetAncestor         = moduser32.NewProc("GetAncestor")
	procGetWindow           = moduser32.NewProc("GetWindow")
	procGetWindowRect       = moduser32.NewProc("GetWindowRect")
	procScreenToClient      = moduser32.NewProc("ScreenToClient")
	procSetParent           = moduser32.NewProc("SetParent")
	procSetWindowPos        = moduser32.NewProc("SetWindowPos")
	procSendMessageTimeoutW = moduser32.NewProc("SendMessageTimeoutW")
)

const (
	gaParent = 1

	gwHwndNext = 2
	gwChild    = 5

	hwndTop    = 0
	hwndBottom = 1

	swpNoSize     = 0x0001
	swpNoMove     = 0x0002
	swpNoZOrder   = 0x0004
	swpNoActivate = 0x0010
	swpShowWindow = 0x0040

	smtoNormal = 0x0000

	maxClassName = 256
)

type winRect struct {
	Left, Top, Right, Bottom int32
}

type winPoint struct {
	X, Y int32
}

// enumTopLevel is created once; windows.NewCallback slots are never released.
var (
	enumTopLevelOnce sync.Once
	enumTopLevel     uintptr
)

// WindowsBackend implements Backend over user32.
type WindowsBackend struct {
	root WindowID
}

var (
	_ Backend   = (*WindowsBackend)(nil)
	_ Messenger = (*WindowsBackend)(nil)
)

// NewBackend returns the Win32 backend.
func NewBackend() (Backend, error) {
	if err := moduser32.Load(); err != nil {
		return nil, fmt.Errorf("failed to load user32.dll: %w", err)
	}
	return &WindowsBackend{root: WindowID(windows.GetDesktopWindow())}, nil
}

// Close is a no-op; user32 holds no per-backend resources.
func (b *WindowsBackend) Close() error { return nil }

func (b *WindowsBackend) Root() WindowID { return b.root }

func (b *WindowsBackend) IsWindow(id WindowID) bool {
	if id == 0 {
		return false
	}
	return windows.IsWindow(windows.HWND(id))
}

func (b *WindowsBackend) Parent(id WindowID) (WindowID, error) {
	if !b.IsWindow(id) {
		return 0, fmt.Errorf("window %d does not exist", id)
	}
	// GetParent returns the owner for owned top-level windows; GA_PARENT
	// always reports the real parent, which is the desktop for top-level.
	r, _, _ := procGetAncestor.Call(uintptr(id), gaParent)
	if r == 0 {
		return b.root, nil
	}
	return WindowID(r), nil
}

func (b *WindowsBackend) Children(id WindowID) ([]WindowID, error) {
	if id == b.root {
		return b.topLevel()
	}
	if !b.IsWindow(id) {
		return nil, fmt.Errorf("window %d does not exist", id)
	}
	var out []WindowID
	child, _, _ := procGetWindow.Call(uintptr(id), gwChild)
	for child != 0 {
		out = append(out, WindowID(child))
		child, _, _ = procGetWindow.Call(child, gwHwndNext)
	}
	return out, nil
}

func (b *WindowsBackend) topLevel() ([]WindowID, error) {
	enumTopLevelOnce.Do(func() {
		enumTopLevel = windows.NewCallback(func(hwnd windows.HWND, lparam uintptr) uintptr {
			list := (*[]WindowID)(unsafe.Pointer(lparam))
			*list = append(*list, WindowID(hwnd))
			return 1
		})
	})
	var out []WindowID
	if err := windows.EnumWindows(enumTopLevel, unsafe.Pointer(&out)); err != nil {
		return nil, fmt.Errorf("EnumWindows failed: %w", err)
	}
	return out, nil
}

func (b *WindowsBackend) ClassName(id WindowID) (string, error) {
	buf := make([]uint16, maxClassName)
	n, err := windows.GetClassName(windows.HWND(id), &buf[0], int32(len(buf)))
	if err != nil {
		return "", fmt.Errorf("GetClassName(%d) failed: %w", id, err)
	}
	return windows.UTF16ToString(buf[:n]), nil
}

func (b *WindowsBackend) Bounds(id WindowID) (Rect, error) {
	var rc winRect
	r, _, err := procGetWindowRect.Call(uintptr(id), uintptr(unsafe.Pointer(&rc)))
	if r == 0 {
		return Rect{}, fmt.Errorf("GetWindowRect(%d) failed: %w", id, err)
	}
	return Rect{
		X:      int(rc.Left),
		Y:      int(rc.Top),
		Width:  int(rc.Right - rc.Left),
		Height: int(rc.Bottom - rc.Top),
	}, nil
}

func (b *WindowsBackend) ScreenToClient(parent WindowID, p Point) (Point, error) {
	if parent == b.root {
		return p, nil
	}
	pt := winPoint{X: int32(p.X), Y: int32(p.Y)}
	r, _, err := procScreenToClient.Call(uintptr(parent), uintptr(unsafe.Pointer(&pt)))
	if r == 0 {
		return Point{}, fmt.Errorf("ScreenToClient(%d) failed: %w", parent, err)
	}
	return Point{X: int(pt.X), Y: int(pt.Y)}, nil
}

func (b *WindowsBackend) SetParent(id, parent WindowID) error {
	target := uintptr(parent)
	if parent == b.root {
		target = 0
	}
	r, _, err := procSetParent.Call(uintptr(id), target)
	if r == 0 {
		return fmt.Errorf("SetParent(%d, %d) failed: %w", id, parent, err)
	}
	return nil
}

func (b *WindowsBackend) Move(id WindowID, r Rect) error {
	return b.setWindowPos(id, hwndTop, r, swpNoZOrder|swpNoActivate|swpShowWindow)
}

func (b *WindowsBackend) PlaceBelow(id, sibling WindowID) error {
	return b.setWindowPos(id, uintptr(sibling), Rect{}, swpNoMove|swpNoSize|swpNoActivate)
}

func (b *WindowsBackend) SendToBottom(id WindowID) error {
	return b.setWindowPos(id, hwndBottom, Rect{}, swpNoMove|swpNoSize|swpNoActivate)
}

func (b *WindowsBackend) setWindowPos(id WindowID, insertAfter uintptr, r Rect, flags uintptr) error {
	ret, _, err := procSetWindowPos.Call(
		uintptr(id),
		insertAfter,
		uintptr(int32(r.X)),
		uintptr(int32(r.Y)),
		uintptr(int32(r.Width)),
		uintptr(int32(r.Height)),
		flags,
	)
	if ret == 0 {
		return fmt.Errorf("SetWindowPos(%d) failed: %w", id, err)
	}
	return nil
}

// SendMessageTimeout delivers msg to id and waits at most timeout for the
// receiving thread to process it.
func (b *WindowsBackend) SendMessageTimeout(id WindowID, msg uint32, wParam, lParam uintptr, timeout time.Duration) (uintptr, error) {
	var result uintptr
	r, _, err := procSendMessageTimeoutW.Call(
		uintptr(id),
		uintptr(msg),
		wParam,
		lParam,
		smtoNormal,
		uintptr(timeout.Milliseconds()),
		uintptr(unsafe.Pointer(&result)),
	)
	if r == 0 {
		return 0, fmt.Errorf("SendMessageTimeout(%d, %#x) failed: %w", id, msg, err)
	}
	return result, nil
}
