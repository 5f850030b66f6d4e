package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
)

// Exists reports whether the server still knows windowID.
func (c *Connection) Exists(windowID xproto.Window) bool {
	if windowID == 0 {
		return false
	}
	_, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	return err == nil
}

// Tree returns the parent of windowID and its children ordered top-most first.
// QueryTree reports children bottom-to-top, so the slice is reversed.
func (c *Connection) Tree(windowID xproto.Window) (xproto.Window, []xproto.Window, error) {
	reply, err := xproto.QueryTree(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return 0, nil, fmt.Errorf("failed to query tree of window %d: %w", windowID, err)
	}
	children := make([]xproto.Window, len(reply.Children))
	for i, child := range reply.Children {
		children[len(children)-1-i] = child
	}
	return reply.Parent, children, nil
}

// ClassName returns the WM_CLASS class of windowID, falling back to the
// instance name when the class is empty.
func (c *Connection) ClassName(windowID xproto.Window) (string, error) {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return "", fmt.Errorf("failed to get WM_CLASS of window %d: %w", windowID, err)
	}
	if class := strings.TrimSpace(wmClass.Class); class != "" {
		return class, nil
	}
	return strings.TrimSpace(wmClass.Instance), nil
}

// AbsoluteGeometry returns the window's position relative to the root window
// and its size.
func (c *Connection) AbsoluteGeometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to get geometry of window %d: %w", windowID, err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to translate coordinates of window %d: %w", windowID, err)
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// RootToWindow converts root coordinates into coordinates relative to windowID.
func (c *Connection) RootToWindow(windowID xproto.Window, x, y int) (int, int, error) {
	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		c.Root,
		windowID,
		int16(x), int16(y),
	).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to translate coordinates into window %d: %w", windowID, err)
	}
	return int(translate.DstX), int(translate.DstY), nil
}

// Reparent moves windowID under parent at (x, y) relative to parent.
func (c *Connection) Reparent(windowID, parent xproto.Window, x, y int) error {
	return xproto.ReparentWindowChecked(c.XUtil.Conn(), windowID, parent, int16(x), int16(y)).Check()
}

// MoveResizeWindow configures the window geometry directly, bypassing the
// window manager. Reparented windows are no longer managed, so EWMH requests
// would be ignored.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return xproto.ConfigureWindowChecked(
		c.XUtil.Conn(),
		windowID,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(int32(x)), uint32(int32(y)), uint32(width), uint32(height)},
	).Check()
}

// StackBelow places windowID directly under sibling. A zero sibling raises
// windowID above all of its siblings.
func (c *Connection) StackBelow(windowID, sibling xproto.Window) error {
	if sibling == 0 {
		return xproto.ConfigureWindowChecked(
			c.XUtil.Conn(),
			windowID,
			xproto.ConfigWindowStackMode,
			[]uint32{xproto.StackModeAbove},
		).Check()
	}
	return xproto.ConfigureWindowChecked(
		c.XUtil.Conn(),
		windowID,
		xproto.ConfigWindowSibling|xproto.ConfigWindowStackMode,
		[]uint32{uint32(sibling), xproto.StackModeBelow},
	).Check()
}

// StackBottom lowers windowID beneath all of its siblings.
func (c *Connection) StackBottom(windowID xproto.Window) error {
	return xproto.ConfigureWindowChecked(
		c.XUtil.Conn(),
		windowID,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeBelow},
	).Check()
}
