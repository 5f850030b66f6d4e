package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// WindowsOfType returns top-level windows whose _NET_WM_WINDOW_TYPE contains
// windowType, top-most first. Desktop windows are often not listed in
// _NET_CLIENT_LIST, so the root's children are walked directly along with
// one level of window-manager frames.
func (c *Connection) WindowsOfType(windowType string) ([]xproto.Window, error) {
	_, topLevel, err := c.Tree(c.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to list top-level windows: %w", err)
	}

	var out []xproto.Window
	for _, win := range topLevel {
		if c.hasType(win, windowType) {
			out = append(out, win)
			continue
		}
		_, children, err := c.Tree(win)
		if err != nil {
			continue
		}
		for _, child := range children {
			if c.hasType(child, windowType) {
				out = append(out, child)
			}
		}
	}
	return out, nil
}

func (c *Connection) hasType(windowID xproto.Window, windowType string) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == windowType {
			return true
		}
	}
	return false
}
