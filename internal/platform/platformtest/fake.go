// Package platformtest provides an in-memory window table implementing
// platform.Backend for tests.
package platformtest

import (
	"fmt"
	"sync"
	"time"

	"github.com/1broseidon/underlay/internal/platform"
)

// RootID is the ID of the fake desktop root window.
const RootID platform.WindowID = 1

type window struct {
	class    string
	parent   platform.WindowID
	children []platform.WindowID // top-most first
	bounds   platform.Rect       // screen coordinates
	types    []string
}

// Message records a SendMessageTimeout call.
type Message struct {
	Target  platform.WindowID
	Msg     uint32
	Timeout time.Duration
}

// Backend is a fake window table. Screen bounds are kept per window and
// translate with the parent on Move, which is enough to check coordinate
// bookkeeping without a real compositor.
type Backend struct {
	mu      sync.Mutex
	windows map[platform.WindowID]*window
	nextID  platform.WindowID

	// RejectParent makes SetParent fail for the listed windows.
	RejectParent map[platform.WindowID]bool
	// RejectMove makes Move fail for the listed windows.
	RejectMove map[platform.WindowID]bool
	// FailMessages makes SendMessageTimeout fail.
	FailMessages bool
	// OnMessage runs after a message is delivered, e.g. to spawn a WorkerW.
	OnMessage func(b *Backend, msg Message)

	Messages []Message
}

var (
	_ platform.Backend           = (*Backend)(nil)
	_ platform.Messenger         = (*Backend)(nil)
	_ platform.TypedWindowLister = (*Backend)(nil)
)

// New returns a fake with a 1920x1080 root window.
func New() *Backend {
	b := &Backend{
		windows:      make(map[platform.WindowID]*window),
		nextID:       RootID + 1,
		RejectParent: make(map[platform.WindowID]bool),
		RejectMove:   make(map[platform.WindowID]bool),
	}
	b.windows[RootID] = &window{
		class:  "#root",
		bounds: platform.Rect{Width: 1920, Height: 1080},
	}
	return b
}

// Add creates a window of the given class under parent, placed on top of its
// siblings, with screen bounds r.
func (b *Backend) Add(parent platform.WindowID, class string, r platform.Rect) platform.WindowID {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.windows[parent]
	if !ok {
		panic(fmt.Sprintf("platformtest: parent %d does not exist", parent))
	}
	id := b.nextID
	b.nextID++
	b.windows[id] = &window{class: class, parent: parent, bounds: r}
	p.children = append([]platform.WindowID{id}, p.children...)
	return id
}

// AddBottom is Add, but places the new window beneath its siblings.
func (b *Backend) AddBottom(parent platform.WindowID, class string, r platform.Rect) platform.WindowID {
	id := b.Add(parent, class, r)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.restack(id, b.windows[parent].children, len(b.windows[parent].children))
	return id
}

// SetTypes sets the window-type hints reported by WindowsOfType.
func (b *Backend) SetTypes(id platform.WindowID, types ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.windows[id].types = types
}

// Destroy removes id and all its descendants.
func (b *Backend) Destroy(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[id]
	if !ok {
		return
	}
	if p, ok := b.windows[w.parent]; ok {
		p.children = remove(p.children, id)
	}
	b.destroy(id)
}

func (b *Backend) destroy(id platform.WindowID) {
	w, ok := b.windows[id]
	if !ok {
		return
	}
	for _, child := range w.children {
		b.destroy(child)
	}
	delete(b.windows, id)
}

func (b *Backend) Root() platform.WindowID { return RootID }

func (b *Backend) IsWindow(id platform.WindowID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.windows[id]
	return ok
}

func (b *Backend) Parent(id platform.WindowID) (platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.get(id)
	if err != nil {
		return 0, err
	}
	if id == RootID {
		return 0, nil
	}
	return w.parent, nil
}

func (b *Backend) Children(id platform.WindowID) ([]platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.get(id)
	if err != nil {
		return nil, err
	}
	return append([]platform.WindowID(nil), w.children...), nil
}

func (b *Backend) ClassName(id platform.WindowID) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.get(id)
	if err != nil {
		return "", err
	}
	return w.class, nil
}

func (b *Backend) Bounds(id platform.WindowID) (platform.Rect, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.get(id)
	if err != nil {
		return platform.Rect{}, err
	}
	return w.bounds, nil
}

func (b *Backend) ScreenToClient(parent platform.WindowID, p platform.Point) (platform.Point, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.get(parent)
	if err != nil {
		return platform.Point{}, err
	}
	return platform.Point{X: p.X - w.bounds.X, Y: p.Y - w.bounds.Y}, nil
}

// SetParent keeps the window's screen bounds, matching Win32 SetParent which
// leaves client-relative coordinates untouched until the next move.
func (b *Backend) SetParent(id, parent platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.get(id)
	if err != nil {
		return err
	}
	p, err := b.get(parent)
	if err != nil {
		return err
	}
	if b.RejectParent[id] {
		return fmt.Errorf("access denied reparenting window %d", id)
	}
	if old, ok := b.windows[w.parent]; ok {
		old.children = remove(old.children, id)
	}
	w.parent = parent
	p.children = append([]platform.WindowID{id}, p.children...)
	return nil
}

func (b *Backend) Move(id platform.WindowID, r platform.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.get(id)
	if err != nil {
		return err
	}
	if b.RejectMove[id] {
		return fmt.Errorf("access denied moving window %d", id)
	}
	origin := platform.Point{}
	if p, ok := b.windows[w.parent]; ok && w.parent != RootID {
		origin = p.bounds.Origin()
	}
	w.bounds = platform.Rect{X: origin.X + r.X, Y: origin.Y + r.Y, Width: r.Width, Height: r.Height}
	return nil
}

func (b *Backend) PlaceBelow(id, sibling platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.get(id)
	if err != nil {
		return err
	}
	p := b.windows[w.parent]
	if sibling == 0 {
		b.restack(id, p.children, 0)
		return nil
	}
	siblings := remove(p.children, id)
	for i, s := range siblings {
		if s == sibling {
			b.restack(id, p.children, i+1)
			return nil
		}
	}
	return fmt.Errorf("window %d is not a sibling of %d", sibling, id)
}

func (b *Backend) SendToBottom(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.get(id)
	if err != nil {
		return err
	}
	p := b.windows[w.parent]
	b.restack(id, p.children, len(p.children))
	return nil
}

func (b *Backend) SendMessageTimeout(id platform.WindowID, msg uint32, _, _ uintptr, timeout time.Duration) (uintptr, error) {
	b.mu.Lock()
	if _, err := b.get(id); err != nil {
		b.mu.Unlock()
		return 0, err
	}
	if b.FailMessages {
		b.mu.Unlock()
		return 0, fmt.Errorf("message %#x to %d timed out", msg, id)
	}
	m := Message{Target: id, Msg: msg, Timeout: timeout}
	b.Messages = append(b.Messages, m)
	hook := b.OnMessage
	b.mu.Unlock()

	if hook != nil {
		hook(b, m)
	}
	return 0, nil
}

func (b *Backend) WindowsOfType(windowType string) ([]platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []platform.WindowID
	for _, id := range b.windows[RootID].children {
		for _, t := range b.windows[id].types {
			if t == windowType {
				out = append(out, id)
				break
			}
		}
	}
	return out, nil
}

func (b *Backend) get(id platform.WindowID) (*window, error) {
	w, ok := b.windows[id]
	if !ok {
		return nil, fmt.Errorf("window %d does not exist", id)
	}
	return w, nil
}

// restack moves id to index pos within the sibling list of its parent,
// counting positions with id removed.
func (b *Backend) restack(id platform.WindowID, siblings []platform.WindowID, pos int) {
	p := b.windows[b.windows[id].parent]
	rest := remove(siblings, id)
	if pos > len(rest) {
		pos = len(rest)
	}
	out := make([]platform.WindowID, 0, len(rest)+1)
	out = append(out, rest[:pos]...)
	out = append(out, id)
	out = append(out, rest[pos:]...)
	p.children = out
}

func remove(ids []platform.WindowID, id platform.WindowID) []platform.WindowID {
	out := make([]platform.WindowID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
