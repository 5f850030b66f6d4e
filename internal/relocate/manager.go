// Package relocate moves windows underneath the desktop icon layer and back.
//
// The OS keeps no notion of where a window lived before it was reparented, so
// the Manager records that placement when it moves a window and consumes the
// record when the window is restored. Records live as long as the Manager.
package relocate

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/1broseidon/underlay/internal/platform"
	"github.com/1broseidon/underlay/internal/shell"
)

var (
	// ErrWindowNotFound means the target window does not exist (anymore).
	ErrWindowNotFound = errors.New("window not found")
	// ErrContainerNotFound means no background container could be located.
	ErrContainerNotFound = errors.New("background container not found")
	// ErrRejected means the system refused to reparent or place the window.
	ErrRejected = errors.New("operation rejected by the window system")
)

// Record is the placement of a window before it was relocated.
type Record struct {
	Window    platform.WindowID
	Parent    platform.WindowID
	Above     platform.WindowID // sibling directly above; zero if top-most
	Bounds    platform.Rect     // screen coordinates
	Container platform.WindowID
	Filled    bool
	MovedAt   time.Time
}

// Options configure a Manager.
type Options struct {
	// FillContainer sizes relocated windows to the container instead of
	// keeping their on-screen geometry.
	FillContainer bool
	Logger        *slog.Logger
	// Now is used for Record.MovedAt; defaults to time.Now.
	Now func() time.Time
}

// Manager owns the relocation records for one window system connection.
type Manager struct {
	backend platform.Backend
	locator shell.Locator
	fill    bool
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	records map[platform.WindowID]Record
}

// NewManager creates a Manager with no records.
func NewManager(backend platform.Backend, locator shell.Locator, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		backend: backend,
		locator: locator,
		fill:    opts.FillContainer,
		logger:  logger,
		now:     now,
		records: make(map[platform.WindowID]Record),
	}
}

// FindBackgroundContainer walks the shell hierarchy to find the container.
// The result is never cached because Explorer can recreate the window.
func (m *Manager) FindBackgroundContainer() (platform.WindowID, error) {
	id, err := m.locator.Locate(m.backend)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrContainerNotFound, err)
	}
	return id, nil
}

// IsValidWindow reports whether id refers to a live window right now.
func (m *Manager) IsValidWindow(id platform.WindowID) bool {
	return id != 0 && m.backend.IsWindow(id)
}

// Relocate reparents id into the background container.
func (m *Manager) Relocate(id platform.WindowID) error {
	if !m.IsValidWindow(id) {
		return fmt.Errorf("%w: %d", ErrWindowNotFound, id)
	}

	container, err := m.FindBackgroundContainer()
	if err != nil {
		return err
	}
	if platform.IsAncestor(m.backend, id, container) {
		return fmt.Errorf("%w: window %d is the container or one of its ancestors", ErrRejected, id)
	}

	current, err := m.backend.Parent(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWindowNotFound, err)
	}
	rec, err := m.capture(id, current, container)
	if err != nil {
		return err
	}

	// The window may have been destroyed while the hierarchy was walked.
	if !m.backend.IsWindow(id) {
		return fmt.Errorf("%w: %d", ErrWindowNotFound, id)
	}

	if err := m.backend.SetParent(id, container); err != nil {
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}
	if err := m.place(id, container, rec.Bounds); err != nil {
		// Roll back to where the window was, which is the container itself
		// for a window that was already relocated.
		if rerr := m.backend.SetParent(id, current); rerr != nil {
			m.logger.Warn("rollback after failed placement did not succeed", "window", id, "error", rerr)
		}
		return err
	}

	m.mu.Lock()
	m.records[id] = rec
	m.mu.Unlock()

	m.logger.Info("window relocated", "window", id, "container", container, "parent", rec.Parent, "fill", rec.Filled)
	return nil
}

// capture returns the record to store for id. A window that is already
// inside this container keeps its existing record, since re-capturing would
// replace the real original parent with the container.
func (m *Manager) capture(id, parent, container platform.WindowID) (Record, error) {
	if parent == container {
		m.mu.Lock()
		existing, ok := m.records[id]
		m.mu.Unlock()
		if ok {
			existing.Container = container
			existing.Filled = m.fill
			return existing, nil
		}
	}

	bounds, err := m.backend.Bounds(id)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrWindowNotFound, err)
	}
	above, err := platform.Above(m.backend, id)
	if err != nil {
		// Stacking is best effort; restore falls back to raising the window.
		m.logger.Debug("could not determine sibling above window", "window", id, "error", err)
		above = 0
	}
	return Record{
		Window:    id,
		Parent:    parent,
		Above:     above,
		Bounds:    bounds,
		Container: container,
		Filled:    m.fill,
		MovedAt:   m.now(),
	}, nil
}

func (m *Manager) place(id, container platform.WindowID, bounds platform.Rect) error {
	var target platform.Rect
	if m.fill {
		cb, err := m.backend.Bounds(container)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrContainerNotFound, err)
		}
		target = platform.Rect{Width: cb.Width, Height: cb.Height}
	} else {
		origin, err := m.backend.ScreenToClient(container, bounds.Origin())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRejected, err)
		}
		target = platform.Rect{X: origin.X, Y: origin.Y, Width: bounds.Width, Height: bounds.Height}
	}
	if err := m.backend.Move(id, target); err != nil {
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}
	if err := m.backend.SendToBottom(id); err != nil {
		m.logger.Debug("could not lower relocated window", "window", id, "error", err)
	}
	return nil
}

// Restore moves id back to its recorded placement. Restoring a window with no
// record succeeds without doing anything. The record is dropped whatever the
// outcome, so a window that vanished is not retried forever.
func (m *Manager) Restore(id platform.WindowID) error {
	m.mu.Lock()
	rec, ok := m.records[id]
	delete(m.records, id)
	m.mu.Unlock()

	if !ok {
		return nil
	}
	if !m.backend.IsWindow(id) {
		return fmt.Errorf("%w: %d", ErrWindowNotFound, id)
	}

	parent := rec.Parent
	if !m.backend.IsWindow(parent) {
		m.logger.Warn("recorded parent is gone, restoring to root", "window", id, "parent", parent)
		parent = m.backend.Root()
	}
	if err := m.backend.SetParent(id, parent); err != nil {
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}

	origin, err := m.backend.ScreenToClient(parent, rec.Bounds.Origin())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}
	if err := m.backend.Move(id, platform.Rect{X: origin.X, Y: origin.Y, Width: rec.Bounds.Width, Height: rec.Bounds.Height}); err != nil {
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}

	above := rec.Above
	if above != 0 && (!m.backend.IsWindow(above) || !m.childOf(above, parent)) {
		above = 0
	}
	if err := m.backend.PlaceBelow(id, above); err != nil {
		m.logger.Debug("could not restack restored window", "window", id, "error", err)
	}

	m.logger.Info("window restored", "window", id, "parent", parent)
	return nil
}

func (m *Manager) childOf(id, parent platform.WindowID) bool {
	p, err := m.backend.Parent(id)
	return err == nil && p == parent
}

// Lookup returns the record for id, if any.
func (m *Manager) Lookup(id platform.WindowID) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	return rec, ok
}

// Records returns a snapshot of all records ordered by window ID.
func (m *Manager) Records() []Record {
	m.mu.Lock()
	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Window < out[j].Window })
	return out
}

// Prune drops records whose windows no longer exist and returns their IDs.
func (m *Manager) Prune() []platform.WindowID {
	var gone []platform.WindowID
	for _, rec := range m.Records() {
		if !m.backend.IsWindow(rec.Window) {
			gone = append(gone, rec.Window)
		}
	}
	if len(gone) == 0 {
		return nil
	}

	m.mu.Lock()
	for _, id := range gone {
		delete(m.records, id)
	}
	m.mu.Unlock()
	return gone
}

// RestoreAll restores every recorded window and returns the failures.
func (m *Manager) RestoreAll() map[platform.WindowID]error {
	failed := make(map[platform.WindowID]error)
	for _, rec := range m.Records() {
		if err := m.Restore(rec.Window); err != nil {
			failed[rec.Window] = err
		}
	}
	return failed
}
