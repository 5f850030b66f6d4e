// Package wallpaper is the handle-level API over the relocation manager:
// window handles cross it as decimal strings and runtime failures are
// reported as false rather than as errors.
package wallpaper

import (
	"io"
	"log/slog"

	"github.com/1broseidon/underlay/internal/relocate"
)

// API exposes the four desktop operations.
type API struct {
	manager *relocate.Manager
	logger  *slog.Logger
}

// New wraps manager. A nil logger discards output.
func New(manager *relocate.Manager, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &API{manager: manager, logger: logger}
}

// Manager returns the underlying relocation manager.
func (a *API) Manager() *relocate.Manager {
	return a.manager
}

// SetWindowBehindDesktop moves the window behind the desktop icons. The error
// is non-nil only for ErrInvalidArgument.
func (a *API) SetWindowBehindDesktop(handle any) (bool, error) {
	id, err := handleArg(handle)
	if err != nil {
		return false, err
	}
	if err := a.manager.Relocate(id); err != nil {
		a.logger.Debug("set behind desktop failed", "window", id, "error", err)
		return false, nil
	}
	return true, nil
}

// GetWorkerWindow returns the background container handle, if one exists.
func (a *API) GetWorkerWindow() (string, bool) {
	id, err := a.manager.FindBackgroundContainer()
	if err != nil {
		a.logger.Debug("background container lookup failed", "error", err)
		return "", false
	}
	return FormatHandle(id), true
}

// RestoreWindow moves a relocated window back. Restoring a window that was
// never relocated reports true.
func (a *API) RestoreWindow(handle any) (bool, error) {
	id, err := handleArg(handle)
	if err != nil {
		return false, err
	}
	if err := a.manager.Restore(id); err != nil {
		a.logger.Debug("restore failed", "window", id, "error", err)
		return false, nil
	}
	return true, nil
}

// IsValidWindow reports whether handle names a live window. It never fails.
func (a *API) IsValidWindow(handle any) bool {
	id, err := handleArg(handle)
	if err != nil {
		return false
	}
	return a.manager.IsValidWindow(id)
}
