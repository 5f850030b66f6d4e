//go:build !windows && !linux

package platform

// NewBackend reports that no window system backend exists for this platform.
func NewBackend() (Backend, error) {
	return nil, ErrUnsupported
}
