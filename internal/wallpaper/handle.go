package wallpaper

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/underlay/internal/platform"
)

// ErrInvalidArgument is returned when a handle is missing, not a string, or
// does not parse as a non-zero unsigned integer.
var ErrInvalidArgument = errors.New("invalid argument")

// ParseHandle converts the decimal string form of a window handle.
func ParseHandle(s string) (platform.WindowID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty window handle", ErrInvalidArgument)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid window handle %q", ErrInvalidArgument, s)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: null window handle", ErrInvalidArgument)
	}
	id := platform.WindowID(n)
	if uint64(id) != n {
		return 0, fmt.Errorf("%w: window handle %q out of range", ErrInvalidArgument, s)
	}
	return id, nil
}

// FormatHandle returns the decimal string form of id.
func FormatHandle(id platform.WindowID) string {
	return strconv.FormatUint(uint64(id), 10)
}

func handleArg(v any) (platform.WindowID, error) {
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("%w: window handle must be a string, got %T", ErrInvalidArgument, v)
	}
	return ParseHandle(s)
}
