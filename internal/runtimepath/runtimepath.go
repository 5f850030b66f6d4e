package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// SocketName is the file name of the daemon IPC socket.
const SocketName = "underlay.sock"

// Dir returns the runtime directory used for the IPC socket. Priority:
// 1) UNDERLAY_RUNTIME_DIR (if set)
// 2) XDG_RUNTIME_DIR (if set)
// 3) /run/user/<uid> (if present, not on Windows)
// 4) <tmp>/underlay-runtime-<uid> (created)
func Dir() (string, error) {
	if dir := os.Getenv("UNDERLAY_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	if runtime.GOOS != "windows" {
		runUserDir := fmt.Sprintf("/run/user/%d", uid)
		if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
			return runUserDir, nil
		}
	}

	// Getuid is -1 on Windows; the directory is per user through %TEMP%.
	name := "underlay-runtime"
	if uid >= 0 {
		name = fmt.Sprintf("underlay-runtime-%d", uid)
	}
	tmpDir := filepath.Join(os.TempDir(), name)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, SocketName), nil
}
