package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir returns the runtime directory used for the IPC socket and state dumps.
// Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/tagwm-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/tagwm-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// DisplaySuffix turns an X display name into a file name fragment so that
// window managers on different displays do not share a socket.
// ":0" and ":0.0" both become "0"; an empty name becomes "default".
func DisplaySuffix(display string) string {
	display = strings.TrimSpace(display)
	if i := strings.LastIndex(display, ":"); i >= 0 {
		display = display[i+1:]
	}
	if dot := strings.Index(display, "."); dot >= 0 {
		display = display[:dot]
	}
	display = strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-', r == '_':
			return r
		}
		return -1
	}, display)
	if display == "" {
		return "default"
	}
	return display
}

// SocketPath returns the IPC socket path for the display named by $DISPLAY.
func SocketPath() (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, "tagwm-"+DisplaySuffix(os.Getenv("DISPLAY"))+".sock"), nil
}

// DumpPath returns where the DUMP command writes the window manager state.
func DumpPath() (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, "tagwm-"+DisplaySuffix(os.Getenv("DISPLAY"))+"-state.txt"), nil
}
