// Package launch starts programs on behalf of the window manager.
package launch

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
)

// Spawner starts detached processes. Children get their own session so they
// outlive the window manager and do not receive its terminal signals.
type Spawner struct {
	// Env is appended to the inherited environment of every child.
	Env    []string
	Logger *slog.Logger

	// start is replaced in tests.
	start func(cmd *exec.Cmd) error
}

// NewSpawner returns a spawner that logs to logger.
func NewSpawner(logger *slog.Logger) *Spawner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Spawner{Logger: logger, start: startAndReap}
}

// Spawn runs argv without waiting for it.
func (s *Spawner) Spawn(argv []string) error {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return fmt.Errorf("spawn: empty command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	if len(s.Env) > 0 {
		cmd.Env = append(os.Environ(), s.Env...)
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := s.start(cmd); err != nil {
		return fmt.Errorf("spawn %s: %w", argv[0], err)
	}
	s.Logger.Debug("spawned process", "command", argv[0], "pid", cmd.Process.Pid)
	return nil
}

// SpawnShell runs a command line through /bin/sh.
func (s *Spawner) SpawnShell(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return fmt.Errorf("spawn: empty command")
	}
	return s.Spawn([]string{"/bin/sh", "-c", line})
}

// RunStartup spawns every startup command line, logging failures.
func (s *Spawner) RunStartup(lines []string) {
	for _, line := range lines {
		if err := s.SpawnShell(line); err != nil {
			s.Logger.Warn("failed to run startup command", "command", line, "error", err)
		}
	}
}

func startAndReap(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// LoadEnv reads a dotenv file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ReadEnv parses a dotenv file into KEY=VALUE pairs suitable for Spawner.Env.
func ReadEnv(path string) ([]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	out := make([]string, 0, len(values))
	for k, v := range values {
		out = append(out, k+"="+v)
	}
	return out, nil
}
