package launch

import (
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"testing"
)

func TestSpawnDetachesSession(t *testing.T) {
	s := NewSpawner(nil)
	var got *exec.Cmd
	s.start = func(cmd *exec.Cmd) error {
		got = cmd
		cmd.Process = &os.Process{Pid: 42}
		return nil
	}

	if err := s.Spawn([]string{"xterm", "-e", "top"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatalf("expected command to be started")
	}
	if !slices.Equal(got.Args, []string{"xterm", "-e", "top"}) {
		t.Fatalf("expected args [xterm -e top], got %v", got.Args)
	}
	if got.SysProcAttr == nil || !got.SysProcAttr.Setsid {
		t.Fatalf("expected Setsid")
	}
}

func TestSpawnRejectsEmpty(t *testing.T) {
	s := NewSpawner(nil)
	if err := s.Spawn(nil); err == nil {
		t.Fatalf("expected error for empty argv")
	}
	if err := s.SpawnShell("   "); err == nil {
		t.Fatalf("expected error for blank line")
	}
}

func TestSpawnShellAndEnv(t *testing.T) {
	s := NewSpawner(nil)
	s.Env = []string{"TAGWM_TEST=1"}
	var got *exec.Cmd
	s.start = func(cmd *exec.Cmd) error {
		got = cmd
		cmd.Process = &os.Process{Pid: 1}
		return nil
	}

	if err := s.SpawnShell("xsetroot -solid black"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(got.Args, []string{"/bin/sh", "-c", "xsetroot -solid black"}) {
		t.Fatalf("unexpected args %v", got.Args)
	}
	if !slices.Contains(got.Env, "TAGWM_TEST=1") {
		t.Fatalf("expected extra env to be passed")
	}
}

func TestRunStartupContinuesAfterFailure(t *testing.T) {
	s := NewSpawner(nil)
	var started []string
	s.start = func(cmd *exec.Cmd) error {
		started = append(started, cmd.Args[2])
		cmd.Process = &os.Process{Pid: 1}
		return nil
	}

	s.RunStartup([]string{"a", "", "b"})
	if !slices.Equal(started, []string{"a", "b"}) {
		t.Fatalf("expected [a b], got %v", started)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadEnv(filepath.Join(dir, "missing")); err != nil {
		t.Fatalf("expected missing env file to be ignored, got %v", err)
	}

	path := filepath.Join(dir, "env")
	if err := os.WriteFile(path, []byte("TAGWM_LOAD_ENV=from-file\nTAGWM_PRESET=file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TAGWM_PRESET", "process")
	t.Setenv("TAGWM_LOAD_ENV", "")
	os.Unsetenv("TAGWM_LOAD_ENV")

	if err := LoadEnv(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("TAGWM_LOAD_ENV"); got != "from-file" {
		t.Fatalf("expected from-file, got %q", got)
	}
	if got := os.Getenv("TAGWM_PRESET"); got != "process" {
		t.Fatalf("expected existing variable to win, got %q", got)
	}

	pairs, err := ReadEnv(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Contains(pairs, "TAGWM_LOAD_ENV=from-file") {
		t.Fatalf("expected pair in %v", pairs)
	}
}
