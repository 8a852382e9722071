package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/geom"
	"github.com/1broseidon/tagwm/internal/wm"
)

type fakeController struct {
	mu       sync.Mutex
	execs    []string
	reloads  int
	execErr  error
	dumpRing wm.WorkspaceDump
}

func (f *fakeController) Status(ctx context.Context) (wm.Status, error) {
	return wm.Status{SessionID: "s-1", CurrentTag: "2", Clients: 3}, nil
}

func (f *fakeController) Clients(ctx context.Context) ([]wm.ClientInfo, error) {
	return []wm.ClientInfo{
		{Window: "0xa", Tag: "1", Title: "term", Class: "XTerm", Focused: true, Rect: geom.New(0, 0, 500, 800)},
		{Window: "0xb", Tag: "2", Title: "web", Class: "Firefox"},
	}, nil
}

func (f *fakeController) Tags(ctx context.Context) ([]wm.TagInfo, error) {
	return []wm.TagInfo{{Name: "1", Layout: "tile"}, {Name: "2", Layout: "fullscreen", Current: true}}, nil
}

func (f *fakeController) Dump(ctx context.Context) (wm.Dump, error) {
	return wm.Dump{
		Status:     wm.Status{CurrentTag: "1"},
		Workspaces: []wm.WorkspaceDump{f.dumpRing},
		BackStack:  []string{"0xa"},
	}, nil
}

func (f *fakeController) Exec(ctx context.Context, cmd config.Command, args []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.execErr != nil {
		return f.execErr
	}
	f.execs = append(f.execs, strings.TrimSpace(string(cmd)+" "+strings.Join(args, " ")))
	return nil
}

func (f *fakeController) Reload(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return nil
}

func startServer(t *testing.T, ctrl Controller, opts ServerOptions) (*Client, context.CancelFunc, <-chan error) {
	t.Helper()
	dir := t.TempDir()
	opts.SocketPath = filepath.Join(dir, "wm.sock")
	srv, err := NewServer(ctrl, opts)
	if err != nil {
		t.Fatalf("expected server, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	client := NewClientSocket(srv.SocketPath())
	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := client.Ping(); err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("server did not come up on %s", srv.SocketPath())
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Cleanup(cancel)
	return client, cancel, done
}

func TestClientQueries(t *testing.T) {
	client, _, _ := startServer(t, &fakeController{}, ServerOptions{})

	status, err := client.Status()
	if err != nil {
		t.Fatalf("expected status, got %v", err)
	}
	if status.SessionID != "s-1" || status.CurrentTag != "2" || status.Clients != 3 {
		t.Fatalf("unexpected status %+v", status)
	}

	clients, err := client.Clients()
	if err != nil {
		t.Fatalf("expected clients, got %v", err)
	}
	if len(clients) != 2 || clients[0].Class != "XTerm" || !clients[0].Focused {
		t.Fatalf("unexpected clients %+v", clients)
	}
	if clients[0].Rect != geom.New(0, 0, 500, 800) {
		t.Fatalf("expected rect to survive the round trip, got %v", clients[0].Rect)
	}

	tags, err := client.Tags()
	if err != nil {
		t.Fatalf("expected tags, got %v", err)
	}
	if len(tags) != 2 || !tags[1].Current || tags[1].Layout != "fullscreen" {
		t.Fatalf("unexpected tags %+v", tags)
	}
}

func TestClientExecAndReload(t *testing.T) {
	ctrl := &fakeController{}
	client, _, _ := startServer(t, ctrl, ServerOptions{})

	if err := client.Exec("select-tag", "3"); err != nil {
		t.Fatalf("expected exec to succeed, got %v", err)
	}
	if err := client.Exec("zoom"); err != nil {
		t.Fatalf("expected exec to succeed, got %v", err)
	}
	if err := client.Reload(); err != nil {
		t.Fatalf("expected reload to succeed, got %v", err)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if len(ctrl.execs) != 2 || ctrl.execs[0] != "select-tag 3" || ctrl.execs[1] != "zoom" {
		t.Fatalf("unexpected execs %v", ctrl.execs)
	}
	if ctrl.reloads != 1 {
		t.Fatalf("expected 1 reload, got %d", ctrl.reloads)
	}
}

func TestClientExecError(t *testing.T) {
	ctrl := &fakeController{execErr: errors.New(`unknown tag "x"`)}
	client, _, _ := startServer(t, ctrl, ServerOptions{})

	err := client.Exec("select-tag", "x")
	if err == nil || !strings.Contains(err.Error(), `unknown tag "x"`) {
		t.Fatalf("expected the manager error, got %v", err)
	}
}

func TestClientDumpWritesFile(t *testing.T) {
	dumpPath := filepath.Join(t.TempDir(), "state.json")
	ctrl := &fakeController{dumpRing: wm.WorkspaceDump{Tag: "1", Layout: "tile"}}
	client, _, _ := startServer(t, ctrl, ServerOptions{DumpPath: dumpPath})

	dump, path, err := client.Dump()
	if err != nil {
		t.Fatalf("expected dump, got %v", err)
	}
	if path != dumpPath {
		t.Fatalf("expected dump path %s, got %s", dumpPath, path)
	}
	if len(dump.Workspaces) != 1 || dump.Workspaces[0].Tag != "1" || len(dump.BackStack) != 1 {
		t.Fatalf("unexpected dump %+v", dump)
	}

	data, err := os.ReadFile(dumpPath)
	if err != nil {
		t.Fatalf("expected dump file, got %v", err)
	}
	var onDisk wm.Dump
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("expected JSON dump file, got %v", err)
	}
	if onDisk.Status.CurrentTag != "1" {
		t.Fatalf("expected current tag 1 on disk, got %q", onDisk.Status.CurrentTag)
	}
}

func TestServerRejectsBadRequests(t *testing.T) {
	client, _, _ := startServer(t, &fakeController{}, ServerOptions{})

	tests := []struct {
		name string
		req  *Request
		want string
	}{
		{"unknown", &Request{Command: "NOPE"}, "unknown command"},
		{"exec without payload", &Request{Command: CommandExec}, "needs a payload"},
		{"exec bad payload", &Request{Command: CommandExec, Payload: json.RawMessage(`"zoom"`)}, "invalid EXEC payload"},
	}
	for _, tt := range tests {
		_, err := client.sendRequest(tt.req)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tt.name, tt.want, err)
		}
	}
}

func TestClientNotRunning(t *testing.T) {
	client := NewClientSocket(filepath.Join(t.TempDir(), "missing.sock"))
	if err := client.Ping(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	client, cancel, done := startServer(t, &fakeController{}, ServerOptions{})
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected Serve to return after cancel")
	}
	if _, err := os.Stat(client.socketPath); !os.IsNotExist(err) {
		t.Fatalf("expected socket to be removed, got %v", err)
	}
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"command":"EXEC","payload":{"command":"zoom"}}`))
	if err != nil {
		t.Fatalf("expected request, got %v", err)
	}
	if req.Command != CommandExec {
		t.Fatalf("expected EXEC, got %s", req.Command)
	}
	if _, err := ParseRequest([]byte(`{}`)); err == nil {
		t.Fatalf("expected error for a request without command")
	}
	if _, err := ParseRequest([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}
