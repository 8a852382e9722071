package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/wm"
	"github.com/google/uuid"
)

// defaultRequestTimeout bounds how long a request waits for the manager.
const defaultRequestTimeout = 5 * time.Second

// Controller is the part of the window manager the socket exposes.
type Controller interface {
	Status(ctx context.Context) (wm.Status, error)
	Clients(ctx context.Context) ([]wm.ClientInfo, error)
	Tags(ctx context.Context) ([]wm.TagInfo, error)
	Dump(ctx context.Context) (wm.Dump, error)
	Exec(ctx context.Context, cmd config.Command, args []string) error
	Reload(ctx context.Context) error
}

var _ Controller = (*wm.Manager)(nil)

// ServerOptions configures a Server.
type ServerOptions struct {
	// SocketPath defaults to runtimepath.SocketPath().
	SocketPath string
	// DumpPath, when set, receives a JSON copy of every DUMP.
	DumpPath       string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	dumpPath   string
	timeout    time.Duration
	ctrl       Controller
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    sync.WaitGroup
}

// NewServer creates a new IPC server
func NewServer(ctrl Controller, opts ServerOptions) (*Server, error) {
	if ctrl == nil {
		return nil, errors.New("ipc server requires a controller")
	}
	socketPath := opts.SocketPath
	if socketPath == "" {
		p, err := defaultSocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = p
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		dumpPath:   opts.DumpPath,
		timeout:    timeout,
		ctrl:       ctrl,
		logger:     logger.With("component", "ipc"),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Serve listens until ctx is cancelled. It removes a stale socket first and
// the socket itself on return.
func (s *Server) Serve(ctx context.Context) error {
	// Remove existing socket if present
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	stop := context.AfterFunc(ctx, func() { listener.Close() })
	defer stop()
	defer os.Remove(s.socketPath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.conns.Wait()
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				s.conns.Wait()
				return nil
			}
			s.logger.Warn("failed to accept IPC connection", "error", err)
			continue
		}
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(ctx, conn)
		}()
	}
}

// Stop closes the listener; Serve returns once open connections finish.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(s.timeout + time.Second))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("failed to read IPC request", "error", err)
		return
	}

	var resp *Response
	req, err := ParseRequest(data)
	if err != nil {
		resp = NewErrorResponse(fmt.Sprintf("invalid request: %v", err))
	} else {
		reqID := uuid.NewString()
		s.logger.Debug("IPC request", "id", reqID, "command", string(req.Command))
		reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
		resp = s.handleCommand(reqCtx, req)
		cancel()
		if resp.Status == StatusError {
			s.logger.Debug("IPC request failed", "id", reqID, "error", resp.Error)
		}
	}

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("failed to marshal IPC response", "error", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send IPC response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		return respond(s.ctrl.Status(ctx))
	case CommandListClients:
		return respond(s.ctrl.Clients(ctx))
	case CommandListTags:
		return respond(s.ctrl.Tags(ctx))
	case CommandExec:
		return s.handleExec(ctx, req.Payload)
	case CommandReload:
		if err := s.ctrl.Reload(ctx); err != nil {
			return NewErrorResponse(fmt.Sprintf("failed to reload config: %v", err))
		}
		return ok(nil)
	case CommandDump:
		return s.handleDump(ctx)
	default:
		return NewErrorResponse(fmt.Sprintf("unknown command: %s", req.Command))
	}
}

func (s *Server) handleExec(ctx context.Context, payload json.RawMessage) *Response {
	var p ExecPayload
	if len(payload) == 0 {
		return NewErrorResponse("EXEC needs a payload")
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("invalid EXEC payload: %v", err))
	}
	if err := s.ctrl.Exec(ctx, config.Command(p.Command), p.Args); err != nil {
		return NewErrorResponse(fmt.Sprintf("failed to run %s: %v", p.Command, err))
	}
	return ok(nil)
}

func (s *Server) handleDump(ctx context.Context) *Response {
	dump, err := s.ctrl.Dump(ctx)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	raw, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("failed to marshal dump: %v", err))
	}
	data := DumpData{Dump: raw}
	if s.dumpPath != "" {
		if err := writeFileAtomic(s.dumpPath, append(raw, '\n')); err != nil {
			s.logger.Warn("failed to write state dump", "path", s.dumpPath, "error", err)
		} else {
			data.Path = s.dumpPath
		}
	}
	return ok(data)
}

func respond[T any](v T, err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return ok(v)
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tagwm-dump-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
