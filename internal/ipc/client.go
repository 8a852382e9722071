package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/tagwm/internal/runtimepath"
	"github.com/1broseidon/tagwm/internal/wm"
)

// ErrNotRunning is returned when nothing listens on the control socket.
var ErrNotRunning = errors.New("window manager is not running")

var defaultSocketPath = runtimepath.SocketPath

// Client handles IPC communication with the window manager
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the socket of the display named by
// $DISPLAY.
func NewClient() *Client {
	socketPath, err := defaultSocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientSocket(socketPath)
}

// NewClientSocket creates a client for an explicit socket path.
func NewClientSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    defaultRequestTimeout + 2*time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == StatusError {
		return nil, fmt.Errorf("window manager error: %s", resp.Error)
	}
	return &resp, nil
}

// call sends command with an optional payload and decodes the data into out
// when out is non-nil.
func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = raw
	}
	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Status retrieves the manager summary.
func (c *Client) Status() (*wm.Status, error) {
	var status wm.Status
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Clients lists every managed client.
func (c *Client) Clients() ([]wm.ClientInfo, error) {
	var clients []wm.ClientInfo
	if err := c.call(CommandListClients, nil, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// Tags lists the configured tags.
func (c *Client) Tags() ([]wm.TagInfo, error) {
	var tags []wm.TagInfo
	if err := c.call(CommandListTags, nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// Exec runs a configured command such as "select-tag 3".
func (c *Client) Exec(command string, args ...string) error {
	return c.call(CommandExec, ExecPayload{Command: command, Args: args}, nil)
}

// Reload asks the manager to re-read its configuration.
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// Dump retrieves the complete manager state and where it was written, if
// anywhere.
func (c *Client) Dump() (*wm.Dump, string, error) {
	var data DumpData
	if err := c.call(CommandDump, nil, &data); err != nil {
		return nil, "", err
	}
	var dump wm.Dump
	if err := json.Unmarshal(data.Dump, &dump); err != nil {
		return nil, "", fmt.Errorf("failed to parse dump: %w", err)
	}
	return &dump, data.Path, nil
}

// Ping checks if the manager is responding
func (c *Client) Ping() error {
	_, err := c.Status()
	return err
}
