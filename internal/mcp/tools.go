package mcp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/wm"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.backend.Status()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, GetStatusOutput{Status: *status}, nil
}

func (s *Server) handleListClients(_ context.Context, _ *mcpsdk.CallToolRequest, args ListClientsInput) (*mcpsdk.CallToolResult, ListClientsOutput, error) {
	clients, err := s.backend.Clients()
	if err != nil {
		return nil, ListClientsOutput{}, err
	}
	class := strings.ToLower(args.Class)
	out := make([]wm.ClientInfo, 0, len(clients))
	for _, c := range clients {
		if args.Tag != "" && c.Tag != args.Tag {
			continue
		}
		if class != "" && !strings.Contains(strings.ToLower(c.Class), class) {
			continue
		}
		out = append(out, c)
	}
	return nil, ListClientsOutput{Clients: out}, nil
}

func (s *Server) handleListTags(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListTagsInput) (*mcpsdk.CallToolResult, ListTagsOutput, error) {
	tags, err := s.backend.Tags()
	if err != nil {
		return nil, ListTagsOutput{}, err
	}
	return nil, ListTagsOutput{Tags: tags}, nil
}

func (s *Server) handleSelectTag(_ context.Context, _ *mcpsdk.CallToolRequest, args SelectTagInput) (*mcpsdk.CallToolResult, SelectTagOutput, error) {
	if len([]rune(args.Tag)) != 1 {
		return nil, SelectTagOutput{}, fmt.Errorf("tag must be a single character, got %q", args.Tag)
	}
	if err := s.backend.Exec(string(config.CmdSelectTag), args.Tag); err != nil {
		s.logger.Debug("select_tag failed", "tag", args.Tag, "error", err)
		return nil, SelectTagOutput{}, err
	}
	return nil, SelectTagOutput{Tag: args.Tag, Selected: true}, nil
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusWindowInput) (*mcpsdk.CallToolResult, FocusWindowOutput, error) {
	if (args.Window == "") == (args.Title == "") {
		return nil, FocusWindowOutput{}, errors.New("exactly one of window or title is required")
	}
	clients, err := s.backend.Clients()
	if err != nil {
		return nil, FocusWindowOutput{}, err
	}
	target, err := findClient(clients, args.Window, args.Title)
	if err != nil {
		return nil, FocusWindowOutput{}, err
	}
	if err := s.backend.Exec(string(config.CmdFocusWindow), target.Window); err != nil {
		return nil, FocusWindowOutput{}, err
	}
	return nil, FocusWindowOutput{Window: target.Window, Tag: target.Tag, Title: target.Title}, nil
}

func (s *Server) handleRunCommand(_ context.Context, _ *mcpsdk.CallToolRequest, args RunCommandInput) (*mcpsdk.CallToolResult, RunCommandOutput, error) {
	if args.Command == "" {
		return nil, RunCommandOutput{}, errors.New("command is required")
	}
	if err := config.Command(args.Command).ValidateArgs(args.Args); err != nil {
		return nil, RunCommandOutput{}, err
	}
	if err := s.backend.Exec(args.Command, args.Args...); err != nil {
		s.logger.Debug("run_command failed", "command", args.Command, "error", err)
		return nil, RunCommandOutput{}, err
	}
	return nil, RunCommandOutput{Command: args.Command, OK: true}, nil
}

// findClient matches a window id numerically, so 0x1a00003 and 27262979 name
// the same window, or else the first title containing title.
func findClient(clients []wm.ClientInfo, window, title string) (wm.ClientInfo, error) {
	if window != "" {
		want, err := strconv.ParseUint(window, 0, 32)
		if err != nil {
			return wm.ClientInfo{}, fmt.Errorf("invalid window id %q", window)
		}
		for _, c := range clients {
			id, err := strconv.ParseUint(c.Window, 0, 32)
			if err == nil && id == want {
				return c, nil
			}
		}
		return wm.ClientInfo{}, fmt.Errorf("no managed window %s", window)
	}
	needle := strings.ToLower(title)
	for _, c := range clients {
		if strings.Contains(strings.ToLower(c.Title), needle) {
			return c, nil
		}
	}
	return wm.ClientInfo{}, fmt.Errorf("no managed window titled %q", title)
}
