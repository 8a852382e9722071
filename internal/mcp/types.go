package mcp

import "github.com/1broseidon/tagwm/internal/wm"

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	Status wm.Status `json:"status"`
}

// ListClientsInput is the input for the list_clients tool.
type ListClientsInput struct {
	Tag   string `json:"tag,omitempty" jsonschema:"Only list clients on this tag"`
	Class string `json:"class,omitempty" jsonschema:"Only list clients whose WM_CLASS contains this text (case-insensitive)"`
}

// ListClientsOutput is the output for the list_clients tool.
type ListClientsOutput struct {
	Clients []wm.ClientInfo `json:"clients"`
}

// ListTagsInput is the input for the list_tags tool.
type ListTagsInput struct{}

// ListTagsOutput is the output for the list_tags tool.
type ListTagsOutput struct {
	Tags []wm.TagInfo `json:"tags"`
}

// SelectTagInput is the input for the select_tag tool.
type SelectTagInput struct {
	Tag string `json:"tag" jsonschema:"Single-character tag name such as 1 or 0"`
}

// SelectTagOutput is the output for the select_tag tool.
type SelectTagOutput struct {
	Tag      string `json:"tag"`
	Selected bool   `json:"selected"`
}

// FocusWindowInput is the input for the focus_window tool. Exactly one of
// Window and Title should be set.
type FocusWindowInput struct {
	Window string `json:"window,omitempty" jsonschema:"Window id as printed by list_clients, e.g. 0x1a00003"`
	Title  string `json:"title,omitempty" jsonschema:"Case-insensitive substring of the window title; the first match is focused"`
}

// FocusWindowOutput is the output for the focus_window tool.
type FocusWindowOutput struct {
	Window string `json:"window"`
	Tag    string `json:"tag"`
	Title  string `json:"title"`
}

// RunCommandInput is the input for the run_command tool.
type RunCommandInput struct {
	Command string   `json:"command" jsonschema:"Configured command name such as zoom, overview, focus-next or spawn"`
	Args    []string `json:"args,omitempty" jsonschema:"Command arguments, as in a key binding"`
}

// RunCommandOutput is the output for the run_command tool.
type RunCommandOutput struct {
	Command string `json:"command"`
	OK      bool   `json:"ok"`
}
