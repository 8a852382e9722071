package config

import (
	"fmt"
	"strconv"
)

// Command names an action a key binding or IPC client can trigger.
type Command string

const (
	CmdNone             Command = "none"
	CmdQuit             Command = "quit"
	CmdReload           Command = "reload"
	CmdFocusNext        Command = "focus-next"
	CmdFocusPrev        Command = "focus-prev"
	CmdFocusIndex       Command = "focus-index"
	CmdKill             Command = "kill"
	CmdToggleMaximize   Command = "toggle-maximize"
	CmdToggleFloating   Command = "toggle-floating"
	CmdToggleFullscreen Command = "toggle-fullscreen"
	CmdShiftWindow      Command = "shift-window"
	CmdExpandWidth      Command = "expand-width"
	CmdExpandHeight     Command = "expand-height"
	CmdOverview         Command = "overview"
	CmdZoom             Command = "zoom"
	CmdToggleBack       Command = "toggle-back"
	CmdSelectTag        Command = "select-tag"
	CmdAddTag           Command = "add-tag"
	CmdSelectWindow     Command = "select-window"
	CmdFocusWindow      Command = "focus-window"
	CmdWindowUserTag    Command = "window-user-tag"
	CmdWorkspaceUserTag Command = "workspace-user-tag"
	CmdSpawn            Command = "spawn"
)

type commandSpec struct {
	minArgs int
	maxArgs int // -1 means unbounded
	check   func(args []string) error
}

var commandSpecs = map[Command]commandSpec{
	CmdNone:             {},
	CmdQuit:             {},
	CmdReload:           {},
	CmdFocusNext:        {},
	CmdFocusPrev:        {},
	CmdFocusIndex:       {minArgs: 1, maxArgs: 1, check: checkFocusIndex},
	CmdKill:             {},
	CmdToggleMaximize:   {},
	CmdToggleFloating:   {},
	CmdToggleFullscreen: {},
	CmdShiftWindow:      {minArgs: 1, maxArgs: 1, check: checkDirection},
	CmdExpandWidth:      {minArgs: 1, maxArgs: 1, check: checkGrowth},
	CmdExpandHeight:     {minArgs: 1, maxArgs: 1, check: checkGrowth},
	CmdOverview:         {},
	CmdZoom:             {},
	CmdToggleBack:       {},
	CmdSelectTag:        {minArgs: 1, maxArgs: 1, check: checkTagArg},
	CmdAddTag:           {minArgs: 1, maxArgs: 1, check: checkTagArg},
	CmdSelectWindow:     {},
	CmdFocusWindow:      {minArgs: 1, maxArgs: 1, check: checkWindowID},
	CmdWindowUserTag:    {},
	CmdWorkspaceUserTag: {},
	CmdSpawn:            {minArgs: 1, maxArgs: -1},
}

// Commands returns every known command name.
func Commands() []Command {
	out := make([]Command, 0, len(commandSpecs))
	for c := range commandSpecs {
		out = append(out, c)
	}
	return out
}

// ValidateArgs checks that the command exists and its arguments are well formed.
func (c Command) ValidateArgs(args []string) error {
	spec, ok := commandSpecs[c]
	if !ok {
		return fmt.Errorf("unknown command %q", c)
	}
	if len(args) < spec.minArgs {
		return fmt.Errorf("%s needs at least %d argument(s)", c, spec.minArgs)
	}
	if spec.maxArgs >= 0 && len(args) > spec.maxArgs {
		return fmt.Errorf("%s takes at most %d argument(s)", c, spec.maxArgs)
	}
	if spec.check != nil {
		return spec.check(args)
	}
	return nil
}

func checkFocusIndex(args []string) error {
	if args[0] == "last" {
		return nil
	}
	if n, err := strconv.Atoi(args[0]); err != nil || n < 0 {
		return fmt.Errorf("focus index must be a non-negative number or \"last\", got %q", args[0])
	}
	return nil
}

func checkDirection(args []string) error {
	switch args[0] {
	case "left", "right", "up", "down":
		return nil
	}
	return fmt.Errorf("direction must be one of: left, right, up, down")
}

func checkGrowth(args []string) error {
	switch args[0] {
	case "grow", "shrink":
		return nil
	}
	if _, err := strconv.Atoi(args[0]); err != nil {
		return fmt.Errorf("expected grow, shrink or a pixel delta, got %q", args[0])
	}
	return nil
}

func checkWindowID(args []string) error {
	if _, err := strconv.ParseUint(args[0], 0, 32); err != nil {
		return fmt.Errorf("window must be a numeric id such as 0x1a00003, got %q", args[0])
	}
	return nil
}

func checkTagArg(args []string) error {
	if len(args[0]) != 1 || args[0] == "\x00" {
		return fmt.Errorf("tag must be a single character, got %q", args[0])
	}
	return nil
}
