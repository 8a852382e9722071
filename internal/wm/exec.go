package wm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/tagwm/internal/client"
	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/palette"
	"github.com/1broseidon/tagwm/internal/platform"
)

var (
	errNoPrompt  = errors.New("no prompt backend configured")
	errNoSpawner = errors.New("no spawner configured")
	errNoReload  = errors.New("reload is not configured")

	errUnknownWindow = errors.New("no managed window")
)

// exec interprets a configured command on the manager goroutine.
func (m *Manager) exec(cmd config.Command, args []string) error {
	if err := cmd.ValidateArgs(args); err != nil {
		return err
	}
	m.logger.Debug("running command", "command", string(cmd), "args", args)

	switch cmd {
	case config.CmdNone:
	case config.CmdQuit:
		m.quit = true
	case config.CmdReload:
		return m.reload()
	case config.CmdFocusNext:
		m.ShiftFocus(1)
	case config.CmdFocusPrev:
		m.ShiftFocus(-1)
	case config.CmdFocusIndex:
		if args[0] == "last" {
			m.SetFocusIndex(-1)
			return nil
		}
		n, _ := strconv.Atoi(args[0])
		m.SetFocusIndex(n)
	case config.CmdKill:
		m.KillClient()
	case config.CmdToggleMaximize:
		m.ToggleMaximize()
	case config.CmdToggleFloating:
		m.ToggleFloating()
	case config.CmdToggleFullscreen:
		if c := m.CurrentFocused(); c != nil {
			m.SetFullscreen(c, !c.IsFullscreen())
		}
	case config.CmdShiftWindow:
		d := m.cfg.MoveDelta
		switch args[0] {
		case "left":
			m.ShiftWindow(-d, 0)
		case "right":
			m.ShiftWindow(d, 0)
		case "up":
			m.ShiftWindow(0, -d)
		case "down":
			m.ShiftWindow(0, d)
		}
	case config.CmdExpandWidth:
		m.ExpandWidth(m.growth(args[0]))
	case config.CmdExpandHeight:
		m.ExpandHeight(m.growth(args[0]))
	case config.CmdOverview:
		m.ToggleOverview()
	case config.CmdZoom:
		m.Zoom()
	case config.CmdToggleBack:
		m.ToggleBack()
	case config.CmdSelectTag, config.CmdAddTag:
		tag := client.Tag(args[0][0])
		if _, ok := m.workspaces[tag]; !ok {
			return fmt.Errorf("unknown tag %q", args[0])
		}
		if cmd == config.CmdSelectTag {
			m.SelectTag(tag)
		} else {
			m.AddTag(tag)
		}
	case config.CmdSelectWindow:
		return m.selectWindow()
	case config.CmdFocusWindow:
		return m.focusWindow(args[0])
	case config.CmdWindowUserTag:
		return m.windowUserTag()
	case config.CmdWorkspaceUserTag:
		return m.workspaceUserTag()
	case config.CmdSpawn:
		if m.spawner == nil {
			return errNoSpawner
		}
		if len(args) == 1 {
			return m.spawner.SpawnShell(args[0])
		}
		return m.spawner.Spawn(args)
	default:
		return fmt.Errorf("unhandled command %q", cmd)
	}
	return nil
}

// growth turns grow, shrink or a pixel count into a size delta.
func (m *Manager) growth(arg string) int {
	switch arg {
	case "grow":
		return m.cfg.ExpandDelta
	case "shrink":
		return -m.cfg.ExpandDelta
	}
	n, _ := strconv.Atoi(arg)
	return n
}

func (m *Manager) reload() error {
	if m.loadConfig == nil {
		return errNoReload
	}
	cfg, err := m.loadConfig()
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	if err := m.applyConfig(cfg); err != nil {
		return fmt.Errorf("apply config: %w", err)
	}

	focused := m.CurrentFocused()
	for _, c := range m.AllClients() {
		if !c.IsFullscreen() {
			c.SetBorder(m.theme.BorderWidth)
		}
		color := m.theme.NormalColor
		if c == focused {
			color = m.theme.FocusedColor
		}
		m.display.SetBorderColor(c.Window(), color)
	}
	m.publishDesktops()
	m.arrangeWindows()
	m.dumpStatus()
	m.logger.Info("configuration reloaded", "tags", len(m.tagOrder), "keys", len(m.bindings))
	return nil
}

func (m *Manager) windowUserTag() error {
	c := m.CurrentFocused()
	if c == nil {
		return nil
	}
	if m.prompt == nil {
		return errNoPrompt
	}
	text, err := m.prompt.Ask(fmt.Sprintf("add user tag to %s: ", c.Class()))
	if err != nil {
		return ignoreCancel(err)
	}
	if text = strings.TrimSpace(text); text == "" {
		return nil
	}
	c.PutExtra(extraUserTag, text)
	m.dumpStatus()
	return nil
}

func (m *Manager) workspaceUserTag() error {
	if m.prompt == nil {
		return errNoPrompt
	}
	text, err := m.prompt.Ask("tag: ")
	if err != nil {
		return ignoreCancel(err)
	}
	if text = strings.TrimSpace(text); text == "" {
		return nil
	}
	m.CurrentWorkspace().Description = text
	m.dumpStatus()
	return nil
}

// selectWindow lists every client grouped by tag and focuses the one the
// user picks.
func (m *Manager) selectWindow() error {
	if m.prompt == nil {
		return errNoPrompt
	}
	clients := m.AllClients()
	if len(clients) == 0 {
		return nil
	}
	focused := m.CurrentFocused()

	items := make([]palette.Item, 0, len(clients)+len(m.workspaces))
	var lastTag client.Tag
	for _, c := range clients {
		if c.Tag() != lastTag {
			lastTag = c.Tag()
			header := "tag " + lastTag.String()
			if ws := m.workspaces[lastTag]; ws != nil && ws.Description != "" {
				header += " - " + ws.Description
			}
			items = append(items, palette.Item{Label: header, IsHeader: true})
		}
		userTag, _ := c.Extra(extraUserTag)
		items = append(items, palette.Item{
			Label:    fmt.Sprintf("[(%s) %s] %s", userTag, c.Class(), c.Title()),
			Info:     windowID(c.Window()),
			Meta:     c.Class(),
			IsActive: c == focused,
		})
	}

	picked, err := m.prompt.Show("window", items)
	if err != nil {
		return ignoreCancel(err)
	}
	if err := m.focusWindow(picked.Info); err != nil && !errors.Is(err, errUnknownWindow) {
		return err
	}
	return nil
}

// focusWindow switches to the tag of the window with the given id and
// focuses it.
func (m *Manager) focusWindow(id string) error {
	n, err := strconv.ParseUint(id, 0, 32)
	if err != nil {
		return fmt.Errorf("parse window id %q: %w", id, err)
	}
	c := m.ClientByWindow(platform.Window(n))
	if c == nil {
		return fmt.Errorf("%w: %s", errUnknownWindow, id)
	}
	m.SelectTag(c.Tag())
	m.SetFocus(c)
	return nil
}

func ignoreCancel(err error) error {
	if errors.Is(err, palette.ErrCancelled) {
		return nil
	}
	return err
}
