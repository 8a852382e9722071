package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config is the effective window manager configuration.
type Config struct {
	LogLevel           string          `yaml:"log_level"`
	Modifier           string          `yaml:"modifier"`
	BorderWidth        int             `yaml:"border_width"`
	BarHeight          int             `yaml:"bar_height"`
	OverviewInset      int             `yaml:"overview_inset"`
	MoveDelta          int             `yaml:"move_delta"`
	ExpandDelta        int             `yaml:"expand_delta"`
	FocusedBorderColor string          `yaml:"focused_border_color"`
	NormalBorderColor  string          `yaml:"normal_border_color"`
	DragTimeout        time.Duration   `yaml:"drag_timeout"`
	EnvFile            string          `yaml:"env_file,omitempty"`
	Tags               []TagConfig     `yaml:"tags"`
	Keys               []KeyBinding    `yaml:"keys"`
	Rules              []Rule          `yaml:"rules"`
	Startup            []string        `yaml:"startup"`
	StatusBar          StatusBarConfig `yaml:"status_bar"`
	Prompt             PromptConfig    `yaml:"prompt"`
}

// TagConfig declares one workspace. Name is a single character.
type TagConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Layout      string `yaml:"layout,omitempty"`
	Monitor     int    `yaml:"monitor,omitempty"`
}

// KeyBinding maps a key sequence such as "Mod-Shift-Return" to a command.
// "Mod" stands for the configured modifier.
type KeyBinding struct {
	Key     string   `yaml:"key"`
	Command Command  `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
}

type RuleMatch struct {
	Class  string `yaml:"class,omitempty"`
	Title  string `yaml:"title,omitempty"`
	Dialog *bool  `yaml:"dialog,omitempty"`
}

// Rule adjusts newly managed windows. Every matching rule applies, in order.
type Rule struct {
	Match    RuleMatch         `yaml:"match"`
	Floating *bool             `yaml:"floating,omitempty"`
	Sticky   *bool             `yaml:"sticky,omitempty"`
	Tag      string            `yaml:"tag,omitempty"`
	Weight   *int              `yaml:"weight,omitempty"`
	Extras   map[string]string `yaml:"extras,omitempty"`
}

// Matches reports whether a window with the given class, title and dialog
// type satisfies every condition of the rule.
func (m RuleMatch) Matches(class, title string, dialog bool) bool {
	if m.Class == "" && m.Title == "" && m.Dialog == nil {
		return false
	}
	if m.Class != "" && !strings.EqualFold(m.Class, class) {
		return false
	}
	if m.Title != "" && !strings.Contains(title, m.Title) {
		return false
	}
	if m.Dialog != nil && *m.Dialog != dialog {
		return false
	}
	return true
}

type StatusBarConfig struct {
	Kind                string   `yaml:"kind"`
	Command             string   `yaml:"command"`
	Args                []string `yaml:"args,omitempty"`
	TitleLength         int      `yaml:"title_length"`
	ClientColor         string   `yaml:"client_color"`
	SelectedClientColor string   `yaml:"selected_client_color"`
	TagColor            string   `yaml:"tag_color"`
	SelectedTagColor    string   `yaml:"selected_tag_color"`
}

type PromptConfig struct {
	Backend string   `yaml:"backend"`
	Args    []string `yaml:"args,omitempty"`
}

func boolPtr(b bool) *bool { return &b }

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	cfg := &Config{
		LogLevel:           "info",
		Modifier:           "Mod4",
		BorderWidth:        3,
		BarHeight:          15,
		OverviewInset:      15,
		MoveDelta:          15,
		ExpandDelta:        10,
		FocusedBorderColor: "#00ffff",
		NormalBorderColor:  "#004c4c",
		DragTimeout:        30 * time.Second,
		Rules: []Rule{
			{Match: RuleMatch{Class: "Gimp"}, Floating: boolPtr(true)},
			{Match: RuleMatch{Class: "VirtualBox"}, Floating: boolPtr(true)},
			{Match: RuleMatch{Dialog: boolPtr(true)}, Floating: boolPtr(true)},
			{Match: RuleMatch{Class: "Tilda"}, Floating: boolPtr(true), Sticky: boolPtr(true)},
		},
		StatusBar: StatusBarConfig{
			Kind:                "xmobar",
			Command:             "xmobar",
			TitleLength:         8,
			ClientColor:         "#FFFFFF",
			SelectedClientColor: "#FFFF00",
			TagColor:            "#FFFFFF",
			SelectedTagColor:    "#00FF00",
		},
		Prompt: PromptConfig{Backend: "auto"},
	}
	for _, name := range []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0"} {
		cfg.Tags = append(cfg.Tags, TagConfig{Name: name})
	}
	cfg.Keys = defaultKeys(cfg.Tags)
	return cfg
}

func defaultKeys(tags []TagConfig) []KeyBinding {
	keys := []KeyBinding{
		{Key: "Mod-q", Command: CmdQuit},
		{Key: "Mod-Shift-r", Command: CmdReload},
		{Key: "Mod-j", Command: CmdFocusNext},
		{Key: "Mod-k", Command: CmdFocusPrev},
		{Key: "Mod-F4", Command: CmdKill},
		{Key: "Mod-m", Command: CmdToggleMaximize},
		{Key: "Mod-e", Command: CmdToggleFloating},
		{Key: "Mod-Left", Command: CmdShiftWindow, Args: []string{"left"}},
		{Key: "Mod-Right", Command: CmdShiftWindow, Args: []string{"right"}},
		{Key: "Mod-Up", Command: CmdShiftWindow, Args: []string{"up"}},
		{Key: "Mod-Down", Command: CmdShiftWindow, Args: []string{"down"}},
		{Key: "Mod-Shift-Up", Command: CmdExpandHeight, Args: []string{"shrink"}},
		{Key: "Mod-Shift-Down", Command: CmdExpandHeight, Args: []string{"grow"}},
		{Key: "Mod-Shift-Right", Command: CmdExpandWidth, Args: []string{"grow"}},
		{Key: "Mod-Shift-Left", Command: CmdExpandWidth, Args: []string{"shrink"}},
		{Key: "Mod-F2", Command: CmdOverview},
		{Key: "Mod-Return", Command: CmdZoom},
		{Key: "Mod-Tab", Command: CmdToggleBack},
		{Key: "Mod-y", Command: CmdFocusIndex, Args: []string{"0"}},
		{Key: "Mod-u", Command: CmdFocusIndex, Args: []string{"1"}},
		{Key: "Mod-i", Command: CmdFocusIndex, Args: []string{"2"}},
		{Key: "Mod-o", Command: CmdFocusIndex, Args: []string{"3"}},
		{Key: "Mod-p", Command: CmdFocusIndex, Args: []string{"last"}},
		{Key: "Mod-w", Command: CmdSelectWindow},
		{Key: "Mod-Shift-w", Command: CmdWindowUserTag},
		{Key: "Mod-Shift-t", Command: CmdWorkspaceUserTag},
		{Key: "Mod-r", Command: CmdSpawn, Args: []string{"dmenu_run"}},
		{Key: "Mod-t", Command: CmdSpawn, Args: []string{"x-terminal-emulator"}},
	}
	for _, tag := range tags {
		keys = append(keys,
			KeyBinding{Key: "Mod-" + tag.Name, Command: CmdSelectTag, Args: []string{tag.Name}},
			KeyBinding{Key: "Mod-Shift-" + tag.Name, Command: CmdAddTag, Args: []string{tag.Name}},
		)
	}
	return keys
}

// ResolveKey replaces the "Mod" placeholder with the configured modifier.
func (c *Config) ResolveKey(key string) string {
	parts := strings.Split(key, "-")
	for i, p := range parts {
		if strings.EqualFold(p, "mod") {
			parts[i] = c.Modifier
		}
	}
	return strings.Join(parts, "-")
}

// DefaultTag returns the tag selected at startup.
func (c *Config) DefaultTag() byte {
	if len(c.Tags) == 0 {
		return '1'
	}
	return c.Tags[0].Name[0]
}

// ParseColor parses "#rrggbb" into a pixel value.
func ParseColor(s string) (uint32, error) {
	hex, ok := strings.CutPrefix(strings.TrimSpace(s), "#")
	if !ok || len(hex) != 6 {
		return 0, fmt.Errorf("color must look like #rrggbb, got %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return uint32(v), nil
}

func validLayout(s string) bool {
	name, inner, hasInner := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")
	switch name {
	case "", "tile", "fullscreen", "overview":
		return !hasInner
	case "master-stack":
		return !hasInner || validLayout(inner)
	}
	return false
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	switch strings.ToLower(c.Modifier) {
	case "shift", "control", "mod1", "mod2", "mod3", "mod4", "mod5":
	default:
		return &ValidationError{Path: "modifier", Err: fmt.Errorf("modifier must be one of: Shift, Control, Mod1 ... Mod5")}
	}
	ints := []struct {
		path  string
		value int
	}{
		{"border_width", c.BorderWidth},
		{"bar_height", c.BarHeight},
		{"overview_inset", c.OverviewInset},
		{"move_delta", c.MoveDelta},
		{"expand_delta", c.ExpandDelta},
	}
	for _, v := range ints {
		if v.value < 0 {
			return &ValidationError{Path: v.path, Err: fmt.Errorf("%s must be >= 0", v.path)}
		}
	}
	if _, err := ParseColor(c.FocusedBorderColor); err != nil {
		return &ValidationError{Path: "focused_border_color", Err: err}
	}
	if _, err := ParseColor(c.NormalBorderColor); err != nil {
		return &ValidationError{Path: "normal_border_color", Err: err}
	}
	if c.DragTimeout <= 0 {
		return &ValidationError{Path: "drag_timeout", Err: fmt.Errorf("drag_timeout must be positive")}
	}

	if len(c.Tags) == 0 {
		return &ValidationError{Path: "tags", Err: fmt.Errorf("at least one tag is required")}
	}
	seen := make(map[string]struct{}, len(c.Tags))
	for i, tag := range c.Tags {
		path := fmt.Sprintf("tags[%d]", i)
		if len(tag.Name) != 1 || tag.Name == "\x00" {
			return &ValidationError{Path: "tags", Err: fmt.Errorf("%s: name must be a single character, got %q", path, tag.Name)}
		}
		if _, dup := seen[tag.Name]; dup {
			return &ValidationError{Path: "tags", Err: fmt.Errorf("%s: duplicate tag %q", path, tag.Name)}
		}
		seen[tag.Name] = struct{}{}
		if !validLayout(tag.Layout) {
			return &ValidationError{Path: "tags", Err: fmt.Errorf("%s: unknown layout %q", path, tag.Layout)}
		}
		if tag.Monitor < 0 {
			return &ValidationError{Path: "tags", Err: fmt.Errorf("%s: monitor must be >= 0", path)}
		}
	}

	for i, key := range c.Keys {
		if strings.TrimSpace(key.Key) == "" {
			return &ValidationError{Path: "keys", Err: fmt.Errorf("keys[%d]: key must not be empty", i)}
		}
		if err := key.Command.ValidateArgs(key.Args); err != nil {
			return &ValidationError{Path: "keys", Err: fmt.Errorf("keys[%d] (%s): %w", i, key.Key, err)}
		}
		if key.Command == CmdSelectTag || key.Command == CmdAddTag {
			if _, ok := seen[key.Args[0]]; !ok {
				return &ValidationError{Path: "keys", Err: fmt.Errorf("keys[%d] (%s): tag %q is not configured", i, key.Key, key.Args[0])}
			}
		}
	}

	for i, rule := range c.Rules {
		if rule.Tag != "" {
			if _, ok := seen[rule.Tag]; !ok {
				return &ValidationError{Path: "rules", Err: fmt.Errorf("rules[%d]: tag %q is not configured", i, rule.Tag)}
			}
		}
	}

	for i, cmd := range c.Startup {
		if strings.TrimSpace(cmd) == "" {
			return &ValidationError{Path: "startup", Err: fmt.Errorf("startup[%d] must not be empty", i)}
		}
	}

	switch c.StatusBar.Kind {
	case "none":
	case "xmobar":
		if strings.TrimSpace(c.StatusBar.Command) == "" {
			return &ValidationError{Path: "status_bar.command", Err: fmt.Errorf("command is required for kind xmobar")}
		}
	default:
		return &ValidationError{Path: "status_bar.kind", Err: fmt.Errorf("kind must be one of: none, xmobar")}
	}
	if c.StatusBar.TitleLength < 0 {
		return &ValidationError{Path: "status_bar.title_length", Err: fmt.Errorf("title_length must be >= 0")}
	}

	switch c.Prompt.Backend {
	case "auto", "rofi", "fuzzel", "dmenu", "wofi":
	default:
		return &ValidationError{Path: "prompt.backend", Err: fmt.Errorf("backend must be one of: auto, rofi, fuzzel, dmenu, wofi")}
	}
	return nil
}
