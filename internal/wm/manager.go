// Package wm is the window manager core. It owns one focus ring per tag,
// routes display events to them and interprets configured commands.
//
// All state is owned by the goroutine running Manager.Run. Other goroutines
// reach it through Do and the context-taking query methods.
package wm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/1broseidon/tagwm/internal/client"
	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/geom"
	"github.com/1broseidon/tagwm/internal/palette"
	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/statusbar"
	"github.com/1broseidon/tagwm/internal/tiling"
	"github.com/1broseidon/tagwm/internal/workspace"
	"github.com/google/uuid"
)

var (
	// ErrFatalProtocol wraps protocol errors that leave the manager's view of
	// the display untrustworthy.
	ErrFatalProtocol = errors.New("fatal protocol error")

	// ErrStopped is returned by Do once Run has returned.
	ErrStopped = errors.New("window manager stopped")

	errDisplayClosed = errors.New("display event stream closed")
)

const (
	extraUserTag = "user_tag"

	// backStackLimit bounds the toggle-back history.
	backStackLimit = 32
)

// Prompter asks the user to pick an item or type a line.
type Prompter interface {
	Show(prompt string, items []palette.Item) (palette.Item, error)
	Ask(prompt string) (string, error)
}

// Spawner starts external programs without waiting for them.
type Spawner interface {
	Spawn(argv []string) error
	SpawnShell(line string) error
}

// buttonModifierSetter is implemented by displays that grab the drag
// buttons on focused windows themselves.
type buttonModifierSetter interface {
	SetButtonModifier(mask uint16)
}

// Options configures a Manager.
type Options struct {
	Logger  *slog.Logger
	Config  *config.Config
	Display platform.Display
	// StatusLogger receives a state dump after every change. Defaults to a
	// no-op logger.
	StatusLogger statusbar.Logger
	Prompt       Prompter
	Spawner      Spawner
	// LoadConfig re-reads the configuration for the reload command.
	LoadConfig func() (*config.Config, error)
}

type call struct {
	fn   func()
	done chan struct{}
}

// Manager is the window manager state.
type Manager struct {
	logger     *slog.Logger
	cfg        *config.Config
	display    platform.Display
	bar        statusbar.Logger
	prompt     Prompter
	spawner    Spawner
	loadConfig func() (*config.Config, error)

	theme    *client.Theme
	params   tiling.Params
	modMask  uint16
	bindings map[string]config.KeyBinding

	screenWidth  int
	screenHeight int

	currentTag client.Tag
	lastTag    client.Tag
	defaultTag client.Tag
	tagOrder   []client.Tag
	monitors   map[client.Tag]int
	workspaces map[client.Tag]*workspace.Workspace
	special    []*client.Client
	backStack  []*client.Client

	dragTimeout time.Duration
	sessionID   string
	started     time.Time
	quit        bool

	calls chan call
	done  chan struct{}
}

// New builds a manager from opts. It grabs the configured keys and publishes
// the desktop list but manages no windows until Run.
func New(opts Options) (*Manager, error) {
	if opts.Display == nil {
		return nil, errors.New("wm: display is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bar := opts.StatusLogger
	if bar == nil {
		bar = statusbar.Dummy{}
	}

	m := &Manager{
		logger:     logger,
		display:    opts.Display,
		bar:        bar,
		prompt:     opts.Prompt,
		spawner:    opts.Spawner,
		loadConfig: opts.LoadConfig,
		theme:      &client.Theme{},
		monitors:   make(map[client.Tag]int),
		workspaces: make(map[client.Tag]*workspace.Workspace),
		sessionID:  uuid.NewString(),
		started:    time.Now(),
		calls:      make(chan call),
		done:       make(chan struct{}),
	}
	m.screenWidth, m.screenHeight = opts.Display.ScreenSize()

	if err := m.applyConfig(cfg); err != nil {
		return nil, err
	}
	m.currentTag = m.defaultTag
	m.lastTag = m.defaultTag

	m.publishDesktops()
	m.updateClientList()
	return m, nil
}

// Run processes display events and queued calls until ctx is cancelled, the
// quit command runs or a fatal protocol error arrives.
func (m *Manager) Run(ctx context.Context) error {
	defer close(m.done)

	m.logger.Info("window manager started",
		"session", m.sessionID,
		"tag", m.currentTag,
		"screen", fmt.Sprintf("%dx%d", m.screenWidth, m.screenHeight))

	m.dumpStatus()
	m.runStartup()

	events := m.display.Events()
	for !m.quit {
		select {
		case <-ctx.Done():
			m.logger.Info("window manager stopped")
			return nil
		case ev, ok := <-events:
			if !ok {
				return errDisplayClosed
			}
			if err := m.HandleEvent(ev); err != nil {
				return err
			}
		case c := <-m.calls:
			c.fn()
			close(c.done)
		}
	}
	m.logger.Info("quit requested")
	return nil
}

// Do runs fn on the manager goroutine and waits for it to finish.
func (m *Manager) Do(ctx context.Context, fn func()) error {
	c := call{fn: fn, done: make(chan struct{})}
	select {
	case m.calls <- c:
	case <-m.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-c.done:
		return nil
	case <-m.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SessionID identifies this manager instance.
func (m *Manager) SessionID() string {
	return m.sessionID
}

// Close stops the status bar.
func (m *Manager) Close() error {
	return m.bar.Close()
}

func (m *Manager) runStartup() {
	if m.spawner == nil {
		return
	}
	for _, line := range m.cfg.Startup {
		if err := m.spawner.SpawnShell(line); err != nil {
			m.logger.Warn("failed to run startup command", "command", line, "error", err)
		}
	}
}

// applyConfig installs cfg. Every fallible step runs before any state is
// touched so a bad reload leaves the old configuration in place.
func (m *Manager) applyConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	focused, err := config.ParseColor(cfg.FocusedBorderColor)
	if err != nil {
		return err
	}
	normal, err := config.ParseColor(cfg.NormalBorderColor)
	if err != nil {
		return err
	}
	params := tiling.Params{BorderWidth: cfg.BorderWidth, OverviewInset: cfg.OverviewInset}
	layouts := make([]tiling.Layout, len(cfg.Tags))
	for i, tc := range cfg.Tags {
		l, err := tiling.ParseLayout(tc.Layout, params)
		if err != nil {
			return fmt.Errorf("tag %s: %w", tc.Name, err)
		}
		layouts[i] = l
	}

	m.cfg = cfg
	m.params = params
	m.theme.BorderWidth = cfg.BorderWidth
	m.theme.FocusedColor = focused
	m.theme.NormalColor = normal
	m.modMask = modifierMask(cfg.Modifier)
	if bm, ok := m.display.(buttonModifierSetter); ok {
		bm.SetButtonModifier(m.modMask)
	}
	m.dragTimeout = cfg.DragTimeout
	m.defaultTag = client.Tag(cfg.DefaultTag())

	heads := m.display.Heads()
	configured := make(map[client.Tag]bool, len(cfg.Tags))
	m.tagOrder = m.tagOrder[:0]
	for i, tc := range cfg.Tags {
		tag := client.Tag(tc.Name[0])
		area := m.monitorRect(heads, tc.Monitor)
		ws, ok := m.workspaces[tag]
		if !ok {
			ws = workspace.New(m.display, tag, layouts[i], area)
			m.workspaces[tag] = ws
		}
		ws.Layout = layouts[i]
		ws.Rect = area
		if tc.Description != "" {
			ws.Description = tc.Description
		}
		m.monitors[tag] = tc.Monitor
		m.tagOrder = append(m.tagOrder, tag)
		configured[tag] = true
	}
	for tag, ws := range m.workspaces {
		if tag != client.TagOverview && !configured[tag] && ws.Len() == 0 {
			delete(m.workspaces, tag)
			delete(m.monitors, tag)
		}
	}

	overview, ok := m.workspaces[client.TagOverview]
	if !ok {
		overview = workspace.New(m.display, client.TagOverview, tiling.Overview(params), m.screenRect())
		m.workspaces[client.TagOverview] = overview
	}
	overview.Layout = tiling.Overview(params)
	overview.Rect = m.screenRect()

	if _, ok := m.workspaces[m.currentTag]; !ok && m.currentTag != 0 {
		m.currentTag = m.defaultTag
	}
	if _, ok := m.workspaces[m.lastTag]; !ok {
		m.lastTag = m.defaultTag
	}

	m.grabKeys()
	return nil
}

// grabKeys resolves the configured bindings and grabs them on the display.
// Keys that do not exist on the current keyboard are logged and skipped.
func (m *Manager) grabKeys() {
	m.bindings = make(map[string]config.KeyBinding, len(m.cfg.Keys))
	keys := make([]string, 0, len(m.cfg.Keys))
	for _, kb := range m.cfg.Keys {
		resolved := m.cfg.ResolveKey(kb.Key)
		if _, dup := m.bindings[resolved]; !dup {
			keys = append(keys, resolved)
		}
		m.bindings[resolved] = kb
	}
	for _, err := range m.display.GrabKeys(keys) {
		m.logger.Warn("failed to grab key", "error", err)
	}
}

func (m *Manager) screenRect() geom.Rect {
	return geom.New(0, 0, m.screenWidth, m.screenHeight)
}

func (m *Manager) monitorRect(heads []geom.Rect, monitor int) geom.Rect {
	if monitor >= 0 && monitor < len(heads) {
		return heads[monitor]
	}
	return m.screenRect()
}

// refreshMonitors re-reads the heads after the root window changed size.
func (m *Manager) refreshMonitors() {
	heads := m.display.Heads()
	for tag, ws := range m.workspaces {
		if tag == client.TagOverview {
			ws.Rect = m.screenRect()
			continue
		}
		ws.Rect = m.monitorRect(heads, m.monitors[tag])
	}
}

func modifierMask(name string) uint16 {
	switch strings.ToLower(name) {
	case "shift":
		return platform.ModShift
	case "control":
		return platform.ModControl
	case "mod1":
		return platform.Mod1
	case "mod2":
		return platform.Mod2
	case "mod3":
		return platform.Mod3
	case "mod5":
		return platform.Mod5
	default:
		return platform.Mod4
	}
}

// CurrentTag returns the selected tag.
func (m *Manager) CurrentTag() client.Tag {
	return m.currentTag
}

// Workspace returns the ring for tag.
func (m *Manager) Workspace(tag client.Tag) (*workspace.Workspace, bool) {
	ws, ok := m.workspaces[tag]
	return ws, ok
}

func (m *Manager) CurrentWorkspace() *workspace.Workspace {
	return m.workspaces[m.currentTag]
}

// CurrentFocused returns the focused client of the current workspace.
func (m *Manager) CurrentFocused() *client.Client {
	return m.CurrentWorkspace().Current()
}

// realTags returns every tag with a workspace except the overview, in
// ascending order.
func (m *Manager) realTags() []client.Tag {
	tags := make([]client.Tag, 0, len(m.workspaces))
	for tag := range m.workspaces {
		if tag != client.TagOverview {
			tags = append(tags, tag)
		}
	}
	slices.Sort(tags)
	return tags
}

// AllClients returns every managed client outside the overview, grouped by
// tag.
func (m *Manager) AllClients() []*client.Client {
	var out []*client.Client
	for _, tag := range m.realTags() {
		out = append(out, m.workspaces[tag].Clients()...)
	}
	return out
}

// CurrentClients returns the clients of the current workspace in ring order.
func (m *Manager) CurrentClients() []*client.Client {
	return m.CurrentWorkspace().Clients()
}

// ClientByWindow finds a managed client outside the overview. Docks are not
// included.
func (m *Manager) ClientByWindow(w platform.Window) *client.Client {
	for _, tag := range m.realTags() {
		if c := m.workspaces[tag].ClientByWindow(w); c != nil {
			return c
		}
	}
	return nil
}

// lookup finds a client or a dock.
func (m *Manager) lookup(w platform.Window) *client.Client {
	if c := m.ClientByWindow(w); c != nil {
		return c
	}
	for _, c := range m.special {
		if c.Window() == w {
			return c
		}
	}
	return nil
}

func (m *Manager) updateClientList() {
	clients := m.AllClients()
	windows := make([]platform.Window, len(clients))
	for i, c := range clients {
		windows[i] = c.Window()
	}
	m.display.SetClientList(windows)
}

// publishDesktops exports the tags as EWMH desktops. While the overview is
// shown the last real tag stays current.
func (m *Manager) publishDesktops() {
	names := make([]string, len(m.tagOrder))
	current := 0
	selected := m.currentTag
	if selected == client.TagOverview {
		selected = m.lastTag
	}
	for i, tag := range m.tagOrder {
		names[i] = tag.String()
		if tag == selected {
			current = i
		}
	}
	m.display.SetDesktops(names, current)
}

func (m *Manager) dumpStatus() {
	m.bar.Dump(m.statusState())
}

func (m *Manager) statusState() statusbar.State {
	s := statusbar.State{
		Current:      m.currentTag,
		Descriptions: make(map[client.Tag]string),
	}
	for _, c := range m.AllClients() {
		s.ClientTags = append(s.ClientTags, c.Tag())
	}
	for tag, ws := range m.workspaces {
		if ws.Description != "" {
			s.Descriptions[tag] = ws.Description
		}
	}
	focused := m.CurrentFocused()
	for _, c := range m.CurrentClients() {
		s.Clients = append(s.Clients, statusbar.ClientState{
			Tag:     c.Tag(),
			Title:   c.Title(),
			Focused: c == focused,
		})
	}
	return s
}

func (m *Manager) pushBack(c *client.Client) {
	m.backStack = slices.DeleteFunc(m.backStack, func(b *client.Client) bool {
		return b.Window() == c.Window()
	})
	m.backStack = append(m.backStack, c)
	if len(m.backStack) > backStackLimit {
		m.backStack = m.backStack[len(m.backStack)-backStackLimit:]
	}
}

func windowID(w platform.Window) string {
	return fmt.Sprintf("0x%x", uint32(w))
}
