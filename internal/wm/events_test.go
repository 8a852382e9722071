package wm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/geom"
	"github.com/1broseidon/tagwm/internal/palette"
	"github.com/1broseidon/tagwm/internal/platform"
)

func TestProtocolErrorClassification(t *testing.T) {
	h := newHarness(t, nil)
	tests := []struct {
		name  string
		err   platform.ProtocolError
		fatal bool
	}{
		{"bad window", platform.ProtocolError{Code: "Window", Major: 1}, false},
		{"focus race", platform.ProtocolError{Code: "Match", Major: platform.OpSetInputFocus}, false},
		{"contested key grab", platform.ProtocolError{Code: "Access", Major: platform.OpGrabKey}, false},
		{"bad value", platform.ProtocolError{Code: "Value", Major: 12}, true},
		{"another wm", platform.ProtocolError{Code: "Access", Major: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.m.HandleEvent(tt.err)
			if tt.fatal && !errors.Is(err, ErrFatalProtocol) {
				t.Fatalf("expected fatal error, got %v", err)
			}
			if !tt.fatal && err != nil {
				t.Fatalf("expected error to be ignored, got %v", err)
			}
		})
	}
}

func TestKeyPressRunsBoundCommand(t *testing.T) {
	h := newHarness(t, nil)
	if err := h.m.HandleEvent(platform.KeyPress{Binding: "Mod4-2", Keycode: 11}); err != nil {
		t.Fatalf("key press: %v", err)
	}
	if h.m.CurrentTag() != '2' {
		t.Fatalf("expected tag 2 selected, got %s", h.m.CurrentTag())
	}
	if err := h.m.HandleEvent(platform.KeyPress{Binding: "Mod4-Hyper_L"}); err != nil {
		t.Fatalf("unbound key: %v", err)
	}
	if h.m.CurrentTag() != '2' {
		t.Fatalf("expected unbound key to do nothing")
	}
}

func TestMappingNotifyRegrabsKeys(t *testing.T) {
	h := newHarness(t, nil)
	h.d.Keys = nil
	if err := h.m.HandleEvent(platform.MappingNotify{Request: platform.MappingKeyboard}); err != nil {
		t.Fatalf("mapping notify: %v", err)
	}
	if h.d.KeymapRefresh != 1 {
		t.Fatalf("expected keymap refresh, got %d", h.d.KeymapRefresh)
	}
	if len(h.d.Keys) == 0 {
		t.Fatalf("expected keys grabbed again")
	}
}

func TestUnmapAndDestroyUnmanage(t *testing.T) {
	h := newHarness(t, nil)
	h.mapWindow(t, 10, "a", "XTerm")
	h.mapWindow(t, 11, "b", "XTerm")
	h.mapWindow(t, 12, "c", "XTerm")

	if err := h.m.HandleEvent(platform.UnmapNotify{Window: 10, Synthetic: true}); err != nil {
		t.Fatalf("unmap: %v", err)
	}
	if h.m.ClientByWindow(10) == nil {
		t.Fatalf("expected synthetic unmap to keep the client")
	}
	if h.d.Windows[10].WMState != platform.WithdrawnState {
		t.Fatalf("expected withdrawn state")
	}

	h.d.Windows[11].WMState = platform.NormalState
	if err := h.m.HandleEvent(platform.UnmapNotify{Window: 11}); err != nil {
		t.Fatalf("unmap: %v", err)
	}
	if h.m.ClientByWindow(11) != nil {
		t.Fatalf("expected unmap to unmanage")
	}
	if h.d.Windows[11].WMState != platform.WithdrawnState {
		t.Fatalf("expected unmanaged window withdrawn")
	}

	h.d.Windows[12].WMState = platform.NormalState
	if err := h.m.HandleEvent(platform.DestroyNotify{Window: 12}); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if h.m.ClientByWindow(12) != nil {
		t.Fatalf("expected destroy to unmanage")
	}
	if h.d.Windows[12].WMState != platform.NormalState {
		t.Fatalf("expected destroyed window state untouched")
	}
	if len(h.d.ClientList) != 1 || h.d.ClientList[0] != 10 {
		t.Fatalf("expected client list [10], got %v", h.d.ClientList)
	}
	if got := h.d.Windows[10].Geometry; got != geom.New(0, 0, 1000, 800) {
		t.Fatalf("expected survivor to take the whole area, got %s", got)
	}
}

func TestUnmanageInOverviewRemovesFromBothRings(t *testing.T) {
	h := newHarness(t, nil)
	h.mapWindow(t, 10, "a", "XTerm")
	h.mapWindow(t, 11, "b", "XTerm")
	h.m.ToggleOverview()

	if err := h.m.HandleEvent(platform.DestroyNotify{Window: 10}); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	ws1, _ := h.m.Workspace('1')
	if ws1.Len() != 1 || h.m.CurrentWorkspace().Len() != 1 {
		t.Fatalf("expected one client left everywhere, got %d/%d", ws1.Len(), h.m.CurrentWorkspace().Len())
	}
}

func TestConfigureRequest(t *testing.T) {
	h := newHarness(t, nil)
	h.d.AddWindow(50, "unmanaged", "X")
	req := platform.ConfigureRequest{Window: 50, X: 5, Y: 6, Width: 70, Height: 80, ValueMask: geometryValueMask}
	if err := h.m.HandleEvent(req); err != nil {
		t.Fatalf("configure request: %v", err)
	}
	if len(h.d.Passthrough) != 1 || h.d.Passthrough[0].ValueMask != geometryValueMask {
		t.Fatalf("expected unmanaged request passed through, got %+v", h.d.Passthrough)
	}

	floating := h.mapWindow(t, 10, "gimp", "Gimp")
	req = platform.ConfigureRequest{Window: 10, X: 40, Width: 300, ValueMask: platform.ConfigX | platform.ConfigWidth}
	if err := h.m.HandleEvent(req); err != nil {
		t.Fatalf("configure request: %v", err)
	}
	if got := floating.Rect(); got != geom.New(40, 0, 300, 100) {
		t.Fatalf("expected floating request applied, got %s", got)
	}

	tiled := h.mapWindow(t, 11, "term", "XTerm")
	req = platform.ConfigureRequest{Window: 11, Width: 20, Height: 20, ValueMask: platform.ConfigWidth | platform.ConfigHeight}
	if err := h.m.HandleEvent(req); err != nil {
		t.Fatalf("configure request: %v", err)
	}
	notified := h.d.Windows[11].Notified
	if len(notified) == 0 || notified[len(notified)-1] != tiled.Rect() {
		t.Fatalf("expected synthetic configure with the tile rect, got %v", notified)
	}

	h.m.ToggleOverview()
	req = platform.ConfigureRequest{Window: 11, X: 1, Width: 20, StackMode: 0, ValueMask: platform.ConfigX | platform.ConfigWidth | platform.ConfigStackMode}
	if err := h.m.HandleEvent(req); err != nil {
		t.Fatalf("configure request: %v", err)
	}
	last := h.d.Passthrough[len(h.d.Passthrough)-1]
	if last.ValueMask != platform.ConfigStackMode {
		t.Fatalf("expected only stacking passed through in the overview, got mask %b", last.ValueMask)
	}
}

func TestConfigureNotifyOnRootResizesScreen(t *testing.T) {
	h := newHarness(t, nil)
	h.mapWindow(t, 10, "a", "XTerm")

	h.d.Width, h.d.Height = 1920, 1080
	if err := h.m.HandleEvent(platform.ConfigureNotify{Window: h.d.Root(), Width: 1920, Height: 1080}); err != nil {
		t.Fatalf("configure notify: %v", err)
	}
	if got := h.d.Windows[10].Geometry; got != geom.New(0, 0, 1920, 1080) {
		t.Fatalf("expected client stretched to the new screen, got %s", got)
	}
}

func TestPropertyNotifyUpdatesTitle(t *testing.T) {
	h := newHarness(t, nil)
	c := h.mapWindow(t, 10, "old", "XTerm")
	h.d.Windows[10].Title = "new"
	if err := h.m.HandleEvent(platform.PropertyNotify{Window: 10, Atom: atomNetWMName}); err != nil {
		t.Fatalf("property notify: %v", err)
	}
	if c.Title() != "new" {
		t.Fatalf("expected title new, got %q", c.Title())
	}
	if got := h.bar.last().Clients[0].Title; got != "new" {
		t.Fatalf("expected status dump with new title, got %q", got)
	}
}

func TestFocusInRestoresFocus(t *testing.T) {
	h := newHarness(t, nil)
	h.mapWindow(t, 10, "a", "XTerm")
	h.d.Focused = 77
	if err := h.m.HandleEvent(platform.FocusIn{Window: 77}); err != nil {
		t.Fatalf("focus in: %v", err)
	}
	if h.d.Focused != 10 {
		t.Fatalf("expected focus pulled back to 10, got %d", h.d.Focused)
	}
}

func TestActiveWindowRequestSwitchesTag(t *testing.T) {
	h := newHarness(t, nil)
	c := h.mapWindow(t, 10, "a", "XTerm")
	h.m.SelectTag('4')
	if err := h.m.HandleEvent(platform.ClientMessage{Window: 10, Type: atomActiveWindow}); err != nil {
		t.Fatalf("client message: %v", err)
	}
	if h.m.CurrentTag() != '1' || h.m.CurrentFocused() != c {
		t.Fatalf("expected activation to switch to tag 1, got %s", h.m.CurrentTag())
	}
}

func TestMoveMouseDragsFloatingClient(t *testing.T) {
	h := newHarness(t, nil)
	c := h.mapWindow(t, 10, "gimp", "Gimp")
	h.d.Pointer = platform.Pointer{X: 10, Y: 10}

	h.d.Push(platform.MotionNotify{RootX: 60, RootY: 40, Time: 100})
	h.d.Push(platform.MotionNotify{RootX: 500, RootY: 500, Time: 105})
	h.d.Push(platform.KeyPress{Binding: "Mod4-2"})
	h.d.Push(platform.ButtonRelease{Button: platform.Button1, Time: 110})

	press := platform.ButtonPress{Window: 10, State: platform.Mod4, Button: platform.Button1}
	if err := h.m.HandleEvent(press); err != nil {
		t.Fatalf("button press: %v", err)
	}
	if got := c.Rect(); got.X != 50 || got.Y != 30 {
		t.Fatalf("expected throttled drag to end at 50,30, got %s", got)
	}
	if h.d.PointerGrabbed {
		t.Fatalf("expected pointer released")
	}
	if h.m.CurrentTag() != '2' {
		t.Fatalf("expected key press during the drag replayed afterwards")
	}
}

func TestResizeMouseClampsToOnePixel(t *testing.T) {
	h := newHarness(t, nil)
	c := h.mapWindow(t, 10, "gimp", "Gimp")

	h.d.Push(platform.MotionNotify{RootX: 200, RootY: 150, Time: 100})
	h.d.Push(platform.MotionNotify{RootX: -50, RootY: -50, Time: 200})
	h.d.Push(platform.ButtonRelease{Button: platform.Button3})

	press := platform.ButtonPress{Window: 10, State: platform.Mod4, Button: platform.Button3}
	if err := h.m.HandleEvent(press); err != nil {
		t.Fatalf("button press: %v", err)
	}
	if got := c.Rect(); got != geom.New(0, 0, 1, 1) {
		t.Fatalf("expected size clamped to 1x1, got %s", got)
	}
	if h.d.PointerCursor != platform.CursorResize {
		t.Fatalf("expected resize cursor")
	}
	if len(h.d.Warps) != 2 {
		t.Fatalf("expected pointer warped to the corner twice, got %d", len(h.d.Warps))
	}
}

func TestDragTimesOutWithoutRelease(t *testing.T) {
	cfg := testConfig()
	cfg.DragTimeout = 10 * time.Millisecond
	h := newHarness(t, cfg)
	h.mapWindow(t, 10, "gimp", "Gimp")

	press := platform.ButtonPress{Window: 10, State: platform.Mod4, Button: platform.Button1}
	if err := h.m.HandleEvent(press); err != nil {
		t.Fatalf("button press: %v", err)
	}
	if h.d.PointerGrabbed {
		t.Fatalf("expected pointer released after the timeout")
	}
}

func TestDragSkipsFullscreenClients(t *testing.T) {
	h := newHarness(t, nil)
	c := h.mapWindow(t, 10, "video", "mpv")
	h.m.SetFullscreen(c, true)

	if err := h.m.MoveMouse(c); err != nil {
		t.Fatalf("move mouse: %v", err)
	}
	if h.d.PointerGrabbed || h.d.PointerCursor == platform.CursorMove {
		t.Fatalf("expected no pointer grab for a fullscreen client")
	}
}

func TestPlainClickOnlyFocuses(t *testing.T) {
	h := newHarness(t, nil)
	a := h.mapWindow(t, 10, "a", "XTerm")
	h.mapWindow(t, 11, "b", "XTerm")

	if err := h.m.HandleEvent(platform.ButtonPress{Window: 10, Button: platform.Button1}); err != nil {
		t.Fatalf("button press: %v", err)
	}
	if h.m.CurrentFocused() != a {
		t.Fatalf("expected click to focus a")
	}
	if h.d.PointerGrabbed {
		t.Fatalf("expected no drag without the modifier")
	}
}

func TestPromptCommands(t *testing.T) {
	h := newHarness(t, nil)
	c := h.mapWindow(t, 10, "vim", "XTerm")
	h.m.SelectTag('2')
	h.mapWindow(t, 11, "Mozilla Firefox", "firefox")

	h.prompt.answer = "  notes  "
	if err := h.m.exec(config.CmdWorkspaceUserTag, nil); err != nil {
		t.Fatalf("workspace user tag: %v", err)
	}
	ws2, _ := h.m.Workspace('2')
	if ws2.Description != "notes" {
		t.Fatalf("expected description notes, got %q", ws2.Description)
	}

	h.m.SelectTag('1')
	h.prompt.answer = "editor"
	if err := h.m.exec(config.CmdWindowUserTag, nil); err != nil {
		t.Fatalf("window user tag: %v", err)
	}
	if v, _ := c.Extra(extraUserTag); v != "editor" {
		t.Fatalf("expected user tag editor, got %q", v)
	}
	if got := h.prompt.prompts[len(h.prompt.prompts)-1]; got != "add user tag to XTerm: " {
		t.Fatalf("unexpected prompt %q", got)
	}

	h.prompt.pick = func(items []palette.Item) palette.Item {
		for _, it := range items {
			if strings.Contains(it.Label, "firefox") {
				return it
			}
		}
		return palette.Item{}
	}
	if err := h.m.exec(config.CmdSelectWindow, nil); err != nil {
		t.Fatalf("select window: %v", err)
	}
	if h.m.CurrentTag() != '2' || h.m.CurrentFocused().Window() != 11 {
		t.Fatalf("expected firefox focused on tag 2, got tag %s", h.m.CurrentTag())
	}
	var labels []string
	for _, it := range h.prompt.shown {
		labels = append(labels, it.Label)
	}
	want := []string{"tag 1", "[(editor) XTerm] vim", "tag 2 - notes", "[() firefox] Mozilla Firefox"}
	if strings.Join(labels, "|") != strings.Join(want, "|") {
		t.Fatalf("expected items %q, got %q", want, labels)
	}
	if !h.prompt.shown[1].IsActive || h.prompt.shown[3].IsActive {
		t.Fatalf("expected exactly one active item")
	}

	h.prompt.err = palette.ErrCancelled
	if err := h.m.exec(config.CmdSelectWindow, nil); err != nil {
		t.Fatalf("expected cancellation to be silent, got %v", err)
	}
}

func TestSpawnCommand(t *testing.T) {
	h := newHarness(t, nil)
	if err := h.m.exec(config.CmdSpawn, []string{"dmenu_run"}); err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if err := h.m.exec(config.CmdSpawn, []string{"xterm", "-e", "htop"}); err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if len(h.spawner.lines) != 1 || h.spawner.lines[0] != "dmenu_run" {
		t.Fatalf("expected single argument run through the shell, got %v", h.spawner.lines)
	}
	if len(h.spawner.argv) != 1 || len(h.spawner.argv[0]) != 3 {
		t.Fatalf("expected argv spawn, got %v", h.spawner.argv)
	}
	if err := h.m.exec(config.CmdSpawn, nil); err == nil {
		t.Fatalf("expected error for spawn without arguments")
	}
}

func TestReloadAppliesNewConfig(t *testing.T) {
	h := newHarness(t, nil)
	h.mapWindow(t, 10, "a", "XTerm")
	h.mapWindow(t, 11, "b", "XTerm")

	next := testConfig()
	next.NormalBorderColor = "#112233"
	next.BorderWidth = 2
	next.Tags[0].Layout = "fullscreen"
	next.Tags[0].Description = "main"
	next.Keys = []config.KeyBinding{{Key: "Mod-x", Command: config.CmdQuit}}
	h.m.loadConfig = func() (*config.Config, error) { return next, nil }

	if err := h.m.exec(config.CmdReload, nil); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if h.d.Windows[10].BorderColor != 0x112233 {
		t.Fatalf("expected new normal colour, got %06x", h.d.Windows[10].BorderColor)
	}
	if h.d.Windows[10].Border != 2 {
		t.Fatalf("expected border 2, got %d", h.d.Windows[10].Border)
	}
	if len(h.d.Keys) != 1 || h.d.Keys[0] != "Mod4-x" {
		t.Fatalf("expected keys regrabbed, got %v", h.d.Keys)
	}
	ws, _ := h.m.Workspace('1')
	if ws.Layout.String() != "fullscreen" || ws.Description != "main" {
		t.Fatalf("expected layout and description applied, got %s %q", ws.Layout, ws.Description)
	}
	if h.d.Windows[10].Geometry.Width != h.d.Windows[11].Geometry.Width {
		t.Fatalf("expected fullscreen layout to give both clients the same size")
	}

	bad := testConfig()
	bad.Tags = nil
	h.m.loadConfig = func() (*config.Config, error) { return bad, nil }
	if err := h.m.exec(config.CmdReload, nil); err == nil {
		t.Fatalf("expected invalid config to be rejected")
	}
	if len(h.d.Keys) != 1 {
		t.Fatalf("expected the previous config to stay active")
	}
}

func TestExecRejectsBadArguments(t *testing.T) {
	h := newHarness(t, nil)
	if err := h.m.exec(config.CmdSelectTag, []string{"12"}); err == nil {
		t.Fatalf("expected error for a multi-character tag")
	}
	if err := h.m.exec(config.CmdSelectTag, []string{"x"}); err == nil {
		t.Fatalf("expected error for an unconfigured tag")
	}
	if err := h.m.exec(config.Command("dance"), nil); err == nil {
		t.Fatalf("expected error for an unknown command")
	}
}

func TestFocusWindowSwitchesTag(t *testing.T) {
	h := newHarness(t, nil)
	h.mapWindow(t, 10, "editor", "Emacs")
	h.m.SelectTag('2')
	h.mapWindow(t, 20, "web", "Firefox")

	if err := h.m.exec(config.CmdFocusWindow, []string{"0xa"}); err != nil {
		t.Fatalf("expected focus-window to succeed, got %v", err)
	}
	if h.m.CurrentTag() != '1' {
		t.Fatalf("expected tag 1, got %s", h.m.CurrentTag())
	}
	if c := h.m.CurrentFocused(); c == nil || c.Window() != 10 {
		t.Fatalf("expected window 10 focused, got %v", c)
	}

	err := h.m.exec(config.CmdFocusWindow, []string{"0x63"})
	if !errors.Is(err, errUnknownWindow) {
		t.Fatalf("expected errUnknownWindow, got %v", err)
	}
}

func startManager(t *testing.T, h *harness) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- h.m.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, errc
}

func waitRun(t *testing.T, errc <-chan error) error {
	t.Helper()
	select {
	case err := <-errc:
		return err
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for Run to return")
		return nil
	}
}

func TestRunServesQueriesAndCommands(t *testing.T) {
	h := newHarness(t, nil)
	h.m.cfg.Startup = []string{"xsetroot -solid black"}
	h.mapWindow(t, 10, "term", "XTerm")
	cancel, errc := startManager(t, h)
	ctx := context.Background()

	if err := h.m.Exec(ctx, config.CmdSelectTag, []string{"3"}); err != nil {
		t.Fatalf("exec: %v", err)
	}
	status, err := h.m.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.CurrentTag != "3" || status.Clients != 1 || status.SessionID != h.m.SessionID() {
		t.Fatalf("unexpected status %+v", status)
	}

	clients, err := h.m.Clients(ctx)
	if err != nil {
		t.Fatalf("clients: %v", err)
	}
	if len(clients) != 1 || clients[0].Window != "0xa" || clients[0].Tag != "1" {
		t.Fatalf("unexpected clients %+v", clients)
	}

	tags, err := h.m.Tags(ctx)
	if err != nil {
		t.Fatalf("tags: %v", err)
	}
	if len(tags) != 10 || !tags[2].Current || tags[0].Clients != 1 {
		t.Fatalf("unexpected tags %+v", tags)
	}

	dump, err := h.m.Dump(ctx)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if dump.Workspaces[0].Tag != "overview" || len(dump.BackStack) != 1 {
		t.Fatalf("unexpected dump %+v", dump)
	}

	if err := h.m.Exec(ctx, config.CmdFocusIndex, []string{"-1"}); err == nil {
		t.Fatalf("expected invalid arguments to be rejected")
	}

	cancel()
	if err := waitRun(t, errc); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
	if len(h.spawner.lines) != 1 {
		t.Fatalf("expected startup program spawned, got %v", h.spawner.lines)
	}
	if err := h.m.Do(ctx, func() {}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped after Run returned, got %v", err)
	}
}

func TestRunQuitsOnQuitCommand(t *testing.T) {
	h := newHarness(t, nil)
	h.d.Push(platform.KeyPress{Binding: "Mod4-q"})
	_, errc := startManager(t, h)
	if err := waitRun(t, errc); err != nil {
		t.Fatalf("expected clean quit, got %v", err)
	}
}

func TestRunStopsOnFatalProtocolError(t *testing.T) {
	h := newHarness(t, nil)
	h.d.Push(platform.ProtocolError{Code: "Window", Major: 1})
	h.d.Push(platform.ProtocolError{Code: "Value", Major: 12})
	_, errc := startManager(t, h)
	if err := waitRun(t, errc); !errors.Is(err, ErrFatalProtocol) {
		t.Fatalf("expected ErrFatalProtocol, got %v", err)
	}
}
