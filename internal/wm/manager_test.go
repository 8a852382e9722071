package wm

import (
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/tagwm/internal/client"
	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/geom"
	"github.com/1broseidon/tagwm/internal/palette"
	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/platform/platformtest"
	"github.com/1broseidon/tagwm/internal/statusbar"
)

type fakeBar struct {
	dumps []statusbar.State
}

func (b *fakeBar) Dump(s statusbar.State) { b.dumps = append(b.dumps, s) }

func (b *fakeBar) Close() error { return nil }

func (b *fakeBar) last() statusbar.State {
	if len(b.dumps) == 0 {
		return statusbar.State{}
	}
	return b.dumps[len(b.dumps)-1]
}

type fakePrompt struct {
	answer  string
	err     error
	pick    func(items []palette.Item) palette.Item
	prompts []string
	shown   []palette.Item
}

func (p *fakePrompt) Show(prompt string, items []palette.Item) (palette.Item, error) {
	p.prompts = append(p.prompts, prompt)
	p.shown = items
	if p.err != nil {
		return palette.Item{}, p.err
	}
	return p.pick(items), nil
}

func (p *fakePrompt) Ask(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	return p.answer, p.err
}

type fakeSpawner struct {
	argv  [][]string
	lines []string
}

func (s *fakeSpawner) Spawn(argv []string) error {
	s.argv = append(s.argv, argv)
	return nil
}

func (s *fakeSpawner) SpawnShell(line string) error {
	s.lines = append(s.lines, line)
	return nil
}

type harness struct {
	m       *Manager
	d       *platformtest.Display
	bar     *fakeBar
	prompt  *fakePrompt
	spawner *fakeSpawner
}

// testConfig drops borders and the bar so layout rects are easy to predict.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.BorderWidth = 0
	cfg.BarHeight = 0
	return cfg
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	h := &harness{
		d:       platformtest.New(1000, 800),
		bar:     &fakeBar{},
		prompt:  &fakePrompt{},
		spawner: &fakeSpawner{},
	}
	m, err := New(Options{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:       cfg,
		Display:      h.d,
		StatusLogger: h.bar,
		Prompt:       h.prompt,
		Spawner:      h.spawner,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.m = m
	return h
}

// mapWindow registers a window with the fake display and sends its map
// request.
func (h *harness) mapWindow(t *testing.T, id platform.Window, title, class string) *client.Client {
	t.Helper()
	h.d.AddWindow(id, title, class)
	if err := h.m.HandleEvent(platform.MapRequest{Window: id}); err != nil {
		t.Fatalf("map request: %v", err)
	}
	return h.m.lookup(id)
}

func TestNewGrabsResolvedKeysAndPublishesDesktops(t *testing.T) {
	cfg := testConfig()
	d := platformtest.New(1000, 800)
	d.BadKeys["Mod4-F4"] = true
	m, err := New(Options{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:  cfg,
		Display: d,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.CurrentTag() != '1' {
		t.Fatalf("expected current tag 1, got %s", m.CurrentTag())
	}

	found := false
	for _, k := range d.Keys {
		if k == "Mod4-F4" {
			t.Fatalf("expected unresolvable key to be skipped")
		}
		if k == "Mod4-q" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Mod4-q to be grabbed, got %v", d.Keys)
	}
	if len(d.DesktopNames) != 10 || d.DesktopNames[0] != "1" || d.CurrentDesktop != 0 {
		t.Fatalf("expected 10 desktops with 1 current, got %v current %d", d.DesktopNames, d.CurrentDesktop)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.FocusedBorderColor = "cyan"
	_, err := New(Options{Config: cfg, Display: platformtest.New(100, 100)})
	if err == nil {
		t.Fatalf("expected error for invalid colour")
	}
}

func TestManageTilesNewClients(t *testing.T) {
	h := newHarness(t, nil)
	h.mapWindow(t, 10, "first", "XTerm")
	h.mapWindow(t, 11, "second", "XTerm")

	ws := h.m.CurrentWorkspace()
	if ws.Len() != 2 {
		t.Fatalf("expected 2 clients, got %d", ws.Len())
	}
	if ws.Current().Window() != 11 {
		t.Fatalf("expected newest window focused, got 0x%x", ws.Current().Window())
	}
	if h.d.Focused != 11 {
		t.Fatalf("expected input focus on 11, got %d", h.d.Focused)
	}
	if got := h.d.Windows[11].Geometry; got != geom.New(0, 0, 500, 800) {
		t.Fatalf("expected newest window in the left pane, got %s", got)
	}
	if got := h.d.Windows[10].Geometry; got != geom.New(500, 0, 500, 800) {
		t.Fatalf("expected older window in the right pane, got %s", got)
	}
	if len(h.d.ClientList) != 2 {
		t.Fatalf("expected client list of 2, got %v", h.d.ClientList)
	}
	if !h.d.Windows[10].Mapped || !h.d.Windows[10].InputSelected {
		t.Fatalf("expected window mapped with input selected")
	}
	if h.bar.last().Current != '1' || len(h.bar.last().Clients) != 2 {
		t.Fatalf("expected status dump with 2 clients, got %+v", h.bar.last())
	}
}

func TestManageAppliesBorderAndBarOffset(t *testing.T) {
	cfg := config.DefaultConfig()
	h := newHarness(t, cfg)
	h.mapWindow(t, 10, "only", "XTerm")

	win := h.d.Windows[10]
	if win.Border != 3 {
		t.Fatalf("expected border 3, got %d", win.Border)
	}
	want := geom.New(0, 15, 1000-6, 800-15-6)
	if win.Geometry != want {
		t.Fatalf("expected %s, got %s", want, win.Geometry)
	}
}

func TestMapRequestIgnoresOverrideRedirectAndKnownWindows(t *testing.T) {
	h := newHarness(t, nil)
	h.d.AddWindow(20, "menu", "dmenu").OverrideRedirect = true
	if err := h.m.HandleEvent(platform.MapRequest{Window: 20}); err != nil {
		t.Fatalf("map request: %v", err)
	}
	if h.m.lookup(20) != nil {
		t.Fatalf("expected override-redirect window to stay unmanaged")
	}

	h.mapWindow(t, 10, "term", "XTerm")
	if err := h.m.HandleEvent(platform.MapRequest{Window: 10}); err != nil {
		t.Fatalf("map request: %v", err)
	}
	if h.m.CurrentWorkspace().Len() != 1 {
		t.Fatalf("expected a second map request to be ignored, got %d clients", h.m.CurrentWorkspace().Len())
	}
	if err := h.m.HandleEvent(platform.MapRequest{Window: 99}); err != nil {
		t.Fatalf("map request for unknown window: %v", err)
	}
}

func TestManageDockGoesToSpecialList(t *testing.T) {
	h := newHarness(t, config.DefaultConfig())
	h.d.AddWindow(30, "bar", "xmobar").Types = []string{platform.TypeDock}
	if err := h.m.HandleEvent(platform.MapRequest{Window: 30}); err != nil {
		t.Fatalf("map request: %v", err)
	}
	if h.m.CurrentWorkspace().Len() != 0 {
		t.Fatalf("expected dock to stay out of the ring")
	}
	if len(h.m.special) != 1 || !h.m.special[0].IsDock() {
		t.Fatalf("expected dock in the special list, got %d", len(h.m.special))
	}
	if h.d.Windows[30].Border != 0 {
		t.Fatalf("expected dock without border, got %d", h.d.Windows[30].Border)
	}
	if len(h.d.ClientList) != 0 {
		t.Fatalf("expected docks to stay out of the client list, got %v", h.d.ClientList)
	}

	if err := h.m.HandleEvent(platform.DestroyNotify{Window: 30}); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if len(h.m.special) != 0 {
		t.Fatalf("expected dock to be forgotten on destroy")
	}
}

func TestRulesApplyInOrder(t *testing.T) {
	cfg := testConfig()
	cfg.Rules = append(cfg.Rules, config.Rule{
		Match:  config.RuleMatch{Class: "firefox"},
		Tag:    "3",
		Extras: map[string]string{"user_tag": "web"},
	})
	h := newHarness(t, cfg)

	gimp := h.mapWindow(t, 10, "GIMP", "Gimp")
	if !gimp.IsFloating() {
		t.Fatalf("expected Gimp to float")
	}
	tilda := h.mapWindow(t, 11, "tilda", "Tilda")
	if !tilda.IsFloating() || !tilda.IsSticky() {
		t.Fatalf("expected Tilda floating and sticky")
	}
	ff := h.mapWindow(t, 12, "Mozilla Firefox", "firefox")
	if ff.Tag() != '3' {
		t.Fatalf("expected firefox on tag 3, got %s", ff.Tag())
	}
	if v, _ := ff.Extra("user_tag"); v != "web" {
		t.Fatalf("expected user_tag web, got %q", v)
	}
	ws3, _ := h.m.Workspace('3')
	if ws3.Len() != 1 {
		t.Fatalf("expected firefox in workspace 3, got %d", ws3.Len())
	}
	if h.d.Windows[12].Geometry.X >= 0 {
		t.Fatalf("expected window on another tag to be hidden, got %s", h.d.Windows[12].Geometry)
	}
	if h.d.Focused == 12 {
		t.Fatalf("expected focus to stay on the current tag")
	}

	h.d.AddWindow(13, "Open File", "gedit").Types = []string{platform.TypeDialog}
	if err := h.m.HandleEvent(platform.MapRequest{Window: 13}); err != nil {
		t.Fatalf("map request: %v", err)
	}
	if !h.m.lookup(13).IsFloating() {
		t.Fatalf("expected dialog to float")
	}
}

func TestSelectTagCarriesStickyClients(t *testing.T) {
	h := newHarness(t, nil)
	term := h.mapWindow(t, 10, "term", "XTerm")
	tilda := h.mapWindow(t, 11, "tilda", "Tilda")

	h.m.SelectTag('2')
	ws1, _ := h.m.Workspace('1')
	ws2, _ := h.m.Workspace('2')
	if ws1.Len() != 1 || ws1.ClientByWindow(10) == nil {
		t.Fatalf("expected term to stay on tag 1")
	}
	if ws2.Len() != 1 || ws2.ClientByWindow(11) == nil {
		t.Fatalf("expected tilda to follow to tag 2")
	}
	if tilda.Tag() != '2' {
		t.Fatalf("expected sticky tag rewritten to 2, got %s", tilda.Tag())
	}
	if got := h.d.Windows[10].Geometry.X; got != -10*term.Rect().Width {
		t.Fatalf("expected term parked off-screen, got x=%d", got)
	}
	if h.d.CurrentDesktop != 1 {
		t.Fatalf("expected desktop 1 published, got %d", h.d.CurrentDesktop)
	}

	h.m.SelectTag('1')
	if ws1.Len() != 2 || ws2.Len() != 0 {
		t.Fatalf("expected sticky client back on tag 1, got %d/%d", ws1.Len(), ws2.Len())
	}
	if tilda.Tag() != '1' || h.m.CurrentFocused() != tilda {
		t.Fatalf("expected tilda focused on tag 1")
	}
	if got := h.d.Windows[10].Geometry; got != geom.New(0, 0, 1000, 800) {
		t.Fatalf("expected term shown again, got %s", got)
	}
}

func TestAddTagAndToggleBack(t *testing.T) {
	h := newHarness(t, nil)
	a := h.mapWindow(t, 10, "a", "XTerm")
	b := h.mapWindow(t, 11, "b", "XTerm")

	h.m.AddTag('2')
	if h.m.CurrentTag() != '2' {
		t.Fatalf("expected to follow the client to tag 2, got %s", h.m.CurrentTag())
	}
	if b.Tag() != '2' || h.m.CurrentFocused() != b {
		t.Fatalf("expected b focused on tag 2")
	}
	ws1, _ := h.m.Workspace('1')
	if ws1.Current() != a {
		t.Fatalf("expected a focused on tag 1 after b left")
	}

	h.m.SelectTag('1')
	h.m.ToggleBack()
	if h.m.CurrentTag() != '2' || h.m.CurrentFocused() != b {
		t.Fatalf("expected toggle back to return to b on tag 2, got tag %s", h.m.CurrentTag())
	}
	h.m.ToggleBack()
	if h.m.CurrentTag() != '1' || h.m.CurrentFocused() != a {
		t.Fatalf("expected second toggle back to return to a on tag 1, got tag %s", h.m.CurrentTag())
	}
}

func TestToggleBackSkipsClosedClients(t *testing.T) {
	h := newHarness(t, nil)
	h.mapWindow(t, 10, "a", "XTerm")
	h.m.SelectTag('2')
	if err := h.m.HandleEvent(platform.DestroyNotify{Window: 10}); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	h.m.ToggleBack()
	if h.m.CurrentTag() != '2' {
		t.Fatalf("expected toggle back to do nothing, got tag %s", h.m.CurrentTag())
	}
}

func TestOverviewIsTemporaryAndZoomJumps(t *testing.T) {
	h := newHarness(t, nil)
	a := h.mapWindow(t, 10, "a", "XTerm")
	h.m.SelectTag('2')
	b := h.mapWindow(t, 11, "b", "XTerm")
	aRect, bRect := a.Rect(), b.Rect()

	h.m.ToggleOverview()
	if h.m.CurrentTag() != client.TagOverview {
		t.Fatalf("expected overview, got %s", h.m.CurrentTag())
	}
	ov := h.m.CurrentWorkspace()
	if ov.Len() != 2 {
		t.Fatalf("expected both clients in the overview, got %d", ov.Len())
	}
	if ov.Current() != a {
		t.Fatalf("expected lowest tag first in the overview")
	}
	if a.Rect() != aRect || b.Rect() != bRect {
		t.Fatalf("expected overview resizes to leave stored geometry alone")
	}
	if h.d.Windows[10].Geometry.X < 0 || h.d.Windows[11].Geometry.X < 0 {
		t.Fatalf("expected every client visible in the overview")
	}
	if h.d.Windows[10].Geometry == h.d.Windows[11].Geometry {
		t.Fatalf("expected distinct overview cells")
	}
	if h.d.CurrentDesktop != 1 {
		t.Fatalf("expected the last real tag to stay the current desktop, got %d", h.d.CurrentDesktop)
	}

	h.m.Zoom()
	if h.m.CurrentTag() != '1' || h.m.CurrentFocused() != a {
		t.Fatalf("expected zoom to jump to a on tag 1, got tag %s", h.m.CurrentTag())
	}
	if ov.Len() != 0 {
		t.Fatalf("expected overview ring cleared on exit, got %d", ov.Len())
	}

	h.m.ToggleOverview()
	h.m.ToggleOverview()
	if h.m.CurrentTag() != '1' {
		t.Fatalf("expected overview toggle to return to tag 1, got %s", h.m.CurrentTag())
	}
}

func TestNewWindowInOverviewGoesToDefaultTag(t *testing.T) {
	h := newHarness(t, nil)
	h.m.SelectTag('3')
	h.m.ToggleOverview()
	c := h.mapWindow(t, 10, "a", "XTerm")
	if c.Tag() != '1' {
		t.Fatalf("expected default tag 1, got %s", c.Tag())
	}
	if h.m.CurrentWorkspace().Len() != 1 {
		t.Fatalf("expected the overview rebuilt with the new client")
	}
}

func TestToggleMaximizeUsesUsableArea(t *testing.T) {
	h := newHarness(t, nil)
	h.mapWindow(t, 10, "a", "XTerm")
	b := h.mapWindow(t, 11, "b", "XTerm")

	h.m.ToggleMaximize()
	if !b.IsMaximized() {
		t.Fatalf("expected b maximized")
	}
	if got := h.d.Windows[11].Geometry; got != geom.New(0, 0, 1000, 800) {
		t.Fatalf("expected maximized client to cover the usable area, got %s", got)
	}
	h.m.ToggleMaximize()
	if got := h.d.Windows[11].Geometry; got != geom.New(0, 0, 500, 800) {
		t.Fatalf("expected client back in its tile, got %s", got)
	}
}

func TestFullscreenRestoresGeometryAndFloating(t *testing.T) {
	h := newHarness(t, nil)
	h.mapWindow(t, 10, "a", "XTerm")
	b := h.mapWindow(t, 11, "b", "XTerm")
	h.d.Atoms[100] = platform.StateFullscreen

	enable := platform.ClientMessage{Window: 11, Type: atomWMState, Data: [5]uint32{wmStateAdd, 100}}
	if err := h.m.HandleEvent(enable); err != nil {
		t.Fatalf("client message: %v", err)
	}
	if !b.IsFullscreen() || !b.IsFloating() {
		t.Fatalf("expected b fullscreen and floating")
	}
	if got := h.d.Windows[11].Geometry; got != geom.New(0, 0, 1000, 800) {
		t.Fatalf("expected fullscreen geometry, got %s", got)
	}

	disable := platform.ClientMessage{Window: 11, Type: atomWMState, Data: [5]uint32{wmStateRemove, 100}}
	if err := h.m.HandleEvent(disable); err != nil {
		t.Fatalf("client message: %v", err)
	}
	if b.IsFullscreen() || b.IsFloating() {
		t.Fatalf("expected b tiled again")
	}
	if got := h.d.Windows[11].Geometry; got != geom.New(0, 0, 500, 800) {
		t.Fatalf("expected tile geometry restored, got %s", got)
	}

	toggle := platform.ClientMessage{Window: 11, Type: atomWMState, Data: [5]uint32{wmStateToggle, 0, 100}}
	if err := h.m.HandleEvent(toggle); err != nil {
		t.Fatalf("client message: %v", err)
	}
	if !b.IsFullscreen() {
		t.Fatalf("expected toggle to enable fullscreen")
	}
}

func TestFullscreenSurvivesTagSwitchAndOverview(t *testing.T) {
	h := newHarness(t, nil)
	h.mapWindow(t, 10, "a", "XTerm")
	b := h.mapWindow(t, 11, "b", "XTerm")
	tiled := h.d.Windows[11].Geometry
	full := geom.New(0, 0, 1000, 800)

	h.m.SetFullscreen(b, true)
	if got := h.d.Windows[11].Geometry; got != full {
		t.Fatalf("expected fullscreen geometry, got %s", got)
	}

	h.m.SelectTag('2')
	if got := h.d.Windows[11].Geometry; got.X >= 0 {
		t.Fatalf("expected b parked off-screen on tag 2, got %s", got)
	}
	h.m.SelectTag('1')
	if got := h.d.Windows[11].Geometry; got != full {
		t.Fatalf("expected fullscreen geometry after returning to tag 1, got %s", got)
	}

	h.m.ToggleOverview()
	if got := h.d.Windows[11].Geometry; got == full {
		t.Fatalf("expected b in an overview cell, got %s", got)
	}
	h.m.ToggleOverview()
	if got := h.d.Windows[11].Geometry; got != full {
		t.Fatalf("expected fullscreen geometry after the overview, got %s", got)
	}

	h.m.SetFullscreen(b, false)
	if got := h.d.Windows[11].Geometry; got != tiled {
		t.Fatalf("expected tile geometry %s restored, got %s", tiled, got)
	}
}

func TestRuleWeightOrdersClientListing(t *testing.T) {
	weight := 5
	cfg := testConfig()
	cfg.Rules = append(cfg.Rules, config.Rule{
		Match:  config.RuleMatch{Class: "Emacs"},
		Weight: &weight,
	})
	h := newHarness(t, cfg)
	h.mapWindow(t, 10, "a", "XTerm")
	editor := h.mapWindow(t, 11, "b", "Emacs")
	h.mapWindow(t, 12, "c", "XTerm")

	if editor.Weight() != 5 {
		t.Fatalf("expected weight 5 from the rule, got %d", editor.Weight())
	}
	infos := h.m.clientInfos()
	if len(infos) != 3 {
		t.Fatalf("expected 3 clients, got %d", len(infos))
	}
	if infos[0].Window != "0xb" || infos[0].Weight != 5 {
		t.Fatalf("expected the weighted client first, got %+v", infos[0])
	}
	for _, info := range infos[1:] {
		if info.Weight != -1 {
			t.Fatalf("expected default weight -1, got %+v", info)
		}
	}
}

func TestAboveWindowStaysOnTop(t *testing.T) {
	h := newHarness(t, nil)
	h.mapWindow(t, 10, "a", "XTerm")
	h.d.AddWindow(11, "clock", "XClock").States = []string{platform.StateAbove}
	if err := h.m.HandleEvent(platform.MapRequest{Window: 11}); err != nil {
		t.Fatalf("map request: %v", err)
	}
	h.mapWindow(t, 12, "c", "XTerm")

	if !h.m.lookup(11).IsAbove() {
		t.Fatalf("expected the above state to be recorded")
	}
	if got, top := h.d.StackIndex(11), len(h.d.Stack)-1; got != top {
		t.Fatalf("expected above window at stack index %d, got %d (%v)", top, got, h.d.Stack)
	}
	infos := h.m.clientInfos()
	for _, info := range infos {
		if info.Window == "0xb" && !info.Above {
			t.Fatalf("expected above flag in the listing, got %+v", info)
		}
	}
}

func TestShiftWindowClampsToScreen(t *testing.T) {
	h := newHarness(t, nil)
	c := h.mapWindow(t, 10, "gimp", "Gimp")

	h.m.ShiftWindow(-15, -15)
	if r := c.Rect(); r.X != 0 || r.Y != 0 {
		t.Fatalf("expected clamp at the origin, got %s", r)
	}
	h.m.ShiftWindow(5000, 5000)
	if r := c.Rect(); r.X != 900 || r.Y != 700 {
		t.Fatalf("expected clamp at the far corner, got %s", r)
	}
	if got := h.d.Windows[10].Geometry; got.X != 900 || got.Y != 700 {
		t.Fatalf("expected window moved, got %s", got)
	}
}

func TestShiftWindowIgnoresTiledClients(t *testing.T) {
	h := newHarness(t, nil)
	c := h.mapWindow(t, 10, "term", "XTerm")
	before := c.Rect()
	h.m.ShiftWindow(15, 0)
	h.m.ExpandWidth(15)
	if c.Rect() != before {
		t.Fatalf("expected tiled client untouched, got %s", c.Rect())
	}
}

func TestExpandCapsAndIgnoresTinySizes(t *testing.T) {
	h := newHarness(t, nil)
	c := h.mapWindow(t, 10, "gimp", "Gimp")

	h.m.ExpandWidth(-95)
	if c.Rect().Width != 100 {
		t.Fatalf("expected shrink below 10 to be ignored, got %d", c.Rect().Width)
	}
	h.m.ExpandWidth(5000)
	if c.Rect().Width != 1000 {
		t.Fatalf("expected width capped at the screen, got %d", c.Rect().Width)
	}
	h.m.ExpandHeight(-50)
	if c.Rect().Height != 50 {
		t.Fatalf("expected height 50, got %d", c.Rect().Height)
	}
}

func TestSetFocusIndex(t *testing.T) {
	h := newHarness(t, nil)
	a := h.mapWindow(t, 10, "a", "XTerm")
	h.mapWindow(t, 11, "b", "XTerm")
	c := h.mapWindow(t, 12, "c", "XTerm")

	// ring order is c, b, a
	h.m.SetFocusIndex(-1)
	if h.m.CurrentFocused() != a {
		t.Fatalf("expected last client focused")
	}
	h.m.SetFocusIndex(0)
	if h.m.CurrentFocused() != c {
		t.Fatalf("expected first client focused")
	}
	h.m.SetFocusIndex(7)
	if h.m.CurrentFocused() != c {
		t.Fatalf("expected out of range index to be ignored")
	}
}

func TestShiftFocusWraps(t *testing.T) {
	h := newHarness(t, nil)
	h.mapWindow(t, 10, "a", "XTerm")
	h.mapWindow(t, 11, "b", "XTerm")
	start := h.m.CurrentFocused()

	h.m.ShiftFocus(1)
	if h.m.CurrentFocused() == start {
		t.Fatalf("expected focus to move")
	}
	h.m.ShiftFocus(1)
	if h.m.CurrentFocused() != start {
		t.Fatalf("expected focus to wrap back to the start")
	}
}

func TestKillClientAsksPolitely(t *testing.T) {
	h := newHarness(t, nil)
	h.d.AddWindow(10, "polite", "XTerm").Protocols = []string{platform.ProtocolDelete}
	if err := h.m.HandleEvent(platform.MapRequest{Window: 10}); err != nil {
		t.Fatalf("map request: %v", err)
	}
	h.mapWindow(t, 11, "rude", "XTerm")

	h.m.KillClient()
	if !h.d.Windows[11].Killed {
		t.Fatalf("expected client without WM_DELETE_WINDOW to be killed")
	}
	h.m.KillClient()
	if h.d.Windows[10].Killed {
		t.Fatalf("expected polite client to get a delete message instead")
	}
	if sent := h.d.Windows[10].Sent; len(sent) == 0 || sent[len(sent)-1] != platform.ProtocolDelete {
		t.Fatalf("expected WM_DELETE_WINDOW, got %v", sent)
	}
	if h.m.CurrentWorkspace().Len() != 0 || len(h.d.ClientList) != 0 {
		t.Fatalf("expected both clients detached")
	}
}
