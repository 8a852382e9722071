package statusbar

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"slices"
	"strings"

	"github.com/1broseidon/tagwm/internal/client"
)

// Colors used by the xmobar formatter.
type Colors struct {
	Client         string
	SelectedClient string
	Tag            string
	SelectedTag    string
}

// XMobar writes one xmobar markup line per dump to the bar's stdin.
type XMobar struct {
	w           io.Writer
	cmd         *exec.Cmd
	colors      Colors
	titleLength int
	failed      bool
}

// StartXMobar launches command with a piped stdin.
func StartXMobar(command string, args []string, colors Colors, titleLength int) (*XMobar, error) {
	cmd := exec.Command(command, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s stdin: %w", command, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", command, err)
	}
	x := NewXMobar(stdin, colors, titleLength)
	x.cmd = cmd
	return x, nil
}

// NewXMobar writes to w instead of a child process.
func NewXMobar(w io.Writer, colors Colors, titleLength int) *XMobar {
	return &XMobar{w: w, colors: colors, titleLength: titleLength}
}

func (x *XMobar) Dump(s State) {
	if _, err := io.WriteString(x.w, x.Format(s)+"\n"); err != nil && !x.failed {
		x.failed = true
		slog.Warn("status bar write failed", "error", err)
	}
}

// Format renders the tag list followed by the current workspace's clients.
func (x *XMobar) Format(s State) string {
	tags := append([]client.Tag{s.Current}, s.ClientTags...)
	slices.Sort(tags)
	tags = slices.Compact(tags)

	var b strings.Builder
	for _, t := range tags {
		color := x.colors.Tag
		if t == s.Current {
			color = x.colors.SelectedTag
		}
		switch desc := s.Descriptions[t]; {
		case t == client.TagOverview:
			fmt.Fprintf(&b, "<fc=%s> Overview </fc>|", color)
		case desc != "":
			fmt.Fprintf(&b, "<fc=%s> %s - %s </fc>|", color, t, desc)
		default:
			fmt.Fprintf(&b, "<fc=%s> %s </fc>|", color, t)
		}
	}

	b.WriteString(" :: ")
	for i, c := range s.Clients {
		color := x.colors.Client
		if c.Focused {
			color = x.colors.SelectedClient
		}
		prefix := ""
		if s.Current == client.TagOverview {
			prefix = c.Tag.String() + "@"
		}
		fmt.Fprintf(&b, "[<fc=%s>%d %s%s</fc>] ", color, i+1, prefix, truncate(c.Title, x.titleLength))
	}
	return b.String()
}

func (x *XMobar) Close() error {
	if closer, ok := x.w.(io.Closer); ok {
		closer.Close()
	}
	if x.cmd == nil || x.cmd.Process == nil {
		return nil
	}
	if err := x.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("failed to stop status bar: %w", err)
	}
	_ = x.cmd.Wait()
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}
