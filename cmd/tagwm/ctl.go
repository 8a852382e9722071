package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/tagwm/internal/ipc"
	"github.com/1broseidon/tagwm/internal/wm"
)

var ctlJSON bool

var ctlCmd = &cobra.Command{
	Use:   "ctl",
	Short: "Query or drive the running window manager over its control socket",
}

var ctlStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show manager status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := ipc.NewClient().Status()
		if err != nil {
			return err
		}
		if ctlJSON {
			return writeJSON(cmd.OutOrStdout(), status)
		}
		printStatus(cmd.OutOrStdout(), status)
		return nil
	},
}

var ctlClientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List managed windows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		clients, err := ipc.NewClient().Clients()
		if err != nil {
			return err
		}
		if ctlJSON {
			return writeJSON(cmd.OutOrStdout(), clients)
		}
		printClients(cmd.OutOrStdout(), clients)
		return nil
	},
}

var ctlTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List configured tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, err := ipc.NewClient().Tags()
		if err != nil {
			return err
		}
		if ctlJSON {
			return writeJSON(cmd.OutOrStdout(), tags)
		}
		printTags(cmd.OutOrStdout(), tags)
		return nil
	},
}

var ctlExecCmd = &cobra.Command{
	Use:     "exec <command> [args...]",
	Short:   "Run a configured command, e.g. 'select-tag 3' or 'zoom'",
	Example: "  tagwm ctl exec select-tag 3\n  tagwm ctl exec spawn xterm",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ipc.NewClient().Exec(args[0], args[1:]...)
	},
}

var ctlReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Re-read the configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ipc.NewClient().Reload(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "config reloaded")
		return nil
	},
}

var ctlDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the focus ring of every tag",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dump, path, err := ipc.NewClient().Dump()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		// pp always colours, so pipes get JSON.
		if ctlJSON || !isTerminal(out) {
			if err := writeJSON(out, dump); err != nil {
				return err
			}
		} else {
			pp.Fprintln(out, dump)
		}
		if path != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "written to %s\n", path)
		}
		return nil
	},
}

func init() {
	ctlCmd.PersistentFlags().BoolVar(&ctlJSON, "json", false, "Print raw JSON")
	ctlCmd.AddCommand(ctlStatusCmd, ctlClientsCmd, ctlTagsCmd, ctlExecCmd, ctlReloadCmd, ctlDumpCmd)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printStatus(w io.Writer, s *wm.Status) {
	fmt.Fprintf(w, "session:     %s\n", s.SessionID)
	fmt.Fprintf(w, "tag:         %s\n", s.CurrentTag)
	if s.FocusedWindow != "" {
		fmt.Fprintf(w, "focused:     %s %s\n", s.FocusedWindow, s.FocusedTitle)
	}
	fmt.Fprintf(w, "clients:     %d\n", s.Clients)
	fmt.Fprintf(w, "docks:       %d\n", s.Docks)
	fmt.Fprintf(w, "screen:      %s\n", s.Screen)
	fmt.Fprintf(w, "uptime:      %s\n", s.Uptime)
}

func printClients(w io.Writer, clients []wm.ClientInfo) {
	if len(clients) == 0 {
		fmt.Fprintln(w, "no managed windows")
		return
	}
	for _, c := range clients {
		marker := " "
		if c.Focused {
			marker = "*"
		}
		flags := clientFlags(c)
		label := c.Title
		if c.UserTag != "" {
			label = fmt.Sprintf("(%s) %s", c.UserTag, c.Title)
		}
		fmt.Fprintf(w, "%s %-10s %s  %-16s %-10s %s\n", marker, c.Window, c.Tag, c.Class, flags, label)
	}
}

func clientFlags(c wm.ClientInfo) string {
	flags := ""
	add := func(on bool, f string) {
		if on {
			flags += f
		}
	}
	add(c.Floating, "f")
	add(c.Sticky, "s")
	add(c.Maximized, "m")
	add(c.Fullscreen, "F")
	add(c.Above, "a")
	if flags == "" {
		return "-"
	}
	return flags
}

func printTags(w io.Writer, tags []wm.TagInfo) {
	for _, t := range tags {
		marker := " "
		if t.Current {
			marker = "*"
		}
		line := fmt.Sprintf("%s %s  %-10s %d", marker, t.Name, t.Layout, t.Clients)
		if t.Description != "" {
			line += "  " + t.Description
		}
		fmt.Fprintln(w, line)
	}
}
