package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/phsym/console-slog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/tagwm/internal/config"
)

var version = "dev"

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:           "tagwm",
	Short:         "A tiling window manager for X11 with tag-based workspaces",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: $XDG_CONFIG_HOME/tagwm/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log at debug level")
	rootCmd.AddCommand(runCmd, ctlCmd, configCmd, mcpCmd)
}

// loadConfig reads --config when given, otherwise the standard location.
func loadConfig() (*config.Config, error) {
	res, err := loadConfigWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func loadConfigWithSources() (*config.LoadResult, error) {
	if configPath == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(configPath)
}

// initLogger installs the console handler as the default logger.
func initLogger(level slog.Level) *slog.Logger {
	logger := slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level:   level,
		NoColor: !term.IsTerminal(int(os.Stderr.Fd())),
	}))
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
