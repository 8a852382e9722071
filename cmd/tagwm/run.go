package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/ipc"
	"github.com/1broseidon/tagwm/internal/launch"
	"github.com/1broseidon/tagwm/internal/palette"
	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/runtimepath"
	"github.com/1broseidon/tagwm/internal/statusbar"
	"github.com/1broseidon/tagwm/internal/supervise"
	"github.com/1broseidon/tagwm/internal/wm"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the window manager (foreground)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runManager(cmd.Context())
	},
}

func runManager(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	logger := initLogger(parseLevel(""))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger = initLogger(parseLevel(cfg.LogLevel))

	envPath := cfg.EnvFile
	if envPath == "" {
		envPath, _ = config.DefaultEnvPath()
	}
	if err := launch.LoadEnv(envPath); err != nil {
		logger.Warn("failed to load env file", "path", envPath, "error", err)
	}

	display, err := platform.NewX11Display(platform.X11Options{Name: "tagwm", Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer display.Close()

	bar, err := newStatusBar(cfg.StatusBar)
	if err != nil {
		logger.Warn("failed to start status bar", "error", err)
		bar = statusbar.Dummy{}
	}

	var prompt wm.Prompter
	if backend, err := palette.NewBackend(cfg.Prompt.Backend, cfg.Prompt.Args); err != nil {
		logger.Warn("prompt commands disabled", "error", err)
	} else {
		prompt = backend
	}

	mgr, err := wm.New(wm.Options{
		Logger:       logger,
		Config:       cfg,
		Display:      display,
		StatusLogger: bar,
		Prompt:       prompt,
		Spawner:      launch.NewSpawner(logger),
		LoadConfig:   loadConfig,
	})
	if err != nil {
		return err
	}
	defer mgr.Close()

	dumpPath, err := runtimepath.DumpPath()
	if err != nil {
		logger.Warn("state dumps will not be written", "error", err)
	}
	ipcServer, err := ipc.NewServer(mgr, ipc.ServerOptions{DumpPath: dumpPath, Logger: logger})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	wmErr := make(chan error, 1)
	super := supervise.New("tagwm", logger)
	supervise.Add(super, supervise.Terminal("wm", func(ctx context.Context) error {
		err := mgr.Run(ctx)
		select {
		case wmErr <- err:
		default:
		}
		return err
	}))
	supervise.Add(super, supervise.NewFunc("ipc", ipcServer.Serve))
	supervise.Add(super, supervise.NewFunc("sighup", func(ctx context.Context) error {
		return reloadOnHangup(ctx, mgr, logger)
	}))

	super.Serve(ctx)

	select {
	case err := <-wmErr:
		if err != nil {
			return fmt.Errorf("window manager exited: %w", err)
		}
	default:
	}
	logger.Info("shut down", "session", mgr.SessionID())
	return nil
}

func newStatusBar(cfg config.StatusBarConfig) (statusbar.Logger, error) {
	if cfg.Kind != "xmobar" {
		return statusbar.Dummy{}, nil
	}
	colors := statusbar.Colors{
		Client:         cfg.ClientColor,
		SelectedClient: cfg.SelectedClientColor,
		Tag:            cfg.TagColor,
		SelectedTag:    cfg.SelectedTagColor,
	}
	return statusbar.StartXMobar(cfg.Command, cfg.Args, colors, cfg.TitleLength)
}

// reloadOnHangup re-reads the configuration on every SIGHUP until ctx ends.
func reloadOnHangup(ctx context.Context, mgr *wm.Manager, logger *slog.Logger) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-hup:
			logger.Info("received SIGHUP, reloading config")
			if err := mgr.Reload(ctx); err != nil {
				logger.Warn("failed to reload config", "error", err)
				continue
			}
			logger.Info("config reloaded")
		}
	}
}
