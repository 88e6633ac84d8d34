package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/1broseidon/tilewm/internal/config"
	"github.com/1broseidon/tilewm/internal/daemon"
	"github.com/1broseidon/tilewm/internal/runtimepath"
	"github.com/phsym/console-slog"
	"github.com/spf13/cobra"
)

// autoLogFile is the --log-file value used when the flag is given without
// a path.
const autoLogFile = "auto"

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the window manager (foreground)",
		Args:  cobra.NoArgs,
		RunE:  runWM,
	}
	cmd.Flags().Bool("debug", false, "Enable debug logging")
	cmd.Flags().String("log-file", "", "Write logs to this file instead of stderr (no value: runtime dir)")
	cmd.Flags().Lookup("log-file").NoOptDefVal = autoLogFile
	return cmd
}

func runWM(cmd *cobra.Command, _ []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	logFile, _ := cmd.Flags().GetString("log-file")

	res, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config
	applyEnv(cfg)

	level := parseLevel(cfg.LogLevel)
	if debug {
		level = slog.LevelDebug
	}

	logger, closeLog, err := newLogger(cmd.ErrOrStderr(), logFile, level)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("configuration loaded", "files", res.Files, "modifier", cfg.Modifier, "layout", cfg.Layout.Default)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return daemon.Run(ctx, cfg, logger)
}

// applyEnv applies environment overrides. TILEWM_MOD=alt binds everything
// to Alt instead of the configured modifier.
func applyEnv(cfg *config.Config) {
	if strings.EqualFold(os.Getenv("TILEWM_MOD"), "alt") {
		cfg.Modifier = "mod1"
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger logs to stderr through console-slog, or as plain text to
// logFile when one is given.
func newLogger(stderr io.Writer, logFile string, level slog.Level) (*slog.Logger, func(), error) {
	if logFile == "" {
		return slog.New(console.NewHandler(stderr, &console.HandlerOptions{
			Level: level,
		})), func() {}, nil
	}

	if logFile == autoLogFile {
		path, err := runtimepath.LogPath()
		if err != nil {
			return nil, nil, err
		}
		logFile = path
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = f.Close() }, nil
}
