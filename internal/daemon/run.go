package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/tilewm/internal/bar"
	"github.com/1broseidon/tilewm/internal/config"
	"github.com/1broseidon/tilewm/internal/hotkeys"
	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/1broseidon/tilewm/internal/x11"
	"github.com/thejerf/suture/v4"
)

// Name is announced to EWMH pagers and used for the root supervisor.
const Name = "tilewm"

// Run takes over the X display and manages windows until ctx is cancelled
// or the Quit action is triggered. It returns nil after a clean quit.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := x11.NewConnection()
	if err != nil {
		return fmt.Errorf("failed to connect to X server: %w", err)
	}
	defer conn.Close()

	if err := conn.BecomeWM(); err != nil {
		return err
	}
	if err := conn.AnnounceWM(Name); err != nil {
		logger.Warn("failed to announce window manager", "error", err)
	}

	rootWidth, rootHeight, err := conn.RootSize()
	if err != nil {
		return err
	}

	var barWin *x11.BarWindow
	if cfg.Bar.Height > 0 {
		barWin, err = conn.CreateBar(rootWidth, cfg.Bar.Height, cfg.Bar.CellWidth, cfg.Bar.WorkspaceIcons)
		if err != nil {
			logger.Warn("failed to create bar, continuing without it", "error", err)
			barWin = nil
		} else {
			defer barWin.Destroy()
		}
	}
	cfg = withoutMissingBar(cfg, barWin != nil)

	backend := platform.NewLinuxBackend(conn, barWin)
	if display, err := backend.ActiveDisplay(); err == nil {
		logger.Info("managing display",
			"display", display.Name,
			"width", rootWidth,
			"height", rootHeight,
		)
	}

	// The root size is tiled, matching the bar width and later
	// ConfigureNotify updates.
	manager := tiling.NewManager(backend, cfg, rootWidth, rootHeight, logger.With("component", "tiling"))
	loop := NewLoop(manager, backend, LoopConfig{
		Cells:               bar.Cells{Width: cfg.Bar.CellWidth, Count: config.WorkspaceCount},
		FocusFollowsPointer: cfg.FocusFollowsPointer,
		Logger:              logger.With("component", "loop"),
	})

	x11.NewBridge(conn, barWin, loop, logger.With("component", "x11")).Connect()

	keys := hotkeys.NewHandler(backend, logger.With("component", "hotkeys"))
	bound := keys.RegisterBindings(cfg.Bindings, cfg.Modifier, cfg.SortedBindings(), func(action hotkeys.Action) {
		loop.Post(ActionTriggered{Action: action})
	})
	logger.Info("key bindings registered", "count", bound, "modifier", cfg.Modifier)

	ticker := NewTicker(TickerConfig{
		Interval: cfg.StatusInterval,
		Modules:  cfg.Bar.Modules,
		Logger:   logger.With("component", "status"),
	}, loop.Post)

	super := NewSupervisor(Name, logger.With("component", "supervisor"))
	Add(super, loop)
	Add(super, ticker)
	Add(super, NewServiceFunc("x-events", func(ctx context.Context) error {
		stop := context.AfterFunc(ctx, conn.Quit)
		defer stop()

		conn.EventLoop()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("x event loop exited: %w", suture.ErrTerminateSupervisorTree)
	}))

	err = super.Serve(ctx)
	if loop.Quitting() {
		logger.Info("window manager exited")
		return nil
	}
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// withoutMissingBar returns cfg with no bar space reserved when the bar
// window does not exist. cfg itself is not modified.
func withoutMissingBar(cfg *config.Config, haveBar bool) *config.Config {
	if haveBar || (cfg.Bar.Height == 0 && !cfg.Bar.Visible) {
		return cfg
	}
	adjusted := *cfg
	adjusted.Bar.Height = 0
	adjusted.Bar.Visible = false
	return &adjusted
}
