package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/tilewm/internal/bar"
	"github.com/1broseidon/tilewm/internal/config"
)

// TickerConfig holds configuration for the ticker.
type TickerConfig struct {
	Interval time.Duration
	Modules  []config.BarModule
	Runner   bar.Runner
	Logger   *slog.Logger
}

// Ticker periodically refreshes the status modules and posts the result as
// a Tick. Module commands run on the ticker's goroutine, never the loop's.
type Ticker struct {
	interval time.Duration
	status   *bar.Status
	post     func(Event)
	now      func() time.Time
	logger   *slog.Logger
}

// NewTicker creates a ticker that hands every Tick to post.
func NewTicker(cfg TickerConfig, post func(Event)) *Ticker {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Ticker{
		interval: interval,
		status:   bar.NewStatus(cfg.Modules, cfg.Runner, logger),
		post:     post,
		now:      time.Now,
		logger:   logger,
	}
}

func (t *Ticker) String() string {
	return "status-ticker"
}

// Serve ticks immediately and then every interval. Blocks until ctx is
// cancelled.
func (t *Ticker) Serve(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.logger.Debug("ticker started", "interval", t.interval)
	t.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			t.logger.Debug("ticker stopped")
			return ctx.Err()
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

func (t *Ticker) tick(ctx context.Context) {
	// A misbehaving runner must not take the status bar down with it.
	defer func() {
		if err := recover(); err != nil {
			t.logger.Error("ticker panic recovered", "error", err)
		}
	}()

	text, changed := t.status.Refresh(ctx, t.now())
	t.post(Tick{Status: text, Changed: changed})
}
