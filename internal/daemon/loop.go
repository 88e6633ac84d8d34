package daemon

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/1broseidon/tilewm/internal/bar"
	"github.com/1broseidon/tilewm/internal/config"
	"github.com/1broseidon/tilewm/internal/hotkeys"
	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/thejerf/suture/v4"
)

// ErrQuit is returned by Loop.Apply when the Quit action ends the session.
var ErrQuit = errors.New("quit requested")

// occupancySetter is implemented by backends that mark non-empty
// workspaces in the bar.
type occupancySetter interface {
	SetOccupied(occupied []bool)
}

// layoutSetter is implemented by backends that show the active layout mode.
type layoutSetter interface {
	SetLayout(name string)
}

// LoopConfig holds configuration for the event loop.
type LoopConfig struct {
	Cells               bar.Cells
	FocusFollowsPointer bool
	Spawn               func(command string) error
	QueueSize           int
	Logger              *slog.Logger
}

// Loop owns the tiling manager. Events are posted from any goroutine and
// applied one at a time, to completion, by Serve.
type Loop struct {
	manager *tiling.Manager
	backend platform.Backend
	occ     occupancySetter
	layouts layoutSetter

	cells               bar.Cells
	focusFollowsPointer bool
	spawn               func(command string) error
	logger              *slog.Logger

	events chan Event
	done   chan struct{}

	startOnce sync.Once
	quitOnce  sync.Once
	occupied  []bool
	layout    config.LayoutMode
}

// NewLoop creates a loop driving manager. Backend is the same backend the
// manager uses; it also receives status text.
func NewLoop(manager *tiling.Manager, backend platform.Backend, cfg LoopConfig) *Loop {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = 256
	}
	spawn := cfg.Spawn
	if spawn == nil {
		spawn = Spawn
	}

	l := &Loop{
		manager:             manager,
		backend:             backend,
		cells:               cfg.Cells,
		focusFollowsPointer: cfg.FocusFollowsPointer,
		spawn:               spawn,
		logger:              logger,
		events:              make(chan Event, size),
		done:                make(chan struct{}),
	}
	if occ, ok := backend.(occupancySetter); ok {
		l.occ = occ
	}
	if ls, ok := backend.(layoutSetter); ok {
		l.layouts = ls
	}
	return l
}

func (l *Loop) String() string {
	return "event-loop"
}

// Post enqueues ev. It blocks while the queue is full and drops the event
// once the loop has quit.
func (l *Loop) Post(ev Event) {
	select {
	case l.events <- ev:
	case <-l.done:
	}
}

// Done is closed after the Quit action has been applied.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Quitting reports whether the Quit action has been applied.
func (l *Loop) Quitting() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// Serve applies events until ctx is cancelled or Quit is triggered. Quit
// terminates the whole supervisor tree.
func (l *Loop) Serve(ctx context.Context) error {
	l.startOnce.Do(func() {
		l.manager.Start()
		l.publishBar()
		l.logger.Info("event loop started")
	})

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("event loop stopped")
			return ctx.Err()
		case <-l.done:
			return suture.ErrTerminateSupervisorTree
		case ev := <-l.events:
			if err := l.Apply(ev); errors.Is(err, ErrQuit) {
				return suture.ErrTerminateSupervisorTree
			}
		}
	}
}

// Apply processes a single event synchronously. It is exported for tests
// and must only be called from the goroutine running Serve.
func (l *Loop) Apply(ev Event) error {
	if l.Quitting() {
		return ErrQuit
	}

	switch e := ev.(type) {
	case WindowAppeared:
		l.manager.WindowAppeared(e.Window)
	case WindowDestroyed:
		l.manager.WindowDestroyed(e.Window)
	case PointerEntered:
		if l.focusFollowsPointer {
			l.manager.PointerEntered(e.Window, e.X, e.Y)
		}
	case BarClicked:
		if index, ok := l.cells.WorkspaceAt(e.X); ok {
			l.manager.SwitchWorkspace(index)
		}
	case ViewportChanged:
		l.manager.ResizeViewport(e.Width, e.Height)
	case ActionTriggered:
		if err := l.dispatch(e.Action); err != nil {
			return err
		}
	case Tick:
		if e.Changed {
			if err := l.backend.SetStatus(e.Status); err != nil {
				l.logger.Warn("failed to set status", "error", err)
			}
		}
		return nil
	default:
		l.logger.Warn("unknown event", "type", ev)
		return nil
	}

	l.publishBar()
	return nil
}

func (l *Loop) dispatch(action hotkeys.Action) error {
	l.logger.Debug("action", "action", action)

	switch action.Kind {
	case hotkeys.Spawn:
		if err := l.spawn(action.Command); err != nil {
			l.logger.Warn("failed to spawn", "command", action.Command, "error", err)
		}
	case hotkeys.KillFocused:
		l.manager.KillFocused()
	case hotkeys.Quit:
		l.quitOnce.Do(func() {
			l.logger.Info("quitting", "windows", l.manager.ManagedCount())
			l.manager.KillAll()
			close(l.done)
		})
		return ErrQuit
	case hotkeys.FocusNext:
		l.manager.CycleFocus(tiling.Next)
	case hotkeys.FocusPrev:
		l.manager.CycleFocus(tiling.Prev)
	case hotkeys.MoveWindowNext:
		l.manager.MoveFocused(tiling.Next)
	case hotkeys.MoveWindowPrev:
		l.manager.MoveFocused(tiling.Prev)
	case hotkeys.CycleLayout:
		l.manager.CycleLayout()
	case hotkeys.ToggleBar:
		l.manager.ToggleBarMargin()
	case hotkeys.SplitHorizontal:
		l.manager.SetPendingSplit(config.SplitHorizontal)
	case hotkeys.SplitVertical:
		l.manager.SetPendingSplit(config.SplitVertical)
	case hotkeys.PromoteMaster:
		l.manager.PromoteFocusedToMaster()
	case hotkeys.Workspace:
		l.manager.SwitchWorkspace(action.Workspace)
	case hotkeys.MoveToWorkspace:
		l.manager.MoveFocusedToWorkspace(action.Workspace)
	default:
		l.logger.Warn("unhandled action", "action", action)
	}
	return nil
}

// publishBar pushes occupancy and the active layout to the backend when
// either changed.
func (l *Loop) publishBar() {
	l.publishOccupancy()
	l.publishLayout()
}

func (l *Loop) publishLayout() {
	if l.layouts == nil {
		return
	}
	layout := l.manager.LayoutOf(l.manager.ActiveIndex())
	if layout == l.layout {
		return
	}
	l.layout = layout
	l.layouts.SetLayout(string(layout))
}

func (l *Loop) publishOccupancy() {
	if l.occ == nil {
		return
	}
	occupied := make([]bool, config.WorkspaceCount)
	for i := range occupied {
		occupied[i] = len(l.manager.WorkspaceWindows(i)) > 0
	}
	if slices.Equal(occupied, l.occupied) {
		return
	}
	l.occupied = occupied
	l.occ.SetOccupied(occupied)
}

// x11.EventSink

func (l *Loop) MapRequested(windowID uint32) {
	l.Post(WindowAppeared{Window: platform.WindowID(windowID)})
}

func (l *Loop) Destroyed(windowID uint32) {
	l.Post(WindowDestroyed{Window: platform.WindowID(windowID)})
}

func (l *Loop) PointerEntered(windowID uint32, rootX, rootY int) {
	l.Post(PointerEntered{Window: platform.WindowID(windowID), X: rootX, Y: rootY})
}

func (l *Loop) BarClicked(x int) {
	l.Post(BarClicked{X: x})
}

func (l *Loop) RootResized(width, height int) {
	l.Post(ViewportChanged{Width: width, Height: height})
}
