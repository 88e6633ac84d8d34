package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/1broseidon/tilewm/internal/bar"
	"github.com/1broseidon/tilewm/internal/config"
	"github.com/1broseidon/tilewm/internal/hotkeys"
	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/tiling"
	"github.com/thejerf/suture/v4"
)

type fakeBackend struct {
	rects    map[platform.WindowID]platform.Rect
	mapped   map[platform.WindowID]bool
	killed   []platform.WindowID
	focused  platform.WindowID
	statuses []string
	occupied [][]bool
	layouts  []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		rects:  make(map[platform.WindowID]platform.Rect),
		mapped: make(map[platform.WindowID]bool),
	}
}

func (f *fakeBackend) ActiveDisplay() (platform.Display, error) {
	return platform.Display{Bounds: platform.Rect{Width: 1000, Height: 800}}, nil
}

func (f *fakeBackend) Map(id platform.WindowID) error {
	f.mapped[id] = true
	return nil
}

func (f *fakeBackend) Unmap(id platform.WindowID) error {
	f.mapped[id] = false
	return nil
}

func (f *fakeBackend) Configure(id platform.WindowID, r platform.Rect) error {
	f.rects[id] = r
	return nil
}

func (f *fakeBackend) RaiseAndFocus(id platform.WindowID) error {
	f.focused = id
	return nil
}

func (f *fakeBackend) ReleaseFocus() error {
	f.focused = 0
	return nil
}

func (f *fakeBackend) Kill(id platform.WindowID) error {
	f.killed = append(f.killed, id)
	return nil
}

func (f *fakeBackend) ShowBar() error { return nil }
func (f *fakeBackend) HideBar() error { return nil }

func (f *fakeBackend) SetStatus(text string) error {
	f.statuses = append(f.statuses, text)
	return nil
}

func (f *fakeBackend) SetOccupied(occupied []bool) {
	f.occupied = append(f.occupied, slices.Clone(occupied))
}

func (f *fakeBackend) SetLayout(name string) {
	f.layouts = append(f.layouts, name)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLoop(t *testing.T, cfg LoopConfig) (*Loop, *tiling.Manager, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	manager := tiling.NewManager(backend, config.DefaultConfig(), 1000, 800, discardLogger())
	if cfg.Logger == nil {
		cfg.Logger = discardLogger()
	}
	if cfg.Spawn == nil {
		cfg.Spawn = func(string) error { return nil }
	}
	return NewLoop(manager, backend, cfg), manager, backend
}

func action(t *testing.T, s string) Event {
	t.Helper()
	a, err := hotkeys.ParseAction(s)
	if err != nil {
		t.Fatalf("ParseAction(%q): %v", s, err)
	}
	return ActionTriggered{Action: a}
}

func apply(t *testing.T, l *Loop, events ...Event) {
	t.Helper()
	for _, ev := range events {
		if err := l.Apply(ev); err != nil {
			t.Fatalf("Apply(%#v): %v", ev, err)
		}
	}
}

func TestLoop_WindowLifecycle(t *testing.T) {
	l, m, backend := newTestLoop(t, LoopConfig{})

	apply(t, l, WindowAppeared{Window: 1}, WindowAppeared{Window: 2})
	if got := m.WorkspaceWindows(0); !slices.Equal(got, []platform.WindowID{1, 2}) {
		t.Fatalf("expected [1 2], got %v", got)
	}
	if backend.focused != 2 {
		t.Fatalf("expected window 2 focused, got %d", backend.focused)
	}

	apply(t, l, WindowDestroyed{Window: 2})
	if got := m.WorkspaceWindows(0); !slices.Equal(got, []platform.WindowID{1}) {
		t.Fatalf("expected [1], got %v", got)
	}
	if backend.focused != 1 {
		t.Fatalf("expected focus to fall back to 1, got %d", backend.focused)
	}
}

func TestLoop_DispatchesActions(t *testing.T) {
	var spawned []string
	l, m, _ := newTestLoop(t, LoopConfig{
		Spawn: func(command string) error {
			spawned = append(spawned, command)
			return nil
		},
	})

	apply(t, l,
		WindowAppeared{Window: 1},
		WindowAppeared{Window: 2},
		action(t, "FocusPrev"),
	)
	if id, _ := m.Focused(); id != 1 {
		t.Fatalf("expected FocusPrev to focus 1, got %d", id)
	}

	apply(t, l, action(t, "MoveWindowNext"))
	if got := m.WorkspaceWindows(0); !slices.Equal(got, []platform.WindowID{2, 1}) {
		t.Fatalf("expected [2 1] after move, got %v", got)
	}

	apply(t, l, action(t, "PromoteMaster"))
	if got := m.WorkspaceWindows(0); !slices.Equal(got, []platform.WindowID{1, 2}) {
		t.Fatalf("expected [1 2] after promote, got %v", got)
	}

	before := m.LayoutOf(0)
	apply(t, l, action(t, "CycleLayout"))
	if m.LayoutOf(0) == before {
		t.Fatalf("expected layout to change from %s", before)
	}

	apply(t, l, action(t, "SplitHorizontal"))
	if m.PendingSplit() != config.SplitHorizontal {
		t.Fatalf("expected pending split horizontal, got %s", m.PendingSplit())
	}

	apply(t, l, action(t, "MoveToWorkspace 3"))
	if got := m.WorkspaceWindows(2); !slices.Equal(got, []platform.WindowID{1}) {
		t.Fatalf("expected window 1 on workspace 3, got %v", got)
	}

	apply(t, l, action(t, "Workspace 3"))
	if m.ActiveIndex() != 2 {
		t.Fatalf("expected workspace 3 active, got index %d", m.ActiveIndex())
	}

	apply(t, l, action(t, "Spawn xterm -e top"))
	if !slices.Equal(spawned, []string{"xterm -e top"}) {
		t.Fatalf("unexpected spawned commands %v", spawned)
	}
}

func TestLoop_SpawnFailureIsNotFatal(t *testing.T) {
	l, _, _ := newTestLoop(t, LoopConfig{
		Spawn: func(string) error { return errors.New("no such file") },
	})
	apply(t, l, action(t, "Spawn missing-program"))
}

func TestLoop_ToggleBarChangesMargin(t *testing.T) {
	l, m, _ := newTestLoop(t, LoopConfig{})
	before := m.TopMargin()
	apply(t, l, action(t, "ToggleBar"))
	if m.TopMargin() == before {
		t.Fatalf("expected ToggleBar to change the top margin from %d", before)
	}
	apply(t, l, action(t, "ToggleBar"))
	if m.TopMargin() != before {
		t.Fatalf("expected second ToggleBar to restore %d, got %d", before, m.TopMargin())
	}
}

func TestLoop_BarClickSwitchesWorkspace(t *testing.T) {
	l, m, _ := newTestLoop(t, LoopConfig{Cells: bar.Cells{Width: 30, Count: config.WorkspaceCount}})

	apply(t, l, BarClicked{X: 95})
	if m.ActiveIndex() != 3 {
		t.Fatalf("expected workspace index 3, got %d", m.ActiveIndex())
	}

	apply(t, l, BarClicked{X: 900})
	if m.ActiveIndex() != 3 {
		t.Fatalf("expected click outside the cells to be ignored, got %d", m.ActiveIndex())
	}
}

func TestLoop_PointerEnteredRespectsFocusFollowsPointer(t *testing.T) {
	l, m, _ := newTestLoop(t, LoopConfig{FocusFollowsPointer: false})
	apply(t, l, WindowAppeared{Window: 1}, WindowAppeared{Window: 2}, PointerEntered{Window: 1, X: 10, Y: 10})
	if id, _ := m.Focused(); id != 2 {
		t.Fatalf("expected focus to stay on 2 with focus-follows-pointer off, got %d", id)
	}

	l, m, _ = newTestLoop(t, LoopConfig{FocusFollowsPointer: true})
	apply(t, l, WindowAppeared{Window: 1}, WindowAppeared{Window: 2}, PointerEntered{Window: 1, X: 10, Y: 10})
	if id, _ := m.Focused(); id != 1 {
		t.Fatalf("expected pointer to focus 1, got %d", id)
	}
}

func TestLoop_ViewportChanged(t *testing.T) {
	l, m, _ := newTestLoop(t, LoopConfig{})
	apply(t, l, ViewportChanged{Width: 1280, Height: 720})
	vp := m.Viewport()
	if vp.Width != 1280 || vp.Height != 720 {
		t.Fatalf("expected 1280x720 viewport, got %dx%d", vp.Width, vp.Height)
	}
}

func TestLoop_TickPublishesOnlyChangedStatus(t *testing.T) {
	l, _, backend := newTestLoop(t, LoopConfig{})
	apply(t, l,
		Tick{Status: "12:00", Changed: true},
		Tick{Status: "12:00", Changed: false},
		Tick{Status: "12:01", Changed: true},
	)
	if !slices.Equal(backend.statuses, []string{"12:00", "12:01"}) {
		t.Fatalf("unexpected statuses %v", backend.statuses)
	}
}

func TestLoop_PublishesOccupancyOnChange(t *testing.T) {
	l, _, backend := newTestLoop(t, LoopConfig{})

	apply(t, l, WindowAppeared{Window: 1})
	apply(t, l, action(t, "FocusNext"))
	apply(t, l, action(t, "MoveToWorkspace 2"))

	if len(backend.occupied) != 2 {
		t.Fatalf("expected 2 occupancy updates, got %d: %v", len(backend.occupied), backend.occupied)
	}
	if !backend.occupied[0][0] || backend.occupied[0][1] {
		t.Fatalf("unexpected first occupancy %v", backend.occupied[0])
	}
	if backend.occupied[1][0] || !backend.occupied[1][1] {
		t.Fatalf("unexpected second occupancy %v", backend.occupied[1])
	}
}

func TestLoop_PublishesLayoutOnChange(t *testing.T) {
	l, _, backend := newTestLoop(t, LoopConfig{})

	apply(t, l, WindowAppeared{Window: 1})
	apply(t, l, action(t, "FocusNext"))
	apply(t, l, action(t, "CycleLayout"))
	apply(t, l, action(t, "Workspace 2"))

	want := []string{"master-stack", "vertical-stack", "master-stack"}
	if !slices.Equal(backend.layouts, want) {
		t.Fatalf("expected layouts %v, got %v", want, backend.layouts)
	}
}

func TestLoop_QuitKillsAllAndStops(t *testing.T) {
	l, _, backend := newTestLoop(t, LoopConfig{})
	apply(t, l, WindowAppeared{Window: 1}, WindowAppeared{Window: 2}, action(t, "MoveToWorkspace 5"))

	if err := l.Apply(action(t, "Quit")); !errors.Is(err, ErrQuit) {
		t.Fatalf("expected ErrQuit, got %v", err)
	}
	if !l.Quitting() {
		t.Fatalf("expected loop to report quitting")
	}
	slices.Sort(backend.killed)
	if !slices.Equal(backend.killed, []platform.WindowID{1, 2}) {
		t.Fatalf("expected every window killed, got %v", backend.killed)
	}

	if err := l.Apply(WindowAppeared{Window: 3}); !errors.Is(err, ErrQuit) {
		t.Fatalf("expected events after quit to be refused, got %v", err)
	}

	// Post must not block once the loop is done.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			l.Post(WindowAppeared{Window: 9})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Post blocked after quit")
	}
}

func TestLoop_ServeProcessesPostedEventsUntilQuit(t *testing.T) {
	l, m, _ := newTestLoop(t, LoopConfig{QueueSize: 4})

	errc := make(chan error, 1)
	go func() {
		errc <- l.Serve(context.Background())
	}()

	l.MapRequested(7)
	l.Post(action(t, "Quit"))

	select {
	case err := <-errc:
		if !errors.Is(err, suture.ErrTerminateSupervisorTree) {
			t.Fatalf("expected ErrTerminateSupervisorTree, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not return after Quit")
	}

	if got := m.WorkspaceWindows(0); !slices.Equal(got, []platform.WindowID{7}) {
		t.Fatalf("expected mapped window to be managed, got %v", got)
	}
}

func TestLoop_ServeStopsOnCancel(t *testing.T) {
	l, _, _ := newTestLoop(t, LoopConfig{})
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() {
		errc <- l.Serve(ctx)
	}()
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not return after cancel")
	}
}

func TestTicker_PostsStatus(t *testing.T) {
	events := make(chan Event, 4)
	ticker := NewTicker(TickerConfig{
		Interval: time.Hour,
		Modules:  []config.BarModule{{Command: "date", Interval: 1}},
		Runner: func(context.Context, string) (string, error) {
			return "now", nil
		},
		Logger: discardLogger(),
	}, func(ev Event) { events <- ev })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ticker.Serve(ctx)

	select {
	case ev := <-events:
		tick, ok := ev.(Tick)
		if !ok || tick.Status != "now" || !tick.Changed {
			t.Fatalf("unexpected first event %#v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("ticker did not post an initial tick")
	}
}

func TestSanitizeError(t *testing.T) {
	ctx := context.Background()
	if SanitizeError(ctx, nil) != nil {
		t.Fatalf("expected nil to stay nil")
	}

	plain := errors.New("boom")
	if SanitizeError(ctx, plain) != plain {
		t.Fatalf("expected non-context error to pass through")
	}

	err := SanitizeError(ctx, context.Canceled)
	if errors.Is(err, context.Canceled) {
		t.Fatalf("expected foreign context error to be masked, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if !errors.Is(SanitizeError(cancelled, plain), context.Canceled) {
		t.Fatalf("expected the service's own cancellation to be reported")
	}
}
