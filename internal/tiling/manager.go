package tiling

import (
	"log/slog"

	"github.com/1broseidon/tilewm/internal/config"
	"github.com/1broseidon/tilewm/internal/platform"
)

// Direction selects the neighbour for focus and move operations.
type Direction int

const (
	Next Direction = iota
	Prev
)

func (d Direction) String() string {
	if d == Prev {
		return "prev"
	}
	return "next"
}

// Manager owns the workspaces, focus and viewport. It is not safe for
// concurrent use; the daemon loop is its only caller.
//
// Every operation updates the model first and then echoes the result to the
// backend. Backend failures are logged per window and never roll the model
// back.
type Manager struct {
	backend platform.Backend
	hinter  platform.DesktopHinter
	logger  *slog.Logger

	workspaces [config.WorkspaceCount]*Workspace
	active     int

	focused  platform.WindowID
	hasFocus bool

	width       int
	height      int
	masterRatio float64

	barHeight int
	barShown  bool

	pendingSplit config.SplitAxis

	pointerX, pointerY int
	hasPointer         bool
}

// NewManager creates a manager tiling a width x height screen. The bar's
// initial visibility and every workspace's layout come from cfg.
func NewManager(backend platform.Backend, cfg *config.Config, width, height int, logger *slog.Logger) *Manager {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		backend:      backend,
		logger:       logger,
		width:        width,
		height:       height,
		masterRatio:  cfg.Layout.MasterRatio,
		barHeight:    cfg.Bar.Height,
		barShown:     cfg.Bar.Visible,
		pendingSplit: cfg.Layout.DefaultSplit,
	}
	if !m.pendingSplit.Valid() {
		m.pendingSplit = config.SplitVertical
	}
	if h, ok := backend.(platform.DesktopHinter); ok {
		m.hinter = h
	}
	for i := range m.workspaces {
		m.workspaces[i] = NewWorkspace(cfg.Layout.Default)
	}
	return m
}

// Start publishes the initial bar and desktop state.
func (m *Manager) Start() {
	m.syncBar()
	if m.hinter != nil {
		if err := m.hinter.SetDesktopCount(len(m.workspaces)); err != nil {
			m.logger.Warn("failed to publish desktop count", "error", err)
		}
	}
	m.publishDesktop()
	m.publishActive()
}

// WindowAppeared starts managing id on the active workspace. A window that
// is already managed is shown again: its workspace becomes active and it
// takes focus.
func (m *Manager) WindowAppeared(id platform.WindowID) {
	if idx := m.workspaceOf(id); idx >= 0 {
		m.logger.Debug("window reappeared", "window", id, "workspace", idx)
		if idx != m.active {
			m.SwitchWorkspace(idx)
		}
		m.mapWindow(id)
		m.focus(id)
		return
	}

	ws := m.current()
	ws.Append(id, m.pendingSplit)
	m.logger.Debug("managing window", "window", id, "workspace", m.active, "axis", m.pendingSplit)

	m.focused, m.hasFocus = id, true
	m.relayout()
	m.mapWindow(id)
	m.raiseAndFocus(id)
	m.publishActive()
}

// WindowDestroyed stops managing id, wherever it lives.
func (m *Manager) WindowDestroyed(id platform.WindowID) {
	idx := m.workspaceOf(id)
	if idx < 0 {
		return
	}
	m.workspaces[idx].Remove(id)
	m.logger.Debug("window destroyed", "window", id, "workspace", idx)

	if idx == m.active {
		m.relayout()
	}
	if m.hasFocus && m.focused == id {
		m.hasFocus = false
		m.focusLast()
	}
}

// SwitchWorkspace makes index the visible workspace.
func (m *Manager) SwitchWorkspace(index int) {
	if index == m.active || index < 0 || index >= len(m.workspaces) {
		return
	}

	previous := m.current()
	m.active = index
	m.logger.Debug("switching workspace", "workspace", index)

	m.relayout()
	for _, id := range m.current().Windows() {
		m.mapWindow(id)
	}
	for _, id := range previous.Windows() {
		m.unmapWindow(id)
	}

	m.hasFocus = false
	m.focusLast()
	m.publishDesktop()
}

// MoveFocusedToWorkspace sends the focused window to target, keeping its
// split axis.
func (m *Manager) MoveFocusedToWorkspace(target int) {
	if !m.hasFocus || target == m.active || target < 0 || target >= len(m.workspaces) {
		return
	}

	id := m.focused
	slot, ok := m.current().Remove(id)
	if !ok {
		return
	}
	m.workspaces[target].AppendSlot(slot)
	m.logger.Debug("moved window", "window", id, "from", m.active, "to", target)

	m.relayout()
	m.unmapWindow(id)

	m.hasFocus = false
	m.focusLast()
}

// CycleFocus moves focus to the neighbouring window, wrapping at both ends.
func (m *Manager) CycleFocus(dir Direction) {
	ws := m.current()
	n := ws.Len()
	if n == 0 {
		return
	}

	target := 0
	if m.hasFocus {
		if i := ws.IndexOf(m.focused); i >= 0 {
			target = neighbour(i, n, dir)
		}
	}
	id, _ := ws.At(target)
	m.focus(id)
}

// MoveFocused swaps the focused window with its neighbour.
func (m *Manager) MoveFocused(dir Direction) {
	ws := m.current()
	n := ws.Len()
	if n < 2 || !m.hasFocus {
		return
	}
	i := ws.IndexOf(m.focused)
	if i < 0 {
		return
	}
	ws.Swap(i, neighbour(i, n, dir))
	m.relayout()
}

// PromoteFocusedToMaster moves the focused window to position 0. The master
// itself trades places with the top of the stack.
func (m *Manager) PromoteFocusedToMaster() {
	ws := m.current()
	if ws.Len() < 2 || !m.hasFocus {
		return
	}
	i := ws.IndexOf(m.focused)
	switch {
	case i < 0:
		return
	case i == 0:
		ws.Swap(0, 1)
	default:
		ws.Swap(i, 0)
	}
	m.relayout()
}

// CycleLayout advances the active workspace to the next layout mode.
func (m *Manager) CycleLayout() {
	ws := m.current()
	ws.Layout = nextLayout(ws.Layout)
	m.logger.Info("layout changed", "workspace", m.active, "layout", ws.Layout)

	m.relayout()
	if m.hasFocus {
		m.raiseAndFocus(m.focused)
	}
}

// SetPendingSplit chooses the axis for future windows and rewrites the axis
// of the active workspace's last window, which is the next split point.
func (m *Manager) SetPendingSplit(axis config.SplitAxis) {
	if !axis.Valid() {
		return
	}
	m.pendingSplit = axis
	m.current().SetLastAxis(axis)
}

// ToggleBarMargin shows or hides the bar and its reserved area.
func (m *Manager) ToggleBarMargin() {
	m.barShown = !m.barShown
	m.syncBar()
	m.relayout()
}

// KillFocused asks the focused window's client to exit.
func (m *Manager) KillFocused() {
	if !m.hasFocus {
		return
	}
	m.kill(m.focused)
}

// KillAll asks every managed client to exit.
func (m *Manager) KillAll() {
	for _, ws := range m.workspaces {
		for _, id := range ws.Windows() {
			m.kill(id)
		}
	}
}

// PointerEntered focuses id when the pointer crosses into it. Repeated
// crossings reported at the same root position are ignored; they come from
// windows moving under a still pointer.
func (m *Manager) PointerEntered(id platform.WindowID, x, y int) {
	if m.hasPointer && m.pointerX == x && m.pointerY == y {
		return
	}
	m.pointerX, m.pointerY, m.hasPointer = x, y, true

	if !m.current().Contains(id) {
		return
	}
	if m.hasFocus && m.focused == id {
		return
	}
	m.focus(id)
}

// ResizeViewport adopts a new screen size and retiles.
func (m *Manager) ResizeViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if width == m.width && height == m.height {
		return
	}
	m.width, m.height = width, height
	m.logger.Info("viewport resized", "width", width, "height", height)
	m.relayout()
}

func (m *Manager) ActiveIndex() int {
	return m.active
}

// Focused returns the focused window, if any.
func (m *Manager) Focused() (platform.WindowID, bool) {
	return m.focused, m.hasFocus
}

// WorkspaceWindows returns the windows of workspace index in tiling order.
func (m *Manager) WorkspaceWindows(index int) []platform.WindowID {
	if index < 0 || index >= len(m.workspaces) {
		return nil
	}
	return m.workspaces[index].Windows()
}

// LayoutOf returns the layout mode of workspace index.
func (m *Manager) LayoutOf(index int) config.LayoutMode {
	if index < 0 || index >= len(m.workspaces) {
		return ""
	}
	return m.workspaces[index].Layout
}

func (m *Manager) TopMargin() int {
	if !m.barShown {
		return 0
	}
	return m.barHeight
}

func (m *Manager) PendingSplit() config.SplitAxis {
	return m.pendingSplit
}

// ManagedCount returns the number of windows across all workspaces.
func (m *Manager) ManagedCount() int {
	total := 0
	for _, ws := range m.workspaces {
		total += ws.Len()
	}
	return total
}

// Viewport returns the geometry the active workspace is tiled into.
func (m *Manager) Viewport() Viewport {
	return Viewport{
		Width:       m.width,
		Height:      m.height,
		TopMargin:   m.TopMargin(),
		MasterRatio: m.masterRatio,
	}
}

func (m *Manager) current() *Workspace {
	return m.workspaces[m.active]
}

func (m *Manager) workspaceOf(id platform.WindowID) int {
	for i, ws := range m.workspaces {
		if ws.Contains(id) {
			return i
		}
	}
	return -1
}

// relayout configures every window of the active workspace. A rejected
// window does not stop the rest of the pass.
func (m *Manager) relayout() {
	ws := m.current()
	if !ws.Layout.Valid() {
		m.logger.Warn("unknown layout mode, using vertical stack", "workspace", m.active, "layout", ws.Layout)
	}
	for _, p := range Compute(ws.Layout, ws.Slots(), m.Viewport()) {
		if err := m.backend.Configure(p.Window, p.Rect.platform()); err != nil {
			m.logger.Warn("failed to configure window",
				"window", p.Window, "x", p.Rect.X, "y", p.Rect.Y,
				"width", p.Rect.Width, "height", p.Rect.Height, "error", err)
		}
	}
}

func (m *Manager) focus(id platform.WindowID) {
	m.focused, m.hasFocus = id, true
	m.raiseAndFocus(id)
	m.publishActive()
}

// focusLast focuses the last window of the active workspace, or returns
// input focus to the root when it is empty.
func (m *Manager) focusLast() {
	if id, ok := m.current().Last(); ok {
		m.focus(id)
		return
	}
	m.hasFocus = false
	m.focused = 0
	if err := m.backend.ReleaseFocus(); err != nil {
		m.logger.Warn("failed to release focus", "error", err)
	}
	m.publishActive()
}

func (m *Manager) raiseAndFocus(id platform.WindowID) {
	if err := m.backend.RaiseAndFocus(id); err != nil {
		m.logger.Warn("failed to focus window", "window", id, "error", err)
	}
}

func (m *Manager) mapWindow(id platform.WindowID) {
	if err := m.backend.Map(id); err != nil {
		m.logger.Warn("failed to map window", "window", id, "error", err)
	}
}

func (m *Manager) unmapWindow(id platform.WindowID) {
	if err := m.backend.Unmap(id); err != nil {
		m.logger.Warn("failed to unmap window", "window", id, "error", err)
	}
}

func (m *Manager) kill(id platform.WindowID) {
	if err := m.backend.Kill(id); err != nil {
		m.logger.Warn("failed to kill window", "window", id, "error", err)
	}
}

func (m *Manager) syncBar() {
	var err error
	if m.barShown {
		err = m.backend.ShowBar()
	} else {
		err = m.backend.HideBar()
	}
	if err != nil {
		m.logger.Warn("failed to update bar visibility", "visible", m.barShown, "error", err)
	}
}

func (m *Manager) publishDesktop() {
	if m.hinter == nil {
		return
	}
	if err := m.hinter.SetCurrentDesktop(m.active); err != nil {
		m.logger.Debug("failed to publish current desktop", "error", err)
	}
}

func (m *Manager) publishActive() {
	if m.hinter == nil {
		return
	}
	var id platform.WindowID
	if m.hasFocus {
		id = m.focused
	}
	if err := m.hinter.SetActiveWindow(id); err != nil {
		m.logger.Debug("failed to publish active window", "error", err)
	}
}

func neighbour(i, n int, dir Direction) int {
	if dir == Prev {
		return (i - 1 + n) % n
	}
	return (i + 1) % n
}

func nextLayout(current config.LayoutMode) config.LayoutMode {
	for i, mode := range config.LayoutModes {
		if mode == current {
			return config.LayoutModes[(i+1)%len(config.LayoutModes)]
		}
	}
	return config.LayoutModes[0]
}
