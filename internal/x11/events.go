package x11

import (
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// EventSink receives the X events the window manager cares about, already
// filtered and reduced to plain values. Callbacks run on the X event
// goroutine and must not block.
type EventSink interface {
	MapRequested(windowID uint32)
	Destroyed(windowID uint32)
	PointerEntered(windowID uint32, rootX, rootY int)
	BarClicked(x int)
	RootResized(width, height int)
}

// Bridge connects xevent callbacks on the root, the bar and every managed
// client to an EventSink.
type Bridge struct {
	conn   *Connection
	bar    *BarWindow
	sink   EventSink
	logger *slog.Logger
}

func NewBridge(conn *Connection, bar *BarWindow, sink EventSink, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{conn: conn, bar: bar, sink: sink, logger: logger}
}

// Connect attaches the root and bar callbacks. It must be called before
// EventLoop.
func (b *Bridge) Connect() {
	xu := b.conn.XUtil
	root := b.conn.Root

	xevent.MapRequestFun(func(xu *xgbutil.XUtil, ev xevent.MapRequestEvent) {
		b.handleMapRequest(ev.Window)
	}).Connect(xu, root)

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		xevent.Detach(xu, ev.Window)
		b.sink.Destroyed(uint32(ev.Window))
	}).Connect(xu, root)

	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		// Substructure notifications for children arrive here too.
		if ev.Window != root {
			return
		}
		if b.bar != nil {
			b.bar.Resize(int(ev.Width))
		}
		b.sink.RootResized(int(ev.Width), int(ev.Height))
	}).Connect(xu, root)

	if b.bar == nil {
		return
	}

	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		b.sink.BarClicked(int(ev.EventX))
	}).Connect(xu, b.bar.Window)

	xevent.ExposeFun(func(xu *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count == 0 {
			b.bar.Redraw()
		}
	}).Connect(xu, b.bar.Window)
}

func (b *Bridge) handleMapRequest(win xproto.Window) {
	if b.conn.IsOverrideRedirect(win) {
		return
	}
	if b.conn.IsDock(win) {
		// Docks draw themselves; map them without tiling.
		if err := b.conn.MapWindow(win); err != nil {
			b.logger.Warn("failed to map dock", "window", win, "error", err)
		}
		return
	}

	if err := b.conn.SelectClientEvents(win); err != nil {
		b.logger.Warn("failed to select client events", "window", win, "error", err)
	} else {
		b.connectClient(win)
	}
	b.sink.MapRequested(uint32(win))
}

func (b *Bridge) connectClient(win xproto.Window) {
	// A reappearing client is already connected.
	xevent.Detach(b.conn.XUtil, win)

	xevent.EnterNotifyFun(func(xu *xgbutil.XUtil, ev xevent.EnterNotifyEvent) {
		if ev.Mode != xproto.NotifyModeNormal || ev.Detail == xproto.NotifyDetailInferior {
			return
		}
		b.sink.PointerEntered(uint32(ev.Event), int(ev.RootX), int(ev.RootY))
	}).Connect(b.conn.XUtil, win)
}
