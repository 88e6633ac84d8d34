//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/tilewm/internal/x11"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/icccm"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
	bar  *x11.BarWindow
}

var (
	_ Backend       = (*LinuxBackend)(nil)
	_ DesktopHinter = (*LinuxBackend)(nil)
)

// NewLinuxBackend creates a Linux platform backend from an existing X11
// connection. bar may be nil when no bar window could be created.
func NewLinuxBackend(conn *x11.Connection, bar *x11.BarWindow) *LinuxBackend {
	return &LinuxBackend{conn: conn, bar: bar}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// ActiveDisplay returns the first active RandR output, or the root window
// when RandR is unavailable. Only one display is tiled.
func (b *LinuxBackend) ActiveDisplay() (Display, error) {
	conn, err := b.connection()
	if err != nil {
		return Display{}, err
	}

	if d, ok := b.primaryOutput(); ok {
		return d, nil
	}

	width, height, err := conn.RootSize()
	if err != nil {
		return Display{}, err
	}
	return Display{
		ID:     0,
		Name:   "root",
		Bounds: Rect{Width: width, Height: height},
	}, nil
}

func (b *LinuxBackend) primaryOutput() (Display, bool) {
	xc := b.conn.XUtil.Conn()
	if err := randr.Init(xc); err != nil {
		return Display{}, false
	}
	resources, err := randr.GetScreenResources(xc, b.conn.Root).Reply()
	if err != nil {
		return Display{}, false
	}

	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(xc, crtc, resources.ConfigTimestamp).Reply()
		if err != nil || info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}
		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(xc, info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}
		return Display{
			ID:   i,
			Name: name,
			Bounds: Rect{
				X:      int(info.X),
				Y:      int(info.Y),
				Width:  int(info.Width),
				Height: int(info.Height),
			},
		}, true
	}
	return Display{}, false
}

func (b *LinuxBackend) Map(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MapWindow(xproto.Window(windowID))
}

func (b *LinuxBackend) Unmap(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.UnmapWindow(xproto.Window(windowID))
}

// Configure moves and resizes a window to the specified bounds.
func (b *LinuxBackend) Configure(windowID WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	return conn.MoveResizeWindow(
		xproto.Window(windowID),
		bounds.X,
		bounds.Y,
		bounds.Width,
		bounds.Height,
	)
}

func (b *LinuxBackend) RaiseAndFocus(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	if err := conn.FocusWindow(xproto.Window(windowID)); err != nil {
		return err
	}
	// Keep the bar above a raised client.
	if b.bar != nil {
		b.bar.Raise()
	}
	return nil
}

func (b *LinuxBackend) ReleaseFocus() error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.FocusRoot()
}

// Kill requests graceful window close via WM_DELETE_WINDOW, falling back
// to disconnecting the client.
func (b *LinuxBackend) Kill(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.CloseWindow(xproto.Window(windowID))
}

func (b *LinuxBackend) ShowBar() error {
	if b.bar == nil {
		return nil
	}
	return b.bar.Show()
}

func (b *LinuxBackend) HideBar() error {
	if b.bar == nil {
		return nil
	}
	return b.bar.Hide()
}

// SetStatus draws text in the bar and mirrors it to the root window's
// WM_NAME, where external status readers look for it.
func (b *LinuxBackend) SetStatus(text string) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	if b.bar != nil {
		b.bar.Update(func(s *x11.BarState) { s.Status = text })
	}
	return icccm.WmNameSet(conn.XUtil, conn.Root, text)
}

func (b *LinuxBackend) SetDesktopCount(count int) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("%d", i+1)
	}
	return conn.SetDesktops(names)
}

func (b *LinuxBackend) SetCurrentDesktop(index int) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	if b.bar != nil {
		b.bar.Update(func(s *x11.BarState) { s.Active = index })
	}
	return conn.SetCurrentDesktop(index)
}

// SetActiveWindow publishes the focused window and shows its title in the
// bar. A zero windowID clears the title.
func (b *LinuxBackend) SetActiveWindow(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	if b.bar != nil {
		title := ""
		if windowID != 0 {
			title = conn.WindowTitle(xproto.Window(windowID))
		}
		b.bar.Update(func(s *x11.BarState) { s.Title = title })
	}
	return conn.SetActiveWindow(xproto.Window(windowID))
}

// SetLayout shows the active workspace's layout mode in the bar.
func (b *LinuxBackend) SetLayout(name string) {
	if b.bar == nil {
		return
	}
	b.bar.Update(func(s *x11.BarState) { s.Layout = name })
}

// SetOccupied marks which workspaces hold windows in the bar.
func (b *LinuxBackend) SetOccupied(occupied []bool) {
	if b.bar == nil {
		return
	}
	b.bar.Update(func(s *x11.BarState) { s.Occupied = occupied })
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 connection not initialized")
	}
	return b.conn, nil
}
