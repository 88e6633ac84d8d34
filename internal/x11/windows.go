package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// MapWindow makes a client visible.
func (c *Connection) MapWindow(windowID xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check()
}

// UnmapWindow hides a client without destroying it.
func (c *Connection) UnmapWindow(windowID xproto.Window) error {
	return xproto.UnmapWindowChecked(c.XUtil.Conn(), windowID).Check()
}

// MoveResizeWindow moves and resizes a window to the specified geometry.
// X rejects zero sizes, so width and height are clamped to 1.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	// Tiled clients ignore their own maximized state.
	c.unmaximizeWindow(windowID)

	return xproto.ConfigureWindowChecked(
		c.XUtil.Conn(),
		windowID,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowBorderWidth,
		[]uint32{
			uint32(int32(x)),
			uint32(int32(y)),
			uint32(width),
			uint32(height),
			0,
		},
	).Check()
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return
	}

	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			remaining := make([]string, 0, len(states))
			for _, s := range states {
				if s != "_NET_WM_STATE_MAXIMIZED_HORZ" && s != "_NET_WM_STATE_MAXIMIZED_VERT" {
					remaining = append(remaining, s)
				}
			}
			ewmh.WmStateSet(c.XUtil, windowID, remaining)
			return
		}
	}
}

// FocusWindow raises a window and gives it input focus.
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	conn := c.XUtil.Conn()

	err := xproto.ConfigureWindowChecked(
		conn,
		windowID,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove},
	).Check()
	if err != nil {
		return fmt.Errorf("raise: %w", err)
	}

	err = xproto.SetInputFocusChecked(
		conn,
		xproto.InputFocusPointerRoot,
		windowID,
		xproto.TimeCurrentTime,
	).Check()
	if err != nil {
		return fmt.Errorf("set input focus: %w", err)
	}
	return nil
}

// FocusRoot returns input focus to the root window.
func (c *Connection) FocusRoot() error {
	return xproto.SetInputFocusChecked(
		c.XUtil.Conn(),
		xproto.InputFocusPointerRoot,
		xproto.InputFocusPointerRoot,
		xproto.TimeCurrentTime,
	).Check()
}

// SelectClientEvents subscribes to pointer crossings on a managed window.
func (c *Connection) SelectClientEvents(windowID xproto.Window) error {
	return xwindow.New(c.XUtil, windowID).Listen(
		xproto.EventMaskEnterWindow,
		xproto.EventMaskStructureNotify,
	)
}

// CloseWindow asks the client to close via WM_DELETE_WINDOW when it
// supports that protocol, and disconnects the client otherwise.
func (c *Connection) CloseWindow(windowID xproto.Window) error {
	if c.supportsDelete(windowID) {
		return c.sendDelete(windowID)
	}
	return xproto.KillClientChecked(c.XUtil.Conn(), uint32(windowID)).Check()
}

func (c *Connection) supportsDelete(windowID xproto.Window) bool {
	protocols, err := icccm.WmProtocolsGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, p := range protocols {
		if p == "WM_DELETE_WINDOW" {
			return true
		}
	}
	return false
}

func (c *Connection) sendDelete(windowID xproto.Window) error {
	conn := c.XUtil.Conn()

	deleteReply, err := xproto.InternAtom(conn, false, uint16(len("WM_DELETE_WINDOW")), "WM_DELETE_WINDOW").Reply()
	if err != nil {
		return err
	}
	protocolsReply, err := xproto.InternAtom(conn, false, uint16(len("WM_PROTOCOLS")), "WM_PROTOCOLS").Reply()
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   protocolsReply.Atom,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(deleteReply.Atom),
			uint32(xproto.TimeCurrentTime),
			0, 0, 0,
		}),
	}

	return xproto.SendEventChecked(
		conn,
		false,
		windowID,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// WindowTitle returns _NET_WM_NAME, falling back to WM_NAME. It is empty when
// the client sets neither.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	if name, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil && name != "" {
		return name
	}
	if name, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return name
	}
	return ""
}

// IsOverrideRedirect reports whether a window opted out of management.
func (c *Connection) IsOverrideRedirect(windowID xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return false
	}
	return attrs.OverrideRedirect
}

// IsDock reports whether a window declares itself a dock or desktop.
func (c *Connection) IsDock(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" || t == "_NET_WM_WINDOW_TYPE_DESKTOP" {
			return true
		}
	}
	return false
}
