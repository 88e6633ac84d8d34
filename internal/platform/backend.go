package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes the screen the window manager tiles into.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
}

// Backend executes the window manager's outbound commands. Every call is
// best-effort: the window may already be gone.
type Backend interface {
	ActiveDisplay() (Display, error)
	Map(windowID WindowID) error
	Unmap(windowID WindowID) error
	Configure(windowID WindowID, bounds Rect) error
	RaiseAndFocus(windowID WindowID) error
	ReleaseFocus() error
	Kill(windowID WindowID) error
	ShowBar() error
	HideBar() error
	SetStatus(text string) error
}

// DesktopHinter is implemented by backends that can publish desktop state
// to pagers and panels.
type DesktopHinter interface {
	SetDesktopCount(count int) error
	SetCurrentDesktop(index int) error
	SetActiveWindow(windowID WindowID) error
}
