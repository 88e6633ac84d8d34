package daemon

import (
	"github.com/1broseidon/tilewm/internal/hotkeys"
	"github.com/1broseidon/tilewm/internal/platform"
)

// Event is anything the loop processes. Producers (the X reader, key
// grabs, the ticker) only construct events; the loop applies them.
type Event interface {
	isEvent()
}

// WindowAppeared reports a client asking to be mapped.
type WindowAppeared struct {
	Window platform.WindowID
}

// WindowDestroyed reports a client window that no longer exists.
type WindowDestroyed struct {
	Window platform.WindowID
}

// PointerEntered reports the pointer crossing into a client at root
// coordinates X, Y.
type PointerEntered struct {
	Window platform.WindowID
	X, Y   int
}

// BarClicked reports a button press at bar coordinate X.
type BarClicked struct {
	X int
}

// ViewportChanged reports a new root window size.
type ViewportChanged struct {
	Width, Height int
}

// ActionTriggered carries a bound key's action.
type ActionTriggered struct {
	Action hotkeys.Action
}

// Tick carries the latest status line. Changed is false when the text is
// the same as on the previous tick.
type Tick struct {
	Status  string
	Changed bool
}

func (WindowAppeared) isEvent()  {}
func (WindowDestroyed) isEvent() {}
func (PointerEntered) isEvent()  {}
func (BarClicked) isEvent()      {}
func (ViewportChanged) isEvent() {}
func (ActionTriggered) isEvent() {}
func (Tick) isEvent()            {}
