package tiling

import (
	"github.com/1broseidon/tilewm/internal/config"
	"github.com/1broseidon/tilewm/internal/platform"
)

// Slot pairs a window with the axis its recursive split uses.
type Slot struct {
	Window platform.WindowID
	Axis   config.SplitAxis
}

func (s Slot) axis() config.SplitAxis {
	if s.Axis == "" {
		return config.SplitVertical
	}
	return s.Axis
}

// Workspace is an ordered set of windows sharing one layout mode. Order is
// tiling order: index 0 is the master.
type Workspace struct {
	Layout config.LayoutMode
	slots  []Slot
}

// NewWorkspace returns an empty workspace using layout.
func NewWorkspace(layout config.LayoutMode) *Workspace {
	return &Workspace{Layout: layout}
}

func (w *Workspace) Len() int {
	return len(w.slots)
}

// Slots returns a copy of the workspace's slots.
func (w *Workspace) Slots() []Slot {
	out := make([]Slot, len(w.slots))
	copy(out, w.slots)
	return out
}

// Windows returns the workspace's windows in tiling order.
func (w *Workspace) Windows() []platform.WindowID {
	out := make([]platform.WindowID, len(w.slots))
	for i, s := range w.slots {
		out[i] = s.Window
	}
	return out
}

// IndexOf returns the position of id, or -1.
func (w *Workspace) IndexOf(id platform.WindowID) int {
	for i, s := range w.slots {
		if s.Window == id {
			return i
		}
	}
	return -1
}

func (w *Workspace) Contains(id platform.WindowID) bool {
	return w.IndexOf(id) >= 0
}

// Append adds id at the end with the given split axis.
func (w *Workspace) Append(id platform.WindowID, axis config.SplitAxis) {
	w.AppendSlot(Slot{Window: id, Axis: axis})
}

func (w *Workspace) AppendSlot(s Slot) {
	w.slots = append(w.slots, s)
}

// Remove drops id and returns its slot.
func (w *Workspace) Remove(id platform.WindowID) (Slot, bool) {
	i := w.IndexOf(id)
	if i < 0 {
		return Slot{}, false
	}
	s := w.slots[i]
	w.slots = append(w.slots[:i], w.slots[i+1:]...)
	return s, true
}

// Swap exchanges the windows at positions i and j. Axes stay with their
// positions.
func (w *Workspace) Swap(i, j int) bool {
	if i < 0 || j < 0 || i >= len(w.slots) || j >= len(w.slots) {
		return false
	}
	w.slots[i].Window, w.slots[j].Window = w.slots[j].Window, w.slots[i].Window
	return true
}

// SetLastAxis overwrites the axis of the last slot, which governs the next
// split point.
func (w *Workspace) SetLastAxis(axis config.SplitAxis) bool {
	if len(w.slots) == 0 {
		return false
	}
	w.slots[len(w.slots)-1].Axis = axis
	return true
}

// Last returns the most recently appended window.
func (w *Workspace) Last() (platform.WindowID, bool) {
	if len(w.slots) == 0 {
		return 0, false
	}
	return w.slots[len(w.slots)-1].Window, true
}

// At returns the window at position i.
func (w *Workspace) At(i int) (platform.WindowID, bool) {
	if i < 0 || i >= len(w.slots) {
		return 0, false
	}
	return w.slots[i].Window, true
}
