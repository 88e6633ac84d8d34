package tiling

import (
	"math"

	"github.com/1broseidon/tilewm/internal/config"
	"github.com/1broseidon/tilewm/internal/platform"
)

// Rect represents a window position and size
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Area returns the number of pixels covered by r.
func (r Rect) Area() int {
	return r.Width * r.Height
}

func (r Rect) platform() platform.Rect {
	return platform.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// Viewport is the screen geometry a layout tiles into. The area above
// TopMargin is reserved for the bar.
type Viewport struct {
	Width       int
	Height      int
	TopMargin   int
	MasterRatio float64 // 0 means config.DefaultMasterRatio
}

// Usable returns the tiled area below the top margin.
func (v Viewport) Usable() Rect {
	height := v.Height - v.TopMargin
	if height < 0 {
		height = 0
	}
	width := v.Width
	if width < 0 {
		width = 0
	}
	return Rect{X: 0, Y: v.TopMargin, Width: width, Height: height}
}

func (v Viewport) masterRatio() float64 {
	if v.MasterRatio <= 0 || v.MasterRatio >= 1 {
		return config.DefaultMasterRatio
	}
	return v.MasterRatio
}

// Placement is the target rectangle for one window.
type Placement struct {
	Window platform.WindowID
	Rect   Rect
}

// Compute places every slot according to mode. The result has one entry per
// slot, in slot order, and the rectangles tile the usable area exactly
// (except monocle, where they all coincide). Modes that fail
// LayoutMode.Valid are laid out as a vertical stack; callers are expected to
// check validity first.
func Compute(mode config.LayoutMode, slots []Slot, vp Viewport) []Placement {
	if len(slots) == 0 {
		return nil
	}

	switch mode {
	case config.LayoutModeVerticalStack:
		return VerticalStack(slots, vp)
	case config.LayoutModeMasterStack:
		return MasterStack(slots, vp)
	case config.LayoutModeMonocle:
		return Monocle(slots, vp)
	case config.LayoutModeRecursiveSplit:
		return RecursiveSplit(slots, vp)
	}
	return VerticalStack(slots, vp)
}

// VerticalStack gives every window the full width and an equal band of the
// height. The last band absorbs the remainder.
func VerticalStack(slots []Slot, vp Viewport) []Placement {
	return stackBands(slots, vp.Usable())
}

// MasterStack puts the first window on the left and stacks the rest on the
// right. A single window is laid out as a vertical stack.
func MasterStack(slots []Slot, vp Viewport) []Placement {
	if len(slots) < 2 {
		return VerticalStack(slots, vp)
	}

	area := vp.Usable()
	masterWidth := int(math.Round(float64(area.Width) * vp.masterRatio()))
	if masterWidth > area.Width {
		masterWidth = area.Width
	}

	out := make([]Placement, 0, len(slots))
	out = append(out, Placement{
		Window: slots[0].Window,
		Rect:   Rect{X: area.X, Y: area.Y, Width: masterWidth, Height: area.Height},
	})

	stack := Rect{
		X:      area.X + masterWidth,
		Y:      area.Y,
		Width:  area.Width - masterWidth,
		Height: area.Height,
	}
	return append(out, stackBands(slots[1:], stack)...)
}

// Monocle gives every window the whole usable area.
func Monocle(slots []Slot, vp Viewport) []Placement {
	if len(slots) == 0 {
		return nil
	}
	area := vp.Usable()
	out := make([]Placement, len(slots))
	for i, s := range slots {
		out[i] = Placement{Window: s.Window, Rect: area}
	}
	return out
}

// RecursiveSplit ("dwindle") halves the remaining area for every window but
// the last, along that window's split axis. Horizontal keeps the left half,
// vertical keeps the top half. Odd pixels stay in the remaining area, so the
// last window absorbs them.
func RecursiveSplit(slots []Slot, vp Viewport) []Placement {
	if len(slots) == 0 {
		return nil
	}

	remaining := vp.Usable()
	out := make([]Placement, len(slots))
	last := len(slots) - 1

	for i, s := range slots[:last] {
		var cell Rect
		switch s.axis() {
		case config.SplitHorizontal:
			half := remaining.Width / 2
			cell = Rect{X: remaining.X, Y: remaining.Y, Width: half, Height: remaining.Height}
			remaining.X += half
			remaining.Width -= half
		default:
			half := remaining.Height / 2
			cell = Rect{X: remaining.X, Y: remaining.Y, Width: remaining.Width, Height: half}
			remaining.Y += half
			remaining.Height -= half
		}
		out[i] = Placement{Window: s.Window, Rect: cell}
	}
	out[last] = Placement{Window: slots[last].Window, Rect: remaining}

	return out
}

func stackBands(slots []Slot, area Rect) []Placement {
	n := len(slots)
	if n == 0 {
		return nil
	}

	band := area.Height / n
	out := make([]Placement, n)
	y := area.Y
	for i, s := range slots {
		height := band
		if i == n-1 {
			height = area.Y + area.Height - y
		}
		out[i] = Placement{
			Window: s.Window,
			Rect:   Rect{X: area.X, Y: y, Width: area.Width, Height: height},
		}
		y += height
	}
	return out
}
