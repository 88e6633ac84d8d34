package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
)

// Bar colors
const (
	ColorBarBg       = 0x1f2933
	ColorBarText     = 0xf5f7fa
	ColorBarActiveBg = 0x3498db
	ColorBarOccupied = 0x95a5a6
)

const (
	barPaddingX  = 8
	barCharWidth = 6
)

// BarState is everything the bar draws.
type BarState struct {
	Active   int
	Occupied []bool
	Layout   string // active workspace's layout mode
	Title    string // focused window's name
	Status   string
}

// BarWindow is an override-redirect strip along the top of the screen that
// shows one cell per workspace and the status text on the right. Expose
// events redraw it from the X goroutine, so its state is guarded.
type BarWindow struct {
	mu        sync.Mutex
	conn      *Connection
	Window    xproto.Window
	gc        xproto.Gcontext
	font      xproto.Font
	width     int
	height    int
	cellWidth int
	icons     []string
	mapped    bool
	state     BarState
}

// CreateBar allocates the bar window with its font and graphics context.
// The window starts unmapped.
func (c *Connection) CreateBar(width, height, cellWidth int, icons []string) (*BarWindow, error) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	conn := c.XUtil.Conn()
	screen := c.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}

	// Value list order follows the bit positions of the mask (low to high).
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		c.Root,
		0, 0,
		uint16(width), uint16(height),
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{
			ColorBarBg,
			1,
			uint32(xproto.EventMaskExposure | xproto.EventMaskButtonPress),
		},
	).Check()
	if err != nil {
		return nil, fmt.Errorf("failed to create bar window: %w", err)
	}

	font, err := xproto.NewFontId(conn)
	if err != nil {
		xproto.DestroyWindow(conn, wid)
		return nil, err
	}

	fontNames := []string{"fixed", "6x13", "8x13", "9x15"}
	opened := false
	for _, fontName := range fontNames {
		err = xproto.OpenFontChecked(conn, font, uint16(len(fontName)), fontName).Check()
		if err == nil {
			opened = true
			break
		}
	}
	if !opened {
		xproto.DestroyWindow(conn, wid)
		return nil, fmt.Errorf("no usable core font for the bar")
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.CloseFont(conn, font)
		xproto.DestroyWindow(conn, wid)
		return nil, err
	}

	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(wid),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{
			ColorBarText,
			ColorBarBg,
			uint32(font),
			0, // graphics_exposures=false
		},
	).Check()
	if err != nil {
		xproto.CloseFont(conn, font)
		xproto.DestroyWindow(conn, wid)
		return nil, fmt.Errorf("failed to create bar graphics context: %w", err)
	}

	return &BarWindow{
		conn:      c,
		Window:    wid,
		gc:        gc,
		font:      font,
		width:     width,
		height:    height,
		cellWidth: cellWidth,
		icons:     icons,
	}, nil
}

// Show maps the bar above every client.
func (b *BarWindow) Show() error {
	conn := b.conn.XUtil.Conn()
	if err := xproto.MapWindowChecked(conn, b.Window).Check(); err != nil {
		return err
	}
	b.Raise()

	b.mu.Lock()
	b.mapped = true
	b.redrawLocked()
	b.mu.Unlock()
	return nil
}

func (b *BarWindow) Hide() error {
	b.mu.Lock()
	b.mapped = false
	b.mu.Unlock()
	return xproto.UnmapWindowChecked(b.conn.XUtil.Conn(), b.Window).Check()
}

// Raise restacks the bar above every client.
func (b *BarWindow) Raise() {
	xproto.ConfigureWindow(b.conn.XUtil.Conn(), b.Window, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
}

// Resize follows a root window size change.
func (b *BarWindow) Resize(width int) {
	if width < 1 {
		return
	}
	xproto.ConfigureWindow(b.conn.XUtil.Conn(), b.Window, xproto.ConfigWindowWidth, []uint32{uint32(width)})

	b.mu.Lock()
	defer b.mu.Unlock()
	b.width = width
	b.redrawLocked()
}

// Update replaces the drawn state and repaints.
func (b *BarWindow) Update(fn func(*BarState)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.state)
	b.redrawLocked()
}

// Redraw repaints the bar from its current state.
func (b *BarWindow) Redraw() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.redrawLocked()
}

func (b *BarWindow) redrawLocked() {
	if !b.mapped {
		return
	}
	conn := b.conn.XUtil.Conn()
	xproto.ClearArea(conn, false, b.Window, 0, 0, 0, 0)

	baseline := int16(b.height/2 + 4)
	for i, icon := range b.icons {
		x := i * b.cellWidth
		bg := uint32(ColorBarBg)
		fg := uint32(ColorBarText)
		switch {
		case i == b.state.Active:
			bg = ColorBarActiveBg
		case i < len(b.state.Occupied) && b.state.Occupied[i]:
			fg = ColorBarOccupied
		}
		xproto.ChangeGC(conn, b.gc, xproto.GcForeground, []uint32{bg})
		xproto.PolyFillRectangle(conn, xproto.Drawable(b.Window), b.gc, []xproto.Rectangle{{
			X: int16(x), Y: 0, Width: uint16(b.cellWidth), Height: uint16(b.height),
		}})
		xproto.ChangeGC(conn, b.gc, xproto.GcForeground|xproto.GcBackground, []uint32{fg, bg})
		b.drawText(int16(x+barPaddingX), baseline, icon)
	}

	xproto.ChangeGC(conn, b.gc, xproto.GcForeground|xproto.GcBackground, []uint32{ColorBarText, ColorBarBg})

	left := len(b.icons)*b.cellWidth + barPaddingX
	if layout := b.state.Layout; layout != "" {
		label := "[" + layout + "]"
		b.drawText(int16(left), baseline, label)
		left += textWidth(label) + 2*barPaddingX
	}

	right := b.width - barPaddingX
	if status := clipText(b.state.Status); status != "" {
		x := right - textWidth(status)
		if x < left {
			x = left
		}
		b.drawText(int16(x), baseline, status)
		right = x - 2*barPaddingX
	}

	// The title is centred when it fits, and dropped when it would overlap
	// the layout label or the status text.
	if title := clipText(b.state.Title); title != "" {
		x := (b.width - textWidth(title)) / 2
		if x < left {
			x = left
		}
		if x+textWidth(title) <= right {
			b.drawText(int16(x), baseline, title)
		}
	}
}

func clipText(text string) string {
	if len(text) > 255 {
		return text[:255]
	}
	return text
}

func textWidth(text string) int {
	return len(text) * barCharWidth
}

func (b *BarWindow) drawText(x, y int16, text string) {
	if text == "" {
		return
	}
	if len(text) > 255 {
		text = text[:255]
	}
	xproto.ImageText8(
		b.conn.XUtil.Conn(),
		byte(len(text)),
		xproto.Drawable(b.Window),
		b.gc,
		x,
		y,
		text,
	)
}

// Destroy releases the bar's X resources.
func (b *BarWindow) Destroy() {
	conn := b.conn.XUtil.Conn()
	xproto.FreeGC(conn, b.gc)
	xproto.CloseFont(conn, b.font)
	xproto.DestroyWindow(conn, b.Window)
}
