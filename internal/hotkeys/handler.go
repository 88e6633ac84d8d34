package hotkeys

import (
	"log/slog"
	"sync"

	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(backend platform.Backend, logger *slog.Logger) *Handler {
	var xu *xgbutil.XUtil
	var root xproto.Window
	if accessor, ok := backend.(x11Accessor); ok {
		xu = accessor.XUtil()
		root = accessor.RootWindow()
	}
	if logger == nil {
		logger = slog.Default()
	}

	if xu != nil {
		ignoreModsOnce.Do(func() {
			configureIgnoreMods(xu)
		})
	}

	return &Handler{
		xu:     xu,
		root:   root,
		logger: logger,
	}
}

// Binding is a validated key sequence and the action it triggers.
type Binding struct {
	Sequence string // keybind syntax, e.g. "mod4-shift-j"
	Action   Action
}

// ResolveBindings expands and parses configured bindings. Invalid entries
// are returned separately so callers can report them without failing.
func ResolveBindings(bindings map[string]string, modifier string, order []string) ([]Binding, map[string]error) {
	var out []Binding
	invalid := make(map[string]error)
	for _, key := range order {
		seq, err := ExpandSequence(key, modifier)
		if err != nil {
			invalid[key] = err
			continue
		}
		action, err := ParseAction(bindings[key])
		if err != nil {
			invalid[key] = err
			continue
		}
		out = append(out, Binding{Sequence: seq, Action: action})
	}
	return out, invalid
}

// RegisterBindings grabs every valid binding on the root window and calls
// post with its action when the key is pressed. Bindings that fail to parse
// or grab are logged and skipped. It returns the number registered.
func (h *Handler) RegisterBindings(bindings map[string]string, modifier string, order []string, post func(Action)) int {
	resolved, invalid := ResolveBindings(bindings, modifier, order)
	for key, err := range invalid {
		h.logger.Warn("skipping invalid binding", "binding", key, "error", err)
	}

	registered := 0
	for _, b := range resolved {
		action := b.Action
		if err := h.RegisterFunc(b.Sequence, func() { post(action) }); err != nil {
			h.logger.Warn("failed to grab key", "sequence", b.Sequence, "action", action, "error", err)
			continue
		}
		h.logger.Debug("bound key", "sequence", b.Sequence, "action", action)
		registered++
	}
	return registered
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
