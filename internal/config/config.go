package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LayoutMode selects the tiling algorithm governing a workspace.
type LayoutMode string

const (
	LayoutModeVerticalStack  LayoutMode = "vertical-stack" // Full-width bands stacked top to bottom.
	LayoutModeMasterStack    LayoutMode = "master-stack"   // Master pane left, stack bands right.
	LayoutModeMonocle        LayoutMode = "monocle"        // Every window gets the whole usable area.
	LayoutModeRecursiveSplit LayoutMode = "dwindle"        // Binary split along a per-window axis.
)

// LayoutModes lists every layout mode in cycle order.
var LayoutModes = []LayoutMode{
	LayoutModeMasterStack,
	LayoutModeVerticalStack,
	LayoutModeRecursiveSplit,
	LayoutModeMonocle,
}

// Valid reports whether m names a known layout mode.
func (m LayoutMode) Valid() bool {
	for _, known := range LayoutModes {
		if m == known {
			return true
		}
	}
	return false
}

// SplitAxis describes how the next recursive split divides the remaining area.
type SplitAxis string

const (
	SplitHorizontal SplitAxis = "horizontal" // Carve the left half.
	SplitVertical   SplitAxis = "vertical"   // Carve the top half.
)

// Valid reports whether a names a known split axis.
func (a SplitAxis) Valid() bool {
	return a == SplitHorizontal || a == SplitVertical
}

// DefaultMasterRatio is the share of the screen width given to the master window.
const DefaultMasterRatio = 0.55

// WorkspaceCount is the fixed number of workspace slots.
const WorkspaceCount = 9

// LayoutConfig holds the tiling defaults.
type LayoutConfig struct {
	Default      LayoutMode `yaml:"default"`
	MasterRatio  float64    `yaml:"master_ratio"`
	DefaultSplit SplitAxis  `yaml:"default_split"`
}

// BarModule is a status command refreshed at most once per interval.
type BarModule struct {
	Command  string `yaml:"command"`
	Interval int    `yaml:"interval"` // seconds
}

// BarConfig configures the reserved status bar area.
type BarConfig struct {
	Height         int         `yaml:"height"`
	Visible        bool        `yaml:"visible"`
	CellWidth      int         `yaml:"cell_width"`
	WorkspaceIcons []string    `yaml:"workspace_icons"`
	Modules        []BarModule `yaml:"modules"`
}

// Config holds the application configuration.
type Config struct {
	LogLevel            string            `yaml:"log_level"`
	Modifier            string            `yaml:"modifier"`
	FocusFollowsPointer bool              `yaml:"focus_follows_pointer"`
	StatusInterval      time.Duration     `yaml:"status_interval"`
	Layout              LayoutConfig      `yaml:"layout"`
	Bar                 BarConfig         `yaml:"bar"`
	Bindings            map[string]string `yaml:"bindings"`
}

// DefaultBindings returns the stock key bindings. "Mod" is replaced with the
// configured modifier when bindings are registered.
func DefaultBindings() map[string]string {
	bindings := map[string]string{
		"Mod-Return":          "Spawn xterm",
		"Mod-p":               "Spawn dmenu_run",
		"Mod-Shift-q":         "KillFocused",
		"Mod-Control-q":       "Quit",
		"Mod-j":               "FocusNext",
		"Mod-k":               "FocusPrev",
		"Mod-Shift-j":         "MoveWindowNext",
		"Mod-Shift-k":         "MoveWindowPrev",
		"Mod-space":           "CycleLayout",
		"Mod-b":               "ToggleBar",
		"Mod-minus":           "SplitHorizontal",
		"Mod-Shift-backslash": "SplitVertical",
		"Mod-Shift-Return":    "PromoteMaster",
	}
	for i := 1; i <= WorkspaceCount; i++ {
		bindings[fmt.Sprintf("Mod-%d", i)] = fmt.Sprintf("Workspace %d", i)
		bindings[fmt.Sprintf("Mod-Shift-%d", i)] = fmt.Sprintf("MoveToWorkspace %d", i)
	}
	return bindings
}

func DefaultConfig() *Config {
	icons := make([]string, WorkspaceCount)
	for i := range icons {
		icons[i] = fmt.Sprintf("%d", i+1)
	}

	return &Config{
		LogLevel:            "info",
		Modifier:            "mod4",
		FocusFollowsPointer: true,
		StatusInterval:      time.Second,
		Layout: LayoutConfig{
			Default:      LayoutModeMasterStack,
			MasterRatio:  DefaultMasterRatio,
			DefaultSplit: SplitVertical,
		},
		Bar: BarConfig{
			Height:         20,
			Visible:        true,
			CellWidth:      30,
			WorkspaceIcons: icons,
			Modules:        []BarModule{},
		},
		Bindings: DefaultBindings(),
	}
}

// TopMargin returns the reserved area above the tiled windows at startup.
func (c *Config) TopMargin() int {
	if !c.Bar.Visible {
		return 0
	}
	return c.Bar.Height
}

// SortedBindings returns binding key sequences in a stable order.
func (c *Config) SortedBindings() []string {
	keys := make([]string, 0, len(c.Bindings))
	for key := range c.Bindings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	switch strings.ToLower(c.Modifier) {
	case "mod1", "mod2", "mod3", "mod4", "mod5":
	default:
		return &ValidationError{Path: "modifier", Err: fmt.Errorf("modifier must be one of: mod1, mod2, mod3, mod4, mod5")}
	}
	if c.StatusInterval <= 0 {
		return &ValidationError{Path: "status_interval", Err: fmt.Errorf("status_interval must be > 0")}
	}
	if !c.Layout.Default.Valid() {
		return &ValidationError{Path: "layout.default", Err: fmt.Errorf("unknown layout mode %q", c.Layout.Default)}
	}
	if c.Layout.MasterRatio <= 0 || c.Layout.MasterRatio >= 1 {
		return &ValidationError{Path: "layout.master_ratio", Err: fmt.Errorf("master_ratio must be between 0 and 1 (exclusive)")}
	}
	if !c.Layout.DefaultSplit.Valid() {
		return &ValidationError{Path: "layout.default_split", Err: fmt.Errorf("default_split must be one of: horizontal, vertical")}
	}
	if c.Bar.Height < 0 {
		return &ValidationError{Path: "bar.height", Err: fmt.Errorf("height must be >= 0")}
	}
	if c.Bar.CellWidth < 1 {
		return &ValidationError{Path: "bar.cell_width", Err: fmt.Errorf("cell_width must be >= 1")}
	}
	if len(c.Bar.WorkspaceIcons) != WorkspaceCount {
		return &ValidationError{Path: "bar.workspace_icons", Err: fmt.Errorf("workspace_icons must have exactly %d entries", WorkspaceCount)}
	}
	for i, mod := range c.Bar.Modules {
		if strings.TrimSpace(mod.Command) == "" {
			return &ValidationError{Path: fmt.Sprintf("bar.modules.%d.command", i), Err: fmt.Errorf("command must not be empty")}
		}
		if mod.Interval < 1 {
			return &ValidationError{Path: fmt.Sprintf("bar.modules.%d.interval", i), Err: fmt.Errorf("interval must be >= 1")}
		}
	}
	if c.Bindings == nil {
		return &ValidationError{Path: "bindings", Err: fmt.Errorf("bindings must not be null")}
	}
	for key, action := range c.Bindings {
		if strings.TrimSpace(key) == "" {
			return &ValidationError{Path: "bindings", Err: fmt.Errorf("bindings contains an empty key sequence")}
		}
		if strings.TrimSpace(action) == "" {
			return &ValidationError{Path: "bindings." + key, Err: fmt.Errorf("action must not be empty")}
		}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}

	return nil
}

func (c *Config) validationWarnings() []string {
	var out []string
	if c.Bar.Visible && c.Bar.Height == 0 {
		out = append(out, "bar.visible is true but bar.height is 0; no space is reserved")
	}
	if len(c.Bindings) == 0 {
		out = append(out, "bindings is empty; the window manager cannot be controlled from the keyboard")
	}
	return out
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
