package hotkeys

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/tilewm/internal/config"
)

// Kind identifies a bindable window manager command.
type Kind int

const (
	Spawn Kind = iota
	KillFocused
	Quit
	FocusNext
	FocusPrev
	MoveWindowNext
	MoveWindowPrev
	CycleLayout
	ToggleBar
	SplitHorizontal
	SplitVertical
	PromoteMaster
	Workspace
	MoveToWorkspace
)

var kindNames = map[Kind]string{
	Spawn:           "Spawn",
	KillFocused:     "KillFocused",
	Quit:            "Quit",
	FocusNext:       "FocusNext",
	FocusPrev:       "FocusPrev",
	MoveWindowNext:  "MoveWindowNext",
	MoveWindowPrev:  "MoveWindowPrev",
	CycleLayout:     "CycleLayout",
	ToggleBar:       "ToggleBar",
	SplitHorizontal: "SplitHorizontal",
	SplitVertical:   "SplitVertical",
	PromoteMaster:   "PromoteMaster",
	Workspace:       "Workspace",
	MoveToWorkspace: "MoveToWorkspace",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Action is a parsed binding target. Command is set for Spawn; Workspace is
// the 0-based index for Workspace and MoveToWorkspace.
type Action struct {
	Kind      Kind
	Command   string
	Workspace int
}

func (a Action) String() string {
	switch a.Kind {
	case Spawn:
		return "Spawn " + a.Command
	case Workspace, MoveToWorkspace:
		return fmt.Sprintf("%s %d", a.Kind, a.Workspace+1)
	default:
		return a.Kind.String()
	}
}

// ParseAction parses a binding's action string. Workspace numbers are
// 1-based in the string.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Action{}, fmt.Errorf("empty action")
	}

	name, arg, _ := strings.Cut(s, " ")
	arg = strings.TrimSpace(arg)

	var kind Kind
	found := false
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			kind, found = k, true
			break
		}
	}
	if !found {
		return Action{}, fmt.Errorf("unknown action %q", name)
	}

	switch kind {
	case Spawn:
		if arg == "" {
			return Action{}, fmt.Errorf("spawn requires a command")
		}
		return Action{Kind: Spawn, Command: arg}, nil
	case Workspace, MoveToWorkspace:
		n, err := strconv.Atoi(arg)
		if err != nil {
			return Action{}, fmt.Errorf("%s requires a workspace number: %w", kind, err)
		}
		if n < 1 || n > config.WorkspaceCount {
			return Action{}, fmt.Errorf("%s: workspace %d out of range 1-%d", kind, n, config.WorkspaceCount)
		}
		return Action{Kind: kind, Workspace: n - 1}, nil
	default:
		if arg != "" {
			return Action{}, fmt.Errorf("%s takes no argument", kind)
		}
		return Action{Kind: kind}, nil
	}
}

// ExpandSequence rewrites a configured key sequence into xgbutil keybind
// syntax: "Mod" becomes modifier and modifier names are lowercased. The key
// itself keeps its case, since keysyms are case-sensitive.
func ExpandSequence(seq, modifier string) (string, error) {
	parts := strings.Split(strings.TrimSpace(seq), "-")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return "", fmt.Errorf("key sequence %q has no key", seq)
	}

	out := make([]string, len(parts))
	for i, part := range parts {
		if i == len(parts)-1 {
			out[i] = part
			continue
		}
		switch lower := strings.ToLower(part); lower {
		case "mod":
			out[i] = strings.ToLower(modifier)
		case "ctrl":
			out[i] = "control"
		case "shift", "control", "lock", "mod1", "mod2", "mod3", "mod4", "mod5", "any":
			out[i] = lower
		default:
			return "", fmt.Errorf("key sequence %q: unknown modifier %q", seq, part)
		}
	}
	return strings.Join(out, "-"), nil
}
