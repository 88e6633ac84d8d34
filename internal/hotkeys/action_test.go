package hotkeys

import (
	"strings"
	"testing"

	"github.com/1broseidon/tilewm/internal/config"
)

func TestParseAction(t *testing.T) {
	cases := map[string]Action{
		"Spawn xterm":            {Kind: Spawn, Command: "xterm"},
		"Spawn  sh -c 'echo hi'": {Kind: Spawn, Command: "sh -c 'echo hi'"},
		"KillFocused":            {Kind: KillFocused},
		"quit":                   {Kind: Quit},
		"FocusNext":              {Kind: FocusNext},
		"MoveWindowPrev":         {Kind: MoveWindowPrev},
		"CycleLayout":            {Kind: CycleLayout},
		"SplitVertical":          {Kind: SplitVertical},
		"PromoteMaster":          {Kind: PromoteMaster},
		"Workspace 1":            {Kind: Workspace, Workspace: 0},
		"MoveToWorkspace 9":      {Kind: MoveToWorkspace, Workspace: 8},
	}
	for in, want := range cases {
		got, err := ParseAction(in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: expected %+v, got %+v", in, want, got)
		}
	}
}

func TestParseAction_Errors(t *testing.T) {
	for _, in := range []string{
		"",
		"Spawn",
		"Explode",
		"Workspace",
		"Workspace 0",
		"Workspace 10",
		"MoveToWorkspace two",
		"Quit now",
	} {
		if _, err := ParseAction(in); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}

func TestAction_StringRoundTrips(t *testing.T) {
	for _, in := range []string{"Spawn dmenu_run", "Workspace 3", "MoveToWorkspace 7", "ToggleBar"} {
		a, err := ParseAction(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if a.String() != in {
			t.Fatalf("expected %q, got %q", in, a.String())
		}
	}
}

func TestExpandSequence(t *testing.T) {
	cases := []struct {
		seq, mod, want string
	}{
		{"Mod-Shift-j", "mod4", "mod4-shift-j"},
		{"Mod-Return", "mod1", "mod1-Return"},
		{"Mod-Ctrl-q", "mod4", "mod4-control-q"},
		{"Control-Mod-space", "MOD4", "control-mod4-space"},
		{"F12", "mod4", "F12"},
	}
	for _, c := range cases {
		got, err := ExpandSequence(c.seq, c.mod)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", c.seq, err)
		}
		if got != c.want {
			t.Fatalf("%q: expected %q, got %q", c.seq, c.want, got)
		}
	}
}

func TestExpandSequence_Errors(t *testing.T) {
	for _, seq := range []string{"", "Mod-", "Hyper-j"} {
		if _, err := ExpandSequence(seq, "mod4"); err == nil {
			t.Fatalf("%q: expected error", seq)
		}
	}
}

func TestResolveBindings_DefaultsAreValid(t *testing.T) {
	cfg := config.DefaultConfig()
	resolved, invalid := ResolveBindings(cfg.Bindings, cfg.Modifier, cfg.SortedBindings())
	if len(invalid) != 0 {
		t.Fatalf("expected default bindings to be valid, got %v", invalid)
	}
	if len(resolved) != len(cfg.Bindings) {
		t.Fatalf("expected %d bindings, got %d", len(cfg.Bindings), len(resolved))
	}
	for _, b := range resolved {
		if !strings.HasPrefix(b.Sequence, "mod4-") {
			t.Fatalf("expected sequence to use mod4, got %q", b.Sequence)
		}
	}
}

func TestResolveBindings_SkipsInvalid(t *testing.T) {
	bindings := map[string]string{
		"Mod-j":   "FocusNext",
		"Mod-x":   "Explode",
		"Hyper-k": "FocusPrev",
		"Mod-Tab": "CycleLayout",
	}
	order := []string{"Hyper-k", "Mod-Tab", "Mod-j", "Mod-x"}
	resolved, invalid := ResolveBindings(bindings, "mod1", order)
	if len(resolved) != 2 || len(invalid) != 2 {
		t.Fatalf("expected 2 valid and 2 invalid, got %v / %v", resolved, invalid)
	}
	if resolved[0].Sequence != "mod1-Tab" || resolved[0].Action.Kind != CycleLayout {
		t.Fatalf("unexpected first binding %+v", resolved[0])
	}
	if _, ok := invalid["Mod-x"]; !ok {
		t.Fatalf("expected Mod-x to be invalid")
	}
}
