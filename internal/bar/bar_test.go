package bar

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/tilewm/internal/config"
)

func TestCells_WorkspaceAt(t *testing.T) {
	cells := Cells{Width: 30, Count: 9}
	cases := map[int]struct {
		index int
		ok    bool
	}{
		0:   {0, true},
		29:  {0, true},
		30:  {1, true},
		269: {8, true},
		270: {0, false},
		-1:  {0, false},
	}
	for x, want := range cases {
		index, ok := cells.WorkspaceAt(x)
		if index != want.index || ok != want.ok {
			t.Fatalf("x=%d: expected (%d, %v), got (%d, %v)", x, want.index, want.ok, index, ok)
		}
	}

	if _, ok := (Cells{Width: 0, Count: 9}).WorkspaceAt(5); ok {
		t.Fatalf("expected zero-width cells to match nothing")
	}
}

type fakeRunner struct {
	outputs map[string]string
	fail    map[string]bool
	calls   map[string]int
}

func (f *fakeRunner) run(_ context.Context, command string) (string, error) {
	f.calls[command]++
	if f.fail[command] {
		return "", errors.New("boom")
	}
	return f.outputs[command], nil
}

func TestStatus_RespectsIntervalsAndJoins(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]string{"date": "12:00", "battery": "87%"},
		fail:    map[string]bool{},
		calls:   map[string]int{},
	}
	modules := []config.BarModule{
		{Command: "date", Interval: 1},
		{Command: "battery", Interval: 30},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewStatus(modules, runner.run, logger)

	start := time.Unix(1000, 0)
	text, changed := s.Refresh(context.Background(), start)
	if !changed || text != "12:00 | 87%" {
		t.Fatalf("unexpected first refresh: %q %v", text, changed)
	}

	runner.outputs["date"] = "12:01"
	text, changed = s.Refresh(context.Background(), start.Add(time.Second))
	if !changed || text != "12:01 | 87%" {
		t.Fatalf("unexpected second refresh: %q %v", text, changed)
	}
	if runner.calls["battery"] != 1 {
		t.Fatalf("expected battery to run once, ran %d times", runner.calls["battery"])
	}

	_, changed = s.Refresh(context.Background(), start.Add(2*time.Second))
	if changed {
		t.Fatalf("expected unchanged output to report no change")
	}

	s.Refresh(context.Background(), start.Add(31*time.Second))
	if runner.calls["battery"] != 2 {
		t.Fatalf("expected battery to run again after its interval, ran %d times", runner.calls["battery"])
	}
}

func TestStatus_FailingModuleKeepsPreviousOutput(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]string{"load": "0.5"},
		fail:    map[string]bool{},
		calls:   map[string]int{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewStatus([]config.BarModule{{Command: "load", Interval: 1}}, runner.run, logger)

	now := time.Unix(0, 0)
	s.Refresh(context.Background(), now)
	runner.fail["load"] = true
	text, changed := s.Refresh(context.Background(), now.Add(5*time.Second))
	if changed || text != "0.5" {
		t.Fatalf("expected previous output to be kept, got %q %v", text, changed)
	}
	if s.Text() != "0.5" {
		t.Fatalf("expected Text to return 0.5, got %q", s.Text())
	}
}

func TestShellRunner_FirstLine(t *testing.T) {
	out, err := ShellRunner(context.Background(), "printf 'one\\ntwo\\n'")
	if err != nil {
		t.Skipf("sh unavailable: %v", err)
	}
	if out != "one" {
		t.Fatalf("expected first line, got %q", out)
	}
}
