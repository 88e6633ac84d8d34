package bar

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/1broseidon/tilewm/internal/config"
)

// Separator joins module outputs.
const Separator = " | "

// Runner executes a module command and returns its output.
type Runner func(ctx context.Context, command string) (string, error)

// ShellRunner runs command with sh -c and returns the first line of stdout.
func ShellRunner(ctx context.Context, command string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

type module struct {
	command  string
	interval time.Duration
	lastRun  time.Time
	output   string
}

// Status refreshes bar modules no more often than their interval and joins
// their latest outputs. It is used from one goroutine.
type Status struct {
	modules []*module
	run     Runner
	timeout time.Duration
	logger  *slog.Logger
	text    string
}

// NewStatus creates a status line for modules. A nil run uses ShellRunner.
func NewStatus(modules []config.BarModule, run Runner, logger *slog.Logger) *Status {
	if run == nil {
		run = ShellRunner
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Status{
		run:     run,
		timeout: 2 * time.Second,
		logger:  logger,
	}
	for _, m := range modules {
		interval := time.Duration(m.Interval) * time.Second
		if interval <= 0 {
			interval = time.Second
		}
		s.modules = append(s.modules, &module{command: m.Command, interval: interval})
	}
	return s
}

// Refresh runs every module whose interval has elapsed at now and returns
// the joined text and whether it differs from the previous result. A failing
// module keeps its previous output.
func (s *Status) Refresh(ctx context.Context, now time.Time) (string, bool) {
	for _, m := range s.modules {
		if !m.lastRun.IsZero() && now.Sub(m.lastRun) < m.interval {
			continue
		}
		m.lastRun = now

		runCtx, cancel := context.WithTimeout(ctx, s.timeout)
		out, err := s.run(runCtx, m.command)
		cancel()
		if err != nil {
			s.logger.Warn("status module failed", "command", m.command, "error", err)
			continue
		}
		m.output = out
	}

	parts := make([]string, 0, len(s.modules))
	for _, m := range s.modules {
		if m.output != "" {
			parts = append(parts, m.output)
		}
	}
	text := strings.Join(parts, Separator)
	if text == s.text {
		return text, false
	}
	s.text = text
	return text, true
}

// Text returns the most recent status line.
func (s *Status) Text() string {
	return s.text
}
