package daemon

import (
	"fmt"
	"os"
	"os/exec"
)

// Spawn starts command through sh -c, detached from the window manager's
// stdio. The child is reaped in the background.
func Spawn(command string) error {
	cmd := exec.Command("sh", "-c", command)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Env = os.Environ()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %q: %w", command, err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
