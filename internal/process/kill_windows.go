//go:build windows

package process

import (
	"fmt"
	"os/exec"
	"strconv"
)

// Isolate is a no-op on Windows: there are no process groups to join, and
// KillProcessGroup walks pdftoppm's process tree instead.
func Isolate(cmd *exec.Cmd) {}

// KillProcessGroup force-kills pid and its descendants with taskkill /F /T.
// A tree that is already gone makes taskkill fail; the caller falls back to
// killing the direct child, which then reports os.ErrProcessDone.
func KillProcessGroup(pid int) error {
	out, err := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).CombinedOutput()
	if err != nil {
		return fmt.Errorf("taskkill %d: %w: %s", pid, err, out)
	}
	return nil
}
