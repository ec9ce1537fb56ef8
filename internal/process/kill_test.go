package process

// Notes:
// - Real group kills are covered by the rasterizer cancellation test, which
//   spawns a sleeping child.
// - Cannot test with PID 0 (kills the current process group).

import (
	"os/exec"
	"testing"
)

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	// Must not panic or touch our own group, whatever the platform reports.
	_ = KillProcessGroup(999999999)
}

func TestIsolate_Idempotent(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("true")
	Isolate(cmd)
	Isolate(cmd)
}
