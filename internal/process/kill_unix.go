//go:build !windows

package process

import (
	"errors"
	"os/exec"
	"syscall"
)

// Isolate makes cmd the leader of a new process group. pdftoppm is started
// through this so a canceled run or a raster timeout can stop it together
// with any helper it forks, without signalling pdfshield's own group.
func Isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// KillProcessGroup sends SIGKILL to the group led by pid. A group that has
// already exited is not an error: pdftoppm often finishes between the
// deadline firing and the kill. The caller's Wait still reaps the leader.
func KillProcessGroup(pid int) error {
	err := syscall.Kill(-pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}
