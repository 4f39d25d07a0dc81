//go:build !windows

package encoder

import (
	"os/exec"
	"syscall"
)

// run the encoder in its own process group, so that a Ctrl-C in the terminal
// doesn't kill it before the container is finalized
func osSetupCmd(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
