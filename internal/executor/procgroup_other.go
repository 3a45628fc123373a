//go:build !unix

package executor

import "os/exec"

// setProcessGroup leaves the default cancel, which kills the shell only.
func setProcessGroup(cmd *exec.Cmd) {}
