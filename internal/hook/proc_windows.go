//go:build windows

package hook

import (
	"context"
	"os/exec"
	"time"
)

// shellCommand wraps a command string in cmd.exe.
func shellCommand(ctx context.Context, command string) *exec.Cmd {
	return exec.CommandContext(ctx, "cmd", "/C", command)
}

// configureProcess sets a grace period for output pipes after the process
// is killed. Windows has no process groups to tear down here; Kill on the
// job is what exec.CommandContext already does.
func configureProcess(cmd *exec.Cmd) {
	cmd.WaitDelay = 5 * time.Second
}
