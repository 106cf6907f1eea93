package hook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/mmr-tortoise/twig/internal/model"
)

// ErrTimeout marks a hook that exceeded its configured timeout and had its
// process tree terminated. Callers distinguish it from ordinary command
// failure with errors.Is.
var ErrTimeout = errors.New("hook timed out")

// Runner executes hook commands. The zero value runs for real; set DryRun
// to print what would run without spawning anything.
type Runner struct {
	// DryRun suppresses process execution.
	DryRun bool

	// Logf receives verbose trace lines. Nil disables tracing.
	Logf func(format string, args ...any)
}

// NewRunner returns a Runner.
func NewRunner(dryRun bool) *Runner {
	return &Runner{DryRun: dryRun}
}

func (r *Runner) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

// Run executes one hook command in workDir and returns its combined output.
// When Args is set the process is spawned directly; otherwise the command
// string goes through the platform shell. The hook's timeout bounds the
// whole run, and on expiry the process group is killed and ErrTimeout is
// returned (wrapped).
func (r *Runner) Run(ctx context.Context, h *model.HookCommand, wctx *model.WorktreeContext, workDir string) (string, error) {
	command := model.ExpandPlaceholders(h.Command, wctx)

	if r.DryRun {
		r.logf("dry-run: would execute %q in %s", command, workDir)
		return "", nil
	}

	tctx, cancel := context.WithTimeout(ctx, h.Timeout())
	defer cancel()

	var cmd *exec.Cmd
	if len(h.Args) > 0 {
		args := make([]string, len(h.Args))
		for i, a := range h.Args {
			args[i] = model.ExpandPlaceholders(a, wctx)
		}
		cmd = exec.CommandContext(tctx, command, args...)
	} else {
		cmd = shellCommand(tctx, command)
	}

	cmd.Dir = workDir
	cmd.Env = buildEnv(h, wctx)
	configureProcess(cmd)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	r.logf("executing hook %q in %s (timeout %s)", command, workDir, h.Timeout())
	err := cmd.Run()
	if tctx.Err() == context.DeadlineExceeded {
		return output.String(), fmt.Errorf("%q exceeded %s: %w", command, h.Timeout(), ErrTimeout)
	}
	if err != nil {
		return output.String(), fmt.Errorf("hook %q failed: %w", command, err)
	}
	return output.String(), nil
}

// buildEnv layers the hook's declared variables over the worktree context
// exports and the parent environment.
func buildEnv(h *model.HookCommand, wctx *model.WorktreeContext) []string {
	env := append(os.Environ(),
		"TWIG_BRANCH="+wctx.Branch,
		"TWIG_WORKTREE_PATH="+wctx.WorktreePath,
		"TWIG_SOURCE_PATH="+wctx.SourcePath,
	)
	for k, v := range h.Env {
		env = append(env, k+"="+model.ExpandPlaceholders(v, wctx))
	}
	return env
}
