package worktree

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/twig/internal/model"
)

// runGit executes a git command with the given arguments against repoPath.
//
// It captures stdout and stderr separately. On success it returns stdout.
// On failure it returns a model.CLIError with ExitGitError, including the
// stderr output in the error message for diagnostics.
//
// The repository path is passed via git's -C flag instead of Cmd.Dir, so
// git itself performs the directory switch; this works uniformly with all
// git subcommands and keeps the process working directory untouched.
func runGit(repoPath string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)

	// #nosec G204 -- args are constructed internally, not from user input
	cmd := exec.Command("git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitGitError, message, err)
	}

	return stdout.String(), nil
}
