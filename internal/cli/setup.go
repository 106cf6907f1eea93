package cli

import (
	"context"
	"errors"
	"os"

	"github.com/mmr-tortoise/twig/internal/config"
	"github.com/mmr-tortoise/twig/internal/model"
	"github.com/mmr-tortoise/twig/internal/repolock"
	"github.com/mmr-tortoise/twig/internal/worktree"
)

// commandEnv bundles the state every mutating subcommand needs: the
// repository location, the shared git common directory (lock root) and the
// effective merged configuration.
type commandEnv struct {
	wm        *worktree.Manager
	repoRoot  string
	commonDir string
	settings  *config.Settings
}

// setupEnv detects the enclosing repository from the working directory and
// loads configuration. configPath overrides project config discovery.
func setupEnv(configPath string) (*commandEnv, error) {
	wm := worktree.NewManager()

	cwd, err := os.Getwd()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}

	repoRoot, err := wm.GetRepoRoot(cwd)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGitError, "not inside a Git repository", err)
	}
	VerboseLog("Repository root: %s", repoRoot)

	commonDir, err := wm.GetGitCommonDir(cwd)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGitError, "failed to locate git common directory", err)
	}

	settings, err := config.LoadMerged(repoRoot, configPath)
	if err != nil {
		return nil, err
	}

	return &commandEnv{
		wm:        wm,
		repoRoot:  repoRoot,
		commonDir: commonDir,
		settings:  settings,
	}, nil
}

// setupEnvWithoutConfig is setupEnv minus configuration loading, for
// commands that must work even when the existing config is broken
// (notably init --force).
func setupEnvWithoutConfig() (*commandEnv, error) {
	wm := worktree.NewManager()

	cwd, err := os.Getwd()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}

	repoRoot, err := wm.GetRepoRoot(cwd)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGitError, "not inside a Git repository", err)
	}

	commonDir, err := wm.GetGitCommonDir(cwd)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGitError, "failed to locate git common directory", err)
	}

	return &commandEnv{
		wm:        wm,
		repoRoot:  repoRoot,
		commonDir: commonDir,
		settings:  &config.Settings{},
	}, nil
}

// acquireLock takes the repository lock. By default it waits for a holder
// to finish; with noWait it fails fast with ExitLockError instead.
func (e *commandEnv) acquireLock(ctx context.Context, noWait bool) (*repolock.Lock, error) {
	lock := repolock.New(e.commonDir)
	VerboseLog("Acquiring repository lock: %s", lock.Path())

	if noWait {
		if err := lock.TryAcquire(); err != nil {
			if errors.Is(err, repolock.ErrLockHeld) {
				return nil, model.WrapCLIError(model.ExitLockError, "another twig command is running", err)
			}
			return nil, model.WrapCLIError(model.ExitLockError, "failed to acquire repository lock", err)
		}
		return lock, nil
	}

	if err := lock.Acquire(ctx); err != nil {
		return nil, model.WrapCLIError(model.ExitLockError, "failed to acquire repository lock", err)
	}
	return lock, nil
}

// effectLogf adapts VerboseLog for the effect chain options.
func effectLogf(format string, args ...any) {
	VerboseLog(format, args...)
}
