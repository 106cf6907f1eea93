// Package cli — remove.go implements the "twig remove" command.
//
// Removal mirrors add: pre_remove effects run while the worktree still
// exists (symlink cleanup, teardown hooks), then the worktree is removed,
// then post_remove hooks run. Copied mapping targets are never deleted;
// they disappear with the worktree directory itself.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/twig/internal/effect"
	"github.com/mmr-tortoise/twig/internal/model"
	"github.com/mmr-tortoise/twig/internal/symlink"
)

// removeFlags holds the flag values for the remove command.
type removeFlags struct {
	configPath string // --config: explicit config file path
	force      bool   // --force: skip confirmation, pass --force to git
	dryRun     bool   // --dry-run: describe effects without touching anything
	noEffects  bool   // --no-effects: plain git worktree remove
	noWait     bool   // --no-wait: fail fast if the repository lock is held
}

// NewRemoveCommand creates the "remove" cobra command.
func NewRemoveCommand() *cobra.Command {
	flags := &removeFlags{}

	cmd := &cobra.Command{
		Use:     "remove <path>",
		Aliases: []string{"delete", "rm"},
		Short:   "Remove a worktree and run its configured side effects",
		Long: `Remove the worktree at <path>.

Configured pre_remove effects run first, while the worktree directory
still exists: managed symlinks are unlinked and pre_remove hooks run
inside the worktree. Copied files are left in place (they are deleted
together with the worktree directory). After "git worktree remove",
post_remove hooks run from the repository root.

Examples:
  twig remove ../worktrees/feature-auth
  twig remove --force ../worktrees/feature-auth`,

		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "Config file path (default: discovered twig.yaml)")
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Skip confirmation and force removal of dirty worktrees")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show what would happen without changing anything")
	cmd.Flags().BoolVar(&flags.noEffects, "no-effects", false, "Skip all configured side effects")
	cmd.Flags().BoolVar(&flags.noWait, "no-wait", false, "Fail immediately if another twig command holds the lock")

	return cmd
}

// runRemove is the main orchestration function for the remove command.
func runRemove(ctx context.Context, pathArg string, flags *removeFlags) error {
	env, err := setupEnv(flags.configPath)
	if err != nil {
		return err
	}

	// The worktree must be known to git; a random directory is refused.
	info, err := env.wm.Find(env.repoRoot, pathArg)
	if err != nil {
		return err
	}
	VerboseLog("Removing worktree %s (branch %s)", info.Path, info.BranchName())

	if !flags.force && !flags.dryRun {
		if !confirm(fmt.Sprintf("Remove worktree %s (branch %s)?", info.Path, info.BranchName())) {
			return model.NewCLIError(model.ExitUserCancelled, "removal cancelled")
		}
	}

	wctx, err := model.NewWorktreeContext(info.BranchName(), info.Path, env.repoRoot)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to build worktree context", err)
	}

	defs := env.settings.Definitions()
	if flags.noEffects {
		defs = model.Definitions{}
	}
	chain := effect.Build(defs, symlink.NewLinker(), effect.Options{
		DryRun: flags.dryRun,
		Logf:   effectLogf,
	})

	lock, err := env.acquireLock(ctx, flags.noWait)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	report := effect.NewReport()

	// Pre-remove effects need the worktree directory intact, so an abort
	// here leaves the worktree in place.
	report.AddPhase(chain.Execute(ctx, model.PhasePreRemove, wctx))
	if report.Aborted() {
		printReport(os.Stdout, report)
		return reportError(report)
	}

	if flags.dryRun {
		VerboseLog("Dry run: skipping git worktree remove")
	} else {
		if removeErr := env.wm.Remove(env.repoRoot, info.Path, flags.force); removeErr != nil {
			report.SetGitError(removeErr)
			printReport(os.Stdout, report)
			return model.WrapCLIError(model.ExitGitError, "failed to remove worktree", removeErr)
		}
		VerboseLog("Git worktree removed")
	}

	report.AddPhase(chain.Execute(ctx, model.PhasePostRemove, wctx))

	printReport(os.Stdout, report)
	return reportError(report)
}

// confirm asks a yes/no question on stderr and reads the answer from stdin.
// Anything other than "y"/"yes" counts as no.
func confirm(question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
