// Package cli — add.go implements the "twig add" command.
//
// The add command is the primary user-facing operation. It orchestrates
// the full workflow of creating a Git worktree with its configured side
// effects:
//  1. Detect the repository and load configuration
//  2. Resolve the worktree path and branch name
//  3. Acquire the repository lock
//  4. Run pre-add hooks (an abort here prevents the git operation)
//  5. Create the Git worktree
//  6. Materialize file mappings and run post-add hooks
//  7. Render the effect report
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/twig/internal/effect"
	"github.com/mmr-tortoise/twig/internal/model"
	"github.com/mmr-tortoise/twig/internal/symlink"
	"github.com/mmr-tortoise/twig/internal/worktree"
)

// addFlags holds the flag values for the add command.
type addFlags struct {
	base        string // --base: base commit/branch for the new branch
	configPath  string // --config: explicit config file path
	forceBranch bool   // --force-branch: reset an existing branch to base
	printPath   bool   // --print-path: print only the worktree path on stdout
	cdCommand   bool   // --cd-command: print a shell cd command on stdout
	dryRun      bool   // --dry-run: describe effects without touching anything
	noEffects   bool   // --no-effects: plain git worktree add, no side effects
	noWait      bool   // --no-wait: fail fast if the repository lock is held
}

// NewAddCommand creates the "add" cobra command.
func NewAddCommand() *cobra.Command {
	flags := &addFlags{}

	cmd := &cobra.Command{
		Use:     "add <path> [branch]",
		Aliases: []string{"create"},
		Short:   "Create a worktree and run its configured side effects",
		Long: `Create a Git worktree at <path>, checked out on [branch].

When [branch] is omitted it is derived from the path's base name, with the
configured branch_prefix prepended. A branch that does not exist yet is
created from --base (default: HEAD).

After the worktree exists, configured file mappings are materialized and
post_add hooks run inside it. Configured pre_add hooks run first; if one
fails under the abort policy, the worktree is not created at all.

Examples:
  twig add ../worktrees/feature-auth
  twig add ../worktrees/bugfix-login hotfix/login
  twig add --base origin/main ../worktrees/feature-auth
  twig add --dry-run ../worktrees/feature-auth`,

		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			branch := ""
			if len(args) == 2 {
				branch = args[1]
			}
			return runAdd(cmd.Context(), args[0], branch, flags)
		},
	}

	cmd.Flags().StringVar(&flags.base, "base", "", "Base commit/branch for a new branch (default: HEAD)")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Config file path (default: discovered twig.yaml)")
	cmd.Flags().BoolVar(&flags.forceBranch, "force-branch", false, "Reset the branch to --base even if it exists")
	cmd.Flags().BoolVar(&flags.printPath, "print-path", false, "Print only the new worktree path on stdout")
	cmd.Flags().BoolVar(&flags.cdCommand, "cd-command", false, "Print a cd command for the new worktree on stdout")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show what would happen without changing anything")
	cmd.Flags().BoolVar(&flags.noEffects, "no-effects", false, "Skip all configured side effects")
	cmd.Flags().BoolVar(&flags.noWait, "no-wait", false, "Fail immediately if another twig command holds the lock")

	return cmd
}

// runAdd is the main orchestration function for the add command.
func runAdd(ctx context.Context, pathArg, branchArg string, flags *addFlags) error {
	env, err := setupEnv(flags.configPath)
	if err != nil {
		return err
	}

	worktreePath, err := resolveWorktreePath(env, pathArg)
	if err != nil {
		return err
	}

	branch := branchArg
	if branch == "" {
		branch = env.settings.BranchPrefix + filepath.Base(worktreePath)
	}
	VerboseLog("Worktree path: %s", worktreePath)
	VerboseLog("Branch: %s", branch)

	wctx, err := model.NewWorktreeContext(branch, worktreePath, env.repoRoot)
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

	// Pre-add hooks run before the worktree exists. An abort here means
	// no git operation happens at all.
	report.AddPhase(chain.Execute(ctx, model.PhasePreAdd, wctx))
	if report.Aborted() {
		printReport(reportWriter(flags), report)
		return reportError(report)
	}

	if flags.dryRun {
		VerboseLog("Dry run: skipping git worktree add")
	} else {
		VerboseLog("Creating Git worktree for branch %q...", branch)
		addErr := env.wm.Add(env.repoRoot, branch, worktreePath, worktree.AddOptions{
			Base:        flags.base,
			ForceBranch: flags.forceBranch,
		})
		if addErr != nil {
			report.SetGitError(addErr)
			printReport(reportWriter(flags), report)
			return model.WrapCLIError(model.ExitGitError, "failed to create worktree", addErr)
		}
		VerboseLog("Git worktree created")
	}

	report.AddPhase(chain.Execute(ctx, model.PhasePostAdd, wctx))

	printReport(reportWriter(flags), report)
	printShellOutput(flags, worktreePath)

	return reportError(report)
}

// resolveWorktreePath turns the path argument into an absolute worktree
// location. A bare name (no path separator) with worktree_base configured
// lands under that base directory; anything else resolves against the
// working directory like git itself would.
func resolveWorktreePath(env *commandEnv, pathArg string) (string, error) {
	path := pathArg
	if !filepath.IsAbs(path) && env.settings.WorktreeBase != "" && !strings.ContainsAny(path, `/\`) {
		base := env.settings.WorktreeBase
		if !filepath.IsAbs(base) {
			base = filepath.Join(env.repoRoot, base)
		}
		path = filepath.Join(base, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", model.WrapCLIError(model.ExitGeneralError, "failed to resolve worktree path", err)
	}
	return abs, nil
}

// reportWriter picks where the effect report goes. With --print-path or
// --cd-command, stdout is reserved for the machine-readable line and the
// report moves to stderr.
func reportWriter(flags *addFlags) *os.File {
	if flags.printPath || flags.cdCommand {
		return os.Stderr
	}
	return os.Stdout
}

// printShellOutput emits the machine-readable stdout line for shell
// integration, if requested.
func printShellOutput(flags *addFlags, worktreePath string) {
	switch {
	case flags.printPath:
		fmt.Println(worktreePath)
	case flags.cdCommand:
		fmt.Printf("cd %q\n", worktreePath)
	}
}

// reportError translates a finished report into the command's error return.
// Warnings and skips exit zero; only a git failure or an aborted phase is
// an error.
func reportError(report *effect.Report) error {
	if report.OverallSuccess() {
		return nil
	}
	err := report.Err()
	return model.WrapCLIError(report.ExitCode(), "command finished with errors", err)
}
