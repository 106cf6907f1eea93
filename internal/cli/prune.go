// Package cli — prune.go implements the "twig prune" command.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// pruneFlags holds the flag values for the prune command.
type pruneFlags struct {
	dryRun bool // --dry-run: report prunable worktrees without pruning
	noWait bool // --no-wait: fail fast if the repository lock is held
}

// NewPruneCommand creates the "prune" cobra command.
func NewPruneCommand() *cobra.Command {
	flags := &pruneFlags{}

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Prune stale worktree administrative data",
		Long: `Run "git worktree prune" for the enclosing repository, removing
administrative data for worktree directories that no longer exist.
No hooks or mappings are involved; the worktree directories are already
gone by definition.`,

		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Report prunable worktrees without removing anything")
	cmd.Flags().BoolVar(&flags.noWait, "no-wait", false, "Fail immediately if another twig command holds the lock")

	return cmd
}

func runPrune(ctx context.Context, flags *pruneFlags) error {
	env, err := setupEnv("")
	if err != nil {
		return err
	}

	// Pruning mutates worktree metadata, so it contends on the same lock
	// as add and remove.
	lock, err := env.acquireLock(ctx, flags.noWait)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	pruned, err := env.wm.Prune(env.repoRoot, flags.dryRun)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		out := struct {
			DryRun bool     `json:"dryRun"`
			Pruned []string `json:"pruned"`
		}{DryRun: flags.dryRun, Pruned: pruned}
		data, marshalErr := json.MarshalIndent(out, "", "  ")
		if marshalErr != nil {
			return marshalErr
		}
		fmt.Println(string(data))
		return nil
	}

	if len(pruned) == 0 {
		fmt.Println("Nothing to prune.")
		return nil
	}
	verb := "Pruned"
	if flags.dryRun {
		verb = "Would prune"
	}
	for _, name := range pruned {
		fmt.Printf("%s %s\n", verb, name)
	}
	return nil
}
