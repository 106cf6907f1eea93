// Package cli — list.go implements the "twig list" command.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/twig/internal/worktree"
)

// NewListCommand creates the "list" cobra command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the repository's worktrees",
		Long: `List every worktree of the enclosing repository, as reported live by
"git worktree list". Nothing is cached: a worktree directory deleted
behind git's back shows up as prunable here.`,

		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList()
		},
	}

	return cmd
}

func runList() error {
	env, err := setupEnv("")
	if err != nil {
		return err
	}

	worktrees, err := env.wm.List(env.repoRoot)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return printListJSON(worktrees)
	}
	printListText(worktrees)
	return nil
}

// printListJSON outputs the worktree list as structured JSON.
func printListJSON(worktrees []worktree.Info) error {
	type worktreeJSON struct {
		Path     string `json:"path"`
		Branch   string `json:"branch,omitempty"`
		Head     string `json:"head,omitempty"`
		Bare     bool   `json:"bare,omitempty"`
		Detached bool   `json:"detached,omitempty"`
		Locked   bool   `json:"locked,omitempty"`
	}

	out := make([]worktreeJSON, 0, len(worktrees))
	for _, wt := range worktrees {
		out = append(out, worktreeJSON{
			Path:     wt.Path,
			Branch:   wt.BranchName(),
			Head:     wt.HEAD,
			Bare:     wt.IsBare,
			Detached: wt.IsDetached,
			Locked:   wt.IsLocked,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// printListText outputs the worktree list as a human-readable table.
func printListText(worktrees []worktree.Info) {
	if len(worktrees) == 0 {
		fmt.Println("No worktrees found.")
		return
	}

	dim := color.New(color.Faint).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, wt := range worktrees {
		label := wt.BranchName()
		switch {
		case wt.IsBare:
			label = dim("(bare)")
		case wt.IsDetached:
			label = dim("(detached " + shortHead(wt.HEAD) + ")")
		default:
			label = cyan(label)
		}

		line := fmt.Sprintf("%-50s %s", wt.Path, label)
		if wt.IsLocked {
			line += " " + dim("[locked]")
		}
		fmt.Fprintln(os.Stdout, line)
	}
}

// shortHead abbreviates a commit hash for display.
func shortHead(head string) string {
	if len(head) > 8 {
		return head[:8]
	}
	return head
}
