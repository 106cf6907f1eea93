// Package cli — status.go implements the "twig status" command.
//
// Status re-derives the state of every configured file mapping from the
// live filesystem each time it runs. twig keeps no state database; the
// worktree list comes from git and the mapping states from Lstat/Readlink.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/twig/internal/model"
	"github.com/mmr-tortoise/twig/internal/symlink"
)

// statusFlags holds the flag values for the status command.
type statusFlags struct {
	configPath string // --config: explicit config file path
}

// NewStatusCommand creates the "status" cobra command.
func NewStatusCommand() *cobra.Command {
	flags := &statusFlags{}

	cmd := &cobra.Command{
		Use:   "status [path]",
		Short: "Show the state of configured file mappings in a worktree",
		Long: `Inspect each configured file mapping in the worktree at [path]
(default: the current worktree) and report whether its target is present
and matches the configuration.

States:
  ok       target exists and matches (symlink to source, or copy present)
  missing  target does not exist
  warning  target exists but differs (wrong link destination, or a plain
           file where a symlink was configured)
  error    target state could not be determined`,

		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runStatus(path, flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "Config file path (default: discovered twig.yaml)")

	return cmd
}

func runStatus(pathArg string, flags *statusFlags) error {
	env, err := setupEnv(flags.configPath)
	if err != nil {
		return err
	}

	worktreePath := pathArg
	if worktreePath == "" {
		worktreePath = env.repoRoot
	}
	info, err := env.wm.Find(env.repoRoot, worktreePath)
	if err != nil {
		return err
	}

	wctx, err := model.NewWorktreeContext(info.BranchName(), info.Path, env.repoRoot)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to build worktree context", err)
	}

	statuses := make([]model.MappingStatus, 0, len(env.settings.Files))
	for _, mapping := range env.settings.Files {
		statuses = append(statuses, symlink.Status(mapping, wctx))
	}

	if IsJSONOutput() {
		return printStatusJSON(info.Path, wctx.Branch, statuses)
	}
	printStatusText(info.Path, wctx.Branch, statuses)
	return nil
}

// printStatusJSON outputs the mapping states as structured JSON.
func printStatusJSON(path, branch string, statuses []model.MappingStatus) error {
	out := struct {
		Path     string                `json:"path"`
		Branch   string                `json:"branch"`
		Mappings []model.MappingStatus `json:"mappings"`
	}{Path: path, Branch: branch, Mappings: statuses}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// printStatusText outputs the mapping states as a human-readable table.
func printStatusText(path, branch string, statuses []model.MappingStatus) {
	fmt.Printf("Worktree %s (branch %s)\n", path, branch)

	if len(statuses) == 0 {
		fmt.Println("No file mappings configured.")
		return
	}

	for _, st := range statuses {
		line := fmt.Sprintf("  %s %-40s", statusSymbol(st.State), st.Mapping.Target)
		if st.Detail != "" {
			line += "  " + st.Detail
		} else if st.Mapping.Description != "" {
			line += "  " + st.Mapping.Description
		}
		fmt.Println(line)
	}
}

// statusSymbol maps a target state to a colored one-character marker.
func statusSymbol(state model.TargetState) string {
	switch state {
	case model.TargetOk:
		return color.GreenString("✓")
	case model.TargetMissing:
		return color.YellowString("∅")
	case model.TargetWarning:
		return color.YellowString("!")
	default:
		return color.RedString("✗")
	}
}
