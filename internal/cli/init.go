// Package cli — init.go implements the "twig init" command.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/twig/internal/config"
)

// initFlags holds the flag values for the init command.
type initFlags struct {
	force bool // --force: overwrite an existing config file
}

// NewInitCommand creates the "init" cobra command.
func NewInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter twig.yaml at the repository root",
		Long: `Write an annotated starter configuration to twig.yaml at the root of
the enclosing repository. The starter file documents the available
sections: file mappings, lifecycle hooks and the error handling policy.`,

		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(flags)
		},
	}

	cmd.Flags().BoolVar(&flags.force, "force", false, "Overwrite an existing config file")

	return cmd
}

func runInit(flags *initFlags) error {
	env, err := setupEnvWithoutConfig()
	if err != nil {
		return err
	}

	path := filepath.Join(env.repoRoot, "twig.yaml")
	if err := config.Init(path, flags.force); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}
