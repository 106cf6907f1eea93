package config

import (
	"fmt"
	"os"

	"github.com/mmr-tortoise/twig/internal/model"
)

// exampleYAML is the annotated starter config written by `twig init`.
const exampleYAML = `# twig configuration
#
# Declares what happens around "git worktree" operations: which files are
# shared into every new worktree and which commands run at each lifecycle
# phase.

# Files shared from the repository root into each worktree.
# type: symlink (default) or copy. Symlinks fall back to copies on
# platforms that refuse symlink creation.
files:
  - source: .env
    target: .env
    description: local environment variables
  - source: config/secrets.local.yaml
    target: config/secrets.local.yaml
    type: copy
    skip_if_exists: true

# Commands run around worktree lifecycle events.
# Placeholders: {branch}, {worktree_path}, {source_path}.
# Each hook also sees TWIG_BRANCH, TWIG_WORKTREE_PATH and TWIG_SOURCE_PATH
# in its environment.
hooks:
  post_add:
    - command: npm install
      timeout: 300
    - command: echo "worktree for {branch} ready"
      continue_on_error: true
  pre_remove:
    - command: docker compose down
      continue_on_error: true

# abort (default): a failing hook or mapping stops the remaining effects.
# continue: failures are recorded but the chain keeps going.
error_handling: abort

# Optional defaults for twig add.
# worktree_base: ../worktrees
# branch_prefix: ""
`

// Example returns the starter config document.
func Example() string {
	return exampleYAML
}

// Init writes the starter config to path. An existing file is only
// overwritten when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return model.NewCLIError(
			model.ExitConfigError,
			fmt.Sprintf("%s already exists (use --force to overwrite)", path),
		)
	}
	if err := os.WriteFile(path, []byte(exampleYAML), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
