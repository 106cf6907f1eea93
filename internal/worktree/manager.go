package worktree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/twig/internal/model"
)

// Info holds metadata about a single Git worktree entry as parsed from
// `git worktree list --porcelain` output.
//
// Example porcelain output for a single worktree block:
//
//	worktree /path/to/feature-branch
//	HEAD abc123def456
//	branch refs/heads/feature-branch
type Info struct {
	// Path is the absolute filesystem path to the worktree directory.
	Path string

	// Branch is the full branch reference (e.g., "refs/heads/main").
	// Empty if the worktree is in a detached HEAD state.
	Branch string

	// HEAD is the commit SHA that the worktree currently points to.
	HEAD string

	// IsBare indicates whether this entry represents a bare repository.
	IsBare bool

	// IsDetached indicates a detached HEAD state.
	IsDetached bool

	// IsLocked indicates the worktree is locked against pruning
	// (`git worktree lock`).
	IsLocked bool
}

// BranchName returns the short branch name without the refs/heads/ prefix,
// or an empty string for detached or bare entries.
func (i *Info) BranchName() string {
	return strings.TrimPrefix(i.Branch, "refs/heads/")
}

// AddOptions controls how Manager.Add creates a worktree.
type AddOptions struct {
	// Base is the commit or branch the new branch starts from.
	// Empty means HEAD.
	Base string

	// ForceBranch resets the branch to Base even when it already exists
	// (git's -B instead of -b).
	ForceBranch bool
}

// Manager provides Git worktree operations by invoking the git CLI.
// It is stateless; all methods receive the repository path as a parameter,
// so a single Manager can serve any repository.
type Manager struct{}

// NewManager creates a new worktree Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Add creates a new Git worktree at worktreePath checked out on branch.
//
// Three command forms are used:
//   - branch does not exist:        git worktree add -b <branch> <path> [base]
//   - branch exists, ForceBranch:   git worktree add -B <branch> <path> [base]
//   - branch exists otherwise:      git worktree add <path> <branch>
//
// The existing-branch form cannot use -b (git would refuse with
// "already exists").
func (m *Manager) Add(repoPath, branch, worktreePath string, opts AddOptions) error {
	exists := m.BranchExists(repoPath, branch)

	var args []string
	switch {
	case exists && opts.ForceBranch:
		args = []string{"worktree", "add", "-B", branch, worktreePath}
		if opts.Base != "" {
			args = append(args, opts.Base)
		}
	case exists:
		args = []string{"worktree", "add", worktreePath, branch}
	default:
		args = []string{"worktree", "add", "-b", branch, worktreePath}
		if opts.Base != "" {
			args = append(args, opts.Base)
		}
	}

	_, err := runGit(repoPath, args...)
	return err
}

// List returns information about all worktrees associated with the
// repository, parsed from `git worktree list --porcelain`.
func (m *Manager) List(repoPath string) ([]Info, error) {
	output, err := runGit(repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parsePorcelain(output), nil
}

// Find returns the worktree entry whose path matches the given path, or a
// CLIError with ExitWorktreeNotFound when no entry matches.
func (m *Manager) Find(repoPath, worktreePath string) (*Info, error) {
	abs, err := filepath.Abs(worktreePath)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to resolve worktree path", err)
	}

	infos, err := m.List(repoPath)
	if err != nil {
		return nil, err
	}
	for i := range infos {
		if infos[i].Path == abs {
			return &infos[i], nil
		}
	}
	return nil, model.NewCLIError(model.ExitWorktreeNotFound,
		fmt.Sprintf("worktree not found: %s", worktreePath))
}

// Remove deletes the Git worktree at worktreePath. With force, git removes
// the worktree even when it has untracked files or uncommitted changes.
func (m *Manager) Remove(repoPath, worktreePath string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, worktreePath)

	_, err := runGit(repoPath, args...)
	return err
}

// Prune removes stale worktree administrative files (`git worktree prune`)
// and returns the paths git reports as removed. With dryRun, nothing is
// deleted and the returned paths are what would be removed.
func (m *Manager) Prune(repoPath string, dryRun bool) ([]string, error) {
	args := []string{"worktree", "prune", "--verbose"}
	if dryRun {
		args = append(args, "--dry-run")
	}

	output, err := runGit(repoPath, args...)
	if err != nil {
		return nil, err
	}

	// Verbose prune output reports one line per removed entry, e.g.
	// "Removing worktrees/feature-x: gitdir file points to non-existent location".
	var pruned []string
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, "Removing ") {
			continue
		}
		entry := strings.TrimPrefix(line, "Removing ")
		if name, _, found := strings.Cut(entry, ":"); found {
			pruned = append(pruned, strings.TrimSpace(name))
		}
	}
	return pruned, nil
}

// BranchExists checks whether a branch with the given name exists.
// Only the exit code of `git rev-parse --verify` matters here.
func (m *Manager) BranchExists(repoPath, branch string) bool {
	_, err := runGit(repoPath, "rev-parse", "--verify", "refs/heads/"+branch)
	return err == nil
}

// GetRepoRoot returns the absolute path to the top-level directory of the
// working tree containing the given path. For worktrees this is the
// worktree root, not the main repository root.
func (m *Manager) GetRepoRoot(path string) (string, error) {
	output, err := runGit(path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// GetGitCommonDir returns the absolute path to the repository's shared
// .git directory. All worktrees of one repository resolve to the same
// common dir, which makes it the natural home for the repository lock file.
func (m *Manager) GetGitCommonDir(path string) (string, error) {
	output, err := runGit(path, "rev-parse", "--path-format=absolute", "--git-common-dir")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// GetCurrentBranch returns the short name of the currently checked-out
// branch at the given path, or "HEAD" in a detached state.
func (m *Manager) GetCurrentBranch(path string) (string, error) {
	output, err := runGit(path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// IsWorktree checks whether the given path is a secondary Git worktree
// (as opposed to the main working directory). Worktrees have a .git FILE
// containing a "gitdir:" pointer; the main checkout has a .git DIRECTORY.
func (m *Manager) IsWorktree(path string) bool {
	gitPath := filepath.Join(path, ".git")

	// Lstat: .git being a symlink should not be followed into a directory.
	info, err := os.Lstat(gitPath)
	if err != nil || info.IsDir() {
		return false
	}

	content, err := os.ReadFile(gitPath)
	if err != nil {
		return false
	}
	return strings.HasPrefix(string(content), "gitdir:")
}

// parsePorcelain parses `git worktree list --porcelain` output. Blocks are
// separated by blank lines; within a block each line is a key-value pair or
// a standalone marker ("bare", "detached", "locked").
func parsePorcelain(output string) []Info {
	var worktrees []Info
	var current *Info

	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		if line == "" {
			if current != nil {
				worktrees = append(worktrees, *current)
				current = nil
			}
			continue
		}

		key, value, _ := strings.Cut(line, " ")
		switch key {
		case "worktree":
			current = &Info{Path: value}
		case "HEAD":
			if current != nil {
				current.HEAD = value
			}
		case "branch":
			if current != nil {
				current.Branch = value
			}
		case "bare":
			if current != nil {
				current.IsBare = true
			}
		case "detached":
			if current != nil {
				current.IsDetached = true
			}
		case "locked":
			// "locked" may carry an optional reason; we only track the flag.
			if current != nil {
				current.IsLocked = true
			}
		}
	}

	if current != nil {
		worktrees = append(worktrees, *current)
	}
	return worktrees
}
