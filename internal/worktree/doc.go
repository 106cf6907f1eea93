// Package worktree provides the Git worktree primitive for the twig CLI.
//
// This package wraps Git CLI commands (via os/exec) to create, list,
// remove, and prune Git worktrees. The side-effect engine treats it as an
// external collaborator: it consumes only success/failure and the resulting
// path/branch metadata, never the primitive's internals.
//
// Design decisions:
//   - We shell out to `git` rather than using a Go Git library (e.g., go-git)
//     because worktree operations require full Git CLI compatibility, and
//     go-git's worktree support is limited.
//   - All errors from Git commands are wrapped in model.CLIError with
//     ExitGitError. Git failures are critical: the caller must not run any
//     effect phase after one.
package worktree
