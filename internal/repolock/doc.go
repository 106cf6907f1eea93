// Package repolock serializes mutating commands across every worktree and
// checkout of one repository. The lock is an advisory file lock on a well
// known path under the shared git common directory, so concurrent
// invocations from different worktrees of the same repo contend on the
// same file.
package repolock
