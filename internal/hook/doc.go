// Package hook runs user-configured lifecycle commands around worktree
// operations. Commands are executed with the worktree context exported as
// TWIG_* environment variables, placeholders substituted into the command
// line, and a per-hook timeout that terminates the whole process tree.
package hook
