// Package effect implements the side-effect orchestration engine.
//
// An Effect is anything that runs around a worktree lifecycle operation:
// materializing a shared file (internal/symlink) or executing a hook
// command (internal/hook). Effects are registered on a Chain grouped by
// lifecycle phase; within a phase, registration order is execution order,
// because later hooks may depend on files created by earlier symlink
// effects. Execution is strictly sequential and single-threaded.
//
// The chain enforces the abort/continue policy: an effect failure either
// aborts the remaining effects of the phase or is demoted to a warning,
// depending on the effect's own continue_on_error declaration and the
// chain-level policy. Every effect the chain visits produces exactly one
// EffectResult: an effect whose precondition fails yields a skipped
// result, never silence.
//
// The Report type aggregates phase results across one command invocation.
// The git-primitive outcome and the effect outcomes are reported
// independently: a successful worktree creation with failed non-critical
// effects is still an overall success with warnings surfaced.
package effect
