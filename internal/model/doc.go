// Package model defines the domain types and value objects for the
// twig CLI.
//
// This package contains pure data structures with no external dependencies.
// The central entities are WorktreeContext (the immutable per-invocation
// context consumed by every side effect), the effect definition types
// (SymlinkMapping, HookCommand) produced by the configuration loader, and
// EffectResult, the per-effect outcome record collected into reports.
//
// Nothing in this package is ever persisted; side-effect state is always
// re-derived from the live filesystem (see the status command).
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
