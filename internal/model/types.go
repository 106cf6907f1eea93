package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// WorktreeContext is the immutable value object assembled once per command
// invocation and consumed by every side effect. It carries the three pieces
/// of information an effect may need: which branch the worktree is on, where
// the worktree lives, and where the source repository root is.
//
// The context is created fresh per command, never mutated, and discarded at
// process exit. Effects receive it by pointer for efficiency but must treat
// it as read-only.
type WorktreeContext struct {
	// Branch is the Git branch name checked out in the worktree.
	Branch string

	// WorktreePath is the absolute filesystem path to the worktree directory.
	// Relative symlink targets are resolved against this path.
	WorktreePath string

	// SourcePath is the absolute filesystem path to the source repository
	// root. Relative symlink sources are resolved against this path.
	SourcePath string
}

// NewWorktreeContext builds a context, normalizing both paths to absolute
// form so that effects never have to reason about the process working
// directory.
func NewWorktreeContext(branch, worktreePath, sourcePath string) (*WorktreeContext, error) {
	absWorktree, err := filepath.Abs(worktreePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve worktree path %q: %w", worktreePath, err)
	}
	absSource, err := filepath.Abs(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source path %q: %w", sourcePath, err)
	}
	return &WorktreeContext{
		Branch:       branch,
		WorktreePath: absWorktree,
		SourcePath:   absSource,
	}, nil
}

// LifecyclePhase identifies the point in a worktree lifecycle operation at
// which a group of side effects runs. Effects are grouped by phase; within
// a phase, insertion order is execution order, because later hooks may
// depend on files created by earlier symlink effects.
type LifecyclePhase string

const (
	// PhasePreAdd runs before the git worktree is created. The worktree
	// directory does not exist yet during this phase.
	PhasePreAdd LifecyclePhase = "pre-add"

	// PhasePostAdd runs after the git worktree has been created. This is
	// where symlink mappings and setup hooks normally run.
	PhasePostAdd LifecyclePhase = "post-add"

	// PhasePreRemove runs before the git worktree is removed. Managed
	// symlinks are unlinked here so git does not refuse the removal.
	PhasePreRemove LifecyclePhase = "pre-remove"

	// PhasePostRemove runs after the git worktree has been removed.
	PhasePostRemove LifecyclePhase = "post-remove"
)

// String returns the string representation of the phase,
// satisfying fmt.Stringer for log and report output.
func (p LifecyclePhase) String() string {
	return string(p)
}

// IsValid checks whether the LifecyclePhase is one of the four
// predefined phases.
func (p LifecyclePhase) IsValid() bool {
	switch p {
	case PhasePreAdd, PhasePostAdd, PhasePreRemove, PhasePostRemove:
		return true
	default:
		return false
	}
}

// AllPhases lists the phases in their canonical lifecycle order.
// Add operations run pre-add then post-add; remove operations run
// pre-remove then post-remove.
func AllPhases() []LifecyclePhase {
	return []LifecyclePhase{PhasePreAdd, PhasePostAdd, PhasePreRemove, PhasePostRemove}
}

// MappingType is the strategy used to materialize a shared-file
// relationship into a worktree: a native symbolic link or a full copy.
type MappingType string

const (
	// MappingSymlink shares the file content between the source repository
	// and the worktree via a symbolic link. This is the default.
	MappingSymlink MappingType = "symlink"

	// MappingCopy duplicates the file into the worktree so each environment
	// owns an independent copy.
	MappingCopy MappingType = "copy"
)

// String returns the string representation of the mapping type.
func (m MappingType) String() string {
	return string(m)
}

// IsValid checks whether the MappingType is a known strategy.
func (m MappingType) IsValid() bool {
	return m == MappingSymlink || m == MappingCopy
}

// ParseMappingType converts a string to a MappingType. The empty string
// maps to the default (symlink), matching the configuration loader's
// defaulting behavior.
func ParseMappingType(s string) (MappingType, error) {
	if s == "" {
		return MappingSymlink, nil
	}
	m := MappingType(strings.ToLower(s))
	if !m.IsValid() {
		return "", fmt.Errorf("invalid mapping type: %q (valid: symlink, copy)", s)
	}
	return m, nil
}

// ErrorHandling is the chain-level policy selecting whether a non-continue
// effect failure halts the remaining effects in a phase.
type ErrorHandling string

const (
	// ErrorHandlingAbort stops the phase at the first failing effect whose
	// definition does not allow continuation. This is the default.
	ErrorHandlingAbort ErrorHandling = "abort"

	// ErrorHandlingContinue logs failures and proceeds to the next effect
	// regardless.
	ErrorHandlingContinue ErrorHandling = "continue"
)

// String returns the string representation of the policy.
func (e ErrorHandling) String() string {
	return string(e)
}

// IsValid checks whether the ErrorHandling value is a known policy.
func (e ErrorHandling) IsValid() bool {
	return e == ErrorHandlingAbort || e == ErrorHandlingContinue
}

// ParseErrorHandling converts a string to an ErrorHandling policy.
// The empty string maps to the default (abort).
func ParseErrorHandling(s string) (ErrorHandling, error) {
	if s == "" {
		return ErrorHandlingAbort, nil
	}
	e := ErrorHandling(strings.ToLower(s))
	if !e.IsValid() {
		return "", fmt.Errorf("invalid error handling policy: %q (valid: abort, continue)", s)
	}
	return e, nil
}

// SymlinkMapping declares one shared-file relationship between the source
// repository and each worktree. It is loaded from configuration and
// immutable afterwards.
type SymlinkMapping struct {
	// Source is the file or directory to share. Relative paths are resolved
	// against the source repository root; absolute paths are used as-is.
	// The source may reference context placeholders (e.g. "{branch}").
	Source string `yaml:"source" json:"source"`

	// Target is where the link or copy is created, always relative to the
	// worktree root. Absolute targets are rejected at load time.
	Target string `yaml:"target" json:"target"`

	// Type selects symlink or copy materialization. Defaults to symlink.
	Type MappingType `yaml:"type,omitempty" json:"type,omitempty"`

	// SkipIfExists makes the effect a no-op when the target already exists,
	// instead of replacing it.
	SkipIfExists bool `yaml:"skip_if_exists,omitempty" json:"skip_if_exists,omitempty"`

	// Description is an optional human-readable note shown in status output.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Validate checks the mapping for configuration errors. The target must be
// a relative path so it can be resolved inside the worktree; an absolute
// target could escape the worktree and clobber unrelated files.
func (m *SymlinkMapping) Validate() error {
	if m.Source == "" {
		return fmt.Errorf("symlink mapping: source must not be empty")
	}
	if m.Target == "" {
		return fmt.Errorf("symlink mapping: target must not be empty")
	}
	if filepath.IsAbs(m.Target) {
		return fmt.Errorf("symlink mapping: target %q must be relative to the worktree root", m.Target)
	}
	if !m.Type.IsValid() {
		return fmt.Errorf("symlink mapping: invalid type %q (valid: symlink, copy)", m.Type)
	}
	return nil
}

// DefaultHookTimeout is the timeout applied to hook commands that do not
// configure their own.
const DefaultHookTimeout = 60 * time.Second

// HookCommand declares one shell command to run at a lifecycle phase.
// It is loaded from configuration and immutable afterwards.
type HookCommand struct {
	// Command is the command template. Recognized placeholders ({branch},
	// {worktree_path}, {source_path}) are substituted with WorktreeContext
	// values before execution; unrecognized placeholders are left verbatim.
	Command string `yaml:"command" json:"command"`

	// Args is an optional explicit argument list. When present the process
	// is spawned directly without a shell, which avoids the shell-injection
	// surface of template interpolation. Each argument is also substituted.
	Args []string `yaml:"args,omitempty" json:"args,omitempty"`

	// Env holds additional environment variables for the hook process,
	// layered on top of the parent environment and the TWIG_* context vars.
	Env map[string]string `yaml:"env,omitempty" json:"env,omitempty"`

	// TimeoutSeconds bounds the hook's execution time. Zero or negative
	// values fall back to DefaultHookTimeout.
	TimeoutSeconds int `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// ContinueOnError lets the phase proceed past this hook even when it
	// fails or times out.
	ContinueOnError bool `yaml:"continue_on_error,omitempty" json:"continue_on_error,omitempty"`
}

// Timeout returns the effective timeout for the hook, applying the default
// when the configured value is absent or nonsensical.
func (h *HookCommand) Timeout() time.Duration {
	if h.TimeoutSeconds <= 0 {
		return DefaultHookTimeout
	}
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// Validate checks the hook command for configuration errors.
func (h *HookCommand) Validate() error {
	if strings.TrimSpace(h.Command) == "" {
		return fmt.Errorf("hook command: command must not be empty")
	}
	return nil
}

// ResultKind classifies the outcome of one effect application.
type ResultKind string

const (
	// KindSuccess means the effect applied cleanly. A recoverable internal
	// fallback (e.g. symlink → copy) still reports success, with the
	// fallback noted in the result message.
	KindSuccess ResultKind = "success"

	// KindSkipped means the effect's precondition did not hold (missing
	// source, skip_if_exists target present) and nothing was attempted.
	// A skipped effect always produces a result, never silence.
	KindSkipped ResultKind = "skipped"

	// KindWarning means the effect failed but was declared non-essential;
	// the phase continued and the command still reports overall success.
	KindWarning ResultKind = "warning"

	// KindFailure means the effect failed. Whether the phase continues is
	// governed by the effect's continue_on_error and the chain policy.
	KindFailure ResultKind = "failure"

	// KindTimeout is a hook-specific failure: the command exceeded its
	// timeout and its process tree was terminated. Kept distinct from
	// KindFailure so reports can tell a slow hook from a broken one.
	KindTimeout ResultKind = "timeout"
)

// String returns the string representation of the result kind.
func (k ResultKind) String() string {
	return string(k)
}

// IsFailure reports whether the kind represents a failed application
/// (failure or timeout). Warnings are not failures: the effect failed but
// the command outcome is unaffected.
func (k ResultKind) IsFailure() bool {
	return k == KindFailure || k == KindTimeout
}

// EffectResult records the outcome of one effect application. Every effect
// that the chain visits produces exactly one result, including effects
// whose precondition check failed (those yield KindSkipped).
type EffectResult struct {
	// EffectType identifies the effect implementation (e.g. "symlink",
	// "hook") for reporting.
	EffectType string `json:"effectType"`

	// Kind classifies the outcome.
	Kind ResultKind `json:"kind"`

	// Message is a human-readable description of what happened, including
	// fallback annotations and captured error text.
	Message string `json:"message,omitempty"`

	// Duration is how long the application took.
	Duration time.Duration `json:"duration"`
}

// Success reports whether the effect outcome counts as successful for the
// purpose of the overall command result. Skips and warnings count as
// success; failures and timeouts do not.
func (r *EffectResult) Success() bool {
	return !r.Kind.IsFailure()
}

// TargetState classifies the live filesystem state of one configured
// mapping target, as re-derived by the status command. It is never
// persisted.
type TargetState string

const (
	// TargetOk means the target exists and matches its configured
	// materialization (a symlink pointing at the source, or a present copy).
	TargetOk TargetState = "ok"

	// TargetMissing means the target does not exist in the worktree.
	TargetMissing TargetState = "missing"

	// TargetWarning means the target exists but does not match the
	// configuration (e.g. a symlink pointing somewhere else, or a regular
	// file where a symlink was configured).
	TargetWarning TargetState = "warning"

	// TargetError means the target state could not be determined.
	TargetError TargetState = "error"
)

// String returns the string representation of the target state.
func (s TargetState) String() string {
	return string(s)
}

// MappingStatus pairs one configured mapping with its live target state.
type MappingStatus struct {
	Mapping SymlinkMapping `json:"mapping"`
	State   TargetState    `json:"state"`
	Detail  string         `json:"detail,omitempty"`
}
