package model

import "strings"

// Placeholder names recognized in effect definition templates (hook
// commands, hook arguments, and symlink sources). The set is fixed and
// enumerated: substitution never consults the environment or any dynamic
// source, which keeps it pure and independently testable.
const (
	PlaceholderBranch       = "{branch}"
	PlaceholderWorktreePath = "{worktree_path}"
	PlaceholderSourcePath   = "{source_path}"
)

// ExpandPlaceholders substitutes the recognized placeholders in s with the
// corresponding WorktreeContext values. Unrecognized placeholders are left
// verbatim so a template written for a newer twig version does not break
// on an older one.
func ExpandPlaceholders(s string, ctx *WorktreeContext) string {
	r := strings.NewReplacer(
		PlaceholderBranch, ctx.Branch,
		PlaceholderWorktreePath, ctx.WorktreePath,
		PlaceholderSourcePath, ctx.SourcePath,
	)
	return r.Replace(s)
}

// Definitions is the validated, immutable set of effect definitions one
// command operates on, as produced by the configuration loader. The engine
// treats it as opaque input: mappings and hooks are executed in the order
// they appear here.
type Definitions struct {
	// Mappings are the shared-file relationships materialized in post-add
	// and unlinked in pre-remove, in declaration order.
	Mappings []SymlinkMapping

	// Hooks groups hook commands by lifecycle phase, in declaration order
	// within each phase.
	Hooks map[LifecyclePhase][]HookCommand

	// Policy is the chain-level abort/continue policy.
	Policy ErrorHandling
}
