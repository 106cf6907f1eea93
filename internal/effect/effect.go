package effect

import (
	"context"

	"github.com/mmr-tortoise/twig/internal/model"
)

// Effect is the contract every side effect implements.
//
// CanApply is a cheap precondition check: when it returns false the chain
// records a skipped result and moves on without calling Apply. This is how
// missing optional shared files avoid blocking worktree creation.
//
// Apply performs the effect. The returned EffectResult must be populated
// even on failure; a non-nil error marks the application as failed and
// feeds the chain's abort/continue decision.
//
// Rollback undoes a previously applied effect where that is possible. It
// is best-effort: implementations that cannot safely undo (hook commands,
// copies the user may have edited) return nil without acting.
type Effect interface {
	// EffectType identifies the effect implementation for reporting
	// (e.g. "symlink", "copy", "hook").
	EffectType() string

	// CanApply reports whether the effect's precondition holds.
	CanApply(wctx *model.WorktreeContext) bool

	// Apply performs the effect against the given worktree context.
	Apply(ctx context.Context, wctx *model.WorktreeContext) (model.EffectResult, error)

	// Rollback best-effort undoes the effect.
	Rollback(ctx context.Context, wctx *model.WorktreeContext) error

	// ContinueOnError reports whether a failure of this effect lets the
	// phase proceed (the failure is demoted to a warning) even under the
	// abort policy.
	ContinueOnError() bool
}

// Options carries the global execution toggles, injected explicitly at
// construction time rather than read from environment variables.
type Options struct {
	// DryRun makes every effect report what it would do without touching
	// the filesystem or spawning processes.
	DryRun bool

	// Logf receives verbose progress lines. Nil disables logging; the
	// engine never writes to stdout/stderr itself.
	Logf func(format string, args ...any)
}

func (o Options) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}
