package hook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mmr-tortoise/twig/internal/model"
)

// Effect adapts one hook command for a lifecycle phase into the effect
// chain. Hooks never participate in rollback: a command has already run and
// its side effects are the user's to reverse.
type Effect struct {
	Phase  model.LifecyclePhase
	Index  int
	Hook   model.HookCommand
	Runner *Runner
}

// NewEffect builds a hook effect for the given phase and position.
func NewEffect(phase model.LifecyclePhase, index int, h model.HookCommand, runner *Runner) *Effect {
	return &Effect{Phase: phase, Index: index, Hook: h, Runner: runner}
}

// EffectType implements effect.Effect. The identifier carries the phase and
// the hook's position so reports stay readable when a phase has several
// hooks with similar commands.
func (e *Effect) EffectType() string {
	return fmt.Sprintf("hook:%s[%d]", e.Phase, e.Index)
}

// ContinueOnError implements effect.Effect.
func (e *Effect) ContinueOnError() bool {
	return e.Hook.ContinueOnError
}

// CanApply always holds; a hook with an empty command is rejected at config
// load time, not here.
func (e *Effect) CanApply(wctx *model.WorktreeContext) bool {
	return true
}

// workDir picks where the hook runs. Post-remove hooks run after the
// worktree directory is gone, so they fall back to the source root.
func (e *Effect) workDir(wctx *model.WorktreeContext) string {
	if info, err := os.Stat(wctx.WorktreePath); err == nil && info.IsDir() {
		return wctx.WorktreePath
	}
	return wctx.SourcePath
}

// Apply runs the hook and classifies the outcome. Timeouts get their own
// result kind so the report can tell a slow hook from a broken one.
func (e *Effect) Apply(ctx context.Context, wctx *model.WorktreeContext) (model.EffectResult, error) {
	start := time.Now()
	res := model.EffectResult{EffectType: e.EffectType()}

	output, err := e.Runner.Run(ctx, &e.Hook, wctx, e.workDir(wctx))
	res.Duration = time.Since(start)

	switch {
	case errors.Is(err, ErrTimeout):
		res.Kind = model.KindTimeout
		res.Message = err.Error()
		return res, err
	case err != nil:
		res.Kind = model.KindFailure
		res.Message = firstLine(output, err)
		return res, err
	default:
		res.Kind = model.KindSuccess
		res.Message = fmt.Sprintf("ran %s", summarize(e.Hook.Command))
		return res, nil
	}
}

// Rollback is a no-op for hooks.
func (e *Effect) Rollback(ctx context.Context, wctx *model.WorktreeContext) error {
	return nil
}

// firstLine condenses hook output for the report, preferring the command's
// own words over Go's error formatting.
func firstLine(output string, err error) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return err.Error()
	}
	if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return fmt.Sprintf("%s: %s", err.Error(), trimmed)
}

// summarize truncates long command templates for display.
func summarize(command string) string {
	const max = 48
	command = strings.TrimSpace(command)
	if len(command) <= max {
		return command
	}
	return command[:max] + "..."
}
