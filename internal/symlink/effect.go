package symlink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mmr-tortoise/twig/internal/model"
)

// Effect materializes a single file mapping inside a worktree, either as a
// symlink pointing back into the source checkout or as a copy.
type Effect struct {
	Mapping model.SymlinkMapping
	Linker  Linker
	DryRun  bool
}

// NewEffect builds an Effect for one mapping.
func NewEffect(mapping model.SymlinkMapping, linker Linker, dryRun bool) *Effect {
	return &Effect{Mapping: mapping, Linker: linker, DryRun: dryRun}
}

// EffectType implements effect.Effect.
func (e *Effect) EffectType() string {
	return fmt.Sprintf("link:%s", e.Mapping.Target)
}

// ContinueOnError implements effect.Effect. Mapping failures abort the
// chain unless the configured policy says otherwise.
func (e *Effect) ContinueOnError() bool { return false }

// resolvePaths expands placeholders in the mapping and returns the absolute
// source and target paths for the given worktree.
func (e *Effect) resolvePaths(wctx *model.WorktreeContext) (source, target string) {
	source = model.ExpandPlaceholders(e.Mapping.Source, wctx)
	if !filepath.IsAbs(source) {
		source = filepath.Join(wctx.SourcePath, source)
	}
	target = filepath.Join(wctx.WorktreePath, model.ExpandPlaceholders(e.Mapping.Target, wctx))
	return source, target
}

// CanApply reports whether the mapping's source exists. Mappings with a
// missing source are skipped rather than failed, so a config can list
// optional files like .env without breaking repos that lack them.
func (e *Effect) CanApply(wctx *model.WorktreeContext) bool {
	source, _ := e.resolvePaths(wctx)
	_, err := os.Lstat(source)
	return err == nil
}

// Apply creates the mapping target. Symlink mappings fall back to a copy
// when the platform refuses symlink creation; the result is still a success
// with the fallback noted in its message.
func (e *Effect) Apply(ctx context.Context, wctx *model.WorktreeContext) (model.EffectResult, error) {
	start := time.Now()
	res := model.EffectResult{EffectType: e.EffectType()}
	source, target := e.resolvePaths(wctx)

	if e.Mapping.SkipIfExists {
		if _, err := os.Lstat(target); err == nil {
			res.Kind = model.KindSkipped
			res.Message = fmt.Sprintf("target %s already exists", e.Mapping.Target)
			res.Duration = time.Since(start)
			return res, nil
		}
	}

	if e.DryRun {
		res.Kind = model.KindSuccess
		res.Message = fmt.Sprintf("would link %s -> %s", target, source)
		res.Duration = time.Since(start)
		return res, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		res.Kind = model.KindFailure
		res.Message = err.Error()
		res.Duration = time.Since(start)
		return res, fmt.Errorf("failed to create parent directory for %s: %w", target, err)
	}

	// Replace whatever is already at the target so re-running add against
	// an existing worktree converges on the configured state.
	if _, err := os.Lstat(target); err == nil {
		if err := os.RemoveAll(target); err != nil {
			res.Kind = model.KindFailure
			res.Message = err.Error()
			res.Duration = time.Since(start)
			return res, fmt.Errorf("failed to replace existing target %s: %w", target, err)
		}
	}

	if e.Mapping.Type == model.MappingCopy {
		if err := CopyPath(source, target); err != nil {
			res.Kind = model.KindFailure
			res.Message = err.Error()
			res.Duration = time.Since(start)
			return res, err
		}
		res.Kind = model.KindSuccess
		res.Message = fmt.Sprintf("copied %s", e.Mapping.Target)
		res.Duration = time.Since(start)
		return res, nil
	}

	if !e.Linker.SupportsNativeSymlink() {
		if err := CopyPath(source, target); err != nil {
			res.Kind = model.KindFailure
			res.Message = err.Error()
			res.Duration = time.Since(start)
			return res, fmt.Errorf("symlink unavailable and copy fallback failed for %s: %w", target, err)
		}
		res.Kind = model.KindSuccess
		res.Message = fmt.Sprintf("linked %s (fallback: copy used)", e.Mapping.Target)
		res.Duration = time.Since(start)
		return res, nil
	}

	err := e.Linker.CreateLink(source, target)
	if err != nil && isFallbackError(err) {
		if copyErr := CopyPath(source, target); copyErr != nil {
			res.Kind = model.KindFailure
			res.Message = copyErr.Error()
			res.Duration = time.Since(start)
			return res, fmt.Errorf("symlink unavailable and copy fallback failed for %s: %w", target, copyErr)
		}
		res.Kind = model.KindSuccess
		res.Message = fmt.Sprintf("linked %s (fallback: copy used)", e.Mapping.Target)
		res.Duration = time.Since(start)
		return res, nil
	}
	if err != nil {
		res.Kind = model.KindFailure
		res.Message = err.Error()
		res.Duration = time.Since(start)
		return res, err
	}

	res.Kind = model.KindSuccess
	res.Message = fmt.Sprintf("linked %s", e.Mapping.Target)
	res.Duration = time.Since(start)
	return res, nil
}

// Rollback undoes a previously applied mapping. Only symlinks are removed;
// a copy may hold local edits the user would lose, so copies are left alone.
func (e *Effect) Rollback(ctx context.Context, wctx *model.WorktreeContext) error {
	_, target := e.resolvePaths(wctx)
	info, err := os.Lstat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return nil
	}
	return os.Remove(target)
}

// RemoveEffect cleans up a mapping's target during worktree removal.
type RemoveEffect struct {
	Mapping model.SymlinkMapping
	Linker  Linker
	DryRun  bool
}

// NewRemoveEffect builds a RemoveEffect for one mapping.
func NewRemoveEffect(mapping model.SymlinkMapping, linker Linker, dryRun bool) *RemoveEffect {
	return &RemoveEffect{Mapping: mapping, Linker: linker, DryRun: dryRun}
}

// EffectType implements effect.Effect.
func (e *RemoveEffect) EffectType() string {
	return fmt.Sprintf("unlink:%s", e.Mapping.Target)
}

// ContinueOnError implements effect.Effect. Cleanup problems should not
// block worktree removal, so unlink failures are tolerated.
func (e *RemoveEffect) ContinueOnError() bool { return true }

func (e *RemoveEffect) target(wctx *model.WorktreeContext) string {
	return filepath.Join(wctx.WorktreePath, model.ExpandPlaceholders(e.Mapping.Target, wctx))
}

// CanApply reports whether the target exists at all.
func (e *RemoveEffect) CanApply(wctx *model.WorktreeContext) bool {
	_, err := os.Lstat(e.target(wctx))
	return err == nil
}

// Apply removes the mapping target if it is a symlink. Copied targets are
// preserved: they may contain edits made inside the worktree, and git
// removes the worktree directory afterwards anyway.
func (e *RemoveEffect) Apply(ctx context.Context, wctx *model.WorktreeContext) (model.EffectResult, error) {
	start := time.Now()
	res := model.EffectResult{EffectType: e.EffectType()}
	target := e.target(wctx)

	if e.Mapping.Type == model.MappingCopy {
		res.Kind = model.KindSkipped
		res.Message = fmt.Sprintf("copy target %s preserved", e.Mapping.Target)
		res.Duration = time.Since(start)
		return res, nil
	}

	info, err := os.Lstat(target)
	if err != nil {
		res.Kind = model.KindSkipped
		res.Message = fmt.Sprintf("target %s not present", e.Mapping.Target)
		res.Duration = time.Since(start)
		return res, nil
	}
	if info.Mode()&os.ModeSymlink == 0 {
		res.Kind = model.KindSkipped
		res.Message = fmt.Sprintf("target %s is not a symlink", e.Mapping.Target)
		res.Duration = time.Since(start)
		return res, nil
	}

	if e.DryRun {
		res.Kind = model.KindSuccess
		res.Message = fmt.Sprintf("would remove %s", target)
		res.Duration = time.Since(start)
		return res, nil
	}

	if err := e.Linker.RemoveLink(target); err != nil {
		res.Kind = model.KindFailure
		res.Message = err.Error()
		res.Duration = time.Since(start)
		return res, err
	}

	res.Kind = model.KindSuccess
	res.Message = fmt.Sprintf("removed %s", e.Mapping.Target)
	res.Duration = time.Since(start)
	return res, nil
}

// Rollback is a no-op; recreating a removed link during an aborted removal
// would race with git deleting the worktree directory.
func (e *RemoveEffect) Rollback(ctx context.Context, wctx *model.WorktreeContext) error {
	return nil
}

// Status inspects the live filesystem state of one mapping in a worktree.
// Nothing is cached; the answer reflects the tree as it is right now.
func Status(mapping model.SymlinkMapping, wctx *model.WorktreeContext) model.MappingStatus {
	status := model.MappingStatus{Mapping: mapping}

	source := model.ExpandPlaceholders(mapping.Source, wctx)
	if !filepath.IsAbs(source) {
		source = filepath.Join(wctx.SourcePath, source)
	}
	target := filepath.Join(wctx.WorktreePath, model.ExpandPlaceholders(mapping.Target, wctx))

	info, err := os.Lstat(target)
	if err != nil {
		status.State = model.TargetMissing
		status.Detail = "target does not exist"
		return status
	}

	if mapping.Type == model.MappingCopy {
		if info.Mode()&os.ModeSymlink != 0 {
			status.State = model.TargetWarning
			status.Detail = "expected a copy but found a symlink"
			return status
		}
		status.State = model.TargetOk
		return status
	}

	if info.Mode()&os.ModeSymlink == 0 {
		// A plain file where a symlink was expected usually means the
		// copy fallback fired on this platform.
		status.State = model.TargetWarning
		status.Detail = "target is a regular file (copy fallback)"
		return status
	}

	dest, err := os.Readlink(target)
	if err != nil {
		status.State = model.TargetError
		status.Detail = err.Error()
		return status
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(target), dest)
	}
	if filepath.Clean(dest) != filepath.Clean(source) {
		status.State = model.TargetWarning
		status.Detail = fmt.Sprintf("points at %s instead of %s", dest, source)
		return status
	}
	if _, err := os.Stat(target); err != nil {
		status.State = model.TargetError
		status.Detail = "symlink destination is missing"
		return status
	}

	status.State = model.TargetOk
	return status
}
