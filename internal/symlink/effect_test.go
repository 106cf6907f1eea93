package symlink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/twig/internal/model"
)

// failingLinker simulates a platform where symlink creation is denied, which
// should trigger the copy fallback.
type failingLinker struct{}

func (failingLinker) CreateLink(source, target string) error {
	return os.ErrPermission
}

func (failingLinker) RemoveLink(path string) error {
	return os.Remove(path)
}

// The probe succeeded but individual link calls fail, as happens on
// filesystems without symlink support mounted below a capable one.
func (failingLinker) SupportsNativeSymlink() bool { return true }

// brokenLinker fails with an error that is not a fallback condition.
type brokenLinker struct{}

func (brokenLinker) CreateLink(source, target string) error {
	return errors.New("disk on fire")
}

func (brokenLinker) RemoveLink(path string) error { return nil }

func (brokenLinker) SupportsNativeSymlink() bool { return true }

func setupContext(t *testing.T) *model.WorktreeContext {
	t.Helper()
	base := t.TempDir()
	source := filepath.Join(base, "repo")
	worktree := filepath.Join(base, "worktrees", "feature")
	require.NoError(t, os.MkdirAll(source, 0o755))
	require.NoError(t, os.MkdirAll(worktree, 0o755))

	wctx, err := model.NewWorktreeContext("feature", worktree, source)
	require.NoError(t, err)
	return wctx
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestEffectApplyCreatesSymlink(t *testing.T) {
	wctx := setupContext(t)
	writeFile(t, filepath.Join(wctx.SourcePath, ".env"), "SECRET=1")

	eff := NewEffect(model.SymlinkMapping{Source: ".env", Target: ".env"}, NewLinker(), false)
	require.True(t, eff.CanApply(wctx))

	res, err := eff.Apply(context.Background(), wctx)
	require.NoError(t, err)
	assert.Equal(t, model.KindSuccess, res.Kind)

	target := filepath.Join(wctx.WorktreePath, ".env")
	info, err := os.Lstat(target)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)

	dest, err := os.Readlink(target)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wctx.SourcePath, ".env"), dest)
}

func TestEffectApplyIsIdempotent(t *testing.T) {
	wctx := setupContext(t)
	writeFile(t, filepath.Join(wctx.SourcePath, ".env"), "SECRET=1")

	eff := NewEffect(model.SymlinkMapping{Source: ".env", Target: ".env"}, NewLinker(), false)

	for i := 0; i < 2; i++ {
		res, err := eff.Apply(context.Background(), wctx)
		require.NoError(t, err)
		assert.Equal(t, model.KindSuccess, res.Kind)
	}

	dest, err := os.Readlink(filepath.Join(wctx.WorktreePath, ".env"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wctx.SourcePath, ".env"), dest)
}

func TestEffectSkipIfExists(t *testing.T) {
	wctx := setupContext(t)
	writeFile(t, filepath.Join(wctx.SourcePath, ".env"), "shared")
	writeFile(t, filepath.Join(wctx.WorktreePath, ".env"), "local override")

	eff := NewEffect(model.SymlinkMapping{Source: ".env", Target: ".env", SkipIfExists: true}, NewLinker(), false)
	res, err := eff.Apply(context.Background(), wctx)
	require.NoError(t, err)
	assert.Equal(t, model.KindSkipped, res.Kind)

	content, err := os.ReadFile(filepath.Join(wctx.WorktreePath, ".env"))
	require.NoError(t, err)
	assert.Equal(t, "local override", string(content))
}

func TestEffectMissingSourceCannotApply(t *testing.T) {
	wctx := setupContext(t)
	eff := NewEffect(model.SymlinkMapping{Source: "does-not-exist", Target: "x"}, NewLinker(), false)
	assert.False(t, eff.CanApply(wctx))
}

func TestEffectCopyMode(t *testing.T) {
	wctx := setupContext(t)
	writeFile(t, filepath.Join(wctx.SourcePath, "config", "local.yaml"), "key: value\n")

	eff := NewEffect(model.SymlinkMapping{
		Source: "config/local.yaml",
		Target: "config/local.yaml",
		Type:   model.MappingCopy,
	}, NewLinker(), false)

	res, err := eff.Apply(context.Background(), wctx)
	require.NoError(t, err)
	assert.Equal(t, model.KindSuccess, res.Kind)

	target := filepath.Join(wctx.WorktreePath, "config", "local.yaml")
	info, err := os.Lstat(target)
	require.NoError(t, err)
	assert.Zero(t, info.Mode()&os.ModeSymlink)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "key: value\n", string(content))
}

func TestEffectCopyModeDirectory(t *testing.T) {
	wctx := setupContext(t)
	writeFile(t, filepath.Join(wctx.SourcePath, "certs", "dev.pem"), "PEM")
	writeFile(t, filepath.Join(wctx.SourcePath, "certs", "inner", "ca.pem"), "CA")

	eff := NewEffect(model.SymlinkMapping{Source: "certs", Target: "certs", Type: model.MappingCopy}, NewLinker(), false)
	res, err := eff.Apply(context.Background(), wctx)
	require.NoError(t, err)
	assert.Equal(t, model.KindSuccess, res.Kind)

	content, err := os.ReadFile(filepath.Join(wctx.WorktreePath, "certs", "inner", "ca.pem"))
	require.NoError(t, err)
	assert.Equal(t, "CA", string(content))
}

func TestEffectFallsBackToCopy(t *testing.T) {
	wctx := setupContext(t)
	writeFile(t, filepath.Join(wctx.SourcePath, ".env"), "SECRET=1")

	eff := NewEffect(model.SymlinkMapping{Source: ".env", Target: ".env"}, failingLinker{}, false)
	res, err := eff.Apply(context.Background(), wctx)
	require.NoError(t, err)
	assert.Equal(t, model.KindSuccess, res.Kind)
	assert.Contains(t, res.Message, "fallback: copy used")

	target := filepath.Join(wctx.WorktreePath, ".env")
	info, err := os.Lstat(target)
	require.NoError(t, err)
	assert.Zero(t, info.Mode()&os.ModeSymlink)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "SECRET=1", string(content))
}

// noNativeLinker models a platform where the startup probe already
// determined symlinks are unavailable.
type noNativeLinker struct{}

func (noNativeLinker) CreateLink(source, target string) error {
	return errors.New("CreateLink must not be called when native symlinks are unsupported")
}

func (noNativeLinker) RemoveLink(path string) error { return os.Remove(path) }

func (noNativeLinker) SupportsNativeSymlink() bool { return false }

func TestEffectCopiesDirectlyWithoutNativeSupport(t *testing.T) {
	wctx := setupContext(t)
	writeFile(t, filepath.Join(wctx.SourcePath, ".env"), "SECRET=1")

	eff := NewEffect(model.SymlinkMapping{Source: ".env", Target: ".env"}, noNativeLinker{}, false)
	res, err := eff.Apply(context.Background(), wctx)
	require.NoError(t, err)
	assert.Equal(t, model.KindSuccess, res.Kind)
	assert.Contains(t, res.Message, "fallback: copy used")

	content, err := os.ReadFile(filepath.Join(wctx.WorktreePath, ".env"))
	require.NoError(t, err)
	assert.Equal(t, "SECRET=1", string(content))
}

func TestEffectNonFallbackErrorFails(t *testing.T) {
	wctx := setupContext(t)
	writeFile(t, filepath.Join(wctx.SourcePath, ".env"), "SECRET=1")

	eff := NewEffect(model.SymlinkMapping{Source: ".env", Target: ".env"}, brokenLinker{}, false)
	res, err := eff.Apply(context.Background(), wctx)
	require.Error(t, err)
	assert.Equal(t, model.KindFailure, res.Kind)
}

func TestEffectDryRunTouchesNothing(t *testing.T) {
	wctx := setupContext(t)
	writeFile(t, filepath.Join(wctx.SourcePath, ".env"), "SECRET=1")

	eff := NewEffect(model.SymlinkMapping{Source: ".env", Target: ".env"}, NewLinker(), true)
	res, err := eff.Apply(context.Background(), wctx)
	require.NoError(t, err)
	assert.Equal(t, model.KindSuccess, res.Kind)

	_, err = os.Lstat(filepath.Join(wctx.WorktreePath, ".env"))
	assert.True(t, os.IsNotExist(err))
}

func TestEffectPlaceholderExpansion(t *testing.T) {
	wctx := setupContext(t)
	writeFile(t, filepath.Join(wctx.SourcePath, "envs", "feature.env"), "BRANCH=feature")

	eff := NewEffect(model.SymlinkMapping{Source: "envs/{branch}.env", Target: ".env"}, NewLinker(), false)
	require.True(t, eff.CanApply(wctx))

	res, err := eff.Apply(context.Background(), wctx)
	require.NoError(t, err)
	assert.Equal(t, model.KindSuccess, res.Kind)

	dest, err := os.Readlink(filepath.Join(wctx.WorktreePath, ".env"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wctx.SourcePath, "envs", "feature.env"), dest)
}

func TestEffectRollbackRemovesOnlySymlinks(t *testing.T) {
	wctx := setupContext(t)
	writeFile(t, filepath.Join(wctx.SourcePath, ".env"), "SECRET=1")

	linked := NewEffect(model.SymlinkMapping{Source: ".env", Target: ".env"}, NewLinker(), false)
	_, err := linked.Apply(context.Background(), wctx)
	require.NoError(t, err)
	require.NoError(t, linked.Rollback(context.Background(), wctx))
	_, err = os.Lstat(filepath.Join(wctx.WorktreePath, ".env"))
	assert.True(t, os.IsNotExist(err))

	copied := NewEffect(model.SymlinkMapping{Source: ".env", Target: "copy.env", Type: model.MappingCopy}, NewLinker(), false)
	_, err = copied.Apply(context.Background(), wctx)
	require.NoError(t, err)
	require.NoError(t, copied.Rollback(context.Background(), wctx))
	_, err = os.Lstat(filepath.Join(wctx.WorktreePath, "copy.env"))
	assert.NoError(t, err, "copies must survive rollback")
}

func TestRemoveEffectRemovesSymlink(t *testing.T) {
	wctx := setupContext(t)
	writeFile(t, filepath.Join(wctx.SourcePath, ".env"), "SECRET=1")

	mapping := model.SymlinkMapping{Source: ".env", Target: ".env"}
	_, err := NewEffect(mapping, NewLinker(), false).Apply(context.Background(), wctx)
	require.NoError(t, err)

	res, err := NewRemoveEffect(mapping, NewLinker(), false).Apply(context.Background(), wctx)
	require.NoError(t, err)
	assert.Equal(t, model.KindSuccess, res.Kind)

	_, err = os.Lstat(filepath.Join(wctx.WorktreePath, ".env"))
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveEffectPreservesCopies(t *testing.T) {
	wctx := setupContext(t)
	writeFile(t, filepath.Join(wctx.SourcePath, "local.yaml"), "key: value")

	mapping := model.SymlinkMapping{Source: "local.yaml", Target: "local.yaml", Type: model.MappingCopy}
	_, err := NewEffect(mapping, NewLinker(), false).Apply(context.Background(), wctx)
	require.NoError(t, err)

	res, err := NewRemoveEffect(mapping, NewLinker(), false).Apply(context.Background(), wctx)
	require.NoError(t, err)
	assert.Equal(t, model.KindSkipped, res.Kind)

	_, err = os.Lstat(filepath.Join(wctx.WorktreePath, "local.yaml"))
	assert.NoError(t, err)
}

func TestRemoveEffectSkipsForeignFiles(t *testing.T) {
	wctx := setupContext(t)
	writeFile(t, filepath.Join(wctx.WorktreePath, ".env"), "user made this")

	mapping := model.SymlinkMapping{Source: ".env", Target: ".env"}
	res, err := NewRemoveEffect(mapping, NewLinker(), false).Apply(context.Background(), wctx)
	require.NoError(t, err)
	assert.Equal(t, model.KindSkipped, res.Kind)

	_, err = os.Lstat(filepath.Join(wctx.WorktreePath, ".env"))
	assert.NoError(t, err)
}

func TestRemoveEffectToleratesErrors(t *testing.T) {
	mapping := model.SymlinkMapping{Source: ".env", Target: ".env"}
	assert.True(t, NewRemoveEffect(mapping, NewLinker(), false).ContinueOnError())
}

func TestStatus(t *testing.T) {
	wctx := setupContext(t)
	writeFile(t, filepath.Join(wctx.SourcePath, ".env"), "SECRET=1")
	writeFile(t, filepath.Join(wctx.SourcePath, "local.yaml"), "key: value")

	linkMapping := model.SymlinkMapping{Source: ".env", Target: ".env"}
	copyMapping := model.SymlinkMapping{Source: "local.yaml", Target: "local.yaml", Type: model.MappingCopy}

	t.Run("missing target", func(t *testing.T) {
		st := Status(linkMapping, wctx)
		assert.Equal(t, model.TargetMissing, st.State)
	})

	t.Run("healthy symlink", func(t *testing.T) {
		_, err := NewEffect(linkMapping, NewLinker(), false).Apply(context.Background(), wctx)
		require.NoError(t, err)
		st := Status(linkMapping, wctx)
		assert.Equal(t, model.TargetOk, st.State)
	})

	t.Run("healthy copy", func(t *testing.T) {
		_, err := NewEffect(copyMapping, NewLinker(), false).Apply(context.Background(), wctx)
		require.NoError(t, err)
		st := Status(copyMapping, wctx)
		assert.Equal(t, model.TargetOk, st.State)
	})

	t.Run("regular file where symlink expected", func(t *testing.T) {
		target := filepath.Join(wctx.WorktreePath, ".env")
		require.NoError(t, os.Remove(target))
		writeFile(t, target, "plain file")
		st := Status(linkMapping, wctx)
		assert.Equal(t, model.TargetWarning, st.State)
	})

	t.Run("symlink pointing elsewhere", func(t *testing.T) {
		target := filepath.Join(wctx.WorktreePath, ".env")
		require.NoError(t, os.Remove(target))
		writeFile(t, filepath.Join(wctx.SourcePath, "other.env"), "other")
		require.NoError(t, os.Symlink(filepath.Join(wctx.SourcePath, "other.env"), target))
		st := Status(linkMapping, wctx)
		assert.Equal(t, model.TargetWarning, st.State)
		assert.Contains(t, st.Detail, "points at")
	})

	t.Run("dangling symlink", func(t *testing.T) {
		target := filepath.Join(wctx.WorktreePath, "dangling")
		require.NoError(t, os.Symlink(filepath.Join(wctx.SourcePath, "dangling"), target))
		st := Status(model.SymlinkMapping{Source: "dangling", Target: "dangling"}, wctx)
		assert.Equal(t, model.TargetError, st.State)
	})
}

func TestCopyPathPreservesPermissions(t *testing.T) {
	base := t.TempDir()
	source := filepath.Join(base, "script.sh")
	require.NoError(t, os.WriteFile(source, []byte("#!/bin/sh\n"), 0o755))

	target := filepath.Join(base, "out.sh")
	require.NoError(t, CopyPath(source, target))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}
