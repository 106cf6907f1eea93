package hook

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/twig/internal/model"
)

func TestEffectSuccess(t *testing.T) {
	skipOnWindows(t)
	wctx := testContext(t)

	eff := NewEffect(model.PhasePostAdd, 0, model.HookCommand{Command: "true"}, NewRunner(false))
	res, err := eff.Apply(context.Background(), wctx)
	require.NoError(t, err)
	assert.Equal(t, model.KindSuccess, res.Kind)
	assert.True(t, res.Success())
}

func TestEffectFailureKind(t *testing.T) {
	skipOnWindows(t)
	wctx := testContext(t)

	eff := NewEffect(model.PhasePostAdd, 1, model.HookCommand{Command: "echo no such tool >&2; exit 1"}, NewRunner(false))
	res, err := eff.Apply(context.Background(), wctx)
	require.Error(t, err)
	assert.Equal(t, model.KindFailure, res.Kind)
	assert.Contains(t, res.Message, "no such tool")
}

func TestEffectTimeoutKind(t *testing.T) {
	skipOnWindows(t)
	wctx := testContext(t)

	eff := NewEffect(model.PhasePostAdd, 0, model.HookCommand{Command: "sleep 10", TimeoutSeconds: 1}, NewRunner(false))
	res, err := eff.Apply(context.Background(), wctx)
	require.Error(t, err)
	assert.Equal(t, model.KindTimeout, res.Kind)
	assert.True(t, res.Kind.IsFailure())
}

func TestEffectContinueOnError(t *testing.T) {
	tolerant := NewEffect(model.PhasePostAdd, 0, model.HookCommand{Command: "x", ContinueOnError: true}, NewRunner(false))
	strict := NewEffect(model.PhasePostAdd, 1, model.HookCommand{Command: "x"}, NewRunner(false))
	assert.True(t, tolerant.ContinueOnError())
	assert.False(t, strict.ContinueOnError())
}

func TestEffectWorkDirFallsBackToSource(t *testing.T) {
	skipOnWindows(t)
	wctx := testContext(t)
	require.NoError(t, os.RemoveAll(wctx.WorktreePath))

	eff := NewEffect(model.PhasePostRemove, 0, model.HookCommand{Command: "pwd"}, NewRunner(false))
	assert.Equal(t, wctx.SourcePath, eff.workDir(wctx))

	res, err := eff.Apply(context.Background(), wctx)
	require.NoError(t, err)
	assert.Equal(t, model.KindSuccess, res.Kind)
}

func TestHooksRunInDeclarationOrder(t *testing.T) {
	skipOnWindows(t)
	wctx := testContext(t)
	runner := NewRunner(false)

	for i, marker := range []string{"one", "two", "three"} {
		h := model.HookCommand{Command: "echo " + marker + " >> order.log"}
		res, err := NewEffect(model.PhasePostAdd, i, h, runner).Apply(context.Background(), wctx)
		require.NoError(t, err)
		require.Equal(t, model.KindSuccess, res.Kind)
	}

	content, err := os.ReadFile(wctx.WorktreePath + "/order.log")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", string(content))
}

func TestEffectTypeNamesPhaseAndPosition(t *testing.T) {
	eff := NewEffect(model.PhasePreRemove, 2, model.HookCommand{Command: "true"}, NewRunner(false))
	assert.Equal(t, "hook:pre-remove[2]", eff.EffectType())
}

func TestSummarizeTruncates(t *testing.T) {
	long := strings.Repeat("a", 100)
	assert.Len(t, summarize(long), 51)
	assert.Equal(t, "short", summarize("short"))
}
