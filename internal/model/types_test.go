package model

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecyclePhaseIsValid(t *testing.T) {
	for _, phase := range AllPhases() {
		assert.True(t, phase.IsValid(), "phase %q should be valid", phase)
	}
	assert.False(t, LifecyclePhase("mid-add").IsValid())
	assert.False(t, LifecyclePhase("").IsValid())
}

func TestParseMappingType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    MappingType
		wantErr bool
	}{
		{name: "symlink", input: "symlink", want: MappingSymlink},
		{name: "copy", input: "copy", want: MappingCopy},
		{name: "uppercase is normalized", input: "COPY", want: MappingCopy},
		{name: "empty defaults to symlink", input: "", want: MappingSymlink},
		{name: "unknown type", input: "hardlink", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMappingType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrorHandling(t *testing.T) {
	got, err := ParseErrorHandling("")
	require.NoError(t, err)
	assert.Equal(t, ErrorHandlingAbort, got, "empty string should default to abort")

	got, err = ParseErrorHandling("continue")
	require.NoError(t, err)
	assert.Equal(t, ErrorHandlingContinue, got)

	_, err = ParseErrorHandling("retry")
	assert.Error(t, err)
}

func TestSymlinkMappingValidate(t *testing.T) {
	tests := []struct {
		name    string
		mapping SymlinkMapping
		wantErr string
	}{
		{
			name:    "valid relative mapping",
			mapping: SymlinkMapping{Source: ".env", Target: ".env", Type: MappingSymlink},
		},
		{
			name:    "absolute source is allowed",
			mapping: SymlinkMapping{Source: "/shared/.env", Target: ".env", Type: MappingCopy},
		},
		{
			name:    "empty source",
			mapping: SymlinkMapping{Target: ".env", Type: MappingSymlink},
			wantErr: "source must not be empty",
		},
		{
			name:    "empty target",
			mapping: SymlinkMapping{Source: ".env", Type: MappingSymlink},
			wantErr: "target must not be empty",
		},
		{
			name:    "absolute target is rejected",
			mapping: SymlinkMapping{Source: ".env", Target: "/etc/env", Type: MappingSymlink},
			wantErr: "must be relative",
		},
		{
			name:    "invalid type",
			mapping: SymlinkMapping{Source: ".env", Target: ".env", Type: MappingType("junction")},
			wantErr: "invalid type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mapping.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestHookCommandTimeout(t *testing.T) {
	h := HookCommand{Command: "echo hi"}
	assert.Equal(t, DefaultHookTimeout, h.Timeout(), "zero timeout should use the default")

	h.TimeoutSeconds = 5
	assert.Equal(t, 5*time.Second, h.Timeout())

	h.TimeoutSeconds = -1
	assert.Equal(t, DefaultHookTimeout, h.Timeout(), "negative timeout should use the default")
}

func TestHookCommandValidate(t *testing.T) {
	assert.Error(t, (&HookCommand{Command: "   "}).Validate())
	assert.NoError(t, (&HookCommand{Command: "make setup"}).Validate())
}

func TestEffectResultSuccess(t *testing.T) {
	tests := []struct {
		kind ResultKind
		want bool
	}{
		{KindSuccess, true},
		{KindSkipped, true},
		{KindWarning, true},
		{KindFailure, false},
		{KindTimeout, false},
	}

	for _, tt := range tests {
		r := EffectResult{EffectType: "hook", Kind: tt.kind}
		assert.Equal(t, tt.want, r.Success(), "kind %q", tt.kind)
	}
}

func TestNewWorktreeContextResolvesPaths(t *testing.T) {
	ctx, err := NewWorktreeContext("feature-x", "relative/wt", "relative/repo")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(ctx.WorktreePath),
		"worktree path should be absolute, got %q", ctx.WorktreePath)
	assert.True(t, filepath.IsAbs(ctx.SourcePath),
		"source path should be absolute, got %q", ctx.SourcePath)
	assert.Equal(t, "feature-x", ctx.Branch)
}

func TestCLIErrorUnwrap(t *testing.T) {
	inner := errors.New("permission denied")
	err := WrapCLIError(ExitGitError, "failed to create worktree", inner)

	assert.Equal(t, ExitGitError, err.Code)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "failed to create worktree")
	assert.Contains(t, err.Error(), "permission denied")
}
