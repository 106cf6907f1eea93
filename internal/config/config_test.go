package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/twig/internal/model"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "twig.yaml", `
files:
  - source: .env
    target: .env
  - source: config/local.yaml
    target: config/local.yaml
    type: copy
    skip_if_exists: true
hooks:
  post_add:
    - command: npm install
      timeout: 300
    - command: echo ready
      continue_on_error: true
  pre_remove:
    - command: docker compose down
error_handling: continue
worktree_base: ../worktrees
branch_prefix: feature/
`)

	s, err := Load(path)
	require.NoError(t, err)

	require.Len(t, s.Files, 2)
	assert.Equal(t, model.MappingCopy, s.Files[1].Type)
	assert.True(t, s.Files[1].SkipIfExists)

	require.Len(t, s.Hooks.PostAdd, 2)
	assert.Equal(t, 300, s.Hooks.PostAdd[0].TimeoutSeconds)
	assert.True(t, s.Hooks.PostAdd[1].ContinueOnError)
	require.Len(t, s.Hooks.PreRemove, 1)

	assert.Equal(t, "continue", s.ErrorHandling)
	assert.Equal(t, "../worktrees", s.WorktreeBase)
	assert.Equal(t, "feature/", s.BranchPrefix)
}

func TestLoadJSONCStripsComments(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "twig.jsonc", `{
  // shared environment file
  "files": [
    {"source": ".env", "target": ".env"},
  ],
  "hooks": {
    "post_add": [
      {"command": "make setup", "timeout": 120},
    ],
  },
}`)

	s, err := Load(path)
	require.NoError(t, err)
	require.Len(t, s.Files, 1)
	require.Len(t, s.Hooks.PostAdd, 1)
	assert.Equal(t, "make setup", s.Hooks.PostAdd[0].Command)
}

func TestLoadDefaultsErrorHandlingToAbort(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "twig.yaml", "files: []\n")
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abort", s.ErrorHandling)
}

func TestLoadRejections(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"absolute target", "twig.yaml", "files:\n  - source: .env\n    target: /etc/passwd\n"},
		{"empty source", "twig.yaml", "files:\n  - source: \"\"\n    target: .env\n"},
		{"empty hook command", "twig.yaml", "hooks:\n  post_add:\n    - command: \"  \"\n"},
		{"bad policy", "twig.yaml", "error_handling: explode\n"},
		{"bad yaml", "twig.yaml", "files: [\n"},
		{"bad extension", "twig.toml", "files = []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, dir, tt.file, tt.content)
			_, err := Load(path)
			require.Error(t, err)

			var cliErr *model.CLIError
			require.True(t, errors.As(err, &cliErr))
			assert.Equal(t, model.ExitConfigError, cliErr.Code)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

func TestFindProjectConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	expected := writeConfig(t, root, "twig.yaml", "files: []\n")

	assert.Equal(t, expected, FindProjectConfig(nested))
}

func TestFindProjectConfigPrefersYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "twig.jsonc", "{}")
	expected := writeConfig(t, dir, "twig.yaml", "files: []\n")

	assert.Equal(t, expected, FindProjectConfig(dir))
}

func TestFindProjectConfigNotFound(t *testing.T) {
	assert.Empty(t, FindProjectConfig(t.TempDir()))
}

func TestMergeProjectWins(t *testing.T) {
	global := &Settings{
		Files:         []model.SymlinkMapping{{Source: "global.env", Target: ".env"}},
		ErrorHandling: "continue",
		BranchPrefix:  "user/",
		Hooks: HookSet{
			PostAdd:   []model.HookCommand{{Command: "global post-add"}},
			PreRemove: []model.HookCommand{{Command: "global pre-remove"}},
		},
	}
	project := &Settings{
		Files: []model.SymlinkMapping{{Source: ".env", Target: ".env"}},
		Hooks: HookSet{
			PostAdd: []model.HookCommand{{Command: "project post-add"}},
		},
		WorktreeBase: "../trees",
	}

	merged := Merge(global, project)

	// Sections set in the project replace the global ones.
	require.Len(t, merged.Files, 1)
	assert.Equal(t, ".env", merged.Files[0].Source)
	require.Len(t, merged.Hooks.PostAdd, 1)
	assert.Equal(t, "project post-add", merged.Hooks.PostAdd[0].Command)

	// Sections absent from the project fall through to the global config.
	require.Len(t, merged.Hooks.PreRemove, 1)
	assert.Equal(t, "global pre-remove", merged.Hooks.PreRemove[0].Command)
	assert.Equal(t, "continue", merged.ErrorHandling)
	assert.Equal(t, "user/", merged.BranchPrefix)
	assert.Equal(t, "../trees", merged.WorktreeBase)
}

func TestMergeNilInputs(t *testing.T) {
	merged := Merge(nil, nil)
	require.NotNil(t, merged)
	assert.Empty(t, merged.Files)
}

func TestDefinitions(t *testing.T) {
	s := &Settings{
		Files:         []model.SymlinkMapping{{Source: ".env", Target: ".env"}},
		ErrorHandling: "continue",
		Hooks: HookSet{
			PreAdd:  []model.HookCommand{{Command: "echo pre"}},
			PostAdd: []model.HookCommand{{Command: "echo post"}},
		},
	}
	require.NoError(t, s.Validate())

	defs := s.Definitions()
	assert.Equal(t, model.ErrorHandlingContinue, defs.Policy)
	assert.Len(t, defs.Mappings, 1)
	assert.Len(t, defs.Hooks[model.PhasePreAdd], 1)
	assert.Len(t, defs.Hooks[model.PhasePostAdd], 1)
	assert.Empty(t, defs.Hooks[model.PhasePreRemove])
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "twig.yaml")

	require.NoError(t, Init(path, false))

	// The starter file must load cleanly.
	s, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, s.Files)
	assert.NotEmpty(t, s.Hooks.PostAdd)

	// Refuses to clobber without force.
	err = Init(path, false)
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitConfigError, cliErr.Code)

	require.NoError(t, Init(path, true))
}
