// Package config loads and merges twig configuration.
//
// Configuration lives in a per-repository file (twig.yaml at the repo root)
// optionally layered over a per-user global file. YAML is the primary
// format; JSONC (JSON with comments and trailing commas) is accepted as an
// alternative and is stripped with github.com/tidwall/jsonc before parsing
// with the standard encoding/json library.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/twig/internal/model"
)

// projectConfigNames are the file names probed for a repository config, in
// priority order.
var projectConfigNames = []string{
	"twig.yaml",
	"twig.yml",
	".twig.yaml",
	".twig.yml",
	"twig.jsonc",
	"twig.json",
}

// HookSet groups hook commands by lifecycle phase.
type HookSet struct {
	// PreAdd hooks run before the worktree is created. A pre-add abort
	// prevents the git operation entirely.
	PreAdd []model.HookCommand `yaml:"pre_add,omitempty" json:"pre_add,omitempty"`

	// PostAdd hooks run after the worktree is created and its file
	// mappings are in place.
	PostAdd []model.HookCommand `yaml:"post_add,omitempty" json:"post_add,omitempty"`

	// PreRemove hooks run before the worktree is removed, while its
	// directory still exists.
	PreRemove []model.HookCommand `yaml:"pre_remove,omitempty" json:"pre_remove,omitempty"`

	// PostRemove hooks run after the worktree directory is gone.
	PostRemove []model.HookCommand `yaml:"post_remove,omitempty" json:"post_remove,omitempty"`
}

// ByPhase returns the hooks as a phase-keyed map.
func (h *HookSet) ByPhase() map[model.LifecyclePhase][]model.HookCommand {
	return map[model.LifecyclePhase][]model.HookCommand{
		model.PhasePreAdd:     h.PreAdd,
		model.PhasePostAdd:    h.PostAdd,
		model.PhasePreRemove:  h.PreRemove,
		model.PhasePostRemove: h.PostRemove,
	}
}

// Settings is the top-level configuration document.
type Settings struct {
	// Files declares the symlink/copy mappings materialized in every new
	// worktree.
	Files []model.SymlinkMapping `yaml:"files,omitempty" json:"files,omitempty"`

	// Hooks declares the lifecycle hook commands.
	Hooks HookSet `yaml:"hooks,omitempty" json:"hooks,omitempty"`

	// ErrorHandling selects the chain policy: "abort" (default) or
	// "continue".
	ErrorHandling string `yaml:"error_handling,omitempty" json:"error_handling,omitempty"`

	// WorktreeBase is the default directory for new worktrees, relative to
	// the repository root unless absolute. Empty means the path given on
	// the command line is used as-is.
	WorktreeBase string `yaml:"worktree_base,omitempty" json:"worktree_base,omitempty"`

	// BranchPrefix is prepended to branch names derived from worktree
	// directory names (e.g. "feature/").
	BranchPrefix string `yaml:"branch_prefix,omitempty" json:"branch_prefix,omitempty"`
}

// Load reads and parses a config file, choosing the parser by extension.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitConfigError,
				fmt.Sprintf("config file not found: %s", path),
				err,
			)
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var s Settings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, model.WrapCLIError(
				model.ExitConfigError,
				fmt.Sprintf("failed to parse %s", path),
				err,
			)
		}
	case ".json", ".jsonc":
		// Strip comments and trailing commas, then parse as plain JSON.
		if err := json.Unmarshal(jsonc.ToJSON(data), &s); err != nil {
			return nil, model.WrapCLIError(
				model.ExitConfigError,
				fmt.Sprintf("failed to parse %s", path),
				err,
			)
		}
	default:
		return nil, model.NewCLIError(
			model.ExitConfigError,
			fmt.Sprintf("unsupported config format %q (expected .yaml, .yml, .json or .jsonc)", filepath.Ext(path)),
		)
	}

	if err := s.Validate(); err != nil {
		return nil, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("invalid config %s", path),
			err,
		)
	}
	return &s, nil
}

// Validate checks every mapping and hook, and normalizes the error handling
// policy.
func (s *Settings) Validate() error {
	for i := range s.Files {
		// Normalize the type first: an omitted type is the symlink default.
		mt, err := model.ParseMappingType(s.Files[i].Type.String())
		if err != nil {
			return fmt.Errorf("files[%d]: %w", i, err)
		}
		s.Files[i].Type = mt

		if err := s.Files[i].Validate(); err != nil {
			return fmt.Errorf("files[%d]: %w", i, err)
		}
	}
	for phase, hooks := range s.Hooks.ByPhase() {
		for i := range hooks {
			if err := hooks[i].Validate(); err != nil {
				return fmt.Errorf("hooks.%s[%d]: %w", strings.ReplaceAll(phase.String(), "-", "_"), i, err)
			}
		}
	}
	policy, err := model.ParseErrorHandling(s.ErrorHandling)
	if err != nil {
		return err
	}
	s.ErrorHandling = policy.String()
	return nil
}

// Definitions converts the settings into the model form consumed by the
// effect chain builder. Validate must have run first.
func (s *Settings) Definitions() model.Definitions {
	policy, err := model.ParseErrorHandling(s.ErrorHandling)
	if err != nil {
		policy = model.ErrorHandlingAbort
	}
	return model.Definitions{
		Mappings: s.Files,
		Hooks:    s.Hooks.ByPhase(),
		Policy:   policy,
	}
}

// FindProjectConfig walks up from startDir looking for a project config
// file. It returns the empty string when none is found.
func FindProjectConfig(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		for _, name := range projectConfigNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// GlobalConfigPath returns the per-user config file location
// (e.g. ~/.config/twig/config.yaml on Linux). The file may not exist.
func GlobalConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, "twig", "config.yaml"), nil
}

// Merge layers project settings over global ones. Each section is taken
// wholesale from the project config when it is set there, so a project that
// declares its own files list fully replaces the global list rather than
// appending to it. Hook phases merge individually for the same reason.
func Merge(global, project *Settings) *Settings {
	if global == nil {
		global = &Settings{}
	}
	if project == nil {
		project = &Settings{}
	}

	merged := *global
	if len(project.Files) > 0 {
		merged.Files = project.Files
	}
	if len(project.Hooks.PreAdd) > 0 {
		merged.Hooks.PreAdd = project.Hooks.PreAdd
	}
	if len(project.Hooks.PostAdd) > 0 {
		merged.Hooks.PostAdd = project.Hooks.PostAdd
	}
	if len(project.Hooks.PreRemove) > 0 {
		merged.Hooks.PreRemove = project.Hooks.PreRemove
	}
	if len(project.Hooks.PostRemove) > 0 {
		merged.Hooks.PostRemove = project.Hooks.PostRemove
	}
	if project.ErrorHandling != "" {
		merged.ErrorHandling = project.ErrorHandling
	}
	if project.WorktreeBase != "" {
		merged.WorktreeBase = project.WorktreeBase
	}
	if project.BranchPrefix != "" {
		merged.BranchPrefix = project.BranchPrefix
	}
	return &merged
}

// LoadMerged resolves the effective configuration for a repository:
// the global config (if present) layered under the project config.
// explicitPath, when non-empty, bypasses project config discovery.
// A repository with no config anywhere gets empty settings, meaning plain
// worktree operations with no side effects.
func LoadMerged(repoRoot, explicitPath string) (*Settings, error) {
	var global *Settings
	if globalPath, err := GlobalConfigPath(); err == nil {
		if _, statErr := os.Stat(globalPath); statErr == nil {
			global, err = Load(globalPath)
			if err != nil {
				return nil, err
			}
		}
	}

	projectPath := explicitPath
	if projectPath == "" {
		projectPath = FindProjectConfig(repoRoot)
	}

	var project *Settings
	if projectPath != "" {
		var err error
		project, err = Load(projectPath)
		if err != nil {
			return nil, err
		}
	}

	merged := Merge(global, project)
	if err := merged.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "invalid merged config", err)
	}
	return merged, nil
}
