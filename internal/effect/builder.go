package effect

import (
	"github.com/mmr-tortoise/twig/internal/hook"
	"github.com/mmr-tortoise/twig/internal/model"
	"github.com/mmr-tortoise/twig/internal/symlink"
)

// Build assembles the full effect chain from loaded configuration.
//
// Phase composition:
//   - pre-add: the phase's hooks.
//   - post-add: one symlink effect per mapping (in config order), then the
//     phase's hooks, so hooks can rely on the mapped files being present.
//   - pre-remove: one unlink effect per mapping, then the phase's hooks.
//   - post-remove: the phase's hooks.
func Build(defs model.Definitions, linker symlink.Linker, opts Options) *Chain {
	chain := NewChain(defs.Policy, opts)
	runner := hook.NewRunner(opts.DryRun)
	runner.Logf = opts.Logf

	registerHooks := func(phase model.LifecyclePhase) {
		for i, h := range defs.Hooks[phase] {
			chain.Register(phase, hook.NewEffect(phase, i, h, runner))
		}
	}

	registerHooks(model.PhasePreAdd)

	for _, m := range defs.Mappings {
		chain.Register(model.PhasePostAdd, symlink.NewEffect(m, linker, opts.DryRun))
	}
	registerHooks(model.PhasePostAdd)

	for _, m := range defs.Mappings {
		chain.Register(model.PhasePreRemove, symlink.NewRemoveEffect(m, linker, opts.DryRun))
	}
	registerHooks(model.PhasePreRemove)

	registerHooks(model.PhasePostRemove)

	return chain
}
