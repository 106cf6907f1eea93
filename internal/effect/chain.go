package effect

import (
	"context"
	"fmt"

	"github.com/mmr-tortoise/twig/internal/model"
)

// PhaseState tracks the execution state of one phase.
// The transitions are:
//
//	Pending → Running → {Completed | Aborted}
//
// Aborted is reachable only when an effect with continue_on_error disabled
// fails while the chain policy is abort.
type PhaseState string

const (
	// StatePending means the phase has not started.
	StatePending PhaseState = "pending"

	// StateRunning means the phase is currently executing effects.
	StateRunning PhaseState = "running"

	// StateCompleted means every registered effect was visited.
	StateCompleted PhaseState = "completed"

	// StateAborted means a critical effect failure stopped the phase;
	// effects after the failing one never ran and produced no results.
	StateAborted PhaseState = "aborted"
)

// PhaseReport holds the ordered results of one phase execution plus its
// terminal state. Under an abort, Results is the partial list up to and
// including the failing effect, and Err is the terminal failure marker.
type PhaseReport struct {
	// Phase identifies which lifecycle phase this report covers.
	Phase model.LifecyclePhase `json:"phase"`

	// State is the terminal phase state (completed or aborted).
	State PhaseState `json:"state"`

	// Results lists one entry per visited effect, in execution order.
	Results []model.EffectResult `json:"results"`

	// Err is the terminal failure that aborted the phase, nil otherwise.
	Err error `json:"-"`

	// RolledBack counts effects whose best-effort rollback was attempted
	// after the phase aborted.
	RolledBack int `json:"rolledBack,omitempty"`
}

// Aborted reports whether the phase stopped before visiting every effect.
func (p *PhaseReport) Aborted() bool {
	return p.State == StateAborted
}

// Chain orders and executes the effects registered for each lifecycle
// phase. Execution within a phase is strictly sequential and in
// registration order: hook effects may read files created by earlier
// symlink effects.
type Chain struct {
	policy model.ErrorHandling
	opts   Options
	phases map[model.LifecyclePhase][]Effect
}

// NewChain creates an empty chain with the given abort/continue policy.
func NewChain(policy model.ErrorHandling, opts Options) *Chain {
	if !policy.IsValid() {
		policy = model.ErrorHandlingAbort
	}
	return &Chain{
		policy: policy,
		opts:   opts,
		phases: make(map[model.LifecyclePhase][]Effect),
	}
}

// Register appends effects to a phase. Registration order is execution
// order.
func (c *Chain) Register(phase model.LifecyclePhase, effs ...Effect) {
	c.phases[phase] = append(c.phases[phase], effs...)
}

// Len returns the number of effects registered for a phase.
func (c *Chain) Len(phase model.LifecyclePhase) int {
	return len(c.phases[phase])
}

// Policy returns the chain's abort/continue policy.
func (c *Chain) Policy() model.ErrorHandling {
	return c.policy
}

// Execute runs the effects registered for phase, in order, and returns the
// phase report. It never returns early without a result for every effect
// it visited.
//
// Per-effect outcome handling:
//   - CanApply false: a skipped result is recorded, the effect is not applied.
//   - Apply succeeds: the result is recorded as returned.
//   - Apply fails, effect declares continue_on_error: the result is demoted
//     to a warning and the phase continues (the effect is non-essential).
//   - Apply fails otherwise, policy abort: the phase aborts; no later
//     effect runs, and already-applied effects get a best-effort rollback
//     in reverse order.
//   - Apply fails otherwise, policy continue: the failure is recorded
//     as-is and the phase proceeds.
func (c *Chain) Execute(ctx context.Context, phase model.LifecyclePhase, wctx *model.WorktreeContext) *PhaseReport {
	report := &PhaseReport{Phase: phase, State: StateRunning}
	effs := c.phases[phase]

	// Effects whose Apply succeeded, kept for rollback on abort.
	var applied []Effect

	for i, eff := range effs {
		if !eff.CanApply(wctx) {
			c.opts.logf("%s: %s precondition not met, skipping", phase, eff.EffectType())
			report.Results = append(report.Results, model.EffectResult{
				EffectType: eff.EffectType(),
				Kind:       model.KindSkipped,
				Message:    "precondition not met",
			})
			continue
		}

		c.opts.logf("%s: applying %s (%d/%d)", phase, eff.EffectType(), i+1, len(effs))
		result, err := eff.Apply(ctx, wctx)
		if err == nil {
			report.Results = append(report.Results, result)
			applied = append(applied, eff)
			continue
		}

		switch {
		case eff.ContinueOnError():
			// Declared non-essential: the failure becomes a warning and the
			// command outcome is unaffected.
			result.Kind = model.KindWarning
			c.opts.logf("%s: %s failed, continuing (continue_on_error): %v", phase, eff.EffectType(), err)
			report.Results = append(report.Results, result)

		case c.policy == model.ErrorHandlingContinue:
			// Chain-level continue policy: record the failure verbatim and
			// proceed.
			c.opts.logf("%s: %s failed, continuing (policy): %v", phase, eff.EffectType(), err)
			report.Results = append(report.Results, result)

		default:
			// Abort: record the failure, stop the phase, roll back what was
			// already applied.
			report.Results = append(report.Results, result)
			report.State = StateAborted
			report.Err = fmt.Errorf("%s phase aborted: %s failed: %w", phase, eff.EffectType(), err)
			report.RolledBack = c.rollback(ctx, wctx, applied)
			return report
		}
	}

	report.State = StateCompleted
	return report
}

// rollback best-effort undoes already-applied effects in reverse order.
// Rollback errors are logged and otherwise ignored; an aborted phase is
// surfaced to the user for manual remediation either way.
func (c *Chain) rollback(ctx context.Context, wctx *model.WorktreeContext, applied []Effect) int {
	count := 0
	for i := len(applied) - 1; i >= 0; i-- {
		eff := applied[i]
		if err := eff.Rollback(ctx, wctx); err != nil {
			c.opts.logf("rollback of %s failed: %v", eff.EffectType(), err)
			continue
		}
		count++
	}
	return count
}
