package effect

import (
	"github.com/mmr-tortoise/twig/internal/model"
)

// Report aggregates every phase executed during one command invocation.
// The git-primitive outcome is tracked independently of the effect
// outcomes: failed non-critical effects never turn a successful worktree
// operation into a failed command.
type Report struct {
	// Phases lists the phase reports in execution order.
	Phases []*PhaseReport `json:"phases"`

	// GitErr is the git-primitive failure, if any. A git failure is
	// critical: no effect phase runs after one.
	GitErr error `json:"-"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{}
}

// AddPhase appends a phase report.
func (r *Report) AddPhase(p *PhaseReport) {
	r.Phases = append(r.Phases, p)
}

// SetGitError records the git-primitive failure.
func (r *Report) SetGitError(err error) {
	r.GitErr = err
}

// Counts bucket the per-effect results of the whole report.
type Counts struct {
	Successes int `json:"successes"`
	Skips     int `json:"skips"`
	Warnings  int `json:"warnings"`
	Failures  int `json:"failures"`
}

// Total returns the number of visited effects.
func (c Counts) Total() int {
	return c.Successes + c.Skips + c.Warnings + c.Failures
}

// Counts computes the result buckets. Timeouts count as failures.
func (r *Report) Counts() Counts {
	var c Counts
	for _, phase := range r.Phases {
		for _, res := range phase.Results {
			switch res.Kind {
			case model.KindSuccess:
				c.Successes++
			case model.KindSkipped:
				c.Skips++
			case model.KindWarning:
				c.Warnings++
			default:
				c.Failures++
			}
		}
	}
	return c
}

// Aborted reports whether any phase aborted.
func (r *Report) Aborted() bool {
	for _, phase := range r.Phases {
		if phase.Aborted() {
			return true
		}
	}
	return false
}

// OverallSuccess reports whether the command as a whole succeeded:
// the git primitive did not fail and no phase aborted. Warnings and skips
// never affect the overall outcome.
func (r *Report) OverallSuccess() bool {
	return r.GitErr == nil && !r.Aborted()
}

// ExitCode derives the process exit code from the report. Only a
// git-primitive failure or an abort-policy effect failure is non-zero;
// warnings and skips always exit zero.
func (r *Report) ExitCode() model.ExitCode {
	if r.GitErr != nil {
		return model.ExitGitError
	}
	if r.Aborted() {
		return model.ExitEffectError
	}
	return model.ExitSuccess
}

// Err returns the terminal error the CLI layer should surface: the git
// failure if one occurred, otherwise the first phase abort error, otherwise
// nil.
func (r *Report) Err() error {
	if r.GitErr != nil {
		return r.GitErr
	}
	for _, phase := range r.Phases {
		if phase.Aborted() {
			return phase.Err
		}
	}
	return nil
}
