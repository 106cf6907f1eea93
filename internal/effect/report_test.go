package effect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmr-tortoise/twig/internal/model"
)

func phaseWith(phase model.LifecyclePhase, kinds ...model.ResultKind) *PhaseReport {
	p := &PhaseReport{Phase: phase, State: StateCompleted}
	for _, k := range kinds {
		p.Results = append(p.Results, model.EffectResult{EffectType: "fake", Kind: k})
	}
	return p
}

func TestReportCounts(t *testing.T) {
	r := NewReport()
	r.AddPhase(phaseWith(model.PhasePreAdd, model.KindSuccess, model.KindSkipped))
	r.AddPhase(phaseWith(model.PhasePostAdd, model.KindWarning, model.KindFailure, model.KindTimeout))

	c := r.Counts()
	assert.Equal(t, 1, c.Successes)
	assert.Equal(t, 1, c.Skips)
	assert.Equal(t, 1, c.Warnings)
	assert.Equal(t, 2, c.Failures, "timeouts count as failures")
	assert.Equal(t, 5, c.Total())
}

func TestReportWarningsDoNotFailCommand(t *testing.T) {
	r := NewReport()
	r.AddPhase(phaseWith(model.PhasePostAdd, model.KindWarning, model.KindFailure))

	assert.True(t, r.OverallSuccess())
	assert.Equal(t, model.ExitSuccess, r.ExitCode())
	assert.NoError(t, r.Err())
}

func TestReportGitErrorDominates(t *testing.T) {
	gitErr := errors.New("fatal: branch exists")
	r := NewReport()
	r.SetGitError(gitErr)
	r.AddPhase(phaseWith(model.PhasePreAdd, model.KindSuccess))

	assert.False(t, r.OverallSuccess())
	assert.Equal(t, model.ExitGitError, r.ExitCode())
	assert.Equal(t, gitErr, r.Err())
}

func TestReportAbortSetsEffectExitCode(t *testing.T) {
	aborted := &PhaseReport{
		Phase:   model.PhasePostAdd,
		State:   StateAborted,
		Results: []model.EffectResult{{EffectType: "fake", Kind: model.KindFailure}},
		Err:     errors.New("post-add phase aborted"),
	}

	r := NewReport()
	r.AddPhase(phaseWith(model.PhasePreAdd, model.KindSuccess))
	r.AddPhase(aborted)

	assert.True(t, r.Aborted())
	assert.False(t, r.OverallSuccess())
	assert.Equal(t, model.ExitEffectError, r.ExitCode())
	assert.ErrorContains(t, r.Err(), "post-add phase aborted")
}

func TestReportEmptyIsSuccess(t *testing.T) {
	r := NewReport()
	assert.True(t, r.OverallSuccess())
	assert.Equal(t, model.ExitSuccess, r.ExitCode())
	assert.Zero(t, r.Counts().Total())
}
