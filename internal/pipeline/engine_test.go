package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func satisfied(ctx context.Context) (Status, error)   { return StatusSatisfied, nil }
func unsatisfied(ctx context.Context) (Status, error) { return StatusUnsatisfied, nil }

func TestExecuteRunsStepsInDeclaredOrder(t *testing.T) {
	var order []string
	steps := []Step{
		{Name: "first", Precondition: unsatisfied, Action: func(ctx context.Context) error {
			order = append(order, "first")
			return nil
		}},
		{Name: "second", Precondition: unsatisfied, Action: func(ctx context.Context) error {
			order = append(order, "second")
			return nil
		}},
		{Name: "third", Precondition: unsatisfied, Action: func(ctx context.Context) error {
			order = append(order, "third")
			return nil
		}},
	}

	run, err := NewEngine(steps).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "third"}, order)
	require.Len(t, run.Results, 3)
	for _, result := range run.Results {
		assert.Equal(t, OutcomeSucceeded, result.Outcome)
	}
}

func TestExecuteSkipsSatisfiedSteps(t *testing.T) {
	executed := false
	steps := []Step{
		{Name: "done-already", Precondition: satisfied, Action: func(ctx context.Context) error {
			executed = true
			return nil
		}},
	}

	run, err := NewEngine(steps).Execute(context.Background())
	require.NoError(t, err)

	assert.False(t, executed)
	result, ok := run.Result("done-already")
	require.True(t, ok)
	assert.Equal(t, OutcomeSkipped, result.Outcome)
}

func TestExecuteFailFast(t *testing.T) {
	reached := false
	steps := []Step{
		{Name: "ok", Precondition: unsatisfied, Action: func(ctx context.Context) error { return nil }},
		{Name: "breaks", Precondition: unsatisfied, Action: func(ctx context.Context) error {
			return errors.New("boom")
		}},
		{Name: "never-reached", Precondition: unsatisfied, Action: func(ctx context.Context) error {
			reached = true
			return nil
		}},
	}

	run, err := NewEngine(steps).Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "breaks")

	assert.False(t, reached)
	require.Len(t, run.Results, 2)
	_, ok := run.Result("never-reached")
	assert.False(t, ok, "results must have no entry for steps past the failure")

	failed := run.Failed()
	require.NotNil(t, failed)
	assert.Equal(t, "breaks", failed.Name)
}

func TestExecuteTreatsUnknownAsUnsatisfied(t *testing.T) {
	executed := false
	steps := []Step{
		{
			Name: "unknowable",
			Precondition: func(ctx context.Context) (Status, error) {
				return StatusUnknown, nil
			},
			Action: func(ctx context.Context) error {
				executed = true
				return nil
			},
		},
	}

	_, err := NewEngine(steps).Execute(context.Background())
	require.NoError(t, err)
	assert.True(t, executed, "unknown state must execute the action, never skip")
}

func TestExecutePreconditionErrorExecutesAction(t *testing.T) {
	executed := false
	steps := []Step{
		{
			Name: "probe-fails",
			Precondition: func(ctx context.Context) (Status, error) {
				return StatusUnknown, errors.New("permission denied")
			},
			Action: func(ctx context.Context) error {
				executed = true
				return nil
			},
		},
	}

	_, err := NewEngine(steps).Execute(context.Background())
	require.NoError(t, err)
	assert.True(t, executed)
}

func TestExecuteOptionalFailureContinues(t *testing.T) {
	reached := false
	steps := []Step{
		{Name: "tls", Optional: true, Precondition: unsatisfied, Action: func(ctx context.Context) error {
			return errors.New("no certificate for you")
		}},
		{Name: "after", Precondition: unsatisfied, Action: func(ctx context.Context) error {
			reached = true
			return nil
		}},
	}

	run, err := NewEngine(steps).Execute(context.Background())
	require.NoError(t, err)

	assert.True(t, reached)
	result, ok := run.Result("tls")
	require.True(t, ok)
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Nil(t, run.Failed(), "an optional failure is not a fatal failure")
}

// A pipeline whose steps honor the idempotence contract resumes cleanly: the
// second run skips everything the first run completed, and host state is
// unchanged.
func TestExecuteIdempotentResumption(t *testing.T) {
	state := map[string]bool{}
	stepFor := func(name string) Step {
		return Step{
			Name: name,
			Precondition: func(ctx context.Context) (Status, error) {
				if state[name] {
					return StatusSatisfied, nil
				}
				return StatusUnsatisfied, nil
			},
			Action: func(ctx context.Context) error {
				state[name] = true
				return nil
			},
		}
	}
	steps := []Step{stepFor("a"), stepFor("b"), stepFor("c")}

	first, err := NewEngine(steps).Execute(context.Background())
	require.NoError(t, err)
	for _, result := range first.Results {
		assert.Equal(t, OutcomeSucceeded, result.Outcome)
	}

	want := map[string]bool{"a": true, "b": true, "c": true}
	assert.Equal(t, want, state)

	second, err := NewEngine(steps).Execute(context.Background())
	require.NoError(t, err)
	for _, result := range second.Results {
		assert.Equal(t, OutcomeSkipped, result.Outcome)
	}
	assert.Equal(t, want, state, "second run must not change host state")
}

func TestExecuteNilPreconditionAlwaysRuns(t *testing.T) {
	count := 0
	steps := []Step{
		{Name: "always", Action: func(ctx context.Context) error {
			count++
			return nil
		}},
	}

	engine := NewEngine(steps)
	_, err := engine.Execute(context.Background())
	require.NoError(t, err)
	_, err = engine.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestWithRunID(t *testing.T) {
	run, err := NewEngine(nil, WithRunID("fixed-id")).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", run.ID)
}

type recordingListener struct {
	started  []string
	finished []Result
}

func (r *recordingListener) StepStarted(name string)    { r.started = append(r.started, name) }
func (r *recordingListener) StepFinished(result Result) { r.finished = append(r.finished, result) }

func TestListenerReceivesEvents(t *testing.T) {
	listener := &recordingListener{}
	steps := []Step{
		{Name: "one", Precondition: satisfied, Action: func(ctx context.Context) error { return nil }},
		{Name: "two", Precondition: unsatisfied, Action: func(ctx context.Context) error { return nil }},
	}

	_, err := NewEngine(steps, WithListener(listener)).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"one", "two"}, listener.started)
	require.Len(t, listener.finished, 2)
	assert.Equal(t, OutcomeSkipped, listener.finished[0].Outcome)
	assert.Equal(t, OutcomeSucceeded, listener.finished[1].Outcome)
}
