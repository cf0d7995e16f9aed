package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Listener receives step lifecycle events. The CLI attaches the spinner UI
// here; the optional state ledger records outcomes through the same hook.
type Listener interface {
	StepStarted(name string)
	StepFinished(result Result)
}

type nopListener struct{}

func (nopListener) StepStarted(string)  {}
func (nopListener) StepFinished(Result) {}

type multiListener []Listener

func (m multiListener) StepStarted(name string) {
	for _, l := range m {
		l.StepStarted(name)
	}
}

func (m multiListener) StepFinished(result Result) {
	for _, l := range m {
		l.StepFinished(result)
	}
}

// Listeners fans events out to several listeners, e.g. the spinner UI plus
// the state ledger.
func Listeners(listeners ...Listener) Listener {
	return multiListener(listeners)
}

// Run is one end-to-end pipeline execution. Results appear in execution
// order; steps past the first failure are absent.
type Run struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Results   []Result
	byName    map[string]*Result
}

// Result returns the recorded result for a step name, if the step was reached.
func (r *Run) Result(name string) (Result, bool) {
	res, ok := r.byName[name]
	if !ok {
		return Result{}, false
	}
	return *res, true
}

// Failed returns the first fatal failure of the run, if any.
func (r *Run) Failed() *Result {
	for i := range r.Results {
		if r.Results[i].Failed() && !r.Results[i].Optional {
			return &r.Results[i]
		}
	}
	return nil
}

// Engine executes steps strictly in declared order. There is exactly one
// writer against host state, so no locking beyond what apt itself enforces.
type Engine struct {
	steps    []Step
	listener Listener
	logger   *slog.Logger
	runID    string
}

func NewEngine(steps []Step, opts ...Option) *Engine {
	e := &Engine{
		steps:    steps,
		listener: nopListener{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type Option func(*Engine)

func WithListener(l Listener) Option {
	return func(e *Engine) {
		if l != nil {
			e.listener = l
		}
	}
}

// WithRunID fixes the run identifier, letting callers correlate the run with
// an external ledger. Without it the engine assigns a fresh UUID.
func WithRunID(id string) Option {
	return func(e *Engine) {
		e.runID = id
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Execute runs the pipeline. Satisfied steps are skipped; the first fatal
// failure halts the run with no rollback. A failed optional step is recorded
// and the run continues.
//
// Re-running against a host that completed a prefix of steps resumes from the
// first unsatisfied step, which is what makes a retry after a mid-run network
// failure safe.
func (e *Engine) Execute(ctx context.Context) (*Run, error) {
	runID := e.runID
	if runID == "" {
		runID = uuid.New().String()
	}
	run := &Run{
		ID:        runID,
		StartedAt: time.Now(),
		byName:    make(map[string]*Result),
	}
	defer func() {
		run.Duration = time.Since(run.StartedAt)
	}()

	for _, step := range e.steps {
		select {
		case <-ctx.Done():
			return run, ctx.Err()
		default:
		}

		e.listener.StepStarted(step.Name)

		status := StatusUnsatisfied
		if step.Precondition != nil {
			var err error
			status, err = step.Precondition(ctx)
			if err != nil {
				// Probe failure is not fatal: treat the state as unknown
				// and run the action.
				e.logger.Warn("precondition check failed, treating as unsatisfied",
					"step", step.Name, "error", err)
				status = StatusUnknown
			}
		}

		if status == StatusSatisfied {
			e.record(run, Result{Name: step.Name, Outcome: OutcomeSkipped, Optional: step.Optional})
			continue
		}

		start := time.Now()
		err := step.Action(ctx)
		elapsed := time.Since(start)

		if err != nil {
			result := Result{
				Name:     step.Name,
				Outcome:  OutcomeFailed,
				Optional: step.Optional,
				Err:      err,
				Duration: elapsed,
			}
			e.record(run, result)
			if step.Optional {
				e.logger.Warn("optional step failed, continuing",
					"step", step.Name, "error", err)
				continue
			}
			return run, fmt.Errorf("step %q failed: %w", step.Name, err)
		}

		e.record(run, Result{
			Name:     step.Name,
			Outcome:  OutcomeSucceeded,
			Optional: step.Optional,
			Duration: elapsed,
		})
	}

	return run, nil
}

func (e *Engine) record(run *Run, result Result) {
	run.Results = append(run.Results, result)
	run.byName[result.Name] = &run.Results[len(run.Results)-1]
	e.listener.StepFinished(result)
	e.logger.Debug("step finished", "step", result.Name, "outcome", result.Outcome)
}
