package ui

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/groundworkhq/provision/internal/pipeline"
)

// StepSpinner renders step progress for one host. It implements
// pipeline.Listener so the engine drives it directly.
type StepSpinner struct {
	spinner *spinner.Spinner
	host    string
}

func NewStepSpinner(host string) *StepSpinner {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Prefix = fmt.Sprintf("[%s] ", host)
	return &StepSpinner{
		spinner: s,
		host:    host,
	}
}

func (s *StepSpinner) StepStarted(name string) {
	s.spinner.Suffix = fmt.Sprintf(" %s", name)
	s.spinner.Start()
}

func (s *StepSpinner) StepFinished(result pipeline.Result) {
	s.spinner.Stop()
	switch result.Outcome {
	case pipeline.OutcomeSkipped:
		fmt.Printf("[%s] ⏭  %s (already satisfied)\n", s.host, result.Name)
	case pipeline.OutcomeSucceeded:
		fmt.Printf("[%s] ✅ %s\n", s.host, result.Name)
	case pipeline.OutcomeFailed:
		fmt.Printf("[%s] ❌ %s\n", s.host, result.Name)
	}
}
