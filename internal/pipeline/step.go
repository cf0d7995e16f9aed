package pipeline

import (
	"context"
	"time"
)

// Status is the answer a precondition gives about current host state.
type Status int

const (
	// StatusUnknown means the probe could not determine state. The engine
	// treats it as unsatisfied: re-attempting is safer than wrongly skipping.
	StatusUnknown Status = iota
	StatusUnsatisfied
	StatusSatisfied
)

func (s Status) String() string {
	switch s {
	case StatusSatisfied:
		return "satisfied"
	case StatusUnsatisfied:
		return "unsatisfied"
	default:
		return "unknown"
	}
}

// Step is one named unit of provisioning work. Steps are assembled once at
// pipeline construction and never mutated; the engine evaluates each exactly
// once per run.
//
// The idempotence contract: after Action succeeds, Precondition must report
// StatusSatisfied on the next run.
type Step struct {
	Name string

	// Precondition reports whether the step is already satisfied. A nil
	// Precondition means the step always runs (connectivity checks, version
	// warnings).
	Precondition func(ctx context.Context) (Status, error)

	Action func(ctx context.Context) error

	// Optional steps may fail without aborting the pipeline (TLS issuance,
	// enabling extra apps).
	Optional bool
}

type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Result records what happened to a single step during a run.
type Result struct {
	Name     string
	Outcome  Outcome
	Optional bool
	Err      error
	Duration time.Duration
}

func (r Result) Failed() bool {
	return r.Outcome == OutcomeFailed
}
