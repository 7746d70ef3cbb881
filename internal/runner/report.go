package runner

import "time"

// State is the stage a run is in.
type State string

const (
	StateStart           State = "start"
	StateToolCheck       State = "tool-check"
	StatePrepareData     State = "prepare-data"
	StateExecuteNotebook State = "execute-notebook"
	StateDone            State = "done"
	StateAborted         State = "aborted"
)

type StepStatus string

const (
	StatusPending   StepStatus = "pending"
	StatusCompleted StepStatus = "completed"
	StatusFailed    StepStatus = "failed"
)

// StepResult is one step of a run. It is executed at most once.
type StepResult struct {
	Name     string
	Stage    State
	Argv     []string
	Status   StepStatus
	Duration time.Duration
	Err      error
}

// Report is the token handed from step to step during a run.
type Report struct {
	State State
	Steps []*StepResult
}

// Failed returns the step that aborted the run, or nil.
func (r *Report) Failed() *StepResult {
	for _, step := range r.Steps {
		if step.Status == StatusFailed {
			return step
		}
	}

	return nil
}

// Completed counts the steps that ran successfully.
func (r *Report) Completed() int {
	n := 0
	for _, step := range r.Steps {
		if step.Status == StatusCompleted {
			n++
		}
	}

	return n
}
