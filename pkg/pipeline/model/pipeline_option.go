package model

import "time"

// PipelineOption observes a pipeline: every hook is called by the pipeline itself and an error from any of them
// stops the run.
type PipelineOption interface {
	// New is called once, when the pipeline is created.
	New() error

	stepHooks
	sinkHooks

	// Finish is called once all the steps and the sink returned.
	Finish() error
}

type stepHooks interface {
	// PrepareStep is called when step is added after parentStep.
	PrepareStep(parentStep, step *StepInfo) error
	// OnStepOutput is called for every element step sends downstream. iterationDuration is the time spent
	// waiting on parentStep, computationDuration the time spent in the step function.
	OnStepOutput(parentStep, step *StepInfo, iterationDuration, computationDuration time.Duration) error
}

type sinkHooks interface {
	PrepareSink(parentStep, step *StepInfo) error
	// OnSinkOutput is called for every element the sink consumes.
	OnSinkOutput(parentStep, step *StepInfo, iterationDuration, computationDuration time.Duration) error
	// AfterSink is called when the sink input is exhausted.
	AfterSink(step *StepInfo, totalDuration time.Duration) error
}
