package model

type StepType string

const (
	RootStepType   StepType = "root"
	NormalStepType StepType = "step"
	SinkStepType   StepType = "sink"
)

// StepInfo describes a step independently of the type of data it produces.
type StepInfo struct {
	Type       StepType
	Name       string
	Concurrent int
}

var (
	StartStep = &Step[any]{Details: &StepInfo{Name: "start"}}
	EndStep   = &Step[any]{Details: &StepInfo{Name: "end"}}
)

// Step is the output side of a pipeline step.
type Step[O any] struct {
	Output  chan O
	Details *StepInfo
}
