package pipeline

import "github.com/askiada/churn-pipeline/pkg/pipeline/model"

type StepOption[O any] func(s *model.Step[O])

// StepConcurrency sets the number of goroutines processing the input of a step.
// Output order is only preserved with a concurrency of 1.
func StepConcurrency[O any](concurrent int) StepOption[O] {
	return func(s *model.Step[O]) {
		s.Details.Concurrent = concurrent
	}
}
