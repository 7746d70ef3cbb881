package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/churn-pipeline/pkg/pipeline/model"
)

func (p *Pipeline) prepareSink(input, step *model.StepInfo) error {
	for _, opt := range p.opts {
		err := opt.PrepareSink(input, step)
		if err != nil {
			return errors.Wrap(err, "unable to run before sink function")
		}
	}

	return nil
}

func (p *Pipeline) onSinkOutput(input, step *model.StepInfo, iterationDuration, computationDuration time.Duration) error {
	for _, opt := range p.opts {
		err := opt.OnSinkOutput(input, step, iterationDuration, computationDuration)
		if err != nil {
			return errors.Wrap(err, "unable to run on sink output function")
		}
	}

	return nil
}

func (p *Pipeline) afterSink(step *model.StepInfo) error {
	for _, opt := range p.opts {
		err := opt.AfterSink(step, time.Since(p.startTime))
		if err != nil {
			return errors.Wrap(err, "unable to run after sink function")
		}
	}

	return nil
}

func consume[I any](p *Pipeline, input *model.Step[I], step *model.StepInfo, sinkFn func(ctx context.Context, input I) error) error {
	for {
		startInputChan := time.Now()
		select {
		case <-p.ctx.Done():
			return p.ctx.Err()
		case in, ok := <-input.Output:
			if !ok {
				return p.afterSink(step)
			}
			endInputChan := time.Since(startInputChan)

			startFn := time.Now()
			err := sinkFn(p.ctx, in)
			if err != nil {
				return err
			}
			endFn := time.Since(startFn)

			err = p.onSinkOutput(input.Details, step, endInputChan+endFn, endFn)
			if err != nil {
				return err
			}
		}
	}
}

// AddSink adds the last step of the pipeline. sinkFn is called once per element, in the order they are received.
// The sink stops on the first error returned by sinkFn.
func AddSink[I any](pipe *Pipeline, name string, input *model.Step[I], sinkFn func(ctx context.Context, input I) error) error {
	if pipe == nil {
		return ErrPipelineMustBeSet
	}
	if input == nil {
		return ErrInputMustBeSet
	}
	step := &model.StepInfo{
		Type:       model.SinkStepType,
		Name:       name,
		Concurrent: 1,
	}
	err := pipe.prepareSink(input.Details, step)
	if err != nil {
		return err
	}

	errC := make(chan error, 1)
	decoratedError := newErrorChan(name, errC)
	go func() {
		defer close(errC)
		err := consume(pipe, input, step, sinkFn)
		if err != nil {
			errC <- err
		}
	}()
	pipe.errcList.add(decoratedError)

	return nil
}
