// Package runner executes the project pipeline: a tool check, the data preparation and the analysis notebooks,
// one child process at a time, stopping at the first failure.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/churn-pipeline/internal/ui"
	"github.com/askiada/churn-pipeline/pkg/pipeline"
	"github.com/askiada/churn-pipeline/pkg/pipeline/model"
)

// Config describes the commands of a run.
type Config struct {
	// Tool is the notebook execution tool.
	Tool      string
	Notebooks []string
	// AllowErrors lets a notebook run to the end when one of its cells fails.
	AllowErrors bool
	// PrepareCommand runs the data preparation in a child process.
	PrepareCommand []string
}

// Runner runs the pipeline steps in order.
type Runner struct {
	cfg      Config
	exec     Executor
	lookPath func(file string) (string, error)
	out      io.Writer
	logger   *slog.Logger
	pipeOpts []model.PipelineOption
}

type Option func(r *Runner)

func WithLookPath(lookPath func(file string) (string, error)) Option {
	return func(r *Runner) {
		r.lookPath = lookPath
	}
}

// WithOutput sets where the step banners are printed.
func WithOutput(out io.Writer) Option {
	return func(r *Runner) {
		r.out = out
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithPipelineOptions observes the run, for instance to measure or draw it.
func WithPipelineOptions(opts ...model.PipelineOption) Option {
	return func(r *Runner) {
		r.pipeOpts = append(r.pipeOpts, opts...)
	}
}

func New(cfg Config, executor Executor, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		exec:     executor,
		lookPath: exec.LookPath,
		out:      os.Stdout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// NotebookCommand returns the command executing a notebook in place.
func (r *Runner) NotebookCommand(notebook string) []string {
	argv := []string{r.cfg.Tool, "nbconvert", "--to", "notebook", "--execute", notebook, "--inplace"}
	if r.cfg.AllowErrors {
		argv = append(argv, "--allow-errors")
	}

	return argv
}

// Plan returns the steps of a run, all pending.
func (r *Runner) Plan() *Report {
	rep := &Report{State: StateStart}
	rep.Steps = append(rep.Steps,
		&StepResult{Name: "tool-check", Stage: StateToolCheck, Argv: []string{r.cfg.Tool, "--version"}, Status: StatusPending},
		&StepResult{Name: "prepare-data", Stage: StatePrepareData, Argv: r.cfg.PrepareCommand, Status: StatusPending},
	)
	for _, nb := range r.cfg.Notebooks {
		rep.Steps = append(rep.Steps, &StepResult{
			Name:   "notebook " + nb,
			Stage:  StateExecuteNotebook,
			Argv:   r.NotebookCommand(nb),
			Status: StatusPending,
		})
	}

	return rep
}

// RunAll executes the steps in order and returns the report of the run. The first failing step aborts the run:
// the following steps never start and the report ends in StateAborted.
func (r *Runner) RunAll(ctx context.Context) (*Report, error) {
	rep := r.Plan()

	if len(r.cfg.PrepareCommand) == 0 {
		return rep, errors.New("no data preparation command")
	}

	pipe, err := pipeline.New(ctx, r.pipeOpts...)
	if err != nil {
		return rep, err
	}

	current, err := pipeline.AddRootStep(pipe, "queue", func(ctx context.Context, rootChan chan<- *Report) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rootChan <- rep:
			return nil
		}
	})
	if err != nil {
		return rep, err
	}

	for _, step := range rep.Steps {
		current, err = pipeline.AddStepOneToOne(pipe, step.Name, current, func(ctx context.Context, rep *Report) (*Report, error) {
			return rep, r.execute(ctx, rep, step)
		})
		if err != nil {
			return rep, err
		}
	}

	err = pipeline.AddSink(pipe, string(StateDone), current, func(_ context.Context, rep *Report) error {
		rep.State = StateDone

		return nil
	})
	if err != nil {
		return rep, err
	}

	err = pipe.Run()
	if err != nil {
		rep.State = StateAborted

		return rep, err
	}

	return rep, nil
}

func (r *Runner) execute(ctx context.Context, rep *Report, step *StepResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rep.State = step.Stage

	fmt.Fprintln(r.out, ui.InfoMsg("Executing: %s", strings.Join(step.Argv, " ")))
	r.logger.Debug("step started", "step", step.Name, "state", step.Stage)

	start := time.Now()

	var err error
	if step.Stage == StateToolCheck {
		err = r.checkTool(ctx, step.Argv)
	} else {
		err = r.exec.Run(ctx, step.Argv)
	}

	step.Duration = time.Since(start)

	if err != nil {
		step.Status = StatusFailed
		step.Err = err

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(r.out, ui.ErrorMsg("Command failed with exit code %d", exitErr.Code))
		} else {
			fmt.Fprintln(r.out, ui.ErrorMsg("%s failed: %v", step.Name, err))
		}

		return err
	}

	step.Status = StatusCompleted
	fmt.Fprintln(r.out, ui.SuccessMsg("Finished: %s", step.Name))
	r.logger.Debug("step finished", "step", step.Name, "duration", step.Duration)

	return nil
}

// checkTool makes sure the notebook tool can be found before anything else runs.
func (r *Runner) checkTool(ctx context.Context, versionArgv []string) error {
	_, err := r.lookPath(r.cfg.Tool)
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(ErrToolNotFound,
			"'%s' command not found, please ensure it is installed and in your system's PATH", r.cfg.Tool)
	}
	if err != nil {
		return errors.Wrapf(err, "unable to look up %s", r.cfg.Tool)
	}

	return r.exec.Run(ctx, versionArgv)
}
