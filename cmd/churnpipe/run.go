package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/askiada/churn-pipeline/internal/runner"
	"github.com/askiada/churn-pipeline/internal/ui"
	"github.com/askiada/churn-pipeline/pkg/pipeline/drawer"
	"github.com/askiada/churn-pipeline/pkg/pipeline/measure"
	"github.com/askiada/churn-pipeline/pkg/pipeline/model"
)

func runCmd(flags *globalFlags) *cobra.Command {
	var graphFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Prepare the data then execute every notebook in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}

			prepare, err := flags.prepareCommand(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()

			msr := measure.NewDefaultMeasure()
			pipeOpts := []model.PipelineOption{measure.PipelineMeasure(msr)}
			if graphFile != "" {
				pipeOpts = append(pipeOpts, drawer.PipelineDrawer(drawer.NewDOTDrawer(graphFile), msr))
			}

			r := runner.New(runner.Config{
				Tool:           cfg.NotebookTool,
				Notebooks:      cfg.Notebooks,
				AllowErrors:    cfg.AllowCellErrors(),
				PrepareCommand: prepare,
			}, runner.NewCommandRunner(cfg.Root, out),
				runner.WithOutput(out),
				runner.WithLogger(slog.Default()),
				runner.WithPipelineOptions(pipeOpts...),
			)

			start := time.Now()
			rep, err := r.RunAll(ctx)
			printSummary(out, rep, time.Since(start))
			if err != nil {
				return err
			}

			logDurations(rep, msr)
			if graphFile != "" {
				slog.Info("run graph written", "path", graphFile)
			}

			return nil
		},
	}
	cmd.Flags().StringVar(&graphFile, "graph", "", "Write the executed steps as a Graphviz DOT file")

	return cmd
}

func printSummary(out io.Writer, rep *runner.Report, elapsed time.Duration) {
	fmt.Fprintln(out, ui.Section("Summary"))
	for _, step := range rep.Steps {
		switch step.Status {
		case runner.StatusCompleted:
			fmt.Fprintln(out, ui.SuccessMsg("%s %s", step.Name, ui.Muted(step.Duration.Round(time.Millisecond).String())))
		case runner.StatusFailed:
			fmt.Fprintln(out, ui.ErrorMsg("%s", step.Name))
		default:
			fmt.Fprintln(out, ui.Muted("  "+step.Name+" (skipped)"))
		}
	}

	if rep.State == runner.StateDone {
		fmt.Fprintln(out, ui.SuccessMsg("Pipeline finished in %s", elapsed.Round(time.Millisecond)))

		return
	}
	fmt.Fprintln(out, ui.WarnMsg("Pipeline %s after %d of %d steps", rep.State, rep.Completed(), len(rep.Steps)))
}

func logDurations(rep *runner.Report, msr measure.Measure) {
	for _, step := range rep.Steps {
		mt := msr.GetMetric(step.Name)
		if mt == nil {
			continue
		}
		slog.Info("step timing", "step", step.Name, "computation", mt.TotalComputation(), "runs", mt.Count())
	}
}
