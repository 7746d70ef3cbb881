package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/churn-pipeline/internal/config"
	"github.com/askiada/churn-pipeline/internal/logging"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	root       string
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "churnpipe",
		Short:         "Prepare the churn dataset and run the analysis notebooks",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelInfo
			if flags.debug {
				level = logging.LevelDebug
			}

			return logging.Configure(level)
		},
	}
	root.PersistentFlags().StringVar(&flags.root, "root", ".", "Project root directory")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Configuration file (default <root>/"+config.FileName+")")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")

	root.AddCommand(runCmd(flags))
	root.AddCommand(prepareCmd(flags))

	return root
}

func (f *globalFlags) load() (*config.Config, error) {
	return config.Load(f.root, f.configPath)
}

// prepareCommand re-executes the current binary so the data preparation runs in its own process.
func (f *globalFlags) prepareCommand(cfg *config.Config) ([]string, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, errors.Wrap(err, "unable to locate the churnpipe binary")
	}

	argv := []string{exe, "prepare", "--root", cfg.Root}
	if f.configPath != "" {
		path, err := filepath.Abs(f.configPath)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to resolve %s", f.configPath)
		}
		argv = append(argv, "--config", path)
	}
	if f.debug {
		argv = append(argv, "--debug")
	}

	return argv, nil
}
