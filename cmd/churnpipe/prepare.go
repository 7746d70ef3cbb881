package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/askiada/churn-pipeline/internal/config"
	"github.com/askiada/churn-pipeline/internal/dataset"
)

func prepareCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Download, extract and normalize the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}

			p := dataset.New(datasetConfig(cfg), dataset.WithLogger(slog.Default()))

			return p.Prepare(cmd.Context())
		},
	}
}

func datasetConfig(cfg *config.Config) dataset.Config {
	return dataset.Config{
		DataDir:      cfg.DataPath(),
		URL:          cfg.Dataset.URL,
		ZipName:      cfg.Dataset.ZipName,
		RawCSV:       cfg.Dataset.RawCSV,
		ProcessedCSV: cfg.Dataset.ProcessedCSV,
		Column:       cfg.Dataset.Column,
		Username:     cfg.Dataset.Username,
		Key:          cfg.Dataset.Key,
		StrictInput:  cfg.StrictInput,
	}
}
