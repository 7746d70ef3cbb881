// Package dataset prepares the churn dataset consumed by the analysis notebooks.
//
// Preparation downloads the dataset archive, extracts it into the data directory and writes a processed copy of
// the raw CSV where the charges column is numeric. It runs at most once: when the processed file exists the whole
// preparation is skipped, without any network call.
package dataset

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

var (
	ErrRawDataMissing = errors.New("raw data file not found")
	ErrColumnNotFound = errors.New("column not found")
	ErrEmptyRawData   = errors.New("raw data file is empty")
	ErrUnsafePath     = errors.New("archive entry escapes the data directory")
)

// Config locates the dataset on the network and on disk.
type Config struct {
	DataDir      string
	URL          string
	ZipName      string
	RawCSV       string
	ProcessedCSV string
	// Column is normalized to a number.
	Column string
	// Username and Key are sent as basic auth when both are set.
	Username string
	Key      string
	// StrictInput turns a missing raw CSV into an error instead of a logged no-op.
	StrictInput bool
}

func (c Config) zipPath() string       { return filepath.Join(c.DataDir, c.ZipName) }
func (c Config) rawPath() string       { return filepath.Join(c.DataDir, c.RawCSV) }
func (c Config) processedPath() string { return filepath.Join(c.DataDir, c.ProcessedCSV) }

// Preparer downloads and cleans the dataset.
type Preparer struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

type Option func(p *Preparer)

func WithHTTPClient(client *http.Client) Option {
	return func(p *Preparer) {
		p.client = client
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Preparer) {
		p.logger = logger
	}
}

func New(cfg Config, opts ...Option) *Preparer {
	p := &Preparer{
		cfg:    cfg,
		client: http.DefaultClient,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Prepare runs the whole preparation unless the processed CSV already exists.
func (p *Preparer) Prepare(ctx context.Context) error {
	processed := p.cfg.processedPath()

	_, err := os.Stat(processed)
	switch {
	case err == nil:
		p.logger.Info("processed data already found, skipping preparation", "path", processed)

		return nil
	case !errors.Is(err, os.ErrNotExist):
		return errors.Wrapf(err, "unable to stat %s", processed)
	}

	err = p.FetchArchive(ctx)
	if err != nil {
		return err
	}

	err = p.ExtractArchive()
	if err != nil {
		return err
	}

	return p.NormalizeAndSave(ctx)
}
