// Package config loads the settings of a pipeline run.
//
// Settings are read from a YAML file, by default churnpipe.yaml at the project root. Every field is optional:
// a missing file, or a missing field, falls back to the defaults describing the Telco customer churn project.
// Relative paths are resolved against the project root.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up at the project root.
const FileName = "churnpipe.yaml"

const (
	DefaultDatasetURL   = "https://www.kaggle.com/api/v1/datasets/download/blastchar/telco-customer-churn"
	DefaultZipName      = "telco-customer-churn.zip"
	DefaultRawCSV       = "WA_Fn-UseC_-Telco-Customer-Churn.csv"
	DefaultProcessedCSV = "churn_data_processed.csv"
	DefaultColumn       = "TotalCharges"
	DefaultDataDir      = "data"
	DefaultNotebookTool = "jupyter"
)

// Environment variables holding the dataset credentials. They override the file.
const (
	EnvUsername = "KAGGLE_USERNAME"
	EnvKey      = "KAGGLE_KEY"
)

var ErrNoNotebooks = errors.New("no notebook configured")

// Dataset describes where the raw data comes from and where the processed file goes.
type Dataset struct {
	URL          string `yaml:"url,omitempty"`
	ZipName      string `yaml:"zip_name,omitempty"`
	RawCSV       string `yaml:"raw_csv,omitempty"`
	ProcessedCSV string `yaml:"processed_csv,omitempty"`
	Column       string `yaml:"column,omitempty"`
	Username     string `yaml:"username,omitempty"`
	Key          string `yaml:"key,omitempty"`
}

// Config holds the settings of both the data preparation and the notebook run.
type Config struct {
	// Root is the project root. It is never read from the file.
	Root         string   `yaml:"-"`
	DataDir      string   `yaml:"data_dir,omitempty"`
	Dataset      Dataset  `yaml:"dataset,omitempty"`
	NotebookTool string   `yaml:"notebook_tool,omitempty"`
	Notebooks    []string `yaml:"notebooks,omitempty"`
	AllowErrors  *bool    `yaml:"allow_errors,omitempty"`
	StrictInput  bool     `yaml:"strict_input,omitempty"`
}

// DefaultNotebooks are executed in this order.
func DefaultNotebooks() []string {
	return []string{
		filepath.Join("notebooks", "1_-_Analyse_Exploratoire.ipynb"),
		filepath.Join("notebooks", "2_-_Feature_Engineering.ipynb"),
		filepath.Join("notebooks", "3_-_Modelisation.ipynb"),
		filepath.Join("notebooks", "4_-_Presentation_des_Resultats.ipynb"),
	}
}

// Default returns the configuration used when no file is present.
func Default(root string) *Config {
	allowErrors := true

	return &Config{
		Root:    root,
		DataDir: DefaultDataDir,
		Dataset: Dataset{
			URL:          DefaultDatasetURL,
			ZipName:      DefaultZipName,
			RawCSV:       DefaultRawCSV,
			ProcessedCSV: DefaultProcessedCSV,
			Column:       DefaultColumn,
		},
		NotebookTool: DefaultNotebookTool,
		Notebooks:    DefaultNotebooks(),
		AllowErrors:  &allowErrors,
	}
}

// Path returns the default configuration file location for a project root.
func Path(root string) string {
	return filepath.Join(root, FileName)
}

// Load reads the configuration file at path and fills the gaps with the defaults.
// When path is empty the default location under root is used. A missing file at the
// default location is not an error; a missing file that was asked for explicitly is.
func Load(root, path string) (*Config, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to resolve project root %s", root)
	}

	explicit := path != ""
	if !explicit {
		path = Path(absRoot)
	}

	cfg := Default(absRoot)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fromFile Config
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return nil, errors.Wrapf(err, "unable to parse config %s", path)
		}
		cfg.merge(&fromFile)
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, errors.Wrapf(err, "unable to read config %s", path)
	}

	if v := os.Getenv(EnvUsername); v != "" {
		cfg.Dataset.Username = v
	}
	if v := os.Getenv(EnvKey); v != "" {
		cfg.Dataset.Key = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) merge(o *Config) {
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.Dataset.URL != "" {
		c.Dataset.URL = o.Dataset.URL
	}
	if o.Dataset.ZipName != "" {
		c.Dataset.ZipName = o.Dataset.ZipName
	}
	if o.Dataset.RawCSV != "" {
		c.Dataset.RawCSV = o.Dataset.RawCSV
	}
	if o.Dataset.ProcessedCSV != "" {
		c.Dataset.ProcessedCSV = o.Dataset.ProcessedCSV
	}
	if o.Dataset.Column != "" {
		c.Dataset.Column = o.Dataset.Column
	}
	if o.Dataset.Username != "" {
		c.Dataset.Username = o.Dataset.Username
	}
	if o.Dataset.Key != "" {
		c.Dataset.Key = o.Dataset.Key
	}
	if o.NotebookTool != "" {
		c.NotebookTool = o.NotebookTool
	}
	if len(o.Notebooks) > 0 {
		c.Notebooks = o.Notebooks
	}
	if o.AllowErrors != nil {
		c.AllowErrors = o.AllowErrors
	}
	c.StrictInput = c.StrictInput || o.StrictInput
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if len(c.Notebooks) == 0 {
		return ErrNoNotebooks
	}

	seen := make(map[string]struct{}, len(c.Notebooks))
	for _, nb := range c.Notebooks {
		if nb == "" {
			return errors.New("empty notebook path")
		}
		key := filepath.Clean(nb)
		if _, ok := seen[key]; ok {
			return errors.Errorf("notebook %s listed twice", nb)
		}
		seen[key] = struct{}{}
	}

	for name, v := range map[string]string{
		"dataset.url":           c.Dataset.URL,
		"dataset.zip_name":      c.Dataset.ZipName,
		"dataset.raw_csv":       c.Dataset.RawCSV,
		"dataset.processed_csv": c.Dataset.ProcessedCSV,
		"dataset.column":        c.Dataset.Column,
		"notebook_tool":         c.NotebookTool,
	} {
		if v == "" {
			return errors.Errorf("%s must be set", name)
		}
	}

	return nil
}

// DataPath is the absolute data directory.
func (c *Config) DataPath() string {
	return c.resolve(c.DataDir)
}

// ProcessedCSVPath is the absolute path of the processed dataset.
func (c *Config) ProcessedCSVPath() string {
	return filepath.Join(c.DataPath(), c.Dataset.ProcessedCSV)
}

// AllowCellErrors reports whether notebooks keep running after a failing cell.
func (c *Config) AllowCellErrors() bool {
	return c.AllowErrors == nil || *c.AllowErrors
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(c.Root, p)
}
