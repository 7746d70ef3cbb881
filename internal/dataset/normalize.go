package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/churn-pipeline/pkg/pipeline"
)

const utf8BOM = "\ufeff"

// ParseNumber parses a plain decimal number, surrounding spaces allowed.
// Blank, non-decimal (hexadecimal, "inf", "nan"...) and out of range values are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	for _, r := range s {
		if !strings.ContainsRune("0123456789+-.eE", r) {
			return 0, false
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

// FormatNumber prints v the way the notebooks expect a float column: shortest representation,
// with a trailing ".0" for integral values and an exponent for very large or very small magnitudes.
func FormatNumber(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// NormalizeNumber converts s to its numeric form, unparseable values becoming 0.
func NormalizeNumber(s string) string {
	v, ok := ParseNumber(s)
	if !ok {
		return FormatNumber(0)
	}

	return FormatNumber(v)
}

type normalizeStats struct {
	rows    int
	coerced int
}

// NormalizeAndSave writes the processed CSV: the raw CSV with the configured column normalized.
// Rows keep their order and other columns are copied as is.
//
// A missing raw CSV is logged and nothing is written, unless the preparer is strict.
func (p *Preparer) NormalizeAndSave(ctx context.Context) error {
	rawPath := p.cfg.rawPath()

	_, err := os.Stat(rawPath)
	if errors.Is(err, os.ErrNotExist) {
		if p.cfg.StrictInput {
			return errors.Wrap(ErrRawDataMissing, rawPath)
		}
		p.logger.Error("raw data file not found", "path", rawPath)

		return nil
	}

	in, err := os.Open(rawPath)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", rawPath)
	}
	defer in.Close()

	p.logger.Info("loading raw data", "path", rawPath)

	reader := csv.NewReader(in)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return errors.Wrap(ErrEmptyRawData, rawPath)
	}
	if err != nil {
		return errors.Wrapf(err, "unable to read header of %s", rawPath)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	col := -1
	for i, name := range header {
		if name == p.cfg.Column {
			col = i

			break
		}
	}
	if col < 0 {
		return errors.Wrapf(ErrColumnNotFound, "%s in %s", p.cfg.Column, rawPath)
	}

	out, err := os.CreateTemp(p.cfg.DataDir, ".processed-*.csv")
	if err != nil {
		return errors.Wrapf(err, "unable to create temporary file in %s", p.cfg.DataDir)
	}
	defer os.Remove(out.Name()) //nolint:errcheck

	stats, err := p.normalizeRows(ctx, reader, header, col, out)
	if err != nil {
		_ = out.Close()

		return err
	}

	err = out.Close()
	if err != nil {
		return errors.Wrapf(err, "unable to close %s", out.Name())
	}

	processed := p.cfg.processedPath()
	err = os.Rename(out.Name(), processed)
	if err != nil {
		return errors.Wrapf(err, "unable to save processed data to %s", processed)
	}

	p.logger.Info("preprocessing complete",
		"path", processed, "rows", stats.rows, "column", p.cfg.Column, "coerced", stats.coerced)

	return nil
}

// normalizeRows streams the records through a read, normalize, write pipeline.
func (p *Preparer) normalizeRows(ctx context.Context, reader *csv.Reader, header []string, col int, out io.Writer) (*normalizeStats, error) {
	writer := csv.NewWriter(out)

	err := writer.Write(header)
	if err != nil {
		return nil, errors.Wrap(err, "unable to write header")
	}

	pipe, err := pipeline.New(ctx)
	if err != nil {
		return nil, err
	}

	records, err := pipeline.AddRootStep(pipe, "read", func(ctx context.Context, rootChan chan<- []string) error {
		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return errors.Wrap(err, "unable to read record")
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case rootChan <- record:
			}
		}
	})
	if err != nil {
		return nil, err
	}

	stats := &normalizeStats{}
	normalized, err := pipeline.AddStepOneToOne(pipe, "normalize", records, func(_ context.Context, record []string) ([]string, error) {
		stats.rows++
		if _, ok := ParseNumber(record[col]); !ok {
			stats.coerced++
		}
		record[col] = NormalizeNumber(record[col])

		return record, nil
	})
	if err != nil {
		return nil, err
	}

	err = pipeline.AddSink(pipe, "write", normalized, func(_ context.Context, record []string) error {
		return writer.Write(record)
	})
	if err != nil {
		return nil, err
	}

	err = pipe.Run()
	if err != nil {
		return nil, errors.Wrap(err, "unable to normalize records")
	}

	writer.Flush()
	err = writer.Error()
	if err != nil {
		return nil, errors.Wrap(err, "unable to flush records")
	}

	return stats, nil
}
