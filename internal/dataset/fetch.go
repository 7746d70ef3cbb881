package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/pkg/errors"
)

const chunkSize = 8192

// StatusError is returned when the dataset server answers with a non-success status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("download %s: unexpected status %s", e.URL, e.Status)
}

// FetchArchive downloads the dataset archive into the data directory, creating the directory if needed.
// The body is streamed to disk chunk by chunk.
func (p *Preparer) FetchArchive(ctx context.Context) error {
	err := os.MkdirAll(p.cfg.DataDir, 0o755)
	if err != nil {
		return errors.Wrapf(err, "unable to create data directory %s", p.cfg.DataDir)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL, nil)
	if err != nil {
		return errors.Wrapf(err, "unable to create request for %s", p.cfg.URL)
	}
	if p.cfg.Username != "" && p.cfg.Key != "" {
		req.SetBasicAuth(p.cfg.Username, p.cfg.Key)
	}

	p.logger.Info("downloading dataset", "url", p.cfg.URL)

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "unable to download %s", p.cfg.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{URL: p.cfg.URL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	zipPath := p.cfg.zipPath()
	file, err := os.Create(zipPath)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", zipPath)
	}

	// hide ReadFrom/WriteTo so the copy goes through the fixed size buffer
	written, err := io.CopyBuffer(struct{ io.Writer }{file}, struct{ io.Reader }{resp.Body}, make([]byte, chunkSize))
	if err != nil {
		_ = file.Close()

		return errors.Wrapf(err, "unable to write %s", zipPath)
	}

	err = file.Close()
	if err != nil {
		return errors.Wrapf(err, "unable to close %s", zipPath)
	}

	p.logger.Info("dataset downloaded", "path", zipPath, "bytes", written)

	return nil
}
