package dataset

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ExtractArchive unpacks the downloaded archive into the data directory and removes the archive.
func (p *Preparer) ExtractArchive() error {
	zipPath := p.cfg.zipPath()

	p.logger.Info("unzipping archive", "path", zipPath)

	reader, err := zip.OpenReader(zipPath)
	if errors.Is(err, zip.ErrInsecurePath) {
		_ = reader.Close()

		return errors.Wrap(ErrUnsafePath, zipPath)
	}
	if err != nil {
		return errors.Wrapf(err, "unable to open archive %s", zipPath)
	}

	for _, file := range reader.File {
		err = extractFile(p.cfg.DataDir, file)
		if err != nil {
			_ = reader.Close()

			return errors.Wrapf(err, "unable to extract %s", file.Name)
		}
	}

	err = reader.Close()
	if err != nil {
		return errors.Wrapf(err, "unable to close archive %s", zipPath)
	}

	p.logger.Info("data unzipped", "dir", p.cfg.DataDir, "files", len(reader.File))

	err = os.Remove(zipPath)
	if err != nil {
		return errors.Wrapf(err, "unable to remove archive %s", zipPath)
	}

	p.logger.Info("removed archive", "path", zipPath)

	return nil
}

func extractFile(dir string, file *zip.File) error {
	target := filepath.Join(dir, filepath.FromSlash(file.Name))

	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errors.Wrap(ErrUnsafePath, file.Name)
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	err = os.MkdirAll(filepath.Dir(target), 0o755)
	if err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	_, err = io.Copy(dst, src)
	if err != nil {
		_ = dst.Close()

		return err
	}

	return dst.Close()
}
