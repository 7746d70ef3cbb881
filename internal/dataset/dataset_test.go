package dataset_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/churn-pipeline/internal/dataset"
)

func TestPrepare(t *testing.T) {
	t.Parallel()

	archive := zipArchive(t, map[string]string{rawName: rawCSV})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "data")
	prep := dataset.New(testConfig(dir, srv.URL), dataset.WithLogger(discardLogger()))

	require.NoError(t, prep.Prepare(context.Background()))

	got, err := os.ReadFile(filepath.Join(dir, processedName))
	require.NoError(t, err)
	assert.Equal(t, processedCSV, string(got))
	assert.FileExists(t, filepath.Join(dir, rawName))
	assert.NoFileExists(t, filepath.Join(dir, zipName))
}

func TestPrepareSkipsWhenProcessedExists(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	processed := filepath.Join(dir, processedName)
	require.NoError(t, os.WriteFile(processed, []byte("already,here\n"), 0o600))

	prep := dataset.New(testConfig(dir, srv.URL), dataset.WithLogger(discardLogger()))
	require.NoError(t, prep.Prepare(context.Background()))

	assert.Zero(t, hits.Load())
	got, err := os.ReadFile(processed)
	require.NoError(t, err)
	assert.Equal(t, "already,here\n", string(got))
}

func TestFetchArchiveStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "nested", "data")
	prep := dataset.New(testConfig(dir, srv.URL), dataset.WithLogger(discardLogger()))

	err := prep.FetchArchive(context.Background())

	var statusErr *dataset.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.DirExists(t, dir)
	assert.NoFileExists(t, filepath.Join(dir, zipName))
}

func TestFetchArchiveBasicAuth(t *testing.T) {
	t.Parallel()

	payload := []byte("not really a zip but streamed to disk anyway")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, key, ok := r.BasicAuth()
		if !ok || user != "alice" || key != "secret" {
			w.WriteHeader(http.StatusForbidden)

			return
		}
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := testConfig(dir, srv.URL)
	cfg.Username = "alice"
	cfg.Key = "secret"

	prep := dataset.New(cfg, dataset.WithLogger(discardLogger()), dataset.WithHTTPClient(srv.Client()))
	require.NoError(t, prep.FetchArchive(context.Background()))

	got, err := os.ReadFile(filepath.Join(dir, zipName))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFetchArchiveNetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	prep := dataset.New(testConfig(t.TempDir(), url), dataset.WithLogger(discardLogger()))
	assert.Error(t, prep.FetchArchive(context.Background()))
}

func TestExtractArchiveCorrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, zipName), []byte("garbage"), 0o600))

	prep := dataset.New(testConfig(dir, ""), dataset.WithLogger(discardLogger()))
	assert.Error(t, prep.ExtractArchive())
}

func TestExtractArchiveUnsafePath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	archive := zipArchive(t, map[string]string{"../escape.csv": "x"})
	require.NoError(t, os.WriteFile(filepath.Join(dir, zipName), archive, 0o600))

	prep := dataset.New(testConfig(dir, ""), dataset.WithLogger(discardLogger()))
	require.ErrorIs(t, prep.ExtractArchive(), dataset.ErrUnsafePath)
	assert.NoFileExists(t, filepath.Join(root, "escape.csv"))
}

func TestExtractArchiveNestedEntries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archive := zipArchive(t, map[string]string{"sub/readme.txt": "hello", rawName: rawCSV})
	require.NoError(t, os.WriteFile(filepath.Join(dir, zipName), archive, 0o600))

	prep := dataset.New(testConfig(dir, ""), dataset.WithLogger(discardLogger()))
	require.NoError(t, prep.ExtractArchive())

	assert.FileExists(t, filepath.Join(dir, "sub", "readme.txt"))
	assert.FileExists(t, filepath.Join(dir, rawName))
	assert.NoFileExists(t, filepath.Join(dir, zipName))
}

func TestNormalizeAndSaveMissingRaw(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	prep := dataset.New(testConfig(dir, ""), dataset.WithLogger(discardLogger()))

	require.NoError(t, prep.NormalizeAndSave(context.Background()))
	assert.NoFileExists(t, filepath.Join(dir, processedName))
}

func TestNormalizeAndSaveMissingRawStrict(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := testConfig(dir, "")
	cfg.StrictInput = true
	prep := dataset.New(cfg, dataset.WithLogger(discardLogger()))

	require.ErrorIs(t, prep.NormalizeAndSave(context.Background()), dataset.ErrRawDataMissing)
	assert.NoFileExists(t, filepath.Join(dir, processedName))
}

func TestNormalizeAndSaveMissingColumn(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, rawName), []byte("a,b\n1,2\n"), 0o600))
	prep := dataset.New(testConfig(dir, ""), dataset.WithLogger(discardLogger()))

	require.ErrorIs(t, prep.NormalizeAndSave(context.Background()), dataset.ErrColumnNotFound)
	assert.NoFileExists(t, filepath.Join(dir, processedName))
}

func TestNormalizeAndSaveEmptyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, rawName), nil, 0o600))
	prep := dataset.New(testConfig(dir, ""), dataset.WithLogger(discardLogger()))

	require.ErrorIs(t, prep.NormalizeAndSave(context.Background()), dataset.ErrEmptyRawData)
}

func TestNormalizeAndSaveMalformedRowLeavesNoOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	raw := "customerID,TotalCharges\n1,2.5\n2,3,extra\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, rawName), []byte(raw), 0o600))
	prep := dataset.New(testConfig(dir, ""), dataset.WithLogger(discardLogger()))

	require.Error(t, prep.NormalizeAndSave(context.Background()))
	assert.NoFileExists(t, filepath.Join(dir, processedName))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary output must be removed")
}

func TestNormalizeAndSaveIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rawPath := filepath.Join(dir, rawName)
	processedPath := filepath.Join(dir, processedName)
	require.NoError(t, os.WriteFile(rawPath, []byte("\ufeff"+rawCSV), 0o600))

	prep := dataset.New(testConfig(dir, ""), dataset.WithLogger(discardLogger()))
	require.NoError(t, prep.NormalizeAndSave(context.Background()))

	first, err := os.ReadFile(processedPath)
	require.NoError(t, err)
	assert.Equal(t, processedCSV, string(first))

	// feed the processed output back as raw input
	require.NoError(t, os.WriteFile(rawPath, first, 0o600))
	require.NoError(t, prep.NormalizeAndSave(context.Background()))

	second, err := os.ReadFile(processedPath)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}
