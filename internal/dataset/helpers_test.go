package dataset_test

import (
	"archive/zip"
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/churn-pipeline/internal/dataset"
)

const (
	rawName       = "WA_Fn-UseC_-Telco-Customer-Churn.csv"
	processedName = "churn_data_processed.csv"
	zipName       = "telco-customer-churn.zip"
)

const rawCSV = `customerID,tenure,MonthlyCharges,TotalCharges,Churn
7590-VHVEG,1,29.85,29.85,No
4472-LVYGI,0,52.55, ,No
5575-GNVDE,34,56.95,1889.5,No
3668-QPYBK,2,"1,0",abc,Yes
`

const processedCSV = `customerID,tenure,MonthlyCharges,TotalCharges,Churn
7590-VHVEG,1,29.85,29.85,No
4472-LVYGI,0,52.55,0.0,No
5575-GNVDE,34,56.95,1889.5,No
3668-QPYBK,2,"1,0",0.0,Yes
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(dir, url string) dataset.Config {
	return dataset.Config{
		DataDir:      dir,
		URL:          url,
		ZipName:      zipName,
		RawCSV:       rawName,
		ProcessedCSV: processedName,
		Column:       "TotalCharges",
	}
}

// zipArchive builds an archive holding the given files.
func zipArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}
