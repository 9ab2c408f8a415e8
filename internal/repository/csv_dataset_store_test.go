package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCSVDatasetStoreLoad(t *testing.T) {
	path := writeCSV(t, "ts,close,volume\n2024-01-01,10.5,100\n2024-01-02,11,200\n")

	obs, err := NewCSVDatasetStore(path, "ts").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, obs, 2)

	assert.Equal(t, "2024-01-01", obs[0].Timestamp)
	assert.Equal(t, map[string]float64{"close": 10.5, "volume": 100}, obs[0].Values)
	assert.Equal(t, map[string]float64{"close": 11, "volume": 200}, obs[1].Values)
}

func TestCSVDatasetStoreMissingTimestampColumn(t *testing.T) {
	path := writeCSV(t, "date,close\n2024-01-01,10\n")

	_, err := NewCSVDatasetStore(path, "ts").Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"ts"`)
}

func TestCSVDatasetStoreBadValue(t *testing.T) {
	path := writeCSV(t, "ts,close\n2024-01-01,10\n2024-01-02,oops\n")

	_, err := NewCSVDatasetStore(path, "ts").Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestCSVDatasetStoreMissingFile(t *testing.T) {
	_, err := NewCSVDatasetStore(filepath.Join(t.TempDir(), "nope.csv"), "ts").Load(context.Background())
	assert.Error(t, err)
}
