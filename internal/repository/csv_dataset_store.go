package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"FinFold/internal/domain/models"
	domrepo "FinFold/internal/domain/repository"
)

// CSVDatasetStore loads observations from a headered CSV file. Every column
// except the timestamp column is parsed as float64. Row order is preserved;
// sorting happens downstream.
type CSVDatasetStore struct {
	path  string
	tsCol string
}

// NewCSVDatasetStore builds a CSV-backed dataset source.
func NewCSVDatasetStore(path, tsCol string) *CSVDatasetStore {
	return &CSVDatasetStore{path: path, tsCol: tsCol}
}

func (s *CSVDatasetStore) Load(ctx context.Context) ([]models.Observation, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	tsIdx := -1
	for i, name := range header {
		if name == s.tsCol {
			tsIdx = i
			break
		}
	}
	if tsIdx < 0 {
		return nil, fmt.Errorf("timestamp column %q not in header", s.tsCol)
	}

	var out []models.Observation
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		values := make(map[string]float64, len(header)-1)
		for i, field := range record {
			if i == tsIdx {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %q: %w", line, header[i], err)
			}
			values[header[i]] = v
		}
		out = append(out, models.Observation{
			Timestamp: record[tsIdx],
			Values:    values,
		})
	}
	return out, nil
}

var _ domrepo.DatasetSource = (*CSVDatasetStore)(nil)
