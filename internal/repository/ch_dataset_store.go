package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FinFold/internal/domain/models"
	domrepo "FinFold/internal/domain/repository"
	pkgch "FinFold/pkg/clickhouse"
	applogger "FinFold/pkg/logger"
)

// CHDatasetStore loads the evaluation dataset from a ClickHouse table. The
// query selects the timestamp column plus every configured value column,
// ordered ascending by timestamp.
type CHDatasetStore struct {
	db      *sql.DB
	table   string
	tsCol   string
	valCols []string
	log     *applogger.Logger
}

// NewCHDatasetStore builds a dataset store over an existing client.
func NewCHDatasetStore(ch *pkgch.Client, table, tsCol string, valCols []string) *CHDatasetStore {
	return &CHDatasetStore{db: ch.DB(), table: table, tsCol: tsCol, valCols: valCols}
}

// SetLogger injects a structured logger.
func (s *CHDatasetStore) SetLogger(l *applogger.Logger) { s.log = l }

func (s *CHDatasetStore) Load(ctx context.Context) ([]models.Observation, error) {
	start := time.Now()

	cols := append([]string{s.tsCol}, s.valCols...)
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s ASC",
		strings.Join(cols, ", "), s.table, s.tsCol)

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		if s.log != nil {
			s.log.Error("clickhouse dataset query error",
				applogger.String("table", s.table),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	defer rows.Close()

	out := make([]models.Observation, 0, 1024)
	vals := make([]float64, len(s.valCols))
	scanDest := make([]interface{}, 0, len(cols))
	for rows.Next() {
		var ts time.Time
		scanDest = scanDest[:0]
		scanDest = append(scanDest, &ts)
		for i := range vals {
			scanDest = append(scanDest, &vals[i])
		}
		if err := rows.Scan(scanDest...); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}

		values := make(map[string]float64, len(s.valCols))
		for i, name := range s.valCols {
			values[name] = vals[i]
		}
		out = append(out, models.Observation{
			Timestamp: ts.UTC().Format(time.RFC3339Nano),
			Values:    values,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if s.log != nil {
		s.log.Info("dataset loaded",
			applogger.String("table", s.table),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

var _ domrepo.DatasetSource = (*CHDatasetStore)(nil)
