package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"FinFold/internal/domain/models"
	domrepo "FinFold/internal/domain/repository"
	pkgch "FinFold/pkg/clickhouse"
)

// CHResultStore persists flattened prediction rows to ClickHouse.
type CHResultStore struct {
	ch    *pkgch.Client
	db    *sql.DB
	table string
}

// NewCHResultStore builds a result store over an existing client.
func NewCHResultStore(ch *pkgch.Client, table string) *CHResultStore {
	return &CHResultStore{ch: ch, db: ch.DB(), table: table}
}

func (s *CHResultStore) Init(ctx context.Context) error {
	stmt := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            run_id String,
            ts DateTime64(3, 'UTC'),
            actual Float64,
            predicted Float64,
            inserted_at DateTime DEFAULT now()
        ) ENGINE = MergeTree()
        ORDER BY (run_id, ts)
    `, s.table)
	return s.ch.InitSchema(ctx, []string{stmt})
}

func (s *CHResultStore) StoreRows(ctx context.Context, runID string, rows []models.PredictionRecord) error {
	if len(rows) == 0 {
		return nil
	}

	// Multi-row VALUES chunks keep round-trips down without needing the
	// native batch API.
	const chunkSize = 2000
	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*4)
		for _, r := range rows[start:end] {
			values = append(values, "(?, ?, ?, ?)")
			args = append(args, runID, r.Timestamp, r.Actual, r.Predicted)
		}

		q := fmt.Sprintf("INSERT INTO %s (run_id, ts, actual, predicted) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store rows: %w", err)
		}
	}
	return nil
}

// FetchRows pages a run's stored predictions in time order.
func (s *CHResultStore) FetchRows(ctx context.Context, runID string, offset, limit int) ([]models.PredictionRecord, int64, error) {
	var total int64
	countQ := fmt.Sprintf("SELECT count() FROM %s WHERE run_id = ?", s.table)
	if err := s.db.QueryRowContext(ctx, countQ, runID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count rows: %w", err)
	}

	q := fmt.Sprintf(
		"SELECT ts, actual, predicted FROM %s WHERE run_id = ? ORDER BY ts ASC LIMIT ? OFFSET ?",
		s.table)
	rows, err := s.db.QueryContext(ctx, q, runID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch rows: %w", err)
	}
	defer rows.Close()

	out := make([]models.PredictionRecord, 0, limit)
	for rows.Next() {
		var r models.PredictionRecord
		if err := rows.Scan(&r.Timestamp, &r.Actual, &r.Predicted); err != nil {
			return nil, 0, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows: %w", err)
	}
	return out, total, nil
}

func (s *CHResultStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *CHResultStore) Close() error {
	// The client is shared; its owner closes it.
	return nil
}

var _ domrepo.ResultSink = (*CHResultStore)(nil)
