package walkforward

import (
	"fmt"
	"sort"
	"time"

	"FinFold/internal/domain/models"
	"FinFold/pkg/util"
)

type record struct {
	t      time.Time
	values map[string]float64
}

// Frame is a normalized, timestamp-indexed view of the input series: a
// derived copy sorted ascending by timestamp, range-sliceable by time. The
// caller's observations are never mutated.
type Frame struct {
	rows []record
}

// NewFrame normalizes raw observations into a Frame. Timestamps are coerced
// to UTC time.Time; a value that cannot be parsed fails the whole build with
// ErrMalformedTimestamp identifying the offending row.
func NewFrame(obs []models.Observation) (*Frame, error) {
	rows := make([]record, 0, len(obs))
	for i, o := range obs {
		t, ok := util.ParseTime(o.Timestamp)
		if !ok {
			return nil, fmt.Errorf("row %d: %w: %q", i, ErrMalformedTimestamp, o.Timestamp)
		}
		rows = append(rows, record{t: t.UTC(), values: o.Values})
	}

	// Stable keeps source order for equal timestamps.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].t.Before(rows[j].t) })

	return &Frame{rows: rows}, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.rows) }

// MinTime returns the earliest timestamp. Zero time for an empty frame.
func (f *Frame) MinTime() time.Time {
	if len(f.rows) == 0 {
		return time.Time{}
	}
	return f.rows[0].t
}

// MaxTime returns the latest timestamp. Zero time for an empty frame.
func (f *Frame) MaxTime() time.Time {
	if len(f.rows) == 0 {
		return time.Time{}
	}
	return f.rows[len(f.rows)-1].t
}

// Between returns the sub-frame whose timestamps fall in [from, to], both
// endpoints inclusive. A row precisely at a window boundary therefore lands
// in both adjacent slices. The returned frame shares backing storage with f.
func (f *Frame) Between(from, to time.Time) *Frame {
	lo := sort.Search(len(f.rows), func(i int) bool { return !f.rows[i].t.Before(from) })
	hi := sort.Search(len(f.rows), func(i int) bool { return f.rows[i].t.After(to) })
	if lo >= hi {
		return &Frame{}
	}
	return &Frame{rows: f.rows[lo:hi]}
}

// Times returns the timestamps in row order.
func (f *Frame) Times() []time.Time {
	out := make([]time.Time, len(f.rows))
	for i, r := range f.rows {
		out[i] = r.t
	}
	return out
}

// Column materializes a single named column in row order.
func (f *Frame) Column(name string) ([]float64, error) {
	out := make([]float64, len(f.rows))
	for i, r := range f.rows {
		v, ok := r.values[name]
		if !ok {
			return nil, fmt.Errorf("row %d: %w: %q", i, ErrMissingColumn, name)
		}
		out[i] = v
	}
	return out, nil
}

// Matrix materializes the named columns as a row-major matrix.
func (f *Frame) Matrix(names []string) ([][]float64, error) {
	out := make([][]float64, len(f.rows))
	for i, r := range f.rows {
		row := make([]float64, len(names))
		for j, name := range names {
			v, ok := r.values[name]
			if !ok {
				return nil, fmt.Errorf("row %d: %w: %q", i, ErrMissingColumn, name)
			}
			row[j] = v
		}
		out[i] = row
	}
	return out, nil
}
