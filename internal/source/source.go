// Package source provides the tabular data sources the record aggregator reads.
// Every implementation returns sheets in the backend's own enumeration order,
// each with its header row still in place.
package source

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/guildstats/recordbot/internal/models"
)

// ErrNoSheets is returned when a spreadsheet or workbook has no tabs at all
var ErrNoSheets = errors.New("source has no sheets")

var (
	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recordbot_source_fetch_duration_seconds",
		Help:    "Duration of full sheet scans against the record source",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	fetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recordbot_source_fetch_failures_total",
		Help: "Total number of failed sheet scans",
	}, []string{"source"})
)

// Source is a spreadsheet-like backend queryable as a list of named sheets
type Source interface {
	Sheets(ctx context.Context) ([]models.Sheet, error)
}

// Func adapts a plain function to Source
type Func func(ctx context.Context) ([]models.Sheet, error)

func (f Func) Sheets(ctx context.Context) ([]models.Sheet, error) {
	return f(ctx)
}

type instrumented struct {
	next Source
	name string
}

// WithMetrics records scan duration and failures under the given source label
func WithMetrics(next Source, name string) Source {
	return &instrumented{next: next, name: name}
}

func (s *instrumented) Sheets(ctx context.Context) ([]models.Sheet, error) {
	start := time.Now()
	sheets, err := s.next.Sheets(ctx)
	fetchDuration.WithLabelValues(s.name).Observe(time.Since(start).Seconds())
	if err != nil {
		fetchFailures.WithLabelValues(s.name).Inc()
	}
	return sheets, err
}

// padRows pads every row to the widest row of the sheet. Backends that trim
// trailing empty cells would otherwise drop rows like ("name", "") that still
// mark the sheet as seen for that name.
func padRows(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		}
	}
	return rows
}
