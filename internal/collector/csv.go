// Package collector gathers raw reports from data sources. The CSV
// collector replays captured social media exports; the mock collectors
// produce fixed sample feeds for development.
package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/metrowatch/sentiment-etl/internal/domain"
)

// csvConfidence is assigned to replayed rows, which carry no model score.
const csvConfidence = 0.75

// Timestamp layouts accepted in CSV exports, tried in order.
var csvTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// CSVCollector reads reports from a CSV export with columns source,
// content, location, timestamp, and optionally tags. An empty sourceFilter
// accepts every row; otherwise only rows whose normalized source matches
// are returned.
type CSVCollector struct {
	path         string
	sourceFilter string
	logger       *slog.Logger
}

// NewCSVCollector creates a collector reading from path. A non-empty
// sourceFilter is normalized onto the calibration set; an empty one stays
// empty and disables filtering.
func NewCSVCollector(path, sourceFilter string, logger *slog.Logger) *CSVCollector {
	if sourceFilter != "" {
		sourceFilter = domain.NormalizeSource(sourceFilter)
	}
	return &CSVCollector{
		path:         path,
		sourceFilter: sourceFilter,
		logger:       logger,
	}
}

func (c *CSVCollector) Name() string { return "csv" }

// Collect reads up to limit matching rows. Malformed rows are logged and
// skipped.
func (c *CSVCollector) Collect(ctx context.Context, limit int) ([]domain.RawReport, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"source", "content", "timestamp"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv missing %q column", required)
		}
	}

	var reports []domain.RawReport
	for len(reports) < limit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.logger.Warn("skipping malformed csv row", "error", err)
			continue
		}

		report, ok := c.parseRow(row, cols)
		if !ok {
			continue
		}
		if c.sourceFilter != "" && report.Source != c.sourceFilter {
			continue
		}
		reports = append(reports, report)
	}

	return reports, nil
}

func (c *CSVCollector) parseRow(row []string, cols map[string]int) (domain.RawReport, bool) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	text := field("content")
	if text == "" {
		c.logger.Warn("skipping csv row with empty content")
		return domain.RawReport{}, false
	}

	ts, err := parseCSVTime(field("timestamp"))
	if err != nil {
		c.logger.Warn("skipping csv row with bad timestamp", "error", err)
		return domain.RawReport{}, false
	}

	confidence := csvConfidence
	return domain.RawReport{
		Source:     domain.NormalizeSource(field("source")),
		Text:       text,
		Timestamp:  ts,
		Confidence: &confidence,
		Area:       field("location"),
	}, true
}

func parseCSVTime(raw string) (time.Time, error) {
	for _, layout := range csvTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
