// Command genmock runs the built-in mock feeds through the real
// normalization and alerting path and writes the results as JSON fixtures.
// A fixed clock keeps record IDs, timestamps, and alert output reproducible
// across runs, so the fixtures can back test assertions.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -records-out data/mock/sentiment_records.json \
//	  -alerts-out data/mock/sentiment_alerts.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/metrowatch/sentiment-etl/internal/alert"
	"github.com/metrowatch/sentiment-etl/internal/collector"
	"github.com/metrowatch/sentiment-etl/internal/config"
	"github.com/metrowatch/sentiment-etl/internal/domain"
	"github.com/metrowatch/sentiment-etl/internal/observability"
	"github.com/metrowatch/sentiment-etl/internal/pipeline"
)

var baseTime = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	recordsOut := flag.String("records-out", "", "output path for normalized record fixture")
	alertsOut := flag.String("alerts-out", "", "output path for generated alert fixture")
	csvPath := flag.String("csv", "", "optional CSV file to collect instead of the mock feeds")
	limit := flag.Int("limit", 100, "per-collector report limit")
	flag.Parse()

	if *recordsOut == "" || *alertsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -records-out, -alerts-out")
	}

	// A fixed clock makes collected timestamps and alert times reproducible.
	clock := clockwork.NewFakeClockAt(baseTime)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	tables := config.DefaultTables()

	normalizer := pipeline.NewNormalizer(
		domain.NewClassifier(tables.Areas, tables.Categories, tables.Dialects, tables.Relevance, tables.Primary),
		domain.NewCorrector(tables.Calibrations),
		pipeline.NewLexiconScorer(),
		clock, logger, metrics,
	)

	var collectors []pipeline.Collector
	if *csvPath != "" {
		collectors = []pipeline.Collector{collector.NewCSVCollector(*csvPath, "", logger)}
	} else {
		collectors = []pipeline.Collector{
			collector.NewMockSocial(clock),
			collector.NewMockNews(clock),
			collector.NewMockOfficial(clock),
		}
	}

	ctx := context.Background()
	var raws []domain.RawReport
	for _, c := range collectors {
		reports, err := c.Collect(ctx, *limit)
		if err != nil {
			return fmt.Errorf("collecting %s: %w", c.Name(), err)
		}
		raws = append(raws, reports...)
		log.Printf("%s: %d reports", c.Name(), len(reports))
	}

	records := normalizer.NormalizeBatch(raws)
	alerts := alert.NewGenerator(config.AlertThresholds{
		High:           -0.5,
		Medium:         -0.3,
		MinimumSources: 3,
	}, clock).Generate(records)

	log.Printf("total: %d records, %d alerts", len(records), len(alerts))

	if err := writeJSON(*recordsOut, records); err != nil {
		return fmt.Errorf("writing record fixture: %w", err)
	}
	log.Printf("wrote record fixture: %s", *recordsOut)

	if err := writeJSON(*alertsOut, alerts); err != nil {
		return fmt.Errorf("writing alert fixture: %w", err)
	}
	log.Printf("wrote alert fixture: %s", *alertsOut)

	printStats(records, alerts)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

type labelCount struct {
	label string
	count int
}

func sortedCounts(m map[string]int) []labelCount {
	out := make([]labelCount, 0, len(m))
	for k, v := range m {
		out = append(out, labelCount{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].label < out[j].label
	})
	return out
}

func printStats(records []domain.SentimentRecord, alerts []domain.Alert) {
	sourceCounts := map[string]int{}
	areaCounts := map[string]int{}
	categoryCounts := map[string]int{}
	languageCounts := map[string]int{}
	var negative int
	var sum float64

	for i := range records {
		r := &records[i]
		sourceCounts[r.Source]++
		areaCounts[r.Location]++
		categoryCounts[r.Category]++
		languageCounts[r.Language]++
		sum += r.AdjustedSentiment
		if r.AdjustedSentiment < 0 {
			negative++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total records: %d\n", len(records))
	if len(records) > 0 {
		fmt.Printf("Mean adjusted sentiment: %.4f\n", sum/float64(len(records)))
	}
	fmt.Printf("Negative records: %d\n", negative)

	fmt.Printf("By source:")
	for _, c := range sortedCounts(sourceCounts) {
		fmt.Printf(" %s=%d", c.label, c.count)
	}
	fmt.Println()

	fmt.Printf("By category:")
	for _, c := range sortedCounts(categoryCounts) {
		fmt.Printf(" %s=%d", c.label, c.count)
	}
	fmt.Println()

	fmt.Printf("By language:")
	for _, c := range sortedCounts(languageCounts) {
		fmt.Printf(" %s=%d", c.label, c.count)
	}
	fmt.Println()

	fmt.Printf("By area:")
	for _, c := range sortedCounts(areaCounts) {
		fmt.Printf(" %s=%d", c.label, c.count)
	}
	fmt.Println()

	severityCounts := map[string]int{}
	for i := range alerts {
		severityCounts[alerts[i].Severity]++
	}
	fmt.Printf("Alerts: %d (high=%d, medium=%d)\n",
		len(alerts), severityCounts[domain.SeverityHigh], severityCounts[domain.SeverityMedium])
	for i := range alerts {
		a := &alerts[i]
		fmt.Printf("  %s [%s] %s: %s\n", a.Area, a.Severity, a.AlertType, a.Message)
	}
}
