package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/metrowatch/sentiment-etl/internal/domain"
	"github.com/metrowatch/sentiment-etl/internal/observability"
)

// Cycle terminal statuses.
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
)

// Collector gathers raw reports from one source.
type Collector interface {
	Name() string
	Collect(ctx context.Context, limit int) ([]domain.RawReport, error)
}

// RecordStore persists the outputs of a cycle.
type RecordStore interface {
	AppendRecords(ctx context.Context, records []domain.SentimentRecord) error
	AppendAlerts(ctx context.Context, alerts []domain.Alert) error
}

// AlertGenerator derives security alerts from a batch of records.
type AlertGenerator interface {
	Generate(records []domain.SentimentRecord) []domain.Alert
}

// AlertPublisher pushes generated alerts to an external channel.
type AlertPublisher interface {
	Publish(ctx context.Context, alerts []domain.Alert) error
}

// CycleResult summarizes one collect-normalize-store-alert cycle.
type CycleResult struct {
	ProcessedItems   int            `json:"processed_items"`
	AlertsGenerated  int            `json:"alerts_generated"`
	Timestamp        time.Time      `json:"timestamp"`
	Status           string         `json:"status"`
	Message          string         `json:"message,omitempty"`
	Error            string         `json:"error,omitempty"`
	SourcesBreakdown map[string]int `json:"sources_breakdown,omitempty"`
}

// Options carries the tunables for a Pipeline.
type Options struct {
	CollectTimeout time.Duration
	CollectLimit   int
	Interval       time.Duration
}

// Pipeline orchestrates the periodic analysis loop.
type Pipeline struct {
	collectors []Collector
	normalizer *Normalizer
	store      RecordStore
	alerts     AlertGenerator
	publisher  AlertPublisher
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
	opts       Options
	ready      atomic.Bool
}

// New creates a Pipeline. Pass a nil publisher to disable alert publishing.
func New(collectors []Collector, normalizer *Normalizer, store RecordStore, alerts AlertGenerator, publisher AlertPublisher, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, opts Options) *Pipeline {
	return &Pipeline{
		collectors: collectors,
		normalizer: normalizer,
		store:      store,
		alerts:     alerts,
		publisher:  publisher,
		logger:     logger,
		metrics:    metrics,
		clock:      clock,
		opts:       opts,
	}
}

// CheckReadiness returns nil once the pipeline has completed at least one
// cycle without error, or an error describing why the service is not yet
// ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a cycle yet")
	}
	return nil
}

// Run executes an immediate cycle and then one per interval until the
// context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "interval", p.opts.Interval, "collectors", len(p.collectors))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	p.RunCycle(ctx)

	ticker := p.clock.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			p.RunCycle(ctx)
		}
	}
}

// RunCycle performs one full analysis cycle and reports its outcome. A
// collector failure is tolerated; a persistence failure aborts the cycle.
func (p *Pipeline) RunCycle(ctx context.Context) CycleResult {
	p.logger.Info("starting analysis cycle")
	start := p.clock.Now()

	raws := p.collectAll(ctx)

	result := CycleResult{Timestamp: p.clock.Now()}

	if len(raws) == 0 {
		p.logger.Warn("no data collected in this cycle")
		result.Status = StatusWarning
		result.Message = "No data collected"
		p.finishCycle(result, start)
		return result
	}

	records := p.normalizer.NormalizeBatch(raws)
	if len(records) == 0 {
		result.Status = StatusWarning
		result.Message = "No data collected"
		p.finishCycle(result, start)
		return result
	}

	if err := p.store.AppendRecords(ctx, records); err != nil {
		p.logger.Error("persist records failed", "error", err, "records", len(records))
		result.Status = StatusError
		result.Error = fmt.Sprintf("persist records: %v", err)
		p.finishCycle(result, start)
		return result
	}
	p.metrics.RecordsStored.Add(float64(len(records)))

	alerts := p.alerts.Generate(records)
	if len(alerts) > 0 {
		if err := p.store.AppendAlerts(ctx, alerts); err != nil {
			p.logger.Error("persist alerts failed", "error", err, "alerts", len(alerts))
			result.Status = StatusError
			result.Error = fmt.Sprintf("persist alerts: %v", err)
			p.finishCycle(result, start)
			return result
		}
		for _, alert := range alerts {
			p.metrics.AlertsGenerated.WithLabelValues(alert.Severity).Inc()
		}
		p.publish(ctx, alerts)
	}

	result.ProcessedItems = len(records)
	result.AlertsGenerated = len(alerts)
	result.Status = StatusSuccess
	result.SourcesBreakdown = sourcesBreakdown(records)

	p.logger.Info("analysis cycle complete", "processed", len(records), "alerts", len(alerts))
	p.finishCycle(result, start)
	return result
}

// collectAll fans out to every collector with a per-collector timeout and
// merges the successes. Collector errors are logged and counted, never
// fatal.
func (p *Pipeline) collectAll(ctx context.Context) []domain.RawReport {
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		raws []domain.RawReport
	)

	for _, c := range p.collectors {
		wg.Add(1)
		go func(c Collector) {
			defer wg.Done()

			cctx, cancel := context.WithTimeout(ctx, p.opts.CollectTimeout)
			defer cancel()

			batch, err := c.Collect(cctx, p.opts.CollectLimit)
			if err != nil {
				p.logger.Error("collection failed", "source", c.Name(), "error", err)
				p.metrics.CollectionErrors.WithLabelValues(c.Name()).Inc()
				return
			}
			p.metrics.ReportsCollected.WithLabelValues(c.Name()).Add(float64(len(batch)))

			mu.Lock()
			raws = append(raws, batch...)
			mu.Unlock()
		}(c)
	}

	wg.Wait()
	return raws
}

// publish sends alerts to the configured publisher. Publish failures are
// logged but do not fail the cycle; the alerts are already persisted.
func (p *Pipeline) publish(ctx context.Context, alerts []domain.Alert) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, alerts); err != nil {
		p.logger.Warn("alert publish failed", "error", err, "alerts", len(alerts))
	}
}

func (p *Pipeline) finishCycle(result CycleResult, start time.Time) {
	p.metrics.Cycles.WithLabelValues(result.Status).Inc()
	p.metrics.CycleDuration.Observe(p.clock.Since(start).Seconds())
	// A completed cycle marks the pipeline ready even when it found no
	// data; an idle feed is not a failing service. Errors keep it not
	// ready.
	if result.Status != StatusError {
		p.ready.Store(true)
	}
}

func sourcesBreakdown(records []domain.SentimentRecord) map[string]int {
	breakdown := make(map[string]int)
	for _, r := range records {
		breakdown[r.Source]++
	}
	return breakdown
}
