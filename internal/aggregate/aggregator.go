// Package aggregate computes windowed summaries over stored sentiment
// records: overall status, per-area breakdowns, daily trends, and source
// statistics.
package aggregate

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/metrowatch/sentiment-etl/internal/domain"
)

// RecordSource is the read side of the store needed for aggregation.
type RecordSource interface {
	RecordsSince(ctx context.Context, since time.Time) ([]domain.SentimentRecord, error)
	ActiveAlerts(ctx context.Context, since time.Time) ([]domain.Alert, error)
}

// Default aggregation windows used by the HTTP layer.
const (
	StatusWindow = 24 * time.Hour
	TrendWindow  = 7 * 24 * time.Hour
)

// OverallStatus summarizes the last 24 hours of data.
type OverallStatus struct {
	OverallSentiment float64    `json:"overall_sentiment"`
	RawSentiment     float64    `json:"raw_sentiment"`
	Confidence       float64    `json:"confidence"`
	TotalSources     int        `json:"total_sources"`
	ActiveAlerts     int        `json:"active_alerts"`
	LastUpdate       *time.Time `json:"last_update"`
	Status           string     `json:"status"`
}

// AreaSummary is one row of the per-area breakdown.
type AreaSummary struct {
	Area           string  `json:"area"`
	Sentiment      float64 `json:"sentiment"`
	Sources        int     `json:"sources"`
	Confidence     float64 `json:"confidence"`
	CrimeReports   int     `json:"crime_reports"`
	TrafficReports int     `json:"traffic_reports"`
}

// TrendPoint is one day of the trend series.
type TrendPoint struct {
	Date         string  `json:"date"`
	Sentiment    float64 `json:"sentiment"`
	RawSentiment float64 `json:"raw_sentiment"`
	Incidents    int     `json:"incidents"`
}

// SourceStat is one row of the source breakdown.
type SourceStat struct {
	Name         string  `json:"name"`
	Count        int     `json:"count"`
	Sentiment    float64 `json:"sentiment"`
	RawSentiment float64 `json:"raw_sentiment"`
	Percentage   float64 `json:"percentage"`
}

// AreaDetail is the focused view of a single area.
type AreaDetail struct {
	Area        string                   `json:"area"`
	Sentiment   float64                  `json:"sentiment"`
	Sources     int                      `json:"source_count"`
	Confidence  float64                  `json:"confidence"`
	RecentItems []domain.SentimentRecord `json:"recent_items"`
}

// Aggregator derives read-model views from the record store. All methods
// are deterministic for a fixed store state and clock time.
type Aggregator struct {
	source RecordSource
	clock  clockwork.Clock
}

// New creates an Aggregator.
func New(source RecordSource, clock clockwork.Clock) *Aggregator {
	return &Aggregator{source: source, clock: clock}
}

// Status computes the overall summary over the given lookback window. With
// no data in the window the status is "no_data" and every figure is zero.
func (a *Aggregator) Status(ctx context.Context, window time.Duration) (OverallStatus, error) {
	since := a.clock.Now().Add(-window)

	records, err := a.source.RecordsSince(ctx, since)
	if err != nil {
		return OverallStatus{}, err
	}
	alerts, err := a.source.ActiveAlerts(ctx, since)
	if err != nil {
		return OverallStatus{}, err
	}

	if len(records) == 0 {
		return OverallStatus{Status: "no_data"}, nil
	}

	var sentiment, raw, confidence float64
	last := records[0].Timestamp
	for _, r := range records {
		sentiment += r.AdjustedSentiment
		raw += r.RawSentiment
		confidence += r.Confidence
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}
	n := float64(len(records))

	return OverallStatus{
		OverallSentiment: round3(sentiment / n),
		RawSentiment:     round3(raw / n),
		Confidence:       round3(confidence / n),
		TotalSources:     len(records),
		ActiveAlerts:     len(alerts),
		LastUpdate:       &last,
		Status:           "healthy",
	}, nil
}

// AreaBreakdown returns per-area summaries for the lookback window, worst
// sentiment first. Records without a resolved area are excluded.
func (a *Aggregator) AreaBreakdown(ctx context.Context, window time.Duration) ([]AreaSummary, error) {
	records, err := a.source.RecordsSince(ctx, a.clock.Now().Add(-window))
	if err != nil {
		return nil, err
	}

	type acc struct {
		sentiment, confidence float64
		count, crime, traffic int
	}
	groups := make(map[string]*acc)
	for _, r := range records {
		if r.Location == domain.AreaUnknown {
			continue
		}
		g := groups[r.Location]
		if g == nil {
			g = &acc{}
			groups[r.Location] = g
		}
		g.sentiment += r.AdjustedSentiment
		g.confidence += r.Confidence
		g.count++
		switch r.Category {
		case domain.CategoryCrime:
			g.crime++
		case domain.CategoryTraffic:
			g.traffic++
		}
	}

	summaries := make([]AreaSummary, 0, len(groups))
	for area, g := range groups {
		n := float64(g.count)
		summaries = append(summaries, AreaSummary{
			Area:           area,
			Sentiment:      round3(g.sentiment / n),
			Sources:        g.count,
			Confidence:     round3(g.confidence / n),
			CrimeReports:   g.crime,
			TrafficReports: g.traffic,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Sentiment != summaries[j].Sentiment {
			return summaries[i].Sentiment < summaries[j].Sentiment
		}
		return summaries[i].Area < summaries[j].Area
	})
	return summaries, nil
}

// Trends returns the daily sentiment series for the lookback window in
// chronological order. Incidents count crime-category records.
func (a *Aggregator) Trends(ctx context.Context, window time.Duration) ([]TrendPoint, error) {
	records, err := a.source.RecordsSince(ctx, a.clock.Now().Add(-window))
	if err != nil {
		return nil, err
	}

	type acc struct {
		sentiment, raw float64
		count, crime   int
	}
	days := make(map[string]*acc)
	for _, r := range records {
		date := r.Timestamp.UTC().Format("2006-01-02")
		d := days[date]
		if d == nil {
			d = &acc{}
			days[date] = d
		}
		d.sentiment += r.AdjustedSentiment
		d.raw += r.RawSentiment
		d.count++
		if r.Category == domain.CategoryCrime {
			d.crime++
		}
	}

	points := make([]TrendPoint, 0, len(days))
	for date, d := range days {
		n := float64(d.count)
		points = append(points, TrendPoint{
			Date:         date,
			Sentiment:    round3(d.sentiment / n),
			RawSentiment: round3(d.raw / n),
			Incidents:    d.crime,
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

// SourceBreakdown returns per-source statistics for the lookback window,
// largest source first. Percentages are rounded to one decimal.
func (a *Aggregator) SourceBreakdown(ctx context.Context, window time.Duration) ([]SourceStat, error) {
	records, err := a.source.RecordsSince(ctx, a.clock.Now().Add(-window))
	if err != nil {
		return nil, err
	}

	type acc struct {
		sentiment, raw float64
		count          int
	}
	groups := make(map[string]*acc)
	for _, r := range records {
		g := groups[r.Source]
		if g == nil {
			g = &acc{}
			groups[r.Source] = g
		}
		g.sentiment += r.AdjustedSentiment
		g.raw += r.RawSentiment
		g.count++
	}

	total := len(records)
	stats := make([]SourceStat, 0, len(groups))
	for source, g := range groups {
		n := float64(g.count)
		stats = append(stats, SourceStat{
			Name:         titleCase(source),
			Count:        g.count,
			Sentiment:    round3(g.sentiment / n),
			RawSentiment: round3(g.raw / n),
			Percentage:   round1(float64(g.count) / float64(total) * 100),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Name < stats[j].Name
	})
	return stats, nil
}

// Area returns the focused view of one area over the lookback window,
// including up to ten of its most recent records. A nil detail means the
// area had no data.
func (a *Aggregator) Area(ctx context.Context, area string, window time.Duration) (*AreaDetail, error) {
	records, err := a.source.RecordsSince(ctx, a.clock.Now().Add(-window))
	if err != nil {
		return nil, err
	}

	var (
		matched               []domain.SentimentRecord
		sentiment, confidence float64
	)
	for _, r := range records {
		if strings.EqualFold(r.Location, area) {
			matched = append(matched, r)
			sentiment += r.AdjustedSentiment
			confidence += r.Confidence
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}

	// RecordsSince returns newest first, so the head is the recent slice.
	recent := matched
	if len(recent) > 10 {
		recent = recent[:10]
	}

	n := float64(len(matched))
	return &AreaDetail{
		Area:        matched[0].Location,
		Sentiment:   round3(sentiment / n),
		Sources:     len(matched),
		Confidence:  round3(confidence / n),
		RecentItems: recent,
	}, nil
}

func round3(f float64) float64 { return math.Round(f*1000) / 1000 }

func round1(f float64) float64 { return math.Round(f*10) / 10 }

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
