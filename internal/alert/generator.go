// Package alert derives security alerts from windows of sentiment records.
package alert

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/metrowatch/sentiment-etl/internal/config"
	"github.com/metrowatch/sentiment-etl/internal/domain"
)

// Generator groups records by area and raises an alert wherever the mean
// adjusted sentiment crosses a configured threshold.
type Generator struct {
	thresholds config.AlertThresholds
	clock      clockwork.Clock
}

// NewGenerator creates a Generator using the given thresholds and clock.
func NewGenerator(thresholds config.AlertThresholds, clock clockwork.Clock) *Generator {
	return &Generator{thresholds: thresholds, clock: clock}
}

// Generate produces at most one alert per area. Areas with fewer than the
// minimum number of reports, unknown areas, and areas above the medium
// threshold yield nothing. Output order follows first appearance of each
// area in the input.
func (g *Generator) Generate(records []domain.SentimentRecord) []domain.Alert {
	if len(records) == 0 {
		return nil
	}

	var order []string
	groups := make(map[string][]domain.SentimentRecord)
	for _, r := range records {
		if r.Location == domain.AreaUnknown {
			continue
		}
		if _, seen := groups[r.Location]; !seen {
			order = append(order, r.Location)
		}
		groups[r.Location] = append(groups[r.Location], r)
	}

	var alerts []domain.Alert
	for _, area := range order {
		group := groups[area]
		if len(group) < g.thresholds.MinimumSources {
			continue
		}

		var sentimentSum, confidenceSum float64
		for _, r := range group {
			sentimentSum += r.AdjustedSentiment
			confidenceSum += r.Confidence
		}
		mean := sentimentSum / float64(len(group))

		var severity string
		switch {
		case mean <= g.thresholds.High:
			severity = domain.SeverityHigh
		case mean <= g.thresholds.Medium:
			severity = domain.SeverityMedium
		default:
			continue
		}

		category := dominantCategory(group)

		alerts = append(alerts, domain.Alert{
			ID:         uuid.NewString(),
			Area:       area,
			Message:    g.message(area, category, mean, len(group)),
			Severity:   severity,
			Confidence: confidenceSum / float64(len(group)),
			AlertType:  category,
			Timestamp:  g.clock.Now(),
		})
	}

	return alerts
}

// dominantCategory returns the most frequent category in the group. On a
// tie the category seen first in the group wins, keeping output stable.
func dominantCategory(group []domain.SentimentRecord) string {
	counts := make(map[string]int)
	var order []string
	for _, r := range group {
		if _, seen := counts[r.Category]; !seen {
			order = append(order, r.Category)
		}
		counts[r.Category]++
	}

	best := ""
	bestCount := 0
	for _, category := range order {
		if counts[category] > bestCount {
			best = category
			bestCount = counts[category]
		}
	}
	return best
}

func (g *Generator) message(area, category string, sentiment float64, sourceCount int) string {
	intensity := "moderately"
	if sentiment <= g.thresholds.High {
		intensity = "significantly"
	}

	switch category {
	case domain.CategoryTraffic:
		return fmt.Sprintf("Traffic-related complaints %s increasing in %s (%d reports)", intensity, area, sourceCount)
	case domain.CategoryCrime:
		return fmt.Sprintf("Crime-related concerns %s elevated in %s (%d reports)", intensity, area, sourceCount)
	case domain.CategoryLawEnforcement:
		return fmt.Sprintf("Law enforcement issues being %s discussed in %s (%d reports)", intensity, area, sourceCount)
	case domain.CategoryEmergency:
		return fmt.Sprintf("Emergency-related incidents %s reported in %s (%d reports)", intensity, area, sourceCount)
	case domain.CategoryGeneral:
		return fmt.Sprintf("General security sentiment %s negative in %s (%d reports)", intensity, area, sourceCount)
	default:
		return fmt.Sprintf("Security concerns detected in %s (%d reports)", area, sourceCount)
	}
}
