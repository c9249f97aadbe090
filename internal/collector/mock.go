package collector

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/metrowatch/sentiment-etl/internal/domain"
)

// Sample feeds used when no real source is configured. Timestamps are
// staggered backwards from the clock so the data spreads across the
// aggregation window.

var mockTweets = []string{
	"Traffic is terrible on Third Mainland Bridge today, police nowhere to be found #LagosTraffic",
	"Quick police response in Victoria Island incident. Great job! #LagosSafety",
	"Robbery incident reported in Surulere area, everyone please be careful",
	"LASTMA officers doing excellent work in Ikeja today #OneLagos",
	"Power outage causing security concerns in Yaba area",
	"Crime rate seems to be dropping in Ikoyi thanks to community policing",
	"Traffic light system in Lagos Island needs urgent repair",
	"Security checkpoint on Lagos-Ibadan expressway working well",
	"Pickpocket incident at Computer Village market today",
	"Emergency response team quick to arrive at Apapa accident scene",
}

var mockNews = []string{
	"Lagos State government launches comprehensive security initiative across Victoria Island and Ikoyi areas",
	"Traffic congestion worsens in Ikeja as major road construction project begins",
	"Crime rate drops 15% in Surulere following successful community policing program implementation",
	"New intelligent traffic management system shows promising results on Lagos mainland",
	"Emergency response times improve by 25% across Lagos State following system upgrade",
}

var mockAnnouncements = []string{
	"Lagos State Security Trust Fund announces increased patrol frequency in high-traffic areas",
	"New community policing initiative launched in Surulere and Mushin local government areas",
	"Emergency response protocols updated for faster incident resolution across Lagos State",
}

// MockSocial simulates a social media feed.
type MockSocial struct {
	clock clockwork.Clock
}

// NewMockSocial creates a mock social media collector.
func NewMockSocial(clock clockwork.Clock) *MockSocial {
	return &MockSocial{clock: clock}
}

func (m *MockSocial) Name() string { return domain.SourceTwitter }

func (m *MockSocial) Collect(_ context.Context, limit int) ([]domain.RawReport, error) {
	now := m.clock.Now()

	reports := make([]domain.RawReport, 0, len(mockTweets))
	for i, text := range capped(mockTweets, limit) {
		confidence := 0.7 + float64(i)*0.02
		reports = append(reports, domain.RawReport{
			Source:     domain.SourceTwitter,
			Text:       text,
			Timestamp:  now.Add(-time.Duration(i) * time.Hour),
			Confidence: &confidence,
		})
	}
	return reports, nil
}

// MockNews simulates a news feed.
type MockNews struct {
	clock clockwork.Clock
}

// NewMockNews creates a mock news collector.
func NewMockNews(clock clockwork.Clock) *MockNews {
	return &MockNews{clock: clock}
}

func (m *MockNews) Name() string { return domain.SourceNews }

func (m *MockNews) Collect(_ context.Context, limit int) ([]domain.RawReport, error) {
	now := m.clock.Now()

	reports := make([]domain.RawReport, 0, len(mockNews))
	for i, text := range capped(mockNews, limit) {
		confidence := 0.85
		reports = append(reports, domain.RawReport{
			Source:     domain.SourceNews,
			Text:       text,
			Timestamp:  now.Add(-time.Duration(i) * 2 * time.Hour),
			Confidence: &confidence,
		})
	}
	return reports, nil
}

// MockOfficial simulates a channel of government announcements.
type MockOfficial struct {
	clock clockwork.Clock
}

// NewMockOfficial creates a mock government collector.
func NewMockOfficial(clock clockwork.Clock) *MockOfficial {
	return &MockOfficial{clock: clock}
}

func (m *MockOfficial) Name() string { return domain.SourceGovernment }

func (m *MockOfficial) Collect(_ context.Context, limit int) ([]domain.RawReport, error) {
	now := m.clock.Now()

	reports := make([]domain.RawReport, 0, len(mockAnnouncements))
	for i, text := range capped(mockAnnouncements, limit) {
		confidence := 0.9
		reports = append(reports, domain.RawReport{
			Source:     domain.SourceGovernment,
			Text:       text,
			Timestamp:  now.Add(-time.Duration(i) * 6 * time.Hour),
			Confidence: &confidence,
		})
	}
	return reports, nil
}

func capped(texts []string, limit int) []string {
	if limit >= 0 && limit < len(texts) {
		return texts[:limit]
	}
	return texts
}
