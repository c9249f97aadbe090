package pipeline

import (
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrowatch/sentiment-etl/internal/config"
	"github.com/metrowatch/sentiment-etl/internal/domain"
	"github.com/metrowatch/sentiment-etl/internal/observability"
)

func testNormalizer(t *testing.T, clock clockwork.Clock) *Normalizer {
	t.Helper()
	tables := config.DefaultTables()
	classifier := domain.NewClassifier(tables.Areas, tables.Categories, tables.Dialects, tables.Relevance, tables.Primary)
	corrector := domain.NewCorrector(tables.Calibrations)
	return NewNormalizer(classifier, corrector, NewLexiconScorer(), clock, slog.Default(), observability.NewMetricsForTesting())
}

func floatPtr(f float64) *float64 { return &f }

func TestNormalizer_Normalize(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	n := testNormalizer(t, clock)

	raw := domain.RawReport{
		Source:      "Twitter",
		Text:        "Armed robbery at Ikeja market, everyone scared",
		Timestamp:   time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
		RawPolarity: floatPtr(-0.6),
		Confidence:  floatPtr(0.8),
	}

	record, err := n.Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceTwitter, record.Source)
	assert.Equal(t, "Armed robbery at Ikeja market, everyone scared", record.Text)
	assert.InDelta(t, -0.6, record.RawSentiment, 1e-9)
	assert.InDelta(t, -0.525, record.AdjustedSentiment, 1e-9)
	assert.Equal(t, "Ikeja", record.Location)
	assert.Equal(t, domain.CategoryCrime, record.Category)
	assert.Equal(t, domain.LanguageEnglish, record.Language)
	assert.InDelta(t, 0.8, record.Confidence, 1e-9)
	assert.Equal(t, raw.Timestamp, record.Timestamp)
	assert.Equal(t, domain.RecordID(record.Text, domain.SourceTwitter), record.ID)
}

func TestNormalizer_Normalize_DerivedFields(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	n := testNormalizer(t, clock)

	// No polarity, confidence, or timestamp supplied: all derived.
	record, err := n.Normalize(domain.RawReport{
		Source: "community",
		Text:   "Robbery and violence in Surulere, very dangerous tonight",
	})
	require.NoError(t, err)

	assert.Negative(t, record.RawSentiment)
	assert.GreaterOrEqual(t, record.Confidence, 0.1)
	assert.LessOrEqual(t, record.Confidence, 0.95)
	assert.Equal(t, "Surulere", record.Location)
	assert.Equal(t, clock.Now(), record.Timestamp)
}

func TestNormalizer_Normalize_AreaHint(t *testing.T) {
	clock := clockwork.NewFakeClock()
	n := testNormalizer(t, clock)

	// Text gives no location; the collector-supplied hint fills it in.
	record, err := n.Normalize(domain.RawReport{
		Source: "news",
		Text:   "Police deploy extra patrols after robbery wave",
		Area:   "Victoria Island",
	})
	require.NoError(t, err)
	assert.Equal(t, "Victoria Island", record.Location)

	// Text location wins over the hint.
	record, err = n.Normalize(domain.RawReport{
		Source: "news",
		Text:   "Robbery wave hits Yaba traders",
		Area:   "Victoria Island",
	})
	require.NoError(t, err)
	assert.Equal(t, "Yaba", record.Location)
}

func TestNormalizer_Normalize_EmptyText(t *testing.T) {
	n := testNormalizer(t, clockwork.NewFakeClock())

	_, err := n.Normalize(domain.RawReport{Source: "twitter", Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestNormalizer_Normalize_ClampsPolarity(t *testing.T) {
	n := testNormalizer(t, clockwork.NewFakeClock())

	record, err := n.Normalize(domain.RawReport{
		Source:      "government",
		Text:        "Situation fully under control across the state",
		RawPolarity: floatPtr(3.5),
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, record.RawSentiment, 1e-9)
	assert.LessOrEqual(t, record.AdjustedSentiment, 1.0)
}

func TestNormalizer_NormalizeBatch_SkipsBadReports(t *testing.T) {
	n := testNormalizer(t, clockwork.NewFakeClock())

	records := n.NormalizeBatch([]domain.RawReport{
		{Source: "twitter", Text: "Traffic jam on Third Mainland bridge, total gridlock"},
		{Source: "twitter", Text: ""},
		{Source: "news", Text: "Fire outbreak at Apapa port, emergency services responding"},
	})

	require.Len(t, records, 2)
	assert.Equal(t, domain.CategoryTraffic, records[0].Category)
	assert.Equal(t, "Apapa", records[1].Location)
}
