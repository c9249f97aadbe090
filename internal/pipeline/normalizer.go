package pipeline

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/metrowatch/sentiment-etl/internal/domain"
	"github.com/metrowatch/sentiment-etl/internal/observability"
)

// ErrEmptyText is returned for reports whose text is blank after trimming.
var ErrEmptyText = errors.New("report text is empty")

// Normalizer turns raw reports into finished sentiment records: it scores
// text when the source did not supply a polarity, applies per-source bias
// correction, and attaches area, category, and language classifications.
type Normalizer struct {
	classifier *domain.Classifier
	corrector  *domain.Corrector
	scorer     Scorer
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewNormalizer wires the domain stages together.
func NewNormalizer(classifier *domain.Classifier, corrector *domain.Corrector, scorer Scorer, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Normalizer {
	return &Normalizer{
		classifier: classifier,
		corrector:  corrector,
		scorer:     scorer,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
	}
}

// Normalize converts a single raw report into a sentiment record.
func (n *Normalizer) Normalize(raw domain.RawReport) (domain.SentimentRecord, error) {
	text := strings.TrimSpace(raw.Text)
	if text == "" {
		return domain.SentimentRecord{}, ErrEmptyText
	}

	source := domain.NormalizeSource(raw.Source)

	rawScore := 0.0
	if raw.RawPolarity != nil {
		rawScore = domain.Clamp(*raw.RawPolarity)
	} else {
		rawScore = domain.Clamp(n.scorer.Score(text))
	}

	adjusted := n.corrector.Correct(rawScore, source)

	confidence := 0.0
	if raw.Confidence != nil {
		confidence = *raw.Confidence
	} else {
		confidence = domain.EstimateConfidence(text, rawScore)
	}

	area := n.classifier.ResolveArea(text)
	if area == domain.AreaUnknown && raw.Area != "" {
		area = n.classifier.ResolveArea(raw.Area)
	}

	ts := raw.Timestamp
	if ts.IsZero() {
		ts = n.clock.Now()
	}

	return domain.SentimentRecord{
		ID:                domain.RecordID(text, source),
		Source:            source,
		Text:              text,
		RawSentiment:      rawScore,
		AdjustedSentiment: adjusted,
		Location:          area,
		Timestamp:         ts,
		Confidence:        confidence,
		Category:          n.classifier.ClassifyCategory(text),
		Language:          n.classifier.DetectLanguage(text),
	}, nil
}

// NormalizeBatch converts a batch of raw reports, skipping and logging any
// that fail.
func (n *Normalizer) NormalizeBatch(raws []domain.RawReport) []domain.SentimentRecord {
	records := make([]domain.SentimentRecord, 0, len(raws))
	for _, raw := range raws {
		record, err := n.Normalize(raw)
		if err != nil {
			n.logger.Warn("normalize failed, skipping report", "error", err, "source", raw.Source)
			n.metrics.NormalizeErrors.Inc()
			continue
		}
		records = append(records, record)
	}
	return records
}
