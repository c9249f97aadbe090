package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
)

// Source labels making up the fixed calibration set. Free-form labels from
// collectors are mapped onto these by NormalizeSource; anything unrecognized
// falls back to SourceCommunity.
const (
	SourceTwitter    = "twitter"
	SourceFacebook   = "facebook"
	SourceNews       = "news"
	SourceGovernment = "government"
	SourceCommunity  = "community"
)

// Report categories in classifier priority order.
const (
	CategoryTraffic        = "traffic"
	CategoryCrime          = "crime"
	CategoryLawEnforcement = "law_enforcement"
	CategoryEmergency      = "emergency"
	CategoryGeneral        = "general"
)

// Language tags. English is the primary language; pidgin and yoruba are the
// locally spoken variants detected by keyword counting.
const (
	LanguageEnglish = "english"
	LanguagePidgin  = "pidgin"
	LanguageYoruba  = "yoruba"
)

// AreaUnknown is the sentinel for text where no area could be resolved.
// Records carrying it are excluded from area aggregation and alerting.
const AreaUnknown = "Unknown"

// Alert severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
)

// RawReport is an unprocessed item produced by a collector. RawPolarity and
// Confidence are optional; when absent the normalizer supplies them via the
// configured scorer and the confidence estimate. Area is an optional hint
// (e.g. a CSV location column) used only when classification cannot resolve
// an area from the text itself.
type RawReport struct {
	Source      string
	Text        string
	Timestamp   time.Time
	RawPolarity *float64
	Confidence  *float64
	Area        string
}

// SentimentRecord is the canonical bias-corrected report. Immutable once
// created; AdjustedSentiment is always derived from RawSentiment via the
// corrector. JSON field names match the persisted schema consumed by the
// dashboard.
type SentimentRecord struct {
	ID                string    `json:"id"`
	Source            string    `json:"source"`
	Text              string    `json:"text"`
	RawSentiment      float64   `json:"raw_sentiment"`
	AdjustedSentiment float64   `json:"adjusted_sentiment"`
	Location          string    `json:"location"`
	Timestamp         time.Time `json:"timestamp"`
	Confidence        float64   `json:"confidence"`
	Category          string    `json:"category"`
	Language          string    `json:"language"`
}

// Alert is a threshold-triggered security alert for an area. Resolved starts
// false and is flipped by an operator through the store.
type Alert struct {
	ID         string    `json:"id"`
	Area       string    `json:"area"`
	Message    string    `json:"message"`
	Severity   string    `json:"severity"`
	Confidence float64   `json:"confidence"`
	AlertType  string    `json:"alert_type"`
	Timestamp  time.Time `json:"timestamp"`
	Resolved   bool      `json:"resolved"`
}

// NormalizeSource maps a free-form source label onto the calibration set.
func NormalizeSource(source string) string {
	s := strings.ToLower(strings.TrimSpace(source))
	switch {
	case strings.Contains(s, "twitter"), strings.Contains(s, "tweet"):
		return SourceTwitter
	case strings.Contains(s, "facebook"), strings.Contains(s, "fb"):
		return SourceFacebook
	case strings.Contains(s, "news"):
		return SourceNews
	case strings.Contains(s, "gov"):
		return SourceGovernment
	default:
		return SourceCommunity
	}
}

// RecordID produces a deterministic ID from a report's content and source.
// Deterministic IDs make reprocessing the same raw report idempotent: a
// replayed batch yields the same IDs and downstream consumers can dedupe.
func RecordID(text, source string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	hash := sha256.Sum256([]byte(normalized + "|" + source))
	short := hex.EncodeToString(hash[:8])
	if source == "" {
		return short
	}
	return source + "-" + short
}

// Clamp bounds a polarity score to [-1, 1].
func Clamp(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

var wordRe = regexp.MustCompile(`[a-zA-Z]+`)

// EstimateConfidence scores how reliable a sentiment reading is, in
// [0.1, 0.95]. Longer texts, stronger polarity, and a higher ratio of plain
// words all raise confidence. Used when a collector supplies no confidence
// of its own.
func EstimateConfidence(text string, score float64) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0.1
	}

	lengthFactor := float64(len(words)) / 10
	if lengthFactor > 1 {
		lengthFactor = 1
	}

	magnitudeFactor := score
	if magnitudeFactor < 0 {
		magnitudeFactor = -magnitudeFactor
	}

	clarityFactor := float64(len(wordRe.FindAllString(text, -1))) / float64(len(words))
	if clarityFactor > 1 {
		clarityFactor = 1
	}

	confidence := lengthFactor*0.4 + magnitudeFactor*0.4 + clarityFactor*0.2
	if confidence < 0.1 {
		return 0.1
	}
	if confidence > 0.95 {
		return 0.95
	}
	return confidence
}
