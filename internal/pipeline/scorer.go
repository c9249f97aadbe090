package pipeline

import "strings"

// Scorer derives a raw sentiment polarity in [-1, 1] from report text.
type Scorer interface {
	Score(text string) float64
}

// LexiconScorer scores text by counting positive and negative terms. It is
// a deliberately small model: sources that carry their own polarity bypass
// it entirely.
type LexiconScorer struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

// NewLexiconScorer builds a scorer from the built-in term lists.
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{
		positive: termSet(
			"safe", "safety", "calm", "peaceful", "improved", "improving",
			"good", "great", "better", "secure", "resolved", "cleared",
			"restored", "success", "smooth", "helpful", "protected",
		),
		negative: termSet(
			"unsafe", "danger", "dangerous", "crime", "robbery", "theft",
			"attack", "violence", "killed", "shooting", "kidnap", "scared",
			"fear", "terrible", "bad", "worse", "chaos", "wahala", "gbege",
			"kasala", "scatter", "jam", "gridlock", "stranded", "flood",
			"fire", "accident", "emergency",
		),
	}
}

// Score returns (positive - negative) / (positive + negative + 2). The +2
// smoothing keeps single-hit texts away from the extremes.
func (s *LexiconScorer) Score(text string) float64 {
	var pos, neg int
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:'\"()")
		if _, ok := s.positive[word]; ok {
			pos++
		}
		if _, ok := s.negative[word]; ok {
			neg++
		}
	}
	return float64(pos-neg) / float64(pos+neg+2)
}

func termSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
