package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexiconScorer_Score(t *testing.T) {
	s := NewLexiconScorer()

	tests := []struct {
		name string
		text string
		sign int
	}{
		{name: "negative report", text: "robbery and violence near the market, very dangerous", sign: -1},
		{name: "positive report", text: "the area is safe and peaceful, security improved", sign: 1},
		{name: "neutral text", text: "the meeting is scheduled for tomorrow", sign: 0},
		{name: "empty text", text: "", sign: 0},
		{name: "punctuation stripped", text: "Fire! Accident!! Chaos.", sign: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := s.Score(tt.text)
			assert.GreaterOrEqual(t, score, -1.0)
			assert.LessOrEqual(t, score, 1.0)
			switch tt.sign {
			case -1:
				assert.Negative(t, score)
			case 1:
				assert.Positive(t, score)
			default:
				assert.Zero(t, score)
			}
		})
	}
}

func TestLexiconScorer_Smoothing(t *testing.T) {
	s := NewLexiconScorer()

	// A single hit must not saturate the scale.
	single := s.Score("crime")
	assert.InDelta(t, -1.0/3.0, single, 1e-9)

	// More hits push further toward the extreme.
	many := s.Score("crime violence robbery attack danger")
	assert.Less(t, many, single)
}
