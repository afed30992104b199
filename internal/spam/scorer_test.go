package spam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreCleanMessage(t *testing.T) {
	s := NewScorer(3)

	score := s.Score("Alice", "alice@example.com", "I enjoyed your talk, could you share the slides?")
	assert.Equal(t, 0, score)
	assert.False(t, s.IsSpam(score))
}

func TestScoreTwoKeywordsExceedsThreshold(t *testing.T) {
	s := NewScorer(3)

	score := s.Score("Alice", "alice@example.com", "Get a bitcoin loan today")
	assert.GreaterOrEqual(t, score, 4)
	assert.True(t, s.IsSpam(score))
}

func TestScoreCountsKeywordOccurrences(t *testing.T) {
	s := NewScorer(3)

	single := s.Score("Alice", "alice@example.com", "casino night")
	double := s.Score("Alice", "alice@example.com", "casino casino night")
	assert.Equal(t, 2, single)
	assert.Equal(t, 4, double)
}

func TestScoreHeuristics(t *testing.T) {
	s := NewScorer(3)

	tests := []struct {
		name    string
		sender  string
		email   string
		message string
		want    int
	}{
		{
			name:    "url scheme",
			sender:  "Alice",
			email:   "alice@example.com",
			message: "see https://example.com for details",
			want:    1,
		},
		{
			name:    "call to action phrase",
			sender:  "Alice",
			email:   "alice@example.com",
			message: "click here for a surprise",
			want:    1,
		},
		{
			name:    "currency symbol",
			sender:  "Alice",
			email:   "alice@example.com",
			message: "I can offer $5000",
			want:    1,
		},
		{
			name:    "temp mail address",
			sender:  "Alice",
			email:   "someone@tempmail.org",
			message: "hello there friend",
			want:    1,
		},
		{
			name:    "long digit run in address",
			sender:  "Alice",
			email:   "user123456789@example.com",
			message: "hello there friend",
			want:    1,
		},
		{
			name:    "suspicious sender name",
			sender:  "admin",
			email:   "alice@example.com",
			message: "hello there friend",
			want:    1,
		},
		{
			name:    "single character name",
			sender:  "A",
			email:   "alice@example.com",
			message: "hello there friend",
			want:    1,
		},
		{
			name:    "stacked heuristics cross threshold",
			sender:  "test",
			email:   "spam@tempmail.org",
			message: "click here to visit https://example.com and claim $100",
			want:    5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Score(tt.sender, tt.email, tt.message))
		})
	}
}

func TestScoreIsCaseInsensitive(t *testing.T) {
	s := NewScorer(3)

	assert.Equal(t, s.Score("Alice", "alice@example.com", "BITCOIN loan"),
		s.Score("Alice", "alice@example.com", "bitcoin LOAN"))
}
