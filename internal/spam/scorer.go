package spam

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Suspicious message keywords; each occurrence is worth two points.
var defaultKeywords = []string{"casino", "crypto", "bitcoin", "viagra", "loan", "debt"}

var (
	urlSchemes      = []string{"http://", "https://"}
	ctaPhrases      = []string{"click here", "visit"}
	currencyRunes   = []string{"$", "€", "£", "¥"}
	digitRunPattern = regexp.MustCompile(`[0-9]{8,}`)
)

// Scorer applies weighted keyword and pattern heuristics to a submission and
// compares the resulting score against a fixed threshold.
type Scorer struct {
	keywords  []string
	threshold int
}

func NewScorer(threshold int) *Scorer {
	return &Scorer{
		keywords:  defaultKeywords,
		threshold: threshold,
	}
}

// Score computes the integer spam score for a sanitized submission.
func (s *Scorer) Score(name, email, message string) int {
	score := 0
	msg := strings.ToLower(message)

	for _, kw := range s.keywords {
		score += 2 * strings.Count(msg, kw)
	}

	for _, scheme := range urlSchemes {
		if strings.Contains(msg, scheme) {
			score++
			break
		}
	}

	for _, phrase := range ctaPhrases {
		if strings.Contains(msg, phrase) {
			score++
			break
		}
	}

	for _, symbol := range currencyRunes {
		if strings.Contains(message, symbol) {
			score++
			break
		}
	}

	addr := strings.ToLower(email)
	if strings.Contains(addr, "temp") || strings.Contains(addr, "test") || digitRunPattern.MatchString(addr) {
		score++
	}

	sender := strings.ToLower(strings.TrimSpace(name))
	if strings.Contains(sender, "test") || strings.Contains(sender, "admin") || utf8.RuneCountInString(sender) < 2 {
		score++
	}

	return score
}

// IsSpam reports whether a score meets the rejection threshold.
func (s *Scorer) IsSpam(score int) bool {
	return score >= s.threshold
}
