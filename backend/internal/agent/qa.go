package agent

import (
	"github.com/agnivade/levenshtein"

	"wordweave/backend/internal/lexicon"
)

// tokensMatch treats two tokens as equal when their edit distance is
// within a quarter of the longer one.
func tokensMatch(a, b string) bool {
	if a == b {
		return true
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest < 4 {
		return false
	}
	return levenshtein.ComputeDistance(a, b) <= longest/4
}

// qaScore is the share of tokens that match between the query and a stored
// question, measured against the longer of the two.
func qaScore(query []string, question string) float64 {
	stored := significantTokens(normalize(question))
	if len(query) == 0 || len(stored) == 0 {
		return 0
	}
	matched := 0
	for _, q := range query {
		for _, s := range stored {
			if tokensMatch(q, s) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(max(len(query), len(stored)))
}

// bestQAPair returns the highest scoring pair at or above threshold.
// Pairs are newest first, so ties go to the most recent answer.
func bestQAPair(query []string, pairs []lexicon.QAPair, threshold float64) (lexicon.QAPair, float64, bool) {
	var best lexicon.QAPair
	bestScore := 0.0
	for _, p := range pairs {
		if s := qaScore(query, p.Question); s > bestScore {
			best, bestScore = p, s
		}
	}
	if bestScore < threshold {
		return lexicon.QAPair{}, bestScore, false
	}
	return best, bestScore, true
}
