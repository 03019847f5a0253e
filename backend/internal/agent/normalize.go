package agent

import (
	"regexp"
	"strings"

	"wordweave/backend/internal/lexicon"
)

var punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}\s'-]+`)

// misspellings is applied token by token after lower-casing.
var misspellings = map[string]string{
	"teh":        "the",
	"waht":       "what",
	"wat":        "what",
	"whats":      "what is",
	"wht":        "what",
	"definately": "definitely",
	"recieve":    "receive",
	"wierd":      "weird",
	"becuase":    "because",
	"freind":     "friend",
	"thier":      "their",
	"untill":     "until",
	"seperate":   "separate",
	"beleive":    "believe",
	"u":          "you",
	"r":          "are",
	"ur":         "your",
	"pls":        "please",
	"plz":        "please",
}

// stopWords never become lookup or teaching tokens.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "to": true, "of": true, "and": true, "or": true, "in": true, "on": true,
	"at": true, "for": true, "with": true, "what": true, "who": true, "where": true,
	"when": true, "why": true, "how": true, "do": true, "does": true, "did": true,
	"you": true, "your": true, "me": true, "my": true, "i": true, "it": true, "its": true,
	"this": true, "that": true, "these": true, "those": true, "about": true, "tell": true,
	"please": true, "can": true, "could": true, "would": true, "should": true, "know": true,
	"there": true, "their": true, "they": true, "them": true, "from": true, "have": true,
	"has": true, "had": true, "just": true, "like": true, "some": true, "any": true,
	"mean": true, "means": true, "explain": true, "describe": true, "word": true,
}

// normalize lower-cases input, strips punctuation and fixes common
// misspellings.
func normalize(input string) string {
	text := punctuationRe.ReplaceAllString(strings.ToLower(input), " ")
	fields := strings.Fields(text)
	for i, f := range fields {
		if fixed, ok := misspellings[f]; ok {
			fields[i] = fixed
		}
	}
	return strings.Join(fields, " ")
}

// significantTokens are the distinct valid, non-stop-word tokens of text.
func significantTokens(text string) []string {
	var out []string
	for _, tok := range lexicon.ValidTokens(text) {
		if !stopWords[tok] {
			out = append(out, tok)
		}
	}
	return out
}

// lookupTokens are the significant tokens long enough to query the graph.
func lookupTokens(text string, minLen int) []string {
	var out []string
	for _, tok := range significantTokens(text) {
		if len([]rune(tok)) >= minLen {
			out = append(out, tok)
		}
	}
	return out
}

// Emotion is the keyword-bag classification of an utterance
type Emotion struct {
	Label     string  `json:"label"`
	Intensity float64 `json:"intensity"`
}

var (
	positiveWords = map[string]bool{
		"happy": true, "glad": true, "great": true, "love": true, "awesome": true,
		"good": true, "wonderful": true, "excited": true, "joy": true, "amazing": true,
		"thanks": true, "thank": true, "nice": true, "fun": true,
	}
	negativeWords = map[string]bool{
		"sad": true, "bad": true, "hate": true, "angry": true, "terrible": true,
		"awful": true, "upset": true, "lonely": true, "depressed": true, "tired": true,
		"worried": true, "scared": true, "horrible": true,
	}
)

// classifyEmotion picks happy when a positive keyword is present, sad when
// a negative one is, neutral otherwise. Each '!' in raw adds 0.1 to a 0.5
// base intensity.
func classifyEmotion(raw, normalized string) Emotion {
	label := "neutral"
	fields := strings.Fields(normalized)
	for _, f := range fields {
		if positiveWords[f] {
			label = "happy"
			break
		}
	}
	if label == "neutral" {
		for _, f := range fields {
			if negativeWords[f] {
				label = "sad"
				break
			}
		}
	}
	intensity := lexicon.Clamp(0.5 + 0.1*float64(strings.Count(raw, "!")))
	return Emotion{Label: label, Intensity: intensity}
}
