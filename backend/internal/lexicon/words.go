package lexicon

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"wordweave/backend/internal/constants"
)

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
)

// Normalize lower-cases w and collapses internal whitespace.
func Normalize(w string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(w)), " ")
}

// IsValidWord accepts trimmed strings of 2..100 runes made of letters,
// digits, spaces and hyphens that contain at least one letter.
func IsValidWord(w string) bool {
	w = strings.TrimSpace(w)
	n := utf8.RuneCountInString(w)
	if n < constants.MinWordLength || n > constants.MaxWordLength {
		return false
	}
	hasLetter := false
	for _, r := range w {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r), r == ' ', r == '-':
		default:
			return false
		}
	}
	return hasLetter
}

// Clamp bounds a strength to [0,1]. NaN collapses to 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// TruncateDefinition caps text at MaxDefinitionLength runes, ending in "...".
func TruncateDefinition(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= constants.MaxDefinitionLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:constants.MaxDefinitionLength-3]) + "..."
}

// Tokenize splits text into lower-cased tokens of letters, digits and
// inner hyphens. Punctuation separates tokens.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '\'')
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "-'")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ValidTokens returns the distinct valid words of text in first-seen order.
func ValidTokens(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range Tokenize(text) {
		if seen[tok] || !IsValidWord(tok) {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// SplitSentences breaks text on terminal punctuation and drops empty parts.
func SplitSentences(text string) []string {
	var out []string
	for _, part := range sentenceSplitRe.Split(text, -1) {
		part = strings.TrimSpace(whitespaceRe.ReplaceAllString(part, " "))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// PairKey is the undirected key for a word pair.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// SplitPairKey reverses PairKey.
func SplitPairKey(key string) (string, string) {
	a, b, _ := strings.Cut(key, "|")
	return a, b
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Decapitalize lower-cases the first rune of s.
func Decapitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// JoinNatural joins words as "a", "a and b", or "a, b and c".
func JoinNatural(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	case 2:
		return words[0] + " and " + words[1]
	}
	return strings.Join(words[:len(words)-1], ", ") + " and " + words[len(words)-1]
}
