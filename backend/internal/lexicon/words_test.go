package lexicon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidWord(t *testing.T) {
	tests := []struct {
		name string
		word string
		want bool
	}{
		{"empty", "", false},
		{"single char", "a", false},
		{"whitespace padded single char", "  a  ", false},
		{"numeric", "12345", false},
		{"punctuation", "cat!", false},
		{"underscore", "snake_case", false},
		{"too long", strings.Repeat("a", 101), false},
		{"two chars", "ox", true},
		{"hyphenated", "well-known", true},
		{"phrase", "ice cream", true},
		{"alphanumeric", "mp3", true},
		{"max length", strings.Repeat("b", 100), true},
		{"unicode letters", "café", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidWord(tt.word))
		})
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.4))
	assert.Equal(t, 1.0, Clamp(3))
	assert.Equal(t, 0.25, Clamp(0.25))
}

func TestTruncateDefinition(t *testing.T) {
	long := strings.Repeat("x", 1200)
	got := TruncateDefinition(long)
	assert.Len(t, []rune(got), 1000)
	assert.True(t, strings.HasSuffix(got, "..."))

	assert.Equal(t, "short text", TruncateDefinition("  short text "))
}

func TestTokenizeAndValidTokens(t *testing.T) {
	assert.Equal(t, []string{"the", "well-known", "cat", "sat", "42"}, Tokenize("The well-known cat, sat! 42"))
	assert.Equal(t, []string{"the", "cat", "sat", "on", "mat"}, ValidTokens("The cat sat on a mat; the cat."))
}

func TestSplitSentences(t *testing.T) {
	assert.Equal(t, []string{"One thing", "Two things", "Three"}, SplitSentences("One thing. Two   things!  Three?"))
	assert.Empty(t, SplitSentences(" ... "))
}

func TestPairKey(t *testing.T) {
	assert.Equal(t, PairKey("dog", "cat"), PairKey("cat", "dog"))
	a, b := SplitPairKey(PairKey("dog", "cat"))
	assert.Equal(t, "cat", a)
	assert.Equal(t, "dog", b)
}

func TestJoinNatural(t *testing.T) {
	assert.Equal(t, "", JoinNatural(nil))
	assert.Equal(t, "a", JoinNatural([]string{"a"}))
	assert.Equal(t, "a and b", JoinNatural([]string{"a", "b"}))
	assert.Equal(t, "a, b and c", JoinNatural([]string{"a", "b", "c"}))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Cat", Capitalize("cat"))
	assert.Equal(t, "éclair", Decapitalize("Éclair"))
	assert.Equal(t, "", Capitalize(""))
}
