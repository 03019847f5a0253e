package learner

import (
	"fmt"
	"regexp"
	"strings"

	"wordweave/backend/internal/lexicon"
)

// definitionRule extracts the definition of an anchor word from a sentence.
// Pattern is a format string taking the quoted anchor.
type definitionRule struct {
	name    string
	pattern string
}

// definitionRules are evaluated in order; the first match wins.
var definitionRules = []definitionRule{
	{"means", `(?i)(?:^|\W)%s\s+means\s+(.+)`},
	{"defined_as", `(?i)(?:^|\W)%s\s+is\s+defined\s+as\s+(.+)`},
	{"refers_to", `(?i)(?:^|\W)%s\s+refers\s+to\s+(.+)`},
	{"is_a", `(?i)(?:^|\W)%s\s+is\s+((?:a|an|the)\s+.+)`},
	{"stands_for", `(?i)(?:^|\W)%s\s+(?:stands\s+for|describes)\s+(.+)`},
}

// relationRule pairs a connective marker with the relation it implies.
// Group 1 and group 2 of re are the two related words.
type relationRule struct {
	name string
	kind lexicon.RelationKind
	re   *regexp.Regexp
}

const (
	wordGroup    = `([\p{L}\p{N}][\p{L}\p{N}-]*)`
	articleGroup = `(?:(?:a|an|the)\s+)?`
)

func infixRule(name string, kind lexicon.RelationKind, marker string) relationRule {
	return relationRule{
		name: name,
		kind: kind,
		re:   regexp.MustCompile(`(?i)` + wordGroup + `[\s,]+` + marker + `\s+` + articleGroup + wordGroup),
	}
}

// relationRules is one ordered list: the earliest matching rule wins.
var relationRules = []relationRule{
	infixRule("another_word_for", lexicon.KindSynonym, `is\s+another\s+word\s+for`),
	infixRule("means_same_as", lexicon.KindSynonym, `means\s+the\s+same\s+as`),
	infixRule("same_as", lexicon.KindSynonym, `is\s+the\s+same\s+as`),
	infixRule("similar_to", lexicon.KindSynonym, `is\s+similar\s+to`),
	infixRule("also_known_as", lexicon.KindSynonym, `also\s+known\s+as`),
	infixRule("aka", lexicon.KindSynonym, `a\.?k\.?a\.?`),
	infixRule("opposite_of", lexicon.KindAntonym, `is\s+the\s+opposite\s+of`),
	infixRule("contrary_of", lexicon.KindAntonym, `is\s+the\s+contrary\s+of`),
	infixRule("as_opposed_to", lexicon.KindAntonym, `as\s+opposed\s+to`),
	infixRule("versus", lexicon.KindAntonym, `(?:versus|vs\.?)`),
	{
		name: "unlike",
		kind: lexicon.KindAntonym,
		re:   regexp.MustCompile(`(?i)(?:^|\W)unlike\s+` + articleGroup + wordGroup + `[\s,]+` + articleGroup + wordGroup),
	},
}

var trailingPunct = regexp.MustCompile(`[\s.!?;:,]+$`)

// matchDefinition returns the text the first matching rule extracts for word.
func matchDefinition(word, sentence string) (text, rule string, ok bool) {
	quoted := quoteWord(word)
	for _, r := range definitionRules {
		re, err := regexp.Compile(fmt.Sprintf(r.pattern, quoted))
		if err != nil {
			continue
		}
		m := re.FindStringSubmatch(sentence)
		if m == nil {
			continue
		}
		text = cleanDefinition(m[1])
		if text != "" {
			return text, r.name, true
		}
	}
	return "", "", false
}

// matchRelation returns the first relation rule that fires on sentence.
func matchRelation(sentence string) (w1, w2 string, rule relationRule, ok bool) {
	for _, r := range relationRules {
		m := r.re.FindStringSubmatch(sentence)
		if m == nil {
			continue
		}
		return lexicon.Normalize(m[1]), lexicon.Normalize(m[2]), r, true
	}
	return "", "", relationRule{}, false
}

// startsWithWord reports whether sentence opens with every token of word.
func startsWithWord(word string, tokens []string) bool {
	wordTokens := lexicon.Tokenize(word)
	if len(wordTokens) == 0 || len(tokens) < len(wordTokens) {
		return false
	}
	for i, t := range wordTokens {
		if tokens[i] != t {
			return false
		}
	}
	return true
}

func cleanDefinition(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	return trailingPunct.ReplaceAllString(text, "")
}

// quoteWord escapes word for a pattern and lets inner spaces match any run
// of whitespace.
func quoteWord(word string) string {
	parts := strings.Fields(word)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(parts, `\s+`)
}
