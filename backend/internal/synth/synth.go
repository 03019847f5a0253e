// Package synth produces sentences from the lexical graph: template fills
// around a concept, weighted relation walks, pattern-frequency walks and
// emotion-seeded walks. "No sentence" is a normal outcome and is returned
// as the empty string.
package synth

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"wordweave/backend/internal/constants"
	"wordweave/backend/internal/lexicon"
	apperrors "wordweave/backend/pkg/errors"
	"wordweave/backend/pkg/logger"
)

// Rand is the randomness the synthesizer draws on. *math/rand.Rand
// satisfies it; tests inject fixed sequences.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// Graph is the read side of the relation store.
type Graph interface {
	GetDefinition(ctx context.Context, word string) (lexicon.Definition, bool)
	GetSynonyms(ctx context.Context, word string) []lexicon.WordStrength
	GetAntonyms(ctx context.Context, word string) []lexicon.WordStrength
	GetAssociations(ctx context.Context, word string) []lexicon.WordStrength
	GetRelatedWords(ctx context.Context, word string, threshold float64) []lexicon.RelatedWord
}

// Patterns exposes next-word counts for the frequency walk.
type Patterns interface {
	Outputs(key string) map[string]int
	TopUnigrams(n int) []string
}

// Synthesizer generates sentences. It is safe for concurrent use when rng is.
type Synthesizer struct {
	graph    Graph
	patterns Patterns
	rng      Rand
	logger   *zap.Logger
}

// New creates a Synthesizer. patterns may be nil, which disables the
// frequency walk.
func New(graph Graph, patterns Patterns, rng Rand) *Synthesizer {
	return &Synthesizer{
		graph:    graph,
		patterns: patterns,
		rng:      rng,
		logger:   logger.Get().Named("synth"),
	}
}

var (
	definitionSkeletons = []string{
		"%s is %s.",
		"%s can be described as %s.",
		"I learned that %s means %s.",
		"When people say %s, they mean %s.",
	}
	synonymSkeletons = []string{
		"%s is similar to %s.",
		"%s means about the same as %s.",
		"Another way to say %s is %s.",
	}
	antonymSkeletons = []string{
		"%s is the opposite of %s.",
		"%s is not the same as %s.",
		"%s stands in contrast to %s.",
	}
	associationSkeletons = []string{
		"%s is related to %s.",
		"When I think of %s, I think of %s.",
		"%s often goes together with %s.",
	}
	genericSkeletons = []string{
		"%s brings to mind %s.",
		"%s connects with %s.",
	}
)

// GenerateConceptualSentence tries, in order: a definition fill, a synonym
// fill, an antonym fill, an association fill and a generic fill over any
// related words. minLen and maxLen bound the generic fill only.
func (s *Synthesizer) GenerateConceptualSentence(ctx context.Context, concept string, minLen, maxLen int) (out string) {
	defer s.recover("conceptual", concept, &out)

	concept = lexicon.Normalize(concept)
	if !lexicon.IsValidWord(concept) {
		return ""
	}

	if def, ok := s.graph.GetDefinition(ctx, concept); ok && len([]rune(def.Text)) > constants.MinTemplateDefinitionLength {
		text := strings.TrimRight(lexicon.Decapitalize(strings.TrimSpace(def.Text)), ".!?;:, ")
		return s.fill(definitionSkeletons, concept, text)
	}

	if syns := s.graph.GetSynonyms(ctx, concept); len(syns) > 0 {
		return s.fill(synonymSkeletons, concept, lexicon.JoinNatural(s.pick(words(syns), 2)))
	}

	if ants := s.graph.GetAntonyms(ctx, concept); len(ants) > 0 {
		return s.fill(antonymSkeletons, concept, lexicon.JoinNatural(s.pick(words(ants), 2)))
	}

	if assocs := s.graph.GetAssociations(ctx, concept); len(assocs) >= 2 {
		return s.fill(associationSkeletons, concept, lexicon.JoinNatural(s.pick(words(assocs), 3)))
	}

	related := s.graph.GetRelatedWords(ctx, concept, 0)
	if len(related) >= 2 {
		names := make([]string, len(related))
		for i, r := range related {
			names[i] = r.Word
		}
		// skeleton adds three words around the list
		n := max(2, maxLen-3)
		picked := s.pick(names, n)
		if len(picked)+3 >= minLen {
			return s.fill(genericSkeletons, concept, lexicon.JoinNatural(picked))
		}
	}

	s.logger.Debug("No conceptual sentence", zap.Error(apperrors.NewGenerationExhausted(concept)))
	return ""
}

// GenerateSentenceWithRelations walks the typed graph from startWord,
// always taking the unused neighbour with the highest weighted strength.
// Synonym edges count 1.5x, antonym edges 0.8x. The walk stops at maxLen
// words or when no unused neighbour is left; shorter than minLen yields "".
func (s *Synthesizer) GenerateSentenceWithRelations(ctx context.Context, startWord string, minLen, maxLen int) (out string) {
	defer s.recover("relations", startWord, &out)

	start := lexicon.Normalize(startWord)
	if !lexicon.IsValidWord(start) || maxLen < 1 {
		return ""
	}

	walk := []string{start}
	used := tokenSet{}
	used.add(start)
	for len(walk) < maxLen {
		next, ok := s.bestNeighbour(ctx, walk[len(walk)-1], used)
		if !ok {
			break
		}
		walk = append(walk, next)
		used.add(next)
	}

	return finish(walk, minLen)
}

func (s *Synthesizer) bestNeighbour(ctx context.Context, word string, used tokenSet) (string, bool) {
	var best []string
	bestWeight := -1.0
	for _, r := range s.graph.GetRelatedWords(ctx, word, 0) {
		if used.clashes(r.Word) {
			continue
		}
		w := r.Strength * walkWeight(r.Kind)
		switch {
		case w > bestWeight+1e-9:
			best, bestWeight = []string{r.Word}, w
		case w > bestWeight-1e-9:
			if !slices.Contains(best, r.Word) {
				best = append(best, r.Word)
			}
		}
	}
	if len(best) == 0 {
		return "", false
	}
	return best[s.rng.Intn(len(best))], true
}

// GenerateFrequencyWalk follows learned next-word counts from seed, picking
// each next word at random weighted by count. Bigram outputs are preferred
// when the last two words have been seen together. An empty seed starts
// from one of the most frequent words.
func (s *Synthesizer) GenerateFrequencyWalk(ctx context.Context, seed string, minLen, maxLen int) (out string) {
	defer s.recover("frequency", seed, &out)

	if s.patterns == nil || maxLen < 1 {
		return ""
	}
	seed = lexicon.Normalize(seed)
	if seed == "" {
		top := s.patterns.TopUnigrams(constants.ExplorationSampleSize)
		if len(top) == 0 {
			return ""
		}
		seed = top[s.rng.Intn(len(top))]
	}
	if !lexicon.IsValidWord(seed) {
		return ""
	}

	walk := []string{seed}
	used := tokenSet{}
	used.add(seed)
	for len(walk) < maxLen {
		var outputs map[string]int
		if n := len(walk); n >= 2 {
			outputs = unused(s.patterns.Outputs(walk[n-2]+" "+walk[n-1]), used)
		}
		if len(outputs) == 0 {
			outputs = unused(s.patterns.Outputs(walk[len(walk)-1]), used)
		}
		if len(outputs) == 0 {
			break
		}
		next := s.weightedChoice(outputs)
		walk = append(walk, next)
		used.add(next)
	}

	return finish(walk, minLen)
}

func (s *Synthesizer) weightedChoice(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	total := 0
	for k, c := range counts {
		keys = append(keys, k)
		total += c
	}
	sort.Strings(keys)

	target := s.rng.Float64() * float64(total)
	acc := 0.0
	for _, k := range keys {
		acc += float64(counts[k])
		if target < acc {
			return k
		}
	}
	return keys[len(keys)-1]
}

// fill puts concept and filler into a random skeleton and capitalizes.
func (s *Synthesizer) fill(skeletons []string, concept, filler string) string {
	skeleton := skeletons[s.rng.Intn(len(skeletons))]
	return lexicon.Capitalize(fmt.Sprintf(skeleton, concept, filler))
}

// pick returns up to n distinct items chosen at random.
func (s *Synthesizer) pick(items []string, n int) []string {
	pool := append([]string(nil), items...)
	if n > len(pool) {
		n = len(pool)
	}
	for i := 0; i < n; i++ {
		j := i + s.rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

func (s *Synthesizer) recover(strategy, seed string, out *string) {
	if r := recover(); r != nil {
		*out = ""
		s.logger.Error("Sentence generation panicked",
			zap.String("strategy", strategy),
			zap.String("seed", seed),
			zap.Error(fmt.Errorf("%v", r)),
		)
	}
}

func walkWeight(kind lexicon.RelationKind) float64 {
	switch kind {
	case lexicon.KindSynonym:
		return constants.SynonymWalkWeight
	case lexicon.KindAntonym:
		return constants.AntonymWalkWeight
	}
	return constants.AssociationWalkWeight
}

func finish(walk []string, minLen int) string {
	if len(walk) < minLen {
		return ""
	}
	return lexicon.Capitalize(strings.Join(walk, " ")) + "."
}

func words(list []lexicon.WordStrength) []string {
	out := make([]string, len(list))
	for i, ws := range list {
		out[i] = ws.Word
	}
	return out
}

// tokenSet tracks the single words already emitted, so a phrase entry and
// its parts never both appear in one sentence.
type tokenSet map[string]bool

func (t tokenSet) add(entry string) {
	for _, tok := range strings.Fields(entry) {
		t[tok] = true
	}
}

func (t tokenSet) clashes(entry string) bool {
	for _, tok := range strings.Fields(entry) {
		if t[tok] {
			return true
		}
	}
	return false
}

func unused(counts map[string]int, used tokenSet) map[string]int {
	for k := range counts {
		if used.clashes(k) {
			delete(counts, k)
		}
	}
	return counts
}

