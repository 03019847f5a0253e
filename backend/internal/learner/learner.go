// Package learner extracts typed relations and definitions from raw
// (word, context, sentence) input and records token patterns for the
// frequency walk.
package learner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"wordweave/backend/internal/constants"
	"wordweave/backend/internal/lexicon"
	"wordweave/backend/pkg/logger"
)

// Relations is the write side of the relation store.
type Relations interface {
	LearnSynonym(ctx context.Context, w1, w2 string, strength float64) bool
	LearnAntonym(ctx context.Context, w1, w2 string, strength float64) bool
	LearnAssociation(ctx context.Context, w1, w2, label string, strength float64) bool
	LearnDefinition(ctx context.Context, word, text string, verified bool) bool
}

// ContextMeta describes where a sentence came from.
type ContextMeta struct {
	Category string `json:"category,omitempty"`
	Context  string `json:"context,omitempty"`
}

// LearnResult reports what one call learned
type LearnResult struct {
	Definition   bool   `json:"definition"`
	DefinitionBy string `json:"definition_rule,omitempty"`
	Synonyms     int    `json:"synonyms"`
	Antonyms     int    `json:"antonyms"`
	Associations int    `json:"associations"`
	Patterns     int    `json:"patterns"`
	Failures     int    `json:"failures"`
}

// Rules counts learned typed facts.
func (r LearnResult) Rules() int {
	n := r.Synonyms + r.Antonyms
	if r.Definition {
		n++
	}
	return n
}

// Learned reports whether anything at all was stored.
func (r LearnResult) Learned() bool {
	return r.Rules() > 0 || r.Associations > 0 || r.Patterns > 0
}

// AssociationLearner runs the heuristic extraction rules over sentences.
type AssociationLearner struct {
	relations Relations
	patterns  *PatternMemory
	logger    *zap.Logger
}

// New creates a learner writing into relations. patterns may be nil.
func New(relations Relations, patterns *PatternMemory) *AssociationLearner {
	return &AssociationLearner{
		relations: relations,
		patterns:  patterns,
		logger:    logger.Get().Named("learner"),
	}
}

// Patterns returns the pattern memory fed by this learner.
func (l *AssociationLearner) Patterns() *PatternMemory {
	return l.patterns
}

// LearnFromContextualData runs definition detection, synonym/antonym
// detection and association fan-out for word over sentence. Each step is
// isolated: a failure in one is logged and counted, and the others still run.
func (l *AssociationLearner) LearnFromContextualData(ctx context.Context, word string, meta ContextMeta, sentence string) LearnResult {
	var result LearnResult
	word = lexicon.Normalize(word)
	if word == "" || sentence == "" {
		return result
	}

	l.isolate("definition", word, &result, func() {
		result.Definition, result.DefinitionBy = l.detectDefinition(ctx, word, sentence)
	})
	l.isolate("relations", word, &result, func() {
		l.detectRelations(ctx, sentence, &result)
	})
	l.isolate("associations", word, &result, func() {
		result.Associations = l.fanOut(ctx, word, meta, sentence)
	})
	if l.patterns != nil {
		l.isolate("patterns", word, &result, func() {
			label := meta.Context
			if label == "" {
				label = meta.Category
			}
			result.Patterns = l.patterns.Observe(sentence, label)
		})
	}

	l.logger.Debug("Learned from sentence",
		zap.String("word", word),
		zap.Bool("definition", result.Definition),
		zap.Int("synonyms", result.Synonyms),
		zap.Int("antonyms", result.Antonyms),
		zap.Int("associations", result.Associations),
		zap.Int("failures", result.Failures),
	)
	return result
}

func (l *AssociationLearner) detectDefinition(ctx context.Context, word, sentence string) (bool, string) {
	if text, rule, ok := matchDefinition(word, sentence); ok {
		return l.relations.LearnDefinition(ctx, word, text, false), rule
	}

	tokens := lexicon.Tokenize(sentence)
	if len(tokens) <= constants.MaxWholeSentenceDefinitionTokens && startsWithWord(word, tokens) {
		return l.relations.LearnDefinition(ctx, word, cleanDefinition(sentence), false), "whole_sentence"
	}
	return false, ""
}

func (l *AssociationLearner) detectRelations(ctx context.Context, sentence string, result *LearnResult) {
	w1, w2, rule, ok := matchRelation(sentence)
	if !ok {
		return
	}
	switch rule.kind {
	case lexicon.KindSynonym:
		if l.relations.LearnSynonym(ctx, w1, w2, constants.SynonymPatternStrength) {
			result.Synonyms++
		}
	case lexicon.KindAntonym:
		if l.relations.LearnAntonym(ctx, w1, w2, constants.AntonymPatternStrength) {
			result.Antonyms++
		}
	}
}

func (l *AssociationLearner) fanOut(ctx context.Context, word string, meta ContextMeta, sentence string) int {
	label := meta.Category
	if label == "" {
		label = constants.DefaultAssociationLabel
	}
	learned := 0
	for _, tok := range lexicon.ValidTokens(sentence) {
		if tok == word {
			continue
		}
		if l.relations.LearnAssociation(ctx, word, tok, label, constants.SentenceAssociation) {
			learned++
		}
	}
	return learned
}

func (l *AssociationLearner) isolate(step, word string, result *LearnResult, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			result.Failures++
			l.logger.Error("Learning step panicked",
				zap.String("step", step),
				zap.String("word", word),
				zap.Error(fmt.Errorf("%v", r)),
			)
		}
	}()
	fn()
}
