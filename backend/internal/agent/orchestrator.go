// Package agent answers chat utterances from the lexical graph and routes
// facts the user teaches back into it.
package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"wordweave/backend/internal/constants"
	"wordweave/backend/internal/lexicon"
	"wordweave/backend/pkg/logger"
)

// Relations is the part of the relation store the orchestrator uses.
type Relations interface {
	GetDefinition(ctx context.Context, word string) (lexicon.Definition, bool)
	GetSynonyms(ctx context.Context, word string) []lexicon.WordStrength
	GetRelatedWords(ctx context.Context, word string, threshold float64) []lexicon.RelatedWord
	LearnAssociation(ctx context.Context, w1, w2, label string, strength float64) bool
	LearnDefinition(ctx context.Context, word, text string, verified bool) bool
}

// Generator produces the concept sentence for "teach me" requests.
type Generator interface {
	GenerateConceptualSentence(ctx context.Context, concept string, minLen, maxLen int) string
}

// QAStore persists taught question/answer pairs.
type QAStore interface {
	SaveQAPair(ctx context.Context, pair lexicon.QAPair) error
	LoadQAPairs(ctx context.Context, limit int) ([]lexicon.QAPair, error)
}

// Reply sources
const (
	SourceIntercept     = "intercept"
	SourceTeachMe       = "teach_me"
	SourcePending       = "pending"
	SourceQA            = "qa"
	SourceDecomposition = "decomposition"
	SourceFallback      = "fallback"
	SourceApology       = "apology"
)

// Apology is returned when nothing usable remains.
const Apology = "I'm sorry, I don't have anything to say about that yet."

// Reply is the orchestrator's answer to one utterance
type Reply struct {
	Text    string  `json:"text"`
	Source  string  `json:"source"`
	Emotion Emotion `json:"emotion"`
	// Learned is set when the utterance taught the graph something.
	Learned bool `json:"learned,omitempty"`
	// Pending is the word the reply asks to be taught.
	Pending string `json:"pending,omitempty"`
}

// Orchestrator runs the response pipeline
type Orchestrator struct {
	relations Relations
	generator Generator
	qa        QAStore
	logger    *zap.Logger
}

// NewOrchestrator creates an orchestrator over the given collaborators
func NewOrchestrator(relations Relations, generator Generator, qa QAStore) *Orchestrator {
	return &Orchestrator{
		relations: relations,
		generator: generator,
		qa:        qa,
		logger:    logger.Get().Named("agent"),
	}
}

type intercept struct {
	triggers []string
	reply    string
}

var intercepts = []intercept{
	{
		triggers: []string{"who are you", "what is your name", "whats your name", "what's your name"},
		reply:    "I am WordWeave. I learn words and how they connect.",
	},
	{
		triggers: []string{"where are you", "where do you live", "where are you from"},
		reply:    "I live on a server, somewhere between the words I know.",
	},
	{
		triggers: []string{"what are you", "what can you do", "tell me about yourself", "describe yourself"},
		reply:    "I learn synonyms, antonyms, associations and definitions from text, then use them to make sentences. Teach me something!",
	},
}

var teachMeRe = regexp.MustCompile(`(?i)^\s*(?:please\s+)?teach\s+me\s+(?:about\s+)?(.+?)\s*[.!?]*\s*$`)

// Respond answers input within conv. The first stage that produces text
// wins; the static apology is the last resort.
func (o *Orchestrator) Respond(ctx context.Context, conv *Conversation, input string) Reply {
	conv.mu.Lock()
	defer conv.mu.Unlock()

	conv.Turns++
	conv.UpdatedAt = time.Now()

	// pending questions live for one turn only
	pending := conv.PendingQuestion
	conv.PendingQuestion = ""

	raw := strings.TrimSpace(input)
	if raw == "" {
		return Reply{Text: Apology, Source: SourceApology, Emotion: Emotion{Label: "neutral", Intensity: 0.5}}
	}

	if reply, ok := o.intercept(raw); ok {
		return reply
	}

	if m := teachMeRe.FindStringSubmatch(raw); m != nil {
		if reply, ok := o.teachMe(ctx, conv, m[1]); ok {
			return reply
		}
	}

	text := normalize(raw)
	emotion := classifyEmotion(raw, text)

	if pending != "" && !strings.HasSuffix(raw, "?") {
		learned := o.LearnFromUserTeaching(ctx, pending, raw)
		if learned {
			return Reply{
				Text:    fmt.Sprintf("Thank you! Now I know about %s.", pending),
				Source:  SourcePending,
				Emotion: emotion,
				Learned: true,
			}
		}
	}

	query := significantTokens(text)
	if reply, ok := o.answerFromHistory(ctx, query); ok {
		reply.Emotion = emotion
		return reply
	}

	if snippet := o.decompose(ctx, text); snippet != "" {
		return Reply{Text: snippet, Source: SourceDecomposition, Emotion: emotion}
	}

	if len(query) > 0 {
		unknown := query[len(query)-1]
		conv.PendingQuestion = unknown
		return Reply{
			Text:    fmt.Sprintf("I don't know %s, please teach me.", unknown),
			Source:  SourceFallback,
			Emotion: emotion,
			Pending: unknown,
		}
	}

	return Reply{Text: Apology, Source: SourceApology, Emotion: emotion}
}

func (o *Orchestrator) intercept(raw string) (Reply, bool) {
	text := strings.Join(strings.Fields(punctuationRe.ReplaceAllString(strings.ToLower(raw), " ")), " ")
	for _, ic := range intercepts {
		for _, trigger := range ic.triggers {
			trigger = strings.Join(strings.Fields(punctuationRe.ReplaceAllString(trigger, " ")), " ")
			if text == trigger {
				return Reply{Text: ic.reply, Source: SourceIntercept, Emotion: Emotion{Label: "neutral", Intensity: 0.5}}, true
			}
		}
	}
	return Reply{}, false
}

// teachMe answers "teach me about X" with a concept sentence. When nothing
// is known about X the reply asks to be taught instead.
func (o *Orchestrator) teachMe(ctx context.Context, conv *Conversation, subject string) (Reply, bool) {
	concept := lexicon.Normalize(normalize(subject))
	if !lexicon.IsValidWord(concept) {
		return Reply{}, false
	}
	emotion := Emotion{Label: "curious", Intensity: 0.5}
	if sentence := o.generator.GenerateConceptualSentence(ctx, concept, 3, 20); sentence != "" {
		return Reply{Text: sentence, Source: SourceTeachMe, Emotion: emotion}, true
	}
	conv.PendingQuestion = concept
	return Reply{
		Text:    fmt.Sprintf("I don't know %s yet, please teach me.", concept),
		Source:  SourceFallback,
		Emotion: emotion,
		Pending: concept,
	}, true
}

func (o *Orchestrator) answerFromHistory(ctx context.Context, query []string) (Reply, bool) {
	if len(query) == 0 {
		return Reply{}, false
	}
	pairs, err := o.qa.LoadQAPairs(ctx, constants.QAPairLookupLimit)
	if err != nil {
		o.logger.Warn("Failed to load Q/A pairs", zap.Error(err))
		return Reply{}, false
	}
	pair, score, ok := bestQAPair(query, pairs, constants.QAMatchThreshold)
	if !ok {
		return Reply{}, false
	}
	o.logger.Debug("Answered from history", zap.String("question", pair.Question), zap.Float64("score", score))
	return Reply{Text: pair.Answer, Source: SourceQA}, true
}

// decompose queries the graph per token and joins what it finds.
func (o *Orchestrator) decompose(ctx context.Context, text string) string {
	var snippets []string
	for _, tok := range lookupTokens(text, constants.MinQueryTokenLen) {
		if def, ok := o.relations.GetDefinition(ctx, tok); ok {
			snippets = append(snippets, fmt.Sprintf("%s: %s.", lexicon.Capitalize(tok), strings.TrimRight(def.Text, ".!?")))
			continue
		}
		if syns := o.relations.GetSynonyms(ctx, tok); len(syns) > 0 {
			snippets = append(snippets, fmt.Sprintf("%s is similar to %s.", lexicon.Capitalize(tok), lexicon.JoinNatural(topWords(syns, 3))))
			continue
		}
		if related := o.relations.GetRelatedWords(ctx, tok, 0); len(related) > 0 {
			names := make([]string, 0, 3)
			for _, r := range related {
				if len(names) == 3 {
					break
				}
				names = append(names, r.Word)
			}
			snippets = append(snippets, fmt.Sprintf("%s makes me think of %s.", lexicon.Capitalize(tok), lexicon.JoinNatural(names)))
		}
	}
	return strings.Join(snippets, " ")
}

func topWords(list []lexicon.WordStrength, n int) []string {
	out := make([]string, 0, n)
	for _, ws := range list {
		if len(out) == n {
			break
		}
		out = append(out, ws.Word)
	}
	return out
}
