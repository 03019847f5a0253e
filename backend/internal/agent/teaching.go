package agent

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wordweave/backend/internal/constants"
	"wordweave/backend/internal/lexicon"
)

// LearnFromUserTeaching links the significant tokens of question with those
// of every answer sentence, stores each sentence as the definition of the
// question tokens and keeps the pair for later reuse. It is best effort and
// reports whether anything was learned.
func (o *Orchestrator) LearnFromUserTeaching(ctx context.Context, question, answer string) bool {
	answer = cleanAnswer(answer)
	questionTokens := significantTokens(normalize(question))
	if answer == "" || len(questionTokens) == 0 {
		o.logger.Debug("Nothing to learn from teaching",
			zap.String("question", question),
			zap.Bool("empty_answer", answer == ""),
		)
		return false
	}

	learned := false
	asked := make(map[string]bool, len(questionTokens))
	for _, q := range questionTokens {
		asked[q] = true
	}

	for _, sentence := range lexicon.SplitSentences(answer) {
		var answerTokens []string
		for _, tok := range significantTokens(normalize(sentence)) {
			if !asked[tok] {
				answerTokens = append(answerTokens, tok)
			}
		}

		for _, q := range questionTokens {
			for _, a := range answerTokens {
				if o.relations.LearnAssociation(ctx, q, a, constants.TaughtContextLabel, constants.TaughtForwardStrength) {
					learned = true
				}
				if o.relations.LearnAssociation(ctx, a, q, constants.TaughtContextLabel, constants.TaughtBackwardStrength) {
					learned = true
				}
			}
			if o.relations.LearnDefinition(ctx, q, sentence, true) {
				learned = true
			}
		}

		for i := 0; i < len(answerTokens); i++ {
			for j := i + 1; j < len(answerTokens); j++ {
				if o.relations.LearnAssociation(ctx, answerTokens[i], answerTokens[j], constants.TaughtContextLabel, constants.TaughtAnswerPairing) {
					learned = true
				}
			}
		}
	}

	pair := lexicon.QAPair{
		ID:        uuid.NewString(),
		Question:  strings.TrimSpace(question),
		Answer:    answer,
		CreatedAt: time.Now().UTC(),
	}
	if err := o.qa.SaveQAPair(ctx, pair); err != nil {
		o.logger.Warn("Failed to store Q/A pair", zap.String("question", pair.Question), zap.Error(err))
	} else {
		learned = true
	}

	o.logger.Info("Learned from user teaching",
		zap.String("question", pair.Question),
		zap.Strings("tokens", questionTokens),
		zap.Bool("learned", learned),
	)
	return learned
}

// cleanAnswer collapses whitespace and strips wrapping quotes.
func cleanAnswer(answer string) string {
	answer = strings.Join(strings.Fields(answer), " ")
	return strings.TrimSpace(strings.Trim(answer, `"'`+"`"))
}
