package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"wordweave/backend/internal/lexicon"
)

// SaveContent bumps the frequency of an existing (word, sentence) node or
// creates a new one with the next id from the content counter.
func (r *Repository) SaveContent(ctx context.Context, rec lexicon.ContentRecord) (int64, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	if rec.Frequency == 0 {
		rec.Frequency = 1
	}
	now := formatTime(time.Now())

	id, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (c:Content {word: $word, sentence: $sentence})
			SET c.frequency = c.frequency + 1,
			    c.updated_at = datetime($now)
			RETURN c.id AS id`,
			map[string]interface{}{"word": rec.Word, "sentence": rec.Sentence, "now": now})
		if err != nil {
			return nil, err
		}
		if result.Next(ctx) {
			return getInt64FromRecord(result.Record(), "id"), nil
		}
		if err := result.Err(); err != nil {
			return nil, err
		}

		result, err = tx.Run(ctx, `
			MERGE (ctr:Counter {name: 'content'})
			ON CREATE SET ctr.value = 0
			SET ctr.value = ctr.value + 1
			WITH ctr
			CREATE (c:Content {
				id: ctr.value,
				word: $word,
				sentence: $sentence,
				category: $category,
				context: $context,
				language: $language,
				frequency: $frequency,
				confidence: $confidence,
				created_at: datetime($now),
				updated_at: datetime($now)
			})
			WITH c
			MERGE (w:Word {name: $word})
			MERGE (c)-[:ABOUT]->(w)
			RETURN c.id AS id`,
			map[string]interface{}{
				"word":       rec.Word,
				"sentence":   rec.Sentence,
				"category":   rec.Category,
				"context":    rec.Context,
				"language":   rec.Language,
				"frequency":  int64(rec.Frequency),
				"confidence": rec.Confidence,
				"now":        now,
			})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		return getInt64FromRecord(record, "id"), nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to save content: %w", err)
	}
	return id.(int64), nil
}

func (r *Repository) FetchContentSince(ctx context.Context, afterID int64, limit int) ([]lexicon.ContentRecord, error) {
	query := `
		MATCH (c:Content)
		WHERE c.id > $afterID
		RETURN c.id AS id, c.word AS word, c.sentence AS sentence, c.category AS category,
		       c.context AS context, c.language AS language, c.frequency AS frequency,
		       c.confidence AS confidence, c.created_at AS created_at, c.updated_at AS updated_at
		ORDER BY id
		LIMIT $limit`
	recs, err := collect(ctx, r, query, map[string]interface{}{
		"afterID": afterID,
		"limit":   cypherLimit(limit),
	}, func(record *neo4j.Record) lexicon.ContentRecord {
		return lexicon.ContentRecord{
			ID:         getInt64FromRecord(record, "id"),
			Word:       getStringFromRecord(record, "word"),
			Sentence:   getStringFromRecord(record, "sentence"),
			Category:   getStringFromRecord(record, "category"),
			Context:    getStringFromRecord(record, "context"),
			Language:   getStringFromRecord(record, "language"),
			Frequency:  int(getInt64FromRecord(record, "frequency")),
			Confidence: getFloat64FromRecord(record, "confidence"),
			CreatedAt:  getTimeFromRecord(record, "created_at"),
			UpdatedAt:  getTimeFromRecord(record, "updated_at"),
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}
	return recs, nil
}

func (r *Repository) WordsInCategory(ctx context.Context, category, exclude string, limit int) ([]string, error) {
	query := `
		MATCH (c:Content {category: $category})
		WHERE c.word <> $exclude
		WITH c.word AS word, min(c.id) AS first
		RETURN word
		ORDER BY first
		LIMIT $limit`
	words, err := collect(ctx, r, query, map[string]interface{}{
		"category": category,
		"exclude":  exclude,
		"limit":    cypherLimit(limit),
	}, func(record *neo4j.Record) string {
		return getStringFromRecord(record, "word")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load category words: %w", err)
	}
	return words, nil
}

func (r *Repository) SaveQAPair(ctx context.Context, pair lexicon.QAPair) error {
	query := `
		MERGE (q:QAPair {id: $id})
		ON CREATE SET q.created_at = datetime($createdAt)
		SET q.question = $question,
		    q.answer = $answer
	`
	err := r.write(ctx, query, map[string]interface{}{
		"id":        pair.ID,
		"question":  pair.Question,
		"answer":    pair.Answer,
		"createdAt": formatTime(pair.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to save qa pair: %w", err)
	}
	return nil
}

func (r *Repository) LoadQAPairs(ctx context.Context, limit int) ([]lexicon.QAPair, error) {
	query := `
		MATCH (q:QAPair)
		RETURN q.id AS id, q.question AS question, q.answer AS answer, q.created_at AS created_at
		ORDER BY created_at DESC
		LIMIT $limit`
	pairs, err := collect(ctx, r, query, map[string]interface{}{
		"limit": cypherLimit(limit),
	}, func(record *neo4j.Record) lexicon.QAPair {
		return lexicon.QAPair{
			ID:        getStringFromRecord(record, "id"),
			Question:  getStringFromRecord(record, "question"),
			Answer:    getStringFromRecord(record, "answer"),
			CreatedAt: getTimeFromRecord(record, "created_at"),
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load qa pairs: %w", err)
	}
	return pairs, nil
}
