package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"wordweave/backend/internal/lexicon"
	apperrors "wordweave/backend/pkg/errors"
)

const relationColumns = `
	a.name AS word,
	b.name AS related_word,
	r.type AS type,
	r.strength AS strength,
	r.context AS context,
	r.language AS language,
	r.verified AS verified,
	r.updated_at AS updated_at`

func recordToRelation(record *neo4j.Record) lexicon.Relation {
	return lexicon.Relation{
		Word:        getStringFromRecord(record, "word"),
		RelatedWord: getStringFromRecord(record, "related_word"),
		Kind:        lexicon.RelationKind(getStringFromRecord(record, "type")),
		Strength:    getFloat64FromRecord(record, "strength"),
		Context:     getStringFromRecord(record, "context"),
		Language:    getStringFromRecord(record, "language"),
		Verified:    getBoolFromRecord(record, "verified"),
		UpdatedAt:   getTimeFromRecord(record, "updated_at"),
	}
}

func recordToDefinition(record *neo4j.Record) lexicon.Definition {
	return lexicon.Definition{
		Word:      getStringFromRecord(record, "word"),
		Text:      getStringFromRecord(record, "text"),
		Language:  getStringFromRecord(record, "language"),
		Verified:  getBoolFromRecord(record, "verified"),
		UpdatedAt: getTimeFromRecord(record, "updated_at"),
	}
}

// SaveRelations merges the typed edges and overwrites their properties in
// one write transaction.
func (r *Repository) SaveRelations(ctx context.Context, rels ...lexicon.Relation) error {
	if len(rels) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, 0, len(rels))
	for _, rel := range rels {
		rows = append(rows, map[string]interface{}{
			"word":      rel.Word,
			"related":   rel.RelatedWord,
			"type":      string(rel.Kind),
			"strength":  rel.Strength,
			"context":   rel.Context,
			"language":  rel.Language,
			"verified":  rel.Verified,
			"updatedAt": formatTime(rel.UpdatedAt),
		})
	}

	query := `
		UNWIND $rels AS rel
		MERGE (a:Word {name: rel.word})
		MERGE (b:Word {name: rel.related})
		MERGE (a)-[r:RELATION {type: rel.type}]->(b)
		SET r.strength = rel.strength,
		    r.context = rel.context,
		    r.language = rel.language,
		    r.verified = rel.verified,
		    r.updated_at = datetime(rel.updatedAt)
	`
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, query, map[string]interface{}{"rels": rows})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to save relations: %w", err)
	}
	return nil
}

func (r *Repository) LoadRelations(ctx context.Context, word string, kind lexicon.RelationKind) ([]lexicon.Relation, error) {
	query := `
		MATCH (a:Word {name: $word})-[r:RELATION {type: $type}]->(b:Word)
		RETURN ` + relationColumns + `
		ORDER BY related_word`
	rels, err := collect(ctx, r, query, map[string]interface{}{
		"word": word,
		"type": string(kind),
	}, recordToRelation)
	if err != nil {
		return nil, fmt.Errorf("failed to load relations: %w", err)
	}
	return rels, nil
}

func (r *Repository) LoadAllRelations(ctx context.Context) ([]lexicon.Relation, error) {
	query := `
		MATCH (a:Word)-[r:RELATION]->(b:Word)
		RETURN ` + relationColumns + `
		ORDER BY word, type, related_word`
	rels, err := collect(ctx, r, query, nil, recordToRelation)
	if err != nil {
		return nil, fmt.Errorf("failed to load relations: %w", err)
	}
	return rels, nil
}

func (r *Repository) SaveDefinition(ctx context.Context, def lexicon.Definition) error {
	query := `
		MERGE (w:Word {name: $word})
		MERGE (w)-[:HAS_DEFINITION]->(d:Definition)
		SET d.text = $text,
		    d.language = $language,
		    d.verified = $verified,
		    d.updated_at = datetime($updatedAt)
	`
	err := r.write(ctx, query, map[string]interface{}{
		"word":      def.Word,
		"text":      def.Text,
		"language":  def.Language,
		"verified":  def.Verified,
		"updatedAt": formatTime(def.UpdatedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to save definition: %w", err)
	}
	return nil
}

func (r *Repository) LoadDefinition(ctx context.Context, word string) (*lexicon.Definition, error) {
	query := `
		MATCH (w:Word {name: $word})-[:HAS_DEFINITION]->(d:Definition)
		RETURN w.name AS word, d.text AS text, d.language AS language,
		       d.verified AS verified, d.updated_at AS updated_at
		LIMIT 1`
	defs, err := collect(ctx, r, query, map[string]interface{}{"word": word}, recordToDefinition)
	if err != nil {
		return nil, fmt.Errorf("failed to load definition: %w", err)
	}
	if len(defs) == 0 {
		return nil, apperrors.NewDefinitionNotFound(word)
	}
	return &defs[0], nil
}

func (r *Repository) LoadAllDefinitions(ctx context.Context) ([]lexicon.Definition, error) {
	query := `
		MATCH (w:Word)-[:HAS_DEFINITION]->(d:Definition)
		RETURN w.name AS word, d.text AS text, d.language AS language,
		       d.verified AS verified, d.updated_at AS updated_at
		ORDER BY word`
	defs, err := collect(ctx, r, query, nil, recordToDefinition)
	if err != nil {
		return nil, fmt.Errorf("failed to load definitions: %w", err)
	}
	return defs, nil
}
