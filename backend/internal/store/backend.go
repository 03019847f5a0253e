package store

import (
	"context"

	"wordweave/backend/internal/lexicon"
)

// Backend is the authoritative persistence collaborator. Implementations
// live in internal/sqlstore, internal/graph and MemoryBackend here.
//
// SaveRelations and SaveDefinition overwrite; merge policy belongs to the
// RelationStore. SaveRelations writes every row or none. LoadDefinition returns a not-found error from pkg/errors
// when the word has no definition.
type Backend interface {
	SaveRelations(ctx context.Context, rels ...lexicon.Relation) error
	LoadRelations(ctx context.Context, word string, kind lexicon.RelationKind) ([]lexicon.Relation, error)
	LoadAllRelations(ctx context.Context) ([]lexicon.Relation, error)

	SaveDefinition(ctx context.Context, def lexicon.Definition) error
	LoadDefinition(ctx context.Context, word string) (*lexicon.Definition, error)
	LoadAllDefinitions(ctx context.Context) ([]lexicon.Definition, error)

	// SaveContent inserts a record, or bumps the frequency of an identical
	// (word, sentence) row, and returns the row id.
	SaveContent(ctx context.Context, rec lexicon.ContentRecord) (int64, error)
	// FetchContentSince returns up to limit records with id > afterID in id order.
	FetchContentSince(ctx context.Context, afterID int64, limit int) ([]lexicon.ContentRecord, error)
	// WordsInCategory returns distinct content words sharing category, excluding exclude.
	WordsInCategory(ctx context.Context, category, exclude string, limit int) ([]string, error)

	SaveQAPair(ctx context.Context, pair lexicon.QAPair) error
	// LoadQAPairs returns the newest pairs first.
	LoadQAPairs(ctx context.Context, limit int) ([]lexicon.QAPair, error)

	Close(ctx context.Context) error
}
