package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"wordweave/backend/internal/lexicon"
	apperrors "wordweave/backend/pkg/errors"
)

type relationKey struct {
	word, related string
	kind          lexicon.RelationKind
}

// MemoryBackend is a process-local Backend used for BACKEND=memory and tests.
type MemoryBackend struct {
	mu          sync.RWMutex
	relations   map[relationKey]lexicon.Relation
	definitions map[string]lexicon.Definition
	content     []lexicon.ContentRecord
	qaPairs     []lexicon.QAPair
	nextID      int64
}

// NewMemoryBackend returns an empty MemoryBackend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		relations:   make(map[relationKey]lexicon.Relation),
		definitions: make(map[string]lexicon.Definition),
	}
}

func (m *MemoryBackend) SaveRelations(ctx context.Context, rels ...lexicon.Relation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rel := range rels {
		if rel.UpdatedAt.IsZero() {
			rel.UpdatedAt = time.Now().UTC()
		}
		m.relations[relationKey{rel.Word, rel.RelatedWord, rel.Kind}] = rel
	}
	return nil
}

func (m *MemoryBackend) LoadRelations(ctx context.Context, word string, kind lexicon.RelationKind) ([]lexicon.Relation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []lexicon.Relation
	for k, rel := range m.relations {
		if k.word == word && k.kind == kind {
			out = append(out, rel)
		}
	}
	sortRelations(out)
	return out, nil
}

func (m *MemoryBackend) LoadAllRelations(ctx context.Context) ([]lexicon.Relation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]lexicon.Relation, 0, len(m.relations))
	for _, rel := range m.relations {
		out = append(out, rel)
	}
	sortRelations(out)
	return out, nil
}

func (m *MemoryBackend) SaveDefinition(ctx context.Context, def lexicon.Definition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if def.UpdatedAt.IsZero() {
		def.UpdatedAt = time.Now().UTC()
	}
	m.definitions[def.Word] = def
	return nil
}

func (m *MemoryBackend) LoadDefinition(ctx context.Context, word string) (*lexicon.Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	def, ok := m.definitions[word]
	if !ok {
		return nil, apperrors.NewDefinitionNotFound(word)
	}
	return &def, nil
}

func (m *MemoryBackend) LoadAllDefinitions(ctx context.Context) ([]lexicon.Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]lexicon.Definition, 0, len(m.definitions))
	for _, def := range m.definitions {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out, nil
}

func (m *MemoryBackend) SaveContent(ctx context.Context, rec lexicon.ContentRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	for i := range m.content {
		if m.content[i].Word == rec.Word && m.content[i].Sentence == rec.Sentence {
			m.content[i].Frequency++
			m.content[i].UpdatedAt = now
			return m.content[i].ID, nil
		}
	}
	m.nextID++
	rec.ID = m.nextID
	if rec.Frequency == 0 {
		rec.Frequency = 1
	}
	rec.CreatedAt, rec.UpdatedAt = now, now
	m.content = append(m.content, rec)
	return rec.ID, nil
}

func (m *MemoryBackend) FetchContentSince(ctx context.Context, afterID int64, limit int) ([]lexicon.ContentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []lexicon.ContentRecord
	for _, rec := range m.content {
		if rec.ID <= afterID {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryBackend) WordsInCategory(ctx context.Context, category, exclude string, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, rec := range m.content {
		if rec.Category != category || rec.Word == exclude || seen[rec.Word] {
			continue
		}
		seen[rec.Word] = true
		out = append(out, rec.Word)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryBackend) SaveQAPair(ctx context.Context, pair lexicon.QAPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pair.CreatedAt.IsZero() {
		pair.CreatedAt = time.Now().UTC()
	}
	m.qaPairs = append(m.qaPairs, pair)
	return nil
}

func (m *MemoryBackend) LoadQAPairs(ctx context.Context, limit int) ([]lexicon.QAPair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []lexicon.QAPair
	for i := len(m.qaPairs) - 1; i >= 0; i-- {
		out = append(out, m.qaPairs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryBackend) Close(ctx context.Context) error { return nil }

func sortRelations(rels []lexicon.Relation) {
	sort.Slice(rels, func(i, j int) bool {
		if rels[i].Word != rels[j].Word {
			return rels[i].Word < rels[j].Word
		}
		if rels[i].Kind != rels[j].Kind {
			return rels[i].Kind < rels[j].Kind
		}
		return rels[i].RelatedWord < rels[j].RelatedWord
	})
}
