package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wordweave/backend/internal/lexicon"
	apperrors "wordweave/backend/pkg/errors"
	"wordweave/backend/pkg/logger"
)

// DBExecutor accepts either *sql.DB or *sql.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store implements store.Backend on SQLite
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// New wraps an opened and migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db, logger: logger.Get().Named("sqlstore")}
}

// Open opens and migrates the database at path.
func Open(path string) (*Store, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	s := New(db)
	s.logger.Info("SQLite backend ready", zap.String("path", path))
	return s, nil
}

// SaveRelations upserts rels in one transaction.
func (s *Store) SaveRelations(ctx context.Context, rels ...lexicon.Relation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	for _, rel := range rels {
		if err := saveRelation(ctx, tx, rel); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func saveRelation(ctx context.Context, db DBExecutor, rel lexicon.Relation) error {
	if rel.UpdatedAt.IsZero() {
		rel.UpdatedAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO relations (word, related_word, type, strength, context, language, verified, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(word, related_word, type) DO UPDATE SET
			strength = excluded.strength,
			context = excluded.context,
			language = excluded.language,
			verified = excluded.verified,
			updated_at = excluded.updated_at`,
		rel.Word, rel.RelatedWord, string(rel.Kind), rel.Strength, rel.Context, rel.Language, rel.Verified, rel.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert relation: %w", err)
	}
	return nil
}

func (s *Store) LoadRelations(ctx context.Context, word string, kind lexicon.RelationKind) ([]lexicon.Relation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT word, related_word, type, strength, context, language, verified, updated_at
		FROM relations WHERE word = ? AND type = ?
		ORDER BY related_word`, word, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query relations: %w", err)
	}
	return scanRelations(rows)
}

func (s *Store) LoadAllRelations(ctx context.Context) ([]lexicon.Relation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT word, related_word, type, strength, context, language, verified, updated_at
		FROM relations ORDER BY word, type, related_word`)
	if err != nil {
		return nil, fmt.Errorf("query relations: %w", err)
	}
	return scanRelations(rows)
}

func scanRelations(rows *sql.Rows) ([]lexicon.Relation, error) {
	defer rows.Close()
	var out []lexicon.Relation
	for rows.Next() {
		var rel lexicon.Relation
		var kind string
		if err := rows.Scan(&rel.Word, &rel.RelatedWord, &kind, &rel.Strength, &rel.Context, &rel.Language, &rel.Verified, &rel.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan relation: %w", err)
		}
		rel.Kind = lexicon.RelationKind(kind)
		out = append(out, rel)
	}
	return out, rows.Err()
}

func (s *Store) SaveDefinition(ctx context.Context, def lexicon.Definition) error {
	if def.UpdatedAt.IsZero() {
		def.UpdatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO definitions (word, text, language, verified, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(word) DO UPDATE SET
			text = excluded.text,
			language = excluded.language,
			verified = excluded.verified,
			updated_at = excluded.updated_at`,
		def.Word, def.Text, def.Language, def.Verified, def.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert definition: %w", err)
	}
	return nil
}

func (s *Store) LoadDefinition(ctx context.Context, word string) (*lexicon.Definition, error) {
	var def lexicon.Definition
	err := s.db.QueryRowContext(ctx, `
		SELECT word, text, language, verified, updated_at FROM definitions WHERE word = ?`, word,
	).Scan(&def.Word, &def.Text, &def.Language, &def.Verified, &def.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewDefinitionNotFound(word)
	}
	if err != nil {
		return nil, fmt.Errorf("query definition: %w", err)
	}
	return &def, nil
}

func (s *Store) LoadAllDefinitions(ctx context.Context) ([]lexicon.Definition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT word, text, language, verified, updated_at FROM definitions ORDER BY word`)
	if err != nil {
		return nil, fmt.Errorf("query definitions: %w", err)
	}
	defer rows.Close()

	var out []lexicon.Definition
	for rows.Next() {
		var def lexicon.Definition
		if err := rows.Scan(&def.Word, &def.Text, &def.Language, &def.Verified, &def.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan definition: %w", err)
		}
		out = append(out, def)
	}
	return out, rows.Err()
}

func (s *Store) SaveContent(ctx context.Context, rec lexicon.ContentRecord) (int64, error) {
	now := time.Now().UTC()
	if rec.Frequency == 0 {
		rec.Frequency = 1
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO content (word, sentence, category, context, language, frequency, confidence, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(word, sentence) DO UPDATE SET
			frequency = content.frequency + 1,
			updated_at = excluded.updated_at
		RETURNING id`,
		rec.Word, rec.Sentence, rec.Category, rec.Context, rec.Language, rec.Frequency, rec.Confidence, now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert content: %w", err)
	}
	return id, nil
}

func (s *Store) FetchContentSince(ctx context.Context, afterID int64, limit int) ([]lexicon.ContentRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, word, sentence, category, context, language, frequency, confidence, created_at, updated_at
		FROM content WHERE id > ? ORDER BY id LIMIT ?`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("query content: %w", err)
	}
	defer rows.Close()

	var out []lexicon.ContentRecord
	for rows.Next() {
		var rec lexicon.ContentRecord
		if err := rows.Scan(&rec.ID, &rec.Word, &rec.Sentence, &rec.Category, &rec.Context, &rec.Language,
			&rec.Frequency, &rec.Confidence, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) WordsInCategory(ctx context.Context, category, exclude string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT word FROM content
		WHERE category = ? AND word <> ?
		GROUP BY word ORDER BY MIN(id) LIMIT ?`, category, exclude, limit)
	if err != nil {
		return nil, fmt.Errorf("query category words: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("scan category word: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) SaveQAPair(ctx context.Context, pair lexicon.QAPair) error {
	if pair.CreatedAt.IsZero() {
		pair.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO qa_pairs (id, question, answer, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET question = excluded.question, answer = excluded.answer`,
		pair.ID, pair.Question, pair.Answer, pair.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert qa pair: %w", err)
	}
	return nil
}

func (s *Store) LoadQAPairs(ctx context.Context, limit int) ([]lexicon.QAPair, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, answer, created_at FROM qa_pairs
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query qa pairs: %w", err)
	}
	defer rows.Close()

	var out []lexicon.QAPair
	for rows.Next() {
		var p lexicon.QAPair
		if err := rows.Scan(&p.ID, &p.Question, &p.Answer, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan qa pair: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}
