package store

import (
	"context"

	"go.uber.org/zap"

	"wordweave/backend/internal/lexicon"
	apperrors "wordweave/backend/pkg/errors"
)

// ImportReport summarizes a bulk import
type ImportReport struct {
	Relations   int `json:"relations"`
	Definitions int `json:"definitions"`
	Rejected    int `json:"rejected"`
}

// Import replays every relation and definition row of src through the
// Learn* methods, so imported rows obey the same validation and merge
// rules as live learning.
func (s *RelationStore) Import(ctx context.Context, src Backend) (ImportReport, error) {
	var report ImportReport

	rels, err := src.LoadAllRelations(ctx)
	if err != nil {
		return report, apperrors.NewPersistenceFailed("import relations", err)
	}
	for _, rel := range rels {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		var ok bool
		switch rel.Kind {
		case lexicon.KindSynonym:
			ok = s.LearnSynonym(ctx, rel.Word, rel.RelatedWord, rel.Strength)
		case lexicon.KindAntonym:
			ok = s.LearnAntonym(ctx, rel.Word, rel.RelatedWord, rel.Strength)
		case lexicon.KindAssociation:
			ok = s.LearnAssociation(ctx, rel.Word, rel.RelatedWord, rel.Context, rel.Strength)
		}
		if ok {
			report.Relations++
		} else {
			report.Rejected++
		}
	}

	defs, err := src.LoadAllDefinitions(ctx)
	if err != nil {
		return report, apperrors.NewPersistenceFailed("import definitions", err)
	}
	for _, def := range defs {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if s.LearnDefinition(ctx, def.Word, def.Text, def.Verified) {
			report.Definitions++
		} else {
			report.Rejected++
		}
	}

	s.logger.Info("Import finished",
		zap.Int("relations", report.Relations),
		zap.Int("definitions", report.Definitions),
		zap.Int("rejected", report.Rejected),
	)
	return report, nil
}
