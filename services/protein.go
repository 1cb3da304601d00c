package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cellcommdb/models"
)

// LoadProteins importiert die Protein-CSV und legt zu jedem neuen Schlüssel eine Protein-Zeile an.
func (s *CollectService) LoadProteins(ctx context.Context, proteinFile string) (*LoadResult, error) {
	if proteinFile == "" {
		proteinFile = s.Config.ProteinPath()
	}
	return s.run(ctx, "protein", proteinFile, func(ctx context.Context, res *LoadResult, log *zap.Logger) error {
		return s.loadProteins(ctx, proteinFile, res, log)
	})
}

func (s *CollectService) loadProteins(ctx context.Context, file string, res *LoadResult, log *zap.Logger) error {
	existing, err := s.existingKeys(ctx)
	if err != nil {
		return err
	}

	frame, err := s.readFrame(ctx, file)
	if err != nil {
		return err
	}
	if !frame.HasColumn(colUniprot) {
		return fmt.Errorf("%s: %w", file, missingColumnsError([]string{colUniprot}))
	}
	frame.DropEmptyColumns()
	res.RowsRead = len(frame.Records)

	var entries []entry
	for _, rec := range frame.Records {
		key, ok := rec.Get(colUniprot)
		if !ok {
			res.Incomplete++
			log.Debug("Protein ohne Schlüssel verworfen", zap.Int("line", rec.Line))
			continue
		}
		entries = append(entries, entry{Record: rec, Key: normalizeKey(key)})
	}

	frame.DropColumns(func(col string) bool { return strings.Contains(col, "Unnamed") })

	fresh, existingCount, duplicates := splitNew(entries, existing)
	res.Existing = existingCount
	res.Duplicates = duplicates

	ids, err := s.insertNew(ctx, fresh, frame.Columns)
	if err != nil {
		return err
	}
	res.Inserted = len(ids)

	proteins := make([]models.Protein, 0, len(fresh))
	for _, e := range fresh {
		proteins = append(proteins, models.Protein{ProteinMultidataID: ids[e.Key]})
	}
	if len(proteins) > 0 {
		if err := s.DB.WithContext(ctx).CreateInBatches(&proteins, s.Config.BatchSize).Error; err != nil {
			return fmt.Errorf("insert protein: %w", err)
		}
	}
	res.Proteins = len(proteins)
	return nil
}
