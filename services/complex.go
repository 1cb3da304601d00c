package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cellcommdb/models"
)

// proteinRefColumns sind die Spalten, die Komplex-Mitglieder referenzieren.
var proteinRefColumns = []string{"protein_1_id", "protein_2_id", "protein_3_id", "protein_4_id"}

// LoadComplexes importiert die Complex-CSV. Ein leerer Pfad fällt auf die konfigurierte Datei zurück.
//
// Eine Zeile wird nur übernommen, wenn alle referenzierten Proteine bereits existieren.
// Multidata-, Complex- und Composition-Zeilen entstehen nur für Komplexe, die in diesem Lauf neu sind.
func (s *CollectService) LoadComplexes(ctx context.Context, complexFile string) (*LoadResult, error) {
	if complexFile == "" {
		complexFile = s.Config.ComplexPath()
	}
	return s.run(ctx, "complex", complexFile, func(ctx context.Context, res *LoadResult, log *zap.Logger) error {
		return s.loadComplexes(ctx, complexFile, res, log)
	})
}

func (s *CollectService) loadComplexes(ctx context.Context, file string, res *LoadResult, log *zap.Logger) error {
	existing, err := s.existingKeys(ctx)
	if err != nil {
		return err
	}
	proteins, err := s.proteinIDs(ctx)
	if err != nil {
		return err
	}

	frame, err := s.readFrame(ctx, file)
	if err != nil {
		return err
	}
	if err := validateComplexColumns(frame); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	if dropped := frame.DropEmptyColumns(); len(dropped) > 0 {
		log.Debug("Leere Spalten entfernt", zap.Strings("columns", dropped))
	}
	res.RowsRead = len(frame.Records)

	accepted, incomplete := resolveComplexes(frame, proteins)
	res.Incomplete = len(incomplete)
	for _, r := range incomplete {
		log.Debug("Komplex mit unbekanntem Protein verworfen",
			zap.Int("line", r.Line), zap.String("uniprot", r.Values[colUniprot]))
	}

	frame.DropColumns(isUnstoredComplexColumn)

	fresh, existingCount, duplicates := splitNew(accepted, existing)
	res.Existing = existingCount
	res.Duplicates = duplicates
	if duplicates > 0 {
		log.Warn("Doppelte Komplex-Schlüssel in der Datei übersprungen", zap.Int("duplicates", duplicates))
	}

	ids, err := s.insertNew(ctx, fresh, frame.Columns)
	if err != nil {
		return err
	}
	res.Inserted = len(ids)

	compositions, registry := complexRows(fresh, ids)
	if len(compositions) > 0 {
		if err := s.DB.WithContext(ctx).CreateInBatches(&compositions, s.Config.BatchSize).Error; err != nil {
			return fmt.Errorf("insert complex composition: %w", err)
		}
	}
	res.Compositions = len(compositions)
	if len(registry) > 0 {
		if err := s.DB.WithContext(ctx).CreateInBatches(&registry, s.Config.BatchSize).Error; err != nil {
			return fmt.Errorf("insert complex: %w", err)
		}
	}
	res.Complexes = len(registry)
	return nil
}

// validateComplexColumns prüft die Kopfzeile, bevor leere Spalten entfernt werden.
func validateComplexColumns(f *Frame) error {
	var missing []string
	if !f.HasColumn(colUniprot) {
		missing = append(missing, colUniprot)
	}
	for _, col := range models.FlagColumns {
		if !f.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	hasRef := false
	for _, col := range proteinRefColumns {
		if f.HasColumn(col) {
			hasRef = true
			break
		}
	}
	if !hasRef {
		missing = append(missing, "one of "+strings.Join(proteinRefColumns, "/"))
	}
	if len(missing) > 0 {
		return missingColumnsError(missing)
	}
	return nil
}

// resolveComplexes löst die Protein-Referenzen jeder Zeile auf.
// Zeilen ohne Schlüssel oder mit mindestens einer unbekannten Referenz sind unvollständig.
func resolveComplexes(f *Frame, proteins map[string]uint) (accepted []entry, incomplete []Record) {
	for _, rec := range f.Records {
		key, ok := rec.Get(colUniprot)
		if !ok {
			incomplete = append(incomplete, rec)
			continue
		}
		var members []uint
		missing := false
		for _, col := range proteinRefColumns {
			ref, ok := rec.Get(col)
			if !ok {
				continue
			}
			id, found := proteins[normalizeKey(ref)]
			if !found {
				missing = true
				break
			}
			members = append(members, id)
		}
		if missing {
			incomplete = append(incomplete, rec)
			continue
		}
		accepted = append(accepted, entry{Record: rec, Key: normalizeKey(key), Members: members})
	}
	return accepted, incomplete
}

// isUnstoredComplexColumn erkennt Spalten, die nicht in multidata landen.
func isUnstoredComplexColumn(col string) bool {
	return strings.Contains(col, "protein_") ||
		strings.Contains(col, "Name_") ||
		strings.Contains(col, "Unnamed")
}

// complexRows baut Composition- und Registry-Zeilen für neu eingefügte Komplexe.
func complexRows(fresh []entry, ids map[string]uint) ([]models.ComplexComposition, []models.Complex) {
	var compositions []models.ComplexComposition
	registry := make([]models.Complex, 0, len(fresh))
	for _, e := range fresh {
		complexID := ids[e.Key]
		for _, proteinID := range e.Members {
			compositions = append(compositions, models.ComplexComposition{
				ComplexMultidataID: complexID,
				ProteinMultidataID: proteinID,
			})
		}
		registry = append(registry, models.Complex{ComplexMultidataID: complexID})
	}
	return compositions, registry
}
