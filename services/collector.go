package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cellcommdb/config"
	"cellcommdb/models"
	"cellcommdb/storage"
)

// ErrMissingColumns meldet, dass der Eingabedatei Pflichtspalten fehlen.
var ErrMissingColumns = errors.New("missing required columns")

// ErrInvalidFlag meldet einen Flag-Wert, der sich nicht als Boolean lesen lässt.
var ErrInvalidFlag = errors.New("invalid flag value")

const colUniprot = "uniprot"

// LoadResult fasst einen Import-Lauf zusammen.
type LoadResult struct {
	RunID        string `json:"run_id"`
	File         string `json:"file"`
	RowsRead     int    `json:"rows_read"`
	Incomplete   int    `json:"incomplete"`
	Existing     int    `json:"existing"`
	Duplicates   int    `json:"duplicates"`
	Inserted     int    `json:"inserted"`
	Complexes    int    `json:"complexes"`
	Compositions int    `json:"compositions"`
	Proteins     int    `json:"proteins"`
}

// CollectService lädt CSV-Sammlungen in die Datenbank.
type CollectService struct {
	Config  *config.Config
	DB      *gorm.DB
	Sources *storage.Sources
	Logger  *zap.Logger
	Metrics *Metrics

	// Läufe werden serialisiert, damit Cron und API sich nicht überlappen.
	mu sync.Mutex
}

// NewCollectService erstellt eine neue Instanz des CollectService.
func NewCollectService(cfg *config.Config, db *gorm.DB, sources *storage.Sources, logger *zap.Logger, metrics *Metrics) *CollectService {
	if sources == nil {
		sources = storage.NewSources(nil)
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &CollectService{
		Config:  cfg,
		DB:      db,
		Sources: sources,
		Logger:  logger,
		Metrics: metrics,
	}
}

// entry ist eine übernommene Zeile mit ihrem externen Schlüssel.
type entry struct {
	Record  Record
	Key     string
	Members []uint
}

type keyID struct {
	Uniprot string
	ID      uint
}

// run kapselt Logging, Metriken und Serialisierung eines Import-Laufs.
func (s *CollectService) run(ctx context.Context, collection, file string, load func(context.Context, *LoadResult, *zap.Logger) error) (*LoadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := &LoadResult{RunID: uuid.NewString(), File: file}
	log := s.Logger.With(
		zap.String("run_id", res.RunID),
		zap.String("collection", collection),
		zap.String("file", file),
	)
	log.Info("Starte Import.")

	err := load(ctx, res, log)
	s.Metrics.run(collection, err)
	if err != nil {
		log.Error("Import fehlgeschlagen", zap.Error(err))
		return nil, err
	}
	s.Metrics.observe(collection, res)
	log.Info("Import abgeschlossen",
		zap.Int("rows_read", res.RowsRead),
		zap.Int("incomplete", res.Incomplete),
		zap.Int("existing", res.Existing),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("inserted", res.Inserted),
		zap.Int("complexes", res.Complexes),
		zap.Int("compositions", res.Compositions),
		zap.Int("proteins", res.Proteins),
	)
	return res, nil
}

// readFrame öffnet und parst die Eingabedatei.
func (s *CollectService) readFrame(ctx context.Context, file string) (*Frame, error) {
	rc, err := s.Sources.Open(ctx, file)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	frame, err := ReadFrame(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return frame, nil
}

// existingKeys lädt alle vorhandenen Multidata-Schlüssel.
func (s *CollectService) existingKeys(ctx context.Context) (map[string]struct{}, error) {
	var keys []string
	if err := s.DB.WithContext(ctx).Model(&models.Multidata{}).Pluck("uniprot", &keys).Error; err != nil {
		return nil, fmt.Errorf("query existing multidata keys: %w", err)
	}
	out := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		out[normalizeKey(k)] = struct{}{}
	}
	return out, nil
}

// proteinIDs bildet externe Protein-Schlüssel auf Multidata-IDs ab.
func (s *CollectService) proteinIDs(ctx context.Context) (map[string]uint, error) {
	var rows []keyID
	err := s.DB.WithContext(ctx).
		Model(&models.Multidata{}).
		Select("multidata.uniprot, multidata.id").
		Joins("JOIN protein ON protein.protein_multidata_id = multidata.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query protein ids: %w", err)
	}
	out := make(map[string]uint, len(rows))
	for _, r := range rows {
		out[normalizeKey(r.Uniprot)] = r.ID
	}
	return out, nil
}

// idsFor lädt die Multidata-IDs zu den gegebenen Schlüsseln, blockweise.
func (s *CollectService) idsFor(ctx context.Context, keys []string) (map[string]uint, error) {
	out := make(map[string]uint, len(keys))
	for start := 0; start < len(keys); start += s.Config.BatchSize {
		end := min(start+s.Config.BatchSize, len(keys))
		var rows []keyID
		err := s.DB.WithContext(ctx).
			Model(&models.Multidata{}).
			Select("uniprot, id").
			Where("uniprot IN ?", keys[start:end]).
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("query new multidata ids: %w", err)
		}
		for _, r := range rows {
			out[r.Uniprot] = r.ID
		}
	}
	return out, nil
}

// splitNew trennt neue Einträge von bereits gespeicherten und von Wiederholungen in der Datei.
// Bei Wiederholungen gewinnt das erste Vorkommen.
func splitNew(entries []entry, existing map[string]struct{}) (fresh []entry, existingCount, duplicates int) {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := existing[e.Key]; ok {
			existingCount++
			continue
		}
		if _, ok := seen[e.Key]; ok {
			duplicates++
			continue
		}
		seen[e.Key] = struct{}{}
		fresh = append(fresh, e)
	}
	return fresh, existingCount, duplicates
}

// buildMultidata übersetzt eine Zeile in einen Multidata-Datensatz.
// Flags werden zu Booleans, bekannte Spalten zu Feldern, alles andere landet in Metadata.
func buildMultidata(e entry, columns []string) (models.Multidata, error) {
	m := models.Multidata{Uniprot: e.Key}
	for _, col := range columns {
		if col == colUniprot {
			continue
		}
		v, ok := e.Record.Get(col)
		if isFlagColumn(col) {
			if !ok {
				continue
			}
			b, err := parseFlag(v)
			if err != nil {
				return m, fmt.Errorf("%w: line %d, column %s: %v", ErrInvalidFlag, e.Record.Line, col, err)
			}
			m.SetFlag(col, b)
			continue
		}
		if !ok {
			continue
		}
		if m.SetField(col, v) {
			continue
		}
		if m.Metadata == nil {
			m.Metadata = map[string]interface{}{}
		}
		m.Metadata[col] = v
	}
	return m, nil
}

func isFlagColumn(col string) bool {
	for _, f := range models.FlagColumns {
		if f == col {
			return true
		}
	}
	return false
}

// insertNew schreibt die neuen Multidata-Zeilen und liefert ihre IDs nach Schlüssel.
func (s *CollectService) insertNew(ctx context.Context, fresh []entry, columns []string) (map[string]uint, error) {
	rows := make([]models.Multidata, 0, len(fresh))
	for _, e := range fresh {
		m, err := buildMultidata(e, columns)
		if err != nil {
			return nil, err
		}
		rows = append(rows, m)
	}
	if len(rows) == 0 {
		return map[string]uint{}, nil
	}
	if err := s.DB.WithContext(ctx).CreateInBatches(&rows, s.Config.BatchSize).Error; err != nil {
		return nil, fmt.Errorf("insert multidata: %w", err)
	}

	keys := make([]string, len(fresh))
	for i, e := range fresh {
		keys[i] = e.Key
	}
	ids, err := s.idsFor(ctx, keys)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if _, ok := ids[k]; !ok {
			return nil, fmt.Errorf("multidata row for %q not found after insert", k)
		}
	}
	return ids, nil
}

func missingColumnsError(missing []string) error {
	return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
}
