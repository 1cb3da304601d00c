package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gotest.tools/assert"

	"cellcommdb/config"
	"cellcommdb/models"
	"cellcommdb/storage"
)

func newTestService(t *testing.T) *CollectService {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(dir, "test.db"),
		DataDir:    dir,
		BatchSize:  2,
	}
	db, err := storage.OpenDB(cfg)
	assert.NilError(t, err)
	assert.NilError(t, storage.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewCollectService(cfg, db, nil, zap.NewNop(), NewMetrics(prometheus.NewRegistry()))
}

// seedProtein legt ein Protein mit fester Multidata-ID an.
func seedProtein(t *testing.T, db *gorm.DB, id uint, uniprot string) {
	t.Helper()
	assert.NilError(t, db.Create(&models.Multidata{ID: id, Uniprot: uniprot}).Error)
	assert.NilError(t, db.Create(&models.Protein{ProteinMultidataID: id}).Error)
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NilError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	assert.NilError(t, db.Model(model).Count(&n).Error)
	return n
}
