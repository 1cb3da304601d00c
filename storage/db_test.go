package storage

import (
	"path/filepath"
	"testing"

	"gotest.tools/assert"

	"cellcommdb/config"
	"cellcommdb/models"
)

func TestOpenDB_SQLiteAndMigrate(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "c.db")}
	db, err := OpenDB(cfg)
	assert.NilError(t, err)
	assert.NilError(t, Migrate(db))

	for _, table := range []interface{}{
		&models.Multidata{}, &models.Protein{}, &models.Complex{}, &models.ComplexComposition{},
	} {
		assert.Assert(t, db.Migrator().HasTable(table))
	}
	assert.Assert(t, db.Migrator().HasIndex(&models.Multidata{}, "Uniprot"))
}

func TestOpenDB_UnknownDriver(t *testing.T) {
	_, err := OpenDB(&config.Config{DBDriver: "oracle"})
	assert.ErrorContains(t, err, "unknown database driver")
}
