package storage

import (
	"fmt"

	"cellcommdb/config"
	"cellcommdb/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB öffnet die Datenbank des konfigurierten Treibers.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DBDriver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	return db, nil
}

// Migrate legt die Tabellen an, in die die Collector schreiben.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Multidata{},
		&models.Protein{},
		&models.Complex{},
		&models.ComplexComposition{},
	)
}
