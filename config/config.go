package config

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	// postgres oder sqlite
	DBDriver      string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost        string `envconfig:"DB_HOST" default:"localhost"`
	DBPort        int    `envconfig:"DB_PORT" default:"5432"`
	DBUser        string `envconfig:"DB_USER"`
	DBPassword    string `envconfig:"DB_PASSWORD"`
	DBName        string `envconfig:"DB_NAME" default:"cellcommdb"`
	DBSSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"cellcommdb.db"`
	DBAutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`
	Debug        bool   `envconfig:"DEBUG" default:"false"`

	// Eingabedateien; leere Pfade fallen auf DataDir zurück
	DataDir     string `envconfig:"DATA_DIR" default:"data"`
	ComplexFile string `envconfig:"COMPLEX_FILE"`
	ProteinFile string `envconfig:"PROTEIN_FILE"`

	BatchSize    int    `envconfig:"COLLECT_BATCH_SIZE" default:"500"`
	CronSchedule string `envconfig:"COLLECT_CRON_SCHEDULE"`

	// S3-kompatibler Speicher für s3://-Eingaben, optional
	S3Key    string `envconfig:"S3_KEY"`
	S3Secret string `envconfig:"S3_SECRET"`
	S3URL    string `envconfig:"S3_URL"`
	S3Region string `envconfig:"S3_REGION" default:"us-east-1"`

	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// ComplexPath liefert die Complex-CSV, die ohne expliziten Pfad geladen wird.
func (c *Config) ComplexPath() string {
	if c.ComplexFile != "" {
		return c.ComplexFile
	}
	return filepath.Join(c.DataDir, "complex.csv")
}

// ProteinPath liefert die Protein-CSV, die ohne expliziten Pfad geladen wird.
func (c *Config) ProteinPath() string {
	if c.ProteinFile != "" {
		return c.ProteinFile
	}
	return filepath.Join(c.DataDir, "protein.csv")
}

// Validate prüft Kombinationen, die envconfig allein nicht ausdrücken kann.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.DBUser == "" || c.DBPassword == "" {
			return fmt.Errorf("DB_USER and DB_PASSWORD are required for driver postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for driver sqlite")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q (expected postgres or sqlite)", c.DBDriver)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("COLLECT_BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	return nil
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
