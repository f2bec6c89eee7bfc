package database

import (
	"formcheck/internal/config"
	"formcheck/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB holds the database connection. It stays nil when no database is configured.
var DB *gorm.DB

// InitDB opens the Postgres connection named by cfg and migrates the ledger
// schema. An empty URI leaves DB nil.
func InitDB(cfg *config.Config) error {
	if cfg.PostgresURI == "" {
		return nil
	}
	db, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
	if err != nil {
		return err
	}
	if err := Migrate(db); err != nil {
		return err
	}
	DB = db
	return nil
}

// Migrate creates or updates the tables the receiver writes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.ReceivedVideo{})
}

// Close releases the underlying connection pool.
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
