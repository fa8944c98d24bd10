package database

import (
	"fmt"

	"papertrade-go/internal/config"
	"papertrade-go/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDatabase creates a new database connection and performs auto-migration.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db, cfg); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates the schema and seeds the instrument catalog from config.
func AutoMigrate(db *gorm.DB, cfg *config.Config) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Instrument{},
		&models.KYCSubmission{},
		&models.LedgerEntry{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	// Populate the instrument catalog from the config. Existing rows keep
	// their current price so a quote refresh survives restarts.
	for _, inst := range cfg.Instruments {
		record := models.Instrument{
			Symbol: inst.Symbol,
			Name:   inst.Name,
			Price:  inst.Price,
			About:  inst.About,
			Logo:   inst.Logo,
		}
		if err := db.FirstOrCreate(&record, models.Instrument{Symbol: inst.Symbol}).Error; err != nil {
			return fmt.Errorf("failed to seed instrument '%s': %w", inst.Symbol, err)
		}
	}

	return nil
}
