package storage

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ericogr/elemental-cards/internal/logging"
	"github.com/ericogr/elemental-cards/internal/progression"
)

// OpenAndMigrate opens the sqlite database and keeps the schema current via
// AutoMigrate.
func OpenAndMigrate(dataSourceName string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	err = db.AutoMigrate(&progression.CardProgression{}, &InventoryItem{}, &MatchResult{})
	if err != nil {
		return nil, err
	}
	if execErr := db.Exec("CREATE INDEX IF NOT EXISTS idx_card_progressions_owner_card ON card_progressions(owner_id, card_id);").Error; execErr != nil {
		return nil, execErr
	}
	logging.Debug("database migrated", logging.Fields{"dsn": dataSourceName})
	return db, nil
}
