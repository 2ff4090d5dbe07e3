// Package database opens the GORM connection to PostgreSQL.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vantagecrm/api/internal/config"
)

// Connect builds the DSN from config and opens a GORM session with
// error-level SQL logging.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var sslMode string
	if cfg.DBSSLDisabled {
		sslMode = " sslmode=disable"
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, sslMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}
