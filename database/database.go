package database

import (
	"fmt"
	"strings"

	"github.com/yeremiapane/restaurant-seating/storage"
	"github.com/yeremiapane/restaurant-seating/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Open connects to the relational store named by driver.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case DriverSQLite, "":
		if dsn == "" {
			dsn = "seating.db"
		}
		dialector = sqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return db, nil
}

// Migrate creates or updates the seating tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(storage.Models()...); err != nil {
		utils.ErrorLogger.Printf("Failed to AutoMigrate: %v", err)
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
