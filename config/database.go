package config

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gritsee-inspector/internal/domain/entity"
)

var db *gorm.DB

func GetDB() *gorm.DB {
	return db
}

// ConnectDatabase opens the MySQL connection and migrates the inspections
// table. Call from main before building the container.
func ConnectDatabase(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}

	var err error
	db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(&entity.Inspection{}); err != nil {
		return fmt.Errorf("migrate inspections: %w", err)
	}

	return nil
}
