package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/GBurchell27/Dynamic-subdomains/internal/model"
	"github.com/GBurchell27/Dynamic-subdomains/pkg/config"
)

// Connect opens the PostgreSQL connection, tunes the pool, and migrates
// the schema.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	// Disable implicit prepared statement usage to avoid "prepared
	// statement already exists" errors behind connection poolers.
	pgConfig := postgres.Config{
		DSN:                  cfg.DB.GetDSN(),
		PreferSimpleProtocol: true,
	}

	db, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.DB.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("database: connecting: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: acquiring connection pool: %w", err)
	}

	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}
	if cfg.DB.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}

	if err := db.AutoMigrate(
		&model.Tenant{},
		&model.User{},
		&model.MarketingData{},
		&model.Analysis{},
	); err != nil {
		return nil, fmt.Errorf("database: migrating: %w", err)
	}

	return db, nil
}
