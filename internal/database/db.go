package database

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/jimdaga/opportunity-finder/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to Postgres when databaseURL is set and applies migrations.
// Otherwise it opens the SQLite file at sqlitePath and auto-migrates it.
func Open(databaseURL, sqlitePath string, log *slog.Logger) (*gorm.DB, error) {
	if databaseURL != "" {
		db, err := Init(databaseURL)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(db, log); err != nil {
			_ = Close(db)
			return nil, err
		}
		return db, nil
	}

	log.Info("DATABASE_URL not set, using SQLite", "path", sqlitePath)
	db, err := InitSQLite(sqlitePath)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		_ = Close(db)
		return nil, err
	}
	return db, nil
}

// Init opens a pooled Postgres connection pinned to UTC
func Init(databaseURL string) (*gorm.DB, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL is required")
	}

	dsn, err := ensureTimezoneUTC(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := configurePool(db, 10, 5); err != nil {
		return nil, err
	}
	return db, nil
}

// InitSQLite opens a SQLite database for local development and tests.
// SQLite has a single writer, so the pool holds one connection.
func InitSQLite(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := configurePool(db, 1, 1); err != nil {
		return nil, err
	}
	return db, nil
}

func configurePool(db *gorm.DB, maxOpen, maxIdle int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return nil
}

// AutoMigrate creates or updates the schema from the models.
// Postgres deployments use RunMigrations instead.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Source{}, &models.RawCandidate{}, &models.Opportunity{}, &models.DailyReport{}); err != nil {
		return fmt.Errorf("failed to auto-migrate schema: %w", err)
	}
	return nil
}

// Ping checks that the database answers
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// Close closes the connection pool. A nil db is a no-op.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

// ensureTimezoneUTC adds TimeZone=UTC to the URL unless a zone is already set
func ensureTimezoneUTC(databaseURL string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	if q.Get("TimeZone") == "" {
		q.Set("TimeZone", "UTC")
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
