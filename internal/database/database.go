package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"llmchat/internal/models"
)

// Config holds DB configuration
type Config struct {
	Path     string
	LogLevel logger.LogLevel
}

// Init opens a SQLite DB and runs migrations
func Init(cfg Config) (*gorm.DB, error) {
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Warn
	}
	if strings.TrimSpace(cfg.Path) == "" {
		cfg.Path = GetDefaultDBPath()
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON", cfg.Path)

	gormLogger := logger.New(
		loggerWriter{logger: log.Logger.With().Str("component", "gorm").Logger()},
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  cfg.LogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A single connection avoids "database is locked" with concurrent writers.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// migrate runs all automigrations. Keep the model list in one place.
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.StorageEntry{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// loggerWriter satisfies gorm's logger.Writer and forwards to zerolog.
type loggerWriter struct {
	logger zerolog.Logger
}

func (w loggerWriter) Printf(format string, args ...interface{}) {
	w.logger.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
