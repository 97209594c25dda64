package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"llmchat/internal/repositories"
)

// SQLite stores values in the storage_entries table through gorm.
type SQLite struct {
	db   *gorm.DB
	repo repositories.StorageEntryRepository
}

// NewSQLite wraps an initialised database. The caller keeps ownership of db
// unless Close is called.
func NewSQLite(db *gorm.DB) *SQLite {
	return &SQLite{db: db, repo: repositories.NewStorageEntryRepository(db)}
}

func (s *SQLite) GetItem(ctx context.Context, key string) (string, bool, error) {
	entry, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	if entry == nil {
		return "", false, nil
	}
	return entry.Value, true, nil
}

func (s *SQLite) SetItem(ctx context.Context, key, value string) error {
	if _, err := s.repo.Upsert(ctx, key, value); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) RemoveItem(ctx context.Context, key string) error {
	if err := s.repo.DeleteByKey(ctx, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
