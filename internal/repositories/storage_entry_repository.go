package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"llmchat/internal/models"
)

type StorageEntryRepository interface {
	GetByKey(ctx context.Context, key string) (*models.StorageEntry, error)
	Upsert(ctx context.Context, key, value string) (*models.StorageEntry, error)
	DeleteByKey(ctx context.Context, key string) error
	ListKeys(ctx context.Context) ([]string, error)
}

type storageEntryRepository struct {
	db *gorm.DB
}

func NewStorageEntryRepository(db *gorm.DB) StorageEntryRepository {
	return &storageEntryRepository{db: db}
}

// GetByKey returns nil, nil when no entry exists for key.
func (r *storageEntryRepository) GetByKey(ctx context.Context, key string) (*models.StorageEntry, error) {
	if key == "" {
		return nil, fmt.Errorf("storage key is required")
	}
	var entry models.StorageEntry
	if err := r.db.WithContext(ctx).Where("storage_key = ?", key).Take(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *storageEntryRepository) Upsert(ctx context.Context, key, value string) (*models.StorageEntry, error) {
	if key == "" {
		return nil, fmt.Errorf("storage key is required")
	}
	record := models.StorageEntry{
		Key:   key,
		Value: value,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *storageEntryRepository) DeleteByKey(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("storage key is required")
	}
	return r.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&models.StorageEntry{}).Error
}

func (r *storageEntryRepository) ListKeys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := r.db.WithContext(ctx).Model(&models.StorageEntry{}).Order("storage_key").Pluck("storage_key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
