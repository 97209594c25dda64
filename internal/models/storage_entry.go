package models

import "time"

// StorageEntry persists one serialized store snapshot under a unique key.
type StorageEntry struct {
	ID        uint      `gorm:"primaryKey"`
	Key       string    `gorm:"column:storage_key;size:255;not null;uniqueIndex"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
