// Package storage provides the device key-value capability the stores persist
// their snapshots through.
package storage

import (
	"context"
	"fmt"
	"strings"
)

const (
	// ChatStorageKey holds the serialized chat store snapshot.
	ChatStorageKey = "chat-storage"
	// SettingsStorageKey holds the serialized settings store snapshot.
	SettingsStorageKey = "settings-storage"
)

// Storage is a string key-value store.
type Storage interface {
	// GetItem returns the stored value and whether the key exists.
	GetItem(ctx context.Context, key string) (string, bool, error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error

	// Close releases the underlying connection.
	Close() error
}

// Type represents the storage backend kind.
type Type string

const (
	TypeMemory Type = "memory"
	TypeSQLite Type = "sqlite"
	TypeRedis  Type = "redis"
)

// ParseType normalises a backend name from configuration.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case "", TypeSQLite:
		return TypeSQLite, nil
	case TypeMemory:
		return TypeMemory, nil
	case TypeRedis:
		return TypeRedis, nil
	default:
		return "", fmt.Errorf("unsupported storage backend: %s", s)
	}
}
