package mocks

import (
	"context"
)

type StorageMock struct {
	GetItemFunc    func(ctx context.Context, key string) (string, bool, error)
	SetItemFunc    func(ctx context.Context, key, value string) error
	RemoveItemFunc func(ctx context.Context, key string) error
}

func (m *StorageMock) GetItem(ctx context.Context, key string) (string, bool, error) {
	if m.GetItemFunc != nil {
		return m.GetItemFunc(ctx, key)
	}
	return "", false, nil
}

func (m *StorageMock) SetItem(ctx context.Context, key, value string) error {
	if m.SetItemFunc != nil {
		return m.SetItemFunc(ctx, key, value)
	}
	return nil
}

func (m *StorageMock) RemoveItem(ctx context.Context, key string) error {
	if m.RemoveItemFunc != nil {
		return m.RemoveItemFunc(ctx, key)
	}
	return nil
}

func (m *StorageMock) Close() error {
	return nil
}
