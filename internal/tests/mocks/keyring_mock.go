package mocks

import "github.com/99designs/keyring"

// KeyringMock wraps an in-memory keyring and lets tests override Set and
// Remove.
type KeyringMock struct {
	keyring.Keyring

	SetFunc    func(item keyring.Item) error
	RemoveFunc func(key string) error
}

func NewKeyringMock() *KeyringMock {
	return &KeyringMock{Keyring: keyring.NewArrayKeyring(nil)}
}

func (m *KeyringMock) Set(item keyring.Item) error {
	if m.SetFunc != nil {
		return m.SetFunc(item)
	}
	return m.Keyring.Set(item)
}

func (m *KeyringMock) Remove(key string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(key)
	}
	return m.Keyring.Remove(key)
}
