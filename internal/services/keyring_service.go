package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "llmchat"

// KeyringOptions selects the secret backend. An empty Backend lets the
// library pick the platform default.
type KeyringOptions struct {
	Backend  string
	FileDir  string
	Password string
}

// OpenKeyring opens the OS secret store used for provider API keys.
func OpenKeyring(opts KeyringOptions) (keyring.Keyring, error) {
	cfg := keyring.Config{
		ServiceName:              serviceName,
		KeychainTrustApplication: true,
		FileDir:                  opts.FileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(opts.Password),
	}
	if backend := strings.TrimSpace(opts.Backend); backend != "" {
		cfg.AllowedBackends = []keyring.BackendType{keyring.BackendType(backend)}
	}
	return keyring.Open(cfg)
}

type KeyringService struct {
	ring keyring.Keyring
}

func NewKeyringService(ring keyring.Keyring) *KeyringService {
	return &KeyringService{ring: ring}
}

func (s *KeyringService) StoreApiKey(provider string, apiKey []byte) error {
	if len(apiKey) == 0 {
		return errors.New("API key is empty")
	}
	if provider == "" {
		return errors.New("provider is required")
	}

	return s.ring.Set(keyring.Item{
		Key:         provider,
		Data:        apiKey,
		Label:       provider + " API key",
		Description: "API key for " + provider + " used by llmchat",
	})
}

// GetApiKey returns keyring.ErrKeyNotFound when no key is stored.
func (s *KeyringService) GetApiKey(provider string) (string, error) {
	if provider == "" {
		return "", errors.New("provider is required")
	}
	item, err := s.ring.Get(provider)
	if err != nil {
		return "", err
	}
	return string(item.Data), nil
}

// DeleteApiKey removes the stored key. Deleting a missing key succeeds.
func (s *KeyringService) DeleteApiKey(provider string) error {
	if provider == "" {
		return errors.New("provider is required")
	}

	err := s.ring.Remove(provider)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// ListApiKeys returns the sorted ids of providers that have a key stored.
func (s *KeyringService) ListApiKeys() ([]string, error) {
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, err
	}

	providers := make([]string, 0, len(keys))
	for _, provider := range keys {
		if _, err := s.ring.Get(provider); err != nil {
			continue
		}
		providers = append(providers, provider)
	}
	sort.Strings(providers)
	return providers, nil
}
