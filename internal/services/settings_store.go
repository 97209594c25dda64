package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/99designs/keyring"
	"github.com/rs/zerolog/log"

	"llmchat/internal/assets"
	"llmchat/internal/events"
	"llmchat/internal/models"
	"llmchat/internal/storage"
)

// ProviderUpdate is a partial update; nil fields are left unchanged.
type ProviderUpdate struct {
	Name            *string
	APIKey          *string
	APIBase         *string
	DefaultModel    *string
	SupportedModels []models.Model
}

// SettingsStore owns the configured providers and the default selection.
// When a keyring is attached, API keys live there and never reach the
// persisted snapshot.
type SettingsStore struct {
	context context.Context
	storage storage.Storage
	keys    *KeyringService

	mu    sync.RWMutex
	state models.SettingsState
}

func NewSettingsStore(st storage.Storage, keys *KeyringService) *SettingsStore {
	if st == nil {
		st = storage.NewMemory()
	}
	return &SettingsStore{
		context: context.Background(),
		storage: st,
		keys:    keys,
	}
}

// Load rehydrates the store from the settings-storage slot and restores API
// keys from the keyring.
func (s *SettingsStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context = ctx

	state, _, found, err := loadState[models.SettingsState](ctx, s.storage, storage.SettingsStorageKey)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	if s.keys != nil {
		for i := range state.Providers {
			p := &state.Providers[i]
			if p.APIKey != "" {
				continue
			}
			key, err := s.keys.GetApiKey(p.ID)
			if err != nil {
				if !errors.Is(err, keyring.ErrKeyNotFound) {
					log.Warn().Err(err).Str("provider_id", p.ID).Msg("failed to read API key from keyring")
				}
				continue
			}
			p.APIKey = key
		}
	}
	s.state = state
	return nil
}

// AddProvider appends a provider. The first provider added becomes the
// default together with its first model. When a keyring is attached and the
// key cannot be stored there, nothing changes and the error is returned.
func (s *SettingsStore) AddProvider(cfg models.ProviderConfig) error {
	id := strings.TrimSpace(cfg.ID)
	if id == "" {
		return errors.New("provider id is required")
	}

	return s.update(func() error {
		if s.indexLocked(id) >= 0 {
			return fmt.Errorf("%w: %s", ErrProviderExists, id)
		}
		if err := s.storeKeyLocked(id, cfg.APIKey); err != nil {
			return err
		}

		cfg = cfg.Clone()
		cfg.ID = id
		if strings.TrimSpace(cfg.Name) == "" {
			cfg.Name = id
		}
		linkModels(&cfg)
		s.state.Providers = append(s.state.Providers, cfg)

		if s.state.DefaultProviderID == "" {
			s.state.DefaultProviderID = id
			s.state.DefaultModelID = cfg.FirstModelID()
		}
		return nil
	})
}

func (s *SettingsStore) UpdateProvider(id string, upd ProviderUpdate) error {
	return s.update(func() error {
		idx := s.indexLocked(id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrProviderNotFound, id)
		}
		if upd.APIKey != nil {
			if err := s.storeKeyLocked(id, *upd.APIKey); err != nil {
				return err
			}
		}

		p := &s.state.Providers[idx]
		if upd.Name != nil {
			p.Name = *upd.Name
		}
		if upd.APIBase != nil {
			p.APIBase = strings.TrimSpace(*upd.APIBase)
		}
		if upd.DefaultModel != nil {
			p.DefaultModel = *upd.DefaultModel
		}
		if upd.SupportedModels != nil {
			p.SupportedModels = make([]models.Model, len(upd.SupportedModels))
			copy(p.SupportedModels, upd.SupportedModels)
			linkModels(p)
		}
		if upd.APIKey != nil {
			p.APIKey = *upd.APIKey
		}

		// Keep the default model pointing at something this provider offers.
		if s.state.DefaultProviderID == id {
			if _, ok := p.FindModel(s.state.DefaultModelID); !ok {
				s.state.DefaultModelID = p.FirstModelID()
			}
		}
		return nil
	})
}

// RemoveProvider deletes a provider and clears the defaults when they
// pointed at it.
func (s *SettingsStore) RemoveProvider(id string) error {
	return s.update(func() error {
		idx := s.indexLocked(id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrProviderNotFound, id)
		}
		s.state.Providers = append(s.state.Providers[:idx], s.state.Providers[idx+1:]...)
		if s.state.DefaultProviderID == id {
			s.state.DefaultProviderID = ""
			s.state.DefaultModelID = ""
		}

		if s.keys != nil {
			if err := s.keys.DeleteApiKey(id); err != nil {
				log.Warn().Err(err).Str("provider_id", id).Msg("failed to delete API key from keyring")
			}
		}
		return nil
	})
}

// SetDefaultProvider selects a provider and resets the default model to its
// first model.
func (s *SettingsStore) SetDefaultProvider(id string) error {
	return s.update(func() error {
		idx := s.indexLocked(id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrProviderNotFound, id)
		}
		s.state.DefaultProviderID = id
		s.state.DefaultModelID = s.state.Providers[idx].FirstModelID()
		return nil
	})
}

// SetDefaultModel changes the model within the current default provider.
func (s *SettingsStore) SetDefaultModel(modelID string) error {
	return s.update(func() error {
		idx := s.indexLocked(s.state.DefaultProviderID)
		if idx < 0 {
			return ErrNoProviderConfigured
		}
		if _, ok := s.state.Providers[idx].FindModel(modelID); !ok {
			return fmt.Errorf("%w: %s", ErrModelNotFound, modelID)
		}
		s.state.DefaultModelID = modelID
		return nil
	})
}

// SelectModel makes modelID the default, switching to the first provider
// that offers it.
func (s *SettingsStore) SelectModel(modelID string) error {
	return s.update(func() error {
		for _, p := range s.state.Providers {
			if _, ok := p.FindModel(modelID); ok {
				s.state.DefaultProviderID = p.ID
				s.state.DefaultModelID = modelID
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrModelNotFound, modelID)
	})
}

// Provider returns a copy of the configured provider with the given id.
func (s *SettingsStore) Provider(id string) (models.ProviderConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return models.ProviderConfig{}, false
	}
	return s.state.Providers[idx].Clone(), true
}

func (s *SettingsStore) Providers() []models.ProviderConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProviders(s.state.Providers)
}

// Snapshot returns a copy of the whole state, API keys included.
func (s *SettingsStore) Snapshot() models.SettingsState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.state
	out.Providers = cloneProviders(s.state.Providers)
	return out
}

// DefaultSelection resolves the default provider and model by lookup. ok is
// false when either id is dangling.
func (s *SettingsStore) DefaultSelection() (models.ProviderConfig, models.Model, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(s.state.DefaultProviderID)
	if idx < 0 {
		return models.ProviderConfig{}, models.Model{}, false
	}
	p := s.state.Providers[idx]
	m, ok := p.FindModel(s.state.DefaultModelID)
	if !ok {
		return models.ProviderConfig{}, models.Model{}, false
	}
	return p.Clone(), *m, true
}

func (s *SettingsStore) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.state.Providers {
		if s.state.Providers[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *SettingsStore) storeKeyLocked(id, apiKey string) error {
	if s.keys == nil {
		return nil
	}
	var err error
	if apiKey == "" {
		err = s.keys.DeleteApiKey(id)
	} else {
		err = s.keys.StoreApiKey(id, []byte(apiKey))
	}
	if err != nil {
		return fmt.Errorf("failed to update API key for %s in keyring: %w", id, err)
	}
	return nil
}

// update applies fn under the write lock. On success the state is persisted
// and SettingsChanged is emitted once the lock is released.
func (s *SettingsStore) update(fn func() error) error {
	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.persistLocked()
	ctx := s.context
	s.mu.Unlock()

	events.Emit(ctx, events.NewChatEvent(events.SettingsChanged, ""))
	return nil
}

func (s *SettingsStore) persistLocked() {
	state := s.state
	state.Providers = cloneProviders(s.state.Providers)
	if s.keys != nil {
		for i := range state.Providers {
			state.Providers[i].APIKey = ""
		}
	}
	if err := saveState(s.context, s.storage, storage.SettingsStorageKey, state); err != nil {
		log.Error().Err(err).Str("component", "settings_store").Msg("failed to persist settings")
	}
}

func linkModels(p *models.ProviderConfig) {
	for i := range p.SupportedModels {
		if p.SupportedModels[i].Provider == "" {
			p.SupportedModels[i].Provider = p.ID
		}
	}
}

func cloneProviders(in []models.ProviderConfig) []models.ProviderConfig {
	out := make([]models.ProviderConfig, 0, len(in))
	for _, p := range in {
		out = append(out, p.Clone())
	}
	return out
}

type presetFile struct {
	Providers []models.Provider `json:"providers"`
}

// PresetProviders returns the built-in provider catalogue.
func PresetProviders() ([]models.Provider, error) {
	var parsed presetFile
	if err := json.Unmarshal(assets.ProvidersData, &parsed); err != nil {
		return nil, fmt.Errorf("parse providers asset: %w", err)
	}
	for i := range parsed.Providers {
		p := &parsed.Providers[i]
		for j := range p.SupportedModels {
			p.SupportedModels[j].Provider = p.ID
		}
	}
	return parsed.Providers, nil
}

// PresetProvider looks one catalogue entry up by id.
func PresetProvider(id string) (models.Provider, bool) {
	presets, err := PresetProviders()
	if err != nil {
		return models.Provider{}, false
	}
	for _, p := range presets {
		if p.ID == id {
			return p, true
		}
	}
	return models.Provider{}, false
}
