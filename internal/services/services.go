package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"llmchat/internal/storage"
)

// Services aggregates the stores and the orchestration built on them.
type Services struct {
	Keyring       *KeyringService
	Settings      *SettingsStore
	Chats         *ChatStore
	API           *APIClient
	Conversations *ConversationService
}

// NewServices wires the service container. keys may be nil, in which case
// API keys are persisted with the rest of the settings. A nil factory uses
// the built-in provider adapters.
func NewServices(st storage.Storage, keys *KeyringService, factory ProviderFactory) *Services {
	settings := NewSettingsStore(st, keys)
	chats := NewChatStore(st)
	api := NewAPIClient(settings, factory)

	return &Services{
		Keyring:       keys,
		Settings:      settings,
		Chats:         chats,
		API:           api,
		Conversations: NewConversationService(chats, settings, api),
	}
}

// Startup rehydrates both stores. A corrupt snapshot is logged and the store
// starts empty.
func (s *Services) Startup(ctx context.Context) {
	if err := s.Settings.Load(ctx); err != nil {
		log.Error().Err(err).Msg("failed to load settings")
	}
	if err := s.Chats.Load(ctx); err != nil {
		log.Error().Err(err).Msg("failed to load chats")
	}
}
