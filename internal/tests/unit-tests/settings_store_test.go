package unit_tests

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmchat/internal/events"
	"llmchat/internal/models"
	"llmchat/internal/services"
	"llmchat/internal/storage"
	"llmchat/internal/tests/mocks"
)

func TestSettingsStore_FirstProviderBecomesDefault(t *testing.T) {
	store := services.NewSettingsStore(storage.NewMemory(), nil)

	require.NoError(t, store.AddProvider(testProvider("openai", "gpt-4o-mini", "gpt-4o")))
	require.NoError(t, store.AddProvider(testProvider("anthropic", "claude-3-5-haiku-latest")))

	provider, model, ok := store.DefaultSelection()
	require.True(t, ok)
	assert.Equal(t, "openai", provider.ID)
	assert.Equal(t, "gpt-4o-mini", model.ID)
	assert.Equal(t, "openai", model.Provider)
	assert.Len(t, store.Providers(), 2)
}

func TestSettingsStore_AddProvider_Validation(t *testing.T) {
	store := services.NewSettingsStore(storage.NewMemory(), nil)
	require.NoError(t, store.AddProvider(testProvider("openai", "gpt-4o")))

	err := store.AddProvider(testProvider("openai", "gpt-4o"))
	assert.ErrorIs(t, err, services.ErrProviderExists)

	err = store.AddProvider(testProvider("  ", "gpt-4o"))
	assert.EqualError(t, err, "provider id is required")
}

func TestSettingsStore_RemoveDefaultProviderDegradesGracefully(t *testing.T) {
	store := services.NewSettingsStore(storage.NewMemory(), nil)
	require.NoError(t, store.AddProvider(testProvider("openai", "gpt-4o")))
	require.NoError(t, store.AddProvider(testProvider("anthropic", "claude-3-5-haiku-latest")))

	require.NoError(t, store.RemoveProvider("openai"))

	assert.NotPanics(t, func() {
		_, _, ok := store.DefaultSelection()
		assert.False(t, ok)
	})
	snap := store.Snapshot()
	assert.Empty(t, snap.DefaultProviderID)
	assert.Empty(t, snap.DefaultModelID)

	assert.ErrorIs(t, store.RemoveProvider("openai"), services.ErrProviderNotFound)
}

func TestSettingsStore_SetDefaultProviderUsesFirstModel(t *testing.T) {
	store := services.NewSettingsStore(storage.NewMemory(), nil)
	require.NoError(t, store.AddProvider(testProvider("openai", "gpt-4o")))
	require.NoError(t, store.AddProvider(testProvider("anthropic", "claude-3-5-sonnet-latest", "claude-3-5-haiku-latest")))

	require.NoError(t, store.SetDefaultProvider("anthropic"))

	provider, model, ok := store.DefaultSelection()
	require.True(t, ok)
	assert.Equal(t, "anthropic", provider.ID)
	assert.Equal(t, "claude-3-5-sonnet-latest", model.ID)

	assert.ErrorIs(t, store.SetDefaultProvider("missing"), services.ErrProviderNotFound)
}

func TestSettingsStore_SetDefaultModel(t *testing.T) {
	store := services.NewSettingsStore(storage.NewMemory(), nil)
	assert.ErrorIs(t, store.SetDefaultModel("gpt-4o"), services.ErrNoProviderConfigured)

	require.NoError(t, store.AddProvider(testProvider("openai", "gpt-4o-mini", "gpt-4o")))
	require.NoError(t, store.SetDefaultModel("gpt-4o"))

	_, model, ok := store.DefaultSelection()
	require.True(t, ok)
	assert.Equal(t, "gpt-4o", model.ID)

	assert.ErrorIs(t, store.SetDefaultModel("claude-3-5-haiku-latest"), services.ErrModelNotFound)
}

func TestSettingsStore_SelectModelSwitchesProvider(t *testing.T) {
	store := services.NewSettingsStore(storage.NewMemory(), nil)
	require.NoError(t, store.AddProvider(testProvider("openai", "gpt-4o")))
	require.NoError(t, store.AddProvider(testProvider("anthropic", "claude-3-5-sonnet-latest", "claude-3-5-haiku-latest")))

	require.NoError(t, store.SelectModel("claude-3-5-haiku-latest"))

	provider, model, ok := store.DefaultSelection()
	require.True(t, ok)
	assert.Equal(t, "anthropic", provider.ID)
	assert.Equal(t, "claude-3-5-haiku-latest", model.ID)

	assert.ErrorIs(t, store.SelectModel("missing"), services.ErrModelNotFound)
}

func TestSettingsStore_UpdateProvider_Partial(t *testing.T) {
	store := services.NewSettingsStore(storage.NewMemory(), nil)
	require.NoError(t, store.AddProvider(testProvider("openai", "gpt-4o-mini", "gpt-4o")))
	require.NoError(t, store.SetDefaultModel("gpt-4o"))

	require.NoError(t, store.UpdateProvider("openai", services.ProviderUpdate{
		Name:    strPtr("OpenAI (work)"),
		APIBase: strPtr(" https://proxy.local/v1 "),
	}))

	p, ok := store.Provider("openai")
	require.True(t, ok)
	assert.Equal(t, "OpenAI (work)", p.Name)
	assert.Equal(t, "https://proxy.local/v1", p.ResolvedAPIBase())
	assert.Equal(t, "key-openai", p.APIKey)
	assert.Len(t, p.SupportedModels, 2)

	assert.ErrorIs(t, store.UpdateProvider("missing", services.ProviderUpdate{}), services.ErrProviderNotFound)
}

func TestSettingsStore_UpdateProvider_ResetsDanglingDefaultModel(t *testing.T) {
	store := services.NewSettingsStore(storage.NewMemory(), nil)
	require.NoError(t, store.AddProvider(testProvider("openai", "gpt-4o-mini", "gpt-4o")))
	require.NoError(t, store.SetDefaultModel("gpt-4o"))

	require.NoError(t, store.UpdateProvider("openai", services.ProviderUpdate{
		SupportedModels: []models.Model{{ID: "o3-mini", Name: "o3-mini"}},
	}))

	_, model, ok := store.DefaultSelection()
	require.True(t, ok)
	assert.Equal(t, "o3-mini", model.ID)
	assert.Equal(t, "openai", model.Provider)
}

func TestSettingsStore_ReturnsCopies(t *testing.T) {
	store := services.NewSettingsStore(storage.NewMemory(), nil)
	require.NoError(t, store.AddProvider(testProvider("openai", "gpt-4o")))

	p, _ := store.Provider("openai")
	p.SupportedModels[0].ID = "mutated"

	again, _ := store.Provider("openai")
	assert.Equal(t, "gpt-4o", again.SupportedModels[0].ID)
}

func TestSettingsStore_PersistsKeysWithoutKeyring(t *testing.T) {
	mem := storage.NewMemory()
	first := services.NewSettingsStore(mem, nil)
	require.NoError(t, first.AddProvider(testProvider("openai", "gpt-4o")))

	second := services.NewSettingsStore(mem, nil)
	require.NoError(t, second.Load(context.Background()))

	p, ok := second.Provider("openai")
	require.True(t, ok)
	assert.Equal(t, "key-openai", p.APIKey)
	_, model, ok := second.DefaultSelection()
	require.True(t, ok)
	assert.Equal(t, "gpt-4o", model.ID)
}

func TestSettingsStore_KeyringKeepsKeysOutOfStorage(t *testing.T) {
	mem := storage.NewMemory()
	ring := keyring.NewArrayKeyring(nil)
	first := services.NewSettingsStore(mem, services.NewKeyringService(ring))
	require.NoError(t, first.AddProvider(testProvider("openai", "gpt-4o")))

	raw, ok, err := mem.GetItem(context.Background(), storage.SettingsStorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, raw, "key-openai")

	var env struct {
		State   models.SettingsState `json:"state"`
		Version int                  `json:"version"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	assert.Equal(t, "openai", env.State.DefaultProviderID)

	item, err := ring.Get("openai")
	require.NoError(t, err)
	assert.Equal(t, "key-openai", string(item.Data))

	second := services.NewSettingsStore(mem, services.NewKeyringService(ring))
	require.NoError(t, second.Load(context.Background()))
	p, ok := second.Provider("openai")
	require.True(t, ok)
	assert.Equal(t, "key-openai", p.APIKey)

	require.NoError(t, second.RemoveProvider("openai"))
	_, err = ring.Get("openai")
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)
}

func TestSettingsStore_AddProvider_KeyringFailureKeepsStateUnchanged(t *testing.T) {
	mem := storage.NewMemory()
	ring := mocks.NewKeyringMock()
	ring.SetFunc = func(keyring.Item) error { return errors.New("keychain locked") }
	store := services.NewSettingsStore(mem, services.NewKeyringService(ring))

	err := store.AddProvider(testProvider("openai", "gpt-4o"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "keychain locked")
	assert.Empty(t, store.Providers())
	_, _, ok := store.DefaultSelection()
	assert.False(t, ok)

	reloaded := services.NewSettingsStore(mem, services.NewKeyringService(ring))
	require.NoError(t, reloaded.Load(context.Background()))
	assert.Empty(t, reloaded.Providers())
}

func TestSettingsStore_UpdateProvider_KeyringFailureKeepsOldKey(t *testing.T) {
	mem := storage.NewMemory()
	ring := mocks.NewKeyringMock()
	store := services.NewSettingsStore(mem, services.NewKeyringService(ring))
	require.NoError(t, store.AddProvider(testProvider("openai", "gpt-4o")))

	ring.SetFunc = func(keyring.Item) error { return errors.New("keychain locked") }
	err := store.UpdateProvider("openai", services.ProviderUpdate{
		Name:   strPtr("Renamed"),
		APIKey: strPtr("sk-new"),
	})
	require.Error(t, err)

	p, ok := store.Provider("openai")
	require.True(t, ok)
	assert.Equal(t, "key-openai", p.APIKey)
	assert.Equal(t, "openai", p.Name)

	reloaded := services.NewSettingsStore(mem, services.NewKeyringService(ring))
	require.NoError(t, reloaded.Load(context.Background()))
	p, ok = reloaded.Provider("openai")
	require.True(t, ok)
	assert.Equal(t, "key-openai", p.APIKey)
}

func TestSettingsStore_SubscriberCanReadStoreDuringEmit(t *testing.T) {
	store := services.NewSettingsStore(storage.NewMemory(), nil)

	changes := 0
	events.SetCustomEmitter(func(_ context.Context, evt events.ChatEvent) {
		if evt.Type != events.SettingsChanged {
			return
		}
		store.Snapshot()
		store.DefaultSelection()
		changes++
	})
	t.Cleanup(func() { events.SetCustomEmitter(nil) })

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = store.AddProvider(testProvider("openai", "gpt-4o-mini", "gpt-4o"))
		_ = store.SetDefaultModel("gpt-4o")
		_ = store.RemoveProvider("openai")
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("settings mutation blocked while emitting")
	}
	assert.Equal(t, 3, changes)
}

func TestPresetProviders(t *testing.T) {
	presets, err := services.PresetProviders()
	require.NoError(t, err)

	ids := make([]string, 0, len(presets))
	for _, p := range presets {
		ids = append(ids, p.ID)
		for _, m := range p.SupportedModels {
			assert.Equal(t, p.ID, m.Provider)
		}
	}
	assert.ElementsMatch(t, []string{"openai", "anthropic", "gemini"}, ids)

	openai, ok := services.PresetProvider("openai")
	require.True(t, ok)
	cfg := models.ProviderConfig{Provider: openai}
	dalle, ok := cfg.FindModel("dall-e-3")
	require.True(t, ok)
	assert.True(t, dalle.Capabilities.ImageGeneration)
	assert.False(t, dalle.Capabilities.Chat)

	_, ok = services.PresetProvider("made-up-vendor")
	assert.False(t, ok)
}
