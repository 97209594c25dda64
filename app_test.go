package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmchat/internal/config"
	"llmchat/internal/llm/client"
	"llmchat/internal/models"
	"llmchat/internal/storage"
	"llmchat/internal/tests/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		Storage:   config.StorageConfig{Backend: "memory"},
		Keyring:   config.KeyringConfig{Backend: "none"},
		Providers: []config.ProviderEnv{{ID: "openai", APIKey: "sk-test"}},
	}
}

func runApp(t *testing.T, cfg *config.Config, adapter client.Provider, input string) (*App, string) {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	app := NewApp(cfg, strings.NewReader(input), &out)
	app.factory = func(context.Context, models.ProviderConfig) (client.Provider, error) {
		return adapter, nil
	}
	require.NoError(t, app.startup(context.Background()))
	t.Cleanup(app.shutdown)

	require.NoError(t, app.Run(context.Background()))
	return app, out.String()
}

func TestApp_SendStreamsReplyAndTitles(t *testing.T) {
	adapter := &mocks.ProviderMock{
		StreamCompletionFunc: func(ctx context.Context, req client.StreamRequest, onUpdate client.UpdateFunc) error {
			if req.Messages[0].Role == models.RoleSystem {
				return mocks.StreamChunks("Greeting")(ctx, req, onUpdate)
			}
			return mocks.StreamChunks("Hi", " there", "!")(ctx, req, onUpdate)
		},
	}

	app, out := runApp(t, testConfig(), adapter, "Hello\n/list\n/quit\n")

	assert.Contains(t, out, "Using OpenAI / GPT-4o mini")
	assert.Contains(t, out, "Assistant: Hi there!")
	assert.Contains(t, out, "[Greeting]")
	assert.Contains(t, out, "*  1. Greeting (2 messages)")

	chats := app.svc.Chats.ListChats()
	require.Len(t, chats, 1)
	assert.Equal(t, "Greeting", chats[0].Title)
}

func TestApp_Commands(t *testing.T) {
	adapter := &mocks.ProviderMock{}
	input := strings.Join([]string{
		"/new",
		"/new",
		"/list",
		"/switch 2",
		"/delete",
		"/list",
		"/model gpt-4o",
		"/image a cat",
		"/bogus",
		"/quit",
	}, "\n")

	app, out := runApp(t, testConfig(), adapter, input)

	assert.Contains(t, out, "Started a new conversation.")
	assert.Contains(t, out, "Conversation deleted.")
	assert.Contains(t, out, "* gpt-4o")
	assert.Contains(t, out, "The current provider cannot generate images.")
	assert.Contains(t, out, "Unknown command /bogus")
	// /delete cleared the current chat, so /image opened a fresh one.
	assert.Len(t, app.svc.Chats.ListChats(), 2)

	_, m, ok := app.svc.Settings.DefaultSelection()
	require.True(t, ok)
	assert.Equal(t, "gpt-4o", m.ID)
}

func TestApp_NoProviderConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.Providers = nil

	_, out := runApp(t, cfg, &mocks.ProviderMock{}, "Hello\n")

	assert.Contains(t, out, "No provider configured")
	assert.Contains(t, out, "Error: no provider configured")
}

func TestApp_RedisBackendPersistsAcrossRestarts(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Storage.Backend = "redis"
	cfg.Redis = config.RedisConfig{Host: mr.Host(), Port: mr.Port(), KeyPrefix: "test:"}

	adapter := &mocks.ProviderMock{StreamCompletionFunc: mocks.StreamChunks("ok")}
	runApp(t, cfg, adapter, "Hello\n")

	assert.True(t, mr.Exists("test:"+storage.ChatStorageKey))
	assert.True(t, mr.Exists("test:"+storage.SettingsStorageKey))

	second, _ := runApp(t, cfg, adapter, "")
	chats := second.svc.Chats.ListChats()
	require.Len(t, chats, 1)
	assert.Len(t, chats[0].Messages, 2)
}

func TestApp_ModelListingShowsKeyringEntries(t *testing.T) {
	cfg := testConfig()
	cfg.Keyring = config.KeyringConfig{Backend: "file", FileDir: t.TempDir(), Password: "test-password"}

	app, out := runApp(t, cfg, &mocks.ProviderMock{}, "/model\n/quit\n")

	require.NotNil(t, app.svc.Keyring)
	assert.Contains(t, out, "OpenAI (key in keyring)")
	key, err := app.svc.Keyring.GetApiKey("openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)

	p, ok := app.svc.Settings.Provider("openai")
	require.True(t, ok)
	assert.Equal(t, "sk-test", p.APIKey)
}

func TestOpenStorage_RejectsUnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Backend = "cassandra"

	_, err := openStorage(cfg)

	assert.EqualError(t, err, "unsupported storage backend: cassandra")
}

func TestOpenStorage_SQLite(t *testing.T) {
	cfg := testConfig()
	cfg.Storage = config.StorageConfig{Backend: "sqlite", DBPath: t.TempDir() + "/chat.db"}

	st, err := openStorage(cfg)
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.SetItem(context.Background(), storage.ChatStorageKey, "{}"))
	v, ok, err := st.GetItem(context.Background(), storage.ChatStorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{}", v)
}
