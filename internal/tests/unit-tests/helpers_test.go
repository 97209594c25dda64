package unit_tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"llmchat/internal/llm/client"
	"llmchat/internal/models"
	"llmchat/internal/services"
	"llmchat/internal/storage"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func testProvider(id string, modelIDs ...string) models.ProviderConfig {
	cfg := models.ProviderConfig{
		Provider: models.Provider{ID: id, Name: id},
		APIKey:   "key-" + id,
	}
	for _, m := range modelIDs {
		cfg.SupportedModels = append(cfg.SupportedModels, models.Model{
			ID:           m,
			Name:         m,
			Capabilities: models.ModelCapabilities{Chat: true},
		})
	}
	return cfg
}

// newHarness wires real stores over in-memory storage with a fixed adapter.
func newHarness(t *testing.T, adapter client.Provider) *services.Services {
	t.Helper()
	svc := services.NewServices(storage.NewMemory(), nil, func(context.Context, models.ProviderConfig) (client.Provider, error) {
		return adapter, nil
	})
	require.NoError(t, svc.Settings.AddProvider(testProvider("openai", "gpt-4o-mini", "gpt-4o")))
	return svc
}
