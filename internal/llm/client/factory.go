package client

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"llmchat/internal/models"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Constructor builds an adapter from a provider configuration. It must not
// perform network access.
type Constructor func(ctx context.Context, cfg models.ProviderConfig) (Provider, error)

var constructors = map[string]Constructor{
	ProviderOpenAI: func(ctx context.Context, cfg models.ProviderConfig) (Provider, error) {
		return NewOpenAIClient(ctx, cfg.APIKey, OpenAIOptions{BaseURL: cfg.ResolvedAPIBase()})
	},
	ProviderAnthropic: func(ctx context.Context, cfg models.ProviderConfig) (Provider, error) {
		return NewClaudeClient(ctx, cfg.APIKey, ClaudeOptions{BaseURL: cfg.ResolvedAPIBase()})
	},
	ProviderGemini: func(ctx context.Context, cfg models.ProviderConfig) (Provider, error) {
		return NewGeminiClient(ctx, cfg.APIKey, GeminiOptions{BaseURL: cfg.ResolvedAPIBase()})
	},
}

// NewProvider selects the adapter for cfg.ID. Every call constructs a fresh
// instance.
func NewProvider(ctx context.Context, cfg models.ProviderConfig) (Provider, error) {
	providerID := strings.TrimSpace(cfg.ID)
	construct, ok := constructors[providerID]
	if !ok {
		return nil, &UnknownProviderError{ID: providerID}
	}

	p, err := construct(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", providerID, err)
	}
	return p, nil
}

// SupportedProviders lists the recognised provider tags in sorted order.
func SupportedProviders() []string {
	ids := make([]string, 0, len(constructors))
	for id := range constructors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
