package services

import (
	"context"
	"errors"
	"fmt"

	"llmchat/internal/llm/client"
	"llmchat/internal/models"
)

// ProviderFactory builds an adapter for a provider configuration.
type ProviderFactory func(ctx context.Context, cfg models.ProviderConfig) (client.Provider, error)

// ProviderSource is the read side of the settings store the client needs.
type ProviderSource interface {
	Provider(id string) (models.ProviderConfig, bool)
}

// CompletionParams is one streaming completion request.
type CompletionParams struct {
	Messages []client.ChatMessage
	Model    string
	OnUpdate client.UpdateFunc
}

// APIClient is the single entry point for vendor calls. It keeps no state
// between calls: every call re-reads the provider configuration.
type APIClient struct {
	settings   ProviderSource
	newAdapter ProviderFactory
}

func NewAPIClient(settings ProviderSource, factory ProviderFactory) *APIClient {
	if factory == nil {
		factory = client.NewProvider
	}
	return &APIClient{settings: settings, newAdapter: factory}
}

func (c *APIClient) resolve(ctx context.Context, providerID string) (models.ProviderConfig, client.Provider, error) {
	cfg, ok := c.settings.Provider(providerID)
	if !ok {
		return models.ProviderConfig{}, nil, fmt.Errorf("%w: %s", ErrProviderNotFound, providerID)
	}
	adapter, err := c.newAdapter(ctx, cfg)
	if err != nil {
		return models.ProviderConfig{}, nil, err
	}
	return cfg, adapter, nil
}

// StreamCompletion streams a reply, calling params.OnUpdate with the
// accumulated text. It returns once the stream has ended.
func (c *APIClient) StreamCompletion(ctx context.Context, providerID string, params CompletionParams) error {
	cfg, adapter, err := c.resolve(ctx, providerID)
	if err != nil {
		return err
	}

	req := client.StreamRequest{
		Messages: params.Messages,
		Model:    params.Model,
	}
	if m, ok := cfg.FindModel(params.Model); ok {
		req.MaxTokens = m.MaxTokens
		req.Temperature = m.Temperature
		if req.Temperature == nil {
			req.Temperature = m.DefaultTemperature
		}
	}
	return adapter.StreamCompletion(ctx, req, params.OnUpdate)
}

// GenerateImages asks the provider for images. Providers without an image
// endpoint report ErrCapabilityNotSupported.
func (c *APIClient) GenerateImages(ctx context.Context, providerID string, req models.ImageGenerationRequest) ([]models.GeneratedImage, error) {
	_, adapter, err := c.resolve(ctx, providerID)
	if err != nil {
		return nil, err
	}

	gen, ok := adapter.(client.ImageGenerator)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCapabilityNotSupported, adapter.Name())
	}
	images, err := gen.GenerateImages(ctx, req)
	if err != nil {
		if errors.Is(err, client.ErrImageGenerationUnsupported) {
			return nil, fmt.Errorf("%w: %w", ErrCapabilityNotSupported, err)
		}
		return nil, err
	}
	return images, nil
}
