package mocks

import (
	"context"

	"llmchat/internal/llm/client"
	"llmchat/internal/models"
)

type ProviderMock struct {
	NameValue            string
	StreamCompletionFunc func(ctx context.Context, req client.StreamRequest, onUpdate client.UpdateFunc) error
}

func (m *ProviderMock) Name() string {
	if m.NameValue != "" {
		return m.NameValue
	}
	return "Mock"
}

func (m *ProviderMock) StreamCompletion(ctx context.Context, req client.StreamRequest, onUpdate client.UpdateFunc) error {
	if m.StreamCompletionFunc != nil {
		return m.StreamCompletionFunc(ctx, req, onUpdate)
	}
	return nil
}

// ImageProviderMock is a ProviderMock that also implements
// client.ImageGenerator.
type ImageProviderMock struct {
	ProviderMock
	GenerateImagesFunc func(ctx context.Context, req models.ImageGenerationRequest) ([]models.GeneratedImage, error)
}

func (m *ImageProviderMock) GenerateImages(ctx context.Context, req models.ImageGenerationRequest) ([]models.GeneratedImage, error) {
	if m.GenerateImagesFunc != nil {
		return m.GenerateImagesFunc(ctx, req)
	}
	return nil, nil
}

// StreamChunks returns a StreamCompletionFunc that replays accumulated
// snapshots, the way a real adapter reports them.
func StreamChunks(chunks ...string) func(context.Context, client.StreamRequest, client.UpdateFunc) error {
	return func(_ context.Context, _ client.StreamRequest, onUpdate client.UpdateFunc) error {
		acc := ""
		for _, c := range chunks {
			acc += c
			if onUpdate != nil {
				onUpdate(acc)
			}
		}
		return nil
	}
}
