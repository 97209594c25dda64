package client

import (
	"context"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

const geminiVendor = "Gemini"

// GeminiOptions configures the Gemini API endpoint.
type GeminiOptions struct {
	BaseURL string
}

// GeminiClient streams completions from Gemini. It does not implement
// ImageGenerator.
type GeminiClient struct {
	newChatModel chatModelFactory
}

func NewGeminiClient(_ context.Context, apiKey string, opts GeminiOptions) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := strings.TrimSpace(opts.BaseURL)

	return &GeminiClient{
		newChatModel: func(ctx context.Context, modelName string) (model.BaseChatModel, error) {
			cfg := &genai.ClientConfig{
				APIKey:  apiKey,
				Backend: genai.BackendGeminiAPI,
			}
			if baseURL != "" {
				cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
			}
			gc, err := genai.NewClient(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return gemini.NewChatModel(ctx, &gemini.Config{
				Client: gc,
				Model:  modelName,
			})
		},
	}, nil
}

func (g *GeminiClient) Name() string {
	return geminiVendor
}

func (g *GeminiClient) StreamCompletion(ctx context.Context, req StreamRequest, onUpdate UpdateFunc) error {
	return streamWith(ctx, geminiVendor, g.newChatModel, toSchemaMessages(req.Messages), req, onUpdate)
}
