package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	goopenai "github.com/sashabaranov/go-openai"

	"llmchat/internal/models"
)

const (
	openAIVendor = "OpenAI"

	defaultImageModel = goopenai.CreateImageModelDallE3
	defaultImageSize  = goopenai.CreateImageSize1024x1024
)

// imageClient is the slice of the go-openai client used for images.
type imageClient interface {
	CreateImage(ctx context.Context, request goopenai.ImageRequest) (goopenai.ImageResponse, error)
}

// OpenAIOptions configures an OpenAI-compatible endpoint.
type OpenAIOptions struct {
	BaseURL string
}

// OpenAIClient streams chat completions through eino's OpenAI model and
// generates images through the images endpoint.
type OpenAIClient struct {
	newChatModel chatModelFactory
	images       imageClient
}

func NewOpenAIClient(_ context.Context, apiKey string, opts OpenAIOptions) (*OpenAIClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := strings.TrimSpace(opts.BaseURL)

	imgCfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		imgCfg.BaseURL = baseURL
	}

	return &OpenAIClient{
		newChatModel: func(ctx context.Context, modelName string) (model.BaseChatModel, error) {
			return openai.NewChatModel(ctx, &openai.ChatModelConfig{
				APIKey:  apiKey,
				BaseURL: baseURL,
				Model:   modelName,
			})
		},
		images: goopenai.NewClientWithConfig(imgCfg),
	}, nil
}

func (o *OpenAIClient) Name() string {
	return openAIVendor
}

func (o *OpenAIClient) StreamCompletion(ctx context.Context, req StreamRequest, onUpdate UpdateFunc) error {
	return streamWith(ctx, openAIVendor, o.newChatModel, toSchemaMessages(req.Messages), req, onUpdate)
}

// GenerateImages returns one URL per generated image.
func (o *OpenAIClient) GenerateImages(ctx context.Context, req models.ImageGenerationRequest) ([]models.GeneratedImage, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}
	n := req.N
	if n <= 0 {
		n = 1
	}
	modelName := strings.TrimSpace(req.Model)
	if modelName == "" {
		modelName = defaultImageModel
	}

	resp, err := o.images.CreateImage(ctx, goopenai.ImageRequest{
		Prompt:         prompt,
		Model:          modelName,
		N:              n,
		Size:           defaultImageSize,
		ResponseFormat: goopenai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return nil, &ProviderError{Provider: openAIVendor, Err: err}
	}

	images := make([]models.GeneratedImage, 0, len(resp.Data))
	for _, item := range resp.Data {
		images = append(images, models.GeneratedImage{URL: item.URL})
	}
	return images, nil
}
