package client

import (
	"context"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"llmchat/internal/models"
)

const (
	anthropicVendor = "Anthropic"

	defaultClaudeMaxTokens = 4096
	defaultFallbackPrompt  = "Please continue."
)

// ClaudeOptions configures an Anthropic-compatible endpoint.
type ClaudeOptions struct {
	BaseURL string
}

// ClaudeClient streams completions from the Anthropic messages API.
type ClaudeClient struct {
	newChatModel chatModelFactory
}

func NewClaudeClient(_ context.Context, apiKey string, opts ClaudeOptions) (*ClaudeClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	var baseURL *string
	if b := strings.TrimSpace(opts.BaseURL); b != "" {
		baseURL = &b
	}

	return &ClaudeClient{
		newChatModel: func(ctx context.Context, modelName string) (model.BaseChatModel, error) {
			return claude.NewChatModel(ctx, &claude.Config{
				APIKey:    apiKey,
				BaseURL:   baseURL,
				Model:     modelName,
				MaxTokens: defaultClaudeMaxTokens,
			})
		},
	}, nil
}

func (c *ClaudeClient) Name() string {
	return anthropicVendor
}

func (c *ClaudeClient) StreamCompletion(ctx context.Context, req StreamRequest, onUpdate UpdateFunc) error {
	input := ensureLeadingUserTurn(toClaudeMessages(req.Messages), lastUserContent(req.Messages))
	return streamWith(ctx, anthropicVendor, c.newChatModel, input, req, onUpdate)
}

// GenerateImages always fails: the messages API has no image output.
func (c *ClaudeClient) GenerateImages(context.Context, models.ImageGenerationRequest) ([]models.GeneratedImage, error) {
	return nil, &ProviderError{Provider: anthropicVendor, Err: ErrImageGenerationUnsupported}
}

// toClaudeMessages keeps system turns as system so eino lifts them into the
// request's system field; every other non-user role becomes assistant.
func toClaudeMessages(msgs []ChatMessage) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs))
	for _, m := range msgs {
		role := schema.Assistant
		switch m.Role {
		case models.RoleUser:
			role = schema.User
		case models.RoleSystem:
			role = schema.System
		}
		out = append(out, &schema.Message{Role: role, Content: m.Content})
	}
	return out
}

func lastUserContent(msgs []ChatMessage) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == models.RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}

// ensureLeadingUserTurn makes the first non-system turn a user turn, which
// the messages API requires. Turns before the first user message (a welcome
// message, say) are dropped; with no user turn at all, fallback is prepended.
func ensureLeadingUserTurn(history []*schema.Message, fallback string) []*schema.Message {
	var system, turns []*schema.Message
	for _, m := range history {
		if m.Role == schema.System {
			system = append(system, m)
		} else {
			turns = append(turns, m)
		}
	}
	if len(turns) > 0 && turns[0].Role == schema.User {
		return history
	}

	first := -1
	for i, m := range turns {
		if m.Role == schema.User {
			first = i
			break
		}
	}
	if first >= 0 {
		return append(system, turns[first:]...)
	}

	if strings.TrimSpace(fallback) == "" {
		fallback = defaultFallbackPrompt
	}
	out := append(system, schema.UserMessage(fallback))
	return append(out, turns...)
}
