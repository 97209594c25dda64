package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"llmchat/internal/events"
	"llmchat/internal/llm/client"
	"llmchat/internal/models"
	"llmchat/internal/utils"
)

const (
	titleMaxRunes = 15
	titleEllipsis = "..."
)

// SelectionSource resolves the default provider and model.
type SelectionSource interface {
	DefaultSelection() (models.ProviderConfig, models.Model, bool)
}

// ConversationService sequences a chat exchange across the chat store and
// the API client: optimistic placeholder, streamed replacement, rollback on
// failure and the one-shot title.
type ConversationService struct {
	chats    *ChatStore
	settings SelectionSource
	api      *APIClient
	now      func() time.Time
}

func NewConversationService(chats *ChatStore, settings SelectionSource, api *APIClient) *ConversationService {
	return &ConversationService{
		chats:    chats,
		settings: settings,
		api:      api,
		now:      time.Now,
	}
}

// Send appends the user's message, streams the assistant reply into a
// placeholder message and names the chat after the first exchange. On
// failure the placeholder is removed and the error returned.
func (s *ConversationService) Send(ctx context.Context, chatID, content string, onUpdate client.UpdateFunc) (models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return models.Message{}, errors.New("message is empty")
	}
	provider, mdl, ok := s.settings.DefaultSelection()
	if !ok {
		return models.Message{}, ErrNoProviderConfigured
	}

	requestID := uuid.NewString()
	ctx = events.WithRequest(ctx, requestID)
	logger := log.With().
		Str("request_id", requestID).
		Str("chat_id", chatID).
		Str("provider_id", provider.ID).
		Str("model_id", mdl.ID).
		Logger()

	history := s.chats.AddMessage(chatID, s.newMessage(models.RoleUser, content, provider.ID, mdl.ID))
	if history == nil {
		return models.Message{}, fmt.Errorf("%w: %s", ErrChatNotFound, chatID)
	}

	placeholder := s.newMessage(models.RoleAssistant, "", provider.ID, mdl.ID)
	s.chats.AddMessage(chatID, placeholder)

	logger.Debug().Int("history", len(history)).Msg("streaming completion")
	events.Emit(ctx, events.NewMessageEvent(events.CompletionStarted, chatID, placeholder.ID, ""))
	err := s.api.StreamCompletion(ctx, provider.ID, CompletionParams{
		Messages: toChatMessages(history),
		Model:    mdl.ID,
		OnUpdate: func(text string) {
			placeholder.Content = text
			s.chats.UpdateMessage(chatID, placeholder.ID, text)
			if onUpdate != nil {
				onUpdate(text)
			}
		},
	})
	if err != nil {
		logger.Error().Err(err).Msg("completion failed")
		s.chats.RemoveMessage(chatID, placeholder.ID)
		events.Emit(ctx, events.NewMessageEvent(events.CompletionFailed, chatID, placeholder.ID, err.Error()))
		return models.Message{}, err
	}
	events.Emit(ctx, events.NewMessageEvent(events.CompletionFinished, chatID, placeholder.ID, placeholder.Content))

	if s.chats.ShouldUpdateTitle(chatID) {
		s.GenerateTitle(ctx, chatID, content)
	}
	return placeholder, nil
}

// GenerateTitle asks the default model for a short summary of userMessage
// and stores it as the chat title. Any failure falls back to a truncated
// copy of the message, so the default title never survives this call.
func (s *ConversationService) GenerateTitle(ctx context.Context, chatID, userMessage string) string {
	title, err := s.summarise(ctx, userMessage)
	if err != nil {
		log.Warn().Err(err).Str("chat_id", chatID).Msg("title generation failed, using fallback")
		title = FallbackTitle(userMessage)
	}
	s.chats.UpdateChatTitle(chatID, title)
	return title
}

func (s *ConversationService) summarise(ctx context.Context, userMessage string) (string, error) {
	provider, mdl, ok := s.settings.DefaultSelection()
	if !ok {
		return "", ErrNoProviderConfigured
	}
	system, err := client.Prompt(client.PromptTitleSystem)
	if err != nil {
		return "", err
	}
	user, err := client.Prompt(client.PromptTitleUser)
	if err != nil {
		return "", err
	}

	var summary string
	err = s.api.StreamCompletion(ctx, provider.ID, CompletionParams{
		Messages: []client.ChatMessage{
			{Role: models.RoleSystem, Content: system},
			{Role: models.RoleUser, Content: fmt.Sprintf(user, userMessage)},
		},
		Model:    mdl.ID,
		OnUpdate: func(text string) { summary = text },
	})
	if err != nil {
		return "", err
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", errors.New("empty title summary")
	}
	return summary, nil
}

// FallbackTitle is the first 15 characters of the message, with an ellipsis
// when anything was cut.
func FallbackTitle(userMessage string) string {
	return utils.TruncateRunes(userMessage, titleMaxRunes, titleEllipsis)
}

// GenerateImage produces images with the default provider and records the
// prompt and a markdown reply in the chat. Nothing is recorded on failure.
func (s *ConversationService) GenerateImage(ctx context.Context, chatID, prompt string, n int) ([]models.GeneratedImage, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("prompt is required")
	}
	provider, mdl, ok := s.settings.DefaultSelection()
	if !ok {
		return nil, ErrNoProviderConfigured
	}
	if _, ok := s.chats.GetChat(chatID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrChatNotFound, chatID)
	}

	imageModel := imageModelFor(provider, mdl)
	images, err := s.api.GenerateImages(ctx, provider.ID, models.ImageGenerationRequest{
		Prompt: prompt,
		Model:  imageModel,
		N:      n,
	})
	if err != nil {
		return nil, err
	}

	s.chats.AddMessage(chatID, s.newMessage(models.RoleUser, prompt, provider.ID, imageModel))
	s.chats.AddMessage(chatID, s.newMessage(models.RoleAssistant, imagesMarkdown(images), provider.ID, imageModel))
	return images, nil
}

// imageModelFor prefers the selected model when it can draw, then the first
// image-capable model of the provider. "" lets the adapter choose.
func imageModelFor(provider models.ProviderConfig, selected models.Model) string {
	if selected.Capabilities.ImageGeneration {
		return selected.ID
	}
	for _, m := range provider.SupportedModels {
		if m.Capabilities.ImageGeneration {
			return m.ID
		}
	}
	return ""
}

func imagesMarkdown(images []models.GeneratedImage) string {
	lines := make([]string, 0, len(images))
	for _, img := range images {
		lines = append(lines, fmt.Sprintf("![image](%s)", img.URL))
	}
	return strings.Join(lines, "\n\n")
}

func (s *ConversationService) newMessage(role models.Role, content, providerID, modelID string) models.Message {
	return models.Message{
		ID:         uuid.NewString(),
		Role:       role,
		Content:    content,
		Timestamp:  s.now().UnixMilli(),
		ProviderID: providerID,
		ModelID:    modelID,
	}
}

func toChatMessages(msgs []models.Message) []client.ChatMessage {
	out := make([]client.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, client.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
