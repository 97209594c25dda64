package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	ChatCreated     EventType = "chat:created"
	ChatDeleted     EventType = "chat:deleted"
	ChatSelected    EventType = "chat:selected"
	ChatRenamed     EventType = "chat:renamed"
	MessageAdded    EventType = "chat:message:added"
	MessageUpdated  EventType = "chat:message:updated"
	MessageRemoved  EventType = "chat:message:removed"
	SettingsChanged EventType = "settings:changed"

	CompletionStarted  EventType = "completion:started"
	CompletionFinished EventType = "completion:finished"
	CompletionFailed   EventType = "completion:failed"
)

// ChatEvent is the payload published after every store mutation.
type ChatEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	ChatID    string    `json:"chatId,omitempty"`
	MessageID string    `json:"messageId,omitempty"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId,omitempty"`
}

type contextKey string

const requestContextKey contextKey = "llmchat/events/request"

// WithRequest returns a derived context annotated with the given request id
// so emitted events can be correlated with the send that produced them.
func WithRequest(ctx context.Context, requestID string) context.Context {
	if strings.TrimSpace(requestID) == "" {
		return ctx
	}
	return context.WithValue(ctx, requestContextKey, requestID)
}

// RequestFromContext extracts the request id associated with ctx.
func RequestFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestContextKey).(string); ok {
		return v
	}
	return ""
}

func NewChatEvent(eventType EventType, chatID string) ChatEvent {
	return ChatEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		ChatID:    chatID,
		Timestamp: time.Now(),
	}
}

// NewMessageEvent creates an event scoped to one message of a chat.
func NewMessageEvent(eventType EventType, chatID, messageID, content string) ChatEvent {
	evt := NewChatEvent(eventType, chatID)
	evt.MessageID = messageID
	evt.Content = content
	return evt
}
