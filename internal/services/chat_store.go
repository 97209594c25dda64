package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"llmchat/internal/events"
	"llmchat/internal/models"
	"llmchat/internal/storage"
)

// largeHistoryThreshold is inspected on rehydration. Nothing prunes yet.
const largeHistoryThreshold = 100

// ChatStore owns every conversation. All mutations are serialized and the
// in-memory copy is authoritative; each mutation is followed by a snapshot
// write whose failure is logged and otherwise ignored.
type ChatStore struct {
	context context.Context
	storage storage.Storage

	mu            sync.RWMutex
	chats         []models.Chat
	currentChatID string

	now func() time.Time
}

func NewChatStore(st storage.Storage) *ChatStore {
	if st == nil {
		st = storage.NewMemory()
	}
	return &ChatStore{
		context: context.Background(),
		storage: st,
		now:     time.Now,
	}
}

// Load rehydrates the store from the chat-storage slot.
func (s *ChatStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context = ctx

	state, version, found, err := loadState[models.ChatState](ctx, s.storage, storage.ChatStorageKey)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	s.chats = state.Chats
	s.currentChatID = state.CurrentChatID
	s.onRehydrate(version)
	return nil
}

func (s *ChatStore) onRehydrate(version int) {
	logger := log.With().Str("component", "chat_store").Int("version", version).Int("chats", len(s.chats)).Logger()
	if len(s.chats) > largeHistoryThreshold {
		logger.Warn().Msg("chat history is large")
		return
	}
	logger.Debug().Msg("chat store rehydrated")
}

// CreateNewChat allocates an empty chat, makes it current and returns its id.
func (s *ChatStore) CreateNewChat(providerID, modelID string) string {
	s.mu.Lock()
	id, evt := s.createLocked(providerID, modelID)
	ctx := s.context
	s.mu.Unlock()

	events.Emit(ctx, evt)
	return id
}

func (s *ChatStore) createLocked(providerID, modelID string) (string, events.ChatEvent) {
	ts := s.now().UnixMilli()
	chat := models.Chat{
		ID:        uuid.NewString(),
		Title:     models.DefaultChatTitle,
		Messages:  []models.Message{},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	s.chats = append([]models.Chat{chat}, s.chats...)
	s.currentChatID = chat.ID
	s.persistLocked()

	log.Debug().
		Str("chat_id", chat.ID).
		Str("provider_id", providerID).
		Str("model_id", modelID).
		Msg("chat created")
	return chat.ID, events.NewChatEvent(events.ChatCreated, chat.ID)
}

// GetOrCreateChat returns the current chat when it still exists, otherwise it
// creates exactly one new chat.
func (s *ChatStore) GetOrCreateChat(providerID, modelID string) string {
	s.mu.Lock()
	if s.currentChatID != "" && s.indexLocked(s.currentChatID) >= 0 {
		id := s.currentChatID
		s.mu.Unlock()
		return id
	}
	id, evt := s.createLocked(providerID, modelID)
	ctx := s.context
	s.mu.Unlock()

	events.Emit(ctx, evt)
	return id
}

// SetCurrentChat selects an existing chat. Unknown ids leave the pointer
// unchanged and report false.
func (s *ChatStore) SetCurrentChat(chatID string) bool {
	return s.mutate(func() (events.ChatEvent, bool) {
		if s.indexLocked(chatID) < 0 {
			return events.ChatEvent{}, false
		}
		s.currentChatID = chatID
		return events.NewChatEvent(events.ChatSelected, chatID), true
	})
}

func (s *ChatStore) CurrentChatID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentChatID
}

// AddMessage appends msg and returns a copy of the chat's full message
// sequence. A missing id or timestamp is filled in. Unknown chats and
// invalid roles are a no-op returning nil.
func (s *ChatStore) AddMessage(chatID string, msg models.Message) []models.Message {
	if !msg.Role.Valid() {
		log.Warn().Str("chat_id", chatID).Str("role", string(msg.Role)).Msg("message with invalid role ignored")
		return nil
	}

	var out []models.Message
	s.mutate(func() (events.ChatEvent, bool) {
		idx := s.indexLocked(chatID)
		if idx < 0 {
			log.Warn().Str("chat_id", chatID).Msg("add message to unknown chat ignored")
			return events.ChatEvent{}, false
		}

		ts := s.now().UnixMilli()
		if strings.TrimSpace(msg.ID) == "" {
			msg.ID = uuid.NewString()
		}
		if msg.Timestamp == 0 {
			msg.Timestamp = ts
		}

		chat := &s.chats[idx]
		chat.Messages = append(chat.Messages, msg)
		if ts > chat.UpdatedAt {
			chat.UpdatedAt = ts
		}
		out = make([]models.Message, len(chat.Messages))
		copy(out, chat.Messages)
		return events.NewMessageEvent(events.MessageAdded, chatID, msg.ID, msg.Content), true
	})
	return out
}

// UpdateMessage replaces the content of one message wholesale.
func (s *ChatStore) UpdateMessage(chatID, messageID, content string) bool {
	return s.mutate(func() (events.ChatEvent, bool) {
		chat, mi := s.messageLocked(chatID, messageID)
		if mi < 0 {
			return events.ChatEvent{}, false
		}
		chat.Messages[mi].Content = content
		return events.NewMessageEvent(events.MessageUpdated, chatID, messageID, content), true
	})
}

// RemoveMessage drops one message, typically a placeholder whose completion
// failed.
func (s *ChatStore) RemoveMessage(chatID, messageID string) bool {
	return s.mutate(func() (events.ChatEvent, bool) {
		chat, mi := s.messageLocked(chatID, messageID)
		if mi < 0 {
			return events.ChatEvent{}, false
		}
		chat.Messages = append(chat.Messages[:mi], chat.Messages[mi+1:]...)
		return events.NewMessageEvent(events.MessageRemoved, chatID, messageID, ""), true
	})
}

func (s *ChatStore) UpdateChatTitle(chatID, title string) bool {
	return s.mutate(func() (events.ChatEvent, bool) {
		idx := s.indexLocked(chatID)
		if idx < 0 {
			return events.ChatEvent{}, false
		}
		s.chats[idx].Title = title

		evt := events.NewChatEvent(events.ChatRenamed, chatID)
		evt.Content = title
		return evt, true
	})
}

// ShouldUpdateTitle reports whether the chat still carries the default title
// and has exactly one user message.
func (s *ChatStore) ShouldUpdateTitle(chatID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(chatID)
	if idx < 0 {
		return false
	}
	chat := &s.chats[idx]
	return chat.Title == models.DefaultChatTitle && chat.UserMessageCount() == 1
}

// DeleteChat removes a chat and clears the current pointer when it pointed
// at it.
func (s *ChatStore) DeleteChat(chatID string) bool {
	return s.mutate(func() (events.ChatEvent, bool) {
		idx := s.indexLocked(chatID)
		if idx < 0 {
			return events.ChatEvent{}, false
		}
		s.chats = append(s.chats[:idx], s.chats[idx+1:]...)
		if s.currentChatID == chatID {
			s.currentChatID = ""
		}
		return events.NewChatEvent(events.ChatDeleted, chatID), true
	})
}

// GetChat returns a copy of the chat.
func (s *ChatStore) GetChat(chatID string) (models.Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(chatID)
	if idx < 0 {
		return models.Chat{}, false
	}
	return s.chats[idx].Clone(), true
}

// ListChats returns copies of every chat, most recently updated first.
func (s *ChatStore) ListChats() []models.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Chat, 0, len(s.chats))
	for i := range s.chats {
		out = append(out, s.chats[i].Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt > out[j].UpdatedAt
	})
	return out
}

func (s *ChatStore) indexLocked(chatID string) int {
	if chatID == "" {
		return -1
	}
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			return i
		}
	}
	return -1
}

// mutate runs fn under the write lock and persists when it reports a change.
// The event is emitted after the lock is released so subscribers may read
// the store.
func (s *ChatStore) mutate(fn func() (events.ChatEvent, bool)) bool {
	s.mu.Lock()
	evt, changed := fn()
	if changed {
		s.persistLocked()
	}
	ctx := s.context
	s.mu.Unlock()

	if changed {
		events.Emit(ctx, evt)
	}
	return changed
}

func (s *ChatStore) messageLocked(chatID, messageID string) (*models.Chat, int) {
	idx := s.indexLocked(chatID)
	if idx < 0 {
		return nil, -1
	}
	chat := &s.chats[idx]
	return chat, chat.FindMessage(messageID)
}

func (s *ChatStore) persistLocked() {
	state := models.ChatState{Chats: s.chats, CurrentChatID: s.currentChatID}
	if err := saveState(s.context, s.storage, storage.ChatStorageKey, state); err != nil {
		log.Error().Err(err).Str("component", "chat_store").Msg("failed to persist chats")
	}
}
