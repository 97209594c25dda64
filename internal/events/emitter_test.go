package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCustomEmitter_ForwardsAndStampsRequest(t *testing.T) {
	var got []ChatEvent
	SetCustomEmitter(func(_ context.Context, evt ChatEvent) {
		got = append(got, evt)
	})
	t.Cleanup(func() { SetCustomEmitter(nil) })

	ctx := WithRequest(context.Background(), "req-1")
	Emit(ctx, NewMessageEvent(MessageUpdated, "chat-1", "msg-1", "Hi"))

	require.Len(t, got, 1)
	assert.Equal(t, MessageUpdated, got[0].Type)
	assert.Equal(t, "chat-1", got[0].ChatID)
	assert.Equal(t, "msg-1", got[0].MessageID)
	assert.Equal(t, "Hi", got[0].Content)
	assert.Equal(t, "req-1", got[0].RequestID)
	assert.NotEmpty(t, got[0].ID)
}

func TestSetCustomEmitter_NilRestoresDefault(t *testing.T) {
	called := false
	SetCustomEmitter(func(context.Context, ChatEvent) { called = true })
	SetCustomEmitter(nil)

	Emit(context.Background(), NewChatEvent(ChatCreated, "c"))

	assert.False(t, called)
}

func TestWithRequest_IgnoresBlank(t *testing.T) {
	ctx := WithRequest(context.Background(), "  ")
	assert.Empty(t, RequestFromContext(ctx))
}
