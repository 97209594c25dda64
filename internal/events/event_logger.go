package events

import (
	"github.com/rs/zerolog/log"
)

func logEvent(evt ChatEvent) {
	e := log.Debug().
		Str("event", string(evt.Type)).
		Str("event_id", evt.ID)
	if evt.ChatID != "" {
		e = e.Str("chat_id", evt.ChatID)
	}
	if evt.MessageID != "" {
		e = e.Str("message_id", evt.MessageID)
	}
	if evt.RequestID != "" {
		e = e.Str("request_id", evt.RequestID)
	}
	e.Int("content_len", len(evt.Content)).Msg("chat event")
}
