package services

import (
	"context"
	"encoding/json"
	"fmt"

	"llmchat/internal/storage"
)

// stateVersion tags every persisted snapshot. There is no migration yet.
const stateVersion = 0

type persistedEnvelope[T any] struct {
	State   T   `json:"state"`
	Version int `json:"version"`
}

// loadState reads the envelope stored under key. found is false when the key
// has never been written.
func loadState[T any](ctx context.Context, st storage.Storage, key string) (state T, version int, found bool, err error) {
	raw, ok, err := st.GetItem(ctx, key)
	if err != nil {
		return state, 0, false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return state, 0, false, nil
	}

	var env persistedEnvelope[T]
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return state, 0, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return env.State, env.Version, true, nil
}

func saveState[T any](ctx context.Context, st storage.Storage, key string, state T) error {
	data, err := json.Marshal(persistedEnvelope[T]{State: state, Version: stateVersion})
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := st.SetItem(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
