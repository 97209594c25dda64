package models

// SettingsState is the persisted shape of the settings store. Default ids are
// weak references into Providers and must be re-resolved on every read.
type SettingsState struct {
	Providers         []ProviderConfig `json:"providers"`
	DefaultProviderID string           `json:"defaultProviderId,omitempty"`
	DefaultModelID    string           `json:"defaultModelId,omitempty"`
}

// ChatState is the persisted shape of the chat store.
type ChatState struct {
	Chats         []Chat `json:"chats"`
	CurrentChatID string `json:"currentChatId,omitempty"`
}
