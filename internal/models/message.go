package models

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is a single entry of a conversation. Only Content changes after
// creation: streaming replaces it wholesale with the accumulated text.
type Message struct {
	ID         string `json:"id"`
	Role       Role   `json:"role"`
	Content    string `json:"content"`
	Timestamp  int64  `json:"timestamp"`
	ProviderID string `json:"providerId"`
	ModelID    string `json:"modelId"`
}
