package models

// DefaultChatTitle is the title every new conversation starts with. It is
// replaced once, after the first exchange.
const DefaultChatTitle = "New conversation"

// Chat is an ordered, titled conversation. Messages are chronological in
// insertion order.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt int64     `json:"createdAt"`
	UpdatedAt int64     `json:"updatedAt"`
}

// UserMessageCount returns how many messages were authored by the user.
func (c *Chat) UserMessageCount() int {
	n := 0
	for _, msg := range c.Messages {
		if msg.Role == RoleUser {
			n++
		}
	}
	return n
}

// FindMessage returns the index of the message with the given id, or -1.
func (c *Chat) FindMessage(id string) int {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers cannot mutate store-owned state.
func (c *Chat) Clone() Chat {
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}
