package entity

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one turn of the in-memory conversation sent to the model.
// Images carry data URLs of screenshots attached to a user turn.
type Message struct {
	Role    MessageRole
	Content string
	Images  []string
}

func (m Message) HasImages() bool {
	return len(m.Images) > 0
}
