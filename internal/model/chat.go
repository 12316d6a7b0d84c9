package model

// Chat roles accepted from the widget.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn of a chat widget conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
