package model

// ContactMessage is a message submitted through the contact form.
type ContactMessage struct {
	Name    string
	Email   string
	Message string
}

// ChatRole identifies the author of a chat turn.
type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatMessage is a single turn in an assistant conversation.
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}
