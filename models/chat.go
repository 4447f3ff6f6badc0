package models

type MessageType string

const (
	MessageUser      MessageType = "USER"
	MessageAssistant MessageType = "ASSISTANT"
	MessageSystem    MessageType = "SYSTEM"
)

type ChatMessage struct {
	MessageID   int64       `json:"messageId"`
	Content     string      `json:"content"`
	MessageType MessageType `json:"messageType"`
	Timestamp   string      `json:"timestamp"`
	Metadata    string      `json:"metadata,omitempty"`
}

type ChatConversation struct {
	ConversationID int64         `json:"conversationId"`
	Title          string        `json:"title"`
	CreatedAt      string        `json:"createdAt"`
	UpdatedAt      string        `json:"updatedAt"`
	IsActive       bool          `json:"isActive"`
	Messages       []ChatMessage `json:"messages,omitempty"`
}

type ChatRequest struct {
	UserID         int64  `json:"userId"`
	Message        string `json:"message"`
	ConversationID int64  `json:"conversationId,omitempty"`
}

type ChatResponse struct {
	ConversationID int64  `json:"conversationId"`
	Message        string `json:"message"`
	Timestamp      string `json:"timestamp"`
}

type NewConversationRequest struct {
	UserID int64  `json:"userId"`
	Title  string `json:"title"`
}
