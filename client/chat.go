package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"eduguide/models"
)

func (c *Client) SendMessage(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, &ValidationError{Field: "message", Message: "Message cannot be empty"}
	}
	var resp models.ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/chatbot/message", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConversationHistory returns the messages of a conversation in order. A
// payload that is not a list yields an empty slice and a
// MalformedPayloadError.
func (c *Client) ConversationHistory(ctx context.Context, conversationID int64) ([]models.ChatMessage, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/chatbot/conversation/%d/history", conversationID), nil)
	if err != nil {
		return []models.ChatMessage{}, err
	}
	return decodeList[models.ChatMessage](raw, "conversation history")
}

func (c *Client) Conversations(ctx context.Context, userID int64) ([]models.ChatConversation, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/chatbot/conversations/%d", userID), nil)
	if err != nil {
		return []models.ChatConversation{}, err
	}
	return decodeList[models.ChatConversation](raw, "conversations")
}

func (c *Client) CreateConversation(ctx context.Context, req models.NewConversationRequest) (*models.ChatConversation, error) {
	var conv models.ChatConversation
	if err := c.doJSON(ctx, http.MethodPost, "/chatbot/conversations", req, &conv); err != nil {
		return nil, err
	}
	if conv.ConversationID == 0 {
		return nil, &MalformedPayloadError{What: "conversation", Err: fmt.Errorf("missing conversationId")}
	}
	return &conv, nil
}

// ChatHealth returns the assistant service's plain-text status line.
func (c *Client) ChatHealth(ctx context.Context) (string, error) {
	raw, err := c.do(ctx, http.MethodGet, "/chatbot/health", nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
