package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"eduguide/client"
	"eduguide/logger"
	"eduguide/models"
)

const (
	chatReplyFailed   = "Sorry, I encountered an error. Please try again."
	chatSendFailed    = "Failed to send message. Please try again."
	chatHistoryFormat = "Invalid conversation history format"
	chatHistoryFailed = "Failed to load conversation history"
)

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrNoConversation = errors.New("no conversation selected")
)

type ChatAPI interface {
	SendMessage(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
	ConversationHistory(ctx context.Context, conversationID int64) ([]models.ChatMessage, error)
	Conversations(ctx context.Context, userID int64) ([]models.ChatConversation, error)
	CreateConversation(ctx context.Context, req models.NewConversationRequest) (*models.ChatConversation, error)
}

type ChatOption func(*ChatSession)

// WithGreeting makes NewConversation open the log with an assistant message.
func WithGreeting(text string) ChatOption {
	return func(s *ChatSession) { s.greeting = text }
}

// ChatSession is the local, append-only message log for one user.
type ChatSession struct {
	mu       sync.Mutex
	api      ChatAPI
	log      *logger.Logger
	userID   int64
	greeting string
	now      func() time.Time

	conversationID int64
	messages       []models.ChatMessage
	localID        int64
	errMsg         string
}

func NewChatSession(api ChatAPI, userID int64, log *logger.Logger, opts ...ChatOption) *ChatSession {
	if log == nil {
		log = logger.Nop()
	}
	s := &ChatSession{
		api:      api,
		log:      log.With("component", "chat_session", "user_id", userID),
		userID:   userID,
		now:      time.Now,
		messages: []models.ChatMessage{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.NewConversation()
	return s
}

// Send appends the user's message immediately, then the assistant's reply
// or a synthetic error reply. The user's message is never rolled back.
func (s *ChatSession) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	s.appendLocked(models.MessageUser, text)
	s.errMsg = ""
	req := models.ChatRequest{UserID: s.userID, Message: text, ConversationID: s.conversationID}
	s.mu.Unlock()

	resp, err := s.api.SendMessage(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Warn("chat message failed", "conversation_id", req.ConversationID, "error", err)
		s.appendLocked(models.MessageAssistant, chatReplyFailed)
		s.errMsg = chatSendFailed
		return err
	}

	if s.conversationID == 0 && resp.ConversationID != 0 {
		s.conversationID = resp.ConversationID
	}
	s.appendLocked(models.MessageAssistant, resp.Message)
	if resp.Timestamp != "" {
		s.messages[len(s.messages)-1].Timestamp = resp.Timestamp
	}
	return nil
}

// LoadHistory replaces the log with the server's copy of the current
// conversation. A malformed payload leaves an empty log and an error.
func (s *ChatSession) LoadHistory(ctx context.Context) error {
	s.mu.Lock()
	id := s.conversationID
	s.mu.Unlock()
	if id == 0 {
		return ErrNoConversation
	}

	msgs, err := s.api.ConversationHistory(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.conversationID {
		return nil
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	if err != nil {
		var merr *client.MalformedPayloadError
		if errors.As(err, &merr) {
			s.errMsg = chatHistoryFormat
		} else {
			s.errMsg = chatHistoryFailed
		}
		s.messages = []models.ChatMessage{}
		s.log.Warn("conversation history failed", "conversation_id", id, "error", err)
		return err
	}
	s.messages = msgs
	s.errMsg = ""
	return nil
}

// NewConversation clears the log and forgets the conversation id; the next
// Send starts a conversation on the server.
func (s *ChatSession) NewConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversationID = 0
	s.messages = []models.ChatMessage{}
	s.errMsg = ""
	if s.greeting != "" {
		s.appendLocked(models.MessageAssistant, s.greeting)
	}
}

// Open switches to an existing conversation and loads its history.
func (s *ChatSession) Open(ctx context.Context, conversationID int64) error {
	s.mu.Lock()
	s.conversationID = conversationID
	s.messages = []models.ChatMessage{}
	s.errMsg = ""
	s.mu.Unlock()
	return s.LoadHistory(ctx)
}

// CreateConversation creates a conversation on the server and switches to
// it with an empty log.
func (s *ChatSession) CreateConversation(ctx context.Context, title string) (*models.ChatConversation, error) {
	conv, err := s.api.CreateConversation(ctx, models.NewConversationRequest{UserID: s.userID, Title: strings.TrimSpace(title)})
	if err != nil {
		s.log.Warn("create conversation failed", "error", err)
		return nil, err
	}
	s.mu.Lock()
	s.conversationID = conv.ConversationID
	s.messages = []models.ChatMessage{}
	s.errMsg = ""
	s.mu.Unlock()
	return conv, nil
}

func (s *ChatSession) Conversations(ctx context.Context) ([]models.ChatConversation, error) {
	convs, err := s.api.Conversations(ctx, s.userID)
	if convs == nil {
		convs = []models.ChatConversation{}
	}
	return convs, err
}

func (s *ChatSession) ConversationID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// Messages returns a copy of the log.
func (s *ChatSession) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage{}, s.messages...)
}

func (s *ChatSession) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// appendLocked adds a locally created message. Local ids are negative so
// they never collide with server ids.
func (s *ChatSession) appendLocked(kind models.MessageType, content string) models.ChatMessage {
	s.localID--
	msg := models.ChatMessage{
		MessageID:   s.localID,
		Content:     content,
		MessageType: kind,
		Timestamp:   s.now().Format("2006-01-02T15:04:05"),
	}
	s.messages = append(s.messages, msg)
	return msg
}
