package mockapi

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"eduguide/models"
)

func (s *Server) chatMessage(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Message is required"})
		return
	}

	s.mu.Lock()
	conv, ok := s.conversations[req.ConversationID]
	if req.ConversationID != 0 && !ok {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Conversation not found"})
		return
	}
	if !ok {
		conv = s.newConversationLocked(req.UserID, titleFrom(req.Message))
	}
	s.appendLocked(conv, models.MessageUser, req.Message)
	reply := assistantReply(req.Message)
	msg := s.appendLocked(conv, models.MessageAssistant, reply)
	id := conv.meta.ConversationID
	s.mu.Unlock()

	c.JSON(http.StatusOK, models.ChatResponse{
		ConversationID: id,
		Message:        reply,
		Timestamp:      msg.Timestamp,
	})
}

func (s *Server) userConversations(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	s.mu.Lock()
	out := []models.ChatConversation{}
	for _, conv := range s.conversations {
		if conv.userID == userID {
			out = append(out, conv.meta)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ConversationID > out[j].ConversationID })
	c.JSON(http.StatusOK, out)
}

func (s *Server) createConversation(c *gin.Context) {
	var req models.NewConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "New Conversation"
	}

	s.mu.Lock()
	conv := s.newConversationLocked(req.UserID, title)
	meta := conv.meta
	s.mu.Unlock()

	c.JSON(http.StatusOK, meta)
}

func (s *Server) conversationHistory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("conversationId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid conversation ID"})
		return
	}

	s.mu.Lock()
	conv, ok := s.conversations[id]
	var msgs []models.ChatMessage
	if ok {
		msgs = append([]models.ChatMessage{}, conv.messages...)
	}
	s.mu.Unlock()

	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (s *Server) newConversationLocked(userID int64, title string) *conversation {
	s.nextConvID++
	ts := now()
	conv := &conversation{
		meta: models.ChatConversation{
			ConversationID: s.nextConvID,
			Title:          title,
			CreatedAt:      ts,
			UpdatedAt:      ts,
			IsActive:       true,
		},
		userID:   userID,
		messages: []models.ChatMessage{},
	}
	s.conversations[conv.meta.ConversationID] = conv
	return conv
}

func (s *Server) appendLocked(conv *conversation, kind models.MessageType, content string) models.ChatMessage {
	s.nextMsgID++
	msg := models.ChatMessage{
		MessageID:   s.nextMsgID,
		Content:     content,
		MessageType: kind,
		Timestamp:   now(),
	}
	conv.messages = append(conv.messages, msg)
	conv.meta.UpdatedAt = msg.Timestamp
	return msg
}

func titleFrom(message string) string {
	title := strings.TrimSpace(message)
	if r := []rune(title); len(r) > 40 {
		title = string(r[:40]) + "..."
	}
	return title
}

// assistantReply is a keyword responder standing in for the language model.
func assistantReply(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "engineering"), strings.Contains(lower, "science"):
		return "The Science stream opens engineering, medicine and research. Focus on Physics, Chemistry and Mathematics and look at entrance exams such as JEE and NEET."
	case strings.Contains(lower, "commerce"), strings.Contains(lower, "business"):
		return "Commerce leads to CA, CS, MBA and finance careers. Accountancy, Economics and Business Studies are the core subjects."
	case strings.Contains(lower, "arts"), strings.Contains(lower, "law"):
		return "Arts covers languages, social sciences and law. Many government colleges offer strong B.A. programmes with low fees."
	case strings.Contains(lower, "scholarship"):
		return "Check the National Scholarship Portal and your state scholarship scheme. Most deadlines fall between August and October."
	}
	return fmt.Sprintf("Thanks for your question about %q. Take the aptitude quiz to get stream and college suggestions tailored to you.", titleFrom(message))
}
