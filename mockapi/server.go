// Package mockapi is an in-memory stand-in for the guidance backend. It
// serves the same REST surface the client consumes and is used by package
// tests and by cmd/mockapi for local development.
package mockapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"eduguide/logger"
	"eduguide/models"
)

const timestampLayout = "2006-01-02T15:04:05"

type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	Logger    *logger.Logger
}

type user struct {
	id        int64
	name      string
	email     string
	district  string
	className string
	hash      []byte
	guest     bool
}

type conversation struct {
	meta     models.ChatConversation
	userID   int64
	messages []models.ChatMessage
}

type failure struct {
	status  int
	message string
}

type Server struct {
	mu sync.Mutex

	secret []byte
	ttl    time.Duration
	log    *logger.Logger

	users      map[string]*user
	usersByID  map[int64]*user
	nextUserID int64
	otps       map[string]string

	quiz      models.AvailableQuiz
	questions []models.StoredQuestion

	attempts      map[int64][]models.QuizResult
	nextAttemptID int64

	conversations map[int64]*conversation
	nextConvID    int64
	nextMsgID     int64

	calls    map[string]int
	failures map[string]failure
}

func New(opts Options) *Server {
	secret := strings.TrimSpace(opts.JWTSecret)
	if secret == "" {
		secret = "mockapi-secret"
	}
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	quiz, questions := seedQuiz()
	return &Server{
		secret:        []byte(secret),
		ttl:           ttl,
		log:           log.With("component", "mockapi"),
		users:         map[string]*user{},
		usersByID:     map[int64]*user{},
		otps:          map[string]string{},
		quiz:          quiz,
		questions:     questions,
		attempts:      map[int64][]models.QuizResult{},
		conversations: map[int64]*conversation{},
		calls:         map[string]int{},
		failures:      map[string]failure{},
	}
}

// Router builds the gin engine serving every endpoint under /api.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.track())

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", s.login)
			auth.POST("/register", s.register)
			auth.POST("/guest-login", s.guestLogin)
			auth.POST("/send-otp", s.sendOTP)
			auth.POST("/send-registration-otp", s.sendRegistrationOTP)
			auth.POST("/verify-otp", s.verifyOTP)
			auth.GET("/test", s.authTest)
		}

		quiz := api.Group("/quiz")
		{
			quiz.GET("/available", s.availableQuiz)

			protected := quiz.Group("")
			protected.Use(s.authMiddleware())
			protected.POST("/submit", s.submitQuiz)
			protected.POST("/submit-with-ai", s.submitWithAI)
			protected.GET("/history", s.history)
			protected.GET("/recommendations", s.streamSummary)
		}

		chat := api.Group("/chatbot")
		{
			chat.POST("/message", s.chatMessage)
			chat.GET("/conversations/:userId", s.userConversations)
			chat.POST("/conversations", s.createConversation)
			chat.GET("/conversation/:conversationId/history", s.conversationHistory)
			chat.GET("/health", func(c *gin.Context) {
				c.String(http.StatusOK, "Chatbot service is running")
			})
		}
	}

	return router
}

// FailNext makes the next request matching route (a gin route pattern such
// as "/api/chatbot/message") answer with status instead of being handled.
func (s *Server) FailNext(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, message: message}
}

// Calls reports how many requests reached route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// OTP returns the code most recently issued for email.
func (s *Server) OTP(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.otps[normalizeEmail(email)]
	return code, ok
}

func (s *Server) track() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		s.mu.Lock()
		s.calls[route]++
		f, fail := s.failures[route]
		if fail {
			delete(s.failures, route)
		}
		s.mu.Unlock()

		if fail {
			s.log.Debug("injected failure", "route", route, "status", f.status)
			c.AbortWithStatusJSON(f.status, gin.H{"success": false, "message": f.message})
			return
		}

		start := time.Now()
		c.Next()
		s.log.Debug("request", "method", c.Request.Method, "route", route,
			"status", c.Writer.Status(), "duration_ms", time.Since(start).Milliseconds())
	}
}

func now() string {
	return time.Now().Format(timestampLayout)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
