package mockapi

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"eduguide/models"
)

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	s.mu.Lock()
	u, ok := s.users[normalizeEmail(req.Email)]
	s.mu.Unlock()
	if !ok || u.guest || bcrypt.CompareHashAndPassword(u.hash, []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
		return
	}

	s.respondSession(c, u, "Login successful")
}

func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}
	email := normalizeEmail(req.Email)
	if strings.TrimSpace(req.Name) == "" || email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Name, email and password are required"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to register user"})
		return
	}

	s.mu.Lock()
	if _, exists := s.users[email]; exists {
		s.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email is already registered"})
		return
	}
	if code, issued := s.otps[email]; issued && code != strings.TrimSpace(req.OTP) {
		s.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid OTP"})
		return
	}
	delete(s.otps, email)
	u := s.addUserLocked(&user{
		name:      strings.TrimSpace(req.Name),
		email:     email,
		district:  req.District,
		className: req.ClassName,
		hash:      hash,
	})
	s.mu.Unlock()

	s.respondSession(c, u, "Registration successful")
}

func (s *Server) guestLogin(c *gin.Context) {
	s.mu.Lock()
	u := s.addUserLocked(&user{
		name:  "Guest",
		email: "guest-" + uuid.NewString() + "@guest.local",
		guest: true,
	})
	s.mu.Unlock()

	s.respondSession(c, u, "Guest login successful")
}

func (s *Server) sendOTP(c *gin.Context) {
	s.issueOTP(c, true)
}

func (s *Server) sendRegistrationOTP(c *gin.Context) {
	s.issueOTP(c, false)
}

// issueOTP stores a fresh six digit code for the email. Login codes need an
// existing account; registration codes need the email to be unused.
func (s *Server) issueOTP(c *gin.Context, wantExisting bool) {
	var req models.OtpRequest
	if err := c.ShouldBindJSON(&req); err != nil || normalizeEmail(req.Email) == "" {
		c.JSON(http.StatusBadRequest, models.OtpResponse{Success: false, Message: "Email is required"})
		return
	}
	email := normalizeEmail(req.Email)

	code, err := generateCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.OtpResponse{Success: false, Message: "Failed to send OTP"})
		return
	}

	s.mu.Lock()
	_, exists := s.users[email]
	if exists != wantExisting {
		s.mu.Unlock()
		msg := "No account found for this email"
		if exists {
			msg = "Email is already registered"
		}
		c.JSON(http.StatusBadRequest, models.OtpResponse{Success: false, Message: msg})
		return
	}
	s.otps[email] = code
	s.mu.Unlock()

	s.log.Info("otp issued", "email", email, "code", code)
	c.JSON(http.StatusOK, models.OtpResponse{Success: true, Message: "OTP sent to " + email})
}

func (s *Server) verifyOTP(c *gin.Context) {
	var req models.OtpVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}
	email := normalizeEmail(req.Email)

	s.mu.Lock()
	code, issued := s.otps[email]
	u, exists := s.users[email]
	if !issued || !exists || code != strings.TrimSpace(req.OTP) {
		s.mu.Unlock()
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired OTP"})
		return
	}
	delete(s.otps, email)
	s.mu.Unlock()

	s.respondSession(c, u, "OTP verified successfully")
}

func (s *Server) authTest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Auth endpoint is working", "timestamp": time.Now().UnixMilli()})
}

func (s *Server) addUserLocked(u *user) *user {
	s.nextUserID++
	u.id = s.nextUserID
	s.users[u.email] = u
	s.usersByID[u.id] = u
	return u
}

func (s *Server) respondSession(c *gin.Context, u *user, message string) {
	token, err := s.mintToken(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, models.AuthResponse{
		Success: true,
		Message: message,
		Data: &models.AuthData{
			Token:  token,
			Type:   "Bearer",
			UserID: u.id,
			Name:   u.name,
			Email:  u.email,
			Guest:  u.guest,
		},
	})
}

func (s *Server) mintToken(u *user) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(u.id, 10),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// authMiddleware resolves the bearer token into "user_id" on the context.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
			return
		}

		userID, err := s.parseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}

		s.mu.Lock()
		_, known := s.usersByID[userID]
		s.mu.Unlock()
		if !known {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unknown user"})
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

func (s *Server) parseToken(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid {
		return 0, errors.New("invalid token")
	}
	return strconv.ParseInt(claims.Subject, 10, 64)
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
