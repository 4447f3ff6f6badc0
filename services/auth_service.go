package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"eduguide/client"
	"eduguide/logger"
	"eduguide/models"
	"eduguide/storage"
)

type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	GuestLogin(ctx context.Context) (*models.AuthResponse, error)
	SendOTP(ctx context.Context, email string) (*models.OtpResponse, error)
	SendRegistrationOTP(ctx context.Context, email string) (*models.OtpResponse, error)
	VerifyOTP(ctx context.Context, req models.OtpVerifyRequest) (*models.AuthResponse, error)
}

// RegisterFields is the registration form as the user filled it in.
type RegisterFields struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	District        string
	ClassName       string
	OTP             string
}

type RegisterResult struct {
	Success bool
	Message string
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate applies the registration form rules. It returns the message to
// show, or "" when the fields are acceptable.
func (f RegisterFields) Validate() string {
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Email) == "" || f.Password == "" ||
		strings.TrimSpace(f.District) == "" || strings.TrimSpace(f.ClassName) == "" {
		return "Please fill in all required fields"
	}
	if f.Password != f.ConfirmPassword {
		return "Passwords do not match"
	}
	if !emailPattern.MatchString(strings.TrimSpace(f.Email)) {
		return "Please enter a valid email address"
	}
	if len(f.Password) < 6 {
		return "Password must be at least 6 characters long"
	}
	return ""
}

// AuthStore owns the session. Local storage is the source of truth for
// whether the user is authenticated; the store mirrors it in memory.
type AuthStore struct {
	mu    sync.RWMutex
	api   AuthAPI
	store storage.LocalStorage
	log   *logger.Logger

	token string
	user  *models.User
}

// NewAuthStore hydrates the session from storage before returning, so the
// first caller already sees the right authenticated state.
func NewAuthStore(ctx context.Context, api AuthAPI, store storage.LocalStorage, log *logger.Logger) *AuthStore {
	if log == nil {
		log = logger.Nop()
	}
	s := &AuthStore{api: api, store: store, log: log.With("component", "auth_store")}
	s.hydrate(ctx)
	return s
}

func (s *AuthStore) hydrate(ctx context.Context) {
	token, ok, err := s.store.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		s.log.Warn("failed to read persisted token", "error", err)
		return
	}
	if !ok || token == "" {
		return
	}
	s.token = token

	var u models.User
	found, err := storage.GetJSON(ctx, s.store, storage.KeyUser, &u)
	if err != nil {
		s.log.Warn("failed to read persisted user", "error", err)
		return
	}
	if found {
		s.user = &u
	}
}

// Token implements client.TokenSource.
func (s *AuthStore) Token(context.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *AuthStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// CurrentUser returns a copy of the session user, or nil.
func (s *AuthStore) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Login reports whether the credentials were accepted. Failures are logged
// and leave any existing session in place.
func (s *AuthStore) Login(ctx context.Context, email, password string) bool {
	resp, err := s.api.Login(ctx, models.LoginRequest{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		s.log.Warn("login failed", "email", email, "error", err)
		return false
	}
	if err := s.establish(ctx, resp.Data, models.User{}); err != nil {
		s.log.Error("failed to persist session", "error", err)
		return false
	}
	return true
}

func (s *AuthStore) Register(ctx context.Context, f RegisterFields) RegisterResult {
	if msg := f.Validate(); msg != "" {
		return RegisterResult{Message: msg}
	}

	resp, err := s.api.Register(ctx, models.RegisterRequest{
		Name:      strings.TrimSpace(f.Name),
		Email:     strings.TrimSpace(f.Email),
		Password:  f.Password,
		District:  strings.TrimSpace(f.District),
		ClassName: strings.TrimSpace(f.ClassName),
		OTP:       strings.TrimSpace(f.OTP),
	})
	if err != nil {
		s.log.Warn("registration failed", "email", f.Email, "error", err)
		return RegisterResult{Message: client.UserMessage(err, "Registration failed. Please try again.")}
	}

	extra := models.User{District: strings.TrimSpace(f.District), ClassName: strings.TrimSpace(f.ClassName)}
	if err := s.establish(ctx, resp.Data, extra); err != nil {
		s.log.Error("failed to persist session", "error", err)
		return RegisterResult{Message: "Registration failed. Please try again."}
	}
	return RegisterResult{Success: true, Message: resp.Message}
}

func (s *AuthStore) GuestLogin(ctx context.Context) bool {
	resp, err := s.api.GuestLogin(ctx)
	if err != nil {
		s.log.Warn("guest login failed", "error", err)
		return false
	}
	if err := s.establish(ctx, resp.Data, models.User{}); err != nil {
		s.log.Error("failed to persist session", "error", err)
		return false
	}
	return true
}

// SendOTP requests a login code. The message is what to show the user.
func (s *AuthStore) SendOTP(ctx context.Context, email string) (bool, string) {
	resp, err := s.api.SendOTP(ctx, email)
	if err != nil {
		return false, client.UserMessage(err, "Failed to send OTP. Please try again.")
	}
	return true, resp.Message
}

// SendRegistrationOTP validates the form before asking for a code, the way
// the registration screen gates its first step.
func (s *AuthStore) SendRegistrationOTP(ctx context.Context, f RegisterFields) (bool, string) {
	if msg := f.Validate(); msg != "" {
		return false, msg
	}
	resp, err := s.api.SendRegistrationOTP(ctx, strings.TrimSpace(f.Email))
	if err != nil {
		return false, client.UserMessage(err, "Failed to send OTP. Please try again.")
	}
	return true, resp.Message
}

func (s *AuthStore) VerifyOTP(ctx context.Context, email, otp string) (bool, string) {
	if strings.TrimSpace(otp) == "" {
		return false, "Please enter the OTP"
	}
	resp, err := s.api.VerifyOTP(ctx, models.OtpVerifyRequest{Email: strings.TrimSpace(email), OTP: strings.TrimSpace(otp)})
	if err != nil {
		return false, client.UserMessage(err, "OTP verification failed. Please try again.")
	}
	if err := s.establish(ctx, resp.Data, models.User{}); err != nil {
		s.log.Error("failed to persist session", "error", err)
		return false, "OTP verification failed. Please try again."
	}
	return true, resp.Message
}

// Logout drops the session from memory and storage. Storage errors are
// returned but the in-memory session is cleared regardless.
func (s *AuthStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	return errors.Join(
		s.store.Remove(ctx, storage.KeyAuthToken),
		s.store.Remove(ctx, storage.KeyUser),
	)
}

// establish persists and adopts a new session. The token is written first
// and rolled back if the user cannot be stored, so storage never pairs one
// user's token with another's profile. Memory changes only on success.
func (s *AuthStore) establish(ctx context.Context, data *models.AuthData, extra models.User) error {
	if data == nil || data.Token == "" {
		return errors.New("auth response carried no session")
	}
	u := data.SessionUser()
	u.District = extra.District
	u.ClassName = extra.ClassName

	prevToken, hadToken, err := s.store.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		return fmt.Errorf("read current token: %w", err)
	}
	if err := s.store.Set(ctx, storage.KeyAuthToken, data.Token); err != nil {
		return err
	}
	if err := storage.SetJSON(ctx, s.store, storage.KeyUser, u); err != nil {
		if rerr := s.restoreToken(ctx, prevToken, hadToken); rerr != nil {
			s.log.Error("failed to roll back session token", "error", rerr)
			return errors.Join(err, rerr)
		}
		return err
	}

	s.mu.Lock()
	s.token = data.Token
	s.user = &u
	s.mu.Unlock()
	s.log.Info("session established", "user_id", u.ID, "guest", u.Guest)
	return nil
}

func (s *AuthStore) restoreToken(ctx context.Context, prev string, had bool) error {
	if had {
		return s.store.Set(ctx, storage.KeyAuthToken, prev)
	}
	return s.store.Remove(ctx, storage.KeyAuthToken)
}
