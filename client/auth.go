package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"eduguide/models"
)

// Login authenticates with email and password. The client never persists
// the session; that is the auth store's job.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	return c.authCall(ctx, "/auth/login", req)
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	return c.authCall(ctx, "/auth/register", req)
}

func (c *Client) GuestLogin(ctx context.Context) (*models.AuthResponse, error) {
	return c.authCall(ctx, "/auth/guest-login", struct{}{})
}

// VerifyOTP completes a passwordless login and returns a session like Login.
func (c *Client) VerifyOTP(ctx context.Context, req models.OtpVerifyRequest) (*models.AuthResponse, error) {
	return c.authCall(ctx, "/auth/verify-otp", req)
}

func (c *Client) SendOTP(ctx context.Context, email string) (*models.OtpResponse, error) {
	return c.otpCall(ctx, "/auth/send-otp", email)
}

func (c *Client) SendRegistrationOTP(ctx context.Context, email string) (*models.OtpResponse, error) {
	return c.otpCall(ctx, "/auth/send-registration-otp", email)
}

// TestConnection hits the backend's auth probe and returns its message.
func (c *Client) TestConnection(ctx context.Context) (string, error) {
	raw, err := c.do(ctx, http.MethodGet, "/auth/test", nil)
	if err != nil {
		return "", err
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw)), nil
	}
	return body.Message, nil
}

func (c *Client) authCall(ctx context.Context, path string, body any) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return &resp, &APIError{Message: resp.Message}
	}
	if resp.Data == nil || strings.TrimSpace(resp.Data.Token) == "" {
		return &resp, &MalformedPayloadError{What: "auth response", Err: errMissingToken}
	}
	return &resp, nil
}

func (c *Client) otpCall(ctx context.Context, path string, email string) (*models.OtpResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, &ValidationError{Field: "email", Message: "Email is required"}
	}
	var resp models.OtpResponse
	if err := c.doJSON(ctx, http.MethodPost, path, models.OtpRequest{Email: email}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return &resp, &APIError{Message: resp.Message}
	}
	return &resp, nil
}
