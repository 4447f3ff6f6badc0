package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"eduguide/mockapi"
	"eduguide/models"
	"eduguide/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticToken string

func (s staticToken) Token(context.Context) string { return string(s) }

func newMockClient(t *testing.T, tokens TokenSource) (*Client, *mockapi.Server) {
	t.Helper()
	srv := mockapi.New(mockapi.Options{JWTSecret: "client-test"})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	c, err := New(Options{BaseURL: ts.URL + "/api/", Timeout: 5 * time.Second, Tokens: tokens})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func newRawClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	c, err := New(Options{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Options{BaseURL: "  "}); err == nil {
		t.Fatalf("New: expected error for empty base URL")
	}
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	c := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{"message":"ok"}`))
	})
	c.tokens = staticToken("abc.def.ghi")

	if _, err := c.TestConnection(context.Background()); err != nil {
		t.Fatalf("TestConnection: %v", err)
	}
	if want := "Bearer abc.def.ghi"; got.Get("Authorization") != want {
		t.Fatalf("Authorization: want=%q got=%q", want, got.Get("Authorization"))
	}
	if got.Get("X-Request-ID") == "" {
		t.Fatalf("X-Request-ID: want non-empty")
	}
	if got.Get("Content-Type") != "application/json" {
		t.Fatalf("Content-Type: got=%q", got.Get("Content-Type"))
	}
}

func TestNoAuthorizationWithoutToken(t *testing.T) {
	var auth string
	c := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})
	c.tokens = StoredToken{Storage: storage.NewMemoryStore()}

	if _, err := c.TestConnection(context.Background()); err != nil {
		t.Fatalf("TestConnection: %v", err)
	}
	if auth != "" {
		t.Fatalf("Authorization: want empty got=%q", auth)
	}
}

func TestStoredTokenReadsPersistedToken(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	if err := store.Set(ctx, storage.KeyAuthToken, "persisted"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := (StoredToken{Storage: store}).Token(ctx); got != "persisted" {
		t.Fatalf("Token: want=%q got=%q", "persisted", got)
	}
	if got := (StoredToken{}).Token(ctx); got != "" {
		t.Fatalf("Token without storage: want empty got=%q", got)
	}
}

func TestHTTPErrorCarriesServerMessage(t *testing.T) {
	c, _ := newMockClient(t, nil)
	_, err := c.Login(context.Background(), models.LoginRequest{Email: "x@example.com", Password: "nope"})

	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("Login: want *HTTPError got=%T %v", err, err)
	}
	if herr.StatusCode != http.StatusUnauthorized || herr.Message != "Invalid email or password" {
		t.Fatalf("HTTPError: got status=%d message=%q", herr.StatusCode, herr.Message)
	}
	if got := UserMessage(err, "fallback"); got != "Invalid email or password" {
		t.Fatalf("UserMessage: got=%q", got)
	}
}

func TestParseHTTPErrorShapes(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"success":false,"message":"bad input"}`, "bad input"},
		{`{"error":"Internal server error"}`, "Internal server error"},
		{`{"error":{"message":"nested"}}`, "nested"},
		{`not json`, ""},
	}
	for _, tc := range cases {
		err := parseHTTPError(http.StatusBadRequest, []byte(tc.body))
		var herr *HTTPError
		if !errors.As(err, &herr) {
			t.Fatalf("parseHTTPError(%q): want *HTTPError", tc.body)
		}
		if herr.Message != tc.want {
			t.Fatalf("parseHTTPError(%q): want=%q got=%q", tc.body, tc.want, herr.Message)
		}
	}
	if got := UserMessage(errors.New("boom"), "fallback"); got != "fallback" {
		t.Fatalf("UserMessage fallback: got=%q", got)
	}
}

func TestAuthAgainstMock(t *testing.T) {
	ctx := context.Background()
	c, srv := newMockClient(t, nil)

	if _, err := c.SendOTP(ctx, " "); err == nil {
		t.Fatalf("SendOTP: want validation error for blank email")
	}

	reg, err := c.Register(ctx, models.RegisterRequest{Name: "Ravi", Email: "ravi@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.Data.Token == "" || reg.Data.UserID == 0 {
		t.Fatalf("Register: got=%+v", reg.Data)
	}

	if _, err := c.SendOTP(ctx, "ravi@example.com"); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	code, _ := srv.OTP("ravi@example.com")
	resp, err := c.VerifyOTP(ctx, models.OtpVerifyRequest{Email: "ravi@example.com", OTP: code})
	if err != nil || resp.Data.Email != "ravi@example.com" {
		t.Fatalf("VerifyOTP: resp=%+v err=%v", resp, err)
	}

	guest, err := c.GuestLogin(ctx)
	if err != nil || !guest.Data.Guest {
		t.Fatalf("GuestLogin: resp=%+v err=%v", guest, err)
	}
}

func TestAuthRejectsSuccessWithoutToken(t *testing.T) {
	c := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"message":"ok","data":{"userId":1}}`))
	})
	_, err := c.Login(context.Background(), models.LoginRequest{Email: "a@b.c", Password: "x"})
	var merr *MalformedPayloadError
	if !errors.As(err, &merr) {
		t.Fatalf("Login: want *MalformedPayloadError got=%T %v", err, err)
	}
}

func TestAuthSuccessFalseIsAPIError(t *testing.T) {
	c := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"Account locked"}`))
	})
	resp, err := c.Login(context.Background(), models.LoginRequest{Email: "a@b.c", Password: "x"})
	var aerr *APIError
	if !errors.As(err, &aerr) || aerr.Message != "Account locked" {
		t.Fatalf("Login: want APIError got=%v", err)
	}
	if resp == nil || resp.Success {
		t.Fatalf("Login: response should be returned with success=false")
	}
}

func TestChatHealthIsPlainText(t *testing.T) {
	c, _ := newMockClient(t, nil)
	got, err := c.ChatHealth(context.Background())
	if err != nil || got != "Chatbot service is running" {
		t.Fatalf("ChatHealth: got=%q err=%v", got, err)
	}
}

func TestRequestTimeout(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(block)
		ts.Close()
	})

	c, err := New(Options{BaseURL: ts.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.ChatHealth(context.Background())
	if err == nil || !strings.Contains(err.Error(), "deadline") {
		t.Fatalf("ChatHealth: want deadline error got=%v", err)
	}
}
