package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrNoQuiz = errors.New("no quiz data available")

// HTTPError is a non-2xx response from the backend.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "http error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if msg == "" {
		msg = "http error"
	}
	return fmt.Sprintf("http error: status=%d message=%s", e.StatusCode, msg)
}

// APIError is a 2xx envelope that reported success=false.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return "request was not successful"
	}
	return e.Message
}

// ValidationError is raised on the client before anything is sent, or when
// an embedded payload cannot be turned into a usable value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// MalformedPayloadError means the server answered with a shape the client
// could not use. The call that returns it also returns an empty, non-nil
// collection.
type MalformedPayloadError struct {
	What string
	Err  error
}

func (e *MalformedPayloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s: %v", e.What, e.Err)
	}
	return "malformed " + e.What
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

// UserMessage extracts the text a front end should show for err.
func UserMessage(err error, fallback string) string {
	var herr *HTTPError
	if errors.As(err, &herr) && strings.TrimSpace(herr.Message) != "" {
		return herr.Message
	}
	var aerr *APIError
	if errors.As(err, &aerr) && strings.TrimSpace(aerr.Message) != "" {
		return aerr.Message
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return fallback
}

func parseHTTPError(status int, raw []byte) error {
	body := strings.TrimSpace(string(raw))

	var env struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err == nil {
		msg := strings.TrimSpace(env.Message)
		if msg == "" {
			switch e := env.Error.(type) {
			case string:
				msg = strings.TrimSpace(e)
			case map[string]any:
				if m, ok := e["message"].(string); ok {
					msg = strings.TrimSpace(m)
				}
			}
		}
		return &HTTPError{StatusCode: status, Message: msg, Body: body}
	}

	return &HTTPError{StatusCode: status, Body: body}
}
