package client

import (
	"bytes"
	"encoding/json"
	"errors"
)

var (
	errNotArray     = errors.New("payload is not an array")
	errMissingToken = errors.New("token missing")
)

// decodeList accepts either a bare JSON array or an envelope carrying the
// array under "data". Anything else yields an empty slice and a
// MalformedPayloadError. The returned slice is never nil.
func decodeList[T any](raw []byte, what string) ([]T, error) {
	out := []T{}
	trimmed := bytes.TrimSpace(raw)

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env struct {
			Success *bool           `json:"success"`
			Message string          `json:"message"`
			Data    json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return out, &MalformedPayloadError{What: what, Err: err}
		}
		if env.Success != nil && !*env.Success {
			return out, &APIError{Message: env.Message}
		}
		trimmed = bytes.TrimSpace(env.Data)
	}

	if len(trimmed) == 0 || trimmed[0] != '[' {
		return out, &MalformedPayloadError{What: what, Err: errNotArray}
	}

	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return out, &MalformedPayloadError{What: what, Err: err}
	}
	if items == nil {
		return out, nil
	}
	return items, nil
}

// envelope is the {success, message, data} wrapper most endpoints use.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func (e envelope[T]) err() error {
	if !e.Success {
		return &APIError{Message: e.Message}
	}
	return nil
}
