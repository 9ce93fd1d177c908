package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches any response with HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNetwork matches transport failures where no response was received.
	ErrNetwork = errors.New("network error")
)

// NetworkError wraps a transport failure.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// RejectedError is a non-2xx response. Message is the server's message,
// untouched, so callers can show it to the reader.
type RejectedError struct {
	Status  int
	Code    string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server rejected request: %d %s", e.Status, http.StatusText(e.Status))
	}
	return e.Message
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Message returns the text to show a reader for err.
func Message(err error) string {
	var rejected *RejectedError
	if errors.As(err, &rejected) && rejected.Message != "" {
		return rejected.Message
	}
	if errors.Is(err, ErrNetwork) {
		return "Không thể kết nối tới máy chủ, vui lòng thử lại"
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
