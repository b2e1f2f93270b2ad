package bridge

import (
	"errors"
	"fmt"
)

// ConnectionError means the bridge endpoint could not be used at all: it was
// unreachable, timed out, answered with a non-2xx status or sent a body that
// could not be decoded.
type ConnectionError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *ConnectionError) Error() string {
	msg := "bridge connection error"
	if e.Method != "" {
		msg = fmt.Sprintf("%s [%s %s]", msg, e.Method, e.URL)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// SessionError means the bridge answered but the session operation could not
// be completed: no session id came back, or the session failed to log in.
type SessionError struct {
	Op        string
	SessionID string
	Message   string
	Err       error
}

func (e *SessionError) Error() string {
	msg := "bridge session error"
	if e.Op != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Op)
	}
	if e.SessionID != "" {
		msg = fmt.Sprintf("%s (session %s)", msg, e.SessionID)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// IsConnectionError reports whether err is or wraps a *ConnectionError.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// IsSessionError reports whether err is or wraps a *SessionError.
func IsSessionError(err error) bool {
	var sessErr *SessionError
	return errors.As(err, &sessErr)
}
