package interview

import (
	"errors"

	"csacademy/interview/internal/messages"
)

// localError is raised before any network call is made.
type localError struct {
	msg string
	key string
}

func (e *localError) Error() string      { return e.msg }
func (e *localError) MessageKey() string { return e.key }

var (
	// ErrAuthRequired means no logged-in user was available.
	ErrAuthRequired error = &localError{msg: "interview: authenticated user required", key: messages.AuthRequired}
	// ErrNoActiveSession means the action needs a session and there is none.
	ErrNoActiveSession error = &localError{msg: "interview: no active session", key: messages.NoActiveSession}
)

// ErrSessionReset is returned when a backend call finished after the session
// it belonged to was reset. Its result was discarded.
var ErrSessionReset = errors.New("interview: session was reset while the request was in flight")
