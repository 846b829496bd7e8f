package interview

import (
	"time"

	"csacademy/interview/internal/models"
)

type ActionKind int

const (
	ActionSetLoading ActionKind = iota + 1
	ActionSetError
	ActionClearError
	ActionSessionCreated
	ActionSessionStarted
	ActionSessionEnded
	ActionSessionRefreshed
	ActionMessageSent
	ActionAIResponse
	ActionReset
)

var actionNames = map[ActionKind]string{
	ActionSetLoading:       "set_loading",
	ActionSetError:         "set_error",
	ActionClearError:       "clear_error",
	ActionSessionCreated:   "session_created",
	ActionSessionStarted:   "session_started",
	ActionSessionEnded:     "session_ended",
	ActionSessionRefreshed: "session_refreshed",
	ActionMessageSent:      "message_sent",
	ActionAIResponse:       "ai_response",
	ActionReset:            "reset",
}

func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return "unknown"
}

// Action is one state transition request. Kind selects which payload fields
// are meaningful. Anything non-deterministic (ids, clock readings) is
// captured here so Reduce stays pure.
type Action struct {
	Kind ActionKind

	Loading bool
	Error   string
	Session *models.InterviewSession
	Message *models.InterviewMessage
	Reply   *models.AIResponse
	At      time.Time
}

func SetLoading(loading bool) Action {
	return Action{Kind: ActionSetLoading, Loading: loading}
}

func SetError(msg string) Action {
	return Action{Kind: ActionSetError, Error: msg}
}

func ClearError() Action {
	return Action{Kind: ActionClearError}
}

func SessionCreated(session *models.InterviewSession) Action {
	return Action{Kind: ActionSessionCreated, Session: session}
}

// SessionStarted carries the system message that replaces the log.
func SessionStarted(session *models.InterviewSession, notice models.InterviewMessage) Action {
	return Action{Kind: ActionSessionStarted, Session: session, Message: &notice}
}

// SessionEnded carries the terminal system message and the time of ending.
func SessionEnded(session *models.InterviewSession, notice models.InterviewMessage, at time.Time) Action {
	return Action{Kind: ActionSessionEnded, Session: session, Message: &notice, At: at}
}

func SessionRefreshed(session *models.InterviewSession) Action {
	return Action{Kind: ActionSessionRefreshed, Session: session}
}

func MessageSent(msg models.InterviewMessage) Action {
	return Action{Kind: ActionMessageSent, Message: &msg}
}

// AIResponse carries the mapped reply plus the id and capture time of the
// message the reducer will append for it.
func AIResponse(reply models.AIResponse, id string, at time.Time) Action {
	return Action{
		Kind:    ActionAIResponse,
		Reply:   &reply,
		Message: &models.InterviewMessage{ID: id, Timestamp: at},
		At:      at,
	}
}

func Reset() Action {
	return Action{Kind: ActionReset}
}
