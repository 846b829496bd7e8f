package models

import "time"

type MessageType string

const (
	MessageTypeQuestion      MessageType = "question"
	MessageTypeAnswer        MessageType = "answer"
	MessageTypeResponse      MessageType = "response"
	MessageTypeCode          MessageType = "code"
	MessageTypeFeedback      MessageType = "feedback"
	MessageTypeSystem        MessageType = "system"
	MessageTypeClarification MessageType = "clarification"
	// greeting sent right after a session starts
	MessageTypeStart MessageType = "start"
)

type Sender string

const (
	SenderUser   Sender = "user"
	SenderAI     Sender = "ai"
	SenderSystem Sender = "system"
)

// InterviewMessage is one turn of the conversation.
type InterviewMessage struct {
	ID             string      `json:"id"`
	Type           MessageType `json:"type"`
	Content        string      `json:"content"`
	Sender         Sender      `json:"sender"`
	Timestamp      time.Time   `json:"timestamp"`
	QuestionNumber *int        `json:"question_number,omitempty"`
}

// AIResponse is the frontend shape of one backend reply. It is produced by
// the client mapping layer and consumed by the reducer.
type AIResponse struct {
	SessionID         string
	Response          string
	ResponseType      string
	InterviewPhase    string
	Suggestions       []string
	ScoreUpdate       *float64
	IsSessionComplete bool
	Timestamp         time.Time
}

// IsQuestion reports whether the reply should advance the question counter.
func (r AIResponse) IsQuestion() bool {
	return MessageType(r.ResponseType) == MessageTypeQuestion
}
