package models

// Request and response bodies exactly as the interview backend speaks them.
// Nothing outside the client package should need these.

type CreateInterviewRequest struct {
	UserID        string `json:"user_id"`
	InterviewType string `json:"interview_type"`
	Difficulty    string `json:"difficulty,omitempty"`
}

type StartInterviewRequest struct {
	UserID string `json:"user_id"`
}

type SendMessageRequest struct {
	Message string `json:"message"`
}

// returned by create
type SessionResponse struct {
	SessionID        string   `json:"session_id"`
	Status           string   `json:"status"`
	Message          string   `json:"message"`
	CurrentPhase     string   `json:"current_phase"`
	SuggestedActions []string `json:"suggested_actions"`
	CreatedAt        string   `json:"created_at"`
}

// returned by start and message
type MessageResponse struct {
	SessionID         string   `json:"session_id"`
	AIMessage         string   `json:"ai_message"`
	CurrentPhase      string   `json:"current_phase"`
	SuggestedActions  []string `json:"suggested_actions"`
	IsSessionComplete bool     `json:"is_session_complete"`
	Timestamp         string   `json:"timestamp"`
}

// returned by end and status. Older backend builds answer with the
// orchestrator's own field names, so both spellings are accepted.
type BackendSession struct {
	ID              string   `json:"id"`
	SessionID       string   `json:"session_id"`
	UserID          string   `json:"user_id"`
	InterviewType   string   `json:"interview_type"`
	Status          string   `json:"status"`
	Difficulty      string   `json:"difficulty,omitempty"`
	CreatedAt       string   `json:"created_at"`
	StartedAt       string   `json:"started_at,omitempty"`
	StartTime       string   `json:"start_time,omitempty"`
	CompletedAt     string   `json:"completed_at,omitempty"`
	EndTime         string   `json:"end_time,omitempty"`
	DurationMinutes *int     `json:"duration_minutes,omitempty"`
	Score           *float64 `json:"score,omitempty"`
	TotalScore      *float64 `json:"total_score,omitempty"`
	ProblemTitle    string   `json:"problem_title,omitempty"`
	Feedback        string   `json:"feedback,omitempty"`

	// end responses that only carry the message shape
	AIMessage         string `json:"ai_message,omitempty"`
	IsSessionComplete *bool  `json:"is_session_complete,omitempty"`
	Timestamp         string `json:"timestamp,omitempty"`

	Config *BackendSessionConfig `json:"config,omitempty"`
}

type BackendSessionConfig struct {
	InterviewType   string `json:"interview_type"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
}
