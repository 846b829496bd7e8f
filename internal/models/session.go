package models

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// NormalizeStatus maps the backend's status vocabulary onto Status.
func NormalizeStatus(raw string) Status {
	switch raw {
	case "created", "initializing":
		return StatusPending
	case "paused":
		return StatusActive
	case "terminated":
		return StatusCancelled
	default:
		return Status(raw)
	}
}

// CanTransitionTo reports whether moving from s to next respects the
// forward-only lifecycle. Staying in the same status is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusActive || next == StatusCompleted || next == StatusCancelled
	case StatusActive:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// InterviewSession is the frontend view of one interview attempt.
type InterviewSession struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	InterviewType   string     `json:"interview_type"`
	Status          Status     `json:"status"`
	Difficulty      Difficulty `json:"difficulty,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Score           *float64   `json:"score,omitempty"`
	ProblemTitle    string     `json:"problem_title,omitempty"`
	Feedback        string     `json:"feedback,omitempty"`
}

// Clone returns a copy that shares no pointers with s.
func (s *InterviewSession) Clone() *InterviewSession {
	if s == nil {
		return nil
	}
	out := *s
	if s.StartedAt != nil {
		t := *s.StartedAt
		out.StartedAt = &t
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	if s.DurationMinutes != nil {
		d := *s.DurationMinutes
		out.DurationMinutes = &d
	}
	if s.Score != nil {
		v := *s.Score
		out.Score = &v
	}
	return &out
}
