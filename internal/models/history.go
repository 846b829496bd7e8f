package models

import (
	"time"

	"gorm.io/gorm"
)

// InterviewRecord is a finished interview as kept in the history store.
type InterviewRecord struct {
	gorm.Model
	SessionID       string              `gorm:"uniqueIndex;not null" json:"session_id"`
	UserID          string              `gorm:"index;not null" json:"user_id"`
	InterviewType   string              `gorm:"not null" json:"interview_type"`
	Difficulty      string              `gorm:"index;not null" json:"difficulty"`
	Status          string              `gorm:"not null" json:"status"`
	Score           *float64            `json:"score"`
	DurationMinutes *int                `json:"duration_minutes"`
	ProblemTitle    string              `json:"problem_title"`
	Feedback        string              `gorm:"type:text" json:"feedback"`
	StartedAt       *time.Time          `json:"started_at"`
	CompletedAt     time.Time           `gorm:"index;not null" json:"completed_at"`
	Messages        []TranscriptMessage `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// TranscriptMessage is one line of a recorded interview, kept in order.
type TranscriptMessage struct {
	gorm.Model
	RecordID       uint      `gorm:"index;not null" json:"-"`
	Position       int       `gorm:"not null" json:"position"`
	MessageID      string    `gorm:"not null" json:"message_id"`
	Type           string    `gorm:"not null" json:"type"`
	Sender         string    `gorm:"not null" json:"sender"`
	Content        string    `gorm:"type:text" json:"content"`
	QuestionNumber *int      `json:"question_number"`
	SentAt         time.Time `json:"sent_at"`
}

// HistoryStats summarises one user's recorded interviews.
type HistoryStats struct {
	TotalInterviews int64            `json:"total_interviews"`
	AverageScore    *float64         `json:"average_score"`
	ByDifficulty    map[string]int64 `json:"by_difficulty"`
}
