package interview

import "csacademy/interview/internal/models"

// State is the aggregate a UI renders. The controller is its only writer;
// readers always get a copy.
type State struct {
	Session               *models.InterviewSession  `json:"session"`
	Messages              []models.InterviewMessage `json:"messages"`
	CurrentQuestion       *string                   `json:"current_question"`
	CurrentQuestionNumber int                       `json:"current_question_number"`
	TotalQuestions        int                       `json:"total_questions"`
	IsLoading             bool                      `json:"is_loading"`
	Error                 string                    `json:"error,omitempty"`
	SessionStarted        bool                      `json:"session_started"`
	SessionCompleted      bool                      `json:"session_completed"`
	InterviewPhase        string                    `json:"interview_phase"`
	Suggestions           []string                  `json:"suggestions"`
	CurrentScore          float64                   `json:"current_score"`
}

// InitialState is the empty aggregate every attempt starts from.
func InitialState() State {
	return State{
		Session:               nil,
		Messages:              []models.InterviewMessage{},
		CurrentQuestion:       nil,
		CurrentQuestionNumber: 0,
		TotalQuestions:        models.DefaultTotalQuestions,
		IsLoading:             false,
		Error:                 "",
		SessionStarted:        false,
		SessionCompleted:      false,
		InterviewPhase:        models.InitialPhase,
		Suggestions:           []string{},
		CurrentScore:          0,
	}
}

// HasSession reports whether an action needing a session may proceed.
func (s State) HasSession() bool {
	return s.Session != nil
}

// Phase names the coarse lifecycle position derived from the session and
// the local gates. Error is orthogonal and not reflected here.
func (s State) Phase() string {
	switch {
	case s.Session == nil:
		return "no_session"
	case s.SessionCompleted:
		return "completed"
	case s.SessionStarted:
		return "active"
	default:
		return "created"
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Session = s.Session.Clone()
	out.Messages = cloneMessages(s.Messages)
	if s.CurrentQuestion != nil {
		q := *s.CurrentQuestion
		out.CurrentQuestion = &q
	}
	out.Suggestions = append([]string{}, s.Suggestions...)
	return out
}

func cloneMessages(in []models.InterviewMessage) []models.InterviewMessage {
	out := make([]models.InterviewMessage, len(in))
	for i, m := range in {
		if m.QuestionNumber != nil {
			n := *m.QuestionNumber
			m.QuestionNumber = &n
		}
		out[i] = m
	}
	return out
}
