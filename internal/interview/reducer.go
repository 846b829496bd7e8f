package interview

import (
	"csacademy/interview/internal/models"
)

// Reduce applies a to s and returns the next state. It never mutates s or
// anything reachable from it, and it has no side effects.
func Reduce(s State, a Action) State {
	next := s.Clone()

	switch a.Kind {
	case ActionSetLoading:
		next.IsLoading = a.Loading

	case ActionSetError:
		next.Error = a.Error
		next.IsLoading = false

	case ActionClearError:
		next.Error = ""

	case ActionSessionCreated:
		next.Session = a.Session.Clone()
		next.IsLoading = false
		next.Error = ""

	case ActionSessionStarted:
		next.Session = a.Session.Clone()
		next.SessionStarted = true
		next.IsLoading = false
		next.Error = ""
		next.Messages = []models.InterviewMessage{}
		if a.Message != nil {
			next.Messages = append(next.Messages, *a.Message)
		}

	case ActionSessionEnded:
		final := a.Session
		if final == nil {
			final = s.Session
		}
		if final == nil {
			break
		}
		next.Session = completeSession(final, a)
		next.SessionCompleted = next.Session.Status == models.StatusCompleted
		next.IsLoading = false
		if next.Session.Score != nil {
			next.CurrentScore = *next.Session.Score
		}
		if a.Message != nil && !hasMessage(next.Messages, a.Message.ID) {
			next.Messages = append(next.Messages, *a.Message)
		}

	case ActionSessionRefreshed:
		if a.Session == nil {
			break
		}
		if next.Session != nil && !next.Session.Status.CanTransitionTo(a.Session.Status) {
			break
		}
		next.Session = a.Session.Clone()
		switch next.Session.Status {
		case models.StatusActive:
			next.SessionStarted = true
		case models.StatusCompleted:
			next.SessionStarted = true
			next.SessionCompleted = true
		}
		if next.Session.Score != nil {
			next.CurrentScore = *next.Session.Score
		}

	case ActionMessageSent:
		if a.Message == nil {
			break
		}
		msg := *a.Message
		msg.QuestionNumber = intPtr(s.CurrentQuestionNumber)
		next.Messages = append(next.Messages, msg)
		next.IsLoading = true

	case ActionAIResponse:
		if a.Reply == nil || a.Message == nil {
			break
		}
		reply := a.Reply
		// stamped with the counter as it stood before this reply, like the
		// user message it answers
		next.Messages = append(next.Messages, models.InterviewMessage{
			ID:             a.Message.ID,
			Type:           models.MessageType(reply.ResponseType),
			Content:        reply.Response,
			Sender:         models.SenderAI,
			Timestamp:      a.Message.Timestamp,
			QuestionNumber: intPtr(s.CurrentQuestionNumber),
		})
		if reply.IsQuestion() {
			q := reply.Response
			next.CurrentQuestion = &q
			next.CurrentQuestionNumber = s.CurrentQuestionNumber + 1
		}
		if reply.InterviewPhase != "" {
			next.InterviewPhase = reply.InterviewPhase
		}
		next.Suggestions = append([]string{}, reply.Suggestions...)
		if reply.ScoreUpdate != nil {
			next.CurrentScore = *reply.ScoreUpdate
		}
		next.IsLoading = false

	case ActionReset:
		next = InitialState()
	}

	return next
}

// completeSession makes sure the stored session agrees with the completed
// gate, stamping completed_at once if the backend did not.
func completeSession(session *models.InterviewSession, a Action) *models.InterviewSession {
	out := session.Clone()
	if out.Status != models.StatusCompleted && out.Status.CanTransitionTo(models.StatusCompleted) {
		out.Status = models.StatusCompleted
	}
	if out.Status == models.StatusCompleted && out.CompletedAt == nil {
		at := a.At
		out.CompletedAt = &at
	}
	return out
}

func hasMessage(msgs []models.InterviewMessage, id string) bool {
	for _, m := range msgs {
		if m.ID == id {
			return true
		}
	}
	return false
}

func intPtr(v int) *int {
	return &v
}
