package client

import (
	"strings"
	"time"

	"csacademy/interview/internal/models"
	"csacademy/interview/internal/utils"
)

// Translation between the backend's wire shapes and the frontend model.
// Every backend field that matters is threaded through here explicitly;
// nothing is passed on opaquely.

// layouts the backend is known to emit (python isoformat with and without zone)
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a backend timestamp. ok is false for empty or
// unparseable input.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func timestampOr(raw string, fallback time.Time) time.Time {
	if t, ok := ParseTimestamp(raw); ok {
		return t
	}
	return fallback
}

func optionalTimestamp(raws ...string) *time.Time {
	for _, raw := range raws {
		if t, ok := ParseTimestamp(raw); ok {
			return &t
		}
	}
	return nil
}

// NormalizeDifficulty lowercases the input and falls back to medium for
// anything unknown.
func NormalizeDifficulty(raw string) models.Difficulty {
	d := models.Difficulty(utils.NormalizeDifficulty(raw))
	if models.ValidDifficulties[d] {
		return d
	}
	return models.DefaultDifficulty
}

// SessionFromCreate builds the frontend session from a create response and
// the request that produced it.
func SessionFromCreate(req models.CreateInterviewRequest, resp models.SessionResponse, now time.Time) *models.InterviewSession {
	return &models.InterviewSession{
		ID:            resp.SessionID,
		UserID:        req.UserID,
		InterviewType: req.InterviewType,
		Status:        models.NormalizeStatus(resp.Status),
		Difficulty:    NormalizeDifficulty(req.Difficulty),
		CreatedAt:     timestampOr(resp.CreatedAt, now),
	}
}

// ReplyFromMessage maps a start or message response. The backend has no
// response type of its own; the current phase stands in for it.
func ReplyFromMessage(resp models.MessageResponse, now time.Time) models.AIResponse {
	responseType := resp.CurrentPhase
	if responseType == "" {
		responseType = string(models.MessageTypeResponse)
	}
	suggestions := resp.SuggestedActions
	if suggestions == nil {
		suggestions = []string{}
	}
	return models.AIResponse{
		SessionID:         resp.SessionID,
		Response:          resp.AIMessage,
		ResponseType:      responseType,
		InterviewPhase:    resp.CurrentPhase,
		Suggestions:       append([]string(nil), suggestions...),
		ScoreUpdate:       nil, // message responses never carry a score
		IsSessionComplete: resp.IsSessionComplete,
		Timestamp:         timestampOr(resp.Timestamp, now),
	}
}

// StartedSession returns prev moved to active, stamped with the start reply's
// time. prev is not modified.
func StartedSession(prev *models.InterviewSession, reply models.AIResponse) *models.InterviewSession {
	next := prev.Clone()
	if reply.SessionID != "" {
		next.ID = reply.SessionID
	}
	if next.Status.CanTransitionTo(models.StatusActive) {
		next.Status = models.StatusActive
	}
	if next.StartedAt == nil {
		started := reply.Timestamp
		next.StartedAt = &started
	}
	return next
}

// SessionFromBackend maps a full session object. Fields the backend leaves
// out are taken from prev, which may be nil.
func SessionFromBackend(prev *models.InterviewSession, b models.BackendSession, now time.Time) *models.InterviewSession {
	var next *models.InterviewSession
	if prev != nil {
		next = prev.Clone()
	} else {
		next = &models.InterviewSession{CreatedAt: now, Difficulty: models.DefaultDifficulty}
	}

	switch {
	case b.ID != "":
		next.ID = b.ID
	case b.SessionID != "":
		next.ID = b.SessionID
	}
	if b.UserID != "" {
		next.UserID = b.UserID
	}
	switch {
	case b.InterviewType != "":
		next.InterviewType = b.InterviewType
	case b.Config != nil && b.Config.InterviewType != "":
		next.InterviewType = b.Config.InterviewType
	}
	if b.Difficulty != "" && prev == nil {
		next.Difficulty = NormalizeDifficulty(b.Difficulty)
	}

	status := models.NormalizeStatus(b.Status)
	if b.Status == "" && b.IsSessionComplete != nil && *b.IsSessionComplete {
		status = models.StatusCompleted
	}
	if status != "" && (prev == nil || next.Status.CanTransitionTo(status)) {
		next.Status = status
	}

	if t, ok := ParseTimestamp(b.CreatedAt); ok {
		next.CreatedAt = t
	}
	if next.StartedAt == nil {
		next.StartedAt = optionalTimestamp(b.StartedAt, b.StartTime)
	}
	if next.CompletedAt == nil {
		next.CompletedAt = optionalTimestamp(b.CompletedAt, b.EndTime)
	}
	if next.Status == models.StatusCompleted && next.CompletedAt == nil {
		completed := timestampOr(b.Timestamp, now)
		next.CompletedAt = &completed
	}

	switch {
	case b.DurationMinutes != nil:
		d := *b.DurationMinutes
		next.DurationMinutes = &d
	case b.Config != nil && b.Config.DurationMinutes != nil:
		d := *b.Config.DurationMinutes
		next.DurationMinutes = &d
	}
	switch {
	case b.Score != nil:
		s := *b.Score
		next.Score = &s
	case b.TotalScore != nil:
		s := *b.TotalScore
		next.Score = &s
	}
	if b.ProblemTitle != "" {
		next.ProblemTitle = b.ProblemTitle
	}
	switch {
	case b.Feedback != "":
		next.Feedback = b.Feedback
	case b.AIMessage != "" && next.Status == models.StatusCompleted:
		next.Feedback = b.AIMessage
	}
	return next
}

// MessageRequest converts outgoing user content into the backend body. The
// message type is not part of the backend contract.
func MessageRequest(content string) models.SendMessageRequest {
	return models.SendMessageRequest{Message: content}
}
