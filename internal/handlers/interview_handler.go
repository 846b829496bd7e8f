package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"csacademy/interview/internal/client"
	"csacademy/interview/internal/interview"
	"csacademy/interview/internal/messages"
	"csacademy/interview/internal/middleware"
	"csacademy/interview/internal/models"
	"csacademy/interview/internal/sessions"
	"csacademy/interview/internal/utils"
)

// SessionEnvelope is returned by every session route. Error is set when the
// action failed; State is always the state after the action.
type SessionEnvelope struct {
	State interview.State       `json:"state"`
	Phase string                `json:"phase"`
	Error *models.ErrorResponse `json:"error,omitempty"`
}

type InterviewHandler struct {
	hub    *sessions.Hub
	texts  messages.TextProvider
	logger *zap.Logger
}

func NewInterviewHandler(hub *sessions.Hub, texts messages.TextProvider, logger *zap.Logger) *InterviewHandler {
	if texts == nil {
		texts = messages.Default()
	}
	return &InterviewHandler{hub: hub, texts: texts, logger: logger}
}

func (h *InterviewHandler) controller(w http.ResponseWriter, r *http.Request) (*interview.Controller, bool) {
	identity := middleware.GetIdentity(r)
	if identity == nil {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized",
			messages.Lookup(h.texts, messages.GroupErrors, messages.Unauthorized))
		return nil, false
	}

	c, err := h.hub.Acquire(r.Context(), identity.UserID, middleware.GetToken(r))
	if err != nil {
		h.logger.Error("Failed to acquire interview controller", zap.Error(err), zap.String("user_id", identity.UserID))
		utils.WriteError(w, http.StatusInternalServerError, "session_unavailable",
			messages.Lookup(h.texts, messages.GroupErrors, messages.ServerError))
		return nil, false
	}
	return c, true
}

// respond writes the controller state, with the error folded in when the
// action failed.
func (h *InterviewHandler) respond(w http.ResponseWriter, c *interview.Controller, okStatus int, err error) {
	st := c.State()
	envelope := SessionEnvelope{State: st, Phase: st.Phase()}
	if err == nil {
		utils.JSON(w, okStatus, envelope)
		return
	}

	status, code := statusForError(err)
	message := st.Error
	if message == "" {
		message = client.UserMessage(h.texts, err)
	}
	envelope.Error = &models.ErrorResponse{Code: code, Message: message, Status: status}
	utils.JSON(w, status, envelope)
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, interview.ErrAuthRequired):
		return http.StatusUnauthorized, "auth_required"
	case errors.Is(err, interview.ErrNoActiveSession):
		return http.StatusBadRequest, "no_active_session"
	case errors.Is(err, interview.ErrSessionReset):
		return http.StatusConflict, "session_reset"
	}

	if apiErr, ok := client.IsAPIError(err); ok {
		if apiErr.Status == client.StatusNetworkError {
			return http.StatusBadGateway, "network_error"
		}
		return apiErr.Status, "backend_error"
	}
	return http.StatusInternalServerError, "unexpected_error"
}

func (h *InterviewHandler) GetStateHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.respond(w, c, http.StatusOK, nil)
}

func (h *InterviewHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CreateSessionBody](r)
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	err := c.CreateSession(r.Context(), req.Difficulty)
	h.respond(w, c, http.StatusCreated, err)
}

func (h *InterviewHandler) StartSessionHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.respond(w, c, http.StatusOK, c.StartSession(r.Context()))
}

func (h *InterviewHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.SendMessageBody](r)
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	err := c.SendMessage(r.Context(), req.Content, models.MessageType(req.MessageType))
	h.respond(w, c, http.StatusOK, err)
}

func (h *InterviewHandler) EndSessionHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.respond(w, c, http.StatusOK, c.EndSession(r.Context()))
}

func (h *InterviewHandler) RefreshStatusHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.respond(w, c, http.StatusOK, c.RefreshStatus(r.Context()))
}

// ResetSessionHandler drops the user's controller and answers with a fresh
// one.
func (h *InterviewHandler) ResetSessionHandler(w http.ResponseWriter, r *http.Request) {
	if identity := middleware.GetIdentity(r); identity != nil {
		if err := h.hub.Delete(r.Context(), identity.UserID); err != nil {
			h.logger.Warn("Failed to clear interview token", zap.Error(err), zap.String("user_id", identity.UserID))
		}
	}
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.respond(w, c, http.StatusOK, nil)
}
