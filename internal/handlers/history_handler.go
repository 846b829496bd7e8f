package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"csacademy/interview/internal/messages"
	"csacademy/interview/internal/middleware"
	"csacademy/interview/internal/models"
	"csacademy/interview/internal/utils"
)

const defaultHistoryLimit = 20

// HistoryReader is the read side of the history store.
type HistoryReader interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]models.InterviewRecord, error)
	Transcript(ctx context.Context, userID, sessionID string) (*models.InterviewRecord, error)
	Stats(ctx context.Context, userID string) (*models.HistoryStats, error)
}

type HistoryResponse struct {
	Interviews []models.InterviewRecord `json:"interviews"`
	Stats      *models.HistoryStats     `json:"stats"`
}

type HistoryHandler struct {
	store  HistoryReader
	logger *zap.Logger
}

func NewHistoryHandler(store HistoryReader, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{store: store, logger: logger}
}

// ListHandler returns the caller's recorded interviews, newest first.
func (h *HistoryHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r)
	if identity == nil {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", messages.Lookup(nil, messages.GroupErrors, messages.Unauthorized))
		return
	}
	if h.store == nil {
		utils.WriteError(w, http.StatusServiceUnavailable, "history_disabled", "Interview history is not enabled")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.WriteError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.store.ListByUser(r.Context(), identity.UserID, limit)
	if err != nil {
		h.logger.Error("Failed to list interview history", zap.Error(err), zap.String("user_id", identity.UserID))
		utils.WriteError(w, http.StatusInternalServerError, "history_error", "Failed to retrieve history")
		return
	}
	stats, err := h.store.Stats(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("Failed to compute interview stats", zap.Error(err), zap.String("user_id", identity.UserID))
		utils.WriteError(w, http.StatusInternalServerError, "history_error", "Failed to retrieve history")
		return
	}

	utils.JSON(w, http.StatusOK, HistoryResponse{Interviews: records, Stats: stats})
}

// TranscriptHandler returns one recorded interview with its messages.
func (h *HistoryHandler) TranscriptHandler(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r)
	if identity == nil {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", messages.Lookup(nil, messages.GroupErrors, messages.Unauthorized))
		return
	}
	if h.store == nil {
		utils.WriteError(w, http.StatusServiceUnavailable, "history_disabled", "Interview history is not enabled")
		return
	}

	sessionID := chi.URLParam(r, "sessionId")
	record, err := h.store.Transcript(r.Context(), identity.UserID, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteError(w, http.StatusNotFound, "not_found", "Session not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to load transcript", zap.Error(err), zap.String("session_id", sessionID))
		utils.WriteError(w, http.StatusInternalServerError, "history_error", "Failed to retrieve history")
		return
	}

	utils.JSON(w, http.StatusOK, record)
}
