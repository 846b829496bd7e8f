package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"csacademy/interview/internal/auth"
	"csacademy/interview/internal/history"
	"csacademy/interview/internal/middleware"
	"csacademy/interview/internal/models"
)

func newHistoryRouter(t *testing.T, store HistoryReader) *chi.Mux {
	t.Helper()
	h := NewHistoryHandler(store, zap.NewNop())
	router := chi.NewRouter()
	router.Route("/api/v1/history", func(r chi.Router) {
		r.Use(middleware.RequireUser(auth.NewVerifier(testSecret), zap.NewNop()))
		r.Get("/", h.ListHandler)
		r.Get("/{sessionId}", h.TranscriptHandler)
	})
	return router
}

func newSeededStore(t *testing.T) *history.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	store := history.NewStore(db, nil)
	require.NoError(t, store.Migrate())

	score := 90.0
	completed := time.Now().UTC()
	session := &models.InterviewSession{
		ID: "done-1", UserID: "user-1", InterviewType: "dsa",
		Status: models.StatusCompleted, Difficulty: models.DifficultyEasy,
		Score: &score, CompletedAt: &completed,
	}
	transcript := []models.InterviewMessage{
		{ID: "start", Type: models.MessageTypeSystem, Content: "started", Sender: models.SenderSystem, Timestamp: completed},
		{ID: "end", Type: models.MessageTypeSystem, Content: "ended", Sender: models.SenderSystem, Timestamp: completed},
	}
	require.NoError(t, store.Record(context.Background(), session, transcript))
	return store
}

func getJSON(t *testing.T, router http.Handler, path, token string, out interface{}) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if out != nil {
		_ = json.Unmarshal(rec.Body.Bytes(), out)
	}
	return rec.Code
}

func TestHistoryList(t *testing.T) {
	router := newHistoryRouter(t, newSeededStore(t))

	var resp HistoryResponse
	code := getJSON(t, router, "/api/v1/history", bearer(t, "user-1"), &resp)

	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Interviews, 1)
	assert.Equal(t, "done-1", resp.Interviews[0].SessionID)
	require.NotNil(t, resp.Stats)
	assert.Equal(t, int64(1), resp.Stats.TotalInterviews)
	assert.Equal(t, int64(1), resp.Stats.ByDifficulty["easy"])

	var other HistoryResponse
	require.Equal(t, http.StatusOK, getJSON(t, router, "/api/v1/history", bearer(t, "user-2"), &other))
	assert.Empty(t, other.Interviews)
}

func TestHistoryListRejectsBadLimit(t *testing.T) {
	router := newHistoryRouter(t, newSeededStore(t))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, router, "/api/v1/history?limit=zero", bearer(t, "user-1"), nil))
}

func TestHistoryTranscript(t *testing.T) {
	router := newHistoryRouter(t, newSeededStore(t))

	var record models.InterviewRecord
	require.Equal(t, http.StatusOK, getJSON(t, router, "/api/v1/history/done-1", bearer(t, "user-1"), &record))
	require.Len(t, record.Messages, 2)
	assert.Equal(t, "start", record.Messages[0].MessageID)
	assert.Equal(t, "end", record.Messages[1].MessageID)

	assert.Equal(t, http.StatusNotFound, getJSON(t, router, "/api/v1/history/done-1", bearer(t, "user-2"), nil))
}

func TestHistoryDisabled(t *testing.T) {
	router := newHistoryRouter(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, router, "/api/v1/history", bearer(t, "user-1"), nil))
	assert.Equal(t, http.StatusUnauthorized, getJSON(t, router, "/api/v1/history", "", nil))
}
