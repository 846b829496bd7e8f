package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"csacademy/interview/internal/auth"
	"csacademy/interview/internal/client"
	"csacademy/interview/internal/middleware"
	"csacademy/interview/internal/models"
	"csacademy/interview/internal/sessions"
)

const testSecret = "handler-secret"

func bearer(t *testing.T, sub string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

// fakeInterviewAPI mimics the interview backend and remembers the
// Authorization headers it saw.
type fakeInterviewAPI struct {
	mu          sync.Mutex
	authHeaders []string
	failStart   bool
}

func (f *fakeInterviewAPI) seen(r *http.Request) {
	f.mu.Lock()
	f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))
	f.mu.Unlock()
}

func (f *fakeInterviewAPI) headers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.authHeaders...)
}

func (f *fakeInterviewAPI) server(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	writeJSON := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	r.Post("/api/v1/interviews/create", func(w http.ResponseWriter, r *http.Request) {
		f.seen(r)
		writeJSON(w, http.StatusOK, models.SessionResponse{SessionID: "sess-1", Status: "created", Message: "ok"})
	})
	r.Post("/api/v1/interviews/{id}/start", func(w http.ResponseWriter, r *http.Request) {
		f.seen(r)
		if f.failStart {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Failed to start interview"})
			return
		}
		writeJSON(w, http.StatusOK, models.MessageResponse{SessionID: chi.URLParam(r, "id"), AIMessage: "Welcome", CurrentPhase: "introduction"})
	})
	r.Post("/api/v1/interviews/{id}/message", func(w http.ResponseWriter, r *http.Request) {
		f.seen(r)
		writeJSON(w, http.StatusOK, models.MessageResponse{
			SessionID:        chi.URLParam(r, "id"),
			AIMessage:        "Q1?",
			CurrentPhase:     "question",
			SuggestedActions: []string{"hint1"},
		})
	})
	r.Post("/api/v1/interviews/{id}/end", func(w http.ResponseWriter, r *http.Request) {
		f.seen(r)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"session_id": chi.URLParam(r, "id"), "status": "completed", "total_score": 72.5,
		})
	})
	r.Get("/api/v1/interviews/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		f.seen(r)
		writeJSON(w, http.StatusOK, map[string]interface{}{"session_id": chi.URLParam(r, "id"), "status": "active"})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// newTestRouter wires the session routes the way the server does, minus
// history.
func newTestRouter(t *testing.T, api *fakeInterviewAPI) *chi.Mux {
	t.Helper()
	srv := api.server(t)
	verifier := auth.NewVerifier(testSecret)
	hub := sessions.NewHub(func(tokens auth.TokenStore) client.Backend {
		return client.NewClient(srv.URL, tokens)
	}, nil, verifier, 0)

	h := NewInterviewHandler(hub, nil, zap.NewNop())
	router := chi.NewRouter()
	router.Route("/api/v1/sessions", func(r chi.Router) {
		r.Use(middleware.RequireUser(verifier, zap.NewNop()))
		r.Get("/", h.GetStateHandler)
		r.With(middleware.ValidateRequest[*models.CreateSessionBody]()).Post("/", h.CreateSessionHandler)
		r.Delete("/", h.ResetSessionHandler)
		r.Post("/start", h.StartSessionHandler)
		r.With(middleware.ValidateRequest[*models.SendMessageBody]()).Post("/messages", h.SendMessageHandler)
		r.Post("/end", h.EndSessionHandler)
		r.Post("/refresh", h.RefreshStatusHandler)
	})
	return router
}

func call(t *testing.T, router http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, SessionEnvelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env SessionEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}
