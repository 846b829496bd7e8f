package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"csacademy/interview/internal/auth"
	"csacademy/interview/internal/models"
)

type requestLog struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (l *requestLog) add(r recordedRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reqs = append(l.reqs, r)
}

func (l *requestLog) all() []recordedRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recordedRequest(nil), l.reqs...)
}

type recordedRequest struct {
	method string
	path   string
	auth   string
	ctype  string
	body   map[string]interface{}
}

func newTestBackend(t *testing.T, routes func(r chi.Router), seen *requestLog) *httptest.Server {
	t.Helper()
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := recordedRequest{
				method: r.Method,
				path:   r.URL.Path,
				auth:   r.Header.Get("Authorization"),
				ctype:  r.Header.Get("Content-Type"),
			}
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
			seen.add(rec)
			next.ServeHTTP(w, r)
		})
	})
	routes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestCreateInterviewSendsBodyAndToken(t *testing.T) {
	seen := &requestLog{}
	srv := newTestBackend(t, func(r chi.Router) {
		r.Post("/api/v1/interviews/create", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, models.SessionResponse{
				SessionID: "s1", Status: "created", CurrentPhase: "starting", CreatedAt: "2025-03-01T09:00:00",
			})
		})
	}, seen)

	c := NewClient(srv.URL+"/", auth.NewMemoryTokenStore("tok"))
	session, err := c.CreateInterview(context.Background(), models.CreateInterviewRequest{
		UserID: "u1", InterviewType: "dsa", Difficulty: "hard",
	})
	if err != nil {
		t.Fatalf("CreateInterview error: %v", err)
	}

	if session.ID != "s1" || session.Status != models.StatusPending || session.Difficulty != models.DifficultyHard {
		t.Fatalf("unexpected session: %+v", session)
	}
	reqs := seen.all()
	if len(reqs) != 1 {
		t.Fatalf("expected one request, got %d", len(reqs))
	}
	req := reqs[0]
	if req.auth != "Bearer tok" || req.ctype != "application/json" {
		t.Fatalf("unexpected headers: %+v", req)
	}
	if req.body["user_id"] != "u1" || req.body["interview_type"] != "dsa" || req.body["difficulty"] != "hard" {
		t.Fatalf("unexpected body: %v", req.body)
	}
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	seen := &requestLog{}
	srv := newTestBackend(t, func(r chi.Router) {
		r.Post("/api/v1/interviews/{id}/message", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, models.MessageResponse{SessionID: chi.URLParam(r, "id"), AIMessage: "ok"})
		})
	}, seen)

	c := NewClient(srv.URL, auth.NewMemoryTokenStore(""))
	reply, err := c.SendMessage(context.Background(), "s9", "hello")
	if err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	if reply.SessionID != "s9" || reply.Response != "ok" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	req := seen.all()[0]
	if req.auth != "" {
		t.Fatalf("expected no Authorization header, got %q", req.auth)
	}
	if req.body["message"] != "hello" || len(req.body) != 1 {
		t.Fatalf("expected backend message body, got %v", req.body)
	}
}

func TestStartEndAndStatus(t *testing.T) {
	seen := &requestLog{}
	score := 90.0
	srv := newTestBackend(t, func(r chi.Router) {
		r.Post("/api/v1/interviews/{id}/start", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, models.MessageResponse{SessionID: "s1", AIMessage: "welcome", CurrentPhase: "starting", Timestamp: "2025-03-01T09:01:00"})
		})
		r.Post("/api/v1/interviews/{id}/end", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, models.BackendSession{ID: "s1", Status: "completed", Score: &score})
		})
		r.Get("/api/v1/interviews/{id}/status", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, models.BackendSession{ID: "s1", Status: "active"})
		})
	}, seen)

	c := NewClient(srv.URL, nil)
	ctx := context.Background()

	reply, err := c.StartInterview(ctx, "s1", models.StartInterviewRequest{UserID: "u1"})
	if err != nil {
		t.Fatalf("StartInterview error: %v", err)
	}
	if reply.Response != "welcome" || reply.Timestamp.Minute() != 1 {
		t.Fatalf("unexpected start reply: %+v", reply)
	}

	prev := &models.InterviewSession{ID: "s1", Status: models.StatusPending}
	status, err := c.InterviewStatus(ctx, "s1", prev)
	if err != nil {
		t.Fatalf("InterviewStatus error: %v", err)
	}
	if status.Status != models.StatusActive {
		t.Fatalf("expected active, got %s", status.Status)
	}

	final, err := c.EndInterview(ctx, "s1", status)
	if err != nil {
		t.Fatalf("EndInterview error: %v", err)
	}
	if final.Status != models.StatusCompleted || final.Score == nil || *final.Score != 90 {
		t.Fatalf("unexpected final session: %+v", final)
	}

	reqs := seen.all()
	wantPaths := []string{"/api/v1/interviews/s1/start", "/api/v1/interviews/s1/status", "/api/v1/interviews/s1/end"}
	for i, p := range wantPaths {
		if reqs[i].path != p {
			t.Fatalf("request %d: expected %s, got %s", i, p, reqs[i].path)
		}
	}
	if reqs[0].body["user_id"] != "u1" {
		t.Fatalf("expected user_id in start body, got %v", reqs[0].body)
	}
	if reqs[2].body != nil {
		t.Fatalf("end must not send a body, got %v", reqs[2].body)
	}
}

func TestErrorResponseCarriesDetail(t *testing.T) {
	seen := &requestLog{}
	srv := newTestBackend(t, func(r chi.Router) {
		r.Post("/api/v1/interviews/{id}/message", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Session not found: s1"})
		})
		r.Post("/api/v1/interviews/{id}/end", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		})
	}, seen)

	c := NewClient(srv.URL, nil)

	_, err := c.SendMessage(context.Background(), "s1", "hi")
	apiErr, ok := IsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "Session not found: s1" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}

	_, err = c.EndInterview(context.Background(), "s1", nil)
	apiErr, _ = IsAPIError(err)
	if apiErr == nil || apiErr.Status != http.StatusBadGateway || apiErr.Message != "HTTP 502: Bad Gateway" {
		t.Fatalf("unexpected error for non-JSON body: %+v", apiErr)
	}
}

func TestNetworkErrorHasStatusZero(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, nil, WithHTTPClient(&http.Client{Timeout: time.Second}))
	_, err := c.SendMessage(context.Background(), "s1", "hi")
	if !IsNetworkError(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	apiErr, _ := IsAPIError(err)
	if apiErr.Unwrap() == nil {
		t.Fatalf("expected wrapped transport error")
	}
}

func TestEmptyBodyDecodesToZeroValue(t *testing.T) {
	seen := &requestLog{}
	srv := newTestBackend(t, func(r chi.Router) {
		r.Post("/api/v1/interviews/{id}/end", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	}, seen)

	prev := &models.InterviewSession{ID: "s1", Status: models.StatusActive}
	final, err := NewClient(srv.URL, nil).EndInterview(context.Background(), "s1", prev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final.ID != "s1" || final.Status != models.StatusActive {
		t.Fatalf("expected prev to carry through, got %+v", final)
	}
}

func TestContextCancellation(t *testing.T) {
	seen := &requestLog{}
	srv := newTestBackend(t, func(r chi.Router) {
		r.Post("/api/v1/interviews/{id}/message", func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		})
	}, seen)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(srv.URL, nil).SendMessage(ctx, "s1", "hi")
	if !IsNetworkError(err) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline network error, got %v", err)
	}
}
