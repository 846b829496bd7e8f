package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"csacademy/interview/internal/auth"
	"csacademy/interview/internal/metrics"
	"csacademy/interview/internal/models"
)

// operation names, used for logging and metrics
const (
	OpCreate  = "create"
	OpStart   = "start"
	OpMessage = "message"
	OpEnd     = "end"
	OpStatus  = "status"
)

// Backend is the interview service as the controller sees it. All values
// are already in frontend shape.
type Backend interface {
	CreateInterview(ctx context.Context, req models.CreateInterviewRequest) (*models.InterviewSession, error)
	StartInterview(ctx context.Context, sessionID string, req models.StartInterviewRequest) (*models.AIResponse, error)
	SendMessage(ctx context.Context, sessionID string, content string) (*models.AIResponse, error)
	EndInterview(ctx context.Context, sessionID string, prev *models.InterviewSession) (*models.InterviewSession, error)
	InterviewStatus(ctx context.Context, sessionID string, prev *models.InterviewSession) (*models.InterviewSession, error)
}

// Client talks to the interview backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     auth.TokenStore
	logger     *zap.Logger
	now        func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client for baseURL. tokens may be nil, in which case no
// Authorization header is ever sent.
func NewClient(baseURL string, tokens auth.TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		tokens:     tokens,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) CreateInterview(ctx context.Context, req models.CreateInterviewRequest) (*models.InterviewSession, error) {
	var resp models.SessionResponse
	if err := c.do(ctx, OpCreate, http.MethodPost, "/api/v1/interviews/create", req, &resp); err != nil {
		return nil, err
	}
	return SessionFromCreate(req, resp, c.now()), nil
}

func (c *Client) StartInterview(ctx context.Context, sessionID string, req models.StartInterviewRequest) (*models.AIResponse, error) {
	var resp models.MessageResponse
	if err := c.do(ctx, OpStart, http.MethodPost, sessionPath(sessionID, "start"), req, &resp); err != nil {
		return nil, err
	}
	reply := ReplyFromMessage(resp, c.now())
	return &reply, nil
}

func (c *Client) SendMessage(ctx context.Context, sessionID string, content string) (*models.AIResponse, error) {
	var resp models.MessageResponse
	if err := c.do(ctx, OpMessage, http.MethodPost, sessionPath(sessionID, "message"), MessageRequest(content), &resp); err != nil {
		return nil, err
	}
	reply := ReplyFromMessage(resp, c.now())
	return &reply, nil
}

func (c *Client) EndInterview(ctx context.Context, sessionID string, prev *models.InterviewSession) (*models.InterviewSession, error) {
	var resp models.BackendSession
	if err := c.do(ctx, OpEnd, http.MethodPost, sessionPath(sessionID, "end"), nil, &resp); err != nil {
		return nil, err
	}
	return SessionFromBackend(prev, resp, c.now()), nil
}

func (c *Client) InterviewStatus(ctx context.Context, sessionID string, prev *models.InterviewSession) (*models.InterviewSession, error) {
	var resp models.BackendSession
	if err := c.do(ctx, OpStatus, http.MethodGet, sessionPath(sessionID, "status"), nil, &resp); err != nil {
		return nil, err
	}
	return SessionFromBackend(prev, resp, c.now()), nil
}

func sessionPath(sessionID, action string) string {
	return "/api/v1/interviews/" + url.PathEscape(sessionID) + "/" + action
}

// do performs one request/response pair. body may be nil; out is left
// untouched for empty responses.
func (c *Client) do(ctx context.Context, op, method, path string, body interface{}, out interface{}) error {
	start := time.Now()
	status, err := c.roundTrip(ctx, method, path, body, out)
	metrics.ObserveBackendCall(op, status, time.Since(start))

	if err != nil {
		c.logger.Warn("Interview backend call failed",
			zap.String("operation", op),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Error(err))
		return err
	}
	c.logger.Debug("Interview backend call succeeded",
		zap.String("operation", op),
		zap.Int("status", status),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body interface{}, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return StatusNetworkError, newNetworkError(fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return StatusNetworkError, newNetworkError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return StatusNetworkError, newNetworkError(fmt.Errorf("read auth token: %w", err))
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return StatusNetworkError, newNetworkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return StatusNetworkError, newNetworkError(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, errorFromResponse(resp, data)
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 || out == nil {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return StatusNetworkError, newNetworkError(fmt.Errorf("decode response: %w", err))
	}
	return resp.StatusCode, nil
}

func errorFromResponse(resp *http.Response, data []byte) *APIError {
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return apiErr
	}
	apiErr.Details = parsed
	if detail, ok := parsed["detail"].(string); ok && detail != "" {
		apiErr.Message = detail
	}
	return apiErr
}
