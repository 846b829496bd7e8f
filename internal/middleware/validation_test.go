package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"csacademy/interview/internal/models"
)

type mockRequest struct {
	Value string `json:"value"`
}

func (m *mockRequest) Validate() error {
	switch m.Value {
	case "error_response":
		return &models.ErrorResponse{Code: "invalid", Message: "invalid"}
	case "generic_error":
		return errors.New("failed")
	default:
		return nil
	}
}

func serveValidated(t *testing.T, body string) (*httptest.ResponseRecorder, *mockRequest) {
	t.Helper()
	var got *mockRequest
	handler := ValidateRequest[*mockRequest]()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetValidatedRequest[*mockRequest](r)
	}))

	req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, got
}

func TestValidateRequestSuccess(t *testing.T) {
	rec, got := serveValidated(t, `{"value":"ok"}`)
	if got == nil || got.Value != "ok" {
		t.Fatalf("expected handler to receive value ok, got %+v", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestValidateRequestEmptyBody(t *testing.T) {
	_, got := serveValidated(t, "")
	if got == nil {
		t.Fatal("expected empty body to reach the handler")
	}
}

func TestValidateRequestFailures(t *testing.T) {
	cases := []struct {
		body string
		code string
	}{
		{`{`, "invalid_json"},
		{`{"value":"error_response"}`, "invalid"},
		{`{"value":"generic_error"}`, "validation_error"},
	}

	for _, tc := range cases {
		rec, got := serveValidated(t, tc.body)
		if got != nil {
			t.Fatalf("handler should not run for %s", tc.body)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", tc.body, rec.Code)
		}
		var resp models.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid error body: %v", err)
		}
		if resp.Code != tc.code {
			t.Fatalf("expected code %s, got %s", tc.code, resp.Code)
		}
	}
}
