package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveBackendCall(t *testing.T) {
	before := testutil.ToFloat64(backendCalls.WithLabelValues("create", "201"))
	ObserveBackendCall("create", http.StatusCreated, 5*time.Millisecond)
	after := testutil.ToFloat64(backendCalls.WithLabelValues("create", "201"))

	if after-before != 1 {
		t.Fatalf("expected counter to grow by 1, grew by %v", after-before)
	}
}

func TestObserveAction(t *testing.T) {
	okBefore := testutil.ToFloat64(controllerActions.WithLabelValues("send_message", "ok"))
	errBefore := testutil.ToFloat64(controllerActions.WithLabelValues("send_message", "error"))

	ObserveAction("send_message", nil)
	ObserveAction("send_message", errors.New("boom"))

	if got := testutil.ToFloat64(controllerActions.WithLabelValues("send_message", "ok")) - okBefore; got != 1 {
		t.Fatalf("expected one ok outcome, got %v", got)
	}
	if got := testutil.ToFloat64(controllerActions.WithLabelValues("send_message", "error")) - errBefore; got != 1 {
		t.Fatalf("expected one error outcome, got %v", got)
	}
}

func TestMiddlewareCountsRequests(t *testing.T) {
	handler := Middleware("interview")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.ToFloat64(httpRequests.WithLabelValues("interview", http.MethodGet, "/tea", "418"))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tea", nil))
	after := testutil.ToFloat64(httpRequests.WithLabelValues("interview", http.MethodGet, "/tea", "418"))

	if after-before != 1 {
		t.Fatalf("expected request to be counted")
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	ObserveStaleAction()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "csacademy_interview_stale_actions_dropped_total") {
		t.Fatalf("expected stale action metric in exposition")
	}
}
