package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveOperation(t *testing.T) {
	m := New()
	m.ObserveOperation("create", "ok")
	m.ObserveOperation("create", "ok")
	m.ObserveOperation("create", "invalid_input")

	if got := testutil.ToFloat64(m.operations.WithLabelValues("create", "ok")); got != 2 {
		t.Errorf("expected 2 ok creates, got %v", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("create", "invalid_input")); got != 1 {
		t.Errorf("expected 1 invalid create, got %v", got)
	}
}

func TestMiddleware_LabelsByRoute(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/diagnoses/:clientId", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "diagnosis not found")
	})

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/diagnoses/"+id, nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/diagnoses/:clientId", "404"))
	if got != 3 {
		t.Errorf("expected 3 requests on the route pattern, got %v", got)
	}
}

func TestHandler_ServesExposition(t *testing.T) {
	m := New()
	m.ObserveOperation("list_all", "ok")

	e := echo.New()
	e.GET("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `diagnosis_record_operations_total{operation="list_all",outcome="ok"} 1`) {
		t.Errorf("operation counter missing from exposition:\n%s", body)
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected Go runtime collector output")
	}
}
