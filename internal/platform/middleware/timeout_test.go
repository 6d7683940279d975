package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRequestTimeout_CompletesWithinDeadline(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/diagnoses", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := RequestTimeout(5 * time.Second)(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	})

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
}

func TestRequestTimeout_ReturnsTimeoutOnExpiry(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/diagnoses", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	storeErr := errors.New("store: context deadline exceeded")
	h := RequestTimeout(10 * time.Millisecond)(func(c echo.Context) error {
		<-c.Request().Context().Done()
		return echo.NewHTTPError(http.StatusInternalServerError, "server error").SetInternal(storeErr)
	})

	err := h(c)
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if he.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", he.Code)
	}
	if he.Message != "request timed out" {
		t.Errorf("unexpected message %v", he.Message)
	}
}

func TestRequestTimeout_ContextHasDeadline(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	h := RequestTimeout(time.Second)(func(c echo.Context) error {
		deadline, ok := c.Request().Context().Deadline()
		if !ok {
			t.Error("expected deadline on request context")
		}
		if time.Until(deadline) > time.Second {
			t.Errorf("deadline too far in the future: %v", deadline)
		}
		return nil
	})
	h(c)
}

func TestRequestTimeout_PropagatesHandlerError(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	h := RequestTimeout(time.Second)(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "diagnosis not found")
	})

	err := h(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404 to pass through, got %v", err)
	}
}

func TestRequestTimeout_ClientCancelIsNotTimeout(t *testing.T) {
	e := echo.New()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	c := e.NewContext(req, httptest.NewRecorder())

	h := RequestTimeout(time.Second)(func(c echo.Context) error {
		cancel()
		return c.Request().Context().Err()
	})

	err := h(c)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
