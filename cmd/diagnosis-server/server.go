package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ehr/diagnosis/internal/config"
	"github.com/ehr/diagnosis/internal/domain/diagnosis"
	"github.com/ehr/diagnosis/internal/platform/db"
	"github.com/ehr/diagnosis/internal/platform/middleware"
	"github.com/ehr/diagnosis/internal/platform/openapi"
	"github.com/ehr/diagnosis/internal/platform/telemetry"
)

const docsPath = "/api-docs"

// newServer wires middleware and routes around an opened store.
func newServer(cfg *config.Config, logger zerolog.Logger, st *store) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	var metrics *telemetry.Metrics
	if cfg.MetricsEnabled {
		metrics = telemetry.New()
	}

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	if metrics != nil {
		e.Use(metrics.Middleware())
	}
	e.Use(middleware.SecurityHeaders(docsPath))
	e.Use(middleware.Sanitize(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{echo.HeaderContentType, middleware.RequestIDHeader},
	}))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(st.pinger(), cfg.DBQueryTimeout))

	if metrics != nil {
		e.GET("/metrics", metrics.Handler())
	}

	baseURL := fmt.Sprintf("http://localhost:%s", cfg.Port)
	openapi.NewGenerator(version, baseURL, docsPath).RegisterRoutes(e)

	// API group
	api := e.Group("/api")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	api.Use(middleware.BodyLimit(cfg.BodyLimit))
	api.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	svc := diagnosis.NewService(st.repo)
	if metrics != nil {
		svc.SetRecorder(metrics)
	}
	diagnosis.NewHandler(svc).RegisterRoutes(api)

	return e
}

func printStatus(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}
