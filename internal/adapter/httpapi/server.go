// Package httpapi exposes the dashboard API plus operational health,
// readiness, and metrics endpoints.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/metrowatch/sentiment-etl/internal/aggregate"
	"github.com/metrowatch/sentiment-etl/internal/domain"
	"github.com/metrowatch/sentiment-etl/internal/pipeline"
	"github.com/metrowatch/sentiment-etl/internal/store"
)

const apiVersion = "1.0.0"

// CycleRunner triggers analysis cycles and reports pipeline readiness.
type CycleRunner interface {
	RunCycle(ctx context.Context) pipeline.CycleResult
	CheckReadiness(ctx context.Context) error
}

// Server hosts the HTTP API.
type Server struct {
	echo       *echo.Echo
	addr       string
	aggregator *aggregate.Aggregator
	store      store.Store
	runner     CycleRunner
	corrector  *domain.Corrector
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewServer wires all routes.
func NewServer(addr string, aggregator *aggregate.Aggregator, st store.Store, runner CycleRunner, corrector *domain.Corrector, clock clockwork.Clock, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:       e,
		addr:       addr,
		aggregator: aggregator,
		store:      st,
		runner:     runner,
		corrector:  corrector,
		clock:      clock,
		logger:     logger,
	}

	e.GET("/healthz", s.handleHealthz)
	e.GET("/readyz", s.handleReadyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/sentiment/current", s.handleCurrentSentiment)
	api.GET("/sentiment/area/:area", s.handleAreaSentiment)
	api.GET("/areas", s.handleAreas)
	api.GET("/trends/weekly", s.handleWeeklyTrends)
	api.GET("/sources", s.handleSources)
	api.GET("/alerts/active", s.handleActiveAlerts)
	api.POST("/alerts/:id/resolve", s.handleResolveAlert)
	api.POST("/analysis/run", s.handleRunAnalysis)
	api.GET("/bias/correction/:source", s.handleBiasCorrection)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.addr)
	return s.echo.Start(s.addr)
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReadyz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := s.runner.CheckReadiness(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": s.clock.Now().Format(time.RFC3339),
		"version":   apiVersion,
		"database":  "connected",
	})
}

func (s *Server) handleCurrentSentiment(c echo.Context) error {
	status, err := s.aggregator.Status(c.Request().Context(), aggregate.StatusWindow)
	if err != nil {
		return s.internalError(c, "current sentiment", err)
	}
	return c.JSON(http.StatusOK, status)
}

func (s *Server) handleAreaSentiment(c echo.Context) error {
	area := c.Param("area")

	detail, err := s.aggregator.Area(c.Request().Context(), area, aggregate.StatusWindow)
	if err != nil {
		return s.internalError(c, "area sentiment", err)
	}
	if detail == nil {
		// An unknown or quiet area is not an error, just an empty view.
		return c.JSON(http.StatusOK, aggregate.AreaDetail{
			Area:        area,
			RecentItems: []domain.SentimentRecord{},
		})
	}
	return c.JSON(http.StatusOK, detail)
}

func (s *Server) handleAreas(c echo.Context) error {
	areas, err := s.aggregator.AreaBreakdown(c.Request().Context(), aggregate.StatusWindow)
	if err != nil {
		return s.internalError(c, "area breakdown", err)
	}
	if areas == nil {
		areas = []aggregate.AreaSummary{}
	}
	return c.JSON(http.StatusOK, areas)
}

func (s *Server) handleWeeklyTrends(c echo.Context) error {
	trends, err := s.aggregator.Trends(c.Request().Context(), aggregate.TrendWindow)
	if err != nil {
		return s.internalError(c, "trends", err)
	}
	if trends == nil {
		trends = []aggregate.TrendPoint{}
	}
	return c.JSON(http.StatusOK, trends)
}

func (s *Server) handleSources(c echo.Context) error {
	sources, err := s.aggregator.SourceBreakdown(c.Request().Context(), aggregate.StatusWindow)
	if err != nil {
		return s.internalError(c, "source breakdown", err)
	}
	if sources == nil {
		sources = []aggregate.SourceStat{}
	}
	return c.JSON(http.StatusOK, sources)
}

type alertView struct {
	ID         string  `json:"id"`
	Area       string  `json:"area"`
	Message    string  `json:"message"`
	Severity   string  `json:"severity"`
	Confidence float64 `json:"confidence"`
	Type       string  `json:"type"`
	Time       string  `json:"time"`
}

func (s *Server) handleActiveAlerts(c echo.Context) error {
	since := s.clock.Now().Add(-24 * time.Hour)
	alerts, err := s.store.ActiveAlerts(c.Request().Context(), since)
	if err != nil {
		return s.internalError(c, "active alerts", err)
	}

	views := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		views = append(views, alertView{
			ID:         a.ID,
			Area:       a.Area,
			Message:    a.Message,
			Severity:   a.Severity,
			Confidence: math.Round(a.Confidence*1000) / 1000,
			Type:       a.AlertType,
			Time:       a.Timestamp.Format("15:04"),
		})
	}
	return c.JSON(http.StatusOK, views)
}

func (s *Server) handleResolveAlert(c echo.Context) error {
	err := s.store.ResolveAlert(c.Request().Context(), c.Param("id"))
	if errors.Is(err, store.ErrAlertNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "alert not found"})
	}
	if err != nil {
		return s.internalError(c, "resolve alert", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleRunAnalysis(c echo.Context) error {
	result := s.runner.RunCycle(c.Request().Context())
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleBiasCorrection(c echo.Context) error {
	return c.JSON(http.StatusOK, s.corrector.Explain(c.Param("source")))
}

func (s *Server) internalError(c echo.Context, op string, err error) error {
	s.logger.Error("request failed", "op", op, "error", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
