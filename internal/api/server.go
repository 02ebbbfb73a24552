package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/david/becas-dashboard/internal/dataset"
	"github.com/david/becas-dashboard/internal/refresh"
	"github.com/david/becas-dashboard/internal/views"
)

// Refresher is the part of refresh.Coordinator the HTTP layer drives.
type Refresher interface {
	Trigger() (string, error)
	Status() refresh.Status
}

// Config wires the server to the rest of the process.
type Config struct {
	Store       *dataset.Store
	Projector   *views.Projector
	Refresher   Refresher
	Gatherer    prometheus.Gatherer // nil disables /metrics
	CORSOrigins []string
}

type Server struct {
	Echo      *echo.Echo
	store     *dataset.Store
	projector *views.Projector
	refresher Refresher
}

func NewServer(cfg Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	allowedOrigins := []string{"http://localhost:4200"}
	for _, o := range cfg.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			allowedOrigins = append(allowedOrigins, o)
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s := &Server{
		Echo:      e,
		store:     cfg.Store,
		projector: cfg.Projector,
		refresher: cfg.Refresher,
	}
	s.routes()
	if cfg.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")
	api.GET("/views", s.handleListViews)
	api.GET("/views/:name", s.handleGetView)
	api.GET("/beca18/universities/:name", s.handleGetUniversity)
	api.GET("/status", s.handleStatus)
	api.POST("/refresh", s.handleTriggerRefresh)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleListViews(c echo.Context) error {
	return c.JSON(http.StatusOK, s.projector.Views())
}

func (s *Server) handleGetView(c echo.Context) error {
	fs := views.FilterState{
		Search:   c.QueryParam("q"),
		Category: c.QueryParam("category"),
	}
	res, err := s.projector.Project(s.store.Current(), c.Param("name"), fs)
	if errors.Is(err, views.ErrUnknownView) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	if err != nil {
		c.Logger().Errorf("Failed to project view %s: %v", c.Param("name"), err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	res.Error = s.refresher.Status().LastError
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleGetUniversity(c echo.Context) error {
	u, ok := s.projector.University(s.store.Current(), c.Param("name"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return c.JSON(http.StatusOK, u)
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.refresher.Status())
}

func (s *Server) handleTriggerRefresh(c echo.Context) error {
	id, err := s.refresher.Trigger()
	if errors.Is(err, refresh.ErrCycleRunning) {
		return c.JSON(http.StatusConflict, map[string]any{
			"error":    "A refresh cycle is already running",
			"cycle_id": s.refresher.Status().CycleID,
		})
	}
	if err != nil {
		c.Logger().Errorf("Failed to trigger refresh: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusAccepted, map[string]any{
		"message":  "Refresh cycle started",
		"cycle_id": id,
		"poll":     "/api/v1/status",
	})
}
