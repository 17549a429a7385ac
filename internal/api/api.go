// internal/api/api.go
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/patrickmn/go-cache"

	"github.com/yunjun/fungid-go/internal/conf"
	"github.com/yunjun/fungid-go/internal/datastore"
	"github.com/yunjun/fungid-go/internal/errors"
	"github.com/yunjun/fungid-go/internal/logging"
	"github.com/yunjun/fungid-go/internal/observability"
	"github.com/yunjun/fungid-go/internal/pipeline"
)

// statsCacheTTL bounds how stale the stats endpoints may get; the cache is
// also flushed after every successful detection.
const statsCacheTTL = 30 * time.Second

// Controller manages the API routes and handlers.
type Controller struct {
	Echo     *echo.Echo
	DS       datastore.Interface
	Settings *conf.Settings
	Pipeline *pipeline.Pipeline

	metrics    *observability.Metrics
	statsCache *cache.Cache
	logger     *slog.Logger
}

// New creates the API controller and registers all routes.
func New(settings *conf.Settings, ds datastore.Interface, pl *pipeline.Pipeline, metrics *observability.Metrics) *Controller {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	c := &Controller{
		Echo:       e,
		DS:         ds,
		Settings:   settings,
		Pipeline:   pl,
		metrics:    metrics,
		statsCache: cache.New(statsCacheTTL, time.Minute),
		logger:     logging.ForService("api"),
	}

	c.initRoutes()
	return c
}

func (c *Controller) initRoutes() {
	c.Echo.GET("/", c.Index)
	c.Echo.GET("/history", c.HistoryPage)

	c.Echo.GET("/api/history", c.GetHistory)
	c.Echo.POST("/api/detect", c.Detect)
	c.Echo.GET("/api/stats/classes", c.StatsClasses)
	c.Echo.GET("/api/stats/overview", c.StatsOverview)

	c.Echo.GET("/metrics", echo.WrapHandler(c.metrics.Handler()))

	c.Echo.Static("/static/uploads", c.Settings.Media.UploadPath)
	c.Echo.Static("/static/results", c.Settings.Media.ResultsPath)
}

// Start runs the HTTP server until the context is cancelled.
func (c *Controller) Start(ctx context.Context) error {
	addr := c.Settings.WebServer.Host + ":" + c.Settings.WebServer.Port

	errChan := make(chan error, 1)
	go func() {
		errChan <- c.Echo.Start(addr)
	}()

	c.logger.Info("HTTP server listening", "addr", addr)

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return c.Echo.Shutdown(shutdownCtx)
	}
}

// errorResponse is the uniform failure envelope.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// fail writes the failure envelope with the status matching the error's
// category. Validation problems map to 400, everything else to 500.
func (c *Controller) fail(ctx echo.Context, err error) error {
	status := http.StatusInternalServerError
	if errors.IsCategory(err, errors.CategoryValidation) {
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		c.logger.Error("request failed", "path", ctx.Path(), "error", err)
	}
	return ctx.JSON(status, errorResponse{Success: false, Message: err.Error()})
}
