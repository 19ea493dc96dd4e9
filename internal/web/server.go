// ABOUTME: HTTP server for the habit dashboard and JSON API.
// ABOUTME: Built on gin with request id, access log, recovery, and metrics middleware.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/harperreed/habits/internal/insights"
	"github.com/harperreed/habits/internal/logging"
	"github.com/harperreed/habits/internal/storage"
)

const shutdownTimeout = 5 * time.Second

// Server is the habits web server
type Server struct {
	store    storage.Repository
	insights *insights.Client
	logger   *log.Logger
	now      func() time.Time
	router   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock overrides the source of "today" for the dashboard.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer creates a new web server. client may be nil when no AI provider
// is configured; the insights endpoint then answers with the fallback text.
func NewServer(store storage.Repository, client *insights.Client, opts ...Option) *Server {
	s := &Server{
		store:    store,
		insights: client,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}

	router := gin.New()
	router.Use(requestID(), accessLog(s.logger), recovery(s.logger), requestMetrics())
	router.SetHTMLTemplate(loadTemplates())
	router.StaticFS("/static", http.FS(staticFS()))

	router.GET("/", s.handleIndex)
	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/habits", s.handleCreateHabit)
		api.GET("/habits", s.handleListHabits)
		api.DELETE("/habits/:id", s.handleDeleteHabit)
		api.GET("/habits/:id/logs", s.handleHabitLogs)

		api.POST("/logs", s.handleLogHabit)

		api.POST("/goals", s.handleCreateGoal)
		api.GET("/goals", s.handleListGoals)
		api.GET("/goals/weekly", s.handleWeeklyGoals)
		api.GET("/goals/:id/progress", s.handleGoalProgress)
		api.DELETE("/goals/:id", s.handleDeleteGoal)

		api.GET("/stats", s.handleStats)
		api.GET("/streaks", s.handleStreaks)
		api.GET("/insights", s.handleInsights)
	}

	s.router = router
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "provider", s.insights.ProviderName())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
