// Package server exposes normalization, rendering and generation over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pakarguru/modulajar/internal/config"
	"github.com/pakarguru/modulajar/internal/lessonplan"
	"github.com/pakarguru/modulajar/internal/store"
)

// Generator produces a plan with the selected attachments.
type Generator interface {
	GenerateAll(ctx context.Context, school lessonplan.SchoolIdentity, lesson lessonplan.LessonIdentity, sel lessonplan.Selection) (*lessonplan.Plan, error)
}

// Uploader stores an exported document and returns its link.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// Deps are the collaborators behind the routes. Generator, History and
// Uploader may be nil; their routes then answer 503.
type Deps struct {
	Generator   Generator
	History     store.HistoryRepo
	Uploader    Uploader
	Settings    lessonplan.DocumentSettings
	School      lessonplan.SchoolIdentity
	HistoryKeep int
	Logger      *zap.Logger
}

type Server struct {
	cfg    config.ServerConfig
	deps   Deps
	log    *zap.Logger
	router *gin.Engine
}

func New(cfg config.ServerConfig, deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if deps.Settings.PaperSize == "" {
		deps.Settings = lessonplan.DefaultDocumentSettings()
	}
	s := &Server{cfg: cfg, deps: deps, log: log.Named("server")}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(s.log))
	router.Use(instrument())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.cfg.Metrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api")
	api.Use(apiKeyAuthMiddleware(s.cfg.APIKey))
	api.POST("/normalize", s.normalize)
	api.POST("/render/html", s.renderHTML)
	api.POST("/render/docx", s.renderDOCX)
	api.POST("/generate", s.generate)

	history := api.Group("/history")
	history.GET("", s.listHistory)
	history.GET("/:id", s.getHistory)
	history.DELETE("/:id", s.deleteHistory)
	return router
}

func apiKeyAuthMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-KEY") != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("starting server", zap.String("addr", s.cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}
